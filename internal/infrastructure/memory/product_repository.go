package memory

import (
	"context"

	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo en memoria (con o sin transacción).
type ProductRepo struct {
	s  *Store
	tx *tx
}

// Create inserta el producto; ErrDuplicate si el código ya existe.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	unlock, err := r.lockBarcode(ctx, product.Barcode)
	if err != nil {
		return err
	}
	if r.tx == nil {
		defer unlock()
	}
	if r.lookup(product.Barcode) != nil {
		return domain.ErrDuplicate
	}
	r.insert(copyProduct(product))
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx != nil {
		for _, p := range r.tx.products {
			if p.ID == id {
				return copyProduct(p), nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyProduct(r.s.products[id]), nil
}

func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return copyProduct(r.lookup(barcode)), nil
}

// GetOrCreate serializa por código de barras: dentro de una transacción el bloqueo se mantiene
// hasta el commit, así un segundo escaneo concurrente ve el producto ya creado.
func (r *ProductRepo) GetOrCreate(ctx context.Context, product *entity.Product) (*entity.Product, bool, error) {
	unlock, err := r.lockBarcode(ctx, product.Barcode)
	if err != nil {
		return nil, false, err
	}
	if r.tx == nil {
		defer unlock()
	}
	if found := r.lookup(product.Barcode); found != nil {
		return copyProduct(found), false, nil
	}
	r.insert(copyProduct(product))
	return copyProduct(product), true, nil
}

// lockBarcode dentro de tx el bloqueo queda retenido; fuera, el llamador lo libera.
func (r *ProductRepo) lockBarcode(ctx context.Context, barcode string) (func(), error) {
	key := "barcode/" + barcode
	if r.tx != nil && r.tx.held[key] {
		return func() {}, nil
	}
	unlock, err := r.s.lock(ctx, r.s.barcodeLocks, key)
	if err != nil {
		return nil, err
	}
	if r.tx != nil {
		r.tx.hold(key, unlock)
	}
	return unlock, nil
}

func (r *ProductRepo) lookup(barcode string) *entity.Product {
	if p := r.tx.productByBarcode(barcode); p != nil {
		return p
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if id, ok := r.s.barcodes[barcode]; ok {
		return r.s.products[id]
	}
	return nil
}

func (r *ProductRepo) insert(p *entity.Product) {
	if r.tx != nil {
		r.tx.products = append(r.tx.products, p)
		return
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = p
	r.s.barcodes[p.Barcode] = p.ID
}
