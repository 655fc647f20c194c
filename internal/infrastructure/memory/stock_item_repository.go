package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo stock por comerciante+producto en memoria.
type StockItemRepo struct {
	s  *Store
	tx *tx
}

// LockOrCreate toma el bloqueo de la fila (retenido hasta el fin de la tx) y la crea en cero si no existe.
func (r *StockItemRepo) LockOrCreate(ctx context.Context, merchantID, productID string, now time.Time) (*entity.StockItem, error) {
	if r.tx == nil {
		return nil, errNoTx
	}
	key := stockKey(merchantID, productID)
	if !r.tx.held[key] {
		unlock, err := r.s.lock(ctx, r.s.rowLocks, key)
		if err != nil {
			return nil, err
		}
		r.tx.hold(key, unlock)
	}

	if it, ok := r.tx.items[key]; ok {
		return copyItem(it), nil
	}
	r.s.mu.RLock()
	it := copyItem(r.s.items[key])
	r.s.mu.RUnlock()
	if it == nil {
		it = &entity.StockItem{
			ID:         uuid.New().String(),
			MerchantID: merchantID,
			ProductID:  productID,
			CostPrice:  decimal.Zero,
			SalePrice:  decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		r.tx.items[key] = copyItem(it)
	}
	return it, nil
}

// Save requiere haber bloqueado la fila con LockOrCreate en la misma transacción.
func (r *StockItemRepo) Save(ctx context.Context, item *entity.StockItem) error {
	key := stockKey(item.MerchantID, item.ProductID)
	if r.tx == nil || !r.tx.held[key] {
		return fmt.Errorf("save stock item: %w", errNoTx)
	}
	r.tx.items[key] = copyItem(item)
	return nil
}

// UpdatePrices espera el bloqueo de la fila igual que un UPDATE en PostgreSQL.
func (r *StockItemRepo) UpdatePrices(ctx context.Context, merchantID, productID string, cost, sale *decimal.Decimal, now time.Time) (*entity.StockItem, error) {
	key := stockKey(merchantID, productID)
	if r.tx != nil {
		if !r.tx.held[key] {
			unlock, err := r.s.lock(ctx, r.s.rowLocks, key)
			if err != nil {
				return nil, err
			}
			r.tx.hold(key, unlock)
		}
		it := r.tx.items[key]
		if it == nil {
			r.s.mu.RLock()
			it = copyItem(r.s.items[key])
			r.s.mu.RUnlock()
		}
		if it == nil {
			return nil, nil
		}
		applyPrices(it, cost, sale, now)
		r.tx.items[key] = it
		return copyItem(it), nil
	}

	unlock, err := r.s.lock(ctx, r.s.rowLocks, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[key]
	if !ok {
		return nil, nil
	}
	applyPrices(it, cost, sale, now)
	return copyItem(it), nil
}

func applyPrices(it *entity.StockItem, cost, sale *decimal.Decimal, now time.Time) {
	if cost != nil {
		it.CostPrice = *cost
	}
	if sale != nil {
		it.SalePrice = *sale
	}
	it.UpdatedAt = now
}

func (r *StockItemRepo) Get(ctx context.Context, merchantID, productID string) (*entity.StockItem, error) {
	key := stockKey(merchantID, productID)
	if r.tx != nil {
		if it, ok := r.tx.items[key]; ok {
			return copyItem(it), nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.withProduct(r.s.items[key]), nil
}

// ListByMerchant ítems del comerciante ordenados por nombre de producto.
func (r *StockItemRepo) ListByMerchant(ctx context.Context, merchantID string) ([]*entity.StockItem, error) {
	out := r.filter(merchantID, func(*entity.StockItem) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return productName(out[i]) < productName(out[j]) })
	return out, nil
}

func (r *StockItemRepo) ListLow(ctx context.Context, merchantID string, threshold int64) ([]*entity.StockItem, error) {
	out := r.filter(merchantID, func(it *entity.StockItem) bool { return it.IsLow(threshold) })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return productName(out[i]) < productName(out[j])
	})
	return out, nil
}

func (r *StockItemRepo) Count(ctx context.Context, merchantID string, threshold int64) (repository.StockCounts, error) {
	var c repository.StockCounts
	for _, it := range r.filter(merchantID, func(*entity.StockItem) bool { return true }) {
		c.Total++
		if it.IsLow(threshold) {
			c.Low++
		}
	}
	return c, nil
}

// filter lee solo datos confirmados.
func (r *StockItemRepo) filter(merchantID string, keep func(*entity.StockItem) bool) []*entity.StockItem {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockItem
	for _, it := range r.s.items {
		if it.MerchantID == merchantID && keep(it) {
			out = append(out, r.withProduct(it))
		}
	}
	return out
}

// withProduct copia el ítem y adjunta su producto. Requiere s.mu tomado.
func (r *StockItemRepo) withProduct(it *entity.StockItem) *entity.StockItem {
	c := copyItem(it)
	if c != nil {
		c.Product = copyProduct(r.s.products[c.ProductID])
	}
	return c
}

func productName(it *entity.StockItem) string {
	if it.Product == nil {
		return it.ProductID
	}
	return it.Product.Name
}
