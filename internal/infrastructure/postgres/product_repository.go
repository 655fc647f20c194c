package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, barcode, name, description, created_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto; ErrDuplicate si el código de barras ya existe.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, product.ID, product.Barcode, product.Name, product.Description, product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)
}

// GetOrCreate inserta con ON CONFLICT DO NOTHING; si otra transacción ganó la carrera,
// el INSERT espera su commit y luego se lee la fila existente.
func (r *ProductRepo) GetOrCreate(ctx context.Context, product *entity.Product) (*entity.Product, bool, error) {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (barcode) DO NOTHING
		RETURNING ` + productColumns
	created, err := scanProduct(r.q.QueryRow(ctx, query,
		product.ID, product.Barcode, product.Name, product.Description, product.CreatedAt,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if isLockNotAvailable(err) {
			return nil, false, domain.ErrLockTimeout
		}
		return nil, false, fmt.Errorf("insert product: %w", err)
	}

	existing, err := r.GetByBarcode(ctx, product.Barcode)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("get or create product %s: fila no visible tras conflicto", product.Barcode)
	}
	return existing, false, nil
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Description, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
