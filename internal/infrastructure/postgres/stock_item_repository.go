package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockColumns = `s.id, s.merchant_id, s.product_id, s.quantity, s.cost_price, s.sale_price, s.created_at, s.updated_at`

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// LockOrCreate asegura la fila con INSERT ... ON CONFLICT DO NOTHING y la bloquea con SELECT ... FOR UPDATE.
// Dos primeros escaneos concurrentes del mismo producto terminan serializados sobre la misma fila.
func (r *StockItemRepo) LockOrCreate(ctx context.Context, merchantID, productID string, now time.Time) (*entity.StockItem, error) {
	insert := `
		INSERT INTO stock_items (id, merchant_id, product_id, quantity, cost_price, sale_price, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, $4, $4)
		ON CONFLICT (merchant_id, product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), merchantID, productID, now); err != nil {
		return nil, lockErr("ensure stock item", err)
	}

	query := `
		SELECT ` + stockColumns + `
		FROM stock_items s
		WHERE s.merchant_id = $1 AND s.product_id = $2
		FOR UPDATE`
	it, err := scanStockItem(r.q.QueryRow(ctx, query, merchantID, productID))
	if err != nil {
		return nil, lockErr("lock stock item", err)
	}
	return it, nil
}

// Save persiste cantidad y precios. La restricción CHECK (quantity >= 0) respalda la validación del motor.
func (r *StockItemRepo) Save(ctx context.Context, item *entity.StockItem) error {
	query := `
		UPDATE stock_items SET quantity = $3, cost_price = $4, sale_price = $5, updated_at = $6
		WHERE merchant_id = $1 AND product_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		item.MerchantID, item.ProductID, item.Quantity, item.CostPrice, item.SalePrice, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrStockItemNotFound
	}
	return nil
}

// UpdatePrices COALESCE conserva el precio que no se envía.
func (r *StockItemRepo) UpdatePrices(ctx context.Context, merchantID, productID string, cost, sale *decimal.Decimal, now time.Time) (*entity.StockItem, error) {
	query := `
		UPDATE stock_items s
		SET cost_price = COALESCE($3, s.cost_price),
		    sale_price = COALESCE($4, s.sale_price),
		    updated_at = $5
		WHERE s.merchant_id = $1 AND s.product_id = $2
		RETURNING ` + stockColumns
	it, err := scanStockItem(r.q.QueryRow(ctx, query, merchantID, productID, cost, sale, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, lockErr("update prices", err)
	}
	return it, nil
}

func (r *StockItemRepo) Get(ctx context.Context, merchantID, productID string) (*entity.StockItem, error) {
	query := `
		SELECT ` + stockColumns + `, p.barcode, p.name
		FROM stock_items s JOIN products p ON p.id = s.product_id
		WHERE s.merchant_id = $1 AND s.product_id = $2`
	items, err := r.list(ctx, query, merchantID, productID)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

func (r *StockItemRepo) ListByMerchant(ctx context.Context, merchantID string) ([]*entity.StockItem, error) {
	query := `
		SELECT ` + stockColumns + `, p.barcode, p.name
		FROM stock_items s JOIN products p ON p.id = s.product_id
		WHERE s.merchant_id = $1
		ORDER BY p.name`
	return r.list(ctx, query, merchantID)
}

func (r *StockItemRepo) ListLow(ctx context.Context, merchantID string, threshold int64) ([]*entity.StockItem, error) {
	query := `
		SELECT ` + stockColumns + `, p.barcode, p.name
		FROM stock_items s JOIN products p ON p.id = s.product_id
		WHERE s.merchant_id = $1 AND s.quantity <= $2
		ORDER BY s.quantity, p.name`
	return r.list(ctx, query, merchantID, threshold)
}

func (r *StockItemRepo) Count(ctx context.Context, merchantID string, threshold int64) (repository.StockCounts, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE quantity <= $2)
		FROM stock_items WHERE merchant_id = $1`
	var c repository.StockCounts
	if err := r.q.QueryRow(ctx, query, merchantID, threshold).Scan(&c.Total, &c.Low); err != nil {
		return c, fmt.Errorf("count stock items: %w", err)
	}
	return c, nil
}

func (r *StockItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockItem
	for rows.Next() {
		var it entity.StockItem
		p := entity.Product{}
		if err := rows.Scan(
			&it.ID, &it.MerchantID, &it.ProductID, &it.Quantity, &it.CostPrice, &it.SalePrice, &it.CreatedAt, &it.UpdatedAt,
			&p.Barcode, &p.Name,
		); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		p.ID = it.ProductID
		it.Product = &p
		out = append(out, &it)
	}
	return out, rows.Err()
}

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var it entity.StockItem
	err := row.Scan(&it.ID, &it.MerchantID, &it.ProductID, &it.Quantity, &it.CostPrice, &it.SalePrice, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// lockErr traduce el vencimiento de lock_timeout a ErrLockTimeout.
func lockErr(op string, err error) error {
	if isLockNotAvailable(err) {
		return domain.ErrLockTimeout
	}
	return fmt.Errorf("%s: %w", op, err)
}
