package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var _ repository.InventoryLogRepository = (*InventoryLogRepo)(nil)

// InventoryLogRepo registro de movimientos sobre PostgreSQL. Solo INSERT y SELECT.
type InventoryLogRepo struct {
	q Querier
}

// NewInventoryLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryLogRepository(q Querier) *InventoryLogRepo {
	return &InventoryLogRepo{q: q}
}

func (r *InventoryLogRepo) Append(ctx context.Context, l *entity.InventoryLog) error {
	query := `
		INSERT INTO inventory_logs (id, merchant_id, product_id, action, quantity_changed, source, device_id, reason, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.MerchantID, l.ProductID, l.Action, l.QuantityChanged, l.Source, l.DeviceID, l.Reason, l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert inventory log: %w", err)
	}
	return nil
}

// ListByMerchant limit <= 0 devuelve todos.
func (r *InventoryLogRepo) ListByMerchant(ctx context.Context, merchantID string, limit int) ([]*entity.InventoryLog, error) {
	query := `
		SELECT l.id, l.merchant_id, l.product_id, l.action, l.quantity_changed, l.source, l.device_id, l.reason, l.logged_at,
		       p.barcode, p.name
		FROM inventory_logs l JOIN products p ON p.id = l.product_id
		WHERE l.merchant_id = $1
		ORDER BY l.logged_at DESC, l.id DESC
		LIMIT NULLIF($2, 0)`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.q.Query(ctx, query, merchantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list inventory logs: %w", err)
	}
	defer rows.Close()
	return scanLogs(rows)
}

// scanLogs lee filas de inventory_logs unidas a products (barcode, name).
func scanLogs(rows pgx.Rows) ([]*entity.InventoryLog, error) {
	var out []*entity.InventoryLog
	for rows.Next() {
		var l entity.InventoryLog
		p := entity.Product{}
		if err := rows.Scan(
			&l.ID, &l.MerchantID, &l.ProductID, &l.Action, &l.QuantityChanged, &l.Source, &l.DeviceID, &l.Reason, &l.Timestamp,
			&p.Barcode, &p.Name,
		); err != nil {
			return nil, fmt.Errorf("scan inventory log: %w", err)
		}
		p.ID = l.ProductID
		l.Product = &p
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *InventoryLogRepo) ListByActionSince(ctx context.Context, merchantID, action string, since time.Time) ([]*entity.InventoryLog, error) {
	query := `
		SELECT l.id, l.merchant_id, l.product_id, l.action, l.quantity_changed, l.source, l.device_id, l.reason, l.logged_at,
		       p.barcode, p.name
		FROM inventory_logs l JOIN products p ON p.id = l.product_id
		WHERE l.merchant_id = $1 AND l.action = $2 AND l.logged_at >= $3
		ORDER BY l.logged_at DESC, l.id DESC`
	rows, err := r.q.Query(ctx, query, merchantID, action, since)
	if err != nil {
		return nil, fmt.Errorf("list inventory logs by action: %w", err)
	}
	defer rows.Close()
	return scanLogs(rows)
}

func (r *InventoryLogRepo) CountSince(ctx context.Context, merchantID string, since time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_logs WHERE merchant_id = $1 AND logged_at >= $2`,
		merchantID, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count inventory logs: %w", err)
	}
	return n, nil
}

func (r *InventoryLogRepo) CountByProduct(ctx context.Context, merchantID, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_logs WHERE merchant_id = $1 AND product_id = $2`,
		merchantID, productID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count inventory logs by product: %w", err)
	}
	return n, nil
}

func (r *InventoryLogRepo) CountBySourceSince(ctx context.Context, merchantID string, since time.Time) (map[string]int, int, error) {
	query := `
		SELECT source, COUNT(*), COUNT(*) FILTER (WHERE action IN ('IN', 'OUT'))
		FROM inventory_logs
		WHERE merchant_id = $1 AND logged_at >= $2
		GROUP BY source`
	rows, err := r.q.Query(ctx, query, merchantID, since)
	if err != nil {
		return nil, 0, fmt.Errorf("count by source: %w", err)
	}
	defer rows.Close()

	bySource := make(map[string]int)
	scans := 0
	for rows.Next() {
		var (
			source   string
			n, inOut int
		)
		if err := rows.Scan(&source, &n, &inOut); err != nil {
			return nil, 0, fmt.Errorf("scan count by source: %w", err)
		}
		bySource[source] = n
		scans += inOut
	}
	return bySource, scans, rows.Err()
}
