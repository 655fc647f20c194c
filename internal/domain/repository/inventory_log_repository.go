package repository

import (
	"context"
	"time"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
)

// InventoryLogRepository puerto del registro de movimientos (solo inserción, nunca update/delete).
type InventoryLogRepository interface {
	Append(ctx context.Context, log *entity.InventoryLog) error
	// ListByMerchant últimos movimientos, más reciente primero.
	ListByMerchant(ctx context.Context, merchantID string, limit int) ([]*entity.InventoryLog, error)
	CountSince(ctx context.Context, merchantID string, since time.Time) (int, error)
	CountByProduct(ctx context.Context, merchantID, productID string) (int, error)
	// CountBySourceSince agrupa por origen; también devuelve cuántos fueron IN/OUT.
	CountBySourceSince(ctx context.Context, merchantID string, since time.Time) (bySource map[string]int, scans int, err error)
	// ListByActionSince movimientos de una acción desde since, más reciente primero, con el producto cargado.
	ListByActionSince(ctx context.Context, merchantID, action string, since time.Time) ([]*entity.InventoryLog, error)
}
