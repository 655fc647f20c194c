package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
)

// StockCounts conteo de ítems de un comerciante para el factor de salud de stock.
type StockCounts struct {
	Total int
	Low   int // cantidad <= umbral
}

// StockItemRepository define el puerto para el stock por comerciante+producto.
type StockItemRepository interface {
	// LockOrCreate asegura que la fila exista (cantidad 0, precios 0) y la bloquea en forma exclusiva
	// hasta el fin de la transacción. Solo es válido dentro de TxRunner.Run.
	LockOrCreate(ctx context.Context, merchantID, productID string, now time.Time) (*entity.StockItem, error)
	// Save persiste cantidad y precios de una fila bloqueada con LockOrCreate.
	Save(ctx context.Context, item *entity.StockItem) error
	// UpdatePrices cambia precios sin tocar la cantidad; (nil, nil) si el ítem no existe.
	UpdatePrices(ctx context.Context, merchantID, productID string, cost, sale *decimal.Decimal, now time.Time) (*entity.StockItem, error)

	Get(ctx context.Context, merchantID, productID string) (*entity.StockItem, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]*entity.StockItem, error)
	// ListLow devuelve los ítems con cantidad <= threshold, menor cantidad primero.
	ListLow(ctx context.Context, merchantID string, threshold int64) ([]*entity.StockItem, error)
	Count(ctx context.Context, merchantID string, threshold int64) (StockCounts, error)
}
