package ledger

import (
	"context"

	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a ella.
// Commit si fn devuelve nil; Rollback en cualquier otro caso (incluye liberar los bloqueos de fila).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		stockRepo repository.StockItemRepository,
		logRepo repository.InventoryLogRepository,
	) error) error
}

// ScoreTrigger dispara el recálculo del puntaje después de un commit.
// Puede ser síncrono (inline) o diferido (cola de eventos).
type ScoreTrigger interface {
	Trigger(ctx context.Context, merchantID string) error
}
