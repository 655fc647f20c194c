package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("%w: ...") y los adaptadores los comparan con errors.Is.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrMerchantNotFound    = errors.New("perfil de comerciante no encontrado")
	ErrStockItemNotFound   = errors.New("ítem de inventario no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrLockTimeout         = errors.New("tiempo de espera agotado al bloquear el stock")
	ErrRecomputationFailed = errors.New("no se pudo recalcular el puntaje de bancabilidad")
)
