package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAlertThreshold umbral de stock bajo para perfiles nuevos.
const DefaultAlertThreshold = 5

// MerchantProfile perfil de negocio de un usuario registrado.
// BankabilityScore es derivado (0-100, 2 decimales) y se recalcula tras cada movimiento.
type MerchantProfile struct {
	ID               string
	UserID           string
	BusinessName     string
	Location         string // p. ej. "Madina Market"
	BankabilityScore decimal.Decimal
	BusinessAgeDays  int
	AlertThreshold   int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
