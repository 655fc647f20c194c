package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem es la cantidad física de un producto en la tienda de un comerciante.
// Quantity nunca es negativa y solo la modifica el motor de movimientos (ledger).
type StockItem struct {
	ID         string
	MerchantID string
	ProductID  string
	Quantity   int64
	CostPrice  decimal.Decimal // precio de compra
	SalePrice  decimal.Decimal // precio de etiqueta
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Product se llena solo en consultas de lectura que hacen join con el catálogo.
	Product *Product
}

// UnitValue precio usado para valorizar el inventario: venta, o costo si no hay precio de venta.
func (s *StockItem) UnitValue() decimal.Decimal {
	if s.SalePrice.IsPositive() {
		return s.SalePrice
	}
	return s.CostPrice
}

// IsLow indica si la cantidad está en o por debajo del umbral de alerta.
func (s *StockItem) IsLow(threshold int64) bool {
	return s.Quantity <= threshold
}
