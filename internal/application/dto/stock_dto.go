package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementRequest body de POST /api/stock/movements.
type StockMovementRequest struct {
	Barcode  string `json:"barcode"`
	Quantity int64  `json:"quantity"` // con signo: +10 reposición, -1 venta
	Action   string `json:"action"`   // IN, OUT, ADJ
	Source   string `json:"source"`   // ZEBRA, PHONE, MANUAL
	DeviceID string `json:"device_id"`
	Reason   string `json:"reason,omitempty"`
}

// ScanRequest body de POST /api/stock/scan (un escaneo = una unidad).
type ScanRequest struct {
	Barcode  string `json:"barcode"`
	Action   string `json:"action"` // IN u OUT
	Source   string `json:"source"`
	DeviceID string `json:"device_id"`
}

// StockMovementResponse resultado de un movimiento confirmado.
type StockMovementResponse struct {
	LogID          string           `json:"log_id"`
	ProductID      string           `json:"product_id"`
	Barcode        string           `json:"barcode"`
	ProductName    string           `json:"product_name"`
	Action         string           `json:"action"`
	QuantityChange int64            `json:"quantity_changed"`
	NewQuantity    int64            `json:"new_quantity"`
	ProductCreated bool             `json:"product_created"`
	Timestamp      time.Time        `json:"timestamp"`
	Warning        *WarningResponse `json:"warning,omitempty"`
}

// ImportRowRequest fila de una importación masiva.
type ImportRowRequest struct {
	Barcode     string           `json:"barcode"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Quantity    int64            `json:"quantity"`
	CostPrice   *decimal.Decimal `json:"cost_price,omitempty"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
}

// ImportRequest body de POST /api/stock/import.
type ImportRequest struct {
	DeviceID string             `json:"device_id,omitempty"`
	Rows     []ImportRowRequest `json:"rows"`
}

// ImportRowError error de una fila (1-based).
type ImportRowError struct {
	Row     int    `json:"row"`
	Barcode string `json:"barcode"`
	Error   string `json:"error"`
}

// ImportResponse resumen de la importación.
type ImportResponse struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
	Warning  *WarningResponse `json:"warning,omitempty"`
}

// CountRowRequest cantidad contada de un código de barras.
type CountRowRequest struct {
	Barcode   string           `json:"barcode"`
	Quantity  int64            `json:"quantity"` // cantidad absoluta, >= 0
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
}

// CountRequest body de POST /api/stock/counts.
type CountRequest struct {
	DeviceID string            `json:"device_id,omitempty"`
	Rows     []CountRowRequest `json:"rows"`
}

// CountResponse resumen de la corrección por conteo.
type CountResponse struct {
	Updated   int              `json:"updated"`
	Unchanged int              `json:"unchanged"`
	Skipped   int              `json:"skipped"`
	Errors    []ImportRowError `json:"errors,omitempty"`
	Warning   *WarningResponse `json:"warning,omitempty"`
}

// UpdatePricesRequest body de PUT /api/stock/:barcode/prices. Campos nil no se modifican.
type UpdatePricesRequest struct {
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
}

// StockItemResponse ítem de inventario de un comerciante.
type StockItemResponse struct {
	ProductID   string          `json:"product_id"`
	Barcode     string          `json:"barcode"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HistoryEntryDTO entrada del historial de movimientos.
type HistoryEntryDTO struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	Barcode         string    `json:"barcode"`
	ProductName     string    `json:"product_name"`
	Action          string    `json:"action"`
	QuantityChanged int64     `json:"quantity_changed"`
	Source          string    `json:"source"`
	DeviceID        string    `json:"device_id"`
	Reason          string    `json:"reason,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// HistoryResponse últimos movimientos del comerciante.
type HistoryResponse struct {
	Items []HistoryEntryDTO `json:"items"`
	Count int               `json:"count"`
}

// LowStockAlertsResponse ítems en o por debajo del umbral.
type LowStockAlertsResponse struct {
	Threshold     int64               `json:"threshold"`
	Items         []StockItemResponse `json:"items"`
	TotalAlerts   int                 `json:"total_alerts"`
	CriticalCount int                 `json:"critical_count"` // cantidad < 2
}
