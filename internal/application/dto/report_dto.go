package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryValueResponse valor del inventario (precio de venta, o costo si no hay venta).
type InventoryValueResponse struct {
	TotalValue decimal.Decimal `json:"total_value"`
	TotalUnits int64           `json:"total_units"`
	ItemCount  int             `json:"item_count"`
}

// ActivityResponse actividad reciente por origen.
type ActivityResponse struct {
	WindowDays int            `json:"window_days"`
	BySource   map[string]int `json:"by_source"`
	TotalScans int            `json:"total_scans"` // movimientos IN y OUT
	TotalLogs  int            `json:"total_logs"`
}

// DashboardResponse resumen del comerciante para la pantalla principal.
type DashboardResponse struct {
	BankabilityScore decimal.Decimal        `json:"bankability_score"`
	InventoryValue   InventoryValueResponse `json:"inventory_value"`
	LowStockCount    int                    `json:"low_stock_count"`
	CriticalCount    int                    `json:"critical_count"`
	Activity         ActivityResponse       `json:"activity"`
}

// SalesEntryDTO una salida (OUT) del reporte de ventas.
type SalesEntryDTO struct {
	LogID       string    `json:"log_id"`
	ProductID   string    `json:"product_id"`
	Barcode     string    `json:"barcode"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	DeviceID    string    `json:"device_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// SalesResponse salidas de los últimos PeriodDays días.
type SalesResponse struct {
	PeriodDays int             `json:"period_days"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	TotalUnits int64           `json:"total_units"`
	SalesCount int             `json:"sales_count"`
	Entries    []SalesEntryDTO `json:"entries"`
}
