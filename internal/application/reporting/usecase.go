// Package reporting contiene las consultas de lectura del comerciante: historial,
// alertas de stock bajo, valor del inventario, actividad y el resumen del dashboard.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/application/inventory"
	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

const (
	// DefaultHistoryLimit entradas de historial si no se indica límite.
	DefaultHistoryLimit = 100
	// MaxHistoryLimit tope de entradas por consulta.
	MaxHistoryLimit = 1000
	// CriticalQuantity cantidades por debajo de este valor son críticas.
	CriticalQuantity = 2
	// ActivityWindowDays ventana del reporte de actividad.
	ActivityWindowDays = 30
	// DefaultSalesDays ventana del reporte de ventas si no se indica.
	DefaultSalesDays = 30
	// MaxSalesDays ventana máxima del reporte de ventas.
	MaxSalesDays = 365
)

// UseCase consultas read-only; no modifica datos.
type UseCase struct {
	merchants repository.MerchantRepository
	stock     repository.StockItemRepository
	logs      repository.InventoryLogRepository
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	merchants repository.MerchantRepository,
	stock repository.StockItemRepository,
	logs repository.InventoryLogRepository,
) *UseCase {
	return &UseCase{merchants: merchants, stock: stock, logs: logs, now: time.Now}
}

// History últimos movimientos, más reciente primero. limit <= 0 usa DefaultHistoryLimit.
func (uc *UseCase) History(ctx context.Context, merchantID string, limit int) (*dto.HistoryResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	logs, err := uc.logs.ListByMerchant(ctx, merchantID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.HistoryEntryDTO, 0, len(logs))
	for _, l := range logs {
		items = append(items, toHistoryEntry(l))
	}
	return &dto.HistoryResponse{Items: items, Count: len(items)}, nil
}

// LowStockAlerts ítems con cantidad <= umbral del comerciante.
func (uc *UseCase) LowStockAlerts(ctx context.Context, merchantID string) (*dto.LowStockAlertsResponse, error) {
	merchant, err := uc.merchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	items, err := uc.stock.ListLow(ctx, merchantID, merchant.AlertThreshold)
	if err != nil {
		return nil, err
	}
	resp := &dto.LowStockAlertsResponse{
		Threshold: merchant.AlertThreshold,
		Items:     make([]dto.StockItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, inventory.ToStockItemResponse(it))
		if it.Quantity < CriticalQuantity {
			resp.CriticalCount++
		}
	}
	resp.TotalAlerts = len(resp.Items)
	return resp, nil
}

// InventoryValue suma de cantidad × precio de venta (o costo si no hay precio de venta).
func (uc *UseCase) InventoryValue(ctx context.Context, merchantID string) (*dto.InventoryValueResponse, error) {
	items, err := uc.stock.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	resp := &dto.InventoryValueResponse{TotalValue: decimal.Zero}
	for _, it := range items {
		resp.TotalValue = resp.TotalValue.Add(it.UnitValue().Mul(decimal.NewFromInt(it.Quantity)))
		resp.TotalUnits += it.Quantity
		resp.ItemCount++
	}
	resp.TotalValue = resp.TotalValue.Round(2)
	return resp, nil
}

// Activity movimientos de los últimos 30 días por origen.
func (uc *UseCase) Activity(ctx context.Context, merchantID string) (*dto.ActivityResponse, error) {
	since := uc.now().UTC().AddDate(0, 0, -ActivityWindowDays)
	bySource, scans, err := uc.logs.CountBySourceSince(ctx, merchantID, since)
	if err != nil {
		return nil, err
	}
	resp := &dto.ActivityResponse{
		WindowDays: ActivityWindowDays,
		BySource:   make(map[string]int, len(entity.Sources())),
		TotalScans: scans,
	}
	for _, src := range entity.Sources() {
		resp.BySource[src] = bySource[src]
		resp.TotalLogs += bySource[src]
	}
	return resp, nil
}

// Sales salidas (OUT) de los últimos days días, más reciente primero.
// days <= 0 usa DefaultSalesDays; más de MaxSalesDays es ErrInvalidInput.
func (uc *UseCase) Sales(ctx context.Context, merchantID string, days int) (*dto.SalesResponse, error) {
	if days <= 0 {
		days = DefaultSalesDays
	}
	if days > MaxSalesDays {
		return nil, fmt.Errorf("%w: days debe ser <= %d", domain.ErrInvalidInput, MaxSalesDays)
	}
	if _, err := uc.merchant(ctx, merchantID); err != nil {
		return nil, err
	}

	end := uc.now().UTC()
	start := end.AddDate(0, 0, -days)
	logs, err := uc.logs.ListByActionSince(ctx, merchantID, entity.ActionOUT, start)
	if err != nil {
		return nil, err
	}

	resp := &dto.SalesResponse{
		PeriodDays: days,
		StartDate:  start,
		EndDate:    end,
		Entries:    make([]dto.SalesEntryDTO, 0, len(logs)),
	}
	for _, l := range logs {
		qty := l.QuantityChanged
		if qty < 0 {
			qty = -qty
		}
		e := dto.SalesEntryDTO{
			LogID:     l.ID,
			ProductID: l.ProductID,
			Quantity:  qty,
			DeviceID:  l.DeviceID,
			Timestamp: l.Timestamp,
		}
		if l.Product != nil {
			e.Barcode = l.Product.Barcode
			e.ProductName = l.Product.Name
		}
		resp.TotalUnits += qty
		resp.Entries = append(resp.Entries, e)
	}
	resp.SalesCount = len(resp.Entries)
	return resp, nil
}

// Dashboard combina puntaje, valor, alertas y actividad. Las consultas corren en paralelo.
func (uc *UseCase) Dashboard(ctx context.Context, merchantID string) (*dto.DashboardResponse, error) {
	merchant, err := uc.merchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	type valueResult struct {
		v   *dto.InventoryValueResponse
		err error
	}
	type alertsResult struct {
		v   *dto.LowStockAlertsResponse
		err error
	}
	type activityResult struct {
		v   *dto.ActivityResponse
		err error
	}
	valueCh := make(chan valueResult, 1)
	alertsCh := make(chan alertsResult, 1)
	activityCh := make(chan activityResult, 1)

	go func() {
		v, err := uc.InventoryValue(ctx, merchantID)
		valueCh <- valueResult{v, err}
	}()
	go func() {
		v, err := uc.LowStockAlerts(ctx, merchantID)
		alertsCh <- alertsResult{v, err}
	}()
	go func() {
		v, err := uc.Activity(ctx, merchantID)
		activityCh <- activityResult{v, err}
	}()

	value := <-valueCh
	alerts := <-alertsCh
	activity := <-activityCh

	if value.err != nil {
		return nil, fmt.Errorf("dashboard: valor de inventario: %w", value.err)
	}
	if alerts.err != nil {
		return nil, fmt.Errorf("dashboard: alertas: %w", alerts.err)
	}
	if activity.err != nil {
		return nil, fmt.Errorf("dashboard: actividad: %w", activity.err)
	}

	return &dto.DashboardResponse{
		BankabilityScore: merchant.BankabilityScore,
		InventoryValue:   *value.v,
		LowStockCount:    alerts.v.TotalAlerts,
		CriticalCount:    alerts.v.CriticalCount,
		Activity:         *activity.v,
	}, nil
}

func (uc *UseCase) merchant(ctx context.Context, merchantID string) (*entity.MerchantProfile, error) {
	m, err := uc.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMerchantNotFound
	}
	return m, nil
}

func toHistoryEntry(l *entity.InventoryLog) dto.HistoryEntryDTO {
	e := dto.HistoryEntryDTO{
		ID:              l.ID,
		ProductID:       l.ProductID,
		Action:          l.Action,
		QuantityChanged: l.QuantityChanged,
		Source:          l.Source,
		DeviceID:        l.DeviceID,
		Reason:          l.Reason,
		Timestamp:       l.Timestamp,
	}
	if l.Product != nil {
		e.Barcode = l.Product.Barcode
		e.ProductName = l.Product.Name
	}
	return e
}
