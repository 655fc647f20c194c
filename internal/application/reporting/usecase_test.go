package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/internal/application/reporting"
	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/infrastructure/memory"
	"github.com/jhoicas/sylistock-api/pkg/logger"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// seed: A=1 (venta 2.50), B=4 (solo costo 1.00), C=20 (venta 0.10), más una venta de A.
func seed(t *testing.T) (*memory.Store, *reporting.UseCase) {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Merchants().Create(ctx, &entity.MerchantProfile{ID: "m1", AlertThreshold: 5, BankabilityScore: decimal.RequireFromString("40")}))

	lg := ledger.NewUseCase(s, s.Merchants(), nil, ledger.Config{OnUnknownBarcode: ledger.AutoCreateUnknown}, logger.NewNop())
	res, err := lg.ImportRows(ctx, "m1", "tablet-1", []ledger.ImportRow{
		{Barcode: "A", Name: "Aceite", Quantity: 2, SalePrice: dec("2.50"), CostPrice: dec("1.80")},
		{Barcode: "B", Name: "Bombillo", Quantity: 4, CostPrice: dec("1.00")},
		{Barcode: "C", Name: "Chicle", Quantity: 20, SalePrice: dec("0.10")},
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Imported)

	_, err = lg.ProcessScan(ctx, "m1", "A", entity.ActionOUT, entity.SourceZebra, "zebra-1")
	require.NoError(t, err)

	return s, reporting.NewUseCase(s.Merchants(), s.StockItems(), s.Logs())
}

func TestHistory(t *testing.T) {
	_, uc := seed(t)
	ctx := context.Background()

	all, err := uc.History(ctx, "m1", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Count)
	assert.Equal(t, entity.ActionOUT, all.Items[0].Action, "el más reciente primero")
	assert.Equal(t, "Aceite", all.Items[0].ProductName)

	two, err := uc.History(ctx, "m1", 2)
	require.NoError(t, err)
	assert.Len(t, two.Items, 2)
}

func TestLowStockAlerts(t *testing.T) {
	_, uc := seed(t)

	resp, err := uc.LowStockAlerts(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Threshold)
	require.Equal(t, 2, resp.TotalAlerts)
	assert.Equal(t, "A", resp.Items[0].Barcode)
	assert.Equal(t, "B", resp.Items[1].Barcode)
	assert.Equal(t, 1, resp.CriticalCount)

	_, err = uc.LowStockAlerts(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrMerchantNotFound)
}

func TestInventoryValue(t *testing.T) {
	_, uc := seed(t)

	resp, err := uc.InventoryValue(context.Background(), "m1")
	require.NoError(t, err)
	// 1×2.50 + 4×1.00 + 20×0.10
	assert.Equal(t, "8.50", resp.TotalValue.StringFixed(2))
	assert.Equal(t, int64(25), resp.TotalUnits)
	assert.Equal(t, 3, resp.ItemCount)
}

func TestActivity(t *testing.T) {
	_, uc := seed(t)

	resp, err := uc.Activity(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.BySource[entity.SourceBulkImport])
	assert.Equal(t, 1, resp.BySource[entity.SourceZebra])
	assert.Equal(t, 0, resp.BySource[entity.SourcePhone])
	assert.Equal(t, 4, resp.TotalScans)
	assert.Equal(t, 4, resp.TotalLogs)
}

func TestSales(t *testing.T) {
	s, uc := seed(t)
	ctx := context.Background()

	a, err := s.Products().GetByBarcode(ctx, "A")
	require.NoError(t, err)
	// una salida vieja, fuera de la ventana de 7 días
	require.NoError(t, s.Logs().Append(ctx, &entity.InventoryLog{
		ID: "old-out", MerchantID: "m1", ProductID: a.ID, Action: entity.ActionOUT,
		QuantityChanged: -3, Source: entity.SourcePhone, DeviceID: "phone-1",
		Timestamp: time.Now().UTC().AddDate(0, 0, -10),
	}))

	week, err := uc.Sales(ctx, "m1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, week.PeriodDays)
	assert.Equal(t, int64(1), week.TotalUnits)
	require.Equal(t, 1, week.SalesCount)
	assert.Equal(t, "A", week.Entries[0].Barcode)
	assert.Equal(t, "Aceite", week.Entries[0].ProductName)
	assert.Equal(t, "zebra-1", week.Entries[0].DeviceID)
	assert.Equal(t, int64(1), week.Entries[0].Quantity)

	month, err := uc.Sales(ctx, "m1", 0)
	require.NoError(t, err)
	assert.Equal(t, reporting.DefaultSalesDays, month.PeriodDays)
	assert.Equal(t, int64(4), month.TotalUnits)
	assert.Equal(t, 2, month.SalesCount)
	assert.Equal(t, "old-out", month.Entries[1].LogID, "el más reciente primero")
}

func TestSales_Errores(t *testing.T) {
	_, uc := seed(t)
	ctx := context.Background()

	_, err := uc.Sales(ctx, "m1", reporting.MaxSalesDays+1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Sales(ctx, "ghost", 7)
	assert.ErrorIs(t, err, domain.ErrMerchantNotFound)
}

func TestDashboard(t *testing.T) {
	_, uc := seed(t)

	resp, err := uc.Dashboard(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "40", resp.BankabilityScore.String())
	assert.Equal(t, 2, resp.LowStockCount)
	assert.Equal(t, "8.50", resp.InventoryValue.TotalValue.StringFixed(2))
}
