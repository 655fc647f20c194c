package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sylistock-api/internal/application/bankability"
	"github.com/jhoicas/sylistock-api/internal/application/catalog"
	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/application/inventory"
	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/internal/application/reporting"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/sylistock-api/internal/interfaces/http"
	"github.com/jhoicas/sylistock-api/pkg/logger"
)

const testBarcode = "7501000000017"

// buildAPI arma el router completo sobre el almacén en memoria con un comerciante y un producto.
func buildAPI(t *testing.T, policy ledger.UnknownBarcodePolicy) (*fiber.App, *memory.Store) {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Merchants().Create(ctx, &entity.MerchantProfile{
		ID:              testMerchantID,
		BusinessName:    "Tienda Ama",
		BusinessAgeDays: 400,
		AlertThreshold:  5,
	}))
	require.NoError(t, s.Verifications().Add(ctx, &entity.Verification{MerchantID: testMerchantID, Status: entity.VerificationApproved}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p-1", Barcode: testBarcode, Name: "Leche"}))

	log := logger.NewNop()
	score := bankability.NewUseCase(s.Merchants(), s.Verifications(), s.Logs(), s.StockItems(), bankability.Config{}, log)
	deps := apphttp.RouterDeps{
		Ledger:      ledger.NewUseCase(s, s.Merchants(), score, ledger.Config{OnUnknownBarcode: policy}, log),
		Inventory:   inventory.NewUseCase(s.Products(), s.StockItems(), s.Merchants(), score, log),
		Reporting:   reporting.NewUseCase(s.Merchants(), s.StockItems(), s.Logs()),
		Bankability: score,
		Catalog:     catalog.NewUseCase(s.Products()),
		Merchants:   s.Merchants(),
		JWTSecret:   testJWTSecret,
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return app, s
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func movement(qty int64, action string) dto.StockMovementRequest {
	return dto.StockMovementRequest{
		Barcode:  testBarcode,
		Quantity: qty,
		Action:   action,
		Source:   entity.SourceZebra,
		DeviceID: "zebra-001",
	}
}

func TestRouter_SinToken_Retorna401(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	resp := call(t, app, http.MethodGet, "/api/stock/alerts", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_MerchantSinPerfil_Retorna404(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	resp := call(t, app, http.MethodPost, "/api/stock/movements", bearer(t, "m-fantasma"), movement(1, entity.ActionIN))

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "MERCHANT_NOT_FOUND", body.Code)
}

func TestRouter_MovimientosYStockInsuficiente(t *testing.T) {
	app, s := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)

	resp := call(t, app, http.MethodPost, "/api/stock/movements", auth, movement(10, entity.ActionIN))
	var ok dto.StockMovementResponse
	decode(t, resp, &ok)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(10), ok.NewQuantity)
	assert.Equal(t, "p-1", ok.ProductID)
	assert.NotEmpty(t, ok.LogID)
	assert.Nil(t, ok.Warning)

	resp = call(t, app, http.MethodPost, "/api/stock/movements", auth, movement(-11, entity.ActionOUT))
	var conflict dto.ErrorResponse
	decode(t, resp, &conflict)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", conflict.Code)

	it, err := s.StockItems().Get(context.Background(), testMerchantID, "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), it.Quantity, "el rechazo no debe modificar la cantidad")
}

func TestRouter_MovimientoInvalido_Retorna400(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)

	cases := map[string]dto.StockMovementRequest{
		"cantidad cero":     movement(0, entity.ActionIN),
		"IN negativo":       movement(-1, entity.ActionIN),
		"acción inválida":   movement(1, "SELL"),
		"sin dispositivo":   {Barcode: testBarcode, Quantity: 1, Action: entity.ActionIN, Source: entity.SourceZebra},
		"origen inválido":   {Barcode: testBarcode, Quantity: 1, Action: entity.ActionIN, Source: "FAX", DeviceID: "d"},
		"sin código barras": {Quantity: 1, Action: entity.ActionIN, Source: entity.SourceZebra, DeviceID: "d"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/stock/movements", auth, in)
			var body dto.ErrorResponse
			decode(t, resp, &body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION", body.Code)
		})
	}
}

func TestRouter_ScanCodigoDesconocido(t *testing.T) {
	t.Run("reject", func(t *testing.T) {
		app, _ := buildAPI(t, ledger.RejectUnknown)
		resp := call(t, app, http.MethodPost, "/api/stock/scan", bearer(t, testMerchantID), dto.ScanRequest{
			Barcode: "999", Action: entity.ActionIN, Source: entity.SourcePhone, DeviceID: "phone-1",
		})
		var body dto.ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "PRODUCT_NOT_FOUND", body.Code)
	})

	t.Run("auto_create", func(t *testing.T) {
		app, _ := buildAPI(t, ledger.AutoCreateUnknown)
		resp := call(t, app, http.MethodPost, "/api/stock/scan", bearer(t, testMerchantID), dto.ScanRequest{
			Barcode: "999", Action: entity.ActionIN, Source: entity.SourcePhone, DeviceID: "phone-1",
		})
		var body dto.StockMovementResponse
		decode(t, resp, &body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.True(t, body.ProductCreated)
		assert.Equal(t, "Product 999", body.ProductName)
		assert.Equal(t, int64(1), body.NewQuantity)
	})
}

func TestRouter_ImportarFilas(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)
	sale := decimal.RequireFromString("2.50")

	resp := call(t, app, http.MethodPost, "/api/stock/import", auth, dto.ImportRequest{
		Rows: []dto.ImportRowRequest{
			{Barcode: testBarcode, Quantity: 4, SalePrice: &sale},
			{Barcode: "111", Name: "Pan", Quantity: 3},
			{Barcode: "", Name: "Sin código", Quantity: 1},
		},
	})
	var body dto.ImportResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, body.Imported)
	assert.Equal(t, 1, body.Skipped)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, 3, body.Errors[0].Row)

	resp = call(t, app, http.MethodGet, "/api/stock", auth, nil)
	var list struct {
		Total int                     `json:"total"`
		Items []dto.StockItemResponse `json:"items"`
	}
	decode(t, resp, &list)
	assert.Equal(t, 2, list.Total)
}

func TestRouter_ActualizarPrecios(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)
	cost := decimal.RequireFromString("1.20")

	resp := call(t, app, http.MethodPut, "/api/stock/"+testBarcode+"/prices", auth, dto.UpdatePricesRequest{CostPrice: &cost})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sin ítem de inventario no hay precios que actualizar")

	resp = call(t, app, http.MethodPost, "/api/stock/movements", auth, movement(3, entity.ActionIN))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/stock/"+testBarcode+"/prices", auth, dto.UpdatePricesRequest{CostPrice: &cost})
	var item dto.StockItemResponse
	decode(t, resp, &item)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, cost.Equal(item.CostPrice))
	assert.Equal(t, int64(3), item.Quantity)
}

func TestRouter_AlertasEHistorial(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)

	for _, m := range []dto.StockMovementRequest{movement(3, entity.ActionIN), movement(-2, entity.ActionOUT)} {
		resp := call(t, app, http.MethodPost, "/api/stock/movements", auth, m)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := call(t, app, http.MethodGet, "/api/stock/alerts", auth, nil)
	var alerts dto.LowStockAlertsResponse
	decode(t, resp, &alerts)
	assert.Equal(t, int64(5), alerts.Threshold)
	assert.Equal(t, 1, alerts.TotalAlerts)
	assert.Equal(t, 1, alerts.CriticalCount)

	resp = call(t, app, http.MethodGet, "/api/stock/history?limit=1", auth, nil)
	var hist dto.HistoryResponse
	decode(t, resp, &hist)
	require.Equal(t, 1, hist.Count)
	assert.Equal(t, entity.ActionOUT, hist.Items[0].Action)
	assert.Equal(t, int64(-2), hist.Items[0].QuantityChanged)

	resp = call(t, app, http.MethodGet, "/api/stock/history?limit=-1", auth, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_PuntajeSeRecalculaTrasMovimiento(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)

	resp := call(t, app, http.MethodPost, "/api/stock/movements", auth, movement(10, entity.ActionIN))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// aprobado 30 + antigüedad 20 + stock sano 20 + actividad 0
	resp = call(t, app, http.MethodGet, "/api/merchants/me/score", auth, nil)
	var m dto.MerchantResponse
	decode(t, resp, &m)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decimal.NewFromInt(70).Equal(m.BankabilityScore), "obtenido %s", m.BankabilityScore)

	resp = call(t, app, http.MethodPost, "/api/merchants/me/score/recompute", auth, nil)
	var score dto.ScoreResponse
	decode(t, resp, &score)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testMerchantID, score.MerchantID)
	assert.True(t, decimal.NewFromInt(20).Equal(score.Breakdown.StockHealth))
	assert.True(t, decimal.NewFromInt(70).Equal(score.Score))
}

func TestRouter_UmbralDeAlerta(t *testing.T) {
	app, s := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)

	resp := call(t, app, http.MethodPut, "/api/merchants/me/alert-threshold", auth, fiber.Map{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/merchants/me/alert-threshold", auth, fiber.Map{"threshold": -1})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/merchants/me/alert-threshold", auth, fiber.Map{"threshold": 12})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	m, err := s.Merchants().GetByID(context.Background(), testMerchantID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), m.AlertThreshold)
}

func TestRouter_Reportes(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)
	sale := decimal.RequireFromString("1.50")

	resp := call(t, app, http.MethodPost, "/api/stock/movements", auth, movement(4, entity.ActionIN))
	resp.Body.Close()
	resp = call(t, app, http.MethodPut, "/api/stock/"+testBarcode+"/prices", auth, dto.UpdatePricesRequest{SalePrice: &sale})
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/reports/inventory-value", auth, nil)
	var value dto.InventoryValueResponse
	decode(t, resp, &value)
	assert.True(t, decimal.RequireFromString("6").Equal(value.TotalValue), "obtenido %s", value.TotalValue)
	assert.Equal(t, int64(4), value.TotalUnits)

	resp = call(t, app, http.MethodGet, "/api/reports/activity", auth, nil)
	var act dto.ActivityResponse
	decode(t, resp, &act)
	assert.Equal(t, 1, act.BySource[entity.SourceZebra])
	assert.Equal(t, 0, act.BySource[entity.SourcePhone])
	assert.Equal(t, 1, act.TotalScans)

	resp = call(t, app, http.MethodGet, "/api/reports/dashboard", auth, nil)
	var dash dto.DashboardResponse
	decode(t, resp, &dash)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, dash.LowStockCount)
}

func TestRouter_ReporteDeVentas(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)

	resp := call(t, app, http.MethodPost, "/api/stock/movements", auth, movement(6, entity.ActionIN))
	resp.Body.Close()
	resp = call(t, app, http.MethodPost, "/api/stock/movements", auth, movement(-2, entity.ActionOUT))
	resp.Body.Close()
	resp = call(t, app, http.MethodPost, "/api/stock/scan", auth, dto.ScanRequest{
		Barcode: testBarcode, Action: entity.ActionOUT, Source: entity.SourcePhone, DeviceID: "phone-7",
	})
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/reports/sales?days=7", auth, nil)
	var sales dto.SalesResponse
	decode(t, resp, &sales)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, sales.PeriodDays)
	assert.Equal(t, int64(3), sales.TotalUnits)
	require.Equal(t, 2, sales.SalesCount)
	for _, e := range sales.Entries {
		assert.Equal(t, testBarcode, e.Barcode)
		assert.Equal(t, "Leche", e.ProductName)
	}

	resp = call(t, app, http.MethodGet, "/api/reports/sales?days=9999", auth, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_CorreccionPorConteo(t *testing.T) {
	app, s := buildAPI(t, ledger.RejectUnknown)
	auth := bearer(t, testMerchantID)

	resp := call(t, app, http.MethodPost, "/api/stock/movements", auth, movement(9, entity.ActionIN))
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/stock/counts", auth, dto.CountRequest{
		DeviceID: "tablet-1",
		Rows: []dto.CountRowRequest{
			{Barcode: testBarcode, Quantity: 7},
			{Barcode: testBarcode, Quantity: 7},
			{Barcode: testBarcode, Quantity: -1},
		},
	})
	var out dto.CountResponse
	decode(t, resp, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, out.Updated)
	assert.Equal(t, 1, out.Unchanged)
	assert.Equal(t, 1, out.Skipped)

	it, err := s.StockItems().Get(context.Background(), testMerchantID, "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), it.Quantity)

	n, err := s.Logs().CountByProduct(context.Background(), testMerchantID, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "el conteo sin cambios no escribe registro")
}

func TestRouter_Productos(t *testing.T) {
	app, _ := buildAPI(t, ledger.RejectUnknown)
	// el catálogo es global: basta un token válido aunque el perfil no exista
	auth := bearer(t, "m-sin-perfil")

	resp := call(t, app, http.MethodPost, "/api/products", auth, dto.CreateProductRequest{Barcode: "222", Name: "Arroz"})
	var p dto.ProductResponse
	decode(t, resp, &p)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Arroz", p.Name)

	resp = call(t, app, http.MethodPost, "/api/products", auth, dto.CreateProductRequest{Barcode: "222", Name: "Otro"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/products/222", auth, nil)
	decode(t, resp, &p)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "222", p.Barcode)

	resp = call(t, app, http.MethodGet, "/api/products/000", auth, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
