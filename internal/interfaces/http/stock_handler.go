package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/application/inventory"
	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/internal/application/reporting"
)

// StockHandler movimientos, importación, precios y consultas de stock (protegido).
type StockHandler struct {
	ledger    *ledger.UseCase
	inventory *inventory.UseCase
	reports   *reporting.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledgerUC *ledger.UseCase, inventoryUC *inventory.UseCase, reportsUC *reporting.UseCase) *StockHandler {
	return &StockHandler{ledger: ledgerUC, inventory: inventoryUC, reports: reportsUC}
}

// ApplyMovement godoc
// @Summary      Aplicar movimiento de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "barcode, quantity con signo, action, source, device_id"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.ledger.ApplyStockMovement(c.Context(), ledger.MovementInput{
		MerchantID: GetMerchantID(c),
		Barcode:    in.Barcode,
		Delta:      in.Quantity,
		Action:     in.Action,
		Source:     in.Source,
		DeviceID:   in.DeviceID,
		Reason:     in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(res))
}

// Scan godoc
// @Summary      Registrar un escaneo (IN suma 1, OUT resta 1)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "barcode, action, source, device_id"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/scan [post]
func (h *StockHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.ledger.ProcessScan(c.Context(), GetMerchantID(c), in.Barcode, in.Action, in.Source, in.DeviceID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(res))
}

// Import godoc
// @Summary      Importación masiva de filas ya parseadas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ImportRequest  true  "filas"
// @Success      200   {object}  dto.ImportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/import [post]
func (h *StockHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rows := make([]ledger.ImportRow, 0, len(in.Rows))
	for _, r := range in.Rows {
		rows = append(rows, ledger.ImportRow{
			Barcode:     r.Barcode,
			Name:        r.Name,
			Description: r.Description,
			Quantity:    r.Quantity,
			CostPrice:   r.CostPrice,
			SalePrice:   r.SalePrice,
		})
	}
	res, err := h.ledger.ImportRows(c.Context(), GetMerchantID(c), in.DeviceID, rows)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ImportResponse{Imported: res.Imported, Skipped: res.Skipped, Warning: toWarning(res.Warning)}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, dto.ImportRowError{Row: e.Row, Barcode: e.Barcode, Error: e.Error})
	}
	return c.JSON(out)
}

// SetCounts godoc
// @Summary      Corrección masiva por conteo físico (fija la cantidad absoluta)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CountRequest  true  "filas con la cantidad contada"
// @Success      200   {object}  dto.CountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/counts [post]
func (h *StockHandler) SetCounts(c *fiber.Ctx) error {
	var in dto.CountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rows := make([]ledger.CountRow, 0, len(in.Rows))
	for _, r := range in.Rows {
		rows = append(rows, ledger.CountRow{
			Barcode:   r.Barcode,
			Quantity:  r.Quantity,
			CostPrice: r.CostPrice,
			SalePrice: r.SalePrice,
		})
	}
	res, err := h.ledger.SetCounts(c.Context(), GetMerchantID(c), in.DeviceID, rows)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.CountResponse{Updated: res.Updated, Unchanged: res.Unchanged, Skipped: res.Skipped, Warning: toWarning(res.Warning)}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, dto.ImportRowError{Row: e.Row, Barcode: e.Barcode, Error: e.Error})
	}
	return c.JSON(out)
}

// UpdatePrices godoc
// @Summary      Actualizar precios de un ítem (no cambia la cantidad)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        barcode  path  string                   true  "código de barras"
// @Param        body     body  dto.UpdatePricesRequest  true  "cost_price y/o sale_price"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{barcode}/prices [put]
func (h *StockHandler) UpdatePrices(c *fiber.Ctx) error {
	var in dto.UpdatePricesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.inventory.UpdatePrices(c.Context(), GetMerchantID(c), c.Params("barcode"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// List inventario completo del comerciante.
func (h *StockHandler) List(c *fiber.Ctx) error {
	items, err := h.inventory.ListStock(c.Context(), GetMerchantID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// History godoc
// @Summary      Últimos movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo de entradas (por defecto 100)"
// @Success      200  {object}  dto.HistoryResponse
// @Router       /api/stock/history [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", reporting.DefaultHistoryLimit)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit inválido"})
	}
	resp, err := h.reports.History(c.Context(), GetMerchantID(c), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Alerts godoc
// @Summary      Ítems en o por debajo del umbral de alerta
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LowStockAlertsResponse
// @Router       /api/stock/alerts [get]
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	resp, err := h.reports.LowStockAlerts(c.Context(), GetMerchantID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func toMovementResponse(res *ledger.MovementResult) dto.StockMovementResponse {
	out := dto.StockMovementResponse{
		ProductID:      res.Product.ID,
		Barcode:        res.Product.Barcode,
		ProductName:    res.Product.Name,
		NewQuantity:    res.NewQuantity,
		ProductCreated: res.ProductCreated,
		Warning:        toWarning(res.Warning),
	}
	// Log nil: conteo sin cambios
	if res.Log != nil {
		out.LogID = res.Log.ID
		out.Action = res.Log.Action
		out.QuantityChange = res.Log.QuantityChanged
		out.Timestamp = res.Log.Timestamp
	}
	return out
}
