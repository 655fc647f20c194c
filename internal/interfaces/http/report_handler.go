package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/application/reporting"
)

// ReportHandler reportes de lectura (protegido).
type ReportHandler struct {
	uc *reporting.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// InventoryValue godoc
// @Summary      Valor del inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryValueResponse
// @Router       /api/reports/inventory-value [get]
func (h *ReportHandler) InventoryValue(c *fiber.Ctx) error {
	resp, err := h.uc.InventoryValue(c.Context(), GetMerchantID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Activity godoc
// @Summary      Actividad de los últimos 30 días por origen
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ActivityResponse
// @Router       /api/reports/activity [get]
func (h *ReportHandler) Activity(c *fiber.Ctx) error {
	resp, err := h.uc.Activity(c.Context(), GetMerchantID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Sales godoc
// @Summary      Ventas (salidas OUT) de los últimos días
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "ventana en días (por defecto 30, máximo 365)"
// @Success      200  {object}  dto.SalesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	days := c.QueryInt("days", reporting.DefaultSalesDays)
	if days < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days inválido"})
	}
	resp, err := h.uc.Sales(c.Context(), GetMerchantID(c), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Dashboard godoc
// @Summary      Resumen: puntaje, valor, alertas y actividad
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	resp, err := h.uc.Dashboard(c.Context(), GetMerchantID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}
