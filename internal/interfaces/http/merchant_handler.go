package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sylistock-api/internal/application/bankability"
	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/application/inventory"
)

// MerchantHandler perfil del comerciante autenticado: umbral de alerta y puntaje.
type MerchantHandler struct {
	score     *bankability.UseCase
	inventory *inventory.UseCase
}

// NewMerchantHandler construye el handler.
func NewMerchantHandler(scoreUC *bankability.UseCase, inventoryUC *inventory.UseCase) *MerchantHandler {
	return &MerchantHandler{score: scoreUC, inventory: inventoryUC}
}

// SetAlertThreshold godoc
// @Summary      Cambiar el umbral de stock bajo
// @Tags         merchants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AlertThresholdRequest  true  "threshold >= 0"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/merchants/me/alert-threshold [put]
func (h *MerchantHandler) SetAlertThreshold(c *fiber.Ctx) error {
	var in dto.AlertThresholdRequest
	if err := c.BodyParser(&in); err != nil || in.Threshold == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "threshold requerido"})
	}
	warning, err := h.inventory.SetAlertThreshold(c.Context(), GetMerchantID(c), *in.Threshold)
	if err != nil {
		return writeError(c, err)
	}
	body := fiber.Map{"threshold": *in.Threshold}
	if w := toWarning(warning); w != nil {
		body["warning"] = w
	}
	return c.JSON(body)
}

// GetScore godoc
// @Summary      Perfil con el último puntaje de bancabilidad
// @Tags         merchants
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MerchantResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/merchants/me/score [get]
func (h *MerchantHandler) GetScore(c *fiber.Ctx) error {
	m, err := h.score.Get(c.Context(), GetMerchantID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MerchantResponse{
		ID:               m.ID,
		BusinessName:     m.BusinessName,
		Location:         m.Location,
		BankabilityScore: m.BankabilityScore,
		BusinessAgeDays:  m.BusinessAgeDays,
		AlertThreshold:   m.AlertThreshold,
		UpdatedAt:        m.UpdatedAt,
	})
}

// Recompute godoc
// @Summary      Recalcular el puntaje ahora
// @Tags         merchants
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ScoreResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/merchants/me/score/recompute [post]
func (h *MerchantHandler) Recompute(c *fiber.Ctx) error {
	res, err := h.score.Recompute(c.Context(), GetMerchantID(c))
	if err != nil {
		return writeError(c, err)
	}
	b := res.Breakdown
	return c.JSON(dto.ScoreResponse{
		MerchantID: res.MerchantID,
		Score:      b.Total,
		Breakdown: dto.ScoreBreakdownDTO{
			Verification: b.Verification,
			Activity:     b.Activity,
			BusinessAge:  b.BusinessAge,
			StockHealth:  b.StockHealth,
			Total:        b.Total,
		},
		ComputedAt: res.ComputedAt,
	})
}
