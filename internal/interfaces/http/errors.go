package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/domain"
)

// writeError traduce errores de dominio a status HTTP y cuerpo dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrMerchantNotFound):
		return fiber.StatusNotFound, "MERCHANT_NOT_FOUND"
	case errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, domain.ErrStockItemNotFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrLockTimeout):
		return fiber.StatusServiceUnavailable, "LOCK_TIMEOUT"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrRecomputationFailed):
		return fiber.StatusServiceUnavailable, "SCORE_RECOMPUTATION_FAILED"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// toWarning advertencia no fatal para adjuntar a una respuesta 2xx.
func toWarning(err error) *dto.WarningResponse {
	if err == nil {
		return nil
	}
	return &dto.WarningResponse{Code: "SCORE_RECOMPUTATION_FAILED", Message: err.Error()}
}
