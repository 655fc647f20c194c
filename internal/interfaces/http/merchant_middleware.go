package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
)

// merchantLoader contrato mínimo para verificar el perfil; lo implementa MerchantRepository.
type merchantLoader interface {
	GetByID(ctx context.Context, id string) (*entity.MerchantProfile, error)
}

// RequireMerchantProfile verifica que el merchant_id del token tenga perfil.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalMerchantID).
//
// Comportamiento:
//   - 404 Not Found → el perfil no existe (token emitido para un comerciante borrado).
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
func RequireMerchantProfile(loader merchantLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		merchantID := GetMerchantID(c)
		if merchantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "merchant_id no encontrado en el token",
			})
		}

		m, err := loader.GetByID(c.Context(), merchantID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MERCHANT_CHECK_FAILED",
				Message: "no se pudo verificar el perfil, intente más tarde",
			})
		}
		if m == nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code:    "MERCHANT_NOT_FOUND",
				Message: "perfil de comerciante no encontrado",
			})
		}
		return c.Next()
	}
}
