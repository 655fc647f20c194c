package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/pkg/jwt"
)

// Locals keys para UserID y MerchantID en Fiber.
const (
	LocalUserID     = "user_id"
	LocalMerchantID = "merchant_id"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y MerchantID a c.Locals.
// Un token sin merchant_id no da acceso al inventario (403).
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, merchantID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if merchantID == "" {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "NO_MERCHANT", Message: "el usuario no tiene perfil de comerciante"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalMerchantID, merchantID)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetMerchantID devuelve el MerchantID del contexto (después del middleware de auth).
func GetMerchantID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalMerchantID).(string)
	return s
}
