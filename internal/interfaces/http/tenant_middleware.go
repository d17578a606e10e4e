package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// tenantChecker es el contrato mínimo que necesita el middleware para verificar el tenant.
// Lo implementa *usecase.TenantUseCase.
type tenantChecker interface {
	IsActive(ctx context.Context, id string) (bool, error)
}

// RequireActiveTenant rechaza las peticiones de un tenant desactivado. Debe usarse DESPUÉS
// de AuthMiddleware (necesita LocalTenantID).
//
// Comportamiento:
//   - 403 Forbidden → tenant desactivado o eliminado.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
//   - Si no hay tenant_id en el contexto, responde 401.
func RequireActiveTenant(checker tenantChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := GetTenantID(c)
		if tenantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "tenant_id no encontrado en el token",
			})
		}

		active, err := checker.IsActive(c.UserContext(), tenantID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "TENANT_CHECK_FAILED",
				Message: "no se pudo verificar el tenant, intente más tarde",
			})
		}

		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "TENANT_INACTIVE",
				Message: "la cuenta está desactivada",
			})
		}

		return c.Next()
	}
}
