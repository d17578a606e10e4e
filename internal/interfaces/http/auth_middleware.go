package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	"github.com/jhoicas/Gestion-api/pkg/jwt"
)

// Locals keys para UserID y TenantID en Fiber.
const (
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y TenantID a c.Locals.
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
		userID, tenantID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalTenantID, tenantID)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetTenantID devuelve el TenantID del contexto (después del middleware de auth).
func GetTenantID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalTenantID).(string)
	return s
}

// GetScope alcance de la petición autenticada.
func GetScope(c *fiber.Ctx) tenancy.Scope {
	return tenancy.New(GetTenantID(c), GetUserID(c))
}

// permissionChecker lo implementa *usecase.RoleUseCase.
type permissionChecker interface {
	HasPermission(ctx context.Context, scope tenancy.Scope, permission string) (bool, error)
}

// RequirePermission exige que el usuario tenga el permiso por alguno de sus roles. Los
// permisos se consultan en cada petición, por lo que una revocación aplica de inmediato.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(permission string, checker permissionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := GetScope(c)
		if scope.Validate() != nil || scope.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión sin tenant o usuario"})
		}
		ok, err := checker.HasPermission(c.UserContext(), scope, permission)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: "no se pudo verificar el permiso, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "permiso requerido: " + permission,
			})
		}
		return c.Next()
	}
}
