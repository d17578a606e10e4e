package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
)

// AdminHandler tenant propio, usuarios, roles y permisos (protegido).
type AdminHandler struct {
	tenants *usecase.TenantUseCase
	users   *usecase.UserUseCase
	roles   *usecase.RoleUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(tenants *usecase.TenantUseCase, users *usecase.UserUseCase, roles *usecase.RoleUseCase) *AdminHandler {
	return &AdminHandler{tenants: tenants, users: users, roles: roles}
}

// GetTenant GET /api/tenant: tenant de la sesión.
func (h *AdminHandler) GetTenant(c *fiber.Ctx) error {
	out, err := h.tenants.GetByID(c.UserContext(), GetTenantID(c))
	return respondFound(c, out, err, "tenant no encontrado")
}

// DeleteTenant DELETE /api/tenant: eliminar el tenant de la sesión y todos sus datos.
func (h *AdminHandler) DeleteTenant(c *fiber.Ctx) error {
	if err := h.tenants.Delete(c.UserContext(), GetTenantID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateUser POST /api/users: crear usuario del tenant.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.users.Create(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetUser GET /api/users/{id}: obtener usuario por ID.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	out, err := h.users.GetByID(c.UserContext(), GetScope(c), c.Params("id"))
	return respondFound(c, out, err, "usuario no encontrado")
}

// ListUsers GET /api/users: listar usuarios del tenant.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.users.List(c.UserContext(), GetScope(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AssignRole POST /api/users/{id}/roles: asignar rol a un usuario.
func (h *AdminHandler) AssignRole(c *fiber.Ctx) error {
	var in dto.AssignRoleRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	if err := h.roles.AssignRole(c.UserContext(), GetScope(c), c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MyPermissions GET /api/me/permissions: permisos efectivos del usuario de la sesión.
func (h *AdminHandler) MyPermissions(c *fiber.Ctx) error {
	out, err := h.roles.UserPermissions(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []string{}
	}
	return c.JSON(out)
}

// ListPermissions GET /api/permissions: catálogo global de permisos.
func (h *AdminHandler) ListPermissions(c *fiber.Ctx) error {
	out, err := h.roles.ListPermissions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateRole POST /api/roles: crear rol con permisos.
func (h *AdminHandler) CreateRole(c *fiber.Ctx) error {
	var in dto.CreateRoleRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.roles.CreateRole(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListRoles GET /api/roles: listar roles del tenant.
func (h *AdminHandler) ListRoles(c *fiber.Ctx) error {
	out, err := h.roles.ListRoles(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GrantPermission POST /api/roles/{id}/permissions: otorgar permiso a un rol.
func (h *AdminHandler) GrantPermission(c *fiber.Ctx) error {
	var in dto.GrantPermissionRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	if err := h.roles.GrantPermission(c.UserContext(), GetScope(c), c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
