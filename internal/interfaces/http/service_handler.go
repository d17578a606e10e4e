package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// ServiceHandler servicios (protegido).
type ServiceHandler struct {
	uc *commerce.ServiceUseCase
}

// NewServiceHandler construye el handler.
func NewServiceHandler(uc *commerce.ServiceUseCase) *ServiceHandler {
	return &ServiceHandler{uc: uc}
}

// Create POST /api/services: crear servicio, opcionalmente desde un presupuesto.
func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateServiceRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/services/{id}: obtener servicio por ID.
func (h *ServiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetScope(c), c.Params("id"))
	return respondFound(c, out, err, "servicio no encontrado")
}

// GetByCode GET /api/services/code/{code}: obtener servicio por código.
func (h *ServiceHandler) GetByCode(c *fiber.Ctx) error {
	out, err := h.uc.GetByCode(c.UserContext(), GetScope(c), c.Params("code"))
	return respondFound(c, out, err, "servicio no encontrado")
}

// List GET /api/services: listar servicios.
func (h *ServiceHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.uc.List(c.UserContext(), GetScope(c), c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/services/{id}: eliminar servicio.
func (h *ServiceHandler) Delete(c *fiber.Ctx) error {
	return noContent(c, h.uc.Delete(c.UserContext(), GetScope(c), c.Params("id")))
}
