package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// ScheduleHandler citas (protegido).
type ScheduleHandler struct {
	uc *commerce.ScheduleUseCase
}

// NewScheduleHandler construye el handler.
func NewScheduleHandler(uc *commerce.ScheduleUseCase) *ScheduleHandler {
	return &ScheduleHandler{uc: uc}
}

// Create crea una cita de un servicio.
// POST /api/schedules
func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateScheduleRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/schedules/:id
func (h *ScheduleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetScope(c), c.Params("id"))
	return respondFound(c, out, err, "cita no encontrada")
}

// List lista las citas de un servicio (?service_id=) o de un rango (?from=&to=, RFC 3339).
// GET /api/schedules
func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	if serviceID := c.Query("service_id"); serviceID != "" {
		out, err := h.uc.ListByService(c.UserContext(), GetScope(c), serviceID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(out)
	}
	from, err := timeQuery(c, "from")
	if err != nil {
		return nil
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		return nil
	}
	if from == nil || to == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "service_id o from y to son requeridos"})
	}
	out, err := h.uc.ListBetween(c.UserContext(), GetScope(c), *from, *to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
