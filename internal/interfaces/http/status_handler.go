package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/confirmation"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// StatusHandler cambio de estado e historial de un tipo de entidad (protegido).
type StatusHandler struct {
	uc      *commerce.StatusUseCase
	actions *confirmation.ActionUseCase
	kind    lifecycle.Kind
}

// NewStatusHandler construye el handler. actions solo se usa para budget y service.
func NewStatusHandler(uc *commerce.StatusUseCase, actions *confirmation.ActionUseCase, kind lifecycle.Kind) *StatusHandler {
	return &StatusHandler{uc: uc, actions: actions, kind: kind}
}

// ChangeStatus cambiar estado con registro en el historial.
func (h *StatusHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.ChangeStatus(c.UserContext(), GetScope(c), h.kind, c.Params("id"), in, clientInfo(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// History historial de acciones, más recientes primero.
func (h *StatusHandler) History(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.uc.History(c.UserContext(), GetScope(c), h.kind, c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RequestConfirmation solicitar cambio de estado confirmado por email.
func (h *StatusHandler) RequestConfirmation(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.actions.RequestStatusChange(c.UserContext(), GetScope(c), h.kind, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}
