package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/sharing"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// ShareHandler gestión de enlaces públicos de un tipo de recurso (protegido).
type ShareHandler struct {
	uc   *sharing.ShareUseCase
	kind lifecycle.ShareKind
}

// NewShareHandler construye el handler.
func NewShareHandler(uc *sharing.ShareUseCase, kind lifecycle.ShareKind) *ShareHandler {
	return &ShareHandler{uc: uc, kind: kind}
}

// Issue emitir enlace público.
func (h *ShareHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueShareRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Issue(c.UserContext(), GetScope(c), h.kind, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List enlaces emitidos para un recurso.
func (h *ShareHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetScope(c), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Revoke revocar enlace.
func (h *ShareHandler) Revoke(c *fiber.Ctx) error {
	return noContent(c, h.uc.Revoke(c.UserContext(), GetScope(c), h.kind, c.Params("shareId")))
}
