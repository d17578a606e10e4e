package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/confirmation"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/sharing"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// PublicHandler rutas anónimas autorizadas solo por el token del enlace. Cualquier token
// rechazado responde 404 INVALID_ACCESS sin distinguir el motivo.
type PublicHandler struct {
	shares  *sharing.ShareUseCase
	actions *confirmation.ActionUseCase
}

// NewPublicHandler construye el handler.
func NewPublicHandler(shares *sharing.ShareUseCase, actions *confirmation.ActionUseCase) *PublicHandler {
	return &PublicHandler{shares: shares, actions: actions}
}

// ViewBudget GET /public/budgets/view/{token}: ver presupuesto compartido.
func (h *PublicHandler) ViewBudget(c *fiber.Ctx) error {
	return h.view(c, lifecycle.ShareBudget)
}

// ViewInvoice GET /public/invoices/view/{token}: ver factura compartida.
func (h *PublicHandler) ViewInvoice(c *fiber.Ctx) error {
	return h.view(c, lifecycle.ShareInvoice)
}

func (h *PublicHandler) view(c *fiber.Ctx, kind lifecycle.ShareKind) error {
	out, err := h.shares.Access(c.UserContext(), kind, c.Params("token"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(out)
}

// ApproveBudget POST /public/budgets/view/{token}/approve: aprobar presupuesto desde el enlace.
func (h *PublicHandler) ApproveBudget(c *fiber.Ctx) error {
	return h.respond(c, true)
}

// RejectBudget POST /public/budgets/view/{token}/reject: rechazar presupuesto desde el enlace.
func (h *PublicHandler) RejectBudget(c *fiber.Ctx) error {
	return h.respond(c, false)
}

func (h *PublicHandler) respond(c *fiber.Ctx, approve bool) error {
	var in dto.RespondShareRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return nil
		}
	}
	out, err := h.shares.Respond(c.UserContext(), c.Params("token"), approve, in, clientInfo(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Confirm POST /public/confirm/{token}: confirmar una acción pendiente.
func (h *PublicHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.actions.Confirm(c.UserContext(), c.Params("token"), clientInfo(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
