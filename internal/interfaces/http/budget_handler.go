package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// BudgetHandler presupuestos (protegido).
type BudgetHandler struct {
	uc *commerce.BudgetUseCase
}

// NewBudgetHandler construye el handler.
func NewBudgetHandler(uc *commerce.BudgetUseCase) *BudgetHandler {
	return &BudgetHandler{uc: uc}
}

// Create POST /api/budgets: crear presupuesto con sus líneas.
func (h *BudgetHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBudgetRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/budgets/{id}: obtener presupuesto por ID.
func (h *BudgetHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetScope(c), c.Params("id"))
	return respondFound(c, out, err, "presupuesto no encontrado")
}

// GetByCode GET /api/budgets/code/{code}: obtener presupuesto por código.
func (h *BudgetHandler) GetByCode(c *fiber.Ctx) error {
	out, err := h.uc.GetByCode(c.UserContext(), GetScope(c), c.Params("code"))
	return respondFound(c, out, err, "presupuesto no encontrado")
}

// List GET /api/budgets: listar presupuestos.
func (h *BudgetHandler) List(c *fiber.Ctx) error {
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

// Delete DELETE /api/budgets/{id}: eliminar presupuesto.
func (h *BudgetHandler) Delete(c *fiber.Ctx) error {
	return noContent(c, h.uc.Delete(c.UserContext(), GetScope(c), c.Params("id")))
}
