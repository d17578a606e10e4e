package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc *commerce.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *commerce.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create crea una factura, opcionalmente desde un servicio.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID obtiene una factura del tenant.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetScope(c), c.Params("id"))
	return respondFound(c, out, err, "factura no encontrada")
}

// List lista facturas, opcionalmente por estado.
// GET /api/invoices?status=&limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
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

// Delete marca la factura como eliminada.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	return noContent(c, h.uc.Delete(c.UserContext(), GetScope(c), c.Params("id")))
}
