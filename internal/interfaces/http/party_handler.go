package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// PartyHandler maneja clientes o proveedores según kind (protegido).
type PartyHandler struct {
	uc   *usecase.PartyUseCase
	kind entity.PartyKind
}

// NewPartyHandler construye el handler para un tipo de parte.
func NewPartyHandler(uc *usecase.PartyUseCase, kind entity.PartyKind) *PartyHandler {
	return &PartyHandler{uc: uc, kind: kind}
}

// Create crear cliente o proveedor.
func (h *PartyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePartyRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), GetScope(c), h.kind, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID obtener cliente o proveedor con sus subregistros.
func (h *PartyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetScope(c), h.kind, c.Params("id"))
	return respondFound(c, out, err, string(h.kind)+" no encontrado")
}

// GetByCode obtener cliente o proveedor por código.
func (h *PartyHandler) GetByCode(c *fiber.Ctx) error {
	out, err := h.uc.GetByCode(c.UserContext(), GetScope(c), h.kind, c.Params("code"))
	return respondFound(c, out, err, string(h.kind)+" no encontrado")
}

// List listar clientes o proveedores.
func (h *PartyHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.uc.List(c.UserContext(), GetScope(c), h.kind, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateCommonData guardar datos de identidad.
func (h *PartyHandler) UpdateCommonData(c *fiber.Ctx) error {
	var in dto.CommonDataInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	return noContent(c, h.uc.UpdateCommonData(c.UserContext(), GetScope(c), h.kind, c.Params("id"), in))
}

// UpdateContact guardar datos de contacto.
func (h *PartyHandler) UpdateContact(c *fiber.Ctx) error {
	var in dto.ContactInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	return noContent(c, h.uc.UpdateContact(c.UserContext(), GetScope(c), h.kind, c.Params("id"), in))
}

// UpdateAddress guardar dirección.
func (h *PartyHandler) UpdateAddress(c *fiber.Ctx) error {
	var in dto.AddressInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	return noContent(c, h.uc.UpdateAddress(c.UserContext(), GetScope(c), h.kind, c.Params("id"), in))
}

// Delete eliminar (soft delete) cliente o proveedor.
func (h *PartyHandler) Delete(c *fiber.Ctx) error {
	return noContent(c, h.uc.Delete(c.UserContext(), GetScope(c), h.kind, c.Params("id")))
}
