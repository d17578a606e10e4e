package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
)

// CatalogHandler unidades, categorías y productos (protegido).
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// CreateUnit POST /api/units: crear unidad de medida del tenant.
func (h *CatalogHandler) CreateUnit(c *fiber.Ctx) error {
	var in dto.CreateUnitRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.CreateUnit(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListUnits GET /api/units: listar unidades globales y del tenant.
func (h *CatalogHandler) ListUnits(c *fiber.Ctx) error {
	out, err := h.uc.ListUnits(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateCategory POST /api/categories: crear categoría.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.CreateCategory(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCategories GET /api/categories: listar categorías.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.uc.ListCategories(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateProduct POST /api/products: crear producto.
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.CreateProduct(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetProduct GET /api/products/{id}: obtener producto por ID.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	out, err := h.uc.GetProduct(c.UserContext(), GetScope(c), c.Params("id"))
	return respondFound(c, out, err, "producto no encontrado")
}

// ListProducts GET /api/products: listar productos.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.uc.ListProducts(c.UserContext(), GetScope(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
