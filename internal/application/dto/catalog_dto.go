package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateUnitRequest unidad de medida propia del tenant.
type CreateUnitRequest struct {
	Code string `json:"code" validate:"required,min=1,max=20"`
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UnitResponse unidad de medida (global o del tenant).
type UnitResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Global bool   `json:"global"`
}

// CreateCategoryRequest categoría de productos.
type CreateCategoryRequest struct {
	Code     string  `json:"code" validate:"required,min=1,max=50"`
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// CategoryResponse categoría en respuestas.
type CategoryResponse struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *string         `json:"category_id" validate:"omitempty,uuid"`
	UnitID      *string         `json:"unit_id" validate:"omitempty,uuid"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *string         `json:"category_id,omitempty"`
	UnitID      *string         `json:"unit_id,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}
