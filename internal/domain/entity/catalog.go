package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit unidad de medida. TenantID nil = unidad global visible para todos los tenants.
type Unit struct {
	ID        string
	TenantID  *string
	Code      string
	Name      string
	CreatedAt time.Time
}

// Global informa si la unidad pertenece al catálogo compartido.
func (u *Unit) Global() bool { return u.TenantID == nil }

// Category categoría de productos (jerárquica opcional).
type Category struct {
	ID        string
	TenantID  string
	ParentID  *string
	Code      string // único por tenant
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product producto o servicio del catálogo del tenant.
type Product struct {
	ID          string
	TenantID    string
	CategoryID  *string
	UnitID      *string
	SKU         string // único por tenant
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
