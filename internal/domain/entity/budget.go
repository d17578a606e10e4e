package entity

import (
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/shopspring/decimal"
)

// Budget presupuesto (cotización) de un tenant.
type Budget struct {
	ID                  string
	TenantID            string
	CustomerID          *string
	Code                string // único por tenant, no global
	Title               string
	Description         string
	Status              lifecycle.BudgetStatus
	Total               decimal.Decimal
	ValidUntil          *time.Time
	ConfirmationTokenID *string // acción pendiente de confirmación del usuario
	ConfirmedAt         *time.Time
	CreatedBy           *string
	Items               []BudgetItem
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// BudgetItem línea de un presupuesto.
type BudgetItem struct {
	ID          string
	BudgetID    string
	ProductID   *string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Recalculate recalcula el total de cada línea y del presupuesto.
func (b *Budget) Recalculate() {
	total := decimal.Zero
	for i := range b.Items {
		it := &b.Items[i]
		it.Total = it.Quantity.Mul(it.UnitPrice).Round(2)
		total = total.Add(it.Total)
	}
	b.Total = total
}
