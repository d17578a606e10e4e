package entity

import (
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/shopspring/decimal"
)

// Service orden de servicio; puede originarse en un presupuesto.
type Service struct {
	ID                  string
	TenantID            string
	BudgetID            *string
	CustomerID          *string
	Code                string // único por tenant
	Description         string
	Status              lifecycle.ServiceStatus
	Total               decimal.Decimal
	ConfirmationTokenID *string
	ConfirmedAt         *time.Time
	CreatedBy           *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Invoice factura de un tenant. Se elimina de forma lógica para conservar el histórico.
type Invoice struct {
	ID         string
	TenantID   string
	CustomerID *string
	ServiceID  *string
	Code       string // único por tenant
	Status     lifecycle.InvoiceStatus
	IssueDate  time.Time
	DueDate    *time.Time
	Total      decimal.Decimal
	Notes      string
	CreatedBy  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Schedule cita vinculada a un servicio.
type Schedule struct {
	ID        string
	TenantID  string
	ServiceID string
	StartsAt  time.Time
	EndsAt    time.Time
	Status    lifecycle.ScheduleStatus
	Notes     string
	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
