package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetItemInput línea de un presupuesto.
type BudgetItemInput struct {
	ProductID   *string         `json:"product_id" validate:"omitempty,uuid"`
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateBudgetRequest body para POST /api/budgets.
type CreateBudgetRequest struct {
	Code        string            `json:"code" validate:"required,min=1,max=50"`
	CustomerID  *string           `json:"customer_id" validate:"omitempty,uuid"`
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description"`
	ValidUntil  *time.Time        `json:"valid_until"`
	Items       []BudgetItemInput `json:"items" validate:"dive"`
}

// BudgetItemResponse línea de presupuesto en respuestas.
type BudgetItemResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// BudgetResponse presupuesto con sus líneas.
type BudgetResponse struct {
	ID                  string               `json:"id"`
	Code                string               `json:"code"`
	CustomerID          *string              `json:"customer_id,omitempty"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	Status              string               `json:"status"`
	Total               decimal.Decimal      `json:"total"`
	ValidUntil          *time.Time           `json:"valid_until,omitempty"`
	PendingConfirmation bool                 `json:"pending_confirmation"`
	ConfirmedAt         *time.Time           `json:"confirmed_at,omitempty"`
	Items               []BudgetItemResponse `json:"items,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// CreateServiceRequest body para POST /api/services. Con BudgetID, cliente y total se toman
// del presupuesto si no se envían.
type CreateServiceRequest struct {
	Code        string           `json:"code" validate:"required,min=1,max=50"`
	BudgetID    *string          `json:"budget_id" validate:"omitempty,uuid"`
	CustomerID  *string          `json:"customer_id" validate:"omitempty,uuid"`
	Description string           `json:"description"`
	Total       *decimal.Decimal `json:"total"`
}

// ServiceResponse orden de servicio.
type ServiceResponse struct {
	ID                  string          `json:"id"`
	Code                string          `json:"code"`
	BudgetID            *string         `json:"budget_id,omitempty"`
	CustomerID          *string         `json:"customer_id,omitempty"`
	Description         string          `json:"description"`
	Status              string          `json:"status"`
	Total               decimal.Decimal `json:"total"`
	PendingConfirmation bool            `json:"pending_confirmation"`
	ConfirmedAt         *time.Time      `json:"confirmed_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	Code       string           `json:"code" validate:"required,min=1,max=50"`
	CustomerID *string          `json:"customer_id" validate:"omitempty,uuid"`
	ServiceID  *string          `json:"service_id" validate:"omitempty,uuid"`
	IssueDate  *time.Time       `json:"issue_date"`
	DueDate    *time.Time       `json:"due_date"`
	Total      *decimal.Decimal `json:"total"`
	Notes      string           `json:"notes"`
}

// InvoiceResponse factura en respuestas.
type InvoiceResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	CustomerID *string         `json:"customer_id,omitempty"`
	ServiceID  *string         `json:"service_id,omitempty"`
	Status     string          `json:"status"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CreateScheduleRequest body para POST /api/schedules.
type CreateScheduleRequest struct {
	ServiceID string    `json:"service_id" validate:"required,uuid"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required"`
	Notes     string    `json:"notes"`
}

// ScheduleResponse cita en respuestas.
type ScheduleResponse struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeStatusRequest cambio de estado de una entidad con ciclo de vida.
type ChangeStatusRequest struct {
	Status   string          `json:"status" validate:"required,max=30"`
	Comment  string          `json:"comment" validate:"omitempty,max=1000"`
	Changes  json.RawMessage `json:"changes"`
	Metadata json.RawMessage `json:"metadata"`
}

// StatusChangeResponse resultado de un cambio de estado.
type StatusChangeResponse struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	HistoryID string    `json:"history_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// HistoryEntryResponse fila del historial de acciones.
type HistoryEntryResponse struct {
	ID          string          `json:"id"`
	EntityID    string          `json:"entity_id"`
	UserID      *string         `json:"user_id,omitempty"`
	Action      string          `json:"action"`
	OldStatus   *string         `json:"old_status,omitempty"`
	NewStatus   *string         `json:"new_status,omitempty"`
	Description string          `json:"description,omitempty"`
	Changes     json.RawMessage `json:"changes,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	IPAddress   string          `json:"ip_address,omitempty"`
	UserAgent   string          `json:"user_agent,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ConfirmationRequestedResponse acción pendiente de confirmación por email.
type ConfirmationRequestedResponse struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Status    string    `json:"requested_status"`
	ExpiresAt time.Time `json:"expires_at"`
}
