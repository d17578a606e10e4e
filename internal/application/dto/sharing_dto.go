package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssueShareRequest emisión de un enlace público. ExpiresInHours 0 = TTL por defecto.
type IssueShareRequest struct {
	ExpiresInHours int      `json:"expires_in_hours" validate:"min=0"`
	Permissions    []string `json:"permissions" validate:"omitempty,dive,oneof=view download approve reject"`
}

// ShareResponse enlace emitido (vista del tenant dueño).
type ShareResponse struct {
	ID             string     `json:"id"`
	Kind           string     `json:"kind"`
	ResourceID     string     `json:"resource_id"`
	Token          string     `json:"token"`
	URL            string     `json:"url"`
	Status         string     `json:"status"`
	Permissions    []string   `json:"permissions"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AccessCount    int        `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PublicShareView lo que ve el portador anónimo de un enlace.
type PublicShareView struct {
	Kind        string             `json:"kind"`
	ShareStatus string             `json:"share_status"`
	Permissions []string           `json:"permissions"`
	ExpiresAt   time.Time          `json:"expires_at"`
	AccessCount int                `json:"access_count"`
	Budget      *PublicBudgetView  `json:"budget,omitempty"`
	Invoice     *PublicInvoiceView `json:"invoice,omitempty"`
}

// PublicBudgetView vista de solo lectura de un presupuesto.
type PublicBudgetView struct {
	Code        string               `json:"code"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      string               `json:"status"`
	Total       decimal.Decimal      `json:"total"`
	ValidUntil  *time.Time           `json:"valid_until,omitempty"`
	Items       []BudgetItemResponse `json:"items"`
}

// PublicInvoiceView vista de solo lectura de una factura.
type PublicInvoiceView struct {
	Code      string          `json:"code"`
	Status    string          `json:"status"`
	IssueDate time.Time       `json:"issue_date"`
	DueDate   *time.Time      `json:"due_date,omitempty"`
	Total     decimal.Decimal `json:"total"`
}

// RespondShareRequest respuesta del cliente a un presupuesto compartido.
type RespondShareRequest struct {
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}
