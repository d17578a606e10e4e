package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PlanResponse plan de suscripción.
type PlanResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	IntervalMonths int             `json:"interval_months"`
}

// SubscribeRequest suscripción del tenant a un plan.
type SubscribeRequest struct {
	PlanCode string `json:"plan_code" validate:"required,max=50"`
}

// SubscriptionResponse suscripción en respuestas.
type SubscriptionResponse struct {
	ID                 string       `json:"id"`
	Plan               PlanResponse `json:"plan"`
	Status             string       `json:"status"`
	CurrentPeriodStart *time.Time   `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time   `json:"current_period_end,omitempty"`
	CancelledAt        *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}

// PaymentNotification notificación normalizada de la pasarela (webhook).
type PaymentNotification struct {
	TenantID       string          `json:"tenant_id" validate:"required,uuid"`
	SubscriptionID *string         `json:"subscription_id" validate:"omitempty,uuid"`
	ExternalID     string          `json:"external_id" validate:"required,max=100"`
	Status         string          `json:"status" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency" validate:"omitempty,len=3"`
	Payload        json.RawMessage `json:"payload"`
}

// PaymentResponse transacción registrada.
type PaymentResponse struct {
	ID             string          `json:"id"`
	SubscriptionID *string         `json:"subscription_id,omitempty"`
	ExternalID     string          `json:"external_id"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Applied        bool            `json:"applied"`
	CreatedAt      time.Time       `json:"created_at"`
}
