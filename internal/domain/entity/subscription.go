package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una suscripción.
const (
	SubscriptionPending   = "pending"
	SubscriptionActive    = "active"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
)

// Estados de pago normalizados (Mercado Pago).
const (
	PaymentPending     = "pending"
	PaymentApproved    = "approved"
	PaymentRejected    = "rejected"
	PaymentCancelled   = "cancelled"
	PaymentRefunded    = "refunded"
	PaymentChargedBack = "charged_back"
)

// GatewayMercadoPago identificador de la pasarela.
const GatewayMercadoPago = "mercadopago"

// ValidPaymentStatus informa si s es un estado de pago conocido.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentApproved, PaymentRejected, PaymentCancelled, PaymentRefunded, PaymentChargedBack:
		return true
	}
	return false
}

// Plan plan de suscripción (catálogo global).
type Plan struct {
	ID             string
	Code           string
	Name           string
	Price          decimal.Decimal
	Currency       string
	IntervalMonths int
	IsActive       bool
}

// Subscription suscripción de un tenant a un plan.
type Subscription struct {
	ID                 string
	TenantID           string
	PlanID             string
	Status             string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PaymentTransaction transacción reportada por la pasarela de pagos.
type PaymentTransaction struct {
	ID             string
	TenantID       string
	SubscriptionID *string
	Gateway        string
	ExternalID     string // único por pasarela
	Status         string
	Amount         decimal.Decimal
	Currency       string
	Payload        json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
