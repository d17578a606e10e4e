package entity

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// Tipos de token de confirmación.
const (
	ConfirmEmailVerification  = "email_verification"
	ConfirmPasswordReset      = "password_reset"
	ConfirmActionConfirmation = "action_confirmation"
)

// ValidConfirmationType informa si t es un tipo de token conocido.
func ValidConfirmationType(t string) bool {
	switch t {
	case ConfirmEmailVerification, ConfirmPasswordReset, ConfirmActionConfirmation:
		return true
	}
	return false
}

// ConfirmationToken token de un solo uso, de un tenant y un usuario, con caducidad.
// ConsumedAt impide la reutilización.
type ConfirmationToken struct {
	ID         string
	TenantID   string
	UserID     string
	Token      string
	Type       string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	Metadata   json.RawMessage
	CreatedAt  time.Time
}

// Usable informa si el token puede consumirse en now.
func (t *ConfirmationToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && !lifecycle.Expired(t.ExpiresAt, now)
}

// PendingAction cambio de estado que espera confirmación (metadata de action_confirmation).
type PendingAction struct {
	Kind     lifecycle.Kind `json:"kind"`
	EntityID string         `json:"entity_id"`
	Status   string         `json:"status"`
	Comment  string         `json:"comment,omitempty"`
}
