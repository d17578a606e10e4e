package entity

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// Acciones registradas en las tablas *_action_history.
const (
	ActionStatusChange          = "status_change"
	ActionConfirmationRequested = "confirmation_requested"
	ActionConfirmed             = "confirmed"
	ActionShareResponse         = "share_response"
	ActionCreated               = "created"
)

// ActionHistoryEntry registro inmutable de una acción sobre una entidad con estado.
// Es una traza de auditoría: no valida transiciones, solo las registra.
type ActionHistoryEntry struct {
	ID          string
	TenantID    string
	Kind        lifecycle.Kind
	EntityID    string
	UserID      *string // nil para accesos anónimos por enlace o procesos del sistema
	Action      string
	OldStatus   *string
	NewStatus   *string
	Description string
	Changes     json.RawMessage
	Metadata    json.RawMessage
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}
