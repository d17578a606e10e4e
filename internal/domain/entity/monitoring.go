package entity

import (
	"encoding/json"
	"time"
)

// Severidades comunes a auditoría y alertas.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Categorías de auditoría y alertas.
const (
	CategorySecurity      = "security"
	CategoryData          = "data"
	CategoryCommunication = "communication"
	CategoryBilling       = "billing"
	CategorySystem        = "system"
)

// AuditLogEntry registro inmutable de una acción administrativa.
type AuditLogEntry struct {
	ID          string
	TenantID    string
	EntityType  string
	EntityID    string
	UserID      *string
	Action      string
	OldStatus   *string
	NewStatus   *string
	Description string
	Changes     json.RawMessage
	Metadata    json.RawMessage
	IPAddress   string
	UserAgent   string
	Severity    string
	Category    string
	CreatedAt   time.Time
}

// ActivityEntry evento del feed de actividad del tenant.
type ActivityEntry struct {
	ID          string
	TenantID    string
	UserID      *string
	Type        string // p. ej. "budget.created"
	Description string
	SubjectType string
	SubjectID   string
	Metadata    json.RawMessage
	CreatedAt   time.Time
}

// AlertHistoryEntry alerta de monitoreo. TenantID nil = alerta de sistema.
type AlertHistoryEntry struct {
	ID        string
	TenantID  *string
	Severity  string
	Category  string
	Title     string
	Message   string
	Metadata  json.RawMessage
	CreatedAt time.Time
}
