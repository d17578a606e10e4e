package dto

import (
	"encoding/json"
	"time"
)

// AuditLogResponse entrada de auditoría.
type AuditLogResponse struct {
	ID          string          `json:"id"`
	EntityType  string          `json:"entity_type"`
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
	Severity    string          `json:"severity"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AuditQuery filtros de GET /api/audit.
type AuditQuery struct {
	PageRequest
	EntityType string     `query:"entity_type"`
	EntityID   string     `query:"entity_id"`
	Action     string     `query:"action"`
	Since      *time.Time `query:"-"`
}

// ActivityResponse evento del feed de actividad.
type ActivityResponse struct {
	ID          string          `json:"id"`
	UserID      *string         `json:"user_id,omitempty"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	SubjectType string          `json:"subject_type,omitempty"`
	SubjectID   string          `json:"subject_id,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AlertResponse alerta de monitoreo.
type AlertResponse struct {
	ID        string          `json:"id"`
	System    bool            `json:"system"`
	Severity  string          `json:"severity"`
	Category  string          `json:"category"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
