package entity

import "time"

// Estados de la cola de emails.
const (
	EmailPending    = "pending"
	EmailProcessing = "processing"
	EmailSent       = "sent"
	EmailFailed     = "failed"
)

// EmailTemplate plantilla de email de un tenant.
type EmailTemplate struct {
	ID        string
	TenantID  string
	Slug      string // único por tenant
	Name      string
	Subject   string // text/template
	BodyHTML  string // html/template
	BodyText  string // text/template
	IsActive  bool
	Variables []EmailTemplateVariable
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmailTemplateVariable variable declarada por una plantilla.
type EmailTemplateVariable struct {
	ID           string
	TemplateID   string
	Name         string
	Description  string
	DefaultValue string
	Required     bool
}

// EmailQueueItem email pendiente de envío.
type EmailQueueItem struct {
	ID          string
	TenantID    string
	TemplateID  *string
	ToAddress   string
	ToName      string
	Subject     string
	BodyHTML    string
	BodyText    string
	Status      string
	Attempts    int
	MaxAttempts int
	LastError   string
	ScheduledAt time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmailLog un registro por intento de envío.
type EmailLog struct {
	ID        string
	TenantID  string
	QueueID   string
	ToAddress string
	Subject   string
	Status    string // sent, failed
	Error     string
	Attempt   int
	CreatedAt time.Time
}

// Autoresponder envía una plantilla cuando ocurre un evento ("budget.sent", ...).
type Autoresponder struct {
	ID           string
	TenantID     string
	Event        string
	TemplateID   string
	DelaySeconds int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
