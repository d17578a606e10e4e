package dto

import "time"

// TemplateVariableInput variable declarada por una plantilla.
type TemplateVariableInput struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description" validate:"omitempty,max=500"`
	DefaultValue string `json:"default_value"`
	Required     bool   `json:"required"`
}

// CreateTemplateRequest plantilla de email. Subject y BodyText usan text/template, BodyHTML html/template.
type CreateTemplateRequest struct {
	Slug      string                  `json:"slug" validate:"required,min=1,max=100"`
	Name      string                  `json:"name" validate:"required,max=200"`
	Subject   string                  `json:"subject" validate:"required"`
	BodyHTML  string                  `json:"body_html"`
	BodyText  string                  `json:"body_text"`
	Variables []TemplateVariableInput `json:"variables" validate:"dive"`
}

// TemplateResponse plantilla en respuestas.
type TemplateResponse struct {
	ID        string                  `json:"id"`
	Slug      string                  `json:"slug"`
	Name      string                  `json:"name"`
	Subject   string                  `json:"subject"`
	BodyHTML  string                  `json:"body_html"`
	BodyText  string                  `json:"body_text"`
	IsActive  bool                    `json:"is_active"`
	Variables []TemplateVariableInput `json:"variables"`
	CreatedAt time.Time               `json:"created_at"`
}

// RenderRequest datos para previsualizar una plantilla.
type RenderRequest struct {
	Data map[string]string `json:"data"`
}

// RenderedEmail resultado de renderizar una plantilla.
type RenderedEmail struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// SendEmailRequest encola un email a partir de una plantilla.
type SendEmailRequest struct {
	TemplateSlug string            `json:"template_slug" validate:"required"`
	To           string            `json:"to" validate:"required,email"`
	ToName       string            `json:"to_name" validate:"omitempty,max=200"`
	Data         map[string]string `json:"data"`
	ScheduledAt  *time.Time        `json:"scheduled_at"`
}

// QueueItemResponse email en cola.
type QueueItemResponse struct {
	ID          string     `json:"id"`
	To          string     `json:"to"`
	Subject     string     `json:"subject"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	LastError   string     `json:"last_error,omitempty"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateAutoresponderRequest regla evento -> plantilla. Event = "<kind>.<status>".
type CreateAutoresponderRequest struct {
	Event        string `json:"event" validate:"required,max=60"`
	TemplateID   string `json:"template_id" validate:"required,uuid"`
	DelaySeconds int    `json:"delay_seconds" validate:"min=0"`
}

// AutoresponderResponse autorespondedor en respuestas.
type AutoresponderResponse struct {
	ID           string    `json:"id"`
	Event        string    `json:"event"`
	TemplateID   string    `json:"template_id"`
	DelaySeconds int       `json:"delay_seconds"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
