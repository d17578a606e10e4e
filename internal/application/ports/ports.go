// Package ports define los puertos de salida de la capa de aplicación. Los casos de uso
// solo conocen estos contratos; los adaptadores viven en infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// Metrics contadores de dominio. Las implementaciones no deben bloquear.
type Metrics interface {
	StatusChanged(kind lifecycle.Kind, to string)
	ShareAccessed(kind lifecycle.ShareKind, outcome string)
	EmailProcessed(outcome string)
	PaymentRecorded(status string)
}

// Resultados registrados por ShareAccessed y EmailProcessed.
const (
	OutcomeOK      = "ok"
	OutcomeDenied  = "denied"
	OutcomeSent    = "sent"
	OutcomeRetry   = "retry"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// NopMetrics descarta todas las métricas.
type NopMetrics struct{}

func (NopMetrics) StatusChanged(lifecycle.Kind, string)      {}
func (NopMetrics) ShareAccessed(lifecycle.ShareKind, string) {}
func (NopMetrics) EmailProcessed(string)                     {}
func (NopMetrics) PaymentRecorded(string)                    {}

// Message email listo para entregar.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer entrega un email. Un error indica que el intento falló y puede reintentarse.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// StatusEvent cambio de estado ya confirmado en la base de datos.
type StatusEvent struct {
	TenantID string
	Kind     lifecycle.Kind
	EntityID string
	From     string
	To       string
	At       time.Time
}

// Name nombre del evento para autorespondedores: "<kind>.<status>".
func (e StatusEvent) Name() string {
	return string(e.Kind) + "." + e.To
}

// StatusEvents recibe los cambios de estado después del commit.
type StatusEvents interface {
	StatusChanged(ctx context.Context, ev StatusEvent) error
}

// EmailEnqueuer encola emails del sistema (verificación, restablecimiento, confirmaciones).
type EmailEnqueuer interface {
	EnqueueMessage(ctx context.Context, tenantID string, m Message) error
}
