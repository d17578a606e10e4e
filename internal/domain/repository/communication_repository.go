package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// EmailTemplateRepository plantillas y sus variables declaradas.
type EmailTemplateRepository interface {
	// Create persiste plantilla y variables. domain.ErrDuplicate si (tenant_id, slug) existe.
	Create(ctx context.Context, t *entity.EmailTemplate) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.EmailTemplate, error)
	GetBySlug(ctx context.Context, tenantID, slug string) (*entity.EmailTemplate, error)
	List(ctx context.Context, tenantID string) ([]*entity.EmailTemplate, error)
}

// AutoresponderRepository reglas evento -> plantilla.
type AutoresponderRepository interface {
	Create(ctx context.Context, a *entity.Autoresponder) error
	// ListActiveByEvent devuelve solo los autorespondedores activos del evento.
	ListActiveByEvent(ctx context.Context, tenantID, event string) ([]*entity.Autoresponder, error)
	List(ctx context.Context, tenantID string) ([]*entity.Autoresponder, error)
}

// EmailQueueRepository cola de emails con reintentos.
type EmailQueueRepository interface {
	Enqueue(ctx context.Context, item *entity.EmailQueueItem) error
	// ClaimDue reserva hasta limit emails vencidos (pending con scheduled_at <= now, o
	// processing sin actividad desde staleBefore), los pasa a processing e incrementa attempts.
	// Las filas bloqueadas por otro worker se saltan.
	ClaimDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]*entity.EmailQueueItem, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkRetry(ctx context.Context, id, lastErr string, next, at time.Time) error
	MarkFailed(ctx context.Context, id, lastErr string, at time.Time) error
	AppendLog(ctx context.Context, l *entity.EmailLog) error
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.EmailQueueItem, error)
}

// SubscriptionRepository planes, suscripciones y transacciones de pago.
type SubscriptionRepository interface {
	ListPlans(ctx context.Context) ([]*entity.Plan, error)
	GetPlanByCode(ctx context.Context, code string) (*entity.Plan, error)
	GetPlanByID(ctx context.Context, id string) (*entity.Plan, error)
	CreateSubscription(ctx context.Context, s *entity.Subscription) error
	// Current devuelve la suscripción más reciente no cancelada del tenant.
	Current(ctx context.Context, tenantID string) (*entity.Subscription, error)
	LockSubscription(ctx context.Context, tenantID, id string) (*entity.Subscription, error)
	UpdateSubscription(ctx context.Context, s *entity.Subscription) error
	// UpsertPayment inserta o actualiza por (gateway, external_id). previous es el estado
	// anterior ("" si es nuevo).
	UpsertPayment(ctx context.Context, p *entity.PaymentTransaction) (previous string, err error)
	ListPayments(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PaymentTransaction, error)
}
