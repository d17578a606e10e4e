package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

var _ ports.EmailEnqueuer = (*QueueUseCase)(nil)

// QueueUseCase encola emails; la entrega la hace Worker.
type QueueUseCase struct {
	repos       repository.Tx
	maxAttempts int
	now         func() time.Time
}

// NewQueueUseCase construye el caso de uso. maxAttempts <= 0 usa 3.
func NewQueueUseCase(repos repository.Tx, maxAttempts int) *QueueUseCase {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &QueueUseCase{repos: repos, maxAttempts: maxAttempts, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *QueueUseCase) WithClock(now func() time.Time) *QueueUseCase {
	uc.now = now
	return uc
}

// Enqueue renderiza la plantilla indicada por slug y encola el resultado.
func (uc *QueueUseCase) Enqueue(ctx context.Context, scope tenancy.Scope, in dto.SendEmailRequest) (*dto.QueueItemResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	t, err := uc.repos.EmailTemplates().GetBySlug(ctx, scope.TenantID, normalizeSlug(in.TemplateSlug))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !t.IsActive {
		return nil, fmt.Errorf("%w: plantilla inactiva", domain.ErrConflict)
	}
	r, err := Render(t, in.Data)
	if err != nil {
		return nil, err
	}
	at := uc.now()
	if in.ScheduledAt != nil && in.ScheduledAt.After(at) {
		at = *in.ScheduledAt
	}
	item := uc.item(scope.TenantID, ports.Message{To: in.To, ToName: in.ToName, Subject: r.Subject, HTML: r.HTML, Text: r.Text}, at)
	item.TemplateID = &t.ID
	if err := uc.repos.EmailQueue().Enqueue(ctx, item); err != nil {
		return nil, err
	}
	return toQueueItemResponse(item), nil
}

// EnqueueMessage encola un email ya armado para entrega inmediata.
func (uc *QueueUseCase) EnqueueMessage(ctx context.Context, tenantID string, m ports.Message) error {
	if tenantID == "" || m.To == "" {
		return domain.ErrInvalidInput
	}
	return uc.repos.EmailQueue().Enqueue(ctx, uc.item(tenantID, m, uc.now()))
}

// EnqueueAt como EnqueueMessage pero programado para at.
func (uc *QueueUseCase) EnqueueAt(ctx context.Context, tenantID string, templateID *string, m ports.Message, at time.Time) error {
	item := uc.item(tenantID, m, at)
	item.TemplateID = templateID
	return uc.repos.EmailQueue().Enqueue(ctx, item)
}

// List lista la cola del tenant, opcionalmente por estado.
func (uc *QueueUseCase) List(ctx context.Context, scope tenancy.Scope, status string, page dto.PageRequest) ([]dto.QueueItemResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repos.EmailQueue().List(ctx, scope.TenantID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QueueItemResponse, 0, len(list))
	for _, q := range list {
		out = append(out, *toQueueItemResponse(q))
	}
	return out, nil
}

func (uc *QueueUseCase) item(tenantID string, m ports.Message, at time.Time) *entity.EmailQueueItem {
	now := uc.now()
	return &entity.EmailQueueItem{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		ToAddress:   m.To,
		ToName:      m.ToName,
		Subject:     m.Subject,
		BodyHTML:    m.HTML,
		BodyText:    m.Text,
		Status:      entity.EmailPending,
		MaxAttempts: uc.maxAttempts,
		ScheduledAt: at,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func toQueueItemResponse(q *entity.EmailQueueItem) *dto.QueueItemResponse {
	return &dto.QueueItemResponse{
		ID: q.ID, To: q.ToAddress, Subject: q.Subject, Status: q.Status, Attempts: q.Attempts,
		MaxAttempts: q.MaxAttempts, LastError: q.LastError, ScheduledAt: q.ScheduledAt,
		ProcessedAt: q.ProcessedAt, CreatedAt: q.CreatedAt,
	}
}
