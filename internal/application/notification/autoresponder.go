package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

var _ ports.StatusEvents = (*AutoresponderUseCase)(nil)

// AutoresponderUseCase reglas evento -> plantilla y su disparo tras un cambio de estado.
type AutoresponderUseCase struct {
	repos repository.Tx
	queue *QueueUseCase
	log   zerolog.Logger
	now   func() time.Time
}

// NewAutoresponderUseCase construye el caso de uso.
func NewAutoresponderUseCase(repos repository.Tx, queue *QueueUseCase, log zerolog.Logger) *AutoresponderUseCase {
	return &AutoresponderUseCase{repos: repos, queue: queue, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AutoresponderUseCase) WithClock(now func() time.Time) *AutoresponderUseCase {
	uc.now = now
	return uc
}

// ParseEvent valida un nombre de evento "<kind>.<status>".
func ParseEvent(event string) (lifecycle.Kind, lifecycle.Status, error) {
	k, s, ok := strings.Cut(strings.TrimSpace(event), ".")
	if !ok {
		return "", nil, fmt.Errorf("%w: evento %q, se espera <tipo>.<estado>", domain.ErrInvalidInput, event)
	}
	kind := lifecycle.Kind(k)
	status, err := lifecycle.Parse(kind, s)
	if err != nil {
		return "", nil, err
	}
	return kind, status, nil
}

// Create registra un autorespondedor; la plantilla debe ser del tenant.
func (uc *AutoresponderUseCase) Create(ctx context.Context, scope tenancy.Scope, in dto.CreateAutoresponderRequest) (*dto.AutoresponderResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	kind, status, err := ParseEvent(in.Event)
	if err != nil {
		return nil, err
	}
	if in.DelaySeconds < 0 {
		return nil, domain.ErrInvalidInput
	}
	t, err := uc.repos.EmailTemplates().GetByID(ctx, scope.TenantID, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	a := &entity.Autoresponder{
		ID:           uuid.New().String(),
		TenantID:     scope.TenantID,
		Event:        string(kind) + "." + status.String(),
		TemplateID:   t.ID,
		DelaySeconds: in.DelaySeconds,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repos.Autoresponders().Create(ctx, a); err != nil {
		return nil, err
	}
	return toAutoresponderResponse(a), nil
}

// List lista los autorespondedores del tenant.
func (uc *AutoresponderUseCase) List(ctx context.Context, scope tenancy.Scope) ([]dto.AutoresponderResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repos.Autoresponders().List(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AutoresponderResponse, 0, len(list))
	for _, a := range list {
		out = append(out, *toAutoresponderResponse(a))
	}
	return out, nil
}

// StatusChanged encola las plantillas de los autorespondedores activos del evento para el
// contacto del cliente. Sin destinatario no se envía nada.
func (uc *AutoresponderUseCase) StatusChanged(ctx context.Context, ev ports.StatusEvent) error {
	rules, err := uc.repos.Autoresponders().ListActiveByEvent(ctx, ev.TenantID, ev.Name())
	if err != nil || len(rules) == 0 {
		return err
	}
	email, name, err := uc.repos.Contacts().ForSubject(ctx, ev.Kind, ev.TenantID, ev.EntityID)
	if err != nil {
		return err
	}
	if email == "" {
		uc.log.Debug().Str("event", ev.Name()).Str("entity_id", ev.EntityID).Msg("autorespondedor sin destinatario")
		return nil
	}
	data := map[string]string{
		"kind":          string(ev.Kind),
		"entity_id":     ev.EntityID,
		"old_status":    ev.From,
		"new_status":    ev.To,
		"customer_name": name,
	}
	var errs []error
	for _, a := range rules {
		if err := uc.fire(ctx, ev, a, email, name, data); err != nil {
			errs = append(errs, fmt.Errorf("autoresponder %s: %w", a.ID, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d autorespondedores fallidos: %w", len(errs), errs[0])
	}
	return nil
}

func (uc *AutoresponderUseCase) fire(ctx context.Context, ev ports.StatusEvent, a *entity.Autoresponder, email, name string, data map[string]string) error {
	t, err := uc.repos.EmailTemplates().GetByID(ctx, ev.TenantID, a.TemplateID)
	if err != nil {
		return err
	}
	if t == nil || !t.IsActive {
		return nil
	}
	r, err := Render(t, data)
	if err != nil {
		return err
	}
	at := ev.At.Add(time.Duration(a.DelaySeconds) * time.Second)
	return uc.queue.EnqueueAt(ctx, ev.TenantID, &t.ID, ports.Message{
		To: email, ToName: name, Subject: r.Subject, HTML: r.HTML, Text: r.Text,
	}, at)
}

func toAutoresponderResponse(a *entity.Autoresponder) *dto.AutoresponderResponse {
	return &dto.AutoresponderResponse{
		ID: a.ID, Event: a.Event, TemplateID: a.TemplateID, DelaySeconds: a.DelaySeconds,
		IsActive: a.IsActive, CreatedAt: a.CreatedAt,
	}
}
