// Package commerce implementa presupuestos, servicios, facturas y citas, y el cambio de
// estado con historial que comparten.
package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// StatusChange petición de cambio de estado de una entidad.
type StatusChange struct {
	Scope     tenancy.Scope
	Kind      lifecycle.Kind
	EntityID  string
	To        string
	Action    string // entity.ActionStatusChange si va vacío
	Comment   string
	Changes   json.RawMessage
	Metadata  json.RawMessage
	IPAddress string
	UserAgent string
}

// Transition cambio aplicado dentro de una transacción, pendiente de publicar tras el commit.
type Transition struct {
	TenantID string
	Kind     lifecycle.Kind
	EntityID string
	From     lifecycle.Status
	To       lifecycle.Status
	History  *entity.ActionHistoryEntry
}

// Lifecycle aplica cambios de estado: política, escritura del estado e historial.
type Lifecycle struct {
	policy  lifecycle.Policy
	metrics ports.Metrics
	events  ports.StatusEvents
	log     zerolog.Logger
	now     func() time.Time
}

// NewLifecycle construye el servicio. policy nil = lifecycle.AllowAll; events puede ser nil.
func NewLifecycle(policy lifecycle.Policy, metrics ports.Metrics, events ports.StatusEvents, log zerolog.Logger) *Lifecycle {
	if policy == nil {
		policy = lifecycle.AllowAll{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Lifecycle{policy: policy, metrics: metrics, events: events, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
	l.now = now
	return l
}

// Now hora actual según el reloj configurado.
func (l *Lifecycle) Now() time.Time { return l.now() }

// Check valida el destino contra el estado actual sin escribir nada.
func (l *Lifecycle) Check(kind lifecycle.Kind, current, to string) (lifecycle.Status, lifecycle.Status, error) {
	target, err := lifecycle.Parse(kind, to)
	if err != nil {
		return nil, nil, err
	}
	from, err := lifecycle.Parse(kind, current)
	if err != nil {
		// un valor fuera de la enumeración en la fila no debe poder existir
		return nil, nil, fmt.Errorf("%w: estado almacenado %q inválido", domain.ErrPersistence, current)
	}
	if from == target {
		return nil, nil, fmt.Errorf("%w: %s ya está en %s", domain.ErrInvalidTransition, kind, to)
	}
	if err := l.policy.Check(from, target); err != nil {
		return nil, nil, err
	}
	return from, target, nil
}

// Apply ejecuta el cambio dentro de tx: bloquea la fila, valida, escribe el estado y
// agrega la fila de historial. Cualquier error debe abortar la transacción del caller.
func (l *Lifecycle) Apply(ctx context.Context, tx repository.Tx, in StatusChange) (*Transition, error) {
	if err := in.Scope.Validate(); err != nil {
		return nil, err
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: tipo %q desconocido", domain.ErrInvalidInput, in.Kind)
	}
	// validar el valor antes de tocar la base de datos
	if _, err := lifecycle.Parse(in.Kind, in.To); err != nil {
		return nil, err
	}
	current, err := tx.Statuses(in.Kind).LockStatus(ctx, in.Scope.TenantID, in.EntityID)
	if err != nil {
		return nil, err
	}
	from, to, err := l.Check(in.Kind, current, in.To)
	if err != nil {
		return nil, err
	}
	now := l.now()
	if err := tx.Statuses(in.Kind).SetStatus(ctx, in.Scope.TenantID, in.EntityID, to.String(), now); err != nil {
		return nil, err
	}
	action := in.Action
	if action == "" {
		action = entity.ActionStatusChange
	}
	oldS, newS := from.String(), to.String()
	h := &entity.ActionHistoryEntry{
		ID:          uuid.New().String(),
		TenantID:    in.Scope.TenantID,
		Kind:        in.Kind,
		EntityID:    in.EntityID,
		UserID:      in.Scope.Actor(),
		Action:      action,
		OldStatus:   &oldS,
		NewStatus:   &newS,
		Description: in.Comment,
		Changes:     in.Changes,
		Metadata:    in.Metadata,
		IPAddress:   in.IPAddress,
		UserAgent:   in.UserAgent,
		CreatedAt:   now,
	}
	if err := tx.History(in.Kind).Append(ctx, h); err != nil {
		l.log.Error().Err(err).
			Str("tenant_id", in.Scope.TenantID).Str("kind", string(in.Kind)).Str("entity_id", in.EntityID).
			Msg("fallo al escribir historial; se revierte el cambio de estado")
		return nil, domain.ErrPersistence
	}
	return &Transition{TenantID: in.Scope.TenantID, Kind: in.Kind, EntityID: in.EntityID, From: from, To: to, History: h}, nil
}

// Publish notifica un cambio ya confirmado: métricas y autorespondedores. Los fallos solo se registran.
func (l *Lifecycle) Publish(ctx context.Context, t *Transition) {
	if t == nil {
		return
	}
	l.metrics.StatusChanged(t.Kind, t.To.String())
	if l.events == nil {
		return
	}
	ev := ports.StatusEvent{
		TenantID: t.TenantID, Kind: t.Kind, EntityID: t.EntityID,
		From: t.From.String(), To: t.To.String(), At: t.History.CreatedAt,
	}
	if err := l.events.StatusChanged(ctx, ev); err != nil {
		l.log.Warn().Err(err).Str("event", ev.Name()).Str("entity_id", t.EntityID).Msg("autorespondedor no ejecutado")
	}
}

