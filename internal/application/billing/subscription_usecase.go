// Package billing gestiona planes, suscripciones de los tenants y los pagos notificados
// por la pasarela. No llama a la pasarela: solo registra lo que ella informa.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/monitoring"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// SubscriptionUseCase planes, suscripciones y pagos.
type SubscriptionUseCase struct {
	repos   repository.Tx
	tx      repository.TxRunner
	metrics ports.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewSubscriptionUseCase construye el caso de uso. metrics nil = sin métricas.
func NewSubscriptionUseCase(repos repository.Tx, tx repository.TxRunner, metrics ports.Metrics, log zerolog.Logger) *SubscriptionUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &SubscriptionUseCase{repos: repos, tx: tx, metrics: metrics, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *SubscriptionUseCase) WithClock(now func() time.Time) *SubscriptionUseCase {
	uc.now = now
	return uc
}

// ListPlans lista los planes activos.
func (uc *SubscriptionUseCase) ListPlans(ctx context.Context) ([]dto.PlanResponse, error) {
	list, err := uc.repos.Subscriptions().ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPlanResponse(p))
	}
	return out, nil
}

// Subscribe crea una suscripción pending al plan. Si ya hay una activa o pendiente devuelve
// domain.ErrConflict; una vencida (past_due) se cancela y se reemplaza.
func (uc *SubscriptionUseCase) Subscribe(ctx context.Context, scope tenancy.Scope, in dto.SubscribeRequest, client dto.ClientInfo) (*dto.SubscriptionResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var (
		sub  *entity.Subscription
		plan *entity.Plan
	)
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		if plan, err = tx.Subscriptions().GetPlanByCode(ctx, tenancy.NormalizeCode(in.PlanCode)); err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrNotFound
		}
		if !plan.IsActive {
			return fmt.Errorf("%w: plan %s inactivo", domain.ErrInvalidInput, plan.Code)
		}
		now := uc.now()
		current, err := tx.Subscriptions().Current(ctx, scope.TenantID)
		if err != nil {
			return err
		}
		if current != nil {
			if current.Status == entity.SubscriptionActive || current.Status == entity.SubscriptionPending {
				return fmt.Errorf("%w: el tenant ya tiene una suscripción %s", domain.ErrConflict, current.Status)
			}
			current.Status, current.CancelledAt, current.UpdatedAt = entity.SubscriptionCancelled, &now, now
			if err := tx.Subscriptions().UpdateSubscription(ctx, current); err != nil {
				return err
			}
		}
		sub = &entity.Subscription{
			ID:        uuid.New().String(),
			TenantID:  scope.TenantID,
			PlanID:    plan.ID,
			Status:    entity.SubscriptionPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Subscriptions().CreateSubscription(ctx, sub); err != nil {
			return err
		}
		return tx.AuditLogs().Append(ctx, monitoring.NewAudit(scope, monitoring.AuditInput{
			EntityType:  "subscription",
			EntityID:    sub.ID,
			Action:      "subscription.created",
			NewStatus:   sub.Status,
			Description: fmt.Sprintf("Suscripción al plan %s", plan.Code),
			Metadata:    map[string]any{"plan": plan.Code},
			IPAddress:   client.IP,
			UserAgent:   client.UserAgent,
			Category:    entity.CategoryBilling,
		}, now))
	})
	if err != nil {
		return nil, err
	}
	return toSubscriptionResponse(sub, plan), nil
}

// Current suscripción vigente del tenant. nil si no tiene.
func (uc *SubscriptionUseCase) Current(ctx context.Context, scope tenancy.Scope) (*dto.SubscriptionResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	sub, err := uc.repos.Subscriptions().Current(ctx, scope.TenantID)
	if err != nil || sub == nil {
		return nil, err
	}
	plan, err := uc.repos.Subscriptions().GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	return toSubscriptionResponse(sub, plan), nil
}

// RecordPayment registra una notificación de la pasarela. Es idempotente por external_id:
// repetir el mismo estado no vuelve a tocar la suscripción. approved la activa un intervalo
// del plan (extendiendo el periodo vigente); refunded y charged_back la cancelan.
func (uc *SubscriptionUseCase) RecordPayment(ctx context.Context, n dto.PaymentNotification) (*dto.PaymentResponse, error) {
	if n.TenantID == "" || n.ExternalID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidPaymentStatus(n.Status) {
		return nil, fmt.Errorf("%w: estado de pago %q", domain.ErrInvalidInput, n.Status)
	}
	if n.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: monto negativo", domain.ErrInvalidInput)
	}
	var (
		p        *entity.PaymentTransaction
		previous string
	)
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		t, err := tx.Tenants().GetByID(ctx, n.TenantID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		var sub *entity.Subscription
		if n.SubscriptionID != nil {
			if sub, err = tx.Subscriptions().LockSubscription(ctx, n.TenantID, *n.SubscriptionID); err != nil {
				return err
			}
			if sub == nil {
				return domain.ErrNotFound
			}
		} else if sub, err = tx.Subscriptions().Current(ctx, n.TenantID); err != nil {
			return err
		} else if sub != nil {
			if sub, err = tx.Subscriptions().LockSubscription(ctx, n.TenantID, sub.ID); err != nil {
				return err
			}
		}
		now := uc.now()
		p = &entity.PaymentTransaction{
			ID:         uuid.New().String(),
			TenantID:   n.TenantID,
			Gateway:    entity.GatewayMercadoPago,
			ExternalID: n.ExternalID,
			Status:     n.Status,
			Amount:     n.Amount,
			Currency:   n.Currency,
			Payload:    n.Payload,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if sub != nil {
			p.SubscriptionID = &sub.ID
		}
		if previous, err = tx.Subscriptions().UpsertPayment(ctx, p); err != nil {
			return err
		}
		if previous == n.Status {
			return nil
		}
		oldSub := ""
		if sub != nil {
			oldSub = sub.Status
			if err := uc.applyToSubscription(ctx, tx, sub, n.Status, now); err != nil {
				return err
			}
		}
		in := monitoring.AuditInput{
			EntityType:  "payment",
			EntityID:    p.ID,
			Action:      "payment." + n.Status,
			OldStatus:   previous,
			NewStatus:   n.Status,
			Description: fmt.Sprintf("Pago %s %s %s", n.ExternalID, n.Amount.StringFixed(2), n.Currency),
			Metadata:    map[string]any{"gateway": p.Gateway, "external_id": p.ExternalID},
			Category:    entity.CategoryBilling,
		}
		if sub != nil && sub.Status != oldSub {
			in.Changes = map[string]any{"subscription_id": sub.ID, "from": oldSub, "to": sub.Status}
		}
		if n.Status == entity.PaymentChargedBack {
			in.Severity = entity.SeverityWarning
		}
		return tx.AuditLogs().Append(ctx, monitoring.NewAudit(tenancy.Scope{TenantID: n.TenantID}, in, now))
	})
	if err != nil {
		return nil, err
	}
	applied := previous != n.Status
	if applied {
		uc.metrics.PaymentRecorded(n.Status)
	}
	uc.log.Info().Str("tenant_id", n.TenantID).Str("external_id", n.ExternalID).Str("status", n.Status).
		Str("previous", previous).Bool("applied", applied).Msg("pago registrado")
	return &dto.PaymentResponse{
		ID:             p.ID,
		SubscriptionID: p.SubscriptionID,
		ExternalID:     p.ExternalID,
		Status:         p.Status,
		PreviousStatus: previous,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Applied:        applied,
		CreatedAt:      p.CreatedAt,
	}, nil
}

func (uc *SubscriptionUseCase) applyToSubscription(ctx context.Context, tx repository.Tx, sub *entity.Subscription, status string, now time.Time) error {
	switch status {
	case entity.PaymentApproved:
		plan, err := tx.Subscriptions().GetPlanByID(ctx, sub.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return fmt.Errorf("%w: plan %s de la suscripción", domain.ErrNotFound, sub.PlanID)
		}
		start := now
		if sub.Status == entity.SubscriptionActive && sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.After(now) {
			start = *sub.CurrentPeriodEnd
		}
		end := start.AddDate(0, plan.IntervalMonths, 0)
		if sub.CurrentPeriodStart == nil || sub.Status != entity.SubscriptionActive {
			sub.CurrentPeriodStart = &start
		}
		sub.Status, sub.CurrentPeriodEnd, sub.CancelledAt = entity.SubscriptionActive, &end, nil
	case entity.PaymentRefunded, entity.PaymentChargedBack:
		if sub.Status == entity.SubscriptionCancelled {
			return nil
		}
		sub.Status, sub.CancelledAt = entity.SubscriptionCancelled, &now
	default:
		return nil
	}
	sub.UpdatedAt = now
	return tx.Subscriptions().UpdateSubscription(ctx, sub)
}

// ListPayments lista los pagos del tenant, más recientes primero.
func (uc *SubscriptionUseCase) ListPayments(ctx context.Context, scope tenancy.Scope, page dto.PageRequest) ([]dto.PaymentResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repos.Subscriptions().ListPayments(ctx, scope.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.PaymentResponse{
			ID: p.ID, SubscriptionID: p.SubscriptionID, ExternalID: p.ExternalID, Status: p.Status,
			Amount: p.Amount, Currency: p.Currency, Applied: true, CreatedAt: p.CreatedAt,
		})
	}
	return out, nil
}

func toPlanResponse(p *entity.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID: p.ID, Code: p.Code, Name: p.Name, Price: p.Price, Currency: p.Currency, IntervalMonths: p.IntervalMonths,
	}
}

func toSubscriptionResponse(s *entity.Subscription, p *entity.Plan) *dto.SubscriptionResponse {
	r := &dto.SubscriptionResponse{
		ID: s.ID, Status: s.Status, CurrentPeriodStart: s.CurrentPeriodStart, CurrentPeriodEnd: s.CurrentPeriodEnd,
		CancelledAt: s.CancelledAt, CreatedAt: s.CreatedAt,
	}
	if p != nil {
		r.Plan = toPlanResponse(p)
	}
	return r
}
