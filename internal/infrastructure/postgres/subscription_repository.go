package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo planes, suscripciones y pagos de Mercado Pago.
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

const planColumns = `id, code, name, price, currency, interval_months, is_active`

func scanPlan(row pgx.Row) (*entity.Plan, error) {
	var p entity.Plan
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Currency, &p.IntervalMonths, &p.IsActive); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlans lista los planes activos.
func (r *SubscriptionRepo) ListPlans(ctx context.Context) ([]*entity.Plan, error) {
	rows, err := r.q.Query(ctx, `SELECT `+planColumns+` FROM plans WHERE is_active ORDER BY price`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	var list []*entity.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetPlanByCode obtiene un plan por código.
func (r *SubscriptionRepo) GetPlanByCode(ctx context.Context, code string) (*entity.Plan, error) {
	return r.getPlan(ctx, `SELECT `+planColumns+` FROM plans WHERE code = $1`, code)
}

// GetPlanByID obtiene un plan por ID.
func (r *SubscriptionRepo) GetPlanByID(ctx context.Context, id string) (*entity.Plan, error) {
	return r.getPlan(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
}

func (r *SubscriptionRepo) getPlan(ctx context.Context, query, arg string) (*entity.Plan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

const subscriptionColumns = `id, tenant_id, plan_id, status, current_period_start, current_period_end,
	cancelled_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (*entity.Subscription, error) {
	var s entity.Subscription
	if err := row.Scan(&s.ID, &s.TenantID, &s.PlanID, &s.Status, &s.CurrentPeriodStart, &s.CurrentPeriodEnd,
		&s.CancelledAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSubscription persiste una suscripción.
func (r *SubscriptionRepo) CreateSubscription(ctx context.Context, s *entity.Subscription) error {
	_, err := r.q.Exec(ctx, `INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.TenantID, s.PlanID, s.Status, s.CurrentPeriodStart, s.CurrentPeriodEnd, s.CancelledAt,
		s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Current devuelve la suscripción vigente más reciente del tenant.
func (r *SubscriptionRepo) Current(ctx context.Context, tenantID string) (*entity.Subscription, error) {
	s, err := scanSubscription(r.q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE tenant_id = $1 AND status <> 'cancelled' ORDER BY created_at DESC LIMIT 1`, tenantID))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("current subscription: %w", err)
	}
	return s, nil
}

// LockSubscription lee y bloquea una suscripción del tenant.
func (r *SubscriptionRepo) LockSubscription(ctx context.Context, tenantID, id string) (*entity.Subscription, error) {
	s, err := scanSubscription(r.q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock subscription: %w", err)
	}
	return s, nil
}

// UpdateSubscription persiste estado y periodo.
func (r *SubscriptionRepo) UpdateSubscription(ctx context.Context, s *entity.Subscription) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE subscriptions SET status = $3, current_period_start = $4, current_period_end = $5,
		       cancelled_at = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2`,
		s.TenantID, s.ID, s.Status, s.CurrentPeriodStart, s.CurrentPeriodEnd, s.CancelledAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpsertPayment inserta o actualiza por (gateway, external_id). La fila existente se bloquea
// para que dos notificaciones simultáneas del mismo pago se serialicen.
func (r *SubscriptionRepo) UpsertPayment(ctx context.Context, p *entity.PaymentTransaction) (string, error) {
	var previous, existingID string
	err := r.q.QueryRow(ctx, `
		SELECT id, status FROM mercadopago_payments WHERE gateway = $1 AND external_id = $2 FOR UPDATE`,
		p.Gateway, p.ExternalID).Scan(&existingID, &previous)
	switch {
	case err == nil:
		p.ID = existingID
		_, err = r.q.Exec(ctx, `
			UPDATE mercadopago_payments SET status = $2, amount = $3, currency = $4, payload = $5, updated_at = $6
			WHERE id = $1`, p.ID, p.Status, p.Amount, p.Currency, jsonArg(p.Payload), p.UpdatedAt)
		if err != nil {
			return "", fmt.Errorf("update payment: %w", err)
		}
		return previous, nil
	case !isNotFound(err):
		return "", fmt.Errorf("get payment: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO mercadopago_payments (id, tenant_id, subscription_id, gateway, external_id, status, amount,
		                                  currency, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.TenantID, p.SubscriptionID, p.Gateway, p.ExternalID, p.Status, p.Amount, p.Currency,
		jsonArg(p.Payload), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("insert payment: %w", err)
	}
	return "", nil
}

// ListPayments lista los pagos del tenant, más recientes primero.
func (r *SubscriptionRepo) ListPayments(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PaymentTransaction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, subscription_id, gateway, external_id, status, amount, currency, payload, created_at, updated_at
		FROM mercadopago_payments WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.PaymentTransaction
	for rows.Next() {
		var p entity.PaymentTransaction
		var payload []byte
		if err := rows.Scan(&p.ID, &p.TenantID, &p.SubscriptionID, &p.Gateway, &p.ExternalID, &p.Status,
			&p.Amount, &p.Currency, &payload, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Payload = payload
		list = append(list, &p)
	}
	return list, rows.Err()
}
