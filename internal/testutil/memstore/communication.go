package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

type auditRepo struct{ base }

func (r *auditRepo) Append(_ context.Context, e *entity.AuditLogEntry) error {
	defer r.l.lock()()
	if err := r.s.fault(OpAuditAppend); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.st().audit = append(r.st().audit, *e)
	r.st().track(e.ID)
	return nil
}

func (r *auditRepo) List(_ context.Context, tenantID string, f repository.AuditFilter, limit, offset int) ([]*entity.AuditLogEntry, error) {
	defer r.l.lock()()
	var out []entity.AuditLogEntry
	for _, e := range r.st().audit {
		if e.TenantID != tenantID ||
			(f.EntityType != "" && e.EntityType != f.EntityType) ||
			(f.EntityID != "" && e.EntityID != f.EntityID) ||
			(f.Action != "" && e.Action != f.Action) ||
			(f.Since != nil && e.CreatedAt.Before(*f.Since)) {
			continue
		}
		out = append(out, e)
	}
	sortNewest(r.st(), out, func(e entity.AuditLogEntry) (time.Time, string) { return e.CreatedAt, e.ID })
	return ptrs(page(out, limit, offset)), nil
}

type activityRepo struct{ base }

func (r *activityRepo) Append(_ context.Context, e *entity.ActivityEntry) error {
	defer r.l.lock()()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.st().activity = append(r.st().activity, *e)
	r.st().track(e.ID)
	return nil
}

func (r *activityRepo) List(_ context.Context, tenantID string, limit, offset int) ([]*entity.ActivityEntry, error) {
	defer r.l.lock()()
	var out []entity.ActivityEntry
	for _, e := range r.st().activity {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	sortNewest(r.st(), out, func(e entity.ActivityEntry) (time.Time, string) { return e.CreatedAt, e.ID })
	return ptrs(page(out, limit, offset)), nil
}

type alertRepo struct{ base }

func (r *alertRepo) Append(_ context.Context, e *entity.AlertHistoryEntry) error {
	defer r.l.lock()()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.st().alerts = append(r.st().alerts, *e)
	r.st().track(e.ID)
	return nil
}

func (r *alertRepo) list(pred func(entity.AlertHistoryEntry) bool, limit, offset int) []*entity.AlertHistoryEntry {
	var out []entity.AlertHistoryEntry
	for _, e := range r.st().alerts {
		if pred(e) {
			out = append(out, e)
		}
	}
	sortNewest(r.st(), out, func(e entity.AlertHistoryEntry) (time.Time, string) { return e.CreatedAt, e.ID })
	return ptrs(page(out, limit, offset))
}

func (r *alertRepo) ListForTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.AlertHistoryEntry, error) {
	defer r.l.lock()()
	return r.list(func(e entity.AlertHistoryEntry) bool {
		return e.TenantID != nil && *e.TenantID == tenantID
	}, limit, offset), nil
}

func (r *alertRepo) ListSystem(_ context.Context, limit, offset int) ([]*entity.AlertHistoryEntry, error) {
	defer r.l.lock()()
	return r.list(func(e entity.AlertHistoryEntry) bool { return e.TenantID == nil }, limit, offset), nil
}

type templateRepo struct{ base }

func copyTemplate(t entity.EmailTemplate) *entity.EmailTemplate {
	t.Variables = slices.Clone(t.Variables)
	return &t
}

func (r *templateRepo) Create(_ context.Context, t *entity.EmailTemplate) error {
	defer r.l.lock()()
	if err := r.s.fault(OpTemplateCreate); err != nil {
		return err
	}
	st := r.st()
	for _, x := range st.templates {
		if x.TenantID == t.TenantID && x.Slug == t.Slug {
			return domain.ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	for i := range t.Variables {
		if t.Variables[i].ID == "" {
			t.Variables[i].ID = uuid.New().String()
		}
		t.Variables[i].TemplateID = t.ID
	}
	v := copyTemplate(*t)
	slices.SortFunc(v.Variables, func(a, b entity.EmailTemplateVariable) int { return strings.Compare(a.Name, b.Name) })
	st.templates[t.ID] = *v
	st.track(t.ID)
	return nil
}

func (r *templateRepo) GetByID(_ context.Context, tenantID, id string) (*entity.EmailTemplate, error) {
	defer r.l.lock()()
	t, ok := r.st().templates[id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	return copyTemplate(t), nil
}

func (r *templateRepo) GetBySlug(_ context.Context, tenantID, slug string) (*entity.EmailTemplate, error) {
	defer r.l.lock()()
	for _, t := range r.st().templates {
		if t.TenantID == tenantID && t.Slug == slug {
			return copyTemplate(t), nil
		}
	}
	return nil, nil
}

func (r *templateRepo) List(_ context.Context, tenantID string) ([]*entity.EmailTemplate, error) {
	defer r.l.lock()()
	var rows []entity.EmailTemplate
	for _, t := range r.st().templates {
		if t.TenantID == tenantID {
			rows = append(rows, t)
		}
	}
	slices.SortFunc(rows, func(a, b entity.EmailTemplate) int { return strings.Compare(a.Slug, b.Slug) })
	out := make([]*entity.EmailTemplate, 0, len(rows))
	for _, t := range rows {
		out = append(out, copyTemplate(t))
	}
	return out, nil
}

type autoresponderRepo struct{ base }

func (r *autoresponderRepo) Create(_ context.Context, a *entity.Autoresponder) error {
	defer r.l.lock()()
	st := r.st()
	t, ok := st.templates[a.TemplateID]
	if !ok || t.TenantID != a.TenantID {
		return domain.ErrNotFound
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	st.autoresponders[a.ID] = *a
	st.track(a.ID)
	return nil
}

func (r *autoresponderRepo) list(pred func(entity.Autoresponder) bool) []entity.Autoresponder {
	var out []entity.Autoresponder
	for _, a := range r.st().autoresponders {
		if pred(a) {
			out = append(out, a)
		}
	}
	sortOldest(r.st(), out, func(a entity.Autoresponder) (time.Time, string) { return a.CreatedAt, a.ID })
	return out
}

func (r *autoresponderRepo) ListActiveByEvent(_ context.Context, tenantID, event string) ([]*entity.Autoresponder, error) {
	defer r.l.lock()()
	return ptrs(r.list(func(a entity.Autoresponder) bool {
		return a.TenantID == tenantID && a.Event == event && a.IsActive
	})), nil
}

func (r *autoresponderRepo) List(_ context.Context, tenantID string) ([]*entity.Autoresponder, error) {
	defer r.l.lock()()
	out := r.list(func(a entity.Autoresponder) bool { return a.TenantID == tenantID })
	slices.SortStableFunc(out, func(a, b entity.Autoresponder) int { return strings.Compare(a.Event, b.Event) })
	return ptrs(out), nil
}

type queueRepo struct{ base }

func (r *queueRepo) Enqueue(_ context.Context, item *entity.EmailQueueItem) error {
	defer r.l.lock()()
	if err := r.s.fault(OpQueueEnqueue); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	st := r.st()
	st.queue[item.ID] = *item
	st.queueOrder = append(st.queueOrder, item.ID)
	st.track(item.ID)
	return nil
}

func (r *queueRepo) ClaimDue(_ context.Context, now, staleBefore time.Time, limit int) ([]*entity.EmailQueueItem, error) {
	defer r.l.lock()()
	st := r.st()
	var due []entity.EmailQueueItem
	for _, id := range st.queueOrder {
		q := st.queue[id]
		if (q.Status == entity.EmailPending && !q.ScheduledAt.After(now)) ||
			(q.Status == entity.EmailProcessing && q.UpdatedAt.Before(staleBefore)) {
			due = append(due, q)
		}
	}
	slices.SortStableFunc(due, func(a, b entity.EmailQueueItem) int { return a.ScheduledAt.Compare(b.ScheduledAt) })
	due = page(due, limit, 0)
	for i := range due {
		due[i].Status = entity.EmailProcessing
		due[i].Attempts++
		due[i].UpdatedAt = now
		st.queue[due[i].ID] = due[i]
	}
	return ptrs(due), nil
}

func (r *queueRepo) update(id string, fn func(*entity.EmailQueueItem)) error {
	q, ok := r.st().queue[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&q)
	r.st().queue[id] = q
	return nil
}

func (r *queueRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	defer r.l.lock()()
	return r.update(id, func(q *entity.EmailQueueItem) {
		q.Status, q.LastError, q.ProcessedAt, q.UpdatedAt = entity.EmailSent, "", timePtr(at), at
	})
}

func (r *queueRepo) MarkRetry(_ context.Context, id, lastErr string, next, at time.Time) error {
	defer r.l.lock()()
	return r.update(id, func(q *entity.EmailQueueItem) {
		q.Status, q.LastError, q.ScheduledAt, q.UpdatedAt = entity.EmailPending, lastErr, next, at
	})
}

func (r *queueRepo) MarkFailed(_ context.Context, id, lastErr string, at time.Time) error {
	defer r.l.lock()()
	return r.update(id, func(q *entity.EmailQueueItem) {
		q.Status, q.LastError, q.ProcessedAt, q.UpdatedAt = entity.EmailFailed, lastErr, timePtr(at), at
	})
}

func (r *queueRepo) AppendLog(_ context.Context, l *entity.EmailLog) error {
	defer r.l.lock()()
	if err := r.s.fault(OpEmailLog); err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	r.st().emailLogs = append(r.st().emailLogs, *l)
	return nil
}

func (r *queueRepo) List(_ context.Context, tenantID, status string, limit, offset int) ([]*entity.EmailQueueItem, error) {
	defer r.l.lock()()
	var out []entity.EmailQueueItem
	for _, q := range r.st().queue {
		if q.TenantID == tenantID && byStatus(status, q.Status) {
			out = append(out, q)
		}
	}
	sortNewest(r.st(), out, func(q entity.EmailQueueItem) (time.Time, string) { return q.CreatedAt, q.ID })
	return ptrs(page(out, limit, offset)), nil
}

type subscriptionRepo struct{ base }

func (r *subscriptionRepo) ListPlans(context.Context) ([]*entity.Plan, error) {
	defer r.l.lock()()
	var out []entity.Plan
	for _, p := range r.st().plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b entity.Plan) int { return a.Price.Cmp(b.Price) })
	return ptrs(out), nil
}

func (r *subscriptionRepo) GetPlanByCode(_ context.Context, code string) (*entity.Plan, error) {
	defer r.l.lock()()
	for _, p := range r.st().plans {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *subscriptionRepo) GetPlanByID(_ context.Context, id string) (*entity.Plan, error) {
	defer r.l.lock()()
	p, ok := r.st().plans[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *subscriptionRepo) CreateSubscription(_ context.Context, s *entity.Subscription) error {
	defer r.l.lock()()
	st := r.st()
	if _, ok := st.plans[s.PlanID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := st.tenants[s.TenantID]; !ok {
		return domain.ErrNotFound
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	st.subscriptions[s.ID] = *s
	st.track(s.ID)
	return nil
}

func (r *subscriptionRepo) Current(_ context.Context, tenantID string) (*entity.Subscription, error) {
	defer r.l.lock()()
	var rows []entity.Subscription
	for _, s := range r.st().subscriptions {
		if s.TenantID == tenantID && s.Status != entity.SubscriptionCancelled {
			rows = append(rows, s)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sortNewest(r.st(), rows, func(s entity.Subscription) (time.Time, string) { return s.CreatedAt, s.ID })
	return &rows[0], nil
}

func (r *subscriptionRepo) LockSubscription(_ context.Context, tenantID, id string) (*entity.Subscription, error) {
	defer r.l.lock()()
	s, ok := r.st().subscriptions[id]
	if !ok || s.TenantID != tenantID {
		return nil, nil
	}
	return &s, nil
}

func (r *subscriptionRepo) UpdateSubscription(_ context.Context, s *entity.Subscription) error {
	defer r.l.lock()()
	if err := r.s.fault(OpSubscriptionSet); err != nil {
		return err
	}
	cur, ok := r.st().subscriptions[s.ID]
	if !ok || cur.TenantID != s.TenantID {
		return domain.ErrNotFound
	}
	r.st().subscriptions[s.ID] = *s
	return nil
}

func (r *subscriptionRepo) UpsertPayment(_ context.Context, p *entity.PaymentTransaction) (string, error) {
	defer r.l.lock()()
	if err := r.s.fault(OpPaymentUpsert); err != nil {
		return "", err
	}
	st := r.st()
	for id, x := range st.payments {
		if x.Gateway == p.Gateway && x.ExternalID == p.ExternalID {
			p.ID = id
			previous := x.Status
			x.Status, x.Amount, x.Currency, x.Payload, x.UpdatedAt = p.Status, p.Amount, p.Currency, p.Payload, p.UpdatedAt
			st.payments[id] = x
			return previous, nil
		}
	}
	if _, ok := st.tenants[p.TenantID]; !ok {
		return "", domain.ErrNotFound
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	st.payments[p.ID] = *p
	st.track(p.ID)
	return "", nil
}

func (r *subscriptionRepo) ListPayments(_ context.Context, tenantID string, limit, offset int) ([]*entity.PaymentTransaction, error) {
	defer r.l.lock()()
	var out []entity.PaymentTransaction
	for _, p := range r.st().payments {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	sortNewest(r.st(), out, func(p entity.PaymentTransaction) (time.Time, string) { return p.CreatedAt, p.ID })
	return ptrs(page(out, limit, offset)), nil
}
