package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

func (st *state) customerOK(tenantID string, id *string) bool {
	if id == nil {
		return true
	}
	c, ok := st.parties[entity.PartyCustomer][*id]
	return ok && c.TenantID == tenantID && c.DeletedAt == nil
}

func byStatus(filter, status string) bool { return filter == "" || filter == status }

type budgetRepo struct{ base }

func (r *budgetRepo) Create(_ context.Context, b *entity.Budget) error {
	defer r.l.lock()()
	if err := r.s.fault(OpBudgetCreate); err != nil {
		return err
	}
	st := r.st()
	for _, x := range st.budgets {
		if x.TenantID == b.TenantID && x.Code == b.Code {
			return domain.ErrDuplicate
		}
	}
	if !st.customerOK(b.TenantID, b.CustomerID) {
		return domain.ErrNotFound
	}
	for _, it := range b.Items {
		if it.ProductID != nil {
			if p, ok := st.products[*it.ProductID]; !ok || p.TenantID != b.TenantID {
				return domain.ErrNotFound
			}
		}
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	for i := range b.Items {
		if b.Items[i].ID == "" {
			b.Items[i].ID = uuid.New().String()
		}
		b.Items[i].BudgetID = b.ID
	}
	st.budgets[b.ID] = cloneBudget(*b)
	st.track(b.ID)
	return nil
}

func (r *budgetRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Budget, error) {
	defer r.l.lock()()
	b, ok := r.st().budgets[id]
	if !ok || b.TenantID != tenantID {
		return nil, nil
	}
	b = cloneBudget(b)
	return &b, nil
}

func (r *budgetRepo) GetByCode(_ context.Context, tenantID, code string) (*entity.Budget, error) {
	defer r.l.lock()()
	for _, b := range r.st().budgets {
		if b.TenantID == tenantID && b.Code == code {
			b = cloneBudget(b)
			return &b, nil
		}
	}
	return nil, nil
}

func (r *budgetRepo) List(_ context.Context, tenantID, status string, limit, offset int) ([]*entity.Budget, error) {
	defer r.l.lock()()
	var out []entity.Budget
	for _, b := range r.st().budgets {
		if b.TenantID == tenantID && byStatus(status, string(b.Status)) {
			b.Items = nil
			out = append(out, b)
		}
	}
	sortNewest(r.st(), out, func(b entity.Budget) (time.Time, string) { return b.CreatedAt, b.ID })
	return ptrs(page(out, limit, offset)), nil
}

func (r *budgetRepo) Delete(_ context.Context, tenantID, id string) error {
	defer r.l.lock()()
	st := r.st()
	b, ok := st.budgets[id]
	if !ok || b.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(st.budgets, id)
	st.history[lifecycle.KindBudget] = slices.DeleteFunc(st.history[lifecycle.KindBudget],
		func(e entity.ActionHistoryEntry) bool { return e.EntityID == id })
	deleteWhere(st.shares[lifecycle.ShareBudget], func(s entity.Share) bool { return s.ResourceID == id })
	for k, s := range st.services {
		if s.BudgetID != nil && *s.BudgetID == id {
			s.BudgetID = nil
			st.services[k] = s
		}
	}
	return nil
}

type serviceRepo struct{ base }

func (r *serviceRepo) Create(_ context.Context, s *entity.Service) error {
	defer r.l.lock()()
	st := r.st()
	for _, x := range st.services {
		if x.TenantID == s.TenantID && x.Code == s.Code {
			return domain.ErrDuplicate
		}
	}
	if !st.customerOK(s.TenantID, s.CustomerID) {
		return domain.ErrNotFound
	}
	if s.BudgetID != nil {
		if b, ok := st.budgets[*s.BudgetID]; !ok || b.TenantID != s.TenantID {
			return domain.ErrNotFound
		}
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	st.services[s.ID] = *s
	st.track(s.ID)
	return nil
}

func (r *serviceRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Service, error) {
	defer r.l.lock()()
	s, ok := r.st().services[id]
	if !ok || s.TenantID != tenantID {
		return nil, nil
	}
	return &s, nil
}

func (r *serviceRepo) GetByCode(_ context.Context, tenantID, code string) (*entity.Service, error) {
	defer r.l.lock()()
	for _, s := range r.st().services {
		if s.TenantID == tenantID && s.Code == code {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *serviceRepo) List(_ context.Context, tenantID, status string, limit, offset int) ([]*entity.Service, error) {
	defer r.l.lock()()
	var out []entity.Service
	for _, s := range r.st().services {
		if s.TenantID == tenantID && byStatus(status, string(s.Status)) {
			out = append(out, s)
		}
	}
	sortNewest(r.st(), out, func(s entity.Service) (time.Time, string) { return s.CreatedAt, s.ID })
	return ptrs(page(out, limit, offset)), nil
}

func (r *serviceRepo) Delete(_ context.Context, tenantID, id string) error {
	defer r.l.lock()()
	st := r.st()
	s, ok := st.services[id]
	if !ok || s.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(st.services, id)
	st.history[lifecycle.KindService] = slices.DeleteFunc(st.history[lifecycle.KindService],
		func(e entity.ActionHistoryEntry) bool { return e.EntityID == id })
	for k, sc := range st.schedules {
		if sc.ServiceID == id {
			delete(st.schedules, k)
			st.history[lifecycle.KindSchedule] = slices.DeleteFunc(st.history[lifecycle.KindSchedule],
				func(e entity.ActionHistoryEntry) bool { return e.EntityID == k })
		}
	}
	for k, inv := range st.invoices {
		if inv.ServiceID != nil && *inv.ServiceID == id {
			inv.ServiceID = nil
			st.invoices[k] = inv
		}
	}
	return nil
}

type invoiceRepo struct{ base }

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	defer r.l.lock()()
	st := r.st()
	for _, x := range st.invoices {
		if x.TenantID == inv.TenantID && x.Code == inv.Code {
			return domain.ErrDuplicate
		}
	}
	if !st.customerOK(inv.TenantID, inv.CustomerID) {
		return domain.ErrNotFound
	}
	if inv.ServiceID != nil {
		if s, ok := st.services[*inv.ServiceID]; !ok || s.TenantID != inv.TenantID {
			return domain.ErrNotFound
		}
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	st.invoices[inv.ID] = *inv
	st.track(inv.ID)
	return nil
}

func (r *invoiceRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Invoice, error) {
	defer r.l.lock()()
	inv, ok := r.st().invoices[id]
	if !ok || inv.TenantID != tenantID || inv.DeletedAt != nil {
		return nil, nil
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByCode(_ context.Context, tenantID, code string) (*entity.Invoice, error) {
	defer r.l.lock()()
	for _, inv := range r.st().invoices {
		if inv.TenantID == tenantID && inv.Code == code && inv.DeletedAt == nil {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *invoiceRepo) List(_ context.Context, tenantID, status string, limit, offset int) ([]*entity.Invoice, error) {
	defer r.l.lock()()
	var out []entity.Invoice
	for _, inv := range r.st().invoices {
		if inv.TenantID == tenantID && inv.DeletedAt == nil && byStatus(status, string(inv.Status)) {
			out = append(out, inv)
		}
	}
	sortNewest(r.st(), out, func(i entity.Invoice) (time.Time, string) { return i.IssueDate, i.ID })
	return ptrs(page(out, limit, offset)), nil
}

func (r *invoiceRepo) SoftDelete(_ context.Context, tenantID, id string, at time.Time) error {
	defer r.l.lock()()
	st := r.st()
	inv, ok := st.invoices[id]
	if !ok || inv.TenantID != tenantID || inv.DeletedAt != nil {
		return domain.ErrNotFound
	}
	inv.DeletedAt = timePtr(at)
	inv.UpdatedAt = at
	st.invoices[id] = inv
	return nil
}

type scheduleRepo struct{ base }

func (r *scheduleRepo) Create(_ context.Context, s *entity.Schedule) error {
	defer r.l.lock()()
	st := r.st()
	if !s.EndsAt.After(s.StartsAt) {
		return domain.ErrInvalidInput
	}
	svc, ok := st.services[s.ServiceID]
	if !ok || svc.TenantID != s.TenantID {
		return domain.ErrNotFound
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	st.schedules[s.ID] = *s
	st.track(s.ID)
	return nil
}

func (r *scheduleRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Schedule, error) {
	defer r.l.lock()()
	s, ok := r.st().schedules[id]
	if !ok || s.TenantID != tenantID {
		return nil, nil
	}
	return &s, nil
}

func (r *scheduleRepo) list(pred func(entity.Schedule) bool) []*entity.Schedule {
	var out []entity.Schedule
	for _, s := range r.st().schedules {
		if pred(s) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b entity.Schedule) int { return a.StartsAt.Compare(b.StartsAt) })
	return ptrs(out)
}

func (r *scheduleRepo) ListByService(_ context.Context, tenantID, serviceID string) ([]*entity.Schedule, error) {
	defer r.l.lock()()
	return r.list(func(s entity.Schedule) bool { return s.TenantID == tenantID && s.ServiceID == serviceID }), nil
}

func (r *scheduleRepo) ListBetween(_ context.Context, tenantID string, from, to time.Time) ([]*entity.Schedule, error) {
	defer r.l.lock()()
	return r.list(func(s entity.Schedule) bool {
		return s.TenantID == tenantID && s.StartsAt.Before(to) && s.EndsAt.After(from)
	}), nil
}

// statusRepo accede al estado de cualquier kind; para budget y service también al token pendiente.
type statusRepo struct {
	base
	kind lifecycle.Kind
}

type statusRow struct {
	tenantID  string
	status    string
	tokenID   *string
	confirmed *time.Time
}

func (r *statusRepo) get(tenantID, id string) (statusRow, error) {
	st := r.st()
	var row statusRow
	var ok bool
	switch r.kind {
	case lifecycle.KindBudget:
		var b entity.Budget
		b, ok = st.budgets[id]
		row = statusRow{b.TenantID, string(b.Status), b.ConfirmationTokenID, b.ConfirmedAt}
	case lifecycle.KindService:
		var s entity.Service
		s, ok = st.services[id]
		row = statusRow{s.TenantID, string(s.Status), s.ConfirmationTokenID, s.ConfirmedAt}
	case lifecycle.KindInvoice:
		var inv entity.Invoice
		inv, ok = st.invoices[id]
		ok = ok && inv.DeletedAt == nil
		row = statusRow{tenantID: inv.TenantID, status: string(inv.Status)}
	case lifecycle.KindSchedule:
		var sc entity.Schedule
		sc, ok = st.schedules[id]
		row = statusRow{tenantID: sc.TenantID, status: string(sc.Status)}
	default:
		return statusRow{}, fmt.Errorf("tipo de entidad desconocido: %q", r.kind)
	}
	if !ok || row.tenantID != tenantID {
		return statusRow{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *statusRepo) put(id string, row statusRow, at time.Time) {
	st := r.st()
	switch r.kind {
	case lifecycle.KindBudget:
		b := st.budgets[id]
		b.Status, b.ConfirmationTokenID, b.ConfirmedAt, b.UpdatedAt = lifecycle.BudgetStatus(row.status), row.tokenID, row.confirmed, at
		st.budgets[id] = b
	case lifecycle.KindService:
		s := st.services[id]
		s.Status, s.ConfirmationTokenID, s.ConfirmedAt, s.UpdatedAt = lifecycle.ServiceStatus(row.status), row.tokenID, row.confirmed, at
		st.services[id] = s
	case lifecycle.KindInvoice:
		inv := st.invoices[id]
		inv.Status, inv.UpdatedAt = lifecycle.InvoiceStatus(row.status), at
		st.invoices[id] = inv
	case lifecycle.KindSchedule:
		sc := st.schedules[id]
		sc.Status, sc.UpdatedAt = lifecycle.ScheduleStatus(row.status), at
		st.schedules[id] = sc
	}
}

func (r *statusRepo) LockStatus(_ context.Context, tenantID, id string) (string, error) {
	defer r.l.lock()()
	row, err := r.get(tenantID, id)
	if err != nil {
		return "", err
	}
	return row.status, nil
}

func (r *statusRepo) SetStatus(_ context.Context, tenantID, id, status string, at time.Time) error {
	defer r.l.lock()()
	if err := r.s.fault(OpStatusSet); err != nil {
		return err
	}
	row, err := r.get(tenantID, id)
	if err != nil {
		return err
	}
	row.status = status
	r.put(id, row, at)
	return nil
}

func (r *statusRepo) PendingToken(_ context.Context, tenantID, id string) (*string, error) {
	defer r.l.lock()()
	row, err := r.get(tenantID, id)
	if err != nil {
		return nil, err
	}
	return row.tokenID, nil
}

func (r *statusRepo) SetPendingToken(_ context.Context, tenantID, id, tokenID string, at time.Time) error {
	defer r.l.lock()()
	row, err := r.get(tenantID, id)
	if err != nil {
		return err
	}
	row.tokenID, row.confirmed = strPtr(tokenID), nil
	r.put(id, row, at)
	return nil
}

func (r *statusRepo) ClearPendingToken(_ context.Context, tenantID, id string, confirmedAt time.Time) error {
	defer r.l.lock()()
	row, err := r.get(tenantID, id)
	if err != nil {
		return err
	}
	row.tokenID, row.confirmed = nil, timePtr(confirmedAt)
	r.put(id, row, confirmedAt)
	return nil
}

type historyRepo struct {
	base
	kind lifecycle.Kind
}

func (r *historyRepo) Append(ctx context.Context, e *entity.ActionHistoryEntry) error {
	defer r.l.lock()()
	if err := r.s.fault(OpHistoryAppend); err != nil {
		return err
	}
	if _, err := (&statusRepo{r.base, r.kind}).get(e.TenantID, e.EntityID); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	v := *e
	v.Kind = r.kind
	st := r.st()
	st.history[r.kind] = append(st.history[r.kind], v)
	st.track(v.ID)
	return nil
}

func (r *historyRepo) List(_ context.Context, tenantID, entityID string, limit, offset int) ([]*entity.ActionHistoryEntry, error) {
	defer r.l.lock()()
	var out []entity.ActionHistoryEntry
	for _, e := range r.st().history[r.kind] {
		if e.TenantID == tenantID && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	sortOldest(r.st(), out, func(e entity.ActionHistoryEntry) (time.Time, string) { return e.CreatedAt, e.ID })
	return ptrs(page(out, limit, offset)), nil
}
