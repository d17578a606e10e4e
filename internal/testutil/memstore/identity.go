package memstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

type tenantRepo struct{ base }

func (r *tenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	defer r.l.lock()()
	if err := r.s.fault(OpTenantCreate); err != nil {
		return err
	}
	st := r.st()
	for _, x := range st.tenants {
		if x.Name == t.Name {
			return domain.ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	st.tenants[t.ID] = *t
	st.track(t.ID)
	return nil
}

func (r *tenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	defer r.l.lock()()
	t, ok := r.st().tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *tenantRepo) GetByName(_ context.Context, name string) (*entity.Tenant, error) {
	defer r.l.lock()()
	for _, t := range r.st().tenants {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *tenantRepo) List(_ context.Context, limit, offset int) ([]*entity.Tenant, error) {
	defer r.l.lock()()
	out := slices.Collect(maps.Values(r.st().tenants))
	slices.SortFunc(out, func(a, b entity.Tenant) int { return strings.Compare(a.Name, b.Name) })
	return ptrs(page(out, limit, offset)), nil
}

func (r *tenantRepo) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	defer r.l.lock()()
	t, ok := r.st().tenants[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.IsActive = active
	t.UpdatedAt = at
	r.st().tenants[id] = t
	return nil
}

// Delete replica el ON DELETE CASCADE de las tablas con tenant_id.
func (r *tenantRepo) Delete(_ context.Context, id string) error {
	defer r.l.lock()()
	st := r.st()
	if _, ok := st.tenants[id]; !ok {
		return domain.ErrNotFound
	}
	delete(st.tenants, id)
	deleteWhere(st.users, func(u entity.User) bool { return u.TenantID == id })
	deleteWhere(st.roles, func(x entity.Role) bool { return x.TenantID == id })
	for _, m := range st.parties {
		deleteWhere(m, func(p entity.Party) bool { return p.TenantID == id })
	}
	deleteWhere(st.units, func(u entity.Unit) bool { return u.TenantID != nil && *u.TenantID == id })
	deleteWhere(st.categories, func(c entity.Category) bool { return c.TenantID == id })
	deleteWhere(st.products, func(p entity.Product) bool { return p.TenantID == id })
	deleteWhere(st.budgets, func(b entity.Budget) bool { return b.TenantID == id })
	deleteWhere(st.services, func(s entity.Service) bool { return s.TenantID == id })
	deleteWhere(st.invoices, func(i entity.Invoice) bool { return i.TenantID == id })
	deleteWhere(st.schedules, func(s entity.Schedule) bool { return s.TenantID == id })
	for k, rows := range st.history {
		st.history[k] = slices.DeleteFunc(rows, func(e entity.ActionHistoryEntry) bool { return e.TenantID == id })
	}
	for _, m := range st.shares {
		deleteWhere(m, func(s entity.Share) bool { return s.TenantID == id })
	}
	deleteWhere(st.tokens, func(t entity.ConfirmationToken) bool { return t.TenantID == id })
	st.audit = slices.DeleteFunc(st.audit, func(e entity.AuditLogEntry) bool { return e.TenantID == id })
	st.activity = slices.DeleteFunc(st.activity, func(e entity.ActivityEntry) bool { return e.TenantID == id })
	st.alerts = slices.DeleteFunc(st.alerts, func(e entity.AlertHistoryEntry) bool {
		return e.TenantID != nil && *e.TenantID == id
	})
	deleteWhere(st.templates, func(t entity.EmailTemplate) bool { return t.TenantID == id })
	deleteWhere(st.autoresponders, func(a entity.Autoresponder) bool { return a.TenantID == id })
	deleteWhere(st.queue, func(q entity.EmailQueueItem) bool { return q.TenantID == id })
	st.queueOrder = slices.DeleteFunc(st.queueOrder, func(q string) bool { _, ok := st.queue[q]; return !ok })
	st.emailLogs = slices.DeleteFunc(st.emailLogs, func(l entity.EmailLog) bool { return l.TenantID == id })
	deleteWhere(st.subscriptions, func(s entity.Subscription) bool { return s.TenantID == id })
	deleteWhere(st.payments, func(p entity.PaymentTransaction) bool { return p.TenantID == id })
	return nil
}

type userRepo struct{ base }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	defer r.l.lock()()
	if err := r.s.fault(OpUserCreate); err != nil {
		return err
	}
	st := r.st()
	if _, ok := st.tenants[u.TenantID]; !ok {
		return domain.ErrNotFound
	}
	for _, x := range st.users {
		if x.TenantID == u.TenantID && x.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	st.users[u.ID] = *u
	st.track(u.ID)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, tenantID, id string) (*entity.User, error) {
	defer r.l.lock()()
	u, ok := r.st().users[id]
	if !ok || u.TenantID != tenantID {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, tenantID, email string) (*entity.User, error) {
	defer r.l.lock()()
	for _, u := range r.st().users {
		if u.TenantID == tenantID && u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) ([]*entity.User, error) {
	defer r.l.lock()()
	var out []entity.User
	for _, u := range r.st().users {
		if u.Email == email {
			out = append(out, u)
		}
	}
	sortOldest(r.st(), out, func(u entity.User) (time.Time, string) { return u.CreatedAt, u.ID })
	return ptrs(out), nil
}

func (r *userRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.User, error) {
	defer r.l.lock()()
	var out []entity.User
	for _, u := range r.st().users {
		if u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b entity.User) int { return strings.Compare(a.Email, b.Email) })
	return ptrs(page(out, limit, offset)), nil
}

func (r *userRepo) update(tenantID, id string, fn func(*entity.User)) error {
	u, ok := r.st().users[id]
	if !ok || u.TenantID != tenantID {
		return domain.ErrNotFound
	}
	fn(&u)
	r.st().users[id] = u
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, tenantID, id, hash string, at time.Time) error {
	defer r.l.lock()()
	return r.update(tenantID, id, func(u *entity.User) {
		u.PasswordHash = hash
		u.UpdatedAt = at
	})
}

func (r *userRepo) MarkEmailVerified(_ context.Context, tenantID, id string, at time.Time) error {
	defer r.l.lock()()
	return r.update(tenantID, id, func(u *entity.User) {
		u.EmailVerifiedAt = timePtr(at)
		u.UpdatedAt = at
	})
}

type roleRepo struct{ base }

func (r *roleRepo) ListPermissions(context.Context) ([]*entity.Permission, error) {
	defer r.l.lock()()
	out := slices.Clone(r.st().permissions)
	slices.SortFunc(out, func(a, b entity.Permission) int { return strings.Compare(a.Name, b.Name) })
	return ptrs(out), nil
}

func (r *roleRepo) CreateRole(_ context.Context, role *entity.Role) error {
	defer r.l.lock()()
	st := r.st()
	for _, x := range st.roles {
		if x.TenantID == role.TenantID && x.Name == role.Name {
			return domain.ErrDuplicate
		}
	}
	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	v := *role
	v.Permissions = nil
	st.roles[role.ID] = v
	st.track(role.ID)
	return nil
}

func (r *roleRepo) GetRole(_ context.Context, tenantID, id string) (*entity.Role, error) {
	defer r.l.lock()()
	x, ok := r.st().roles[id]
	if !ok || x.TenantID != tenantID {
		return nil, nil
	}
	x.Permissions = slices.Clone(x.Permissions)
	return &x, nil
}

func (r *roleRepo) GetRoleByName(_ context.Context, tenantID, name string) (*entity.Role, error) {
	defer r.l.lock()()
	for _, x := range r.st().roles {
		if x.TenantID == tenantID && x.Name == name {
			x.Permissions = slices.Clone(x.Permissions)
			return &x, nil
		}
	}
	return nil, nil
}

func (r *roleRepo) ListRoles(_ context.Context, tenantID string) ([]*entity.Role, error) {
	defer r.l.lock()()
	var out []entity.Role
	for _, x := range r.st().roles {
		if x.TenantID == tenantID {
			x.Permissions = slices.Clone(x.Permissions)
			out = append(out, x)
		}
	}
	slices.SortFunc(out, func(a, b entity.Role) int { return strings.Compare(a.Name, b.Name) })
	return ptrs(out), nil
}

func (r *roleRepo) grant(tenantID, roleID string, names ...string) error {
	st := r.st()
	x, ok := st.roles[roleID]
	if !ok || x.TenantID != tenantID {
		return domain.ErrNotFound
	}
	perms := slices.Clone(x.Permissions)
	for _, n := range names {
		if !slices.Contains(perms, n) {
			perms = append(perms, n)
		}
	}
	slices.Sort(perms)
	x.Permissions = perms
	st.roles[roleID] = x
	return nil
}

func (r *roleRepo) GrantPermission(_ context.Context, tenantID, roleID, permission string) error {
	defer r.l.lock()()
	if !slices.ContainsFunc(r.st().permissions, func(p entity.Permission) bool { return p.Name == permission }) {
		return domain.ErrNotFound
	}
	return r.grant(tenantID, roleID, permission)
}

func (r *roleRepo) GrantAll(_ context.Context, tenantID, roleID string) error {
	defer r.l.lock()()
	if err := r.s.fault(OpRoleGrantAll); err != nil {
		return err
	}
	names := make([]string, 0, len(r.st().permissions))
	for _, p := range r.st().permissions {
		names = append(names, p.Name)
	}
	return r.grant(tenantID, roleID, names...)
}

func (r *roleRepo) AssignRole(_ context.Context, tenantID, userID, roleID string) error {
	defer r.l.lock()()
	st := r.st()
	u, ok := st.users[userID]
	if !ok || u.TenantID != tenantID {
		return domain.ErrNotFound
	}
	x, ok := st.roles[roleID]
	if !ok || x.TenantID != tenantID {
		return domain.ErrNotFound
	}
	if !slices.Contains(st.userRoles[userID], roleID) {
		st.userRoles[userID] = append(slices.Clone(st.userRoles[userID]), roleID)
	}
	return nil
}

func (r *roleRepo) UserPermissions(_ context.Context, tenantID, userID string) ([]string, error) {
	defer r.l.lock()()
	st := r.st()
	var out []string
	for _, roleID := range st.userRoles[userID] {
		x, ok := st.roles[roleID]
		if !ok || x.TenantID != tenantID {
			continue
		}
		for _, p := range x.Permissions {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}
