package memstore

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// state guarda valores (no punteros): los repos copian al entrar y al salir, y nunca
// mutan un puntero apuntado, así que clonar los mapas basta para el rollback.
type state struct {
	seq   int
	order map[string]int

	tenants     map[string]entity.Tenant
	users       map[string]entity.User
	permissions []entity.Permission
	roles       map[string]entity.Role
	userRoles   map[string][]string

	parties    map[entity.PartyKind]map[string]entity.Party
	units      map[string]entity.Unit
	categories map[string]entity.Category
	products   map[string]entity.Product

	budgets   map[string]entity.Budget
	services  map[string]entity.Service
	invoices  map[string]entity.Invoice
	schedules map[string]entity.Schedule
	history   map[lifecycle.Kind][]entity.ActionHistoryEntry

	shares map[lifecycle.ShareKind]map[string]entity.Share
	tokens map[string]entity.ConfirmationToken

	audit    []entity.AuditLogEntry
	activity []entity.ActivityEntry
	alerts   []entity.AlertHistoryEntry

	templates      map[string]entity.EmailTemplate
	autoresponders map[string]entity.Autoresponder
	queue          map[string]entity.EmailQueueItem
	queueOrder     []string
	emailLogs      []entity.EmailLog

	plans         map[string]entity.Plan
	subscriptions map[string]entity.Subscription
	payments      map[string]entity.PaymentTransaction
}

func seeded() *state {
	st := &state{
		order:          map[string]int{},
		tenants:        map[string]entity.Tenant{},
		users:          map[string]entity.User{},
		roles:          map[string]entity.Role{},
		userRoles:      map[string][]string{},
		parties:        map[entity.PartyKind]map[string]entity.Party{entity.PartyCustomer: {}, entity.PartyProvider: {}},
		units:          map[string]entity.Unit{},
		categories:     map[string]entity.Category{},
		products:       map[string]entity.Product{},
		budgets:        map[string]entity.Budget{},
		services:       map[string]entity.Service{},
		invoices:       map[string]entity.Invoice{},
		schedules:      map[string]entity.Schedule{},
		history:        map[lifecycle.Kind][]entity.ActionHistoryEntry{},
		shares:         map[lifecycle.ShareKind]map[string]entity.Share{lifecycle.ShareBudget: {}, lifecycle.ShareInvoice: {}},
		tokens:         map[string]entity.ConfirmationToken{},
		templates:      map[string]entity.EmailTemplate{},
		autoresponders: map[string]entity.Autoresponder{},
		queue:          map[string]entity.EmailQueueItem{},
		plans:          map[string]entity.Plan{},
		subscriptions:  map[string]entity.Subscription{},
		payments:       map[string]entity.PaymentTransaction{},
	}
	for i, name := range []string{
		entity.PermAuditRead, entity.PermBillingManage, entity.PermBudgetsManage, entity.PermCatalogManage,
		entity.PermEmailsManage, entity.PermInvoicesManage, entity.PermPartiesManage, entity.PermSchedulesManage,
		entity.PermServicesManage, entity.PermSharesManage, entity.PermStatusChange, entity.PermTenantManage,
		entity.PermUsersManage,
	} {
		st.permissions = append(st.permissions, entity.Permission{ID: seedID(1, i+1), Name: name})
	}
	for i, u := range [][2]string{{"UN", "Unidad"}, {"HR", "Hora"}, {"KG", "Kilogramo"}} {
		st.units[seedID(2, i+1)] = entity.Unit{ID: seedID(2, i+1), Code: u[0], Name: u[1]}
	}
	for i, p := range []struct {
		code   string
		price  int64
		months int
	}{{"BASIC", 29900, 1}, {"PRO", 59900, 1}, {"ANNUAL", 599000, 12}} {
		id := seedID(7, i+1)
		st.plans[id] = entity.Plan{ID: id, Code: p.code, Name: p.code, Price: decimal.NewFromInt(p.price),
			Currency: "COP", IntervalMonths: p.months, IsActive: true}
	}
	return st
}

func seedID(group, n int) string {
	const hex = "0123456789abcdef"
	return "6a0c1d0e-000" + string(hex[group]) + "-4000-8000-0000000000" + string(hex[n/16]) + string(hex[n%16])
}

// track registra el orden de inserción para desempatar listados con el mismo created_at.
func (st *state) track(id string) {
	st.seq++
	st.order[id] = st.seq
}

func (st *state) clone() *state {
	c := *st
	c.order = maps.Clone(st.order)
	c.tenants = maps.Clone(st.tenants)
	c.users = maps.Clone(st.users)
	c.permissions = slices.Clone(st.permissions)
	c.roles = maps.Clone(st.roles)
	c.userRoles = make(map[string][]string, len(st.userRoles))
	for k, v := range st.userRoles {
		c.userRoles[k] = slices.Clone(v)
	}
	c.parties = make(map[entity.PartyKind]map[string]entity.Party, len(st.parties))
	for k, v := range st.parties {
		c.parties[k] = maps.Clone(v)
	}
	c.units = maps.Clone(st.units)
	c.categories = maps.Clone(st.categories)
	c.products = maps.Clone(st.products)
	c.budgets = maps.Clone(st.budgets)
	c.services = maps.Clone(st.services)
	c.invoices = maps.Clone(st.invoices)
	c.schedules = maps.Clone(st.schedules)
	c.history = make(map[lifecycle.Kind][]entity.ActionHistoryEntry, len(st.history))
	for k, v := range st.history {
		c.history[k] = slices.Clone(v)
	}
	c.shares = make(map[lifecycle.ShareKind]map[string]entity.Share, len(st.shares))
	for k, v := range st.shares {
		c.shares[k] = maps.Clone(v)
	}
	c.tokens = maps.Clone(st.tokens)
	c.audit = slices.Clone(st.audit)
	c.activity = slices.Clone(st.activity)
	c.alerts = slices.Clone(st.alerts)
	c.templates = maps.Clone(st.templates)
	c.autoresponders = maps.Clone(st.autoresponders)
	c.queue = maps.Clone(st.queue)
	c.queueOrder = slices.Clone(st.queueOrder)
	c.emailLogs = slices.Clone(st.emailLogs)
	c.plans = maps.Clone(st.plans)
	c.subscriptions = maps.Clone(st.subscriptions)
	c.payments = maps.Clone(st.payments)
	return &c
}

// sortNewest ordena por created_at descendente y, a igual instante, por inserción inversa.
func sortNewest[T any](st *state, xs []T, key func(T) (time.Time, string)) {
	slices.SortStableFunc(xs, func(a, b T) int {
		ta, ia := key(a)
		tb, ib := key(b)
		if c := tb.Compare(ta); c != 0 {
			return c
		}
		return st.order[ib] - st.order[ia]
	})
}

// sortOldest ordena por created_at ascendente y, a igual instante, por inserción.
func sortOldest[T any](st *state, xs []T, key func(T) (time.Time, string)) {
	slices.SortStableFunc(xs, func(a, b T) int {
		ta, ia := key(a)
		tb, ib := key(b)
		if c := ta.Compare(tb); c != 0 {
			return c
		}
		return st.order[ia] - st.order[ib]
	})
}

// page aplica LIMIT/OFFSET; limit <= 0 no limita.
func page[T any](xs []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(xs) {
		return nil
	}
	xs = xs[offset:]
	if limit > 0 && limit < len(xs) {
		xs = xs[:limit]
	}
	return xs
}

func ptrs[T any](xs []T) []*T {
	out := make([]*T, 0, len(xs))
	for i := range xs {
		v := xs[i]
		out = append(out, &v)
	}
	return out
}

func cloneBudget(b entity.Budget) entity.Budget {
	b.Items = slices.Clone(b.Items)
	return b
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func deleteWhere[K comparable, V any](m map[K]V, pred func(V) bool) {
	maps.DeleteFunc(m, func(_ K, v V) bool { return pred(v) })
}
