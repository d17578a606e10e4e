// Package memstore implementa los puertos de repository en memoria para tests de casos de
// uso. Respeta el filtro por tenant igual que PostgreSQL y hace rollback de una
// transacción restaurando una copia del estado.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// Operaciones en las que se puede inyectar un fallo con Store.Fail.
const (
	OpHistoryAppend   = "history.append"
	OpStatusSet       = "status.set"
	OpShareAccess     = "share.access"
	OpEmailLog        = "email.log"
	OpAuditAppend     = "audit.append"
	OpQueueEnqueue    = "queue.enqueue"
	OpTokenMarkUsed   = "token.consume"
	OpPaymentUpsert   = "payment.upsert"
	OpBudgetCreate    = "budget.create"
	OpTenantCreate    = "tenant.create"
	OpUserCreate      = "user.create"
	OpRoleGrantAll    = "role.grant_all"
	OpTemplateCreate  = "template.create"
	OpSubscriptionSet = "subscription.update"
)

var (
	_ repository.Tx       = (*Store)(nil)
	_ repository.TxRunner = (*Store)(nil)
)

// Store estado en memoria. Las llamadas fuera de Run toman el mutex por operación;
// Run lo mantiene durante toda la transacción (serializa como un FOR UPDATE global).
type Store struct {
	mu     sync.Mutex
	data   *state
	faults map[string]error
}

// New crea un Store vacío con el catálogo de permisos, unidades y planes sembrados.
func New() *Store {
	return &Store{data: seeded(), faults: map[string]error{}}
}

// Fail hace que la operación op devuelva err hasta que se llame Heal.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// Heal elimina todos los fallos inyectados.
func (s *Store) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]error{}
}

// fault se llama con el estado ya bloqueado.
func (s *Store) fault(op string) error {
	return s.faults[op]
}

// Run ejecuta fn en una transacción: si fn falla, el estado vuelve al de antes.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(&txView{s: s}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// lock bloquea el estado para una llamada fuera de transacción.
func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// txView expone los mismos repos sin volver a tomar el mutex (ya lo tiene Run).
type txView struct{ s *Store }

func (v *txView) lock() func() { return func() {} }

type locker interface{ lock() func() }

// base comparte estado y estrategia de bloqueo entre todos los repos.
type base struct {
	s *Store
	l locker
}

func (b base) st() *state { return b.s.data }

func (s *Store) base() base  { return base{s: s, l: s} }
func (v *txView) base() base { return base{s: v.s, l: v} }

func (s *Store) Tenants() repository.TenantRepository        { return &tenantRepo{s.base()} }
func (s *Store) Users() repository.UserRepository            { return &userRepo{s.base()} }
func (s *Store) Roles() repository.RoleRepository            { return &roleRepo{s.base()} }
func (s *Store) Parties() repository.PartyRepository         { return &partyRepo{s.base()} }
func (s *Store) Catalog() repository.CatalogRepository       { return &catalogRepo{s.base()} }
func (s *Store) Budgets() repository.BudgetRepository        { return &budgetRepo{s.base()} }
func (s *Store) Services() repository.ServiceRepository      { return &serviceRepo{s.base()} }
func (s *Store) Invoices() repository.InvoiceRepository      { return &invoiceRepo{s.base()} }
func (s *Store) Schedules() repository.ScheduleRepository    { return &scheduleRepo{s.base()} }
func (s *Store) AuditLogs() repository.AuditLogRepository    { return &auditRepo{s.base()} }
func (s *Store) Activities() repository.ActivityRepository   { return &activityRepo{s.base()} }
func (s *Store) Alerts() repository.AlertRepository          { return &alertRepo{s.base()} }
func (s *Store) EmailQueue() repository.EmailQueueRepository { return &queueRepo{s.base()} }
func (s *Store) Contacts() repository.ContactLookup          { return &contactLookup{s.base()} }

func (s *Store) Statuses(kind lifecycle.Kind) repository.StatusRepository {
	return &statusRepo{s.base(), kind}
}
func (s *Store) History(kind lifecycle.Kind) repository.ActionHistoryRepository {
	return &historyRepo{s.base(), kind}
}
func (s *Store) Confirmables(kind lifecycle.Kind) repository.ConfirmableRepository {
	return confirmable(s.base(), kind)
}
func (s *Store) Shares(kind lifecycle.ShareKind) repository.ShareRepository {
	return &shareRepo{s.base(), kind}
}
func (s *Store) ConfirmationTokens() repository.ConfirmationTokenRepository {
	return &tokenRepo{s.base()}
}
func (s *Store) EmailTemplates() repository.EmailTemplateRepository {
	return &templateRepo{s.base()}
}
func (s *Store) Autoresponders() repository.AutoresponderRepository {
	return &autoresponderRepo{s.base()}
}
func (s *Store) Subscriptions() repository.SubscriptionRepository {
	return &subscriptionRepo{s.base()}
}

func (v *txView) Tenants() repository.TenantRepository        { return &tenantRepo{v.base()} }
func (v *txView) Users() repository.UserRepository            { return &userRepo{v.base()} }
func (v *txView) Roles() repository.RoleRepository            { return &roleRepo{v.base()} }
func (v *txView) Parties() repository.PartyRepository         { return &partyRepo{v.base()} }
func (v *txView) Catalog() repository.CatalogRepository       { return &catalogRepo{v.base()} }
func (v *txView) Budgets() repository.BudgetRepository        { return &budgetRepo{v.base()} }
func (v *txView) Services() repository.ServiceRepository      { return &serviceRepo{v.base()} }
func (v *txView) Invoices() repository.InvoiceRepository      { return &invoiceRepo{v.base()} }
func (v *txView) Schedules() repository.ScheduleRepository    { return &scheduleRepo{v.base()} }
func (v *txView) AuditLogs() repository.AuditLogRepository    { return &auditRepo{v.base()} }
func (v *txView) Activities() repository.ActivityRepository   { return &activityRepo{v.base()} }
func (v *txView) Alerts() repository.AlertRepository          { return &alertRepo{v.base()} }
func (v *txView) EmailQueue() repository.EmailQueueRepository { return &queueRepo{v.base()} }
func (v *txView) Contacts() repository.ContactLookup          { return &contactLookup{v.base()} }

func (v *txView) Statuses(kind lifecycle.Kind) repository.StatusRepository {
	return &statusRepo{v.base(), kind}
}
func (v *txView) History(kind lifecycle.Kind) repository.ActionHistoryRepository {
	return &historyRepo{v.base(), kind}
}
func (v *txView) Confirmables(kind lifecycle.Kind) repository.ConfirmableRepository {
	return confirmable(v.base(), kind)
}
func (v *txView) Shares(kind lifecycle.ShareKind) repository.ShareRepository {
	return &shareRepo{v.base(), kind}
}
func (v *txView) ConfirmationTokens() repository.ConfirmationTokenRepository {
	return &tokenRepo{v.base()}
}
func (v *txView) EmailTemplates() repository.EmailTemplateRepository {
	return &templateRepo{v.base()}
}
func (v *txView) Autoresponders() repository.AutoresponderRepository {
	return &autoresponderRepo{v.base()}
}
func (v *txView) Subscriptions() repository.SubscriptionRepository {
	return &subscriptionRepo{v.base()}
}

func confirmable(b base, kind lifecycle.Kind) repository.ConfirmableRepository {
	if kind != lifecycle.KindBudget && kind != lifecycle.KindService {
		return nil
	}
	return &statusRepo{b, kind}
}

// Inspección directa para aserciones de tests.

// Budget devuelve una copia del presupuesto sin filtro de tenant.
func (s *Store) Budget(id string) (entity.Budget, bool) {
	defer s.lock()()
	b, ok := s.data.budgets[id]
	return cloneBudget(b), ok
}

// HistoryRows devuelve todas las filas de historial de un tipo.
func (s *Store) HistoryRows(kind lifecycle.Kind) []entity.ActionHistoryEntry {
	defer s.lock()()
	return append([]entity.ActionHistoryEntry(nil), s.data.history[kind]...)
}

// Emails devuelve una copia de la cola completa.
func (s *Store) Emails() []entity.EmailQueueItem {
	defer s.lock()()
	out := make([]entity.EmailQueueItem, 0, len(s.data.queue))
	for _, id := range s.data.queueOrder {
		out = append(out, s.data.queue[id])
	}
	return out
}

// EmailLogs devuelve los intentos de envío registrados.
func (s *Store) EmailLogs() []entity.EmailLog {
	defer s.lock()()
	return append([]entity.EmailLog(nil), s.data.emailLogs...)
}

// AlertRows devuelve todas las alertas.
func (s *Store) AlertRows() []entity.AlertHistoryEntry {
	defer s.lock()()
	return append([]entity.AlertHistoryEntry(nil), s.data.alerts...)
}

// AuditRows devuelve todas las entradas de auditoría.
func (s *Store) AuditRows() []entity.AuditLogEntry {
	defer s.lock()()
	return append([]entity.AuditLogEntry(nil), s.data.audit...)
}

// SeedTenant crea un tenant activo con un usuario activo y devuelve su alcance.
func (s *Store) SeedTenant(name, email string) tenancy.Scope {
	defer s.lock()()
	now := time.Now()
	t := entity.Tenant{ID: uuid.New().String(), Name: name, IsActive: true, CreatedAt: now, UpdatedAt: now}
	u := entity.User{
		ID: uuid.New().String(), TenantID: t.ID, Email: email, Name: name,
		Status: entity.UserActive, CreatedAt: now, UpdatedAt: now,
	}
	s.data.tenants[t.ID] = t
	s.data.track(t.ID)
	s.data.users[u.ID] = u
	s.data.track(u.ID)
	return tenancy.New(t.ID, u.ID)
}
