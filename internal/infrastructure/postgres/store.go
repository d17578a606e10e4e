package postgres

import (
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.Tx = (*Store)(nil)

// Store expone todos los repositorios sobre un mismo Querier. Sobre el pool sirve para
// lecturas sueltas; TxRunner construye uno atado a la transacción.
type Store struct {
	q Querier
}

// NewStore construye el Store. Pasar pool o tx (Querier).
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Tenants() repository.TenantRepository        { return NewTenantRepository(s.q) }
func (s *Store) Users() repository.UserRepository            { return NewUserRepository(s.q) }
func (s *Store) Roles() repository.RoleRepository            { return NewRoleRepository(s.q) }
func (s *Store) Parties() repository.PartyRepository         { return NewPartyRepository(s.q) }
func (s *Store) Catalog() repository.CatalogRepository       { return NewCatalogRepository(s.q) }
func (s *Store) Budgets() repository.BudgetRepository        { return NewBudgetRepository(s.q) }
func (s *Store) Services() repository.ServiceRepository      { return NewServiceRepository(s.q) }
func (s *Store) Invoices() repository.InvoiceRepository      { return NewInvoiceRepository(s.q) }
func (s *Store) Schedules() repository.ScheduleRepository    { return NewScheduleRepository(s.q) }
func (s *Store) AuditLogs() repository.AuditLogRepository    { return NewAuditLogRepository(s.q) }
func (s *Store) Activities() repository.ActivityRepository   { return NewActivityRepository(s.q) }
func (s *Store) Alerts() repository.AlertRepository          { return NewAlertRepository(s.q) }
func (s *Store) EmailQueue() repository.EmailQueueRepository { return NewEmailQueueRepository(s.q) }
func (s *Store) Contacts() repository.ContactLookup          { return NewContactLookup(s.q) }

func (s *Store) Statuses(kind lifecycle.Kind) repository.StatusRepository {
	return NewStatusRepository(s.q, kind)
}

func (s *Store) History(kind lifecycle.Kind) repository.ActionHistoryRepository {
	return NewHistoryRepository(s.q, kind)
}

// Confirmables devuelve nil para invoice y schedule.
func (s *Store) Confirmables(kind lifecycle.Kind) repository.ConfirmableRepository {
	if t, ok := statusTables[kind]; !ok || !t.confirmable {
		return nil
	}
	return NewStatusRepository(s.q, kind)
}

func (s *Store) Shares(kind lifecycle.ShareKind) repository.ShareRepository {
	return NewShareRepository(s.q, kind)
}

func (s *Store) ConfirmationTokens() repository.ConfirmationTokenRepository {
	return NewConfirmationTokenRepository(s.q)
}

func (s *Store) EmailTemplates() repository.EmailTemplateRepository {
	return NewEmailTemplateRepository(s.q)
}

func (s *Store) Autoresponders() repository.AutoresponderRepository {
	return NewAutoresponderRepository(s.q)
}

func (s *Store) Subscriptions() repository.SubscriptionRepository {
	return NewSubscriptionRepository(s.q)
}
