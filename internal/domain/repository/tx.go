package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// Tx agrupa los repositorios atados a una misma conexión o transacción.
// La implementación sobre el pool sirve para lecturas; TxRunner entrega una atada a la tx.
type Tx interface {
	Tenants() TenantRepository
	Users() UserRepository
	Roles() RoleRepository
	Parties() PartyRepository
	Catalog() CatalogRepository
	Budgets() BudgetRepository
	Services() ServiceRepository
	Invoices() InvoiceRepository
	Schedules() ScheduleRepository
	Statuses(kind lifecycle.Kind) StatusRepository
	History(kind lifecycle.Kind) ActionHistoryRepository
	// Confirmables devuelve nil para los kinds que no admiten confirmación (invoice, schedule).
	Confirmables(kind lifecycle.Kind) ConfirmableRepository
	Shares(kind lifecycle.ShareKind) ShareRepository
	ConfirmationTokens() ConfirmationTokenRepository
	AuditLogs() AuditLogRepository
	Activities() ActivityRepository
	Alerts() AlertRepository
	EmailTemplates() EmailTemplateRepository
	Autoresponders() AutoresponderRepository
	EmailQueue() EmailQueueRepository
	Subscriptions() SubscriptionRepository
	Contacts() ContactLookup
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback si no.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}
