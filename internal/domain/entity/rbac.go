package entity

import "time"

// Permisos del catálogo global (deben coincidir con los sembrados en la migración).
const (
	PermTenantManage    = "tenant.manage"
	PermUsersManage     = "users.manage"
	PermPartiesManage   = "parties.manage"
	PermCatalogManage   = "catalog.manage"
	PermBudgetsManage   = "budgets.manage"
	PermServicesManage  = "services.manage"
	PermInvoicesManage  = "invoices.manage"
	PermSchedulesManage = "schedules.manage"
	PermStatusChange    = "status.change"
	PermSharesManage    = "shares.manage"
	PermEmailsManage    = "emails.manage"
	PermAuditRead       = "audit.read"
	PermBillingManage   = "billing.manage"
)

// RoleAdmin nombre del rol creado junto con cada tenant.
const RoleAdmin = "admin"

// Permission permiso del catálogo global.
type Permission struct {
	ID          string
	Name        string
	Description string
}

// Role rol de un tenant; agrupa permisos.
type Role struct {
	ID          string
	TenantID    string
	Name        string // único por tenant
	Description string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
