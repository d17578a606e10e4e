package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// TenantRepository puerto de persistencia para Tenant (raíz, no tiene alcance).
type TenantRepository interface {
	Create(ctx context.Context, t *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	GetByName(ctx context.Context, name string) (*entity.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error)
	// SetActive devuelve domain.ErrNotFound si el tenant no existe.
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	// Delete elimina el tenant y, en cascada, todas sus filas.
	Delete(ctx context.Context, id string) error
}

// UserRepository puerto de persistencia para User. Todo acceso va filtrado por tenant,
// salvo FindByEmail que usa el login antes de conocer el tenant.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*entity.User, error)
	// FindByEmail devuelve los usuarios con ese email en cualquier tenant.
	FindByEmail(ctx context.Context, email string) ([]*entity.User, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error)
	UpdatePassword(ctx context.Context, tenantID, id, hash string, at time.Time) error
	MarkEmailVerified(ctx context.Context, tenantID, id string, at time.Time) error
}

// RoleRepository puerto de RBAC: catálogo global de permisos y roles por tenant.
type RoleRepository interface {
	ListPermissions(ctx context.Context) ([]*entity.Permission, error)
	CreateRole(ctx context.Context, r *entity.Role) error
	GetRole(ctx context.Context, tenantID, id string) (*entity.Role, error)
	GetRoleByName(ctx context.Context, tenantID, name string) (*entity.Role, error)
	ListRoles(ctx context.Context, tenantID string) ([]*entity.Role, error)
	// GrantPermission devuelve domain.ErrNotFound si el rol no es del tenant o el permiso no existe.
	GrantPermission(ctx context.Context, tenantID, roleID, permission string) error
	GrantAll(ctx context.Context, tenantID, roleID string) error
	// AssignRole devuelve domain.ErrNotFound si el usuario o el rol no son del tenant.
	AssignRole(ctx context.Context, tenantID, userID, roleID string) error
	UserPermissions(ctx context.Context, tenantID, userID string) ([]string, error)
}
