package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo roles por tenant y catálogo global de permisos.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// ListPermissions devuelve el catálogo global de permisos.
func (r *RoleRepo) ListPermissions(ctx context.Context) ([]*entity.Permission, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// CreateRole persiste un rol (sin permisos; ver GrantPermission).
func (r *RoleRepo) CreateRole(ctx context.Context, role *entity.Role) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO roles (id, tenant_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		role.ID, role.TenantID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

const roleSelect = `
	SELECT r.id, r.tenant_id, r.name, r.description, r.created_at, r.updated_at,
	       COALESCE(array_agg(p.name ORDER BY p.name) FILTER (WHERE p.name IS NOT NULL), '{}')
	FROM roles r
	LEFT JOIN role_permissions rp ON rp.role_id = r.id
	LEFT JOIN permissions p ON p.id = rp.permission_id`

func scanRole(row pgx.Row) (*entity.Role, error) {
	var role entity.Role
	if err := row.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description,
		&role.CreatedAt, &role.UpdatedAt, &role.Permissions); err != nil {
		return nil, err
	}
	return &role, nil
}

// GetRole obtiene un rol del tenant con sus permisos.
func (r *RoleRepo) GetRole(ctx context.Context, tenantID, id string) (*entity.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx,
		roleSelect+` WHERE r.tenant_id = $1 AND r.id = $2 GROUP BY r.id`, tenantID, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// GetRoleByName obtiene un rol del tenant por nombre.
func (r *RoleRepo) GetRoleByName(ctx context.Context, tenantID, name string) (*entity.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx,
		roleSelect+` WHERE r.tenant_id = $1 AND r.name = $2 GROUP BY r.id`, tenantID, name))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role by name: %w", err)
	}
	return role, nil
}

// ListRoles lista los roles del tenant.
func (r *RoleRepo) ListRoles(ctx context.Context, tenantID string) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, roleSelect+` WHERE r.tenant_id = $1 GROUP BY r.id ORDER BY r.name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

// GrantPermission concede un permiso del catálogo a un rol del tenant (idempotente).
func (r *RoleRepo) GrantPermission(ctx context.Context, tenantID, roleID, permission string) error {
	var permID string
	err := r.q.QueryRow(ctx, `
		SELECT p.id FROM roles r, permissions p
		WHERE r.tenant_id = $1 AND r.id = $2 AND p.name = $3`,
		tenantID, roleID, permission).Scan(&permID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("resolve permission: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO role_permissions (tenant_id, role_id, permission_id) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, tenantID, roleID, permID)
	if err != nil {
		return fmt.Errorf("grant permission: %w", err)
	}
	return nil
}

// GrantAll concede todo el catálogo de permisos al rol.
func (r *RoleRepo) GrantAll(ctx context.Context, tenantID, roleID string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO role_permissions (tenant_id, role_id, permission_id)
		SELECT r.tenant_id, r.id, p.id FROM roles r CROSS JOIN permissions p
		WHERE r.tenant_id = $1 AND r.id = $2
		ON CONFLICT DO NOTHING`, tenantID, roleID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("grant all permissions: %w", err)
	}
	return nil
}

// AssignRole asigna un rol a un usuario; ambos deben ser del tenant.
func (r *RoleRepo) AssignRole(ctx context.Context, tenantID, userID, roleID string) error {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users u JOIN roles r ON r.tenant_id = u.tenant_id
			WHERE u.tenant_id = $1 AND u.id = $2 AND r.id = $3)`,
		tenantID, userID, roleID).Scan(&ok)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("check role assignment: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO user_roles (tenant_id, user_id, role_id) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, tenantID, userID, roleID)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// UserPermissions devuelve los permisos efectivos del usuario (unión de sus roles).
func (r *RoleRepo) UserPermissions(ctx context.Context, tenantID, userID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.tenant_id = $1 AND ur.user_id = $2
		ORDER BY p.name`, tenantID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("user permissions: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
