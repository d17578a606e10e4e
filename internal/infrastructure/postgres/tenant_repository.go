package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementación de TenantRepository (usable con pool o tx).
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

const tenantColumns = `id, name, is_active, created_at, updated_at`

// Create persiste un nuevo tenant.
func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO tenants (id, name, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.IsActive, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// GetByID obtiene un tenant por ID.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	return r.getOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

// GetByName obtiene un tenant por nombre.
func (r *TenantRepo) GetByName(ctx context.Context, name string) (*entity.Tenant, error) {
	return r.getOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE name = $1`, name)
}

func (r *TenantRepo) getOne(ctx context.Context, query string, arg string) (*entity.Tenant, error) {
	var t entity.Tenant
	err := r.q.QueryRow(ctx, query, arg).Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

// List lista tenants con paginación.
func (r *TenantRepo) List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error) {
	rows, err := r.q.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	var list []*entity.Tenant
	for rows.Next() {
		var t entity.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// SetActive activa o desactiva un tenant.
func (r *TenantRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE tenants SET is_active = $2, updated_at = $3 WHERE id = $1`, id, active, at)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el tenant; las FK con ON DELETE CASCADE arrastran todas sus filas.
func (r *TenantRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
