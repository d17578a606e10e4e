package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

// ServiceRepo órdenes de servicio.
type ServiceRepo struct {
	q Querier
}

// NewServiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

const serviceColumns = `id, tenant_id, budget_id, customer_id, code, description, status, total,
	confirmation_token_id, confirmed_at, created_by, created_at, updated_at`

func scanService(row pgx.Row) (*entity.Service, error) {
	var s entity.Service
	if err := row.Scan(&s.ID, &s.TenantID, &s.BudgetID, &s.CustomerID, &s.Code, &s.Description, &s.Status,
		&s.Total, &s.ConfirmationTokenID, &s.ConfirmedAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un servicio. Presupuesto de origen y cliente, si existen, deben ser del mismo tenant.
func (r *ServiceRepo) Create(ctx context.Context, s *entity.Service) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		WHERE ($3::uuid IS NULL OR EXISTS (SELECT 1 FROM budgets WHERE tenant_id = $2 AND id = $3))
			AND ($4::uuid IS NULL OR EXISTS (
				SELECT 1 FROM customers WHERE tenant_id = $2 AND id = $4 AND deleted_at IS NULL))`,
		s.ID, s.TenantID, s.BudgetID, s.CustomerID, s.Code, s.Description, s.Status, s.Total,
		s.ConfirmationTokenID, s.ConfirmedAt, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un servicio del tenant.
func (r *ServiceRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Service, error) {
	return r.getOne(ctx, `SELECT `+serviceColumns+` FROM services WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetByCode obtiene un servicio del tenant por código.
func (r *ServiceRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.Service, error) {
	return r.getOne(ctx, `SELECT `+serviceColumns+` FROM services WHERE tenant_id = $1 AND code = $2`, tenantID, code)
}

func (r *ServiceRepo) getOne(ctx context.Context, query, tenantID, arg string) (*entity.Service, error) {
	s, err := scanService(r.q.QueryRow(ctx, query, tenantID, arg))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return s, nil
}

// List lista servicios del tenant; status vacío = todos.
func (r *ServiceRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Service, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+serviceColumns+` FROM services
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()
	var list []*entity.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Delete elimina el servicio (cascada sobre agenda e historial).
func (r *ServiceRepo) Delete(ctx context.Context, tenantID, id string) error {
	return deleteScoped(ctx, r.q, "services", tenantID, id)
}
