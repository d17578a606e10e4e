package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.BudgetRepository = (*BudgetRepo)(nil)

// BudgetRepo presupuestos e ítems.
type BudgetRepo struct {
	q Querier
}

// NewBudgetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBudgetRepository(q Querier) *BudgetRepo {
	return &BudgetRepo{q: q}
}

const budgetColumns = `id, tenant_id, customer_id, code, title, description, status, total, valid_until,
	confirmation_token_id, confirmed_at, created_by, created_at, updated_at`

func scanBudget(row pgx.Row) (*entity.Budget, error) {
	var b entity.Budget
	if err := row.Scan(&b.ID, &b.TenantID, &b.CustomerID, &b.Code, &b.Title, &b.Description, &b.Status,
		&b.Total, &b.ValidUntil, &b.ConfirmationTokenID, &b.ConfirmedAt, &b.CreatedBy,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persiste la cabecera y envía los ítems en un único batch.
// Usar dentro de una transacción para que cabecera e ítems sean atómicos.
// Cliente y productos referenciados deben ser del mismo tenant; si no, ErrNotFound.
func (r *BudgetRepo) Create(ctx context.Context, b *entity.Budget) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO budgets (`+budgetColumns+`)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		WHERE $3::uuid IS NULL OR EXISTS (
			SELECT 1 FROM customers WHERE tenant_id = $2 AND id = $3 AND deleted_at IS NULL)`,
		b.ID, b.TenantID, b.CustomerID, b.Code, b.Title, b.Description, b.Status, b.Total, b.ValidUntil,
		b.ConfirmationTokenID, b.ConfirmedAt, b.CreatedBy, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if len(b.Items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, it := range b.Items {
		batch.Queue(`
			INSERT INTO budget_items (id, tenant_id, budget_id, product_id, position, description, quantity, unit_price, total)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
			WHERE $4::uuid IS NULL OR EXISTS (SELECT 1 FROM products WHERE tenant_id = $2 AND id = $4)`,
			it.ID, b.TenantID, b.ID, it.ProductID, i, it.Description, it.Quantity, it.UnitPrice, it.Total)
	}
	br := r.q.SendBatch(ctx, batch)
	for range b.Items {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			if isForeignKeyViolation(err) {
				return domain.ErrInvalidInput
			}
			return fmt.Errorf("insert budget item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			_ = br.Close()
			return domain.ErrNotFound
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert budget items: %w", err)
	}
	return nil
}

// GetByID obtiene un presupuesto del tenant con sus ítems.
func (r *BudgetRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Budget, error) {
	return r.getOne(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetByCode obtiene un presupuesto del tenant por código de negocio.
func (r *BudgetRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.Budget, error) {
	return r.getOne(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE tenant_id = $1 AND code = $2`, tenantID, code)
}

func (r *BudgetRepo) getOne(ctx context.Context, query, tenantID, arg string) (*entity.Budget, error) {
	b, err := scanBudget(r.q.QueryRow(ctx, query, tenantID, arg))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}
	items, err := r.items(ctx, b.TenantID, b.ID)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return b, nil
}

func (r *BudgetRepo) items(ctx context.Context, tenantID, budgetID string) ([]entity.BudgetItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, budget_id, product_id, description, quantity, unit_price, total
		FROM budget_items WHERE tenant_id = $1 AND budget_id = $2 ORDER BY position`, tenantID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	defer rows.Close()
	var items []entity.BudgetItem
	for rows.Next() {
		var it entity.BudgetItem
		if err := rows.Scan(&it.ID, &it.BudgetID, &it.ProductID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, fmt.Errorf("scan budget item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List lista presupuestos del tenant (sin ítems); status vacío = todos.
func (r *BudgetRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Budget, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Delete elimina el presupuesto; ítems, historial y enlaces caen en cascada.
func (r *BudgetRepo) Delete(ctx context.Context, tenantID, id string) error {
	return deleteScoped(ctx, r.q, "budgets", tenantID, id)
}

func deleteScoped(ctx context.Context, q Querier, table, tenantID, id string) error {
	tag, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1 AND id = $2`, table), tenantID, id)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
