package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas; las eliminadas lógicamente no son visibles.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, tenant_id, customer_id, service_id, code, status, issue_date, due_date, total, notes,
	created_by, created_at, updated_at, deleted_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := row.Scan(&inv.ID, &inv.TenantID, &inv.CustomerID, &inv.ServiceID, &inv.Code, &inv.Status,
		&inv.IssueDate, &inv.DueDate, &inv.Total, &inv.Notes, &inv.CreatedBy, &inv.CreatedAt,
		&inv.UpdatedAt, &inv.DeletedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create persiste una factura. Servicio de origen y cliente, si existen, deben ser del mismo tenant.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		WHERE ($4::uuid IS NULL OR EXISTS (SELECT 1 FROM services WHERE tenant_id = $2 AND id = $4))
			AND ($3::uuid IS NULL OR EXISTS (
				SELECT 1 FROM customers WHERE tenant_id = $2 AND id = $3 AND deleted_at IS NULL))`,
		inv.ID, inv.TenantID, inv.CustomerID, inv.ServiceID, inv.Code, inv.Status, inv.IssueDate, inv.DueDate,
		inv.Total, inv.Notes, inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt, inv.DeletedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una factura viva del tenant.
func (r *InvoiceRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`, tenantID, id)
}

// GetByCode obtiene una factura viva del tenant por código.
func (r *InvoiceRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices
		WHERE tenant_id = $1 AND code = $2 AND deleted_at IS NULL`, tenantID, code)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query, tenantID, arg string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, tenantID, arg))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// List lista facturas vivas del tenant; status vacío = todas.
func (r *InvoiceRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE tenant_id = $1 AND deleted_at IS NULL AND ($2 = '' OR status = $2)
		ORDER BY issue_date DESC LIMIT $3 OFFSET $4`, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// SoftDelete marca deleted_at; la fila se conserva por el histórico financiero.
func (r *InvoiceRepo) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET deleted_at = $3, updated_at = $3
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`, tenantID, id, at)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("soft delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
