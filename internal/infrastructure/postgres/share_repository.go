package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.ShareRepository = (*ShareRepo)(nil)

// ShareRepo enlaces públicos de presupuestos (budget_shares) o facturas (invoice_shares).
type ShareRepo struct {
	q    Querier
	kind lifecycle.ShareKind
	t    shareTable
}

// NewShareRepository construye el adaptador para un tipo de recurso.
func NewShareRepository(q Querier, kind lifecycle.ShareKind) *ShareRepo {
	return &ShareRepo{q: q, kind: kind, t: shareTables[kind]}
}

func (r *ShareRepo) columns() string {
	return `id, tenant_id, ` + r.t.fk + `, token, status, permissions, expires_at, access_count,
		last_accessed_at, responded_at, created_by, created_at, updated_at`
}

func (r *ShareRepo) scan(row pgx.Row) (*entity.Share, error) {
	s := entity.Share{Kind: r.kind}
	var perms []byte
	if err := row.Scan(&s.ID, &s.TenantID, &s.ResourceID, &s.Token, &s.Status, &perms, &s.ExpiresAt,
		&s.AccessCount, &s.LastAccessedAt, &s.RespondedAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &s.Permissions); err != nil {
			return nil, fmt.Errorf("decode share permissions: %w", err)
		}
	}
	return &s, nil
}

func (r *ShareRepo) ready() error {
	if r.t.table == "" {
		return fmt.Errorf("share repository: tipo de recurso desconocido %q", r.kind)
	}
	return nil
}

// Create persiste el enlace; el recurso debe existir en el tenant.
func (r *ShareRepo) Create(ctx context.Context, s *entity.Share) error {
	if err := r.ready(); err != nil {
		return err
	}
	perms, err := json.Marshal(s.Permissions)
	if err != nil {
		return fmt.Errorf("encode share permissions: %w", err)
	}
	resource := statusTables[r.kind.ResourceKind()]
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		WHERE EXISTS (SELECT 1 FROM %s WHERE tenant_id = $2 AND id = $3 AND %s)`,
		r.t.table, r.columns(), resource.table, resource.alive("")),
		s.ID, s.TenantID, s.ResourceID, s.Token, s.Status, perms, s.ExpiresAt, s.AccessCount,
		s.LastAccessedAt, s.RespondedAt, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert %s: %w", r.t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByTokenForUpdate busca por token en todo el sistema y bloquea la fila.
func (r *ShareRepo) GetByTokenForUpdate(ctx context.Context, token string) (*entity.Share, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	s, err := r.scan(r.q.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE token = $1 FOR UPDATE`, r.columns(), r.t.table), token))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s by token: %w", r.t.table, err)
	}
	return s, nil
}

// GetByID obtiene un enlace del tenant.
func (r *ShareRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Share, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	s, err := r.scan(r.q.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE tenant_id = $1 AND id = $2`, r.columns(), r.t.table), tenantID, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", r.t.table, err)
	}
	return s, nil
}

// ListByResource lista los enlaces de un recurso del tenant, más recientes primero.
func (r *ShareRepo) ListByResource(ctx context.Context, tenantID, resourceID string) ([]*entity.Share, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE tenant_id = $1 AND %s = $2 ORDER BY created_at DESC`,
		r.columns(), r.t.table, r.t.fk), tenantID, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.t.table, err)
	}
	defer rows.Close()
	var list []*entity.Share
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.table, err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// RegisterAccess incrementa access_count en uno y devuelve el valor nuevo.
func (r *ShareRepo) RegisterAccess(ctx context.Context, id string, at time.Time) (int, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var count int
	err := r.q.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET access_count = access_count + 1, last_accessed_at = $2, updated_at = $2
		WHERE id = $1 RETURNING access_count`, r.t.table), id, at).Scan(&count)
	if err != nil {
		if isNotFound(err) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("register %s access: %w", r.t.table, err)
	}
	return count, nil
}

// SetStatus cambia el estado del enlace (aprobado, rechazado, expirado).
func (r *ShareRepo) SetStatus(ctx context.Context, id string, status lifecycle.ShareStatus, respondedAt *time.Time, at time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET status = $2, responded_at = COALESCE($3, responded_at), updated_at = $4
		WHERE id = $1`, r.t.table), id, status, respondedAt, at)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update %s status: %w", r.t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteExpired elimina los enlaces caducados antes de before.
func (r *ShareRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= $1`, r.t.table), before)
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", r.t.table, err)
	}
	return tag.RowsAffected(), nil
}
