package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.ActionHistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo tablas <kind>_action_history (append-only).
type HistoryRepo struct {
	q    Querier
	kind lifecycle.Kind
}

// NewHistoryRepository construye el adaptador para un tipo de entidad.
func NewHistoryRepository(q Querier, kind lifecycle.Kind) *HistoryRepo {
	return &HistoryRepo{q: q, kind: kind}
}

// Append inserta un registro inmutable.
func (r *HistoryRepo) Append(ctx context.Context, e *entity.ActionHistoryEntry) error {
	t, err := statusTableFor(r.kind)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, %s, user_id, action, old_status, new_status, description,
		                changes, metadata, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, t.history, t.fk),
		e.ID, e.TenantID, e.EntityID, e.UserID, e.Action, e.OldStatus, e.NewStatus, nullable(e.Description),
		jsonArg(e.Changes), jsonArg(e.Metadata), nullable(e.IPAddress), nullable(e.UserAgent), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert %s: %w", t.history, err)
	}
	return nil
}

// List devuelve el historial de una entidad del tenant, del más antiguo al más reciente.
func (r *HistoryRepo) List(ctx context.Context, tenantID, entityID string, limit, offset int) ([]*entity.ActionHistoryEntry, error) {
	t, err := statusTableFor(r.kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, fmt.Sprintf(`
		SELECT id, tenant_id, %s, user_id, action, old_status, new_status, description,
		       changes, metadata, ip_address, user_agent, created_at
		FROM %s WHERE tenant_id = $1 AND %s = $2
		ORDER BY created_at, id LIMIT $3 OFFSET $4`, t.fk, t.history, t.fk),
		tenantID, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.history, err)
	}
	defer rows.Close()
	var list []*entity.ActionHistoryEntry
	for rows.Next() {
		e := entity.ActionHistoryEntry{Kind: r.kind}
		var desc, ip, ua *string
		var changes, metadata []byte
		if err := rows.Scan(&e.ID, &e.TenantID, &e.EntityID, &e.UserID, &e.Action, &e.OldStatus, &e.NewStatus,
			&desc, &changes, &metadata, &ip, &ua, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.history, err)
		}
		e.Description, e.IPAddress, e.UserAgent = deref(desc), deref(ip), deref(ua)
		e.Changes, e.Metadata = changes, metadata
		list = append(list, &e)
	}
	return list, rows.Err()
}
