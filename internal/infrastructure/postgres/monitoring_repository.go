package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.AuditLogRepository = (*AuditLogRepo)(nil)
	_ repository.ActivityRepository = (*ActivityRepo)(nil)
	_ repository.AlertRepository    = (*AlertRepo)(nil)
)

// AuditLogRepo tabla audit_logs.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Append inserta una entrada de auditoría.
func (r *AuditLogRepo) Append(ctx context.Context, e *entity.AuditLogEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, tenant_id, entity_type, entity_id, user_id, action, old_status, new_status,
		                        description, changes, metadata, ip_address, user_agent, severity, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		e.ID, e.TenantID, e.EntityType, e.EntityID, e.UserID, e.Action, e.OldStatus, e.NewStatus,
		nullable(e.Description), jsonArg(e.Changes), jsonArg(e.Metadata), nullable(e.IPAddress),
		nullable(e.UserAgent), e.Severity, e.Category, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List lista la auditoría del tenant, más reciente primero, con filtros opcionales.
func (r *AuditLogRepo) List(ctx context.Context, tenantID string, f repository.AuditFilter, limit, offset int) ([]*entity.AuditLogEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, entity_type, entity_id, user_id, action, old_status, new_status,
		       description, changes, metadata, ip_address, user_agent, severity, category, created_at
		FROM audit_logs
		WHERE tenant_id = $1
		  AND ($2 = '' OR entity_type = $2)
		  AND ($3 = '' OR entity_id = $3)
		  AND ($4 = '' OR action = $4)
		  AND ($5::timestamptz IS NULL OR created_at >= $5)
		ORDER BY created_at DESC, id LIMIT $6 OFFSET $7`,
		tenantID, f.EntityType, f.EntityID, f.Action, f.Since, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLogEntry
	for rows.Next() {
		var e entity.AuditLogEntry
		var desc, ip, ua *string
		var changes, metadata []byte
		if err := rows.Scan(&e.ID, &e.TenantID, &e.EntityType, &e.EntityID, &e.UserID, &e.Action,
			&e.OldStatus, &e.NewStatus, &desc, &changes, &metadata, &ip, &ua, &e.Severity, &e.Category,
			&e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Description, e.IPAddress, e.UserAgent = deref(desc), deref(ip), deref(ua)
		e.Changes, e.Metadata = changes, metadata
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ActivityRepo tabla activity_logs.
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

// Append inserta un evento del feed.
func (r *ActivityRepo) Append(ctx context.Context, e *entity.ActivityEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO activity_logs (id, tenant_id, user_id, type, description, subject_type, subject_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.TenantID, e.UserID, e.Type, e.Description, e.SubjectType, e.SubjectID, jsonArg(e.Metadata), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List lista el feed del tenant, más reciente primero.
func (r *ActivityRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.ActivityEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, user_id, type, description, subject_type, subject_id, metadata, created_at
		FROM activity_logs WHERE tenant_id = $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()
	var list []*entity.ActivityEntry
	for rows.Next() {
		var e entity.ActivityEntry
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.Type, &e.Description, &e.SubjectType,
			&e.SubjectID, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.Metadata = metadata
		list = append(list, &e)
	}
	return list, rows.Err()
}

// AlertRepo tabla alert_history.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// Append inserta una alerta (TenantID nil = de sistema).
func (r *AlertRepo) Append(ctx context.Context, e *entity.AlertHistoryEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO alert_history (id, tenant_id, severity, category, title, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.TenantID, e.Severity, e.Category, e.Title, e.Message, jsonArg(e.Metadata), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// ListForTenant lista las alertas del tenant.
func (r *AlertRepo) ListForTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AlertHistoryEntry, error) {
	return r.list(ctx, `WHERE tenant_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, tenantID, limit, offset)
}

// ListSystem lista las alertas sin tenant.
func (r *AlertRepo) ListSystem(ctx context.Context, limit, offset int) ([]*entity.AlertHistoryEntry, error) {
	return r.list(ctx, `WHERE tenant_id IS NULL ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *AlertRepo) list(ctx context.Context, where string, args ...any) ([]*entity.AlertHistoryEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, severity, category, title, message, metadata, created_at
		FROM alert_history `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	var list []*entity.AlertHistoryEntry
	for rows.Next() {
		var e entity.AlertHistoryEntry
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Severity, &e.Category, &e.Title, &e.Message,
			&metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		e.Metadata = metadata
		list = append(list, &e)
	}
	return list, rows.Err()
}
