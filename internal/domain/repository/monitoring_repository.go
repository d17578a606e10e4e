package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// AuditFilter filtros opcionales para listar auditoría.
type AuditFilter struct {
	EntityType string
	EntityID   string
	Action     string
	Since      *time.Time
}

// AuditLogRepository tabla append-only audit_logs.
type AuditLogRepository interface {
	Append(ctx context.Context, e *entity.AuditLogEntry) error
	List(ctx context.Context, tenantID string, f AuditFilter, limit, offset int) ([]*entity.AuditLogEntry, error)
}

// ActivityRepository tabla append-only activity_logs.
type ActivityRepository interface {
	Append(ctx context.Context, e *entity.ActivityEntry) error
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.ActivityEntry, error)
}

// AlertRepository tabla append-only alert_history.
type AlertRepository interface {
	Append(ctx context.Context, e *entity.AlertHistoryEntry) error
	// ListForTenant devuelve solo las alertas del tenant.
	ListForTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AlertHistoryEntry, error)
	// ListSystem devuelve las alertas de sistema (tenant_id NULL).
	ListSystem(ctx context.Context, limit, offset int) ([]*entity.AlertHistoryEntry, error)
}
