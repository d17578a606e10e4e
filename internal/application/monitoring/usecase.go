// Package monitoring reúne auditoría, feed de actividad y alertas. Las tres tablas son
// append-only: aquí solo se construyen entradas y se listan.
package monitoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// MonitoringUseCase consultas de auditoría/actividad y emisión de alertas.
type MonitoringUseCase struct {
	repos repository.Tx
	log   zerolog.Logger
	now   func() time.Time
}

// NewMonitoringUseCase construye el caso de uso.
func NewMonitoringUseCase(repos repository.Tx, log zerolog.Logger) *MonitoringUseCase {
	return &MonitoringUseCase{repos: repos, log: log, now: time.Now}
}

// ListAudit lista la auditoría del tenant con filtros opcionales.
func (uc *MonitoringUseCase) ListAudit(ctx context.Context, scope tenancy.Scope, q dto.AuditQuery) ([]dto.AuditLogResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	q.DefaultPage()
	list, err := uc.repos.AuditLogs().List(ctx, scope.TenantID, repository.AuditFilter{
		EntityType: q.EntityType,
		EntityID:   q.EntityID,
		Action:     q.Action,
		Since:      q.Since,
	}, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditLogResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.AuditLogResponse{
			ID: e.ID, EntityType: e.EntityType, EntityID: e.EntityID, UserID: e.UserID, Action: e.Action,
			OldStatus: e.OldStatus, NewStatus: e.NewStatus, Description: e.Description,
			Changes: e.Changes, Metadata: e.Metadata, IPAddress: e.IPAddress, UserAgent: e.UserAgent,
			Severity: e.Severity, Category: e.Category, CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

// ListActivity lista el feed de actividad del tenant (más reciente primero).
func (uc *MonitoringUseCase) ListActivity(ctx context.Context, scope tenancy.Scope, page dto.PageRequest) ([]dto.ActivityResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repos.Activities().List(ctx, scope.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.ActivityResponse{
			ID: e.ID, UserID: e.UserID, Type: e.Type, Description: e.Description,
			SubjectType: e.SubjectType, SubjectID: e.SubjectID, Metadata: e.Metadata, CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

// ListAlerts lista las alertas del tenant; nunca incluye las de sistema.
func (uc *MonitoringUseCase) ListAlerts(ctx context.Context, scope tenancy.Scope, page dto.PageRequest) ([]dto.AlertResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repos.Alerts().ListForTenant(ctx, scope.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toAlertResponses(list), nil
}

// ListSystemAlerts lista las alertas sin tenant (uso operativo, CLI).
func (uc *MonitoringUseCase) ListSystemAlerts(ctx context.Context, page dto.PageRequest) ([]dto.AlertResponse, error) {
	page.DefaultPage()
	list, err := uc.repos.Alerts().ListSystem(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toAlertResponses(list), nil
}

// Raise registra una alerta. tenantID vacío = alerta de sistema. Un fallo al guardar
// solo se registra en el log: una alerta nunca debe tumbar la operación que la origina.
func (uc *MonitoringUseCase) Raise(ctx context.Context, tenantID, severity, category, title, message string, metadata map[string]any) {
	a := NewAlert(tenantID, severity, category, title, message, metadata, uc.now())
	if err := uc.repos.Alerts().Append(ctx, a); err != nil {
		uc.log.Error().Err(err).Str("title", title).Msg("no se pudo registrar la alerta")
	}
}

func toAlertResponses(list []*entity.AlertHistoryEntry) []dto.AlertResponse {
	out := make([]dto.AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AlertResponse{
			ID: a.ID, System: a.TenantID == nil, Severity: a.Severity, Category: a.Category,
			Title: a.Title, Message: a.Message, Metadata: a.Metadata, CreatedAt: a.CreatedAt,
		})
	}
	return out
}

// NewAlert construye una entrada de alert_history.
func NewAlert(tenantID, severity, category, title, message string, metadata map[string]any, at time.Time) *entity.AlertHistoryEntry {
	a := &entity.AlertHistoryEntry{
		ID:        uuid.New().String(),
		Severity:  severity,
		Category:  category,
		Title:     title,
		Message:   message,
		Metadata:  marshal(metadata),
		CreatedAt: at,
	}
	if tenantID != "" {
		t := tenantID
		a.TenantID = &t
	}
	return a
}

// NewActivity construye una entrada del feed de actividad del actor del scope.
func NewActivity(scope tenancy.Scope, typ, subjectType, subjectID, description string, at time.Time) *entity.ActivityEntry {
	return &entity.ActivityEntry{
		ID:          uuid.New().String(),
		TenantID:    scope.TenantID,
		UserID:      scope.Actor(),
		Type:        typ,
		Description: description,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		CreatedAt:   at,
	}
}

// AuditInput datos de una entrada de auditoría.
type AuditInput struct {
	EntityType  string
	EntityID    string
	Action      string
	OldStatus   string
	NewStatus   string
	Description string
	Changes     map[string]any
	Metadata    map[string]any
	IPAddress   string
	UserAgent   string
	Severity    string
	Category    string
}

// NewAudit construye una entrada de audit_logs del actor del scope.
func NewAudit(scope tenancy.Scope, in AuditInput, at time.Time) *entity.AuditLogEntry {
	e := &entity.AuditLogEntry{
		ID:          uuid.New().String(),
		TenantID:    scope.TenantID,
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		UserID:      scope.Actor(),
		Action:      in.Action,
		Description: in.Description,
		Changes:     marshal(in.Changes),
		Metadata:    marshal(in.Metadata),
		IPAddress:   in.IPAddress,
		UserAgent:   in.UserAgent,
		Severity:    in.Severity,
		Category:    in.Category,
		CreatedAt:   at,
	}
	if e.Severity == "" {
		e.Severity = entity.SeverityInfo
	}
	if e.Category == "" {
		e.Category = entity.CategoryData
	}
	if in.OldStatus != "" {
		s := in.OldStatus
		e.OldStatus = &s
	}
	if in.NewStatus != "" {
		s := in.NewStatus
		e.NewStatus = &s
	}
	return e
}

func marshal(m map[string]any) json.RawMessage {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}
