package monitoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/monitoring"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
)

func TestRaise_SeparaAlertasDeTenantYDeSistema(t *testing.T) {
	store := memstore.New()
	a := store.SeedTenant("A", "a@a.co")
	b := store.SeedTenant("B", "b@b.co")
	uc := monitoring.NewMonitoringUseCase(store, zerolog.Nop())
	ctx := context.Background()

	uc.Raise(ctx, a.TenantID, entity.SeverityWarning, entity.CategoryCommunication, "Email no entregado", "x", map[string]any{"email_id": "1"})
	uc.Raise(ctx, "", entity.SeverityCritical, entity.CategorySystem, "Base de datos lenta", "y", nil)

	listA, err := uc.ListAlerts(ctx, a, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.False(t, listA[0].System)
	assert.Equal(t, "Email no entregado", listA[0].Title)
	assert.JSONEq(t, `{"email_id":"1"}`, string(listA[0].Metadata))

	listB, err := uc.ListAlerts(ctx, b, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, listB)

	system, err := uc.ListSystemAlerts(ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, system, 1)
	assert.True(t, system[0].System)
	assert.Equal(t, entity.SeverityCritical, system[0].Severity)
}

func TestListAudit_FiltraPorTenantYEntidad(t *testing.T) {
	store := memstore.New()
	a := store.SeedTenant("A", "a@a.co")
	b := store.SeedTenant("B", "b@b.co")
	uc := monitoring.NewMonitoringUseCase(store, zerolog.Nop())
	ctx := context.Background()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, e := range []*entity.AuditLogEntry{
		monitoring.NewAudit(a, monitoring.AuditInput{EntityType: "user", EntityID: "u1", Action: "user.created"}, at),
		monitoring.NewAudit(a, monitoring.AuditInput{EntityType: "role", EntityID: "r1", Action: "role.granted", Category: entity.CategorySecurity}, at.Add(time.Minute)),
		monitoring.NewAudit(b, monitoring.AuditInput{EntityType: "user", EntityID: "u2", Action: "user.created"}, at),
	} {
		require.NoError(t, store.AuditLogs().Append(ctx, e))
	}

	all, err := uc.ListAudit(ctx, a, dto.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "role.granted", all[0].Action, "más reciente primero")

	users, err := uc.ListAudit(ctx, a, dto.AuditQuery{EntityType: "user"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].EntityID)
	assert.Equal(t, entity.SeverityInfo, users[0].Severity)
	assert.Equal(t, entity.CategoryData, users[0].Category)
	require.NotNil(t, users[0].UserID)
	assert.Equal(t, a.UserID, *users[0].UserID)

	since := at.Add(30 * time.Second)
	recent, err := uc.ListAudit(ctx, a, dto.AuditQuery{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	_, err = uc.ListAudit(ctx, tenancy.Scope{}, dto.AuditQuery{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewAudit_EstadosOpcionales(t *testing.T) {
	scope := tenancy.Scope{TenantID: "t1"}
	e := monitoring.NewAudit(scope, monitoring.AuditInput{Action: "x", NewStatus: "active"}, time.Now())
	assert.Nil(t, e.OldStatus)
	require.NotNil(t, e.NewStatus)
	assert.Equal(t, "active", *e.NewStatus)
	assert.Nil(t, e.UserID)
	assert.Nil(t, e.Metadata)
}

func TestRaise_GuardaMetadataVaciaComoNil(t *testing.T) {
	store := memstore.New()
	uc := monitoring.NewMonitoringUseCase(store, zerolog.Nop())
	uc.Raise(context.Background(), "", entity.SeverityInfo, entity.CategorySystem, "t", "m", nil)

	rows := store.AlertRows()
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].TenantID)
	assert.Nil(t, rows[0].Metadata)
}
