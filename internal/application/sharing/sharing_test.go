package sharing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/sharing"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
)

// clock reloj manipulable por los tests.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock { return &clock{t: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)} }

type fixture struct {
	store   *memstore.Store
	clock   *clock
	budgets *commerce.BudgetUseCase
	status  *commerce.StatusUseCase
	shares  *sharing.ShareUseCase
}

func newFixture() *fixture {
	store := memstore.New()
	c := newClock()
	lc := commerce.NewLifecycle(nil, nil, nil, zerolog.Nop()).WithClock(c.now)
	return &fixture{
		store:   store,
		clock:   c,
		budgets: commerce.NewBudgetUseCase(store, store).WithClock(c.now),
		status:  commerce.NewStatusUseCase(store, store, lc),
		shares: sharing.NewShareUseCase(store, store, lc, nil, sharing.Settings{
			DefaultTTL: 24 * time.Hour,
			MaxTTL:     7 * 24 * time.Hour,
			PublicURL:  "https://app.test",
		}, zerolog.Nop()).WithClock(c.now),
	}
}

func TestEscenarioB001_DosTenantsTransicionYEnlace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	t1 := f.store.SeedTenant("T1", "admin@t1.co")
	t2 := f.store.SeedTenant("T2", "admin@t2.co")

	b1, err := f.budgets.Create(ctx, t1, dto.CreateBudgetRequest{Code: "B-001", Title: "Obra T1"})
	require.NoError(t, err)
	b2, err := f.budgets.Create(ctx, t2, dto.CreateBudgetRequest{Code: "B-001", Title: "Obra T2"})
	require.NoError(t, err)
	assert.Equal(t, "draft", b1.Status)
	assert.Equal(t, "draft", b2.Status)

	got1, err := f.budgets.GetByCode(ctx, t1, "B-001")
	require.NoError(t, err)
	got2, err := f.budgets.GetByCode(ctx, t2, "B-001")
	require.NoError(t, err)
	require.NotNil(t, got1)
	require.NotNil(t, got2)
	assert.Equal(t, b1.ID, got1.ID)
	assert.Equal(t, b2.ID, got2.ID)

	_, err = f.status.ChangeStatus(ctx, t1, lifecycle.KindBudget, b1.ID, dto.ChangeStatusRequest{Status: "sent"}, dto.ClientInfo{})
	require.NoError(t, err)
	stored, _ := f.store.Budget(b1.ID)
	assert.Equal(t, lifecycle.BudgetSent, stored.Status)
	rows := f.store.HistoryRows(lifecycle.KindBudget)
	require.Len(t, rows, 1)
	assert.Equal(t, "draft", *rows[0].OldStatus)
	assert.Equal(t, "sent", *rows[0].NewStatus)
	other, _ := f.store.Budget(b2.ID)
	assert.Equal(t, lifecycle.BudgetDraft, other.Status)

	share, err := f.shares.Issue(ctx, t1, lifecycle.ShareBudget, b1.ID, dto.IssueShareRequest{ExpiresInHours: 24})
	require.NoError(t, err)
	assert.Equal(t, f.clock.now().Add(24*time.Hour), share.ExpiresAt)
	assert.Len(t, share.Token, 43)

	view, err := f.shares.Access(ctx, lifecycle.ShareBudget, share.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, view.AccessCount)
	require.NotNil(t, view.Budget)
	assert.Equal(t, "Obra T1", view.Budget.Title)

	f.clock.advance(24*time.Hour + time.Second)
	_, err = f.shares.Access(ctx, lifecycle.ShareBudget, share.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)
}

func TestAccess_IncrementaContadorYUltimoAcceso(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	scope := f.store.SeedTenant("Contador", "admin@contador.co")
	b, err := f.budgets.Create(ctx, scope, dto.CreateBudgetRequest{Code: "B-002", Title: "Cotización",
		Items: []dto.BudgetItemInput{{Description: "Pintura", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(1000)}}})
	require.NoError(t, err)
	share, err := f.shares.Issue(ctx, scope, lifecycle.ShareBudget, b.ID, dto.IssueShareRequest{})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		f.clock.advance(time.Minute)
		view, err := f.shares.Access(ctx, lifecycle.ShareBudget, share.Token)
		require.NoError(t, err)
		assert.Equal(t, i, view.AccessCount)
	}

	list, err := f.shares.List(ctx, scope, lifecycle.ShareBudget, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].AccessCount)
	require.NotNil(t, list[0].LastAccessedAt)
	assert.Equal(t, f.clock.now(), *list[0].LastAccessedAt)
}

func TestAccess_FalloAlRegistrarNoDevuelveVista(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	scope := f.store.SeedTenant("Fallo", "admin@fallo.co")
	b, err := f.budgets.Create(ctx, scope, dto.CreateBudgetRequest{Code: "B-003", Title: "x"})
	require.NoError(t, err)
	share, err := f.shares.Issue(ctx, scope, lifecycle.ShareBudget, b.ID, dto.IssueShareRequest{})
	require.NoError(t, err)

	f.store.Fail(memstore.OpShareAccess, errors.New("timeout"))
	_, err = f.shares.Access(ctx, lifecycle.ShareBudget, share.Token)
	require.Error(t, err)

	f.store.Heal()
	view, err := f.shares.Access(ctx, lifecycle.ShareBudget, share.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, view.AccessCount)
}

func TestAccess_TokenDeOtroTipoEsInvalido(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	scope := f.store.SeedTenant("Tipos", "admin@tipos.co")
	b, err := f.budgets.Create(ctx, scope, dto.CreateBudgetRequest{Code: "B-004", Title: "x"})
	require.NoError(t, err)
	share, err := f.shares.Issue(ctx, scope, lifecycle.ShareBudget, b.ID, dto.IssueShareRequest{})
	require.NoError(t, err)

	_, err = f.shares.Access(ctx, lifecycle.ShareInvoice, share.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)
	_, err = f.shares.Access(ctx, lifecycle.ShareBudget, "corto")
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)
}

func TestIssue_ValidaVigenciaYPermisos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	scope := f.store.SeedTenant("Reglas", "admin@reglas.co")
	b, err := f.budgets.Create(ctx, scope, dto.CreateBudgetRequest{Code: "B-005", Title: "x"})
	require.NoError(t, err)

	_, err = f.shares.Issue(ctx, scope, lifecycle.ShareBudget, b.ID, dto.IssueShareRequest{ExpiresInHours: 24 * 30})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.shares.Issue(ctx, scope, lifecycle.ShareInvoice, b.ID, dto.IssueShareRequest{Permissions: []string{"approve"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRespond_ApruebaUnaSolaVez(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	scope := f.store.SeedTenant("Respuesta", "admin@respuesta.co")
	b, err := f.budgets.Create(ctx, scope, dto.CreateBudgetRequest{Code: "B-006", Title: "x"})
	require.NoError(t, err)
	_, err = f.status.ChangeStatus(ctx, scope, lifecycle.KindBudget, b.ID, dto.ChangeStatusRequest{Status: "sent"}, dto.ClientInfo{})
	require.NoError(t, err)
	share, err := f.shares.Issue(ctx, scope, lifecycle.ShareBudget, b.ID, dto.IssueShareRequest{Permissions: []string{"view", "approve"}})
	require.NoError(t, err)

	_, err = f.shares.Respond(ctx, share.Token, false, dto.RespondShareRequest{}, dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidAccess, "sin permiso reject")

	out, err := f.shares.Respond(ctx, share.Token, true, dto.RespondShareRequest{Comment: "ok"}, dto.ClientInfo{IP: "1.2.3.4"})
	require.NoError(t, err)
	assert.Equal(t, "sent", out.OldStatus)
	assert.Equal(t, "approved", out.NewStatus)

	rows := f.store.HistoryRows(lifecycle.KindBudget)
	last := rows[len(rows)-1]
	assert.Equal(t, entity.ActionShareResponse, last.Action)
	assert.Nil(t, last.UserID)
	assert.Equal(t, "1.2.3.4", last.IPAddress)

	_, err = f.shares.Respond(ctx, share.Token, true, dto.RespondShareRequest{}, dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// El enlace respondido sigue permitiendo ver el presupuesto.
	view, err := f.shares.Access(ctx, lifecycle.ShareBudget, share.Token)
	require.NoError(t, err)
	assert.Equal(t, string(lifecycle.ShareApproved), view.ShareStatus)
}

func TestRespond_FalloDeHistorialNoCambiaNada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	scope := f.store.SeedTenant("Atomico", "admin@atomico.co")
	b, err := f.budgets.Create(ctx, scope, dto.CreateBudgetRequest{Code: "B-007", Title: "x"})
	require.NoError(t, err)
	share, err := f.shares.Issue(ctx, scope, lifecycle.ShareBudget, b.ID, dto.IssueShareRequest{Permissions: []string{"view", "reject"}})
	require.NoError(t, err)

	f.store.Fail(memstore.OpHistoryAppend, errors.New("fallo"))
	_, err = f.shares.Respond(ctx, share.Token, false, dto.RespondShareRequest{}, dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	f.store.Heal()

	stored, _ := f.store.Budget(b.ID)
	assert.Equal(t, lifecycle.BudgetDraft, stored.Status)
	list, err := f.shares.List(ctx, scope, lifecycle.ShareBudget, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(lifecycle.ShareActive), list[0].Status)
}

func TestRevokeYPrune(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	scope := f.store.SeedTenant("Revocar", "admin@revocar.co")
	other := f.store.SeedTenant("Ajeno", "admin@ajeno.co")
	b, err := f.budgets.Create(ctx, scope, dto.CreateBudgetRequest{Code: "B-008", Title: "x"})
	require.NoError(t, err)
	share, err := f.shares.Issue(ctx, scope, lifecycle.ShareBudget, b.ID, dto.IssueShareRequest{})
	require.NoError(t, err)

	err = f.shares.Revoke(ctx, other, lifecycle.ShareBudget, share.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.shares.Revoke(ctx, scope, lifecycle.ShareBudget, share.ID))
	_, err = f.shares.Access(ctx, lifecycle.ShareBudget, share.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)

	n, err := f.shares.PruneExpired(ctx, f.clock.now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
