package confirmation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/confirmation"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// outbox guarda los mensajes encolados en memoria.
type outbox struct {
	mu   sync.Mutex
	msgs []ports.Message
	err  error
}

func (o *outbox) EnqueueMessage(_ context.Context, _ string, m ports.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.msgs = append(o.msgs, m)
	return nil
}

type fixture struct {
	store   *memstore.Store
	clock   *clock
	gate    *confirmation.Gate
	actions *confirmation.ActionUseCase
	budgets *commerce.BudgetUseCase
	mail    *outbox
	scope   tenancy.Scope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	c := &clock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	gate := confirmation.NewGate(store, store, confirmation.Settings{
		EmailVerificationTTL: 24 * time.Hour,
		PasswordResetTTL:     time.Hour,
		ActionTTL:            2 * time.Hour,
		PublicURL:            "https://app.test",
	}, zerolog.Nop()).WithClock(c.now)
	lc := commerce.NewLifecycle(nil, nil, nil, zerolog.Nop()).WithClock(c.now)
	mail := &outbox{}
	return &fixture{
		store:   store,
		clock:   c,
		gate:    gate,
		actions: confirmation.NewActionUseCase(gate, store, lc, mail, zerolog.Nop()),
		budgets: commerce.NewBudgetUseCase(store, store).WithClock(c.now),
		mail:    mail,
		scope:   store.SeedTenant("Confirmaciones", "ana@confirma.co"),
	}
}

func TestGate_IssueAsignaVigenciaPorTipo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	verify, err := f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmEmailVerification, nil)
	require.NoError(t, err)
	reset, err := f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmPasswordReset, nil)
	require.NoError(t, err)

	assert.Equal(t, f.clock.now().Add(24*time.Hour), verify.ExpiresAt)
	assert.Equal(t, f.clock.now().Add(time.Hour), reset.ExpiresAt)
	assert.NotEqual(t, verify.Token, reset.Token)
	assert.Nil(t, verify.ConsumedAt)
}

func TestGate_IssueTipoDesconocidoFalla(t *testing.T) {
	f := newFixture(t)
	_, err := f.gate.Issue(context.Background(), f.scope.TenantID, f.scope.UserID, "magic_link", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGate_ConsumeSoloUnaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, err := f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmEmailVerification, nil)
	require.NoError(t, err)

	got, err := f.gate.Consume(ctx, tok.Token, entity.ConfirmEmailVerification)
	require.NoError(t, err)
	require.NotNil(t, got.ConsumedAt)
	assert.Equal(t, f.clock.now(), *got.ConsumedAt)
	assert.Equal(t, f.scope.UserID, got.UserID)

	_, err = f.gate.Consume(ctx, tok.Token, entity.ConfirmEmailVerification)
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)
}

func TestGate_ConsumeVencidoFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, err := f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmPasswordReset, nil)
	require.NoError(t, err)

	f.clock.advance(time.Hour)
	_, err = f.gate.Consume(ctx, tok.Token, entity.ConfirmPasswordReset)
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)
}

func TestGate_ConsumeTipoDistintoOMalFormadoFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, err := f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmEmailVerification, nil)
	require.NoError(t, err)

	_, err = f.gate.Consume(ctx, tok.Token, entity.ConfirmPasswordReset)
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)
	_, err = f.gate.Consume(ctx, "no-es-un-token", entity.ConfirmEmailVerification)
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)

	// El rechazo por tipo no consume el token.
	_, err = f.gate.Consume(ctx, tok.Token, entity.ConfirmEmailVerification)
	assert.NoError(t, err)
}

func TestGate_FalloAlMarcarNoConsume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, err := f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmEmailVerification, nil)
	require.NoError(t, err)

	f.store.Fail(memstore.OpTokenMarkUsed, errors.New("disco lleno"))
	_, err = f.gate.Consume(ctx, tok.Token, entity.ConfirmEmailVerification)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidAccess)

	f.store.Heal()
	_, err = f.gate.Consume(ctx, tok.Token, entity.ConfirmEmailVerification)
	assert.NoError(t, err)
}

func TestGate_PruneExpiredBorraVencidosYConsumidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	used, err := f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmEmailVerification, nil)
	require.NoError(t, err)
	_, err = f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmPasswordReset, nil)
	require.NoError(t, err)
	_, err = f.gate.Issue(ctx, f.scope.TenantID, f.scope.UserID, entity.ConfirmEmailVerification, nil)
	require.NoError(t, err)
	_, err = f.gate.Consume(ctx, used.Token, entity.ConfirmEmailVerification)
	require.NoError(t, err)

	n, err := f.gate.PruneExpired(ctx, f.clock.now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func (f *fixture) draftBudget(t *testing.T, code string) string {
	t.Helper()
	b, err := f.budgets.Create(context.Background(), f.scope, dto.CreateBudgetRequest{Code: code, Title: "Remodelación"})
	require.NoError(t, err)
	return b.ID
}

func TestActions_SolicitarYConfirmarCambio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.draftBudget(t, "C-001")

	req, err := f.actions.RequestStatusChange(ctx, f.scope, lifecycle.KindBudget, id, dto.ChangeStatusRequest{Status: "sent", Comment: "listo"})
	require.NoError(t, err)
	assert.Equal(t, "sent", req.Status)
	assert.Equal(t, f.clock.now().Add(2*time.Hour), req.ExpiresAt)

	stored, _ := f.store.Budget(id)
	assert.Equal(t, lifecycle.BudgetDraft, stored.Status, "el estado no cambia hasta confirmar")
	require.NotNil(t, stored.ConfirmationTokenID)

	require.Len(t, f.mail.msgs, 1)
	msg := f.mail.msgs[0]
	assert.Equal(t, "ana@confirma.co", msg.To)
	assert.Contains(t, msg.Text, "https://app.test/public/confirm/")
	token := msg.Text[len(msg.Text)-44 : len(msg.Text)-1]

	f.clock.advance(30 * time.Minute)
	out, err := f.actions.Confirm(ctx, token, dto.ClientInfo{IP: "10.0.0.7"})
	require.NoError(t, err)
	assert.Equal(t, "draft", out.OldStatus)
	assert.Equal(t, "sent", out.NewStatus)

	stored, _ = f.store.Budget(id)
	assert.Equal(t, lifecycle.BudgetSent, stored.Status)
	assert.Nil(t, stored.ConfirmationTokenID)
	require.NotNil(t, stored.ConfirmedAt)

	rows := f.store.HistoryRows(lifecycle.KindBudget)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.ActionConfirmationRequested, rows[0].Action)
	assert.Equal(t, entity.ActionConfirmed, rows[1].Action)
	require.NotNil(t, rows[1].UserID)
	assert.Equal(t, f.scope.UserID, *rows[1].UserID)
	assert.Equal(t, "10.0.0.7", rows[1].IPAddress)

	_, err = f.actions.Confirm(ctx, token, dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)
}

func TestActions_SolicitudNuevaReemplazaLaAnterior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.draftBudget(t, "C-002")

	_, err := f.actions.RequestStatusChange(ctx, f.scope, lifecycle.KindBudget, id, dto.ChangeStatusRequest{Status: "sent"})
	require.NoError(t, err)
	_, err = f.actions.RequestStatusChange(ctx, f.scope, lifecycle.KindBudget, id, dto.ChangeStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	require.Len(t, f.mail.msgs, 2)

	first := f.mail.msgs[0].Text
	_, err = f.actions.Confirm(ctx, first[len(first)-44:len(first)-1], dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)

	second := f.mail.msgs[1].Text
	out, err := f.actions.Confirm(ctx, second[len(second)-44:len(second)-1], dto.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.NewStatus)
}

func TestActions_ConfirmarVencidoFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.draftBudget(t, "C-003")
	_, err := f.actions.RequestStatusChange(ctx, f.scope, lifecycle.KindBudget, id, dto.ChangeStatusRequest{Status: "sent"})
	require.NoError(t, err)

	f.clock.advance(3 * time.Hour)
	text := f.mail.msgs[0].Text
	_, err = f.actions.Confirm(ctx, text[len(text)-44:len(text)-1], dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)

	stored, _ := f.store.Budget(id)
	assert.Equal(t, lifecycle.BudgetDraft, stored.Status)
}

func TestActions_RequestValidaEntradas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.draftBudget(t, "C-004")

	_, err := f.actions.RequestStatusChange(ctx, f.scope, lifecycle.KindInvoice, id, dto.ChangeStatusRequest{Status: "paid"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.actions.RequestStatusChange(ctx, f.scope, lifecycle.KindBudget, id, dto.ChangeStatusRequest{Status: "draft"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.actions.RequestStatusChange(ctx, tenancy.Scope{TenantID: f.scope.TenantID}, lifecycle.KindBudget, id, dto.ChangeStatusRequest{Status: "sent"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	other := f.store.SeedTenant("Otro", "otro@otro.co")
	_, err = f.actions.RequestStatusChange(ctx, other, lifecycle.KindBudget, id, dto.ChangeStatusRequest{Status: "sent"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.mail.msgs)
}

func TestActions_FalloDeEmailNoAnulaLaSolicitud(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("cola caída")
	id := f.draftBudget(t, "C-005")

	_, err := f.actions.RequestStatusChange(context.Background(), f.scope, lifecycle.KindBudget, id, dto.ChangeStatusRequest{Status: "sent"})
	require.NoError(t, err)
	stored, _ := f.store.Budget(id)
	assert.NotNil(t, stored.ConfirmationTokenID)
}
