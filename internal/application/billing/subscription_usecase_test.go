package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/billing"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setup(t *testing.T) (*memstore.Store, *billing.SubscriptionUseCase, *clock, tenancy.Scope) {
	t.Helper()
	store := memstore.New()
	c := &clock{t: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)}
	uc := billing.NewSubscriptionUseCase(store, store, nil, zerolog.Nop()).WithClock(c.now)
	return store, uc, c, store.SeedTenant("Pagos", "admin@pagos.co")
}

func payment(scope tenancy.Scope, externalID, status string) dto.PaymentNotification {
	return dto.PaymentNotification{
		TenantID: scope.TenantID, ExternalID: externalID, Status: status,
		Amount: decimal.NewFromInt(29900), Currency: "COP",
	}
}

func TestListPlans_OrdenadosPorPrecio(t *testing.T) {
	_, uc, _, _ := setup(t)
	plans, err := uc.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "BASIC", plans[0].Code)
	assert.Equal(t, "PRO", plans[1].Code)
	assert.Equal(t, "ANNUAL", plans[2].Code)
	assert.Equal(t, 12, plans[2].IntervalMonths)
}

func TestSubscribe_CreaPendienteYRechazaDuplicada(t *testing.T) {
	store, uc, _, scope := setup(t)
	ctx := context.Background()

	sub, err := uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: " basic "}, dto.ClientInfo{IP: "8.8.8.8"})
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionPending, sub.Status)
	assert.Equal(t, "BASIC", sub.Plan.Code)
	assert.Nil(t, sub.CurrentPeriodEnd)

	_, err = uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: "PRO"}, dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: "GOLD"}, dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	audit := store.AuditRows()
	require.Len(t, audit, 1)
	assert.Equal(t, "subscription.created", audit[0].Action)
	assert.Equal(t, entity.CategoryBilling, audit[0].Category)
	assert.Equal(t, "8.8.8.8", audit[0].IPAddress)
}

func TestRecordPayment_AprobadoActivaUnPeriodo(t *testing.T) {
	_, uc, c, scope := setup(t)
	ctx := context.Background()
	_, err := uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: "BASIC"}, dto.ClientInfo{})
	require.NoError(t, err)

	p, err := uc.RecordPayment(ctx, payment(scope, "mp-1", entity.PaymentApproved))
	require.NoError(t, err)
	assert.True(t, p.Applied)
	assert.Empty(t, p.PreviousStatus)
	require.NotNil(t, p.SubscriptionID)

	cur, err := uc.Current(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, entity.SubscriptionActive, cur.Status)
	require.NotNil(t, cur.CurrentPeriodStart)
	require.NotNil(t, cur.CurrentPeriodEnd)
	assert.Equal(t, c.now(), *cur.CurrentPeriodStart)
	assert.Equal(t, c.now().AddDate(0, 1, 0), *cur.CurrentPeriodEnd)

	// Un segundo pago antes del vencimiento extiende desde el fin del periodo.
	c.advance(24 * time.Hour)
	_, err = uc.RecordPayment(ctx, payment(scope, "mp-2", entity.PaymentApproved))
	require.NoError(t, err)
	cur, err = uc.Current(ctx, scope)
	require.NoError(t, err)
	first := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, first, *cur.CurrentPeriodStart)
	assert.Equal(t, first.AddDate(0, 2, 0), *cur.CurrentPeriodEnd)
}

func TestRecordPayment_EsIdempotente(t *testing.T) {
	store, uc, _, scope := setup(t)
	ctx := context.Background()
	_, err := uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: "BASIC"}, dto.ClientInfo{})
	require.NoError(t, err)

	first, err := uc.RecordPayment(ctx, payment(scope, "mp-9", entity.PaymentApproved))
	require.NoError(t, err)
	before, err := uc.Current(ctx, scope)
	require.NoError(t, err)
	auditBefore := len(store.AuditRows())

	again, err := uc.RecordPayment(ctx, payment(scope, "mp-9", entity.PaymentApproved))
	require.NoError(t, err)
	assert.False(t, again.Applied)
	assert.Equal(t, entity.PaymentApproved, again.PreviousStatus)
	assert.Equal(t, first.ID, again.ID)

	after, err := uc.Current(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, before.CurrentPeriodEnd, after.CurrentPeriodEnd)
	assert.Len(t, store.AuditRows(), auditBefore)

	list, err := uc.ListPayments(ctx, scope, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordPayment_ReembolsoCancela(t *testing.T) {
	store, uc, _, scope := setup(t)
	ctx := context.Background()
	_, err := uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: "PRO"}, dto.ClientInfo{})
	require.NoError(t, err)
	_, err = uc.RecordPayment(ctx, payment(scope, "mp-3", entity.PaymentApproved))
	require.NoError(t, err)

	p, err := uc.RecordPayment(ctx, payment(scope, "mp-3", entity.PaymentRefunded))
	require.NoError(t, err)
	assert.True(t, p.Applied)
	assert.Equal(t, entity.PaymentApproved, p.PreviousStatus)

	cur, err := uc.Current(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, cur)

	audit := store.AuditRows()
	last := audit[len(audit)-1]
	assert.Equal(t, "payment.refunded", last.Action)
	assert.Nil(t, last.UserID)
	assert.Contains(t, string(last.Changes), `"to":"cancelled"`)

	// Tras cancelar se puede volver a suscribir.
	_, err = uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: "BASIC"}, dto.ClientInfo{})
	assert.NoError(t, err)
}

func TestRecordPayment_ContracargoEsAdvertencia(t *testing.T) {
	store, uc, _, scope := setup(t)
	ctx := context.Background()
	_, err := uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: "BASIC"}, dto.ClientInfo{})
	require.NoError(t, err)

	_, err = uc.RecordPayment(ctx, payment(scope, "mp-4", entity.PaymentChargedBack))
	require.NoError(t, err)
	audit := store.AuditRows()
	assert.Equal(t, entity.SeverityWarning, audit[len(audit)-1].Severity)
}

func TestRecordPayment_SinSuscripcionSoloRegistra(t *testing.T) {
	_, uc, _, scope := setup(t)
	p, err := uc.RecordPayment(context.Background(), payment(scope, "mp-5", entity.PaymentApproved))
	require.NoError(t, err)
	assert.Nil(t, p.SubscriptionID)
	assert.True(t, p.Applied)
}

func TestRecordPayment_ValidaEntrada(t *testing.T) {
	_, uc, _, scope := setup(t)
	ctx := context.Background()

	_, err := uc.RecordPayment(ctx, payment(scope, "mp-6", "unknown"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n := payment(scope, "mp-6", entity.PaymentApproved)
	n.Amount = decimal.NewFromInt(-1)
	_, err = uc.RecordPayment(ctx, n)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n = payment(scope, "", entity.PaymentApproved)
	_, err = uc.RecordPayment(ctx, n)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n = payment(tenancy.Scope{TenantID: "00000000-0000-0000-0000-000000000000"}, "mp-7", entity.PaymentApproved)
	_, err = uc.RecordPayment(ctx, n)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	missing := "11111111-1111-1111-1111-111111111111"
	n = payment(scope, "mp-8", entity.PaymentApproved)
	n.SubscriptionID = &missing
	_, err = uc.RecordPayment(ctx, n)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordPayment_FalloRevierteElPago(t *testing.T) {
	store, uc, _, scope := setup(t)
	ctx := context.Background()
	_, err := uc.Subscribe(ctx, scope, dto.SubscribeRequest{PlanCode: "BASIC"}, dto.ClientInfo{})
	require.NoError(t, err)

	store.Fail(memstore.OpSubscriptionSet, errors.New("deadlock"))
	_, err = uc.RecordPayment(ctx, payment(scope, "mp-10", entity.PaymentApproved))
	require.Error(t, err)
	store.Heal()

	list, err := uc.ListPayments(ctx, scope, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// El reenvío de la pasarela se aplica completo.
	p, err := uc.RecordPayment(ctx, payment(scope, "mp-10", entity.PaymentApproved))
	require.NoError(t, err)
	assert.True(t, p.Applied)
	cur, err := uc.Current(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionActive, cur.Status)
}
