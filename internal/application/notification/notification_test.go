package notification_test

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
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/notification"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
)

var start = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// flakyMailer falla los primeros fails envíos.
type flakyMailer struct {
	mu    sync.Mutex
	fails int
	sent  []ports.Message
}

func (m *flakyMailer) Send(_ context.Context, msg ports.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails > 0 {
		m.fails--
		return errors.New("smtp: 421 servicio no disponible")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type alert struct{ tenantID, severity, category, title string }

type alerts struct{ raised []alert }

func (a *alerts) Raise(_ context.Context, tenantID, severity, category, title, _ string, _ map[string]any) {
	a.raised = append(a.raised, alert{tenantID, severity, category, title})
}

func template(vars ...entity.EmailTemplateVariable) *entity.EmailTemplate {
	return &entity.EmailTemplate{
		Subject:   "Presupuesto {{.code}}",
		BodyText:  "Hola {{.name}}, tu presupuesto {{.code}} está listo.",
		BodyHTML:  "<p>Hola {{.name}}</p>",
		Variables: vars,
	}
}

func TestRender_AplicaDatosYValoresPorDefecto(t *testing.T) {
	tpl := template(
		entity.EmailTemplateVariable{Name: "code", Required: true},
		entity.EmailTemplateVariable{Name: "name", DefaultValue: "cliente"},
	)

	out, err := notification.Render(tpl, map[string]string{"code": "B-010"})
	require.NoError(t, err)
	assert.Equal(t, "Presupuesto B-010", out.Subject)
	assert.Equal(t, "Hola cliente, tu presupuesto B-010 está listo.", out.Text)
	assert.Equal(t, "<p>Hola cliente</p>", out.HTML)
}

func TestRender_EscapaHTML(t *testing.T) {
	tpl := template(entity.EmailTemplateVariable{Name: "code"}, entity.EmailTemplateVariable{Name: "name"})
	out, err := notification.Render(tpl, map[string]string{"code": "B-1", "name": "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, out.HTML, "<script>")
	assert.Contains(t, out.Text, "<script>x</script>")
}

func TestRender_VariableRequeridaFaltanteFalla(t *testing.T) {
	tpl := template(entity.EmailTemplateVariable{Name: "code", Required: true}, entity.EmailTemplateVariable{Name: "name"})
	_, err := notification.Render(tpl, map[string]string{"name": "Ana"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRender_ReferenciaNoDeclaradaFalla(t *testing.T) {
	_, err := notification.Render(template(), map[string]string{"name": "Ana"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate_SintaxisInvalida(t *testing.T) {
	err := notification.Validate(&entity.EmailTemplate{Subject: "{{.code"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTemplates_CrearYPrevisualizar(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Plantillas", "admin@plantillas.co")
	uc := notification.NewTemplateUseCase(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, scope, dto.CreateTemplateRequest{
		Slug:     " Bienvenida ",
		Name:     "Bienvenida",
		Subject:  "Hola {{.name}}",
		BodyText: "Bienvenido a {{.company}}",
		Variables: []dto.TemplateVariableInput{
			{Name: "name", Required: true},
			{Name: "company", DefaultValue: "Gestión"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "bienvenida", created.Slug)
	assert.Len(t, created.Variables, 2)

	out, err := uc.Preview(ctx, scope, created.ID, dto.RenderRequest{Data: map[string]string{"name": "Ana"}})
	require.NoError(t, err)
	assert.Equal(t, "Hola Ana", out.Subject)
	assert.Equal(t, "Bienvenido a Gestión", out.Text)

	_, err = uc.Create(ctx, scope, dto.CreateTemplateRequest{Slug: "dup", Name: "x", Subject: "x",
		Variables: []dto.TemplateVariableInput{{Name: "a"}, {Name: "a"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other := store.SeedTenant("Ajeno", "admin@ajeno.co")
	got, err := uc.Get(ctx, other, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	_, err = uc.Preview(ctx, other, created.ID, dto.RenderRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueue_EnqueuePorSlugYProgramado(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Cola", "admin@cola.co")
	c := &clock{t: start}
	ctx := context.Background()
	_, err := notification.NewTemplateUseCase(store).Create(ctx, scope, dto.CreateTemplateRequest{
		Slug: "aviso", Name: "Aviso", Subject: "Aviso {{.n}}", BodyText: "n={{.n}}",
		Variables: []dto.TemplateVariableInput{{Name: "n", Required: true}},
	})
	require.NoError(t, err)
	queue := notification.NewQueueUseCase(store, 4).WithClock(c.now)

	later := start.Add(2 * time.Hour)
	item, err := queue.Enqueue(ctx, scope, dto.SendEmailRequest{
		TemplateSlug: "AVISO", To: "cliente@correo.co", Data: map[string]string{"n": "7"}, ScheduledAt: &later,
	})
	require.NoError(t, err)
	assert.Equal(t, "Aviso 7", item.Subject)
	assert.Equal(t, later, item.ScheduledAt)
	assert.Equal(t, 4, item.MaxAttempts)
	assert.Equal(t, string(entity.EmailPending), item.Status)

	_, err = queue.Enqueue(ctx, scope, dto.SendEmailRequest{TemplateSlug: "inexistente", To: "x@y.co"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = queue.Enqueue(ctx, scope, dto.SendEmailRequest{TemplateSlug: "aviso", To: "x@y.co"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := queue.List(ctx, scope, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWorker_Backoff(t *testing.T) {
	w := notification.NewWorker(memstore.New(), &flakyMailer{}, nil, nil,
		notification.WorkerSettings{BackoffBase: time.Minute, BackoffMax: 10 * time.Minute}, zerolog.Nop())

	assert.Equal(t, time.Minute, w.Backoff(1))
	assert.Equal(t, 2*time.Minute, w.Backoff(2))
	assert.Equal(t, 4*time.Minute, w.Backoff(3))
	assert.Equal(t, 8*time.Minute, w.Backoff(4))
	assert.Equal(t, 10*time.Minute, w.Backoff(5))
	assert.Equal(t, 10*time.Minute, w.Backoff(12))
}

func TestWorker_ReintentaYLuegoFallaConAlerta(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Reintentos", "admin@reintentos.co")
	c := &clock{t: start}
	ctx := context.Background()
	mailer := &flakyMailer{fails: 5}
	al := &alerts{}
	queue := notification.NewQueueUseCase(store, 2).WithClock(c.now)
	w := notification.NewWorker(store, mailer, al, nil, notification.WorkerSettings{
		BackoffBase: time.Minute, BackoffMax: time.Hour, BatchSize: 10,
	}, zerolog.Nop()).WithClock(c.now)

	require.NoError(t, queue.EnqueueMessage(ctx, scope.TenantID, ports.Message{To: "c@c.co", Subject: "Factura"}))

	res, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, notification.BatchResult{Claimed: 1, Retried: 1}, res)
	emails := store.Emails()
	require.Len(t, emails, 1)
	assert.Equal(t, entity.EmailPending, emails[0].Status)
	assert.Equal(t, 1, emails[0].Attempts)
	assert.Equal(t, start.Add(time.Minute), emails[0].ScheduledAt)
	assert.Contains(t, emails[0].LastError, "421")

	res, err = w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Claimed, "todavía no vence el reintento")

	c.advance(time.Minute)
	res, err = w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, notification.BatchResult{Claimed: 1, Failed: 1}, res)
	emails = store.Emails()
	assert.Equal(t, entity.EmailFailed, emails[0].Status)
	assert.NotNil(t, emails[0].ProcessedAt)

	logs := store.EmailLogs()
	require.Len(t, logs, 2)
	for i, l := range logs {
		assert.Equal(t, entity.EmailFailed, l.Status)
		assert.Equal(t, i+1, l.Attempt)
	}
	require.Len(t, al.raised, 1)
	assert.Equal(t, alert{scope.TenantID, entity.SeverityWarning, entity.CategoryCommunication, "Email no entregado"}, al.raised[0])
}

func TestWorker_EntregaYRegistra(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Entrega", "admin@entrega.co")
	c := &clock{t: start}
	ctx := context.Background()
	mailer := &flakyMailer{}
	queue := notification.NewQueueUseCase(store, 3).WithClock(c.now)
	w := notification.NewWorker(store, mailer, nil, nil, notification.WorkerSettings{}, zerolog.Nop()).WithClock(c.now)

	require.NoError(t, queue.EnqueueMessage(ctx, scope.TenantID, ports.Message{To: "a@a.co", Subject: "uno"}))
	require.NoError(t, queue.EnqueueAt(ctx, scope.TenantID, nil, ports.Message{To: "b@b.co", Subject: "dos"}, start.Add(time.Hour)))

	res, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, notification.BatchResult{Claimed: 1, Sent: 1}, res)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@a.co", mailer.sent[0].To)

	logs := store.EmailLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, entity.EmailSent, logs[0].Status)
}

func TestWorker_FalloDelLogNoDetieneLaEntrega(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Log", "admin@log.co")
	ctx := context.Background()
	queue := notification.NewQueueUseCase(store, 3)
	w := notification.NewWorker(store, &flakyMailer{}, nil, nil, notification.WorkerSettings{}, zerolog.Nop())
	require.NoError(t, queue.EnqueueMessage(ctx, scope.TenantID, ports.Message{To: "a@a.co", Subject: "x"}))

	store.Fail(memstore.OpEmailLog, errors.New("log caído"))
	res, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, entity.EmailSent, store.Emails()[0].Status)
	assert.Empty(t, store.EmailLogs())
}

func TestWorker_RunTerminaAlCancelar(t *testing.T) {
	w := notification.NewWorker(memstore.New(), &flakyMailer{}, nil, nil,
		notification.WorkerSettings{PollInterval: 5 * time.Millisecond}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("el worker no se detuvo")
	}
}

func TestParseEvent(t *testing.T) {
	kind, status, err := notification.ParseEvent("budget.approved")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.KindBudget, kind)
	assert.Equal(t, "approved", status.String())

	_, _, err = notification.ParseEvent("budget")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = notification.ParseEvent("budget.paid")
	assert.Error(t, err)
}

func TestAutoresponder_EncolaAlCambiarEstado(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Auto", "admin@auto.co")
	c := &clock{t: start}
	ctx := context.Background()

	customer, err := usecase.NewPartyUseCase(store.Parties()).Create(ctx, scope, entity.PartyCustomer, dto.CreatePartyRequest{
		Code:       "CLI-1",
		CommonData: &dto.CommonDataInput{Name: "Marta Gómez"},
		Contact:    &dto.ContactInput{Email: "marta@cliente.co"},
	})
	require.NoError(t, err)
	b, err := commerce.NewBudgetUseCase(store, store).WithClock(c.now).Create(ctx, scope, dto.CreateBudgetRequest{
		Code: "A-001", Title: "Cocina", CustomerID: &customer.ID,
	})
	require.NoError(t, err)

	tpl, err := notification.NewTemplateUseCase(store).Create(ctx, scope, dto.CreateTemplateRequest{
		Slug: "aprobado", Name: "Aprobado", Subject: "Tu presupuesto pasó a {{.new_status}}",
		BodyText: "Hola {{.customer_name}}",
	})
	require.NoError(t, err)

	queue := notification.NewQueueUseCase(store, 3).WithClock(c.now)
	auto := notification.NewAutoresponderUseCase(store, queue, zerolog.Nop()).WithClock(c.now)
	rule, err := auto.Create(ctx, scope, dto.CreateAutoresponderRequest{Event: "budget.approved", TemplateID: tpl.ID, DelaySeconds: 60})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)

	_, err = auto.Create(ctx, scope, dto.CreateAutoresponderRequest{Event: "budget", TemplateID: tpl.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	other := store.SeedTenant("Otro", "admin@otro.co")
	_, err = auto.Create(ctx, other, dto.CreateAutoresponderRequest{Event: "budget.approved", TemplateID: tpl.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Un evento sin regla no encola nada.
	require.NoError(t, auto.StatusChanged(ctx, ports.StatusEvent{
		TenantID: scope.TenantID, Kind: lifecycle.KindBudget, EntityID: b.ID, From: "draft", To: "sent", At: start,
	}))
	assert.Empty(t, store.Emails())

	require.NoError(t, auto.StatusChanged(ctx, ports.StatusEvent{
		TenantID: scope.TenantID, Kind: lifecycle.KindBudget, EntityID: b.ID, From: "sent", To: "approved", At: start,
	}))
	emails := store.Emails()
	require.Len(t, emails, 1)
	assert.Equal(t, "marta@cliente.co", emails[0].ToAddress)
	assert.Equal(t, "Marta Gómez", emails[0].ToName)
	assert.Equal(t, "Tu presupuesto pasó a approved", emails[0].Subject)
	assert.Equal(t, "Hola Marta Gómez", emails[0].BodyText)
	assert.Equal(t, start.Add(time.Minute), emails[0].ScheduledAt)
	require.NotNil(t, emails[0].TemplateID)
	assert.Equal(t, tpl.ID, *emails[0].TemplateID)
}

func TestAutoresponder_SinContactoNoEnvia(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("SinContacto", "admin@sc.co")
	ctx := context.Background()
	b, err := commerce.NewBudgetUseCase(store, store).Create(ctx, scope, dto.CreateBudgetRequest{Code: "A-002", Title: "x"})
	require.NoError(t, err)
	tpl, err := notification.NewTemplateUseCase(store).Create(ctx, scope, dto.CreateTemplateRequest{Slug: "s", Name: "s", Subject: "s"})
	require.NoError(t, err)
	auto := notification.NewAutoresponderUseCase(store, notification.NewQueueUseCase(store, 3), zerolog.Nop())
	_, err = auto.Create(ctx, scope, dto.CreateAutoresponderRequest{Event: "budget.sent", TemplateID: tpl.ID})
	require.NoError(t, err)

	require.NoError(t, auto.StatusChanged(ctx, ports.StatusEvent{
		TenantID: scope.TenantID, Kind: lifecycle.KindBudget, EntityID: b.ID, From: "draft", To: "sent", At: time.Now(),
	}))
	assert.Empty(t, store.Emails())
}
