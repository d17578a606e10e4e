package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/bootstrap"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	apphttp "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
	"github.com/jhoicas/Gestion-api/pkg/config"
)

const webhookSecret = "whsec-test"

type testAPI struct {
	t     *testing.T
	app   *fiber.App
	store *memstore.Store
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Name: "gestion-api", PublicURL: "https://app.test"},
		JWT: config.JWTConfig{Secret: testJWTSecret, Expiration: 60, Issuer: testIssuer},
		Share: config.ShareConfig{DefaultTTL: 72 * time.Hour, MaxTTL: 30 * 24 * time.Hour},
		Confirmation: config.ConfirmationConfig{
			EmailVerificationTTL: 24 * time.Hour,
			PasswordResetTTL:     time.Hour,
			ActionTTL:            48 * time.Hour,
		},
		Email:    config.EmailConfig{MaxAttempts: 3, BackoffBase: time.Minute, BackoffMax: time.Hour, BatchSize: 10},
		Payments: config.PaymentsConfig{WebhookSecret: webhookSecret},
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memstore.New()
	cfg := testConfig()
	svc := bootstrap.New(bootstrap.Deps{Repos: store, Tx: store, Config: cfg})
	app := fiber.New(apphttp.AppConfig("gestion-test", apphttp.ErrorHandler(svc.Monitoring, zerolog.Nop())))
	apphttp.Router(app, svc.RouterDeps(cfg))
	return &testAPI{t: t, app: app, store: store}
}

func (a *testAPI) do(method, path, token string, body any, headers ...string) (int, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

// session registra un tenant y devuelve el token del administrador.
func (a *testAPI) session(tenantName, email string) (token string, tenantID string) {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/auth/register", "", dto.RegisterTenantRequest{
		TenantName: tenantName, AdminEmail: email, AdminPassword: "secreto-123",
	})
	require.Equal(a.t, http.StatusCreated, status, string(body))
	var reg dto.RegisterTenantResponse
	require.NoError(a.t, json.Unmarshal(body, &reg))

	status, body = a.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: "secreto-123"})
	require.Equal(a.t, http.StatusOK, status, string(body))
	var login dto.LoginResponse
	require.NoError(a.t, json.Unmarshal(body, &login))
	return login.Token, reg.Tenant.ID
}

func (a *testAPI) createBudget(token, code string) dto.BudgetResponse {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/budgets", token, map[string]any{
		"code":  code,
		"title": "Mantenimiento preventivo",
		"items": []map[string]any{{"description": "Revisión", "quantity": "2", "unit_price": "50000"}},
	})
	require.Equal(a.t, http.StatusCreated, status, string(body))
	var b dto.BudgetResponse
	require.NoError(a.t, json.Unmarshal(body, &b))
	return b
}

func TestRouter_FlujoPresupuestoCompartidoYAprobado(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.session("Taller Norte", "admin@norte.co")
	budget := api.createBudget(token, "P-001")
	assert.Equal(t, "draft", budget.Status)

	status, body := api.do(http.MethodPost, "/api/budgets/"+budget.ID+"/status", token,
		dto.ChangeStatusRequest{Status: "sent", Comment: "enviado al cliente"})
	require.Equal(t, http.StatusOK, status, string(body))
	var change dto.StatusChangeResponse
	require.NoError(t, json.Unmarshal(body, &change))
	assert.Equal(t, "draft", change.OldStatus)
	assert.Equal(t, "sent", change.NewStatus)

	status, body = api.do(http.MethodPost, "/api/budgets/"+budget.ID+"/shares", token,
		dto.IssueShareRequest{Permissions: []string{"view", "approve", "reject"}})
	require.Equal(t, http.StatusCreated, status, string(body))
	var share dto.ShareResponse
	require.NoError(t, json.Unmarshal(body, &share))
	assert.True(t, strings.HasPrefix(share.URL, "https://app.test/public/budgets/view/"))

	status, body = api.do(http.MethodGet, "/public/budgets/view/"+share.Token, "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var view dto.PublicShareView
	require.NoError(t, json.Unmarshal(body, &view))
	require.NotNil(t, view.Budget)
	assert.Equal(t, "P-001", view.Budget.Code)
	assert.Equal(t, 1, view.AccessCount)

	status, body = api.do(http.MethodPost, "/public/budgets/view/"+share.Token+"/approve", "",
		dto.RespondShareRequest{Comment: "de acuerdo"})
	require.Equal(t, http.StatusOK, status, string(body))

	stored, ok := api.store.Budget(budget.ID)
	require.True(t, ok)
	assert.Equal(t, lifecycle.BudgetApproved.String(), stored.Status.String())

	// Un enlace ya respondido no admite una segunda respuesta.
	status, _ = api.do(http.MethodPost, "/public/budgets/view/"+share.Token+"/reject", "", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = api.do(http.MethodGet, "/api/budgets/"+budget.ID+"/history", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var history []dto.HistoryEntryResponse
	require.NoError(t, json.Unmarshal(body, &history))
	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.Contains(t, actions, string(entity.ActionShareResponse))
}

func TestRouter_TokenPublicoInvalidoRetorna404(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodGet, "/public/budgets/view/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "INVALID_ACCESS")

	status, _ = api.do(http.MethodGet, "/public/invoices/view/"+strings.Repeat("a", 43), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_EnlaceRevocadoDejaDeServir(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.session("Taller Sur", "admin@sur.co")
	budget := api.createBudget(token, "P-010")

	status, body := api.do(http.MethodPost, "/api/budgets/"+budget.ID+"/shares", token, dto.IssueShareRequest{})
	require.Equal(t, http.StatusCreated, status, string(body))
	var share dto.ShareResponse
	require.NoError(t, json.Unmarshal(body, &share))
	assert.Equal(t, []string{"view"}, share.Permissions)

	// Varias peticiones intermedias no deben alterar el enlace guardado.
	api.createBudget(token, "P-011")
	status, body = api.do(http.MethodGet, "/public/budgets/view/"+share.Token, "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"code":"P-010"`)

	// Solo lectura: aprobar se rechaza como acceso inválido.
	status, _ = api.do(http.MethodPost, "/public/budgets/view/"+share.Token+"/approve", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodDelete, "/api/budgets/"+budget.ID+"/shares/"+share.ID, token, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = api.do(http.MethodGet, "/public/budgets/view/"+share.Token, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAppConfig_CopiaParametros(t *testing.T) {
	cfg := apphttp.AppConfig("gestion", nil)
	assert.True(t, cfg.Immutable)
	assert.Equal(t, "gestion", cfg.AppName)
}

func TestSwagger_DocumentaTodasLasRutas(t *testing.T) {
	raw, err := os.ReadFile("../../../docs/swagger.json")
	require.NoError(t, err)
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	api := newTestAPI(t)
	param := regexp.MustCompile(`:(\w+)`)
	checked := 0
	for _, r := range api.app.GetRoutes(true) {
		if r.Method == fiber.MethodHead {
			continue
		}
		path := param.ReplaceAllString(strings.TrimSuffix(r.Path, "/"), "{$1}")
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "ruta sin documentar: %s", path) {
			_, ok = ops[strings.ToLower(r.Method)]
			assert.True(t, ok, "método sin documentar: %s %s", r.Method, path)
		}
		checked++
	}
	assert.Greater(t, checked, 80)
}

func TestRouter_AislamientoEntreTenants(t *testing.T) {
	api := newTestAPI(t)
	tokenA, _ := api.session("Empresa A", "admin@a.co")
	tokenB, _ := api.session("Empresa B", "admin@b.co")
	budget := api.createBudget(tokenA, "P-100")

	status, _ := api.do(http.MethodGet, "/api/budgets/"+budget.ID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodPost, "/api/budgets/"+budget.ID+"/status", tokenB, dto.ChangeStatusRequest{Status: "sent"})
	assert.Equal(t, http.StatusNotFound, status)

	stored, ok := api.store.Budget(budget.ID)
	require.True(t, ok)
	assert.Equal(t, "draft", stored.Status.String())

	status, body := api.do(http.MethodGet, "/api/budgets", tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(body), budget.ID)
}

func TestRouter_SinTokenRetorna401(t *testing.T) {
	api := newTestAPI(t)
	status, _ := api.do(http.MethodGet, "/api/budgets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_ValidacionDelBodyRetorna400(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.session("Taller Centro", "admin@centro.co")

	status, body := api.do(http.MethodPost, "/api/budgets", token, map[string]any{"title": "sin código"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "VALIDATION")
	assert.Contains(t, string(body), "code: required")
}

func TestRouter_RegistroDuplicadoRetorna409(t *testing.T) {
	api := newTestAPI(t)
	api.session("Duplicada", "admin@dup.co")

	status, _ := api.do(http.MethodPost, "/api/auth/register", "", dto.RegisterTenantRequest{
		TenantName: "Duplicada", AdminEmail: "otro@dup.co", AdminPassword: "secreto-123",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestRouter_LoginConPasswordIncorrectaRetorna401(t *testing.T) {
	api := newTestAPI(t)
	api.session("Taller Este", "admin@este.co")

	status, _ := api.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@este.co", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_WebhookDePagos(t *testing.T) {
	api := newTestAPI(t)
	token, tenantID := api.session("Suscriptor", "admin@pagos.co")

	status, body := api.do(http.MethodPost, "/api/subscription", token, dto.SubscribeRequest{PlanCode: "PRO"})
	require.Equal(t, http.StatusCreated, status, string(body))

	notification := map[string]any{
		"tenant_id":   tenantID,
		"external_id": "mp-123",
		"status":      entity.PaymentApproved,
		"amount":      "59900",
		"currency":    "COP",
	}

	status, body = api.do(http.MethodPost, "/webhooks/payments", "", notification)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "INVALID_SECRET")

	status, _ = api.do(http.MethodPost, "/webhooks/payments", "", notification, apphttp.HeaderWebhookSecret, "otro")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = api.do(http.MethodPost, "/webhooks/payments", "", notification, apphttp.HeaderWebhookSecret, webhookSecret)
	require.Equal(t, http.StatusOK, status, string(body))
	var payment dto.PaymentResponse
	require.NoError(t, json.Unmarshal(body, &payment))
	assert.Equal(t, "mp-123", payment.ExternalID)

	// Reenvío idéntico de la pasarela: misma transacción.
	status, body = api.do(http.MethodPost, "/webhooks/payments", "", notification, apphttp.HeaderWebhookSecret, webhookSecret)
	require.Equal(t, http.StatusOK, status, string(body))
	var again dto.PaymentResponse
	require.NoError(t, json.Unmarshal(body, &again))
	assert.Equal(t, payment.ID, again.ID)

	status, body = api.do(http.MethodGet, "/api/payments", token, nil)
	require.Equal(t, http.StatusOK, status)
	var payments []dto.PaymentResponse
	require.NoError(t, json.Unmarshal(body, &payments))
	assert.Len(t, payments, 1)
}

func TestRouter_PlanesSonPublicos(t *testing.T) {
	api := newTestAPI(t)
	status, body := api.do(http.MethodGet, "/api/plans", "", nil)
	require.Equal(t, http.StatusOK, status)
	var plans []dto.PlanResponse
	require.NoError(t, json.Unmarshal(body, &plans))
	assert.Len(t, plans, 3)
}

func TestRouter_RegistroEncolaEmailDeVerificacion(t *testing.T) {
	api := newTestAPI(t)
	api.session("Verificación", "admin@verif.co")

	emails := api.store.Emails()
	require.Len(t, emails, 1)
	assert.Equal(t, "admin@verif.co", emails[0].ToAddress)
	assert.Contains(t, emails[0].BodyText, "https://app.test/public/verify-email/")
}
