package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	apphttp "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Gestion-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "gestion-api-test"
	testExpMin    = 60
)

// fakeChecker concede los permisos listados y reporta el tenant como activo o no.
type fakeChecker struct {
	granted map[string]bool
	active  bool
	err     error
}

func (f fakeChecker) HasPermission(_ context.Context, scope tenancy.Scope, permission string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return scope.TenantID == testTenantID && f.granted[permission], nil
}

func (f fakeChecker) IsActive(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.active && id == testTenantID, nil
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireActiveTenant y RequirePermission para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(checker fakeChecker, permission string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireActiveTenant(checker),
		apphttp.RequirePermission(permission, checker),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "tenant_id": apphttp.GetTenantID(c)})
		},
	)
	return app
}

func bearer(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission / RequireActiveTenant
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission_ConPermisoPasa(t *testing.T) {
	app := buildTestApp(fakeChecker{granted: map[string]bool{"budgets.manage": true}, active: true}, "budgets.manage")
	resp := doRequest(t, app, bearer(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, testTenantID, body["tenant_id"])
}

func TestRequirePermission_SinPermisoRetorna403(t *testing.T) {
	app := buildTestApp(fakeChecker{granted: map[string]bool{"budgets.manage": true}, active: true}, "billing.manage")
	resp := doRequest(t, app, bearer(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
	assert.Contains(t, string(body), "billing.manage")
}

func TestRequirePermission_FalloDeConsultaRetorna503(t *testing.T) {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequirePermission("budgets.manage", fakeChecker{err: errors.New("db caída")}),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	resp := doRequest(t, app, bearer(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRequireActiveTenant_TenantInactivoRetorna403(t *testing.T) {
	app := buildTestApp(fakeChecker{granted: map[string]bool{"budgets.manage": true}, active: false}, "budgets.manage")
	resp := doRequest(t, app, bearer(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "TENANT_INACTIVE")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(fakeChecker{active: true}, "budgets.manage")
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(fakeChecker{active: true}, "budgets.manage")
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_FormatoSinBearer_Retorna401(t *testing.T) {
	app := buildTestApp(fakeChecker{active: true}, "budgets.manage")
	resp := doRequest(t, app, "Basic abc")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_SecretDistinto_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, testTenantID, testIssuer, testExpMin)
	require.NoError(t, err)

	app := buildTestApp(fakeChecker{active: true}, "budgets.manage")
	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		scope := apphttp.GetScope(c)
		return c.JSON(fiber.Map{"user_id": scope.UserID, "tenant_id": scope.TenantID})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testTenantID, body["tenant_id"])
}
