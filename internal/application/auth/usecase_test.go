package auth_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/confirmation"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
	"github.com/jhoicas/Gestion-api/pkg/jwt"
)

const secret = "auth-test-secret"

type outbox struct {
	mu   sync.Mutex
	msgs []ports.Message
}

func (o *outbox) EnqueueMessage(_ context.Context, _ string, m ports.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, m)
	return nil
}

var linkToken = regexp.MustCompile(`/(verify-email|reset-password)/([A-Za-z0-9_-]{43})`)

// token extrae el token del enlace del último mensaje.
func (o *outbox) token(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, o.msgs)
	m := linkToken.FindStringSubmatch(o.msgs[len(o.msgs)-1].Text)
	require.Len(t, m, 3)
	return m[2]
}

type fixture struct {
	store *memstore.Store
	auth  *auth.AuthUseCase
	mail  *outbox
}

func newFixture() *fixture {
	store := memstore.New()
	gate := confirmation.NewGate(store, store, confirmation.Settings{
		EmailVerificationTTL: 48 * time.Hour,
		PasswordResetTTL:     time.Hour,
		ActionTTL:            time.Hour,
		PublicURL:            "https://app.test",
	}, zerolog.Nop())
	mail := &outbox{}
	uc := auth.NewAuthUseCase(store, store, gate, mail, auth.JWTConfig{Secret: secret, ExpMinutes: 30, Issuer: "gestion-test"}, zerolog.Nop())
	return &fixture{store: store, auth: uc, mail: mail}
}

func (f *fixture) register(t *testing.T, tenant, email string) *dto.RegisterTenantResponse {
	t.Helper()
	out, err := f.auth.RegisterTenant(context.Background(), dto.RegisterTenantRequest{
		TenantName: tenant, AdminEmail: email, AdminPassword: "clave-segura", AdminName: "Admin " + tenant,
	})
	require.NoError(t, err)
	return out
}

func TestRegisterTenant_CreaTenantAdminYRol(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	out := f.register(t, "  Carpintería Sur ", "Admin@Sur.CO ")
	assert.Equal(t, "Carpintería Sur", out.Tenant.Name)
	assert.True(t, out.Tenant.IsActive)
	assert.Equal(t, "admin@sur.co", out.Admin.Email)
	assert.Equal(t, entity.UserActive, out.Admin.Status)
	assert.False(t, out.Admin.EmailVerified)

	perms, err := f.store.Roles().UserPermissions(ctx, out.Tenant.ID, out.Admin.ID)
	require.NoError(t, err)
	assert.Len(t, perms, 13)

	role, err := f.store.Roles().GetRoleByName(ctx, out.Tenant.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.NotNil(t, role)

	require.Len(t, f.mail.msgs, 1)
	assert.Equal(t, "admin@sur.co", f.mail.msgs[0].To)
	assert.Contains(t, f.mail.msgs[0].Text, "https://app.test/public/verify-email/")
}

func TestRegisterTenant_NombreDuplicado(t *testing.T) {
	f := newFixture()
	f.register(t, "Duplicado", "a@dup.co")
	_, err := f.auth.RegisterTenant(context.Background(), dto.RegisterTenantRequest{
		TenantName: "Duplicado", AdminEmail: "b@dup.co", AdminPassword: "clave-segura",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRegisterTenant_ContraseñaCorta(t *testing.T) {
	f := newFixture()
	_, err := f.auth.RegisterTenant(context.Background(), dto.RegisterTenantRequest{
		TenantName: "Corta", AdminEmail: "a@corta.co", AdminPassword: "1234567",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterTenant_FalloParcialNoDejaRastro(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.Fail(memstore.OpRoleGrantAll, errors.New("conexión perdida"))

	_, err := f.auth.RegisterTenant(ctx, dto.RegisterTenantRequest{
		TenantName: "Atómico", AdminEmail: "a@atomico.co", AdminPassword: "clave-segura",
	})
	require.Error(t, err)

	tenant, err := f.store.Tenants().GetByName(ctx, "Atómico")
	require.NoError(t, err)
	assert.Nil(t, tenant)
	users, err := f.store.Users().FindByEmail(ctx, "a@atomico.co")
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Empty(t, f.mail.msgs)

	f.store.Heal()
	f.register(t, "Atómico", "a@atomico.co")
}

func TestLogin_EmiteTokenConElAlcance(t *testing.T) {
	f := newFixture()
	out := f.register(t, "Login", "user@login.co")

	res, err := f.auth.Login(context.Background(), dto.LoginRequest{Email: "USER@login.co", Password: "clave-segura"})
	require.NoError(t, err)
	userID, tenantID, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, out.Admin.ID, userID)
	assert.Equal(t, out.Tenant.ID, tenantID)
}

func TestLogin_Rechazos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	out := f.register(t, "Rechazos", "user@rechazos.co")

	_, err := f.auth.Login(ctx, dto.LoginRequest{Email: "user@rechazos.co", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.auth.Login(ctx, dto.LoginRequest{Email: "nadie@rechazos.co", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.store.Tenants().SetActive(ctx, out.Tenant.ID, false, time.Now()))
	_, err = f.auth.Login(ctx, dto.LoginRequest{Email: "user@rechazos.co", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrTenantInactive)
}

func TestLogin_EmailEnVariosTenants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.register(t, "Uno", "socio@multi.co")
	dos := f.register(t, "Dos", "socio@multi.co")

	_, err := f.auth.Login(ctx, dto.LoginRequest{Email: "socio@multi.co", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	res, err := f.auth.Login(ctx, dto.LoginRequest{Email: "socio@multi.co", Password: "clave-segura", TenantID: dos.Tenant.ID})
	require.NoError(t, err)
	assert.Equal(t, dos.Tenant.ID, res.User.TenantID)
}

func TestVerifyEmail_UnSoloUso(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	out := f.register(t, "Verifica", "v@verifica.co")
	token := f.mail.token(t)

	require.NoError(t, f.auth.VerifyEmail(ctx, token))
	u, err := f.store.Users().GetByID(ctx, out.Tenant.ID, out.Admin.ID)
	require.NoError(t, err)
	assert.NotNil(t, u.EmailVerifiedAt)

	assert.ErrorIs(t, f.auth.VerifyEmail(ctx, token), domain.ErrInvalidAccess)
}

func TestPasswordReset_Flujo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	out := f.register(t, "Reset", "r@reset.co")

	require.NoError(t, f.auth.RequestPasswordReset(ctx, dto.PasswordResetRequest{TenantID: out.Tenant.ID, Email: "desconocido@reset.co"}))
	assert.Len(t, f.mail.msgs, 1, "un email desconocido no genera envío")

	require.NoError(t, f.auth.RequestPasswordReset(ctx, dto.PasswordResetRequest{TenantID: out.Tenant.ID, Email: "R@reset.co"}))
	require.Len(t, f.mail.msgs, 2)
	token := f.mail.token(t)

	// Un token de verificación no sirve para restablecer.
	verify := linkToken.FindStringSubmatch(f.mail.msgs[0].Text)[2]
	assert.ErrorIs(t, f.auth.ResetPassword(ctx, dto.ResetPasswordRequest{Token: verify, Password: "nueva-clave"}), domain.ErrInvalidAccess)

	assert.ErrorIs(t, f.auth.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token, Password: "corta"}), domain.ErrInvalidInput)
	require.NoError(t, f.auth.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token, Password: "nueva-clave"}))

	_, err := f.auth.Login(ctx, dto.LoginRequest{Email: "r@reset.co", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.auth.Login(ctx, dto.LoginRequest{Email: "r@reset.co", Password: "nueva-clave"})
	assert.NoError(t, err)

	assert.ErrorIs(t, f.auth.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token, Password: "otra-clave"}), domain.ErrInvalidAccess)
}
