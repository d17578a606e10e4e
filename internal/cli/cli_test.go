package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/bootstrap"
	"github.com/jhoicas/Gestion-api/internal/cli"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/mailer"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
	"github.com/jhoicas/Gestion-api/pkg/config"
)

func memOpener(store *memstore.Store) cli.Opener {
	cfg := &config.Config{
		App:   config.AppConfig{PublicURL: "https://app.test"},
		JWT:   config.JWTConfig{Secret: "cli-secret", Expiration: 60, Issuer: "gestionctl"},
		Share: config.ShareConfig{DefaultTTL: time.Hour, MaxTTL: 24 * time.Hour},
		Confirmation: config.ConfirmationConfig{
			EmailVerificationTTL: time.Hour,
			PasswordResetTTL:     time.Hour,
			ActionTTL:            time.Hour,
		},
		Email: config.EmailConfig{MaxAttempts: 3, BackoffBase: time.Second, BackoffMax: time.Minute, BatchSize: 10, PollInterval: time.Second},
	}
	return func(context.Context) (*cli.Runtime, error) {
		svc := bootstrap.New(bootstrap.Deps{
			Repos:  store,
			Tx:     store,
			Config: cfg,
			Mailer: mailer.NewLogMailer(zerolog.Nop()),
		})
		return &cli.Runtime{Services: svc}, nil
	}
}

func run(t *testing.T, store *memstore.Store, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand(memOpener(store))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTenants_CrearListarYDesactivar(t *testing.T) {
	store := memstore.New()

	out, err := run(t, store, "tenants", "create", "--name", "Taller CLI",
		"--admin-email", "admin@cli.co", "--admin-password", "secreto-123", "--format", "json")
	require.NoError(t, err, out)
	var created dto.RegisterTenantResponse
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Taller CLI", created.Tenant.Name)

	out, err = run(t, store, "tenants", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Taller CLI")
	assert.Contains(t, out, "NOMBRE")

	_, err = run(t, store, "tenants", "deactivate", created.Tenant.ID)
	require.NoError(t, err)

	out, err = run(t, store, "tenants", "list", "--format", "json")
	require.NoError(t, err)
	var list dto.TenantListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Items, 1)
	assert.False(t, list.Items[0].IsActive)
}

func TestTenants_CreateSinFlagsRequeridosFalla(t *testing.T) {
	_, err := run(t, memstore.New(), "tenants", "create", "--name", "Sin admin")
	assert.Error(t, err)
}

func TestRoot_FormatoInvalidoFalla(t *testing.T) {
	_, err := run(t, memstore.New(), "tenants", "list", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml")
}

func TestEmailsWorkOnce_EntregaLaCola(t *testing.T) {
	store := memstore.New()
	_, err := run(t, store, "tenants", "create", "--name", "Correo",
		"--admin-email", "admin@correo.co", "--admin-password", "secreto-123")
	require.NoError(t, err)
	require.Len(t, store.Emails(), 1)

	out, err := run(t, store, "emails", "work", "--once", "--format", "json")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"Sent": 1`)

	emails := store.Emails()
	require.Len(t, emails, 1)
	assert.Equal(t, entity.EmailSent, emails[0].Status)
}

func TestMigrate_SinSoporteFalla(t *testing.T) {
	_, err := run(t, memstore.New(), "migrate")
	assert.Error(t, err)
}

func TestSharesYTokensPrune_SinVencidos(t *testing.T) {
	store := memstore.New()

	out, err := run(t, store, "shares", "prune", "--older-than", "1h", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":0}`, out)

	out, err = run(t, store, "tokens", "prune", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":0}`, out)
}

func TestAlertsSystem_ListaVacia(t *testing.T) {
	out, err := run(t, memstore.New(), "alerts", "system", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}
