package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/bootstrap"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Gestion-api/pkg/config"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// services levanta los casos de uso sobre la base de TEST_DATABASE_URL.
func services(t *testing.T) *bootstrap.Services {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.DB.DatabaseURL = dsn
	cfg.JWT.Secret = "integration-secret"

	pool, err := postgres.NewPool(ctx, cfg.DB)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = postgres.Migrate(ctx, pool, logger.Nop().Zerolog())
	require.NoError(t, err)

	return bootstrap.New(bootstrap.Deps{
		Repos:  postgres.NewStore(pool),
		Tx:     postgres.NewTxRunner(pool),
		Config: cfg,
	})
}

func register(t *testing.T, s *bootstrap.Services) tenancy.Scope {
	t.Helper()
	name := "it-" + uuid.NewString()
	out, err := s.Auth.RegisterTenant(context.Background(), dto.RegisterTenantRequest{
		TenantName: name, AdminEmail: "admin@" + name + ".co", AdminPassword: "clave-segura", AdminName: "Admin",
	})
	require.NoError(t, err)
	scope := tenancy.New(out.Tenant.ID, out.Admin.ID)
	t.Cleanup(func() { _ = s.Tenants.Delete(context.Background(), scope.TenantID) })
	return scope
}

func TestPostgres_PresupuestoTransicionYEnlace(t *testing.T) {
	s := services(t)
	ctx := context.Background()
	t1 := register(t, s)
	t2 := register(t, s)

	b1, err := s.Budgets.Create(ctx, t1, dto.CreateBudgetRequest{Code: "B-001", Title: "Obra T1"})
	require.NoError(t, err)
	_, err = s.Budgets.Create(ctx, t2, dto.CreateBudgetRequest{Code: "B-001", Title: "Obra T2"})
	require.NoError(t, err)
	_, err = s.Budgets.Create(ctx, t1, dto.CreateBudgetRequest{Code: "b-001", Title: "dup"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = s.Status.ChangeStatus(ctx, t1, lifecycle.KindBudget, b1.ID, dto.ChangeStatusRequest{Status: "sent"}, dto.ClientInfo{IP: "10.0.0.1"})
	require.NoError(t, err)
	_, err = s.Status.ChangeStatus(ctx, t2, lifecycle.KindBudget, b1.ID, dto.ChangeStatusRequest{Status: "approved"}, dto.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	share, err := s.Shares.Issue(ctx, t1, lifecycle.ShareBudget, b1.ID, dto.IssueShareRequest{ExpiresInHours: 1})
	require.NoError(t, err)
	view, err := s.Shares.Access(ctx, lifecycle.ShareBudget, share.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, view.AccessCount)
	require.NotNil(t, view.Budget)
	assert.Equal(t, "Obra T1", view.Budget.Title)

	_, err = s.Shares.Access(ctx, lifecycle.ShareInvoice, share.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidAccess)
}

func TestPostgres_LoginTrasRegistro(t *testing.T) {
	s := services(t)
	ctx := context.Background()
	scope := register(t, s)

	tenant, err := s.Tenants.GetByID(ctx, scope.TenantID)
	require.NoError(t, err)
	require.NotNil(t, tenant)

	res, err := s.Auth.Login(ctx, dto.LoginRequest{Email: "admin@" + tenant.Name + ".co", Password: "clave-segura", TenantID: scope.TenantID})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	perms, err := s.Roles.UserPermissions(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, perms, 13)
}

func TestPostgres_ReferenciasDeOtroTenantSonNotFound(t *testing.T) {
	s := services(t)
	ctx := context.Background()
	t1 := register(t, s)
	t2 := register(t, s)

	customer, err := s.Parties.Create(ctx, t2, entity.PartyCustomer, dto.CreatePartyRequest{Code: "CLI-B"})
	require.NoError(t, err)
	product, err := s.Catalog.CreateProduct(ctx, t2, dto.CreateProductRequest{SKU: "PRD-B", Name: "Tablero", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = s.Budgets.Create(ctx, t1, dto.CreateBudgetRequest{Code: "X-001", Title: "ajeno", CustomerID: &customer.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Budgets.Create(ctx, t1, dto.CreateBudgetRequest{Code: "X-002", Title: "ajeno", Items: []dto.BudgetItemInput{
		{ProductID: &product.ID, Description: "Tablero", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Services.Create(ctx, t1, dto.CreateServiceRequest{Code: "S-001", CustomerID: &customer.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Invoices.Create(ctx, t1, dto.CreateInvoiceRequest{Code: "F-001", CustomerID: &customer.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Las transacciones fallidas no dejan cabeceras huérfanas.
	list, err := s.Budgets.List(ctx, t1, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	own, err := s.Budgets.Create(ctx, t2, dto.CreateBudgetRequest{Code: "X-002", Title: "propio", CustomerID: &customer.ID, Items: []dto.BudgetItemInput{
		{ProductID: &product.ID, Description: "Tablero", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(10)},
	}})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, product.ID, *own.Items[0].ProductID)
}
