package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
)

func TestTenantUseCase_ActivarYDesactivar(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Activo", "a@activo.co")
	uc := usecase.NewTenantUseCase(store.Tenants())
	ctx := context.Background()

	active, err := uc.IsActive(ctx, scope.TenantID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, uc.SetActive(ctx, scope.TenantID, false))
	active, err = uc.IsActive(ctx, scope.TenantID)
	require.NoError(t, err)
	assert.False(t, active)

	got, err := uc.GetByID(ctx, scope.TenantID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, uc.SetActive(ctx, "8b0f1a5e-0000-4000-8000-000000000000", true), domain.ErrNotFound)
	assert.ErrorIs(t, uc.SetActive(ctx, "", true), domain.ErrInvalidInput)

	missing, err := uc.IsActive(ctx, "8b0f1a5e-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.False(t, missing)
}

func TestTenantUseCase_ListPaginado(t *testing.T) {
	store := memstore.New()
	for _, name := range []string{"Uno", "Dos", "Tres"} {
		store.SeedTenant(name, name+"@t.co")
	}
	uc := usecase.NewTenantUseCase(store.Tenants())

	page, err := uc.List(context.Background(), dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Page.Limit)

	rest, err := uc.List(context.Background(), dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
}

func TestTenantUseCase_DeleteBorraSusDatos(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Borrar", "a@borrar.co")
	uc := usecase.NewTenantUseCase(store.Tenants())
	ctx := context.Background()

	require.NoError(t, uc.Delete(ctx, scope.TenantID))
	got, err := uc.GetByID(ctx, scope.TenantID)
	require.NoError(t, err)
	assert.Nil(t, got)
	u, err := store.Users().GetByID(ctx, scope.TenantID, scope.UserID)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserUseCase_CrearConRoles(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Usuarios", "admin@usuarios.co")
	roles := usecase.NewRoleUseCase(store, store)
	users := usecase.NewUserUseCase(store, store)
	ctx := context.Background()

	role, err := roles.CreateRole(ctx, scope, dto.CreateRoleRequest{
		Name: "Ventas", Permissions: []string{entity.PermBudgetsManage, entity.PermPartiesManage, entity.PermBudgetsManage},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.PermBudgetsManage, entity.PermPartiesManage}, role.Permissions)

	u, err := users.Create(ctx, scope, dto.CreateUserRequest{
		Email: " Vendedor@Usuarios.co", Password: "clave-segura", Name: "Vendedor", RoleIDs: []string{role.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "vendedor@usuarios.co", u.Email)

	seller := tenancy.New(scope.TenantID, u.ID)
	ok, err := roles.HasPermission(ctx, seller, entity.PermBudgetsManage)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = roles.HasPermission(ctx, seller, entity.PermTenantManage)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = users.Create(ctx, scope, dto.CreateUserRequest{Email: "vendedor@usuarios.co", Password: "clave-segura", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = users.Create(ctx, scope, dto.CreateUserRequest{Email: "corto@usuarios.co", Password: "123", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := users.List(ctx, scope, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUserUseCase_RolAjenoRevierteElAlta(t *testing.T) {
	store := memstore.New()
	a := store.SeedTenant("A", "admin@a.co")
	b := store.SeedTenant("B", "admin@b.co")
	roles := usecase.NewRoleUseCase(store, store)
	users := usecase.NewUserUseCase(store, store)
	ctx := context.Background()

	roleB, err := roles.CreateRole(ctx, b, dto.CreateRoleRequest{Name: "Solo B"})
	require.NoError(t, err)

	_, err = users.Create(ctx, a, dto.CreateUserRequest{Email: "x@a.co", Password: "clave-segura", Name: "x", RoleIDs: []string{roleB.ID}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, err := store.Users().GetByEmail(ctx, a.TenantID, "x@a.co")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserUseCase_GetByIDAislaTenants(t *testing.T) {
	store := memstore.New()
	a := store.SeedTenant("A", "admin@a.co")
	b := store.SeedTenant("B", "admin@b.co")
	users := usecase.NewUserUseCase(store, store)

	got, err := users.GetByID(context.Background(), b, a.UserID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRoleUseCase_PermisoDesconocidoNoCreaRol(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Roles", "admin@roles.co")
	roles := usecase.NewRoleUseCase(store, store)
	ctx := context.Background()

	_, err := roles.CreateRole(ctx, scope, dto.CreateRoleRequest{Name: "Raro", Permissions: []string{"rockets.launch"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := roles.ListRoles(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = roles.CreateRole(ctx, scope, dto.CreateRoleRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRoleUseCase_GrantYAssign(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Grant", "admin@grant.co")
	roles := usecase.NewRoleUseCase(store, store)
	ctx := context.Background()

	perms, err := roles.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, 13)

	role, err := roles.CreateRole(ctx, scope, dto.CreateRoleRequest{Name: "Auditor"})
	require.NoError(t, err)
	require.NoError(t, roles.GrantPermission(ctx, scope, role.ID, dto.GrantPermissionRequest{Permission: entity.PermAuditRead}))
	require.NoError(t, roles.AssignRole(ctx, scope, scope.UserID, dto.AssignRoleRequest{RoleID: role.ID}))

	got, err := roles.UserPermissions(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.PermAuditRead}, got)

	other := store.SeedTenant("Otro", "admin@otro.co")
	err = roles.GrantPermission(ctx, other, role.ID, dto.GrantPermissionRequest{Permission: entity.PermUsersManage})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
