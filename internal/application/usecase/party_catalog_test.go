package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/testutil/memstore"
)

func TestPartyUseCase_CrearConSubregistros(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Clientes", "admin@clientes.co")
	uc := usecase.NewPartyUseCase(store.Parties())
	ctx := context.Background()

	p, err := uc.Create(ctx, scope, entity.PartyCustomer, dto.CreatePartyRequest{
		Code:       "cli-01",
		CommonData: &dto.CommonDataInput{PersonType: "company", Name: "Maderas SAS", TradeName: "Maderas"},
		Contact:    &dto.ContactInput{Email: "compras@maderas.co", Phone: "6011234567"},
	})
	require.NoError(t, err)
	assert.Equal(t, "CLI-01", p.Code)
	assert.Equal(t, "Maderas", p.Name)
	assert.Nil(t, p.Address)

	got, err := uc.GetByCode(ctx, scope, entity.PartyCustomer, "Cli-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	require.NotNil(t, got.Contact)
	assert.Equal(t, "compras@maderas.co", got.Contact.Email)

	require.NoError(t, uc.UpdateAddress(ctx, scope, entity.PartyCustomer, p.ID, dto.AddressInput{City: "Bogotá", Country: "CO"}))
	got, err = uc.GetByID(ctx, scope, entity.PartyCustomer, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Address)
	assert.Equal(t, "Bogotá", got.Address.City)

	provider, err := uc.GetByID(ctx, scope, entity.PartyProvider, p.ID)
	require.NoError(t, err)
	assert.Nil(t, provider, "clientes y proveedores son tablas distintas")
}

func TestPartyUseCase_CodigoYEmailUnicos(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Unicos", "admin@unicos.co")
	other := store.SeedTenant("Otro", "admin@otro.co")
	uc := usecase.NewPartyUseCase(store.Parties())
	ctx := context.Background()

	first, err := uc.Create(ctx, scope, entity.PartyProvider, dto.CreatePartyRequest{Code: "P1", Contact: &dto.ContactInput{Email: "ventas@p.co"}})
	require.NoError(t, err)

	_, err = uc.Create(ctx, scope, entity.PartyProvider, dto.CreatePartyRequest{Code: "p1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	second, err := uc.Create(ctx, scope, entity.PartyProvider, dto.CreatePartyRequest{Code: "P2"})
	require.NoError(t, err)
	err = uc.UpdateContact(ctx, scope, entity.PartyProvider, second.ID, dto.ContactInput{Email: "ventas@p.co"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Otro tenant puede repetir código y email.
	_, err = uc.Create(ctx, other, entity.PartyProvider, dto.CreatePartyRequest{Code: "P1", Contact: &dto.ContactInput{Email: "ventas@p.co"}})
	assert.NoError(t, err)

	// Tras el borrado lógico el email queda libre.
	require.NoError(t, uc.Delete(ctx, scope, entity.PartyProvider, first.ID))
	require.NoError(t, uc.UpdateContact(ctx, scope, entity.PartyProvider, second.ID, dto.ContactInput{Email: "ventas@p.co"}))

	gone, err := uc.GetByID(ctx, scope, entity.PartyProvider, first.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPartyUseCase_TipoInvalido(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Tipo", "admin@tipo.co")
	_, err := usecase.NewPartyUseCase(store.Parties()).Create(context.Background(), scope, entity.PartyKind("employee"), dto.CreatePartyRequest{Code: "E1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalogUseCase_UnidadesGlobalesYPropias(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Catálogo", "admin@catalogo.co")
	other := store.SeedTenant("Otro", "admin@otro.co")
	uc := usecase.NewCatalogUseCase(store.Catalog())
	ctx := context.Background()

	m2, err := uc.CreateUnit(ctx, scope, dto.CreateUnitRequest{Code: "m2", Name: "Metro cuadrado"})
	require.NoError(t, err)
	assert.Equal(t, "M2", m2.Code)

	_, err = uc.CreateUnit(ctx, scope, dto.CreateUnitRequest{Code: "M2", Name: "otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	units, err := uc.ListUnits(ctx, scope)
	require.NoError(t, err)
	require.Len(t, units, 4)
	assert.True(t, units[0].Global)
	assert.False(t, units[3].Global)
	assert.Equal(t, "M2", units[3].Code)

	others, err := uc.ListUnits(ctx, other)
	require.NoError(t, err)
	assert.Len(t, others, 3)
}

func TestCatalogUseCase_CategoriasYProductos(t *testing.T) {
	store := memstore.New()
	scope := store.SeedTenant("Productos", "admin@productos.co")
	other := store.SeedTenant("Otro", "admin@otro.co")
	uc := usecase.NewCatalogUseCase(store.Catalog())
	ctx := context.Background()

	root, err := uc.CreateCategory(ctx, scope, dto.CreateCategoryRequest{Code: "muebles", Name: "Muebles"})
	require.NoError(t, err)
	child, err := uc.CreateCategory(ctx, scope, dto.CreateCategoryRequest{Code: "sillas", Name: "Sillas", ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, *child.ParentID)

	_, err = uc.CreateCategory(ctx, other, dto.CreateCategoryRequest{Code: "x", Name: "x", ParentID: &root.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := uc.CreateProduct(ctx, scope, dto.CreateProductRequest{
		SKU: "sil-001", Name: "Silla roble", Price: decimal.RequireFromString("250000.50"), CategoryID: &child.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "SIL-001", p.SKU)
	assert.True(t, p.IsActive)
	assert.True(t, decimal.RequireFromString("250000.5").Equal(p.Price))

	_, err = uc.CreateProduct(ctx, scope, dto.CreateProductRequest{SKU: "SIL-001", Name: "dup"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.CreateProduct(ctx, scope, dto.CreateProductRequest{SKU: "NEG", Name: "neg", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateProduct(ctx, other, dto.CreateProductRequest{SKU: "X", Name: "x", CategoryID: &child.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.GetProduct(ctx, other, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := uc.ListProducts(ctx, scope, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
