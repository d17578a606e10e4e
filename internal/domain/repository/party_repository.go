package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// PartyRepository puerto de clientes y proveedores con sus subregistros 1:1.
// Las filas eliminadas lógicamente no son visibles.
type PartyRepository interface {
	// Create persiste la cabecera y los subregistros no nil.
	Create(ctx context.Context, p *entity.Party) error
	GetByID(ctx context.Context, kind entity.PartyKind, tenantID, id string) (*entity.Party, error)
	GetByCode(ctx context.Context, kind entity.PartyKind, tenantID, code string) (*entity.Party, error)
	List(ctx context.Context, kind entity.PartyKind, tenantID string, limit, offset int) ([]*entity.Party, error)
	UpsertCommonData(ctx context.Context, kind entity.PartyKind, tenantID, partyID string, d *entity.PartyCommonData) error
	UpsertContact(ctx context.Context, kind entity.PartyKind, tenantID, partyID string, c *entity.PartyContact) error
	UpsertAddress(ctx context.Context, kind entity.PartyKind, tenantID, partyID string, a *entity.PartyAddress) error
	// SoftDelete devuelve domain.ErrNotFound si la parte no existe (o ya estaba eliminada).
	SoftDelete(ctx context.Context, kind entity.PartyKind, tenantID, id string, at time.Time) error
}

// CatalogRepository puerto de unidades, categorías y productos.
type CatalogRepository interface {
	CreateUnit(ctx context.Context, u *entity.Unit) error
	// ListUnits devuelve las unidades globales y las del tenant.
	ListUnits(ctx context.Context, tenantID string) ([]*entity.Unit, error)
	CreateCategory(ctx context.Context, c *entity.Category) error
	ListCategories(ctx context.Context, tenantID string) ([]*entity.Category, error)
	CreateProduct(ctx context.Context, p *entity.Product) error
	GetProduct(ctx context.Context, tenantID, id string) (*entity.Product, error)
	GetProductBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error)
	ListProducts(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error)
}

// ContactLookup resuelve el destinatario (email y nombre del cliente) de una entidad con estado.
type ContactLookup interface {
	// ForSubject devuelve "" sin error si la entidad no tiene cliente o el cliente no tiene email.
	ForSubject(ctx context.Context, kind lifecycle.Kind, tenantID, id string) (email, name string, err error)
}
