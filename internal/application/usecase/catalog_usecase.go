package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// CatalogUseCase unidades, categorías y productos del tenant.
type CatalogUseCase struct {
	repo repository.CatalogRepository
	now  func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(repo repository.CatalogRepository) *CatalogUseCase {
	return &CatalogUseCase{repo: repo, now: time.Now}
}

// CreateUnit crea una unidad propia del tenant.
func (uc *CatalogUseCase) CreateUnit(ctx context.Context, scope tenancy.Scope, in dto.CreateUnitRequest) (*dto.UnitResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	tenantID := scope.TenantID
	u := &entity.Unit{ID: uuid.New().String(), TenantID: &tenantID, Code: tenancy.NormalizeCode(in.Code), Name: in.Name, CreatedAt: uc.now()}
	if u.Code == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.repo.CreateUnit(ctx, u); err != nil {
		return nil, err
	}
	return &dto.UnitResponse{ID: u.ID, Code: u.Code, Name: u.Name}, nil
}

// ListUnits lista unidades globales y del tenant.
func (uc *CatalogUseCase) ListUnits(ctx context.Context, scope tenancy.Scope) ([]dto.UnitResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListUnits(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnitResponse, 0, len(list))
	for _, u := range list {
		out = append(out, dto.UnitResponse{ID: u.ID, Code: u.Code, Name: u.Name, Global: u.Global()})
	}
	return out, nil
}

// CreateCategory crea una categoría; el padre debe ser del mismo tenant.
func (uc *CatalogUseCase) CreateCategory(ctx context.Context, scope tenancy.Scope, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	c := &entity.Category{
		ID: uuid.New().String(), TenantID: scope.TenantID, ParentID: in.ParentID,
		Code: tenancy.NormalizeCode(in.Code), Name: in.Name, CreatedAt: now, UpdatedAt: now,
	}
	if c.Code == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID, Code: c.Code, Name: c.Name, ParentID: c.ParentID}, nil
}

// ListCategories lista las categorías del tenant.
func (uc *CatalogUseCase) ListCategories(ctx context.Context, scope tenancy.Scope) ([]dto.CategoryResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListCategories(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryResponse{ID: c.ID, Code: c.Code, Name: c.Name, ParentID: c.ParentID})
	}
	return out, nil
}

// CreateProduct crea un producto. Devuelve domain.ErrDuplicate si el SKU ya existe en el tenant.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, scope tenancy.Scope, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	sku := tenancy.NormalizeCode(in.SKU)
	existing, err := uc.repo.GetProductBySKU(ctx, scope.TenantID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.now()
	p := &entity.Product{
		ID:          uuid.New().String(),
		TenantID:    scope.TenantID,
		CategoryID:  in.CategoryID,
		UnitID:      in.UnitID,
		SKU:         sku,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetProduct obtiene un producto del tenant. nil si no existe.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, scope tenancy.Scope, id string) (*dto.ProductResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetProduct(ctx, scope.TenantID, id)
	if err != nil || p == nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// ListProducts lista productos del tenant con paginación.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, scope tenancy.Scope, page dto.PageRequest) ([]dto.ProductResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListProducts(ctx, scope.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID: p.ID, SKU: p.SKU, Name: p.Name, Description: p.Description, Price: p.Price,
		CategoryID: p.CategoryID, UnitID: p.UnitID, IsActive: p.IsActive, CreatedAt: p.CreatedAt,
	}
}
