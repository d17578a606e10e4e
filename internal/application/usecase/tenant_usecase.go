package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// TenantUseCase administración de tenants. Es el único punto que conoce la regla de
// activación que aplica RequireActiveTenant.
type TenantUseCase struct {
	repo repository.TenantRepository
	now  func() time.Time
}

// NewTenantUseCase construye el caso de uso con el puerto de persistencia.
func NewTenantUseCase(repo repository.TenantRepository) *TenantUseCase {
	return &TenantUseCase{repo: repo, now: time.Now}
}

// GetByID obtiene un tenant. nil si no existe.
func (uc *TenantUseCase) GetByID(ctx context.Context, id string) (*dto.TenantResponse, error) {
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil || t == nil {
		return nil, err
	}
	r := toTenantResponse(t)
	return &r, nil
}

// List lista tenants con paginación.
func (uc *TenantUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.TenantListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.TenantListResponse{Items: make([]dto.TenantResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, t := range list {
		out.Items = append(out.Items, toTenantResponse(t))
	}
	return out, nil
}

// SetActive activa o desactiva un tenant. Desactivado, sus usuarios no pueden operar.
func (uc *TenantUseCase) SetActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return uc.repo.SetActive(ctx, id, active, uc.now())
}

// Delete elimina el tenant y todos sus datos.
func (uc *TenantUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return uc.repo.Delete(ctx, id)
}

// IsActive informa si el tenant existe y está activo.
// Devuelve error solo ante fallos de infraestructura.
func (uc *TenantUseCase) IsActive(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("tenant: id obligatorio")
	}
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return t != nil && t.IsActive, nil
}

func toTenantResponse(t *entity.Tenant) dto.TenantResponse {
	return dto.TenantResponse{ID: t.ID, Name: t.Name, IsActive: t.IsActive, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}
