package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/monitoring"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// ServiceUseCase casos de uso de órdenes de servicio.
type ServiceUseCase struct {
	repos repository.Tx
	tx    repository.TxRunner
	now   func() time.Time
}

// NewServiceUseCase construye el caso de uso.
func NewServiceUseCase(repos repository.Tx, tx repository.TxRunner) *ServiceUseCase {
	return &ServiceUseCase{repos: repos, tx: tx, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ServiceUseCase) WithClock(now func() time.Time) *ServiceUseCase {
	uc.now = now
	return uc
}

// Create crea un servicio en scheduled. Con BudgetID hereda cliente y total del presupuesto
// cuando no se envían; el presupuesto debe pertenecer al tenant.
func (uc *ServiceUseCase) Create(ctx context.Context, scope tenancy.Scope, in dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	code := tenancy.NormalizeCode(in.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: código requerido", domain.ErrInvalidInput)
	}
	if in.Total != nil && in.Total.IsNegative() {
		return nil, fmt.Errorf("%w: total negativo", domain.ErrInvalidInput)
	}
	now := uc.now()
	s := &entity.Service{
		ID:          uuid.New().String(),
		TenantID:    scope.TenantID,
		BudgetID:    in.BudgetID,
		CustomerID:  in.CustomerID,
		Code:        code,
		Description: in.Description,
		Status:      lifecycle.ServiceScheduled,
		Total:       decimal.Zero,
		CreatedBy:   scope.Actor(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Total != nil {
		s.Total = *in.Total
	}
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		if in.BudgetID != nil {
			b, err := tx.Budgets().GetByID(ctx, scope.TenantID, *in.BudgetID)
			if err != nil {
				return err
			}
			if b == nil {
				return domain.ErrNotFound
			}
			if s.CustomerID == nil {
				s.CustomerID = b.CustomerID
			}
			if in.Total == nil {
				s.Total = b.Total
			}
		}
		if err := tx.Services().Create(ctx, s); err != nil {
			return err
		}
		return tx.Activities().Append(ctx, monitoring.NewActivity(scope, "service.created", string(lifecycle.KindService), s.ID,
			fmt.Sprintf("Servicio %s creado", s.Code), now))
	})
	if err != nil {
		return nil, err
	}
	return toServiceResponse(s), nil
}

// GetByID obtiene un servicio del tenant. nil si no existe.
func (uc *ServiceUseCase) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*dto.ServiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	s, err := uc.repos.Services().GetByID(ctx, scope.TenantID, id)
	if err != nil || s == nil {
		return nil, err
	}
	return toServiceResponse(s), nil
}

// GetByCode obtiene un servicio por código. nil si no existe.
func (uc *ServiceUseCase) GetByCode(ctx context.Context, scope tenancy.Scope, code string) (*dto.ServiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	s, err := uc.repos.Services().GetByCode(ctx, scope.TenantID, tenancy.NormalizeCode(code))
	if err != nil || s == nil {
		return nil, err
	}
	return toServiceResponse(s), nil
}

// List lista servicios, opcionalmente por estado.
func (uc *ServiceUseCase) List(ctx context.Context, scope tenancy.Scope, status string, page dto.PageRequest) ([]dto.ServiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if status != "" {
		if _, err := lifecycle.Parse(lifecycle.KindService, status); err != nil {
			return nil, err
		}
	}
	page.DefaultPage()
	list, err := uc.repos.Services().List(ctx, scope.TenantID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ServiceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toServiceResponse(s))
	}
	return out, nil
}

// Delete elimina el servicio; sus citas caen en cascada.
func (uc *ServiceUseCase) Delete(ctx context.Context, scope tenancy.Scope, id string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repos.Services().Delete(ctx, scope.TenantID, id)
}

func toServiceResponse(s *entity.Service) *dto.ServiceResponse {
	return &dto.ServiceResponse{
		ID:                  s.ID,
		Code:                s.Code,
		BudgetID:            s.BudgetID,
		CustomerID:          s.CustomerID,
		Description:         s.Description,
		Status:              string(s.Status),
		Total:               s.Total,
		PendingConfirmation: s.ConfirmationTokenID != nil,
		ConfirmedAt:         s.ConfirmedAt,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}
