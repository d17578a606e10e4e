package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// ScheduleUseCase citas de servicios.
type ScheduleUseCase struct {
	repos repository.Tx
	now   func() time.Time
}

// NewScheduleUseCase construye el caso de uso.
func NewScheduleUseCase(repos repository.Tx) *ScheduleUseCase {
	return &ScheduleUseCase{repos: repos, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ScheduleUseCase) WithClock(now func() time.Time) *ScheduleUseCase {
	uc.now = now
	return uc
}

// Create agenda una cita para un servicio del tenant.
func (uc *ScheduleUseCase) Create(ctx context.Context, scope tenancy.Scope, in dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, fmt.Errorf("%w: la cita debe terminar después de empezar", domain.ErrInvalidInput)
	}
	now := uc.now()
	s := &entity.Schedule{
		ID:        uuid.New().String(),
		TenantID:  scope.TenantID,
		ServiceID: in.ServiceID,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		Status:    lifecycle.SchedulePending,
		Notes:     in.Notes,
		CreatedBy: scope.Actor(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repos.Schedules().Create(ctx, s); err != nil {
		return nil, err
	}
	return toScheduleResponse(s), nil
}

// GetByID obtiene una cita. nil si no existe.
func (uc *ScheduleUseCase) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*dto.ScheduleResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	s, err := uc.repos.Schedules().GetByID(ctx, scope.TenantID, id)
	if err != nil || s == nil {
		return nil, err
	}
	return toScheduleResponse(s), nil
}

// ListByService lista las citas de un servicio en orden cronológico.
func (uc *ScheduleUseCase) ListByService(ctx context.Context, scope tenancy.Scope, serviceID string) ([]dto.ScheduleResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repos.Schedules().ListByService(ctx, scope.TenantID, serviceID)
	if err != nil {
		return nil, err
	}
	return toScheduleResponses(list), nil
}

// ListBetween lista las citas que se solapan con [from, to).
func (uc *ScheduleUseCase) ListBetween(ctx context.Context, scope tenancy.Scope, from, to time.Time) ([]dto.ScheduleResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: rango vacío", domain.ErrInvalidInput)
	}
	list, err := uc.repos.Schedules().ListBetween(ctx, scope.TenantID, from, to)
	if err != nil {
		return nil, err
	}
	return toScheduleResponses(list), nil
}

func toScheduleResponses(list []*entity.Schedule) []dto.ScheduleResponse {
	out := make([]dto.ScheduleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toScheduleResponse(s))
	}
	return out
}

func toScheduleResponse(s *entity.Schedule) *dto.ScheduleResponse {
	return &dto.ScheduleResponse{
		ID:        s.ID,
		ServiceID: s.ServiceID,
		StartsAt:  s.StartsAt,
		EndsAt:    s.EndsAt,
		Status:    string(s.Status),
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
	}
}
