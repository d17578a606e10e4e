package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// UserUseCase aplica reglas de negocio para usuarios del tenant.
type UserUseCase struct {
	repos repository.Tx
	tx    repository.TxRunner
	now   func() time.Time
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repos repository.Tx, tx repository.TxRunner) *UserUseCase {
	return &UserUseCase{repos: repos, tx: tx, now: time.Now}
}

// Create crea un usuario en el tenant del scope y le asigna los roles indicados.
// Devuelve domain.ErrEmailAlreadyExists si el email ya existe en el tenant.
func (uc *UserUseCase) Create(ctx context.Context, scope tenancy.Scope, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: contraseña demasiado corta", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     scope.TenantID,
		Email:        tenancy.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		Name:         in.Name,
		Status:       entity.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.tx.Run(ctx, func(tx repository.Tx) error {
		existing, err := tx.Users().GetByEmail(ctx, scope.TenantID, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailAlreadyExists
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		for _, roleID := range in.RoleIDs {
			if err := tx.Roles().AssignRole(ctx, scope.TenantID, user.ID, roleID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario del tenant. nil si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*dto.UserResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	user, err := uc.repos.Users().GetByID(ctx, scope.TenantID, id)
	if err != nil || user == nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// List lista los usuarios del tenant.
func (uc *UserUseCase) List(ctx context.Context, scope tenancy.Scope, page dto.PageRequest) ([]dto.UserResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repos.Users().ListByTenant(ctx, scope.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *entityToUserResponse(u))
	}
	return out, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:            u.ID,
		TenantID:      u.TenantID,
		Email:         u.Email,
		Name:          u.Name,
		Status:        u.Status,
		EmailVerified: u.EmailVerifiedAt != nil,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
