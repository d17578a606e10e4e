package usecase

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// RoleUseCase RBAC: roles del tenant y permisos del catálogo global.
type RoleUseCase struct {
	repos repository.Tx
	tx    repository.TxRunner
	now   func() time.Time
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(repos repository.Tx, tx repository.TxRunner) *RoleUseCase {
	return &RoleUseCase{repos: repos, tx: tx, now: time.Now}
}

// ListPermissions lista el catálogo global de permisos.
func (uc *RoleUseCase) ListPermissions(ctx context.Context) ([]dto.PermissionResponse, error) {
	list, err := uc.repos.Roles().ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.PermissionResponse{Name: p.Name, Description: p.Description})
	}
	return out, nil
}

// CreateRole crea un rol con sus permisos iniciales en una transacción.
func (uc *RoleUseCase) CreateRole(ctx context.Context, scope tenancy.Scope, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	role := &entity.Role{
		ID: uuid.New().String(), TenantID: scope.TenantID, Name: name, Description: in.Description,
		CreatedAt: now, UpdatedAt: now,
	}
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		if err := tx.Roles().CreateRole(ctx, role); err != nil {
			return err
		}
		for _, p := range in.Permissions {
			if err := tx.Roles().GrantPermission(ctx, scope.TenantID, role.ID, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	role.Permissions = slices.Sorted(slices.Values(in.Permissions))
	role.Permissions = slices.Compact(role.Permissions)
	return toRoleResponse(role), nil
}

// ListRoles lista los roles del tenant.
func (uc *RoleUseCase) ListRoles(ctx context.Context, scope tenancy.Scope) ([]dto.RoleResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repos.Roles().ListRoles(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toRoleResponse(r))
	}
	return out, nil
}

// GrantPermission añade un permiso a un rol del tenant.
func (uc *RoleUseCase) GrantPermission(ctx context.Context, scope tenancy.Scope, roleID string, in dto.GrantPermissionRequest) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repos.Roles().GrantPermission(ctx, scope.TenantID, roleID, in.Permission)
}

// AssignRole asigna un rol del tenant a un usuario del tenant.
func (uc *RoleUseCase) AssignRole(ctx context.Context, scope tenancy.Scope, userID string, in dto.AssignRoleRequest) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repos.Roles().AssignRole(ctx, scope.TenantID, userID, in.RoleID)
}

// UserPermissions permisos efectivos del usuario del scope.
func (uc *RoleUseCase) UserPermissions(ctx context.Context, scope tenancy.Scope) ([]string, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return uc.repos.Roles().UserPermissions(ctx, scope.TenantID, scope.UserID)
}

// HasPermission informa si el usuario del scope tiene el permiso.
func (uc *RoleUseCase) HasPermission(ctx context.Context, scope tenancy.Scope, permission string) (bool, error) {
	perms, err := uc.UserPermissions(ctx, scope)
	if err != nil {
		return false, err
	}
	return slices.Contains(perms, permission), nil
}

func toRoleResponse(r *entity.Role) *dto.RoleResponse {
	perms := r.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &dto.RoleResponse{ID: r.ID, Name: r.Name, Description: r.Description, Permissions: perms, CreatedAt: r.CreatedAt}
}
