package dto

import "time"

// RegisterTenantRequest alta de un tenant con su usuario administrador.
type RegisterTenantRequest struct {
	TenantName    string `json:"tenant_name" validate:"required,min=2,max=200"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
	AdminName     string `json:"admin_name" validate:"omitempty,max=200"`
}

// RegisterTenantResponse tenant creado y su administrador.
type RegisterTenantResponse struct {
	Tenant TenantResponse `json:"tenant"`
	Admin  UserResponse   `json:"admin"`
}

// CreateUserRequest entrada para crear un usuario dentro del tenant (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Name     string   `json:"name" validate:"required,min=1,max=200"`
	RoleIDs  []string `json:"role_ids" validate:"omitempty,dive,uuid"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LoginRequest entrada para login. TenantID solo es necesario si el email existe en varios tenants.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TenantID string `json:"tenant_id" validate:"omitempty,uuid"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// TokenRequest cuerpo con un token de confirmación.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// PasswordResetRequest solicitud de restablecimiento de contraseña.
type PasswordResetRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
	Email    string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest nueva contraseña con el token recibido por email.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateRoleRequest entrada para crear un rol.
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Permissions []string `json:"permissions"`
}

// GrantPermissionRequest permiso a añadir a un rol.
type GrantPermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

// AssignRoleRequest rol a asignar a un usuario.
type AssignRoleRequest struct {
	RoleID string `json:"role_id" validate:"required,uuid"`
}

// RoleResponse rol con sus permisos.
type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// PermissionResponse permiso del catálogo global.
type PermissionResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
