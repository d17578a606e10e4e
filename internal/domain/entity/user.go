package entity

import "time"

// Estados válidos de User.
const (
	UserActive    = "active"
	UserInactive  = "inactive"
	UserSuspended = "suspended"
)

// User representa un usuario del sistema (pertenece a un Tenant).
type User struct {
	ID              string
	TenantID        string
	Email           string // único por tenant
	PasswordHash    string // bcrypt hash
	Name            string
	Status          string // active, inactive, suspended
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
