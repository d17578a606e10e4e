package dto

import "time"

// TenantResponse salida de un tenant.
type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantListResponse listado paginado de tenants.
type TenantListResponse struct {
	Items []TenantResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// SetTenantActiveRequest activa o desactiva un tenant.
type SetTenantActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}
