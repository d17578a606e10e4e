package entity

import (
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// Share enlace público de un presupuesto o factura. Su estado es independiente del
// estado del recurso: un presupuesto puede estar aprobado con el enlace expirado.
type Share struct {
	ID             string
	TenantID       string
	Kind           lifecycle.ShareKind
	ResourceID     string
	Token          string // credencial opaca, única en todo el sistema
	Status         lifecycle.ShareStatus
	Permissions    []lifecycle.Permission
	ExpiresAt      time.Time
	AccessCount    int
	LastAccessedAt *time.Time
	RespondedAt    *time.Time
	CreatedBy      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Can informa si el portador puede ejecutar la acción p.
func (s *Share) Can(p lifecycle.Permission) bool {
	for _, have := range s.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Usable informa si el enlace sigue vigente en now.
func (s *Share) Usable(now time.Time) bool {
	return s.Status.Viewable() && !lifecycle.Expired(s.ExpiresAt, now)
}
