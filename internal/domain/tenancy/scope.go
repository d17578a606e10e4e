// Package tenancy define el alcance de tenant que acompaña a cada operación de datos.
//
// El alcance se pasa siempre como argumento explícito (nunca como estado global) a los
// casos de uso y repositorios; los repositorios lo traducen en un predicado tenant_id.
package tenancy

import (
	"strings"

	"github.com/jhoicas/Gestion-api/internal/domain"
)

// Scope identifica al tenant y al usuario que originan una petición.
type Scope struct {
	TenantID string
	UserID   string // vacío para procesos del sistema o accesos anónimos por token
}

// New construye un Scope normalizando espacios.
func New(tenantID, userID string) Scope {
	return Scope{TenantID: strings.TrimSpace(tenantID), UserID: strings.TrimSpace(userID)}
}

// Validate exige un tenant; sin él ninguna consulta puede filtrarse.
func (s Scope) Validate() error {
	if s.TenantID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// Actor devuelve el usuario como puntero (nil si la acción es anónima o del sistema).
func (s Scope) Actor() *string {
	if s.UserID == "" {
		return nil
	}
	u := s.UserID
	return &u
}

// Owns informa si una fila con tenantID pertenece a este alcance.
func (s Scope) Owns(tenantID string) bool {
	return s.TenantID != "" && s.TenantID == tenantID
}
