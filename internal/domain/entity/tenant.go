package entity

import "time"

// Tenant organización aislada; raíz de toda la partición de datos.
type Tenant struct {
	ID        string
	Name      string // único en todo el sistema
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
