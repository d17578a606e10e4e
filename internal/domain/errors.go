package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrTenantInactive     = errors.New("tenant inactivo")

	// ErrInvalidAccess es el único error visible para un portador anónimo de un token
	// (share o confirmación). No distingue entre expirado, consumido o inexistente.
	ErrInvalidAccess = errors.New("acceso inválido")

	// ErrInvalidTransition se devuelve antes de cualquier escritura cuando la política
	// de ciclo de vida rechaza el cambio de estado.
	ErrInvalidTransition = errors.New("transición de estado no permitida")

	// ErrPersistence oculta el detalle de un fallo de escritura (p. ej. historial).
	ErrPersistence = errors.New("error de persistencia")
)
