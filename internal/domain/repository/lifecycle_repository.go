package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// StatusRepository acceso genérico a la columna status de una tabla con ciclo de vida.
type StatusRepository interface {
	// LockStatus bloquea la fila (SELECT … FOR UPDATE) y devuelve su estado.
	// domain.ErrNotFound si la fila no existe en el tenant.
	LockStatus(ctx context.Context, tenantID, id string) (string, error)
	SetStatus(ctx context.Context, tenantID, id, status string, at time.Time) error
}

// ActionHistoryRepository tablas de historial append-only (<kind>_action_history).
type ActionHistoryRepository interface {
	Append(ctx context.Context, e *entity.ActionHistoryEntry) error
	List(ctx context.Context, tenantID, entityID string, limit, offset int) ([]*entity.ActionHistoryEntry, error)
}

// ConfirmableRepository referencia al token de confirmación que bloquea una acción.
type ConfirmableRepository interface {
	// PendingToken devuelve el id del token pendiente (nil si no hay). Usar tras LockStatus.
	PendingToken(ctx context.Context, tenantID, id string) (*string, error)
	SetPendingToken(ctx context.Context, tenantID, id, tokenID string, at time.Time) error
	// ClearPendingToken borra la referencia y marca confirmed_at.
	ClearPendingToken(ctx context.Context, tenantID, id string, confirmedAt time.Time) error
}

// ShareRepository enlaces públicos de un tipo de recurso (budget_shares, invoice_shares).
type ShareRepository interface {
	// Create devuelve domain.ErrDuplicate si el token ya existe.
	Create(ctx context.Context, s *entity.Share) error
	// GetByTokenForUpdate busca por token (sin tenant: el token es la credencial) y bloquea la fila.
	GetByTokenForUpdate(ctx context.Context, token string) (*entity.Share, error)
	GetByID(ctx context.Context, tenantID, id string) (*entity.Share, error)
	ListByResource(ctx context.Context, tenantID, resourceID string) ([]*entity.Share, error)
	// RegisterAccess incrementa access_count en 1 y fija last_accessed_at; devuelve el nuevo contador.
	RegisterAccess(ctx context.Context, id string, at time.Time) (int, error)
	SetStatus(ctx context.Context, id string, status lifecycle.ShareStatus, respondedAt *time.Time, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ConfirmationTokenRepository tokens de confirmación (user_confirmation_tokens).
type ConfirmationTokenRepository interface {
	Create(ctx context.Context, t *entity.ConfirmationToken) error
	GetByTokenForUpdate(ctx context.Context, token string) (*entity.ConfirmationToken, error)
	// MarkConsumed solo actúa si consumed_at es NULL; si no, domain.ErrConflict.
	MarkConsumed(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
