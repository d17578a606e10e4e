package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.ConfirmationTokenRepository = (*ConfirmationTokenRepo)(nil)

// ConfirmationTokenRepo tabla user_confirmation_tokens.
type ConfirmationTokenRepo struct {
	q Querier
}

// NewConfirmationTokenRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConfirmationTokenRepository(q Querier) *ConfirmationTokenRepo {
	return &ConfirmationTokenRepo{q: q}
}

// Create persiste un token; el usuario debe ser del tenant.
func (r *ConfirmationTokenRepo) Create(ctx context.Context, t *entity.ConfirmationToken) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO user_confirmation_tokens (id, tenant_id, user_id, token, type, expires_at, consumed_at, metadata, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE EXISTS (SELECT 1 FROM users WHERE tenant_id = $2 AND id = $3)`,
		t.ID, t.TenantID, t.UserID, t.Token, t.Type, t.ExpiresAt, t.ConsumedAt, jsonArg(t.Metadata), t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert confirmation token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByTokenForUpdate busca por token y bloquea la fila.
func (r *ConfirmationTokenRepo) GetByTokenForUpdate(ctx context.Context, token string) (*entity.ConfirmationToken, error) {
	var t entity.ConfirmationToken
	var metadata []byte
	err := r.q.QueryRow(ctx, `
		SELECT id, tenant_id, user_id, token, type, expires_at, consumed_at, metadata, created_at
		FROM user_confirmation_tokens WHERE token = $1 FOR UPDATE`, token).
		Scan(&t.ID, &t.TenantID, &t.UserID, &t.Token, &t.Type, &t.ExpiresAt, &t.ConsumedAt, &metadata, &t.CreatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get confirmation token: %w", err)
	}
	t.Metadata = metadata
	return &t, nil
}

// MarkConsumed fija consumed_at solo si seguía vacío.
func (r *ConfirmationTokenRepo) MarkConsumed(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE user_confirmation_tokens SET consumed_at = $2
		WHERE id = $1 AND consumed_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("consume confirmation token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// DeleteExpired elimina tokens caducados o consumidos antes de before.
func (r *ConfirmationTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM user_confirmation_tokens WHERE expires_at <= $1 OR consumed_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune confirmation tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
