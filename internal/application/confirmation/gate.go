// Package confirmation implementa los tokens de un solo uso: verificación de email,
// restablecimiento de contraseña y confirmación de cambios de estado.
package confirmation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/securetoken"
)

// Settings vigencia por tipo de token y URL base de los enlaces enviados por email.
type Settings struct {
	EmailVerificationTTL time.Duration
	PasswordResetTTL     time.Duration
	ActionTTL            time.Duration
	PublicURL            string
}

// Gate emite y consume tokens de confirmación.
type Gate struct {
	repos    repository.Tx
	tx       repository.TxRunner
	settings Settings
	log      zerolog.Logger
	now      func() time.Time
}

// NewGate construye el servicio.
func NewGate(repos repository.Tx, tx repository.TxRunner, settings Settings, log zerolog.Logger) *Gate {
	return &Gate{repos: repos, tx: tx, settings: settings, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Now hora actual según el reloj configurado.
func (g *Gate) Now() time.Time { return g.now() }

// TTL vigencia de un tipo de token.
func (g *Gate) TTL(typ string) time.Duration {
	switch typ {
	case entity.ConfirmEmailVerification:
		return g.settings.EmailVerificationTTL
	case entity.ConfirmPasswordReset:
		return g.settings.PasswordResetTTL
	default:
		return g.settings.ActionTTL
	}
}

// Link URL pública para canjear un token.
func (g *Gate) Link(path, token string) string {
	return fmt.Sprintf("%s/%s/%s", g.settings.PublicURL, path, token)
}

// IssueTx emite un token dentro de la transacción del caller. metadata puede ser nil.
func (g *Gate) IssueTx(ctx context.Context, tx repository.Tx, tenantID, userID, typ string, metadata any) (*entity.ConfirmationToken, error) {
	if !entity.ValidConfirmationType(typ) {
		return nil, fmt.Errorf("%w: tipo de token %q", domain.ErrInvalidInput, typ)
	}
	token, err := securetoken.Generate()
	if err != nil {
		return nil, err
	}
	now := g.now()
	t := &entity.ConfirmationToken{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		UserID:    userID,
		Token:     token,
		Type:      typ,
		ExpiresAt: now.Add(g.TTL(typ)),
		CreatedAt: now,
	}
	if metadata != nil {
		if t.Metadata, err = json.Marshal(metadata); err != nil {
			return nil, fmt.Errorf("encode token metadata: %w", err)
		}
	}
	if err := tx.ConfirmationTokens().Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Issue emite un token en su propia escritura.
func (g *Gate) Issue(ctx context.Context, tenantID, userID, typ string, metadata any) (*entity.ConfirmationToken, error) {
	return g.IssueTx(ctx, g.repos, tenantID, userID, typ, metadata)
}

// ConsumeTx valida y marca como usado un token del tipo esperado, bloqueando su fila.
// Todo rechazo es domain.ErrInvalidAccess; el motivo solo va al log.
func (g *Gate) ConsumeTx(ctx context.Context, tx repository.Tx, token, typ string) (*entity.ConfirmationToken, error) {
	if !securetoken.WellFormed(token) {
		return nil, g.deny(typ, token, "token mal formado")
	}
	t, err := tx.ConfirmationTokens().GetByTokenForUpdate(ctx, token)
	if err != nil {
		return nil, err
	}
	now := g.now()
	switch {
	case t == nil:
		return nil, g.deny(typ, token, "token desconocido")
	case t.Type != typ:
		return nil, g.deny(typ, token, "tipo de token distinto")
	case t.ConsumedAt != nil:
		return nil, g.deny(typ, token, "token ya usado")
	case !t.Usable(now):
		return nil, g.deny(typ, token, "token expirado")
	}
	if err := tx.ConfirmationTokens().MarkConsumed(ctx, t.ID, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, g.deny(typ, token, "token usado concurrentemente")
		}
		return nil, err
	}
	t.ConsumedAt = &now
	return t, nil
}

// Consume valida y marca un token en su propia transacción.
func (g *Gate) Consume(ctx context.Context, token, typ string) (*entity.ConfirmationToken, error) {
	var t *entity.ConfirmationToken
	err := g.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		t, err = g.ConsumeTx(ctx, tx, token, typ)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// PruneExpired borra los tokens vencidos o consumidos antes de before.
func (g *Gate) PruneExpired(ctx context.Context, before time.Time) (int64, error) {
	return g.repos.ConfirmationTokens().DeleteExpired(ctx, before)
}

func (g *Gate) deny(typ, token, reason string) error {
	p := token
	if len(p) > 6 {
		p = p[:6]
	}
	g.log.Info().Str("type", typ).Str("token_prefix", p).Str("reason", reason).Msg("token de confirmación rechazado")
	return domain.ErrInvalidAccess
}
