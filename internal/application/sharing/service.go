// Package sharing emite y resuelve enlaces públicos de presupuestos y facturas.
// El token es la única credencial: quien lo posee ve el recurso sin autenticarse.
package sharing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	"github.com/jhoicas/Gestion-api/pkg/securetoken"
)

// maxTokenAttempts reintentos ante colisión de token; con 256 bits no debería pasar nunca.
const maxTokenAttempts = 3

// Settings vigencias y URL pública de los enlaces.
type Settings struct {
	DefaultTTL time.Duration
	MaxTTL     time.Duration
	PublicURL  string
}

// ShareUseCase emisión, acceso, respuesta y revocación de enlaces.
type ShareUseCase struct {
	repos    repository.Tx
	tx       repository.TxRunner
	lc       *commerce.Lifecycle
	metrics  ports.Metrics
	settings Settings
	log      zerolog.Logger
	now      func() time.Time
}

// NewShareUseCase construye el caso de uso. metrics nil = sin métricas.
func NewShareUseCase(repos repository.Tx, tx repository.TxRunner, lc *commerce.Lifecycle, metrics ports.Metrics, settings Settings, log zerolog.Logger) *ShareUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &ShareUseCase{repos: repos, tx: tx, lc: lc, metrics: metrics, settings: settings, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ShareUseCase) WithClock(now func() time.Time) *ShareUseCase {
	uc.now = now
	return uc
}

// Issue emite un enlace activo para un recurso del tenant. Sin permisos explícitos solo
// concede view; los enlaces de factura no admiten approve ni reject.
func (uc *ShareUseCase) Issue(ctx context.Context, scope tenancy.Scope, kind lifecycle.ShareKind, resourceID string, in dto.IssueShareRequest) (*dto.ShareResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de enlace %q", domain.ErrInvalidInput, kind)
	}
	perms, err := lifecycle.ParsePermissions(kind, in.Permissions)
	if err != nil {
		return nil, err
	}
	ttl := uc.settings.DefaultTTL
	if in.ExpiresInHours > 0 {
		ttl = time.Duration(in.ExpiresInHours) * time.Hour
	}
	if uc.settings.MaxTTL > 0 && ttl > uc.settings.MaxTTL {
		return nil, fmt.Errorf("%w: vigencia máxima %s", domain.ErrInvalidInput, uc.settings.MaxTTL)
	}
	now := uc.now()
	s := &entity.Share{
		ID:          uuid.New().String(),
		TenantID:    scope.TenantID,
		Kind:        kind,
		ResourceID:  resourceID,
		Status:      lifecycle.ShareActive,
		Permissions: perms,
		ExpiresAt:   now.Add(ttl),
		CreatedBy:   scope.Actor(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for attempt := 1; ; attempt++ {
		if s.Token, err = securetoken.Generate(); err != nil {
			return nil, err
		}
		err = uc.repos.Shares(kind).Create(ctx, s)
		if !errors.Is(err, domain.ErrDuplicate) || attempt == maxTokenAttempts {
			break
		}
		uc.log.Warn().Str("kind", string(kind)).Int("attempt", attempt).Msg("colisión de token de enlace")
	}
	if err != nil {
		return nil, err
	}
	return uc.toResponse(s), nil
}

// Access resuelve un token público: valida vigencia y permiso de lectura, registra el acceso
// y devuelve una vista de solo lectura del recurso. Cualquier rechazo es domain.ErrInvalidAccess;
// el motivo real solo va al log.
func (uc *ShareUseCase) Access(ctx context.Context, kind lifecycle.ShareKind, token string) (*dto.PublicShareView, error) {
	view, err := uc.access(ctx, kind, token)
	if err != nil {
		uc.metrics.ShareAccessed(kind, ports.OutcomeDenied)
		return nil, err
	}
	uc.metrics.ShareAccessed(kind, ports.OutcomeOK)
	return view, nil
}

func (uc *ShareUseCase) access(ctx context.Context, kind lifecycle.ShareKind, token string) (*dto.PublicShareView, error) {
	if !kind.Valid() || !securetoken.WellFormed(token) {
		return nil, uc.deny(kind, token, "token mal formado")
	}
	var view *dto.PublicShareView
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		s, err := tx.Shares(kind).GetByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		now := uc.now()
		switch {
		case s == nil:
			return uc.deny(kind, token, "token desconocido")
		case !s.Usable(now):
			return uc.deny(kind, token, "enlace expirado o revocado")
		case !s.Can(lifecycle.PermView):
			return uc.deny(kind, token, "enlace sin permiso de lectura")
		}
		view, err = resourceView(ctx, tx, s)
		if err != nil {
			return err
		}
		if view == nil {
			return uc.deny(kind, token, "el recurso ya no existe")
		}
		count, err := tx.Shares(kind).RegisterAccess(ctx, s.ID, now)
		if err != nil {
			return err
		}
		view.AccessCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Respond aprueba o rechaza un presupuesto compartido. El enlace y el presupuesto cambian
// de estado en la misma transacción, con historial share_response sin usuario.
func (uc *ShareUseCase) Respond(ctx context.Context, token string, approve bool, in dto.RespondShareRequest, client dto.ClientInfo) (*dto.StatusChangeResponse, error) {
	kind := lifecycle.ShareBudget
	if !securetoken.WellFormed(token) {
		return nil, uc.deny(kind, token, "token mal formado")
	}
	perm, shareStatus, budgetStatus := lifecycle.PermReject, lifecycle.ShareRejected, lifecycle.BudgetRejected
	if approve {
		perm, shareStatus, budgetStatus = lifecycle.PermApprove, lifecycle.ShareApproved, lifecycle.BudgetApproved
	}
	var t *commerce.Transition
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		s, err := tx.Shares(kind).GetByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		now := uc.now()
		switch {
		case s == nil:
			return uc.deny(kind, token, "token desconocido")
		case !s.Usable(now):
			return uc.deny(kind, token, "enlace expirado o revocado")
		case !s.Can(perm):
			return uc.deny(kind, token, "enlace sin permiso "+string(perm))
		case s.Status != lifecycle.ShareActive:
			return fmt.Errorf("%w: el enlace ya fue respondido", domain.ErrConflict)
		}
		t, err = uc.lc.Apply(ctx, tx, commerce.StatusChange{
			Scope:     tenancy.Scope{TenantID: s.TenantID},
			Kind:      lifecycle.KindBudget,
			EntityID:  s.ResourceID,
			To:        budgetStatus.String(),
			Action:    entity.ActionShareResponse,
			Comment:   in.Comment,
			IPAddress: client.IP,
			UserAgent: client.UserAgent,
		})
		if err != nil {
			return err
		}
		return tx.Shares(kind).SetStatus(ctx, s.ID, shareStatus, &now, now)
	})
	if err != nil {
		return nil, err
	}
	uc.lc.Publish(ctx, t)
	return &dto.StatusChangeResponse{
		Kind:      string(t.Kind),
		ID:        t.EntityID,
		OldStatus: t.From.String(),
		NewStatus: t.To.String(),
		HistoryID: t.History.ID,
		ChangedAt: t.History.CreatedAt,
	}, nil
}

// Revoke marca el enlace como expirado; el token deja de servir de inmediato.
func (uc *ShareUseCase) Revoke(ctx context.Context, scope tenancy.Scope, kind lifecycle.ShareKind, id string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.tx.Run(ctx, func(tx repository.Tx) error {
		s, err := tx.Shares(kind).GetByID(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		return tx.Shares(kind).SetStatus(ctx, s.ID, lifecycle.ShareExpired, s.RespondedAt, uc.now())
	})
}

// List lista los enlaces emitidos para un recurso del tenant.
func (uc *ShareUseCase) List(ctx context.Context, scope tenancy.Scope, kind lifecycle.ShareKind, resourceID string) ([]dto.ShareResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repos.Shares(kind).ListByResource(ctx, scope.TenantID, resourceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShareResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *uc.toResponse(s))
	}
	return out, nil
}

// PruneExpired borra los enlaces de ambos tipos que vencieron antes de before.
func (uc *ShareUseCase) PruneExpired(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	for _, kind := range []lifecycle.ShareKind{lifecycle.ShareBudget, lifecycle.ShareInvoice} {
		n, err := uc.repos.Shares(kind).DeleteExpired(ctx, before)
		if err != nil {
			return total, fmt.Errorf("prune %s shares: %w", kind, err)
		}
		total += n
	}
	return total, nil
}

func (uc *ShareUseCase) deny(kind lifecycle.ShareKind, token, reason string) error {
	uc.log.Info().Str("kind", string(kind)).Str("token_prefix", prefix(token)).Str("reason", reason).
		Msg("acceso a enlace rechazado")
	return domain.ErrInvalidAccess
}

// URL enlace público del token.
func (uc *ShareUseCase) URL(kind lifecycle.ShareKind, token string) string {
	return fmt.Sprintf("%s/public/%ss/view/%s", uc.settings.PublicURL, kind, token)
}

func (uc *ShareUseCase) toResponse(s *entity.Share) *dto.ShareResponse {
	perms := make([]string, 0, len(s.Permissions))
	for _, p := range s.Permissions {
		perms = append(perms, string(p))
	}
	return &dto.ShareResponse{
		ID:             s.ID,
		Kind:           string(s.Kind),
		ResourceID:     s.ResourceID,
		Token:          s.Token,
		URL:            uc.URL(s.Kind, s.Token),
		Status:         string(s.Status),
		Permissions:    perms,
		ExpiresAt:      s.ExpiresAt,
		AccessCount:    s.AccessCount,
		LastAccessedAt: s.LastAccessedAt,
		RespondedAt:    s.RespondedAt,
		CreatedAt:      s.CreatedAt,
	}
}

func prefix(token string) string {
	if len(token) > 6 {
		return token[:6]
	}
	return token
}
