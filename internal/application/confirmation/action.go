package confirmation

import (
	"context"
	"encoding/json"
	"fmt"

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
)

// ActionUseCase cambios de estado que exigen confirmación por email del usuario.
type ActionUseCase struct {
	gate *Gate
	tx   repository.TxRunner
	lc   *commerce.Lifecycle
	mail ports.EmailEnqueuer
	log  zerolog.Logger
}

// NewActionUseCase construye el caso de uso. mail puede ser nil (no se envía el enlace).
func NewActionUseCase(gate *Gate, tx repository.TxRunner, lc *commerce.Lifecycle, mail ports.EmailEnqueuer, log zerolog.Logger) *ActionUseCase {
	return &ActionUseCase{gate: gate, tx: tx, lc: lc, mail: mail, log: log}
}

// RequestStatusChange deja pendiente un cambio de estado de un presupuesto o servicio. La
// transición se valida ahora; el estado no cambia hasta que se canjea el token enviado.
// Una nueva solicitud reemplaza a la anterior.
func (uc *ActionUseCase) RequestStatusChange(ctx context.Context, scope tenancy.Scope, kind lifecycle.Kind, id string, in dto.ChangeStatusRequest) (*dto.ConfirmationRequestedResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if scope.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if kind != lifecycle.KindBudget && kind != lifecycle.KindService {
		return nil, fmt.Errorf("%w: %s no admite confirmación", domain.ErrInvalidInput, kind)
	}
	var (
		tok  *entity.ConfirmationToken
		user *entity.User
	)
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		current, err := tx.Statuses(kind).LockStatus(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if _, _, err := uc.lc.Check(kind, current, in.Status); err != nil {
			return err
		}
		if user, err = tx.Users().GetByID(ctx, scope.TenantID, scope.UserID); err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUnauthorized
		}
		pending := entity.PendingAction{Kind: kind, EntityID: id, Status: in.Status, Comment: in.Comment}
		if tok, err = uc.gate.IssueTx(ctx, tx, scope.TenantID, scope.UserID, entity.ConfirmActionConfirmation, pending); err != nil {
			return err
		}
		now := uc.gate.Now()
		if err := tx.Confirmables(kind).SetPendingToken(ctx, scope.TenantID, id, tok.ID, now); err != nil {
			return err
		}
		meta, _ := json.Marshal(map[string]string{"requested_status": in.Status})
		old := current
		h := &entity.ActionHistoryEntry{
			ID:          uuid.New().String(),
			TenantID:    scope.TenantID,
			Kind:        kind,
			EntityID:    id,
			UserID:      scope.Actor(),
			Action:      entity.ActionConfirmationRequested,
			OldStatus:   &old,
			Description: in.Comment,
			Metadata:    meta,
			CreatedAt:   now,
		}
		if err := tx.History(kind).Append(ctx, h); err != nil {
			uc.log.Error().Err(err).Str("kind", string(kind)).Str("entity_id", id).Msg("fallo al escribir historial de confirmación")
			return domain.ErrPersistence
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.sendLink(ctx, scope.TenantID, user, kind, in.Status, tok)
	return &dto.ConfirmationRequestedResponse{Kind: string(kind), ID: id, Status: in.Status, ExpiresAt: tok.ExpiresAt}, nil
}

// Confirm canjea el token de una acción pendiente y aplica el cambio con su historial. El
// registro debe seguir apuntando a este token; uno reemplazado ya no sirve.
func (uc *ActionUseCase) Confirm(ctx context.Context, token string, client dto.ClientInfo) (*dto.StatusChangeResponse, error) {
	var t *commerce.Transition
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		tok, err := uc.gate.ConsumeTx(ctx, tx, token, entity.ConfirmActionConfirmation)
		if err != nil {
			return err
		}
		var pending entity.PendingAction
		if err := json.Unmarshal(tok.Metadata, &pending); err != nil || !pending.Kind.Valid() {
			return uc.gate.deny(entity.ConfirmActionConfirmation, token, "metadata de acción ilegible")
		}
		conf := tx.Confirmables(pending.Kind)
		if conf == nil {
			return uc.gate.deny(entity.ConfirmActionConfirmation, token, "tipo sin confirmación")
		}
		if _, err := tx.Statuses(pending.Kind).LockStatus(ctx, tok.TenantID, pending.EntityID); err != nil {
			return err
		}
		ref, err := conf.PendingToken(ctx, tok.TenantID, pending.EntityID)
		if err != nil {
			return err
		}
		if ref == nil || *ref != tok.ID {
			return uc.gate.deny(entity.ConfirmActionConfirmation, token, "acción reemplazada o ya resuelta")
		}
		t, err = uc.lc.Apply(ctx, tx, commerce.StatusChange{
			Scope:     tenancy.New(tok.TenantID, tok.UserID),
			Kind:      pending.Kind,
			EntityID:  pending.EntityID,
			To:        pending.Status,
			Action:    entity.ActionConfirmed,
			Comment:   pending.Comment,
			IPAddress: client.IP,
			UserAgent: client.UserAgent,
		})
		if err != nil {
			return err
		}
		return conf.ClearPendingToken(ctx, tok.TenantID, pending.EntityID, t.History.CreatedAt)
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

// sendLink encola el email con el enlace. Un fallo solo se registra: la acción queda
// pendiente y puede solicitarse de nuevo.
func (uc *ActionUseCase) sendLink(ctx context.Context, tenantID string, user *entity.User, kind lifecycle.Kind, to string, tok *entity.ConfirmationToken) {
	if uc.mail == nil {
		return
	}
	link := uc.gate.Link("public/confirm", tok.Token)
	m := ports.Message{
		To:      user.Email,
		ToName:  user.Name,
		Subject: fmt.Sprintf("Confirma el cambio de %s a %s", kind, to),
		Text:    fmt.Sprintf("Para confirmar el cambio de estado a %q abre este enlace antes de %s:\n%s\n", to, tok.ExpiresAt.Format("2006-01-02 15:04 MST"), link),
	}
	if err := uc.mail.EnqueueMessage(ctx, tenantID, m); err != nil {
		uc.log.Error().Err(err).Str("tenant_id", tenantID).Str("kind", string(kind)).Msg("no se pudo encolar el email de confirmación")
	}
}
