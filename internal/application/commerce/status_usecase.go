package commerce

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// StatusUseCase cambio de estado e historial de cualquier entidad con ciclo de vida.
type StatusUseCase struct {
	repos repository.Tx
	tx    repository.TxRunner
	lc    *Lifecycle
}

// NewStatusUseCase construye el caso de uso.
func NewStatusUseCase(repos repository.Tx, tx repository.TxRunner, lc *Lifecycle) *StatusUseCase {
	return &StatusUseCase{repos: repos, tx: tx, lc: lc}
}

// ChangeStatus cambia el estado y agrega el historial en una única transacción.
// Una transición rechazada por la política devuelve domain.ErrInvalidTransition sin escribir nada.
func (uc *StatusUseCase) ChangeStatus(ctx context.Context, scope tenancy.Scope, kind lifecycle.Kind, id string, in dto.ChangeStatusRequest, client dto.ClientInfo) (*dto.StatusChangeResponse, error) {
	var t *Transition
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		t, err = uc.lc.Apply(ctx, tx, StatusChange{
			Scope:     scope,
			Kind:      kind,
			EntityID:  id,
			To:        in.Status,
			Comment:   in.Comment,
			Changes:   in.Changes,
			Metadata:  in.Metadata,
			IPAddress: client.IP,
			UserAgent: client.UserAgent,
		})
		return err
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

// History lista el historial de acciones de la entidad (más antiguo primero).
func (uc *StatusUseCase) History(ctx context.Context, scope tenancy.Scope, kind lifecycle.Kind, id string, page dto.PageRequest) ([]dto.HistoryEntryResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := exists(ctx, uc.repos, kind, scope.TenantID, id); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repos.History(kind).List(ctx, scope.TenantID, id, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryEntryResponse, 0, len(list))
	for _, h := range list {
		out = append(out, toHistoryResponse(h))
	}
	return out, nil
}

// exists devuelve domain.ErrNotFound si la entidad no existe en el tenant.
func exists(ctx context.Context, repos repository.Tx, kind lifecycle.Kind, tenantID, id string) error {
	var found bool
	switch kind {
	case lifecycle.KindBudget:
		b, err := repos.Budgets().GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		found = b != nil
	case lifecycle.KindService:
		s, err := repos.Services().GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		found = s != nil
	case lifecycle.KindInvoice:
		inv, err := repos.Invoices().GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		found = inv != nil
	case lifecycle.KindSchedule:
		sc, err := repos.Schedules().GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		found = sc != nil
	default:
		return fmt.Errorf("%w: tipo %q desconocido", domain.ErrInvalidInput, kind)
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func toHistoryResponse(h *entity.ActionHistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:          h.ID,
		EntityID:    h.EntityID,
		UserID:      h.UserID,
		Action:      h.Action,
		OldStatus:   h.OldStatus,
		NewStatus:   h.NewStatus,
		Description: h.Description,
		Changes:     h.Changes,
		Metadata:    h.Metadata,
		IPAddress:   h.IPAddress,
		UserAgent:   h.UserAgent,
		CreatedAt:   h.CreatedAt,
	}
}
