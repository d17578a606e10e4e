package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.StatusRepository      = (*StatusRepo)(nil)
	_ repository.ConfirmableRepository = (*StatusRepo)(nil)
)

// StatusRepo acceso a la columna status de budgets, services, invoices o schedules.
type StatusRepo struct {
	q Querier
	t statusTable
}

// NewStatusRepository construye el adaptador para un tipo de entidad.
func NewStatusRepository(q Querier, kind lifecycle.Kind) *StatusRepo {
	return &StatusRepo{q: q, t: statusTables[kind]}
}

func (r *StatusRepo) table() (statusTable, error) {
	if r.t.table == "" {
		return statusTable{}, fmt.Errorf("status repository: tipo de entidad no configurado")
	}
	return r.t, nil
}

// LockStatus lee el estado con SELECT … FOR UPDATE; la fila queda bloqueada hasta el fin de la tx.
func (r *StatusRepo) LockStatus(ctx context.Context, tenantID, id string) (string, error) {
	t, err := r.table()
	if err != nil {
		return "", err
	}
	var status string
	err = r.q.QueryRow(ctx, fmt.Sprintf(`
		SELECT status FROM %s WHERE tenant_id = $1 AND id = $2 AND %s FOR UPDATE`, t.table, t.alive("")),
		tenantID, id).Scan(&status)
	if err != nil {
		if isNotFound(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("lock %s: %w", t.table, err)
	}
	return status, nil
}

// SetStatus escribe el nuevo estado.
func (r *StatusRepo) SetStatus(ctx context.Context, tenantID, id, status string, at time.Time) error {
	t, err := r.table()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET status = $3, updated_at = $4 WHERE tenant_id = $1 AND id = $2 AND %s`, t.table, t.alive("")),
		tenantID, id, status, at)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update %s status: %w", t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StatusRepo) confirmable() (statusTable, error) {
	t, err := r.table()
	if err != nil {
		return t, err
	}
	if !t.confirmable {
		return t, fmt.Errorf("%s no admite confirmación", t.table)
	}
	return t, nil
}

// PendingToken devuelve el token de confirmación referenciado por la fila.
func (r *StatusRepo) PendingToken(ctx context.Context, tenantID, id string) (*string, error) {
	t, err := r.confirmable()
	if err != nil {
		return nil, err
	}
	var tokenID *string
	err = r.q.QueryRow(ctx, fmt.Sprintf(`
		SELECT confirmation_token_id FROM %s WHERE tenant_id = $1 AND id = $2`, t.table),
		tenantID, id).Scan(&tokenID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s confirmation token: %w", t.table, err)
	}
	return tokenID, nil
}

// SetPendingToken asocia un token de confirmación a la fila.
func (r *StatusRepo) SetPendingToken(ctx context.Context, tenantID, id, tokenID string, at time.Time) error {
	t, err := r.confirmable()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET confirmation_token_id = $3, confirmed_at = NULL, updated_at = $4
		WHERE tenant_id = $1 AND id = $2`, t.table), tenantID, id, tokenID, at)
	if err != nil {
		return fmt.Errorf("set %s confirmation token: %w", t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearPendingToken desvincula el token y registra la confirmación.
func (r *StatusRepo) ClearPendingToken(ctx context.Context, tenantID, id string, confirmedAt time.Time) error {
	t, err := r.confirmable()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET confirmation_token_id = NULL, confirmed_at = $3, updated_at = $3
		WHERE tenant_id = $1 AND id = $2`, t.table), tenantID, id, confirmedAt)
	if err != nil {
		return fmt.Errorf("clear %s confirmation token: %w", t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
