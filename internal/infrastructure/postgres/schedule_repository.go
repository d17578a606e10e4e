package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.ScheduleRepository = (*ScheduleRepo)(nil)

// ScheduleRepo citas de la agenda.
type ScheduleRepo struct {
	q Querier
}

// NewScheduleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewScheduleRepository(q Querier) *ScheduleRepo {
	return &ScheduleRepo{q: q}
}

const scheduleColumns = `id, tenant_id, service_id, starts_at, ends_at, status, notes, created_by, created_at, updated_at`

func scanSchedule(row pgx.Row) (*entity.Schedule, error) {
	var s entity.Schedule
	if err := row.Scan(&s.ID, &s.TenantID, &s.ServiceID, &s.StartsAt, &s.EndsAt, &s.Status, &s.Notes,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste una cita; el servicio debe ser del mismo tenant.
func (r *ScheduleRepo) Create(ctx context.Context, s *entity.Schedule) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO schedules (`+scheduleColumns+`)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		WHERE EXISTS (SELECT 1 FROM services WHERE tenant_id = $2 AND id = $3)`,
		s.ID, s.TenantID, s.ServiceID, s.StartsAt, s.EndsAt, s.Status, s.Notes, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una cita del tenant.
func (r *ScheduleRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Schedule, error) {
	s, err := scanSchedule(r.q.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return s, nil
}

// ListByService lista las citas de un servicio.
func (r *ScheduleRepo) ListByService(ctx context.Context, tenantID, serviceID string) ([]*entity.Schedule, error) {
	rows, err := r.q.Query(ctx, `SELECT `+scheduleColumns+` FROM schedules
		WHERE tenant_id = $1 AND service_id = $2 ORDER BY starts_at`, tenantID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return collectSchedules(rows)
}

// ListBetween lista las citas que se solapan con [from, to).
func (r *ScheduleRepo) ListBetween(ctx context.Context, tenantID string, from, to time.Time) ([]*entity.Schedule, error) {
	rows, err := r.q.Query(ctx, `SELECT `+scheduleColumns+` FROM schedules
		WHERE tenant_id = $1 AND starts_at < $3 AND ends_at > $2 ORDER BY starts_at`, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return collectSchedules(rows)
}

func collectSchedules(rows pgx.Rows) ([]*entity.Schedule, error) {
	defer rows.Close()
	var list []*entity.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
