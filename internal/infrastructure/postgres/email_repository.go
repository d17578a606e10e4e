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

var (
	_ repository.EmailTemplateRepository = (*EmailTemplateRepo)(nil)
	_ repository.AutoresponderRepository = (*AutoresponderRepo)(nil)
	_ repository.EmailQueueRepository    = (*EmailQueueRepo)(nil)
)

// EmailTemplateRepo plantillas y variables declaradas.
type EmailTemplateRepo struct {
	q Querier
}

// NewEmailTemplateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmailTemplateRepository(q Querier) *EmailTemplateRepo {
	return &EmailTemplateRepo{q: q}
}

// Create persiste la plantilla y sus variables en un batch.
func (r *EmailTemplateRepo) Create(ctx context.Context, t *entity.EmailTemplate) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO email_templates (id, tenant_id, slug, name, subject, body_html, body_text, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.TenantID, t.Slug, t.Name, t.Subject, t.BodyHTML, t.BodyText, t.IsActive, t.CreatedAt, t.UpdatedAt)
	for _, v := range t.Variables {
		batch.Queue(`
			INSERT INTO email_template_variables (id, tenant_id, template_id, name, description, default_value, required)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			v.ID, t.TenantID, t.ID, v.Name, v.Description, v.DefaultValue, v.Required)
	}
	br := r.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert email template: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert email template: %w", err)
	}
	return nil
}

const templateColumns = `id, tenant_id, slug, name, subject, body_html, body_text, is_active, created_at, updated_at`

func scanTemplate(row pgx.Row) (*entity.EmailTemplate, error) {
	var t entity.EmailTemplate
	if err := row.Scan(&t.ID, &t.TenantID, &t.Slug, &t.Name, &t.Subject, &t.BodyHTML, &t.BodyText,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID obtiene una plantilla del tenant con sus variables.
func (r *EmailTemplateRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.EmailTemplate, error) {
	return r.getOne(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetBySlug obtiene una plantilla del tenant por slug.
func (r *EmailTemplateRepo) GetBySlug(ctx context.Context, tenantID, slug string) (*entity.EmailTemplate, error) {
	return r.getOne(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE tenant_id = $1 AND slug = $2`, tenantID, slug)
}

func (r *EmailTemplateRepo) getOne(ctx context.Context, query, tenantID, arg string) (*entity.EmailTemplate, error) {
	t, err := scanTemplate(r.q.QueryRow(ctx, query, tenantID, arg))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get email template: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, template_id, name, description, default_value, required
		FROM email_template_variables WHERE tenant_id = $1 AND template_id = $2 ORDER BY name`, t.TenantID, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list template variables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v entity.EmailTemplateVariable
		if err := rows.Scan(&v.ID, &v.TemplateID, &v.Name, &v.Description, &v.DefaultValue, &v.Required); err != nil {
			return nil, fmt.Errorf("scan template variable: %w", err)
		}
		t.Variables = append(t.Variables, v)
	}
	return t, rows.Err()
}

// List lista las plantillas del tenant (sin variables).
func (r *EmailTemplateRepo) List(ctx context.Context, tenantID string) ([]*entity.EmailTemplate, error) {
	rows, err := r.q.Query(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE tenant_id = $1 ORDER BY slug`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list email templates: %w", err)
	}
	defer rows.Close()
	var list []*entity.EmailTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email template: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// AutoresponderRepo reglas evento -> plantilla.
type AutoresponderRepo struct {
	q Querier
}

// NewAutoresponderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAutoresponderRepository(q Querier) *AutoresponderRepo {
	return &AutoresponderRepo{q: q}
}

// Create persiste un autorespondedor; la plantilla debe ser del tenant.
func (r *AutoresponderRepo) Create(ctx context.Context, a *entity.Autoresponder) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO autoresponders (id, tenant_id, event, template_id, delay_seconds, is_active, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (SELECT 1 FROM email_templates WHERE tenant_id = $2 AND id = $4)`,
		a.ID, a.TenantID, a.Event, a.TemplateID, a.DelaySeconds, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert autoresponder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActiveByEvent devuelve los autorespondedores activos de un evento.
func (r *AutoresponderRepo) ListActiveByEvent(ctx context.Context, tenantID, event string) ([]*entity.Autoresponder, error) {
	return r.list(ctx, `WHERE tenant_id = $1 AND event = $2 AND is_active ORDER BY created_at`, tenantID, event)
}

// List lista todos los autorespondedores del tenant.
func (r *AutoresponderRepo) List(ctx context.Context, tenantID string) ([]*entity.Autoresponder, error) {
	return r.list(ctx, `WHERE tenant_id = $1 ORDER BY event, created_at`, tenantID)
}

func (r *AutoresponderRepo) list(ctx context.Context, where string, args ...any) ([]*entity.Autoresponder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, event, template_id, delay_seconds, is_active, created_at, updated_at
		FROM autoresponders `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list autoresponders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Autoresponder
	for rows.Next() {
		var a entity.Autoresponder
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Event, &a.TemplateID, &a.DelaySeconds, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan autoresponder: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// EmailQueueRepo cola email_queue y su bitácora email_logs.
type EmailQueueRepo struct {
	q Querier
}

// NewEmailQueueRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmailQueueRepository(q Querier) *EmailQueueRepo {
	return &EmailQueueRepo{q: q}
}

const queueColumns = `id, tenant_id, template_id, to_address, to_name, subject, body_html, body_text, status,
	attempts, max_attempts, last_error, scheduled_at, processed_at, created_at, updated_at`

func scanQueueItem(row pgx.Row) (*entity.EmailQueueItem, error) {
	var it entity.EmailQueueItem
	if err := row.Scan(&it.ID, &it.TenantID, &it.TemplateID, &it.ToAddress, &it.ToName, &it.Subject,
		&it.BodyHTML, &it.BodyText, &it.Status, &it.Attempts, &it.MaxAttempts, &it.LastError,
		&it.ScheduledAt, &it.ProcessedAt, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

// Enqueue inserta un email pendiente.
func (r *EmailQueueRepo) Enqueue(ctx context.Context, it *entity.EmailQueueItem) error {
	_, err := r.q.Exec(ctx, `INSERT INTO email_queue (`+queueColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		it.ID, it.TenantID, it.TemplateID, it.ToAddress, it.ToName, it.Subject, it.BodyHTML, it.BodyText,
		it.Status, it.Attempts, it.MaxAttempts, it.LastError, it.ScheduledAt, it.ProcessedAt, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}

// ClaimDue reserva emails vencidos en una sola sentencia. SKIP LOCKED permite varios
// workers concurrentes sin reservar dos veces la misma fila.
func (r *EmailQueueRepo) ClaimDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]*entity.EmailQueueItem, error) {
	rows, err := r.q.Query(ctx, `
		UPDATE email_queue SET status = 'processing', attempts = attempts + 1, updated_at = $1
		WHERE id IN (
			SELECT id FROM email_queue
			WHERE (status = 'pending' AND scheduled_at <= $1)
			   OR (status = 'processing' AND updated_at < $2)
			ORDER BY scheduled_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED)
		RETURNING `+queueColumns, now, staleBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("claim emails: %w", err)
	}
	return collectQueueItems(rows)
}

func collectQueueItems(rows pgx.Rows) ([]*entity.EmailQueueItem, error) {
	defer rows.Close()
	var list []*entity.EmailQueueItem
	for rows.Next() {
		it, err := scanQueueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// MarkSent cierra el email como enviado.
func (r *EmailQueueRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, `UPDATE email_queue SET status = 'sent', last_error = '', processed_at = $2, updated_at = $2
		WHERE id = $1`, id, at)
}

// MarkRetry devuelve el email a pending para el próximo intento.
func (r *EmailQueueRepo) MarkRetry(ctx context.Context, id, lastErr string, next, at time.Time) error {
	return r.update(ctx, `UPDATE email_queue SET status = 'pending', last_error = $2, scheduled_at = $3, updated_at = $4
		WHERE id = $1`, id, lastErr, next, at)
}

// MarkFailed cierra el email como fallido tras agotar los intentos.
func (r *EmailQueueRepo) MarkFailed(ctx context.Context, id, lastErr string, at time.Time) error {
	return r.update(ctx, `UPDATE email_queue SET status = 'failed', last_error = $2, processed_at = $3, updated_at = $3
		WHERE id = $1`, id, lastErr, at)
}

func (r *EmailQueueRepo) update(ctx context.Context, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendLog registra un intento de envío.
func (r *EmailQueueRepo) AppendLog(ctx context.Context, l *entity.EmailLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO email_logs (id, tenant_id, queue_id, to_address, subject, status, error, attempt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.TenantID, l.QueueID, l.ToAddress, l.Subject, l.Status, l.Error, l.Attempt, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

// List lista la cola del tenant; status vacío = todos.
func (r *EmailQueueRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.EmailQueueItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+queueColumns+` FROM email_queue
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return collectQueueItems(rows)
}
