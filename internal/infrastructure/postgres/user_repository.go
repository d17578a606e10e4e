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

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, tenant_id, email, password_hash, name, status, email_verified_at, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Name, &u.Status,
		&u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, name, status, email_verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.TenantID, user.Email, user.PasswordHash, user.Name, user.Status,
		user.EmailVerifiedAt, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario del tenant por ID.
func (r *UserRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario del tenant por email.
func (r *UserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND email = $2`, tenantID, email))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// FindByEmail devuelve las cuentas con ese email en cualquier tenant (login).
func (r *UserRepo) FindByEmail(ctx context.Context, email string) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 ORDER BY created_at`, email)
	if err != nil {
		return nil, fmt.Errorf("find users by email: %w", err)
	}
	return collectUsers(rows)
}

// ListByTenant lista usuarios del tenant con paginación.
func (r *UserRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 ORDER BY email LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*entity.User, error) {
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// UpdatePassword reemplaza el hash de contraseña.
func (r *UserRepo) UpdatePassword(ctx context.Context, tenantID, id, hash string, at time.Time) error {
	return r.exec(ctx, "update password",
		`UPDATE users SET password_hash = $3, updated_at = $4 WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, hash, at)
}

// MarkEmailVerified fija email_verified_at (idempotente: conserva la primera fecha).
func (r *UserRepo) MarkEmailVerified(ctx context.Context, tenantID, id string, at time.Time) error {
	return r.exec(ctx, "verify email",
		`UPDATE users SET email_verified_at = COALESCE(email_verified_at, $3), updated_at = $3
		 WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, at)
}

func (r *UserRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
