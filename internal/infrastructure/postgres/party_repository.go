package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo clientes y proveedores. Cada tipo tiene su juego de tablas (cabecera,
// datos comunes, contacto, dirección) con idéntica forma.
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// Create persiste la cabecera y los subregistros presentes.
func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	t, err := partyTablesFor(p.Kind)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, t.header),
		p.ID, p.TenantID, p.Code, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", t.header, err)
	}
	if p.CommonData != nil {
		if err := r.UpsertCommonData(ctx, p.Kind, p.TenantID, p.ID, p.CommonData); err != nil {
			return err
		}
	}
	if p.Contact != nil {
		if err := r.UpsertContact(ctx, p.Kind, p.TenantID, p.ID, p.Contact); err != nil {
			return err
		}
	}
	if p.Address != nil {
		if err := r.UpsertAddress(ctx, p.Kind, p.TenantID, p.ID, p.Address); err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene una parte viva del tenant con sus subregistros.
func (r *PartyRepo) GetByID(ctx context.Context, kind entity.PartyKind, tenantID, id string) (*entity.Party, error) {
	return r.getOne(ctx, kind, "id", tenantID, id)
}

// GetByCode obtiene una parte viva del tenant por código.
func (r *PartyRepo) GetByCode(ctx context.Context, kind entity.PartyKind, tenantID, code string) (*entity.Party, error) {
	return r.getOne(ctx, kind, "code", tenantID, code)
}

func (r *PartyRepo) getOne(ctx context.Context, kind entity.PartyKind, column, tenantID, value string) (*entity.Party, error) {
	t, err := partyTablesFor(kind)
	if err != nil {
		return nil, err
	}
	p := entity.Party{Kind: kind}
	err = r.q.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, tenant_id, code, status, created_at, updated_at, deleted_at
		FROM %s WHERE tenant_id = $1 AND %s = $2 AND deleted_at IS NULL`, t.header, column),
		tenantID, value).Scan(&p.ID, &p.TenantID, &p.Code, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", t.header, err)
	}
	if err := r.loadSubrecords(ctx, t, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List lista partes vivas del tenant ordenadas por código.
func (r *PartyRepo) List(ctx context.Context, kind entity.PartyKind, tenantID string, limit, offset int) ([]*entity.Party, error) {
	t, err := partyTablesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, fmt.Sprintf(`
		SELECT id, tenant_id, code, status, created_at, updated_at, deleted_at
		FROM %s WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY code LIMIT $2 OFFSET $3`, t.header), tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.header, err)
	}
	var list []*entity.Party
	for rows.Next() {
		p := entity.Party{Kind: kind}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Code, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan %s: %w", t.header, err)
		}
		list = append(list, &p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Los subregistros se cargan después de cerrar el cursor: en una tx no puede haber dos abiertos.
	for _, p := range list {
		if err := r.loadSubrecords(ctx, t, p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *PartyRepo) loadSubrecords(ctx context.Context, t partyTables, p *entity.Party) error {
	var cd entity.PartyCommonData
	err := r.q.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, person_type, name, trade_name, document, notes, updated_at
		FROM %s WHERE tenant_id = $1 AND %s = $2`, t.common, t.fk), p.TenantID, p.ID).
		Scan(&cd.ID, &cd.PersonType, &cd.Name, &cd.TradeName, &cd.Document, &cd.Notes, &cd.UpdatedAt)
	switch {
	case err == nil:
		p.CommonData = &cd
	case !isNotFound(err):
		return fmt.Errorf("get %s: %w", t.common, err)
	}

	var c entity.PartyContact
	err = r.q.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, email, phone, mobile, website, updated_at
		FROM %s WHERE tenant_id = $1 AND %s = $2`, t.contact, t.fk), p.TenantID, p.ID).
		Scan(&c.ID, &c.Email, &c.Phone, &c.Mobile, &c.Website, &c.UpdatedAt)
	switch {
	case err == nil:
		p.Contact = &c
	case !isNotFound(err):
		return fmt.Errorf("get %s: %w", t.contact, err)
	}

	var a entity.PartyAddress
	err = r.q.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, street, number, complement, district, city, state, postal_code, country, updated_at
		FROM %s WHERE tenant_id = $1 AND %s = $2`, t.address, t.fk), p.TenantID, p.ID).
		Scan(&a.ID, &a.Street, &a.Number, &a.Complement, &a.District, &a.City, &a.State,
			&a.PostalCode, &a.Country, &a.UpdatedAt)
	switch {
	case err == nil:
		p.Address = &a
	case !isNotFound(err):
		return fmt.Errorf("get %s: %w", t.address, err)
	}
	return nil
}

// UpsertCommonData crea o reemplaza los datos comunes de una parte viva del tenant.
func (r *PartyRepo) UpsertCommonData(ctx context.Context, kind entity.PartyKind, tenantID, partyID string, d *entity.PartyCommonData) error {
	t, err := partyTablesFor(kind)
	if err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %[1]s (id, tenant_id, %[2]s, person_type, name, trade_name, document, notes, updated_at)
		SELECT $3, h.tenant_id, h.id, $4, $5, $6, $7, $8, $9
		FROM %[3]s h WHERE h.tenant_id = $1 AND h.id = $2 AND h.deleted_at IS NULL
		ON CONFLICT (%[2]s) DO UPDATE SET
			person_type = EXCLUDED.person_type, name = EXCLUDED.name, trade_name = EXCLUDED.trade_name,
			document = EXCLUDED.document, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`,
		t.common, t.fk, t.header),
		tenantID, partyID, d.ID, d.PersonType, d.Name, d.TradeName, d.Document, d.Notes, d.UpdatedAt)
	return upsertResult(t.common, tag.RowsAffected(), err)
}

// UpsertContact crea o reemplaza el contacto. El email es único por tenant entre partes vivas.
func (r *PartyRepo) UpsertContact(ctx context.Context, kind entity.PartyKind, tenantID, partyID string, c *entity.PartyContact) error {
	t, err := partyTablesFor(kind)
	if err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %[1]s (id, tenant_id, %[2]s, email, phone, mobile, website, updated_at)
		SELECT $3, h.tenant_id, h.id, $4, $5, $6, $7, $8
		FROM %[3]s h WHERE h.tenant_id = $1 AND h.id = $2 AND h.deleted_at IS NULL
		ON CONFLICT (%[2]s) DO UPDATE SET
			email = EXCLUDED.email, phone = EXCLUDED.phone, mobile = EXCLUDED.mobile,
			website = EXCLUDED.website, updated_at = EXCLUDED.updated_at`,
		t.contact, t.fk, t.header),
		tenantID, partyID, c.ID, c.Email, c.Phone, c.Mobile, c.Website, c.UpdatedAt)
	return upsertResult(t.contact, tag.RowsAffected(), err)
}

// UpsertAddress crea o reemplaza la dirección.
func (r *PartyRepo) UpsertAddress(ctx context.Context, kind entity.PartyKind, tenantID, partyID string, a *entity.PartyAddress) error {
	t, err := partyTablesFor(kind)
	if err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %[1]s (id, tenant_id, %[2]s, street, number, complement, district, city, state, postal_code, country, updated_at)
		SELECT $3, h.tenant_id, h.id, $4, $5, $6, $7, $8, $9, $10, $11, $12
		FROM %[3]s h WHERE h.tenant_id = $1 AND h.id = $2 AND h.deleted_at IS NULL
		ON CONFLICT (%[2]s) DO UPDATE SET
			street = EXCLUDED.street, number = EXCLUDED.number, complement = EXCLUDED.complement,
			district = EXCLUDED.district, city = EXCLUDED.city, state = EXCLUDED.state,
			postal_code = EXCLUDED.postal_code, country = EXCLUDED.country, updated_at = EXCLUDED.updated_at`,
		t.address, t.fk, t.header),
		tenantID, partyID, a.ID, a.Street, a.Number, a.Complement, a.District, a.City, a.State,
		a.PostalCode, a.Country, a.UpdatedAt)
	return upsertResult(t.address, tag.RowsAffected(), err)
}

func upsertResult(table string, affected int64, err error) error {
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca deleted_at en la cabecera y libera el email del contacto.
func (r *PartyRepo) SoftDelete(ctx context.Context, kind entity.PartyKind, tenantID, id string, at time.Time) error {
	t, err := partyTablesFor(kind)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET deleted_at = $3, updated_at = $3
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`, t.header), tenantID, id, at)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("soft delete %s: %w", t.header, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET deleted_at = $3 WHERE tenant_id = $1 AND %s = $2`, t.contact, t.fk), tenantID, id, at); err != nil {
		return fmt.Errorf("soft delete %s: %w", t.contact, err)
	}
	return nil
}
