package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo unidades, categorías y productos.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// CreateUnit persiste una unidad propia del tenant.
func (r *CatalogRepo) CreateUnit(ctx context.Context, u *entity.Unit) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO units (id, tenant_id, code, name, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.TenantID, u.Code, u.Name, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

// ListUnits devuelve las unidades globales más las del tenant.
func (r *CatalogRepo) ListUnits(ctx context.Context, tenantID string) ([]*entity.Unit, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, code, name, created_at FROM units
		WHERE tenant_id IS NULL OR tenant_id = $1
		ORDER BY tenant_id NULLS FIRST, code`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var list []*entity.Unit
	for rows.Next() {
		var u entity.Unit
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Code, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// CreateCategory persiste una categoría; el padre debe ser del mismo tenant.
func (r *CatalogRepo) CreateCategory(ctx context.Context, c *entity.Category) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO categories (id, tenant_id, parent_id, code, name, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE $3::uuid IS NULL OR EXISTS (SELECT 1 FROM categories WHERE tenant_id = $2 AND id = $3)`,
		c.ID, c.TenantID, c.ParentID, c.Code, c.Name, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListCategories lista categorías del tenant.
func (r *CatalogRepo) ListCategories(ctx context.Context, tenantID string) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, parent_id, code, name, created_at, updated_at
		FROM categories WHERE tenant_id = $1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.TenantID, &c.ParentID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

const productColumns = `id, tenant_id, category_id, unit_id, sku, name, description, price, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.TenantID, &p.CategoryID, &p.UnitID, &p.SKU, &p.Name, &p.Description,
		&p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct persiste un producto. (tenant_id, sku) es único.
func (r *CatalogRepo) CreateProduct(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.TenantID, p.CategoryID, p.UnitID, p.SKU, p.Name, p.Description,
		p.Price, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetProduct obtiene un producto del tenant.
func (r *CatalogRepo) GetProduct(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetProductBySKU obtiene un producto del tenant por SKU.
func (r *CatalogRepo) GetProductBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND sku = $2`, tenantID, sku))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// ListProducts lista productos del tenant con paginación.
func (r *CatalogRepo) ListProducts(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
