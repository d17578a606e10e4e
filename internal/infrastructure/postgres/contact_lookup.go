package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.ContactLookup = (*ContactLookupRepo)(nil)

// ContactLookupRepo resuelve el email del cliente asociado a una entidad con estado.
type ContactLookupRepo struct {
	q Querier
}

// NewContactLookup construye el adaptador. Pasar pool o tx (Querier).
func NewContactLookup(q Querier) *ContactLookupRepo {
	return &ContactLookupRepo{q: q}
}

// customerOf expresa, por tipo, cómo llegar al customer_id desde la fila.
var customerOf = map[lifecycle.Kind]string{
	lifecycle.KindBudget:   `SELECT customer_id FROM budgets WHERE tenant_id = $1 AND id = $2`,
	lifecycle.KindService:  `SELECT customer_id FROM services WHERE tenant_id = $1 AND id = $2`,
	lifecycle.KindInvoice:  `SELECT customer_id FROM invoices WHERE tenant_id = $1 AND id = $2`,
	lifecycle.KindSchedule: `SELECT s.customer_id FROM schedules sc JOIN services s ON s.id = sc.service_id WHERE sc.tenant_id = $1 AND sc.id = $2`,
}

// ForSubject devuelve email y nombre del cliente; vacío si no hay cliente o contacto.
func (r *ContactLookupRepo) ForSubject(ctx context.Context, kind lifecycle.Kind, tenantID, id string) (string, string, error) {
	sub, ok := customerOf[kind]
	if !ok {
		return "", "", fmt.Errorf("tipo de entidad desconocido: %q", kind)
	}
	var email, name string
	err := r.q.QueryRow(ctx, `
		SELECT ct.email, COALESCE(NULLIF(cd.trade_name, ''), NULLIF(cd.name, ''), c.code)
		FROM customers c
		JOIN customer_contacts ct ON ct.customer_id = c.id AND ct.tenant_id = c.tenant_id
		LEFT JOIN customer_common_data cd ON cd.customer_id = c.id AND cd.tenant_id = c.tenant_id
		WHERE c.tenant_id = $1 AND c.deleted_at IS NULL AND c.id = (`+sub+`)`, tenantID, id).Scan(&email, &name)
	if err != nil {
		if isNotFound(err) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("contact lookup: %w", err)
	}
	return email, name, nil
}
