package lifecycle

import (
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain"
)

// ShareKind identifica el recurso compartible (budget_shares, invoice_shares).
type ShareKind string

const (
	ShareBudget  ShareKind = "budget"
	ShareInvoice ShareKind = "invoice"
)

// Valid informa si k es un recurso compartible.
func (k ShareKind) Valid() bool {
	return k == ShareBudget || k == ShareInvoice
}

// ResourceKind devuelve el kind de ciclo de vida del recurso compartido.
func (k ShareKind) ResourceKind() Kind {
	if k == ShareInvoice {
		return KindInvoice
	}
	return KindBudget
}

// ShareStatus estado propio del enlace, independiente del estado del recurso.
type ShareStatus string

const (
	ShareActive   ShareStatus = "active"
	ShareApproved ShareStatus = "approved"
	ShareRejected ShareStatus = "rejected"
	ShareExpired  ShareStatus = "expired"
)

// Valid informa si s es un estado de enlace conocido.
func (s ShareStatus) Valid() bool {
	switch s {
	case ShareActive, ShareApproved, ShareRejected, ShareExpired:
		return true
	}
	return false
}

// Viewable indica si un enlace en este estado todavía puede abrirse.
func (s ShareStatus) Viewable() bool {
	switch s {
	case ShareActive, ShareApproved, ShareRejected:
		return true
	case ShareExpired:
		return false
	}
	return false
}

// Permission acción que puede realizar el portador anónimo de un enlace.
type Permission string

const (
	PermView     Permission = "view"
	PermDownload Permission = "download"
	PermApprove  Permission = "approve"
	PermReject   Permission = "reject"
)

// AllowedPermissions permisos que tienen sentido para cada recurso: las facturas no se
// aprueban ni se rechazan desde un enlace público.
func (k ShareKind) AllowedPermissions() []Permission {
	if k == ShareInvoice {
		return []Permission{PermView, PermDownload}
	}
	return []Permission{PermView, PermDownload, PermApprove, PermReject}
}

// ParsePermissions valida y deduplica los permisos pedidos. Una lista vacía equivale a
// solo lectura ("view").
func ParsePermissions(kind ShareKind, raw []string) ([]Permission, error) {
	if len(raw) == 0 {
		return []Permission{PermView}, nil
	}
	allowed := make(map[Permission]struct{})
	for _, p := range kind.AllowedPermissions() {
		allowed[p] = struct{}{}
	}
	seen := make(map[Permission]struct{}, len(raw))
	out := make([]Permission, 0, len(raw))
	for _, r := range raw {
		p := Permission(r)
		if _, ok := allowed[p]; !ok {
			return nil, fmt.Errorf("%w: permiso %q no permitido para %s", domain.ErrInvalidInput, r, kind)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// Expired evalúa la expiración en el momento del acceso: un enlace deja de valer en el
// instante expiresAt.
func Expired(expiresAt, now time.Time) bool {
	return !now.Before(expiresAt)
}
