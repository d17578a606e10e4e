package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

type partyRepo struct{ base }

func (r *partyRepo) table(kind entity.PartyKind) (map[string]entity.Party, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de parte %q", domain.ErrInvalidInput, kind)
	}
	return r.st().parties[kind], nil
}

// alive devuelve la parte no eliminada del tenant.
func (r *partyRepo) alive(kind entity.PartyKind, tenantID, id string) (map[string]entity.Party, entity.Party, error) {
	t, err := r.table(kind)
	if err != nil {
		return nil, entity.Party{}, err
	}
	p, ok := t[id]
	if !ok || p.TenantID != tenantID || p.DeletedAt != nil {
		return t, entity.Party{}, domain.ErrNotFound
	}
	return t, p, nil
}

func copyParty(p entity.Party) *entity.Party {
	if p.CommonData != nil {
		d := *p.CommonData
		p.CommonData = &d
	}
	if p.Contact != nil {
		c := *p.Contact
		p.Contact = &c
	}
	if p.Address != nil {
		a := *p.Address
		p.Address = &a
	}
	return &p
}

func (r *partyRepo) Create(_ context.Context, p *entity.Party) error {
	defer r.l.lock()()
	t, err := r.table(p.Kind)
	if err != nil {
		return err
	}
	for _, x := range t {
		if x.TenantID == p.TenantID && x.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	if p.Contact != nil && r.emailTaken(t, p.TenantID, p.ID, p.Contact.Email) {
		return domain.ErrDuplicate
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	for _, id := range []*string{subID(p.CommonData), subIDc(p.Contact), subIDa(p.Address)} {
		if id != nil && *id == "" {
			*id = uuid.New().String()
		}
	}
	t[p.ID] = *copyParty(*p)
	r.st().track(p.ID)
	return nil
}

func subID(d *entity.PartyCommonData) *string {
	if d == nil {
		return nil
	}
	return &d.ID
}

func subIDc(c *entity.PartyContact) *string {
	if c == nil {
		return nil
	}
	return &c.ID
}

func subIDa(a *entity.PartyAddress) *string {
	if a == nil {
		return nil
	}
	return &a.ID
}

// emailTaken replica el índice único parcial de contactos (no eliminados, email no vacío).
func (r *partyRepo) emailTaken(t map[string]entity.Party, tenantID, partyID, email string) bool {
	if email == "" {
		return false
	}
	for _, x := range t {
		if x.ID != partyID && x.TenantID == tenantID && x.DeletedAt == nil &&
			x.Contact != nil && x.Contact.Email == email {
			return true
		}
	}
	return false
}

func (r *partyRepo) GetByID(_ context.Context, kind entity.PartyKind, tenantID, id string) (*entity.Party, error) {
	defer r.l.lock()()
	_, p, err := r.alive(kind, tenantID, id)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return copyParty(p), nil
}

func (r *partyRepo) GetByCode(_ context.Context, kind entity.PartyKind, tenantID, code string) (*entity.Party, error) {
	defer r.l.lock()()
	t, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	for _, p := range t {
		if p.TenantID == tenantID && p.Code == code && p.DeletedAt == nil {
			return copyParty(p), nil
		}
	}
	return nil, nil
}

func (r *partyRepo) List(_ context.Context, kind entity.PartyKind, tenantID string, limit, offset int) ([]*entity.Party, error) {
	defer r.l.lock()()
	t, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	var rows []entity.Party
	for _, p := range t {
		if p.TenantID == tenantID && p.DeletedAt == nil {
			rows = append(rows, p)
		}
	}
	slices.SortFunc(rows, func(a, b entity.Party) int { return strings.Compare(a.Code, b.Code) })
	rows = page(rows, limit, offset)
	out := make([]*entity.Party, 0, len(rows))
	for _, p := range rows {
		out = append(out, copyParty(p))
	}
	return out, nil
}

func (r *partyRepo) UpsertCommonData(_ context.Context, kind entity.PartyKind, tenantID, partyID string, d *entity.PartyCommonData) error {
	defer r.l.lock()()
	t, p, err := r.alive(kind, tenantID, partyID)
	if err != nil {
		return err
	}
	v := *d
	if p.CommonData != nil {
		v.ID = p.CommonData.ID
	} else if v.ID == "" {
		v.ID = uuid.New().String()
	}
	d.ID = v.ID
	p.CommonData = &v
	t[partyID] = p
	return nil
}

func (r *partyRepo) UpsertContact(_ context.Context, kind entity.PartyKind, tenantID, partyID string, c *entity.PartyContact) error {
	defer r.l.lock()()
	t, p, err := r.alive(kind, tenantID, partyID)
	if err != nil {
		return err
	}
	if r.emailTaken(t, tenantID, partyID, c.Email) {
		return domain.ErrDuplicate
	}
	v := *c
	if p.Contact != nil {
		v.ID = p.Contact.ID
	} else if v.ID == "" {
		v.ID = uuid.New().String()
	}
	c.ID = v.ID
	p.Contact = &v
	t[partyID] = p
	return nil
}

func (r *partyRepo) UpsertAddress(_ context.Context, kind entity.PartyKind, tenantID, partyID string, a *entity.PartyAddress) error {
	defer r.l.lock()()
	t, p, err := r.alive(kind, tenantID, partyID)
	if err != nil {
		return err
	}
	v := *a
	if p.Address != nil {
		v.ID = p.Address.ID
	} else if v.ID == "" {
		v.ID = uuid.New().String()
	}
	a.ID = v.ID
	p.Address = &v
	t[partyID] = p
	return nil
}

func (r *partyRepo) SoftDelete(_ context.Context, kind entity.PartyKind, tenantID, id string, at time.Time) error {
	defer r.l.lock()()
	t, p, err := r.alive(kind, tenantID, id)
	if err != nil {
		return err
	}
	p.DeletedAt = timePtr(at)
	p.UpdatedAt = at
	t[id] = p
	return nil
}

type catalogRepo struct{ base }

func (r *catalogRepo) CreateUnit(_ context.Context, u *entity.Unit) error {
	defer r.l.lock()()
	st := r.st()
	for _, x := range st.units {
		if x.Code == u.Code && ((x.TenantID == nil && u.TenantID == nil) ||
			(x.TenantID != nil && u.TenantID != nil && *x.TenantID == *u.TenantID)) {
			return domain.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	st.units[u.ID] = *u
	st.track(u.ID)
	return nil
}

func (r *catalogRepo) ListUnits(_ context.Context, tenantID string) ([]*entity.Unit, error) {
	defer r.l.lock()()
	var out []entity.Unit
	for _, u := range r.st().units {
		if u.TenantID == nil || *u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b entity.Unit) int {
		if a.Global() != b.Global() {
			if a.Global() {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Code, b.Code)
	})
	return ptrs(out), nil
}

func (r *catalogRepo) CreateCategory(_ context.Context, c *entity.Category) error {
	defer r.l.lock()()
	st := r.st()
	for _, x := range st.categories {
		if x.TenantID == c.TenantID && x.Code == c.Code {
			return domain.ErrDuplicate
		}
	}
	if c.ParentID != nil {
		parent, ok := st.categories[*c.ParentID]
		if !ok || parent.TenantID != c.TenantID {
			return domain.ErrNotFound
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	st.categories[c.ID] = *c
	st.track(c.ID)
	return nil
}

func (r *catalogRepo) ListCategories(_ context.Context, tenantID string) ([]*entity.Category, error) {
	defer r.l.lock()()
	var out []entity.Category
	for _, c := range r.st().categories {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b entity.Category) int { return strings.Compare(a.Code, b.Code) })
	return ptrs(out), nil
}

func (r *catalogRepo) CreateProduct(_ context.Context, p *entity.Product) error {
	defer r.l.lock()()
	st := r.st()
	for _, x := range st.products {
		if x.TenantID == p.TenantID && x.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	if p.CategoryID != nil {
		if c, ok := st.categories[*p.CategoryID]; !ok || c.TenantID != p.TenantID {
			return domain.ErrInvalidInput
		}
	}
	if p.UnitID != nil {
		if u, ok := st.units[*p.UnitID]; !ok || (u.TenantID != nil && *u.TenantID != p.TenantID) {
			return domain.ErrInvalidInput
		}
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	st.products[p.ID] = *p
	st.track(p.ID)
	return nil
}

func (r *catalogRepo) GetProduct(_ context.Context, tenantID, id string) (*entity.Product, error) {
	defer r.l.lock()()
	p, ok := r.st().products[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return &p, nil
}

func (r *catalogRepo) GetProductBySKU(_ context.Context, tenantID, sku string) (*entity.Product, error) {
	defer r.l.lock()()
	for _, p := range r.st().products {
		if p.TenantID == tenantID && p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *catalogRepo) ListProducts(_ context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	defer r.l.lock()()
	var out []entity.Product
	for _, p := range r.st().products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b entity.Product) int { return strings.Compare(a.Name, b.Name) })
	return ptrs(page(out, limit, offset)), nil
}

type contactLookup struct{ base }

func (r *contactLookup) ForSubject(_ context.Context, kind lifecycle.Kind, tenantID, id string) (string, string, error) {
	defer r.l.lock()()
	st := r.st()
	var customerID *string
	switch kind {
	case lifecycle.KindBudget:
		if b, ok := st.budgets[id]; ok && b.TenantID == tenantID {
			customerID = b.CustomerID
		}
	case lifecycle.KindService:
		if s, ok := st.services[id]; ok && s.TenantID == tenantID {
			customerID = s.CustomerID
		}
	case lifecycle.KindInvoice:
		if i, ok := st.invoices[id]; ok && i.TenantID == tenantID {
			customerID = i.CustomerID
		}
	case lifecycle.KindSchedule:
		if sc, ok := st.schedules[id]; ok && sc.TenantID == tenantID {
			if s, ok := st.services[sc.ServiceID]; ok {
				customerID = s.CustomerID
			}
		}
	default:
		return "", "", fmt.Errorf("tipo de entidad desconocido: %q", kind)
	}
	if customerID == nil {
		return "", "", nil
	}
	c, ok := st.parties[entity.PartyCustomer][*customerID]
	if !ok || c.TenantID != tenantID || c.DeletedAt != nil || c.Contact == nil {
		return "", "", nil
	}
	return c.Contact.Email, c.DisplayName(), nil
}
