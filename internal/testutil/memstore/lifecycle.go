package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

type shareRepo struct {
	base
	kind lifecycle.ShareKind
}

func copyShare(s entity.Share) *entity.Share {
	s.Permissions = slices.Clone(s.Permissions)
	return &s
}

// tokenTaken busca el token en ambos tipos: el token es único en todo el sistema.
func (r *shareRepo) tokenTaken(token string) bool {
	for _, m := range r.st().shares {
		for _, s := range m {
			if s.Token == token {
				return true
			}
		}
	}
	return false
}

func (r *shareRepo) Create(_ context.Context, s *entity.Share) error {
	defer r.l.lock()()
	if r.tokenTaken(s.Token) {
		return domain.ErrDuplicate
	}
	if _, err := (&statusRepo{r.base, r.kind.ResourceKind()}).get(s.TenantID, s.ResourceID); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.Kind = r.kind
	r.st().shares[r.kind][s.ID] = *copyShare(*s)
	r.st().track(s.ID)
	return nil
}

func (r *shareRepo) GetByTokenForUpdate(_ context.Context, token string) (*entity.Share, error) {
	defer r.l.lock()()
	for _, s := range r.st().shares[r.kind] {
		if s.Token == token {
			return copyShare(s), nil
		}
	}
	return nil, nil
}

func (r *shareRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Share, error) {
	defer r.l.lock()()
	s, ok := r.st().shares[r.kind][id]
	if !ok || s.TenantID != tenantID {
		return nil, nil
	}
	return copyShare(s), nil
}

func (r *shareRepo) ListByResource(_ context.Context, tenantID, resourceID string) ([]*entity.Share, error) {
	defer r.l.lock()()
	var rows []entity.Share
	for _, s := range r.st().shares[r.kind] {
		if s.TenantID == tenantID && s.ResourceID == resourceID {
			rows = append(rows, s)
		}
	}
	sortNewest(r.st(), rows, func(s entity.Share) (time.Time, string) { return s.CreatedAt, s.ID })
	out := make([]*entity.Share, 0, len(rows))
	for _, s := range rows {
		out = append(out, copyShare(s))
	}
	return out, nil
}

func (r *shareRepo) RegisterAccess(_ context.Context, id string, at time.Time) (int, error) {
	defer r.l.lock()()
	if err := r.s.fault(OpShareAccess); err != nil {
		return 0, err
	}
	m := r.st().shares[r.kind]
	s, ok := m[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	s.AccessCount++
	s.LastAccessedAt = timePtr(at)
	s.UpdatedAt = at
	m[id] = s
	return s.AccessCount, nil
}

func (r *shareRepo) SetStatus(_ context.Context, id string, status lifecycle.ShareStatus, respondedAt *time.Time, at time.Time) error {
	defer r.l.lock()()
	m := r.st().shares[r.kind]
	s, ok := m[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	if respondedAt != nil {
		s.RespondedAt = timePtr(*respondedAt)
	}
	s.UpdatedAt = at
	m[id] = s
	return nil
}

func (r *shareRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	defer r.l.lock()()
	m := r.st().shares[r.kind]
	n := len(m)
	deleteWhere(m, func(s entity.Share) bool { return !s.ExpiresAt.After(before) })
	return int64(n - len(m)), nil
}

type tokenRepo struct{ base }

func (r *tokenRepo) Create(_ context.Context, t *entity.ConfirmationToken) error {
	defer r.l.lock()()
	st := r.st()
	for _, x := range st.tokens {
		if x.Token == t.Token {
			return domain.ErrDuplicate
		}
	}
	u, ok := st.users[t.UserID]
	if !ok || u.TenantID != t.TenantID {
		return domain.ErrNotFound
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	st.tokens[t.ID] = *t
	st.track(t.ID)
	return nil
}

func (r *tokenRepo) GetByTokenForUpdate(_ context.Context, token string) (*entity.ConfirmationToken, error) {
	defer r.l.lock()()
	for _, t := range r.st().tokens {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *tokenRepo) MarkConsumed(_ context.Context, id string, at time.Time) error {
	defer r.l.lock()()
	if err := r.s.fault(OpTokenMarkUsed); err != nil {
		return err
	}
	t, ok := r.st().tokens[id]
	if !ok || t.ConsumedAt != nil {
		return domain.ErrConflict
	}
	t.ConsumedAt = timePtr(at)
	r.st().tokens[id] = t
	return nil
}

// DeleteExpired también libera la referencia desde budgets y services (ON DELETE SET NULL).
func (r *tokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	defer r.l.lock()()
	st := r.st()
	var n int64
	for id, t := range st.tokens {
		consumed := t.ConsumedAt != nil && !t.ConsumedAt.After(before)
		if t.ExpiresAt.After(before) && !consumed {
			continue
		}
		delete(st.tokens, id)
		n++
		for k, b := range st.budgets {
			if b.ConfirmationTokenID != nil && *b.ConfirmationTokenID == id {
				b.ConfirmationTokenID = nil
				st.budgets[k] = b
			}
		}
		for k, s := range st.services {
			if s.ConfirmationTokenID != nil && *s.ConfirmationTokenID == id {
				s.ConfirmationTokenID = nil
				st.services[k] = s
			}
		}
	}
	return n, nil
}
