package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// PartyUseCase clientes y proveedores. Los subregistros se completan de forma incremental.
type PartyUseCase struct {
	repo repository.PartyRepository
	now  func() time.Time
}

// NewPartyUseCase construye el caso de uso.
func NewPartyUseCase(repo repository.PartyRepository) *PartyUseCase {
	return &PartyUseCase{repo: repo, now: time.Now}
}

// Create da de alta la cabecera y los subregistros enviados.
func (uc *PartyUseCase) Create(ctx context.Context, scope tenancy.Scope, kind entity.PartyKind, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de parte %q", domain.ErrInvalidInput, kind)
	}
	code := tenancy.NormalizeCode(in.Code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	p := &entity.Party{
		ID:        uuid.New().String(),
		TenantID:  scope.TenantID,
		Kind:      kind,
		Code:      code,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.CommonData != nil {
		p.CommonData = commonDataFromInput(*in.CommonData, now)
	}
	if in.Contact != nil {
		p.Contact = contactFromInput(*in.Contact, now)
	}
	if in.Address != nil {
		p.Address = addressFromInput(*in.Address, now)
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toPartyResponse(p), nil
}

// GetByID obtiene una parte con sus subregistros. nil si no existe o está eliminada.
func (uc *PartyUseCase) GetByID(ctx context.Context, scope tenancy.Scope, kind entity.PartyKind, id string) (*dto.PartyResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, kind, scope.TenantID, id)
	if err != nil || p == nil {
		return nil, err
	}
	return toPartyResponse(p), nil
}

// GetByCode obtiene una parte por código. nil si no existe.
func (uc *PartyUseCase) GetByCode(ctx context.Context, scope tenancy.Scope, kind entity.PartyKind, code string) (*dto.PartyResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByCode(ctx, kind, scope.TenantID, tenancy.NormalizeCode(code))
	if err != nil || p == nil {
		return nil, err
	}
	return toPartyResponse(p), nil
}

// List lista las partes del tenant.
func (uc *PartyUseCase) List(ctx context.Context, scope tenancy.Scope, kind entity.PartyKind, page dto.PageRequest) ([]dto.PartyResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, kind, scope.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PartyResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toPartyResponse(p))
	}
	return out, nil
}

// UpdateCommonData crea o reemplaza los datos de identidad.
func (uc *PartyUseCase) UpdateCommonData(ctx context.Context, scope tenancy.Scope, kind entity.PartyKind, id string, in dto.CommonDataInput) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repo.UpsertCommonData(ctx, kind, scope.TenantID, id, commonDataFromInput(in, uc.now()))
}

// UpdateContact crea o reemplaza el contacto. El email debe ser único entre las partes vivas.
func (uc *PartyUseCase) UpdateContact(ctx context.Context, scope tenancy.Scope, kind entity.PartyKind, id string, in dto.ContactInput) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repo.UpsertContact(ctx, kind, scope.TenantID, id, contactFromInput(in, uc.now()))
}

// UpdateAddress crea o reemplaza la dirección.
func (uc *PartyUseCase) UpdateAddress(ctx context.Context, scope tenancy.Scope, kind entity.PartyKind, id string, in dto.AddressInput) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repo.UpsertAddress(ctx, kind, scope.TenantID, id, addressFromInput(in, uc.now()))
}

// Delete elimina la parte de forma lógica.
func (uc *PartyUseCase) Delete(ctx context.Context, scope tenancy.Scope, kind entity.PartyKind, id string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, kind, scope.TenantID, id, uc.now())
}

func commonDataFromInput(in dto.CommonDataInput, now time.Time) *entity.PartyCommonData {
	return &entity.PartyCommonData{
		PersonType: in.PersonType, Name: in.Name, TradeName: in.TradeName, Document: in.Document,
		Notes: in.Notes, UpdatedAt: now,
	}
}

func contactFromInput(in dto.ContactInput, now time.Time) *entity.PartyContact {
	return &entity.PartyContact{
		Email: tenancy.NormalizeEmail(in.Email), Phone: in.Phone, Mobile: in.Mobile, Website: in.Website, UpdatedAt: now,
	}
}

func addressFromInput(in dto.AddressInput, now time.Time) *entity.PartyAddress {
	return &entity.PartyAddress{
		Street: in.Street, Number: in.Number, Complement: in.Complement, District: in.District,
		City: in.City, State: in.State, PostalCode: in.PostalCode, Country: in.Country, UpdatedAt: now,
	}
}

func toPartyResponse(p *entity.Party) *dto.PartyResponse {
	r := &dto.PartyResponse{
		ID: p.ID, Kind: string(p.Kind), Code: p.Code, Name: p.DisplayName(), Status: p.Status,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
	if d := p.CommonData; d != nil {
		r.CommonData = &dto.CommonDataInput{PersonType: d.PersonType, Name: d.Name, TradeName: d.TradeName, Document: d.Document, Notes: d.Notes}
	}
	if c := p.Contact; c != nil {
		r.Contact = &dto.ContactInput{Email: c.Email, Phone: c.Phone, Mobile: c.Mobile, Website: c.Website}
	}
	if a := p.Address; a != nil {
		r.Address = &dto.AddressInput{
			Street: a.Street, Number: a.Number, Complement: a.Complement, District: a.District,
			City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		}
	}
	return r
}
