package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// TemplateUseCase CRUD y previsualización de plantillas.
type TemplateUseCase struct {
	repos repository.Tx
	now   func() time.Time
}

// NewTemplateUseCase construye el caso de uso.
func NewTemplateUseCase(repos repository.Tx) *TemplateUseCase {
	return &TemplateUseCase{repos: repos, now: time.Now}
}

// Create valida la sintaxis y guarda la plantilla con sus variables.
func (uc *TemplateUseCase) Create(ctx context.Context, scope tenancy.Scope, in dto.CreateTemplateRequest) (*dto.TemplateResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	t := &entity.EmailTemplate{
		ID:        uuid.New().String(),
		TenantID:  scope.TenantID,
		Slug:      normalizeSlug(in.Slug),
		Name:      in.Name,
		Subject:   in.Subject,
		BodyHTML:  in.BodyHTML,
		BodyText:  in.BodyText,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if t.Slug == "" {
		return nil, domain.ErrInvalidInput
	}
	seen := map[string]bool{}
	for _, v := range in.Variables {
		if v.Name == "" || seen[v.Name] {
			return nil, domain.ErrInvalidInput
		}
		seen[v.Name] = true
		t.Variables = append(t.Variables, entity.EmailTemplateVariable{
			ID: uuid.New().String(), TemplateID: t.ID, Name: v.Name, Description: v.Description,
			DefaultValue: v.DefaultValue, Required: v.Required,
		})
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	if err := uc.repos.EmailTemplates().Create(ctx, t); err != nil {
		return nil, err
	}
	return toTemplateResponse(t), nil
}

// Get obtiene una plantilla. nil si no existe en el tenant.
func (uc *TemplateUseCase) Get(ctx context.Context, scope tenancy.Scope, id string) (*dto.TemplateResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	t, err := uc.repos.EmailTemplates().GetByID(ctx, scope.TenantID, id)
	if err != nil || t == nil {
		return nil, err
	}
	return toTemplateResponse(t), nil
}

// List lista las plantillas del tenant por slug.
func (uc *TemplateUseCase) List(ctx context.Context, scope tenancy.Scope) ([]dto.TemplateResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repos.EmailTemplates().List(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TemplateResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTemplateResponse(t))
	}
	return out, nil
}

// Preview renderiza la plantilla con los datos sin encolar nada.
func (uc *TemplateUseCase) Preview(ctx context.Context, scope tenancy.Scope, id string, in dto.RenderRequest) (*dto.RenderedEmail, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	t, err := uc.repos.EmailTemplates().GetByID(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return Render(t, in.Data)
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toTemplateResponse(t *entity.EmailTemplate) *dto.TemplateResponse {
	r := &dto.TemplateResponse{
		ID: t.ID, Slug: t.Slug, Name: t.Name, Subject: t.Subject, BodyHTML: t.BodyHTML, BodyText: t.BodyText,
		IsActive: t.IsActive, Variables: []dto.TemplateVariableInput{}, CreatedAt: t.CreatedAt,
	}
	for _, v := range t.Variables {
		r.Variables = append(r.Variables, dto.TemplateVariableInput{
			Name: v.Name, Description: v.Description, DefaultValue: v.DefaultValue, Required: v.Required,
		})
	}
	return r
}
