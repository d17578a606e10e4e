package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/monitoring"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
)

// BudgetUseCase casos de uso de presupuestos.
type BudgetUseCase struct {
	repos repository.Tx
	tx    repository.TxRunner
	now   func() time.Time
}

// NewBudgetUseCase construye el caso de uso.
func NewBudgetUseCase(repos repository.Tx, tx repository.TxRunner) *BudgetUseCase {
	return &BudgetUseCase{repos: repos, tx: tx, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *BudgetUseCase) WithClock(now func() time.Time) *BudgetUseCase {
	uc.now = now
	return uc
}

// Create crea un presupuesto en draft con sus líneas. El total se recalcula siempre.
func (uc *BudgetUseCase) Create(ctx context.Context, scope tenancy.Scope, in dto.CreateBudgetRequest) (*dto.BudgetResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	code := tenancy.NormalizeCode(in.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: código requerido", domain.ErrInvalidInput)
	}
	now := uc.now()
	b := &entity.Budget{
		ID:          uuid.New().String(),
		TenantID:    scope.TenantID,
		CustomerID:  in.CustomerID,
		Code:        code,
		Title:       in.Title,
		Description: in.Description,
		Status:      lifecycle.BudgetDraft,
		ValidUntil:  in.ValidUntil,
		CreatedBy:   scope.Actor(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range in.Items {
		if it.Quantity.LessThanOrEqual(decimal.Zero) || it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: cantidad y precio de la línea %q", domain.ErrInvalidInput, it.Description)
		}
		b.Items = append(b.Items, entity.BudgetItem{
			ID:          uuid.New().String(),
			BudgetID:    b.ID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	b.Recalculate()
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		if err := tx.Budgets().Create(ctx, b); err != nil {
			return err
		}
		return tx.Activities().Append(ctx, monitoring.NewActivity(scope, "budget.created", string(lifecycle.KindBudget), b.ID,
			fmt.Sprintf("Presupuesto %s creado", b.Code), now))
	})
	if err != nil {
		return nil, err
	}
	return toBudgetResponse(b), nil
}

// GetByID obtiene un presupuesto del tenant. nil si no existe.
func (uc *BudgetUseCase) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*dto.BudgetResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	b, err := uc.repos.Budgets().GetByID(ctx, scope.TenantID, id)
	if err != nil || b == nil {
		return nil, err
	}
	return toBudgetResponse(b), nil
}

// GetByCode obtiene un presupuesto por código (normalizado). nil si no existe.
func (uc *BudgetUseCase) GetByCode(ctx context.Context, scope tenancy.Scope, code string) (*dto.BudgetResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	b, err := uc.repos.Budgets().GetByCode(ctx, scope.TenantID, tenancy.NormalizeCode(code))
	if err != nil || b == nil {
		return nil, err
	}
	return toBudgetResponse(b), nil
}

// List lista presupuestos, opcionalmente filtrados por estado.
func (uc *BudgetUseCase) List(ctx context.Context, scope tenancy.Scope, status string, page dto.PageRequest) ([]dto.BudgetResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if status != "" {
		if _, err := lifecycle.Parse(lifecycle.KindBudget, status); err != nil {
			return nil, err
		}
	}
	page.DefaultPage()
	list, err := uc.repos.Budgets().List(ctx, scope.TenantID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BudgetResponse, 0, len(list))
	for _, b := range list {
		out = append(out, *toBudgetResponse(b))
	}
	return out, nil
}

// Delete elimina el presupuesto con sus líneas, enlaces e historial.
func (uc *BudgetUseCase) Delete(ctx context.Context, scope tenancy.Scope, id string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repos.Budgets().Delete(ctx, scope.TenantID, id)
}

func toBudgetResponse(b *entity.Budget) *dto.BudgetResponse {
	r := &dto.BudgetResponse{
		ID:                  b.ID,
		Code:                b.Code,
		CustomerID:          b.CustomerID,
		Title:               b.Title,
		Description:         b.Description,
		Status:              string(b.Status),
		Total:               b.Total,
		ValidUntil:          b.ValidUntil,
		PendingConfirmation: b.ConfirmationTokenID != nil,
		ConfirmedAt:         b.ConfirmedAt,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
	for _, it := range b.Items {
		r.Items = append(r.Items, dto.BudgetItemResponse{
			ID: it.ID, ProductID: it.ProductID, Description: it.Description,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total,
		})
	}
	return r
}
