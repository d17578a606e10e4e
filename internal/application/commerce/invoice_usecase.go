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

// InvoiceUseCase casos de uso de facturas.
type InvoiceUseCase struct {
	repos repository.Tx
	tx    repository.TxRunner
	now   func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(repos repository.Tx, tx repository.TxRunner) *InvoiceUseCase {
	return &InvoiceUseCase{repos: repos, tx: tx, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *InvoiceUseCase) WithClock(now func() time.Time) *InvoiceUseCase {
	uc.now = now
	return uc
}

// Create crea una factura en pending. Con ServiceID el total y el cliente se toman del
// servicio si no se envían.
func (uc *InvoiceUseCase) Create(ctx context.Context, scope tenancy.Scope, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	code := tenancy.NormalizeCode(in.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: código requerido", domain.ErrInvalidInput)
	}
	if in.Total != nil && in.Total.IsNegative() {
		return nil, fmt.Errorf("%w: total negativo", domain.ErrInvalidInput)
	}
	now := uc.now()
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		TenantID:   scope.TenantID,
		CustomerID: in.CustomerID,
		ServiceID:  in.ServiceID,
		Code:       code,
		Status:     lifecycle.InvoicePending,
		IssueDate:  now,
		DueDate:    in.DueDate,
		Total:      decimal.Zero,
		Notes:      in.Notes,
		CreatedBy:  scope.Actor(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.IssueDate != nil {
		inv.IssueDate = *in.IssueDate
	}
	if inv.DueDate != nil && inv.DueDate.Before(inv.IssueDate) {
		return nil, fmt.Errorf("%w: vencimiento anterior a la emisión", domain.ErrInvalidInput)
	}
	if in.Total != nil {
		inv.Total = *in.Total
	}
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		if in.ServiceID != nil {
			s, err := tx.Services().GetByID(ctx, scope.TenantID, *in.ServiceID)
			if err != nil {
				return err
			}
			if s == nil {
				return domain.ErrNotFound
			}
			if inv.CustomerID == nil {
				inv.CustomerID = s.CustomerID
			}
			if in.Total == nil {
				inv.Total = s.Total
			}
		}
		if err := tx.Invoices().Create(ctx, inv); err != nil {
			return err
		}
		return tx.Activities().Append(ctx, monitoring.NewActivity(scope, "invoice.created", string(lifecycle.KindInvoice), inv.ID,
			fmt.Sprintf("Factura %s creada", inv.Code), now))
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetByID obtiene una factura no eliminada. nil si no existe.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*dto.InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	inv, err := uc.repos.Invoices().GetByID(ctx, scope.TenantID, id)
	if err != nil || inv == nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// List lista facturas no eliminadas, opcionalmente por estado.
func (uc *InvoiceUseCase) List(ctx context.Context, scope tenancy.Scope, status string, page dto.PageRequest) ([]dto.InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if status != "" {
		if _, err := lifecycle.Parse(lifecycle.KindInvoice, status); err != nil {
			return nil, err
		}
	}
	page.DefaultPage()
	list, err := uc.repos.Invoices().List(ctx, scope.TenantID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *toInvoiceResponse(inv))
	}
	return out, nil
}

// Delete marca la factura como eliminada; el historial se conserva.
func (uc *InvoiceUseCase) Delete(ctx context.Context, scope tenancy.Scope, id string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.repos.Invoices().SoftDelete(ctx, scope.TenantID, id, uc.now())
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:         inv.ID,
		Code:       inv.Code,
		CustomerID: inv.CustomerID,
		ServiceID:  inv.ServiceID,
		Status:     string(inv.Status),
		IssueDate:  inv.IssueDate,
		DueDate:    inv.DueDate,
		Total:      inv.Total,
		Notes:      inv.Notes,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}
