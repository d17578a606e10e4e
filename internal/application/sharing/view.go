package sharing

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// resourceView carga el recurso del enlace. nil si ya no existe.
func resourceView(ctx context.Context, tx repository.Tx, s *entity.Share) (*dto.PublicShareView, error) {
	v := &dto.PublicShareView{
		Kind:        string(s.Kind),
		ShareStatus: string(s.Status),
		ExpiresAt:   s.ExpiresAt,
		AccessCount: s.AccessCount,
	}
	for _, p := range s.Permissions {
		v.Permissions = append(v.Permissions, string(p))
	}
	switch s.Kind {
	case lifecycle.ShareBudget:
		b, err := tx.Budgets().GetByID(ctx, s.TenantID, s.ResourceID)
		if err != nil || b == nil {
			return nil, err
		}
		bv := &dto.PublicBudgetView{
			Code: b.Code, Title: b.Title, Description: b.Description, Status: string(b.Status),
			Total: b.Total, ValidUntil: b.ValidUntil, Items: []dto.BudgetItemResponse{},
		}
		for _, it := range b.Items {
			bv.Items = append(bv.Items, dto.BudgetItemResponse{
				ID: it.ID, ProductID: it.ProductID, Description: it.Description,
				Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total,
			})
		}
		v.Budget = bv
	case lifecycle.ShareInvoice:
		inv, err := tx.Invoices().GetByID(ctx, s.TenantID, s.ResourceID)
		if err != nil || inv == nil {
			return nil, err
		}
		v.Invoice = &dto.PublicInvoiceView{
			Code: inv.Code, Status: string(inv.Status), IssueDate: inv.IssueDate, DueDate: inv.DueDate, Total: inv.Total,
		}
	default:
		return nil, nil
	}
	return v, nil
}
