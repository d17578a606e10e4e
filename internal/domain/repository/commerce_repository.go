package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// BudgetRepository puerto de presupuestos. El borrado es físico (cascada).
type BudgetRepository interface {
	// Create persiste cabecera e ítems. domain.ErrDuplicate si (tenant_id, code) existe.
	Create(ctx context.Context, b *entity.Budget) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Budget, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.Budget, error)
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Budget, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// ServiceRepository puerto de servicios. El borrado es físico (cascada).
type ServiceRepository interface {
	Create(ctx context.Context, s *entity.Service) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Service, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.Service, error)
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Service, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// InvoiceRepository puerto de facturas. El borrado es lógico (deleted_at).
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.Invoice, error)
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Invoice, error)
	SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error
}

// ScheduleRepository puerto de citas.
type ScheduleRepository interface {
	Create(ctx context.Context, s *entity.Schedule) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Schedule, error)
	ListByService(ctx context.Context, tenantID, serviceID string) ([]*entity.Schedule, error)
	ListBetween(ctx context.Context, tenantID string, from, to time.Time) ([]*entity.Schedule, error)
}
