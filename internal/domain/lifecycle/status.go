// Package lifecycle modela los estados de las entidades con ciclo de vida
// (presupuestos, servicios, facturas, agendas) como enumeraciones cerradas.
//
// Los valores son los mismos tokens que existen en la base de datos y en la API;
// son sensibles a mayúsculas.
package lifecycle

import (
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain"
)

// Kind identifica el tipo de entidad con estado.
type Kind string

const (
	KindBudget   Kind = "budget"
	KindService  Kind = "service"
	KindInvoice  Kind = "invoice"
	KindSchedule Kind = "schedule"
)

// Kinds devuelve todos los tipos conocidos.
func Kinds() []Kind {
	return []Kind{KindBudget, KindService, KindInvoice, KindSchedule}
}

// Valid informa si k es un tipo conocido.
func (k Kind) Valid() bool {
	switch k {
	case KindBudget, KindService, KindInvoice, KindSchedule:
		return true
	}
	return false
}

// Status es un valor de estado de cualquier entidad con ciclo de vida.
type Status interface {
	Kind() Kind
	String() string
	Valid() bool
}

// BudgetStatus estados de un presupuesto.
type BudgetStatus string

const (
	BudgetDraft     BudgetStatus = "draft"
	BudgetSent      BudgetStatus = "sent"
	BudgetApproved  BudgetStatus = "approved"
	BudgetRejected  BudgetStatus = "rejected"
	BudgetExpired   BudgetStatus = "expired"
	BudgetRevised   BudgetStatus = "revised"
	BudgetCancelled BudgetStatus = "cancelled"
)

func (s BudgetStatus) Kind() Kind     { return KindBudget }
func (s BudgetStatus) String() string { return string(s) }

func (s BudgetStatus) Valid() bool {
	switch s {
	case BudgetDraft, BudgetSent, BudgetApproved, BudgetRejected,
		BudgetExpired, BudgetRevised, BudgetCancelled:
		return true
	}
	return false
}

// ServiceStatus estados de un servicio (orden de trabajo).
type ServiceStatus string

const (
	ServiceScheduled          ServiceStatus = "scheduled"
	ServicePreparing          ServiceStatus = "preparing"
	ServiceOnHold             ServiceStatus = "on-hold"
	ServiceInProgress         ServiceStatus = "in-progress"
	ServicePartiallyCompleted ServiceStatus = "partially-completed"
	ServiceApproved           ServiceStatus = "approved"
	ServiceRejected           ServiceStatus = "rejected"
	ServiceCompleted          ServiceStatus = "completed"
	ServiceCancelled          ServiceStatus = "cancelled"
)

func (s ServiceStatus) Kind() Kind     { return KindService }
func (s ServiceStatus) String() string { return string(s) }

func (s ServiceStatus) Valid() bool {
	switch s {
	case ServiceScheduled, ServicePreparing, ServiceOnHold, ServiceInProgress,
		ServicePartiallyCompleted, ServiceApproved, ServiceRejected,
		ServiceCompleted, ServiceCancelled:
		return true
	}
	return false
}

// InvoiceStatus estados de una factura.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Kind() Kind     { return KindInvoice }
func (s InvoiceStatus) String() string { return string(s) }

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// ScheduleStatus estados de una cita agendada.
type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "pending"
	ScheduleConfirmed ScheduleStatus = "confirmed"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleNoShow    ScheduleStatus = "no-show"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

func (s ScheduleStatus) Kind() Kind     { return KindSchedule }
func (s ScheduleStatus) String() string { return string(s) }

func (s ScheduleStatus) Valid() bool {
	switch s {
	case SchedulePending, ScheduleConfirmed, ScheduleCompleted, ScheduleNoShow, ScheduleCancelled:
		return true
	}
	return false
}

// Parse convierte un valor crudo al estado tipado del kind indicado.
func Parse(kind Kind, raw string) (Status, error) {
	var s Status
	switch kind {
	case KindBudget:
		s = BudgetStatus(raw)
	case KindService:
		s = ServiceStatus(raw)
	case KindInvoice:
		s = InvoiceStatus(raw)
	case KindSchedule:
		s = ScheduleStatus(raw)
	default:
		return nil, fmt.Errorf("%w: tipo %q desconocido", domain.ErrInvalidInput, kind)
	}
	if !s.Valid() {
		return nil, fmt.Errorf("%w: estado %q no válido para %s", domain.ErrInvalidInput, raw, kind)
	}
	return s, nil
}

// Initial devuelve el estado con el que nace una entidad del kind indicado.
func Initial(kind Kind) Status {
	switch kind {
	case KindBudget:
		return BudgetDraft
	case KindService:
		return ServiceScheduled
	case KindInvoice:
		return InvoicePending
	case KindSchedule:
		return SchedulePending
	}
	return nil
}

// Values lista los estados posibles de un kind, en orden de declaración.
func Values(kind Kind) []Status {
	switch kind {
	case KindBudget:
		return []Status{BudgetDraft, BudgetSent, BudgetApproved, BudgetRejected, BudgetExpired, BudgetRevised, BudgetCancelled}
	case KindService:
		return []Status{ServiceScheduled, ServicePreparing, ServiceOnHold, ServiceInProgress,
			ServicePartiallyCompleted, ServiceApproved, ServiceRejected, ServiceCompleted, ServiceCancelled}
	case KindInvoice:
		return []Status{InvoicePending, InvoicePaid, InvoiceOverdue, InvoiceCancelled}
	case KindSchedule:
		return []Status{SchedulePending, ScheduleConfirmed, ScheduleCompleted, ScheduleNoShow, ScheduleCancelled}
	}
	return nil
}
