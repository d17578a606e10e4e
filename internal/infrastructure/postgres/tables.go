package postgres

import (
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// Los nombres de tabla y columna se interpolan en SQL solo desde estos mapas cerrados,
// nunca desde la entrada del usuario.

type statusTable struct {
	table       string
	history     string
	fk          string // columna de la entidad en la tabla de historial
	softDelete  bool
	confirmable bool
}

var statusTables = map[lifecycle.Kind]statusTable{
	lifecycle.KindBudget:   {table: "budgets", history: "budget_action_history", fk: "budget_id", confirmable: true},
	lifecycle.KindService:  {table: "services", history: "service_action_history", fk: "service_id", confirmable: true},
	lifecycle.KindInvoice:  {table: "invoices", history: "invoice_action_history", fk: "invoice_id", softDelete: true},
	lifecycle.KindSchedule: {table: "schedules", history: "schedule_action_history", fk: "schedule_id"},
}

// alive predicado que oculta filas eliminadas lógicamente.
func (t statusTable) alive(alias string) string {
	if !t.softDelete {
		return "TRUE"
	}
	if alias != "" {
		return alias + ".deleted_at IS NULL"
	}
	return "deleted_at IS NULL"
}

func statusTableFor(kind lifecycle.Kind) (statusTable, error) {
	t, ok := statusTables[kind]
	if !ok {
		return statusTable{}, fmt.Errorf("tipo de entidad desconocido: %q", kind)
	}
	return t, nil
}

type shareTable struct {
	table string
	fk    string
}

var shareTables = map[lifecycle.ShareKind]shareTable{
	lifecycle.ShareBudget:  {table: "budget_shares", fk: "budget_id"},
	lifecycle.ShareInvoice: {table: "invoice_shares", fk: "invoice_id"},
}

type partyTables struct {
	header  string
	common  string
	contact string
	address string
	fk      string
}

var partyTablesByKind = map[entity.PartyKind]partyTables{
	entity.PartyCustomer: {
		header: "customers", common: "customer_common_data", contact: "customer_contacts",
		address: "customer_addresses", fk: "customer_id",
	},
	entity.PartyProvider: {
		header: "providers", common: "provider_common_data", contact: "provider_contacts",
		address: "provider_addresses", fk: "provider_id",
	},
}

func partyTablesFor(kind entity.PartyKind) (partyTables, error) {
	t, ok := partyTablesByKind[kind]
	if !ok {
		return partyTables{}, fmt.Errorf("tipo de parte desconocido: %q", kind)
	}
	return t, nil
}
