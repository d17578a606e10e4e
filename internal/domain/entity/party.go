package entity

import "time"

// PartyKind distingue clientes de proveedores; cada uno vive en su propio juego de tablas.
type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartyProvider PartyKind = "provider"
)

// Valid informa si k es un tipo de parte conocido.
func (k PartyKind) Valid() bool {
	return k == PartyCustomer || k == PartyProvider
}

// Tipos de persona para PartyCommonData.
const (
	PersonIndividual = "individual"
	PersonCompany    = "company"
)

// Party cabecera de un cliente o proveedor. Los subregistros 1:1 se completan de forma
// incremental y son nil mientras no existan.
type Party struct {
	ID         string
	TenantID   string
	Kind       PartyKind
	Code       string // único por tenant
	Status     string // active, inactive
	CommonData *PartyCommonData
	Contact    *PartyContact
	Address    *PartyAddress
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// DisplayName nombre legible de la parte (razón social o código).
func (p *Party) DisplayName() string {
	if p.CommonData != nil {
		if p.CommonData.TradeName != "" {
			return p.CommonData.TradeName
		}
		if p.CommonData.Name != "" {
			return p.CommonData.Name
		}
	}
	return p.Code
}

// PartyCommonData datos de identidad (persona o empresa).
type PartyCommonData struct {
	ID         string
	PersonType string // individual, company
	Name       string
	TradeName  string
	Document   string // CPF/CNPJ, NIT, etc.
	Notes      string
	UpdatedAt  time.Time
}

// PartyContact datos de contacto.
type PartyContact struct {
	ID        string
	Email     string // único por tenant entre partes no eliminadas
	Phone     string
	Mobile    string
	Website   string
	UpdatedAt time.Time
}

// PartyAddress dirección postal.
type PartyAddress struct {
	ID         string
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	PostalCode string
	Country    string
	UpdatedAt  time.Time
}
