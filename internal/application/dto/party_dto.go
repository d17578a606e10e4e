package dto

import "time"

// CommonDataInput datos de identidad de una parte.
type CommonDataInput struct {
	PersonType string `json:"person_type" validate:"omitempty,oneof=individual company"`
	Name       string `json:"name" validate:"omitempty,max=200"`
	TradeName  string `json:"trade_name" validate:"omitempty,max=200"`
	Document   string `json:"document" validate:"omitempty,max=50"`
	Notes      string `json:"notes"`
}

// ContactInput datos de contacto de una parte.
type ContactInput struct {
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Mobile  string `json:"mobile" validate:"omitempty,max=50"`
	Website string `json:"website" validate:"omitempty,max=200"`
}

// AddressInput dirección postal de una parte.
type AddressInput struct {
	Street     string `json:"street" validate:"omitempty,max=200"`
	Number     string `json:"number" validate:"omitempty,max=20"`
	Complement string `json:"complement" validate:"omitempty,max=200"`
	District   string `json:"district" validate:"omitempty,max=100"`
	City       string `json:"city" validate:"omitempty,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
	Country    string `json:"country" validate:"omitempty,max=2"`
}

// CreatePartyRequest alta de cliente o proveedor; los subregistros son opcionales.
type CreatePartyRequest struct {
	Code       string           `json:"code" validate:"required,min=1,max=50"`
	CommonData *CommonDataInput `json:"common_data"`
	Contact    *ContactInput    `json:"contact"`
	Address    *AddressInput    `json:"address"`
}

// PartyResponse cliente o proveedor con sus subregistros.
type PartyResponse struct {
	ID         string           `json:"id"`
	Kind       string           `json:"kind"`
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	CommonData *CommonDataInput `json:"common_data,omitempty"`
	Contact    *ContactInput    `json:"contact,omitempty"`
	Address    *AddressInput    `json:"address,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
