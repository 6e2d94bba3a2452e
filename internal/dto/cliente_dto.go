package dto

import "github.com/shopspring/decimal"

type CrearClienteRequest struct {
	Nombre        string          `json:"nombre"         validate:"required,min=2,max=120"`
	Telefono      *string         `json:"telefono"       validate:"omitempty,max=30"`
	Email         *string         `json:"email"          validate:"omitempty,email"`
	Direccion     *string         `json:"direccion"      validate:"omitempty,max=200"`
	LimiteCredito decimal.Decimal `json:"limite_credito" validate:"min=0"`
}

type ActualizarClienteRequest struct {
	Nombre        *string          `json:"nombre"         validate:"omitempty,min=2,max=120"`
	Telefono      *string          `json:"telefono"       validate:"omitempty,max=30"`
	Email         *string          `json:"email"          validate:"omitempty,email"`
	Direccion     *string          `json:"direccion"      validate:"omitempty,max=200"`
	LimiteCredito *decimal.Decimal `json:"limite_credito"`
}

type ClienteFilter struct {
	Nombre string `form:"nombre"`
	Tipo   string `form:"tipo" validate:"omitempty,oneof=regular ocasional"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ClienteResponse struct {
	ID                string          `json:"id"`
	Nombre            string          `json:"nombre"`
	Telefono          *string         `json:"telefono"`
	Email             *string         `json:"email"`
	Direccion         *string         `json:"direccion"`
	Tipo              string          `json:"tipo"`
	LimiteCredito     decimal.Decimal `json:"limite_credito"`
	Saldo             decimal.Decimal `json:"saldo"`
	CreditoDisponible decimal.Decimal `json:"credito_disponible"`
	Activo            bool            `json:"activo"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
