package dto

import "github.com/shopspring/decimal"

type RegistrarPagoRequest struct {
	ClienteID     string          `json:"cliente_id"    validate:"required,uuid"`
	VentaID       string          `json:"venta_id"      validate:"required,uuid"`
	Monto         decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	MetodoPago    string          `json:"metodo_pago"   validate:"required,oneof=efectivo tarjeta transferencia"`
	Referencia    *string         `json:"referencia"    validate:"omitempty,max=100"`
	Observaciones *string         `json:"observaciones" validate:"omitempty,max=500"`
}

type PagoFilter struct {
	ClienteID   string `form:"cliente_id" validate:"omitempty,uuid"`
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PagoResponse struct {
	ID            string          `json:"id"`
	NumeroRecibo  string          `json:"numero_recibo"`
	VentaID       string          `json:"venta_id"`
	NumeroVenta   string          `json:"numero_venta,omitempty"`
	ClienteID     string          `json:"cliente_id"`
	ClienteNombre string          `json:"cliente_nombre,omitempty"`
	Monto         decimal.Decimal `json:"monto"`
	MetodoPago    string          `json:"metodo_pago"`
	Referencia    *string         `json:"referencia"`
	Observaciones *string         `json:"observaciones"`
	Estado        string          `json:"estado"`
	CreatedAt     string          `json:"created_at"`
}

// RegistrarPagoResponse adds the balances left after applying the payment.
type RegistrarPagoResponse struct {
	Pago            PagoResponse    `json:"pago"`
	SaldoCliente    decimal.Decimal `json:"saldo_cliente"`
	SaldoVenta      decimal.Decimal `json:"saldo_venta"`
	EstadoPagoVenta string          `json:"estado_pago_venta"`
}

type PagoListResponse struct {
	Data  []PagoResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
