package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// RegistrarVentaRequest is the body of POST /v1/ventas.
// The client is resolved by cliente_id, else by cliente_nombre (find-or-create
// an occasional client), else the sale is anonymous.
type RegistrarVentaRequest struct {
	ClienteID     *string            `json:"cliente_id"     validate:"omitempty,uuid"`
	ClienteNombre *string            `json:"cliente_nombre" validate:"omitempty,min=2,max=120"`
	Items         []ItemVentaRequest `json:"items"          validate:"required,min=1,dive"`
	MetodoPago    string             `json:"metodo_pago"    validate:"required,oneof=efectivo tarjeta transferencia credito"`
	Impuesto      decimal.Decimal    `json:"impuesto"       validate:"min=0"`
	// MontoRecibido is required for efectivo; ignored otherwise.
	MontoRecibido *decimal.Decimal `json:"monto_recibido"`
	// ClienteEmail: optional; when present, the ticket worker mails the PDF.
	ClienteEmail   *string `json:"cliente_email"   validate:"omitempty,email"`
	IdempotencyKey *string `json:"idempotency_key" validate:"omitempty,max=64"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	FechaInicio string `form:"fecha_inicio"` // YYYY-MM-DD or RFC3339
	FechaFin    string `form:"fecha_fin"`
	Estado      string `form:"estado"` // completada | cancelada | empty = all
	MetodoPago  string `form:"metodo_pago"`
	ClienteID   string `form:"cliente_id" validate:"omitempty,uuid"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Codigo         string          `json:"codigo"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	NumeroVenta    string              `json:"numero_venta"`
	ClienteID      *string             `json:"cliente_id"`
	ClienteNombre  *string             `json:"cliente_nombre"`
	UsuarioID      string              `json:"usuario_id"`
	UsuarioNombre  string              `json:"usuario_nombre"`
	Items          []ItemVentaResponse `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Impuesto       decimal.Decimal     `json:"impuesto"`
	Total          decimal.Decimal     `json:"total"`
	MontoRecibido  decimal.Decimal     `json:"monto_recibido"`
	Cambio         decimal.Decimal     `json:"cambio"`
	MontoPagado    decimal.Decimal     `json:"monto_pagado"`
	SaldoPendiente decimal.Decimal     `json:"saldo_pendiente"`
	MetodoPago     string              `json:"metodo_pago"`
	EstadoPago     string              `json:"estado_pago"`
	Estado         string              `json:"estado"`
	CreatedAt      string              `json:"created_at"`
	CanceladaAt    *string             `json:"cancelada_at,omitempty"`
}
