package dto

import "github.com/shopspring/decimal"

type AbrirCorteRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCorteRequest struct {
	MontoContado  decimal.Decimal `json:"monto_contado" validate:"min=0"`
	Observaciones *string         `json:"observaciones" validate:"omitempty,max=500"`
}

// TotalesPorMetodo are the completed-sale totals inside a till session.
type TotalesPorMetodo struct {
	Efectivo      decimal.Decimal `json:"efectivo"`
	Tarjeta       decimal.Decimal `json:"tarjeta"`
	Transferencia decimal.Decimal `json:"transferencia"`
	Credito       decimal.Decimal `json:"credito"`
	Total         decimal.Decimal `json:"total"`
}

type CorteResponse struct {
	ID                      string           `json:"id"`
	UsuarioID               string           `json:"usuario_id"`
	UsuarioNombre           string           `json:"usuario_nombre,omitempty"`
	Estado                  string           `json:"estado"`
	FechaApertura           string           `json:"fecha_apertura"`
	FechaCierre             *string          `json:"fecha_cierre"`
	MontoInicial            decimal.Decimal  `json:"monto_inicial"`
	MontoContado            *decimal.Decimal `json:"monto_contado"`
	Totales                 TotalesPorMetodo `json:"totales"`
	EfectivoEsperado        *decimal.Decimal `json:"efectivo_esperado"`
	Diferencia              *decimal.Decimal `json:"diferencia"`
	ClasificacionDiferencia *string          `json:"clasificacion_diferencia"`
	Ventas                  []string         `json:"ventas"`
	Observaciones           *string          `json:"observaciones"`
}

type CorteListResponse struct {
	Data  []CorteResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
