package dto

import "github.com/shopspring/decimal"

// RangoFechasQuery is bound from ?fecha_inicio=&fecha_fin= on report endpoints.
type RangoFechasQuery struct {
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
}

type VentasPorSeccionRow struct {
	Seccion       string          `json:"seccion"`
	TotalVendido  decimal.Decimal `json:"total_vendido"`
	CantidadItems int64           `json:"cantidad_items"`
}

type ProductoMasVendidoRow struct {
	ProductoID   string          `json:"producto_id"`
	Codigo       string          `json:"codigo"`
	Nombre       string          `json:"nombre"`
	TotalVendido int64           `json:"total_vendido"`
	Importe      decimal.Decimal `json:"importe"`
}

type ResumenPeriodoRow struct {
	Periodo             string          `json:"periodo"`
	TotalVentas         decimal.Decimal `json:"total_ventas"`
	NumeroTransacciones int64           `json:"numero_transacciones"`
}

type ResumenVentasResponse struct {
	Periodo string              `json:"periodo"` // diario | semanal | mensual
	Datos   []ResumenPeriodoRow `json:"datos"`
}
