package dto

import "github.com/shopspring/decimal"

const (
	ProveedorActivo   = "activo"
	ProveedorInactivo = "inactivo"
	ProveedorTodos    = "todos"
)

type CrearProveedorRequest struct {
	Nombre          string  `json:"nombre"           validate:"required,min=2,max=120"`
	Contacto        *string `json:"contacto"`
	Telefono        *string `json:"telefono"         validate:"omitempty,max=30"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	Direccion       *string `json:"direccion"`
	CondicionesPago *string `json:"condiciones_pago"`
}

type ProveedorFilter struct {
	Buscar string `form:"buscar"`
	Estado string `form:"estado" validate:"omitempty,oneof=activo inactivo todos"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ProveedorResponse struct {
	ID              string  `json:"id"`
	Nombre          string  `json:"nombre"`
	Contacto        *string `json:"contacto"`
	Telefono        *string `json:"telefono"`
	Email           *string `json:"email"`
	Direccion       *string `json:"direccion"`
	CondicionesPago *string `json:"condiciones_pago"`
	Activo          bool    `json:"activo"`
}

type ProveedorListResponse struct {
	Data  []ProveedorResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type ProveedoresPorCondicion struct {
	CondicionesPago *string `json:"condiciones_pago"`
	Total           int64   `json:"total"`
}

type ProveedorEstadisticasResponse struct {
	Total             int64                     `json:"total"`
	Activos           int64                     `json:"activos"`
	Inactivos         int64                     `json:"inactivos"`
	PorcentajeActivos decimal.Decimal           `json:"porcentaje_activos"`
	PorCondicion      []ProveedoresPorCondicion `json:"por_condicion_pago"`
}
