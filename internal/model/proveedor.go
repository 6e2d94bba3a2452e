package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor is an optional supplier reference on Producto.
type Proveedor struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string    `gorm:"not null"`
	Contacto        *string
	Telefono        *string
	Email           *string
	Direccion       *string
	CondicionesPago *string
	Activo          bool `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
