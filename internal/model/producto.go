package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Secciones de la tienda. Every product belongs to exactly one.
const (
	SeccionAbarrotes = "abarrotes"
	SeccionPapeleria = "papeleria"
)

// Producto is a sellable catalog item.
// Stock is only ever mutated through conditional UPDATE statements
// (see repository.ProductoRepository.DescontarStockTx).
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo       string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	Seccion      string          `gorm:"type:varchar(20);index;not null"`
	PrecioCompra decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock        int             `gorm:"not null;default:0;check:chk_productos_stock,stock >= 0"`
	StockMinimo  int             `gorm:"not null;default:5"`
	UnidadMedida string          `gorm:"not null;default:'pieza'"`
	ProveedorID  *uuid.UUID      `gorm:"type:uuid;index"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

// StockBajo reports whether the product reached its reorder threshold.
func (p *Producto) StockBajo() bool { return p.Stock <= p.StockMinimo }
