package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metodos de pago.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
	MetodoCredito       = "credito"
)

// Estado de pago de una venta.
const (
	PagoPagado    = "pagado"
	PagoPendiente = "pendiente"
	PagoParcial   = "parcial"
)

// Estado de una venta.
const (
	VentaCompletada = "completada"
	VentaCancelada  = "cancelada"
)

// Venta is an append-mostly ledger record. Cancellation is the only mutation
// besides MontoPagado/EstadoPago moving forward through payments.
//
// Invariant: sum(Items.Subtotal) + Impuesto == Total.
type Venta struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroVenta string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	ClienteID   *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID   uuid.UUID  `gorm:"type:uuid;index;not null"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Impuesto      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoRecibido decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Cambio        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// MontoPagado is the sum of Pago records applied to this sale.
	MontoPagado decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	MetodoPago string `gorm:"type:varchar(20);not null"`
	EstadoPago string `gorm:"type:varchar(20);not null"`
	Estado     string `gorm:"type:varchar(20);not null;default:'completada';index"`

	// IdempotencyKey lets a retried POST return the sale it already created.
	IdempotencyKey *string `gorm:"type:varchar(64);uniqueIndex"`

	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
	CanceladaAt *time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
}

// Pendiente is the outstanding balance: total minus payments applied so far.
// Only credit sales carry a balance.
func (v *Venta) Pendiente() decimal.Decimal {
	if v.MetodoPago != MetodoCredito {
		return decimal.Zero
	}
	return v.Total.Sub(v.MontoPagado)
}

// VentaItem snapshots the unit price at sale time.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Linea          int             `gorm:"not null"` // 1-based position in the cart
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
