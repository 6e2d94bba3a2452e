package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PagoCompletado = "completado"

// Pago is an abono against a credit sale. Immutable once created.
type Pago struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroRecibo  string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	VentaID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ClienteID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago    string          `gorm:"type:varchar(20);not null"`
	Referencia    *string
	Observaciones *string
	Estado        string `gorm:"type:varchar(20);not null;default:'completado'"`
	CreatedAt     time.Time

	Venta   *Venta   `gorm:"foreignKey:VentaID"`
	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}
