package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipo de cliente: "regular" are registered explicitly, "ocasional" are created
// on the fly when a sale names a client that does not exist yet.
const (
	ClienteRegular   = "regular"
	ClienteOcasional = "ocasional"
)

// Cliente owes Saldo to the store. Saldo <= LimiteCredito is checked when credit
// is extended, not when the limit is later lowered.
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string    `gorm:"index;not null"`
	Telefono      *string
	Email         *string
	Direccion     *string
	Tipo          string          `gorm:"type:varchar(20);not null;default:'regular'"`
	LimiteCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Saldo         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;check:chk_clientes_saldo,saldo >= 0"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreditoDisponible is the remaining room under the credit limit.
func (c *Cliente) CreditoDisponible() decimal.Decimal {
	return c.LimiteCredito.Sub(c.Saldo)
}
