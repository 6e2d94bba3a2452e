package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Estado: "abierto" | "cerrado"
const (
	CorteAbierto = "abierto"
	CorteCerrado = "cerrado"
)

// CorteCaja is one operator's till session. At most one row per UsuarioID may be
// abierto; a partial unique index backs that rule (see infra.applySchemaPatches).
// Closing data is written once and never edited.
type CorteCaja struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID     uuid.UUID `gorm:"type:uuid;index;not null"`
	FechaApertura time.Time `gorm:"not null"`
	FechaCierre   *time.Time
	MontoInicial  decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	MontoContado  *decimal.Decimal `gorm:"type:decimal(12,2)"`

	TotalEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTarjeta       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCredito       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalVentas        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// EfectivoEsperado = MontoInicial + TotalEfectivo; Diferencia = MontoContado - EfectivoEsperado
	EfectivoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// ClasificacionDiferencia: "normal" | "advertencia" | "critico"
	ClasificacionDiferencia *string `gorm:"type:varchar(20)"`

	VentaIDs      pq.StringArray `gorm:"type:text[]"`
	Observaciones *string
	Estado        string `gorm:"type:varchar(20);not null;default:'abierto'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}

func (CorteCaja) TableName() string { return "cortes_caja" }
