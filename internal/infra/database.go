package infra

import (
	"fmt"

	"tiendapos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, then runs
// RunMigrations so the schema, counters and partial indexes exist.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates all tables and then applies the DDL that
// AutoMigrate cannot express. Safe to call repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Proveedor{},
		&model.Producto{},
		&model.Cliente{},
		&model.Venta{},
		&model.VentaItem{},
		&model.Pago{},
		&model.CorteCaja{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own (sequences, partial unique indexes).
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// display-number counters for VTA-000001 / REC-000001
		`CREATE SEQUENCE IF NOT EXISTS ventas_numero_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS pagos_numero_seq START 1`,
		// at most one open till session per operator
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cortes_caja_abierto_por_usuario
		    ON cortes_caja (usuario_id) WHERE estado = 'abierto'`,
		// low-stock report scans
		`CREATE INDEX IF NOT EXISTS idx_productos_stock_bajo
		    ON productos (seccion) WHERE stock <= stock_minimo AND activo`,
		// receivables report
		`CREATE INDEX IF NOT EXISTS idx_clientes_con_saldo
		    ON clientes (saldo DESC) WHERE saldo > 0`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
