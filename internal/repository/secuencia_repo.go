package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Counter names. In PostgreSQL they are sequences created by infra.RunMigrations.
const (
	SecuenciaVentas = "ventas_numero_seq"
	SecuenciaPagos  = "pagos_numero_seq"
)

// Sequencer hands out strictly increasing display numbers. Values are never
// reused; a rolled-back transaction leaves a gap.
type Sequencer interface {
	Next(ctx context.Context, tx *gorm.DB, nombre string) (int64, error)
}

type pgSequencer struct{ db *gorm.DB }

// NewPostgresSequencer uses nextval() inside the caller's transaction.
func NewPostgresSequencer(db *gorm.DB) Sequencer { return &pgSequencer{db: db} }

func (s *pgSequencer) Next(ctx context.Context, tx *gorm.DB, nombre string) (int64, error) {
	var n int64
	err := conn(ctx, s.db, tx).Raw("SELECT nextval(?::regclass)", nombre).Scan(&n).Error
	return n, err
}

type redisSequencer struct{ rdb *redis.Client }

// NewRedisSequencer uses INCR on "secuencia:{nombre}". The tx argument is ignored.
func NewRedisSequencer(rdb *redis.Client) Sequencer { return &redisSequencer{rdb: rdb} }

func (s *redisSequencer) Next(ctx context.Context, _ *gorm.DB, nombre string) (int64, error) {
	return s.rdb.Incr(ctx, "secuencia:"+nombre).Result()
}

// FormatNumeroVenta renders VTA-000123.
func FormatNumeroVenta(n int64) string { return fmt.Sprintf("VTA-%06d", n) }

// FormatNumeroRecibo renders REC-000123.
func FormatNumeroRecibo(n int64) string { return fmt.Sprintf("REC-%06d", n) }
