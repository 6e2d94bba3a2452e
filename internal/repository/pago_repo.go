package repository

import (
	"context"
	"time"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PagoQuery narrows List. Zero values mean "no filter".
type PagoQuery struct {
	ClienteID *uuid.UUID
	Desde     *time.Time
	Hasta     *time.Time // exclusive
	Offset    int
	Limit     int
}

// PagoRepository has no update or delete: payments are immutable.
type PagoRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Pago) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error)
	List(ctx context.Context, q PagoQuery) ([]model.Pago, int64, error)
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

func (r *pagoRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Pago) error {
	return conn(ctx, r.db, tx).Omit("Venta", "Cliente").Create(p).Error
}

func (r *pagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error) {
	var p model.Pago
	err := r.db.WithContext(ctx).Preload("Venta").Preload("Cliente").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pagoRepo) List(ctx context.Context, q PagoQuery) ([]model.Pago, int64, error) {
	var pagos []model.Pago
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Pago{})
	if q.ClienteID != nil {
		base = base.Where("cliente_id = ?", *q.ClienteID)
	}
	if q.Desde != nil {
		base = base.Where("created_at >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		base = base.Where("created_at < ?", *q.Hasta)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := base.Preload("Venta").Preload("Cliente").Order("created_at DESC").Offset(q.Offset)
	if q.Limit > 0 {
		find = find.Limit(q.Limit)
	}
	err := find.Find(&pagos).Error
	return pagos, total, err
}
