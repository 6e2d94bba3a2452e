package repository

import (
	"context"
	"time"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentaQuery narrows List. Zero values mean "no filter".
type VentaQuery struct {
	Desde      *time.Time
	Hasta      *time.Time // exclusive
	Estado     string
	MetodoPago string
	ClienteID  *uuid.UUID
	Offset     int
	Limit      int
}

type VentaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Venta, error)
	// FindByIDForUpdateTx locks the sale row until the tx ends.
	FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, q VentaQuery) ([]model.Venta, int64, error)
	// ListCompletadasEntre returns completed sales with desde <= created_at <= hasta.
	ListCompletadasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)

	// MarcarCanceladaTx flips completada → cancelada; false if it was not completada.
	MarcarCanceladaTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error)
	AplicarPagoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, monto decimal.Decimal, estadoPago string) error
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return conn(ctx, r.db, tx).Omit("Cliente", "Usuario").Create(v).Error
}

func (r *ventaRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("venta_items.linea") }).
		Preload("Items.Producto").
		Preload("Cliente").
		Preload("Usuario")
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.preloaded(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Venta, error) {
	var v model.Venta
	err := r.preloaded(ctx).Where("idempotency_key = ?", key).First(&v).Error
	return &v, err
}

func (r *ventaRepo) FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&v, "id = ?", id).Error
	if err != nil {
		return &v, err
	}
	err = conn(ctx, r.db, tx).Where("venta_id = ?", id).Order("linea").Find(&v.Items).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, q VentaQuery) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Venta{})
	if q.Desde != nil {
		base = base.Where("created_at >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		base = base.Where("created_at < ?", *q.Hasta)
	}
	if q.Estado != "" {
		base = base.Where("estado = ?", q.Estado)
	}
	if q.MetodoPago != "" {
		base = base.Where("metodo_pago = ?", q.MetodoPago)
	}
	if q.ClienteID != nil {
		base = base.Where("cliente_id = ?", *q.ClienteID)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := base.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("venta_items.linea") }).
		Preload("Items.Producto").Preload("Cliente").Preload("Usuario").
		Order("created_at DESC").Offset(q.Offset)
	if q.Limit > 0 {
		find = find.Limit(q.Limit)
	}
	err := find.Find(&ventas).Error
	return ventas, total, err
}

func (r *ventaRepo) ListCompletadasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("estado = ? AND created_at >= ? AND created_at <= ?", model.VentaCompletada, desde, hasta).
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) MarcarCanceladaTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.Venta{}).
		Where("id = ? AND estado = ?", id, model.VentaCompletada).
		Updates(map[string]any{"estado": model.VentaCancelada, "cancelada_at": at})
	return res.RowsAffected == 1, res.Error
}

func (r *ventaRepo) AplicarPagoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, monto decimal.Decimal, estadoPago string) error {
	return conn(ctx, r.db, tx).Model(&model.Venta{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"monto_pagado": gorm.Expr("monto_pagado + ?", monto),
			"estado_pago":  estadoPago,
		}).Error
}
