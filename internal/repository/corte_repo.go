package repository

import (
	"context"

	"tiendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CorteRepository interface {
	Create(ctx context.Context, c *model.CorteCaja) error
	// FindAbiertoPorUsuario returns gorm.ErrRecordNotFound when the operator has no open session.
	FindAbiertoPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.CorteCaja, error)
	// Cerrar persists the closing data only if the session is still abierto.
	Cerrar(ctx context.Context, c *model.CorteCaja) (bool, error)
	// List returns sessions newest first; usuarioID nil means every operator.
	List(ctx context.Context, usuarioID *uuid.UUID, page, limit int) ([]model.CorteCaja, int64, error)
}

type corteRepo struct{ db *gorm.DB }

func NewCorteRepository(db *gorm.DB) CorteRepository { return &corteRepo{db: db} }

func (r *corteRepo) Create(ctx context.Context, c *model.CorteCaja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *corteRepo) FindAbiertoPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.CorteCaja, error) {
	var c model.CorteCaja
	err := r.db.WithContext(ctx).Preload("Usuario").
		Where("usuario_id = ? AND estado = ?", usuarioID, model.CorteAbierto).
		First(&c).Error
	return &c, err
}

func (r *corteRepo) Cerrar(ctx context.Context, c *model.CorteCaja) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.CorteCaja{}).
		Where("id = ? AND estado = ?", c.ID, model.CorteAbierto).
		Updates(map[string]any{
			"fecha_cierre":             c.FechaCierre,
			"monto_contado":            c.MontoContado,
			"total_efectivo":           c.TotalEfectivo,
			"total_tarjeta":            c.TotalTarjeta,
			"total_transferencia":      c.TotalTransferencia,
			"total_credito":            c.TotalCredito,
			"total_ventas":             c.TotalVentas,
			"efectivo_esperado":        c.EfectivoEsperado,
			"diferencia":               c.Diferencia,
			"clasificacion_diferencia": c.ClasificacionDiferencia,
			"venta_ids":                c.VentaIDs,
			"observaciones":            c.Observaciones,
			"estado":                   model.CorteCerrado,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *corteRepo) List(ctx context.Context, usuarioID *uuid.UUID, page, limit int) ([]model.CorteCaja, int64, error) {
	var cortes []model.CorteCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CorteCaja{})
	if usuarioID != nil {
		q = q.Where("usuario_id = ?", *usuarioID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Usuario").
		Order("fecha_apertura DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&cortes).Error
	return cortes, total, err
}
