package repository

import (
	"context"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConteoCondicion is the number of active suppliers sharing one payment term.
type ConteoCondicion struct {
	CondicionesPago *string
	Total           int64
}

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error)
	// List matches Buscar against nombre, contacto and email. Estado "" means activo.
	List(ctx context.Context, filter dto.ProveedorFilter) ([]model.Proveedor, int64, error)
	Update(ctx context.Context, p *model.Proveedor) error
	// SetActivo is the soft delete (false) and its undo (true).
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	ContarPorEstado(ctx context.Context) (activos, inactivos int64, err error)
	ContarPorCondicion(ctx context.Context) ([]ConteoCondicion, error)
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *proveedorRepo) List(ctx context.Context, filter dto.ProveedorFilter) ([]model.Proveedor, int64, error) {
	var proveedores []model.Proveedor
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Proveedor{})
	switch filter.Estado {
	case "", dto.ProveedorActivo:
		q = q.Where("activo = true")
	case dto.ProveedorInactivo:
		q = q.Where("activo = false")
	}
	if filter.Buscar != "" {
		like := "%" + filter.Buscar + "%"
		q = q.Where("(nombre ILIKE ? OR contacto ILIKE ? OR email ILIKE ?)", like, like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Offset(offset).Limit(filter.Limit).Find(&proveedores).Error
	return proveedores, total, err
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	// activo moves only through SetActivo
	return r.db.WithContext(ctx).Model(p).Omit("activo", "created_at").Select("*").Updates(p).Error
}

func (r *proveedorRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return r.db.WithContext(ctx).Model(&model.Proveedor{}).Where("id = ?", id).Update("activo", activo).Error
}

func (r *proveedorRepo) ContarPorEstado(ctx context.Context) (activos, inactivos int64, err error) {
	var filas []struct {
		Activo bool
		Total  int64
	}
	err = r.db.WithContext(ctx).Model(&model.Proveedor{}).
		Select("activo, COUNT(*) AS total").
		Group("activo").
		Scan(&filas).Error
	for _, f := range filas {
		if f.Activo {
			activos = f.Total
		} else {
			inactivos = f.Total
		}
	}
	return activos, inactivos, err
}

func (r *proveedorRepo) ContarPorCondicion(ctx context.Context) ([]ConteoCondicion, error) {
	var out []ConteoCondicion
	err := r.db.WithContext(ctx).Model(&model.Proveedor{}).
		Select("condiciones_pago, COUNT(*) AS total").
		Where("activo = true").
		Group("condiciones_pago").
		Order("total DESC, condiciones_pago ASC").
		Scan(&out).Error
	return out, err
}
