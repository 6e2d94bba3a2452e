package repository

import (
	"context"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cliente, error)
	// FindByNombreTx matches active clients case-insensitively.
	FindByNombreTx(ctx context.Context, tx *gorm.DB, nombre string) (*model.Cliente, error)
	List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error)
	Update(ctx context.Context, c *model.Cliente) error
	// DesactivarSinSaldo deactivates only while saldo = 0.
	DesactivarSinSaldo(ctx context.Context, id uuid.UUID) (bool, error)

	// IncrementarSaldoTx extends credit only if saldo + monto <= limite_credito.
	IncrementarSaldoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error)
	// DecrementarSaldoTx reduces saldo only if saldo >= monto.
	DecrementarSaldoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) CreateTx(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	return conn(ctx, r.db, tx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	return r.FindByIDTx(ctx, nil, id)
}

func (r *clienteRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := conn(ctx, r.db, tx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) FindByNombreTx(ctx context.Context, tx *gorm.DB, nombre string) (*model.Cliente, error) {
	var c model.Cliente
	err := conn(ctx, r.db, tx).
		Where("LOWER(nombre) = LOWER(?) AND activo = true", nombre).
		Order("created_at ASC").
		First(&c).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var clientes []model.Cliente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("activo = true")
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Offset(offset).Limit(filter.Limit).Find(&clientes).Error
	return clientes, total, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	// saldo moves only through the conditional updates below
	return r.db.WithContext(ctx).Model(c).Omit("saldo", "created_at").Select("*").Updates(c).Error
}

func (r *clienteRepo) DesactivarSinSaldo(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Cliente{}).
		Where("id = ? AND saldo = 0", id).
		Update("activo", false)
	return res.RowsAffected == 1, res.Error
}

func (r *clienteRepo) IncrementarSaldoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.Cliente{}).
		Where("id = ? AND saldo + ? <= limite_credito", id, monto).
		UpdateColumn("saldo", gorm.Expr("saldo + ?", monto))
	return res.RowsAffected == 1, res.Error
}

func (r *clienteRepo) DecrementarSaldoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.Cliente{}).
		Where("id = ? AND saldo >= ?", id, monto).
		UpdateColumn("saldo", gorm.Expr("saldo - ?", monto))
	return res.RowsAffected == 1, res.Error
}
