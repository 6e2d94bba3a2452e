package repository

import (
	"context"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"

	"gorm.io/gorm"
)

// ReporteRepository runs the read-only aggregates behind /v1/reportes.
type ReporteRepository interface {
	VentasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)
	VentasPorSeccion(ctx context.Context, desde, hasta *time.Time) ([]dto.VentasPorSeccionRow, error)
	ProductosMasVendidos(ctx context.Context, limit int) ([]dto.ProductoMasVendidoRow, error)
	CuentasPorCobrar(ctx context.Context) ([]model.Cliente, error)
	InventarioBajo(ctx context.Context) ([]model.Producto, error)
	// ResumenVentas groups completed sales by to_char(created_at, formato).
	ResumenVentas(ctx context.Context, formato string) ([]dto.ResumenPeriodoRow, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) VentasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Preload("Cliente").Preload("Usuario").
		Where("created_at >= ? AND created_at < ?", desde, hasta).
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *reporteRepo) VentasPorSeccion(ctx context.Context, desde, hasta *time.Time) ([]dto.VentasPorSeccionRow, error) {
	var rows []dto.VentasPorSeccionRow
	q := r.db.WithContext(ctx).
		Table("venta_items vi").
		Select("p.seccion AS seccion, COALESCE(SUM(vi.subtotal), 0) AS total_vendido, COALESCE(SUM(vi.cantidad), 0) AS cantidad_items").
		Joins("JOIN ventas v ON v.id = vi.venta_id").
		Joins("JOIN productos p ON p.id = vi.producto_id").
		Where("v.estado = ?", model.VentaCompletada)
	if desde != nil {
		q = q.Where("v.created_at >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("v.created_at < ?", *hasta)
	}
	err := q.Group("p.seccion").Order("total_vendido DESC").Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) ProductosMasVendidos(ctx context.Context, limit int) ([]dto.ProductoMasVendidoRow, error) {
	var rows []dto.ProductoMasVendidoRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id::text AS producto_id, p.codigo, p.nombre,
		       SUM(vi.cantidad) AS total_vendido,
		       SUM(vi.subtotal) AS importe
		FROM venta_items vi
		JOIN ventas v    ON v.id = vi.venta_id
		JOIN productos p ON p.id = vi.producto_id
		WHERE v.estado = ?
		GROUP BY p.id, p.codigo, p.nombre
		ORDER BY total_vendido DESC, p.nombre ASC
		LIMIT ?`, model.VentaCompletada, limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) CuentasPorCobrar(ctx context.Context) ([]model.Cliente, error) {
	var clientes []model.Cliente
	err := r.db.WithContext(ctx).
		Where("activo = true AND saldo > 0").
		Order("saldo DESC").
		Find(&clientes).Error
	return clientes, err
}

func (r *reporteRepo) InventarioBajo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = true AND stock <= stock_minimo").
		Order("stock ASC, nombre ASC").
		Find(&productos).Error
	return productos, err
}

func (r *reporteRepo) ResumenVentas(ctx context.Context, formato string) ([]dto.ResumenPeriodoRow, error) {
	var rows []dto.ResumenPeriodoRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT to_char(created_at, ?) AS periodo,
		       COALESCE(SUM(total), 0) AS total_ventas,
		       COUNT(*) AS numero_transacciones
		FROM ventas
		WHERE estado = ?
		GROUP BY 1
		ORDER BY 1 ASC`, formato, model.VentaCompletada).
		Scan(&rows).Error
	return rows, err
}
