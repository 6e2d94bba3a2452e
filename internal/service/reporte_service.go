package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tiendapos/internal/dto"
	"tiendapos/internal/infra"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/rs/zerolog/log"
)

// Periodos de ResumenVentas → to_char format.
var formatosPeriodo = map[string]string{
	"diario":  "YYYY-MM-DD",
	"semanal": "IYYY-IW",
	"mensual": "YYYY-MM",
}

const productosMasVendidosDefault = 10

type ReporteService interface {
	VentasPorFecha(ctx context.Context, q dto.RangoFechasQuery) ([]dto.VentaResponse, error)
	ExportarVentasXLSX(ctx context.Context, q dto.RangoFechasQuery, w io.Writer) error
	VentasPorSeccion(ctx context.Context, q dto.RangoFechasQuery) ([]dto.VentasPorSeccionRow, error)
	ProductosMasVendidos(ctx context.Context, limit int) ([]dto.ProductoMasVendidoRow, error)
	CuentasPorCobrar(ctx context.Context) ([]dto.ClienteResponse, error)
	InventarioBajo(ctx context.Context) ([]dto.ProductoResponse, error)
	ResumenVentas(ctx context.Context, periodo string) (*dto.ResumenVentasResponse, error)
}

type reporteService struct {
	repo  repository.ReporteRepository
	cache *infra.JSONCache
}

// NewReporteService: cache may be nil (no caching).
func NewReporteService(repo repository.ReporteRepository, cache *infra.JSONCache) ReporteService {
	return &reporteService{repo: repo, cache: cache}
}

func (s *reporteService) VentasPorFecha(ctx context.Context, q dto.RangoFechasQuery) ([]dto.VentaResponse, error) {
	ventas, err := s.ventasEnRango(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, *ventaToResponse(&ventas[i]))
	}
	return out, nil
}

func (s *reporteService) ExportarVentasXLSX(ctx context.Context, q dto.RangoFechasQuery, w io.Writer) error {
	ventas, err := s.ventasEnRango(ctx, q)
	if err != nil {
		return err
	}
	return infra.WriteVentasXLSX(ventas, w)
}

func (s *reporteService) ventasEnRango(ctx context.Context, q dto.RangoFechasQuery) ([]model.Venta, error) {
	if q.FechaInicio == "" || q.FechaFin == "" {
		return nil, fmt.Errorf("%w: fecha_inicio y fecha_fin son obligatorias", ErrRangoFechas)
	}
	desde, hasta, err := parseRango(q.FechaInicio, q.FechaFin)
	if err != nil {
		return nil, err
	}
	return s.repo.VentasEntre(ctx, *desde, *hasta)
}

func (s *reporteService) VentasPorSeccion(ctx context.Context, q dto.RangoFechasQuery) ([]dto.VentasPorSeccionRow, error) {
	desde, hasta, err := parseRango(q.FechaInicio, q.FechaFin)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.VentasPorSeccion(ctx, desde, hasta)
	if rows == nil {
		rows = []dto.VentasPorSeccionRow{}
	}
	return rows, err
}

func (s *reporteService) ProductosMasVendidos(ctx context.Context, limit int) ([]dto.ProductoMasVendidoRow, error) {
	if limit < 1 {
		limit = productosMasVendidosDefault
	}
	rows, err := s.repo.ProductosMasVendidos(ctx, limit)
	if rows == nil {
		rows = []dto.ProductoMasVendidoRow{}
	}
	return rows, err
}

func (s *reporteService) CuentasPorCobrar(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.CuentasPorCobrar(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func (s *reporteService) InventarioBajo(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.InventarioBajo(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, productoToResponse(&productos[i]))
	}
	return out, nil
}

// ResumenVentas is served from the Redis cache when possible; cache errors
// fall through to SQL.
func (s *reporteService) ResumenVentas(ctx context.Context, periodo string) (*dto.ResumenVentasResponse, error) {
	if periodo == "" {
		periodo = "diario"
	}
	formato, ok := formatosPeriodo[periodo]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPeriodoInvalido, periodo)
	}

	key := "resumen:" + periodo
	var cached dto.ResumenVentasResponse
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, infra.ErrCacheMiss) {
		log.Warn().Err(err).Str("key", key).Msg("cache de reportes no disponible")
	}

	rows, err := s.repo.ResumenVentas(ctx, formato)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []dto.ResumenPeriodoRow{}
	}
	resp := &dto.ResumenVentasResponse{Periodo: periodo, Datos: rows}
	if err := s.cache.Set(ctx, key, resp); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el reporte en cache")
	}
	return resp, nil
}
