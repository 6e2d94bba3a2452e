package service

import (
	"context"
	"fmt"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Clasificación de la diferencia de caja, by |diferencia| / esperado.
const (
	DiferenciaNormal      = "normal"      // <= 1%
	DiferenciaAdvertencia = "advertencia" // <= 5%
	DiferenciaCritica     = "critico"     // > 5%
)

var (
	umbralNormal      = decimal.NewFromInt(1)
	umbralAdvertencia = decimal.NewFromInt(5)
)

type CorteService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCorteRequest) (*dto.CorteResponse, error)
	Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCorteRequest) (*dto.CorteResponse, error)
	Actual(ctx context.Context, usuarioID uuid.UUID) (*dto.CorteResponse, error)
	// Historial lists the operator's own sessions, or everyone's when verTodos.
	Historial(ctx context.Context, usuarioID uuid.UUID, verTodos bool, page, limit int) (*dto.CorteListResponse, error)
}

type corteService struct {
	repo      repository.CorteRepository
	ventaRepo repository.VentaRepository
}

func NewCorteService(repo repository.CorteRepository, ventaRepo repository.VentaRepository) CorteService {
	return &corteService{repo: repo, ventaRepo: ventaRepo}
}

func (s *corteService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCorteRequest) (*dto.CorteResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, fmt.Errorf("%w: monto_inicial", ErrMontoNegativo)
	}
	inicial, err := enCentavos("monto_inicial", req.MontoInicial)
	if err != nil {
		return nil, err
	}
	_, err = s.repo.FindAbiertoPorUsuario(ctx, usuarioID)
	if err == nil {
		return nil, ErrCajaYaAbierta
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	corte := &model.CorteCaja{
		UsuarioID:     usuarioID,
		FechaApertura: time.Now(),
		MontoInicial:  inicial,
		VentaIDs:      pq.StringArray{},
		Estado:        model.CorteAbierto,
	}
	if err := s.repo.Create(ctx, corte); err != nil {
		// Partial unique index: a concurrent Abrir got there first.
		if repository.IsUniqueViolation(err) {
			return nil, ErrCajaAbiertaEnCurso
		}
		return nil, err
	}

	log.Info().Str("usuario_id", usuarioID.String()).Str("monto_inicial", req.MontoInicial.StringFixed(2)).Msg("corte de caja abierto")
	return corteToResponse(corte), nil
}

// Cerrar totals every completed sale since the session opened, compares the
// expected cash with the counted amount and closes the session.
func (s *corteService) Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCorteRequest) (*dto.CorteResponse, error) {
	if req.MontoContado.IsNegative() {
		return nil, fmt.Errorf("%w: monto_contado", ErrMontoNegativo)
	}
	contado, err := enCentavos("monto_contado", req.MontoContado)
	if err != nil {
		return nil, err
	}
	corte, err := s.repo.FindAbiertoPorUsuario(ctx, usuarioID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCajaNoAbierta
		}
		return nil, err
	}

	cierre := time.Now()
	ventas, err := s.ventaRepo.ListCompletadasEntre(ctx, corte.FechaApertura, cierre)
	if err != nil {
		return nil, err
	}

	totales := sumarPorMetodo(ventas)
	esperado := corte.MontoInicial.Add(totales.Efectivo)
	diferencia := contado.Sub(esperado)
	clasificacion := clasificarDiferencia(diferencia, esperado)

	ids := make(pq.StringArray, 0, len(ventas))
	for _, v := range ventas {
		ids = append(ids, v.ID.String())
	}

	corte.FechaCierre = &cierre
	corte.MontoContado = &contado
	corte.TotalEfectivo = totales.Efectivo
	corte.TotalTarjeta = totales.Tarjeta
	corte.TotalTransferencia = totales.Transferencia
	corte.TotalCredito = totales.Credito
	corte.TotalVentas = totales.Total
	corte.EfectivoEsperado = &esperado
	corte.Diferencia = &diferencia
	corte.ClasificacionDiferencia = &clasificacion
	corte.VentaIDs = ids
	corte.Observaciones = req.Observaciones
	corte.Estado = model.CorteCerrado

	ok, err := s.repo.Cerrar(ctx, corte)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCajaNoAbierta
	}

	ev := log.Info()
	if clasificacion != DiferenciaNormal {
		ev = log.Warn()
	}
	ev.Str("corte", corte.ID.String()).
		Str("esperado", esperado.StringFixed(2)).
		Str("contado", contado.StringFixed(2)).
		Str("clasificacion", clasificacion).
		Int("ventas", len(ids)).
		Msg("corte de caja cerrado")

	return corteToResponse(corte), nil
}

func (s *corteService) Actual(ctx context.Context, usuarioID uuid.UUID) (*dto.CorteResponse, error) {
	corte, err := s.repo.FindAbiertoPorUsuario(ctx, usuarioID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCorteNoEncontrado
		}
		return nil, err
	}
	return corteToResponse(corte), nil
}

func (s *corteService) Historial(ctx context.Context, usuarioID uuid.UUID, verTodos bool, page, limit int) (*dto.CorteListResponse, error) {
	page, limit = paginar(page, limit, 20)
	var filtro *uuid.UUID
	if !verTodos {
		filtro = &usuarioID
	}
	cortes, total, err := s.repo.List(ctx, filtro, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CorteResponse, 0, len(cortes))
	for i := range cortes {
		data = append(data, *corteToResponse(&cortes[i]))
	}
	return &dto.CorteListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func sumarPorMetodo(ventas []model.Venta) dto.TotalesPorMetodo {
	t := dto.TotalesPorMetodo{
		Efectivo:      decimal.Zero,
		Tarjeta:       decimal.Zero,
		Transferencia: decimal.Zero,
		Credito:       decimal.Zero,
		Total:         decimal.Zero,
	}
	for _, v := range ventas {
		switch v.MetodoPago {
		case model.MetodoEfectivo:
			t.Efectivo = t.Efectivo.Add(v.Total)
		case model.MetodoTarjeta:
			t.Tarjeta = t.Tarjeta.Add(v.Total)
		case model.MetodoTransferencia:
			t.Transferencia = t.Transferencia.Add(v.Total)
		case model.MetodoCredito:
			t.Credito = t.Credito.Add(v.Total)
		}
		t.Total = t.Total.Add(v.Total)
	}
	return t
}

// clasificarDiferencia grades the variance as a percentage of the expected
// cash. With nothing expected, any variance is critical.
func clasificarDiferencia(diferencia, esperado decimal.Decimal) string {
	if diferencia.IsZero() {
		return DiferenciaNormal
	}
	if !esperado.IsPositive() {
		return DiferenciaCritica
	}
	pct := diferencia.Abs().Div(esperado).Mul(decimal.NewFromInt(100))
	switch {
	case pct.LessThanOrEqual(umbralNormal):
		return DiferenciaNormal
	case pct.LessThanOrEqual(umbralAdvertencia):
		return DiferenciaAdvertencia
	default:
		return DiferenciaCritica
	}
}
