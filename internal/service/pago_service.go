package service

import (
	"context"
	"fmt"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PagoService records abonos against credit sales. Payments are immutable:
// there is no update, delete or reversal.
type PagoService interface {
	RegistrarPago(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.RegistrarPagoResponse, error)
	ListarPorCliente(ctx context.Context, clienteID uuid.UUID) ([]dto.PagoResponse, error)
	Historial(ctx context.Context, filter dto.PagoFilter) (*dto.PagoListResponse, error)
}

type pagoService struct {
	tx          repository.Transactor
	repo        repository.PagoRepository
	ventaRepo   repository.VentaRepository
	clienteRepo repository.ClienteRepository
	seq         repository.Sequencer
}

func NewPagoService(
	tx repository.Transactor,
	repo repository.PagoRepository,
	ventaRepo repository.VentaRepository,
	clienteRepo repository.ClienteRepository,
	seq repository.Sequencer,
) PagoService {
	return &pagoService{tx: tx, repo: repo, ventaRepo: ventaRepo, clienteRepo: clienteRepo, seq: seq}
}

func metodoAbonoValido(m string) bool {
	return m == model.MetodoEfectivo || m == model.MetodoTarjeta || m == model.MetodoTransferencia
}

// RegistrarPago applies monto to one credit sale of the client. The client
// balance and the sale's paid amount move together inside one transaction.
func (s *pagoService) RegistrarPago(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.RegistrarPagoResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, ErrMontoInvalido
	}
	monto, err := enCentavos("monto", req.Monto)
	if err != nil {
		return nil, err
	}
	req.Monto = monto
	if !metodoAbonoValido(req.MetodoPago) {
		return nil, fmt.Errorf("%w: %q", ErrMetodoPagoInvalido, req.MetodoPago)
	}
	clienteID, err := parseID(req.ClienteID, "cliente_id")
	if err != nil {
		return nil, err
	}
	ventaID, err := parseID(req.VentaID, "venta_id")
	if err != nil {
		return nil, err
	}

	var (
		pago     *model.Pago
		cliente  *model.Cliente
		venta    *model.Venta
		restante decimal.Decimal
	)
	txErr := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		cliente, err = s.clienteRepo.FindByIDTx(ctx, tx, clienteID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrClienteNoEncontrado
			}
			return err
		}
		if !cliente.Saldo.IsPositive() {
			return fmt.Errorf("%w: %s", ErrSinSaldo, cliente.Nombre)
		}
		if req.Monto.GreaterThan(cliente.Saldo) {
			return fmt.Errorf("%w: saldo %s", ErrMontoExcedeSaldo, cliente.Saldo.StringFixed(2))
		}

		venta, err = s.ventaRepo.FindByIDForUpdateTx(ctx, tx, ventaID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrVentaNoEncontrada
			}
			return err
		}
		if venta.ClienteID == nil || *venta.ClienteID != cliente.ID {
			return fmt.Errorf("%w: %s", ErrVentaDeOtroCliente, venta.NumeroVenta)
		}
		if venta.Estado != model.VentaCompletada {
			return fmt.Errorf("%w: %s", ErrVentaCancelada, venta.NumeroVenta)
		}
		if venta.MetodoPago != model.MetodoCredito {
			return fmt.Errorf("%w: %s", ErrVentaNoEsCredito, venta.NumeroVenta)
		}
		pendiente := venta.Pendiente()
		if req.Monto.GreaterThan(pendiente) {
			return fmt.Errorf("%w: pendiente %s", ErrMontoExcedePendiente, pendiente.StringFixed(2))
		}

		ok, err := s.clienteRepo.DecrementarSaldoTx(ctx, tx, cliente.ID, req.Monto)
		if err != nil {
			return err
		}
		if !ok {
			return ErrMontoExcedeSaldo
		}

		restante = pendiente.Sub(req.Monto)
		estado := model.PagoParcial
		if restante.Abs().LessThanOrEqual(toleranciaPago) {
			estado = model.PagoPagado
		}
		if err := s.ventaRepo.AplicarPagoTx(ctx, tx, venta.ID, req.Monto, estado); err != nil {
			return err
		}
		venta.EstadoPago = estado
		venta.MontoPagado = venta.MontoPagado.Add(req.Monto)

		n, err := s.seq.Next(ctx, tx, repository.SecuenciaPagos)
		if err != nil {
			return err
		}
		pago = &model.Pago{
			NumeroRecibo:  repository.FormatNumeroRecibo(n),
			VentaID:       venta.ID,
			ClienteID:     cliente.ID,
			UsuarioID:     usuarioID,
			Monto:         req.Monto,
			MetodoPago:    req.MetodoPago,
			Referencia:    req.Referencia,
			Observaciones: req.Observaciones,
			Estado:        model.PagoCompletado,
		}
		return s.repo.CreateTx(ctx, tx, pago)
	})
	if txErr != nil {
		return nil, txErr
	}

	pago.Venta = venta
	pago.Cliente = cliente
	saldoCliente := cliente.Saldo.Sub(req.Monto)

	log.Info().
		Str("recibo", pago.NumeroRecibo).
		Str("venta", venta.NumeroVenta).
		Str("monto", req.Monto.StringFixed(2)).
		Str("estado_pago", venta.EstadoPago).
		Msg("pago registrado")

	return &dto.RegistrarPagoResponse{
		Pago:            pagoToResponse(pago),
		SaldoCliente:    saldoCliente,
		SaldoVenta:      restante,
		EstadoPagoVenta: venta.EstadoPago,
	}, nil
}

func (s *pagoService) ListarPorCliente(ctx context.Context, clienteID uuid.UUID) ([]dto.PagoResponse, error) {
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}
	pagos, _, err := s.repo.List(ctx, repository.PagoQuery{ClienteID: &clienteID})
	if err != nil {
		return nil, err
	}
	out := make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		out = append(out, pagoToResponse(&pagos[i]))
	}
	return out, nil
}

func (s *pagoService) Historial(ctx context.Context, filter dto.PagoFilter) (*dto.PagoListResponse, error) {
	page, limit := paginar(filter.Page, filter.Limit, 50)
	desde, hasta, err := parseRango(filter.FechaInicio, filter.FechaFin)
	if err != nil {
		return nil, err
	}
	q := repository.PagoQuery{Desde: desde, Hasta: hasta, Offset: (page - 1) * limit, Limit: limit}
	if filter.ClienteID != "" {
		cid, err := parseID(filter.ClienteID, "cliente_id")
		if err != nil {
			return nil, err
		}
		q.ClienteID = &cid
	}

	pagos, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		data = append(data, pagoToResponse(&pagos[i]))
	}
	return &dto.PagoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}
