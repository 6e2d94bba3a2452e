package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/infra"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"
	"tiendapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	CancelarVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	TicketPDF(ctx context.Context, id uuid.UUID, w io.Writer) error
}

// TicketEnqueuer is satisfied by *worker.Dispatcher.
type TicketEnqueuer interface {
	EnqueueTicket(ctx context.Context, p worker.TicketJobPayload) error
}

type ventaService struct {
	tx           repository.Transactor
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	usuarioRepo  repository.UsuarioRepository
	seq          repository.Sequencer
	tickets      TicketEnqueuer
	resumenCache *infra.JSONCache
	negocio      string
}

func NewVentaService(
	tx repository.Transactor,
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	usuarioRepo repository.UsuarioRepository,
	seq repository.Sequencer,
	tickets TicketEnqueuer,
	resumenCache *infra.JSONCache,
	negocio string,
) VentaService {
	return &ventaService{
		tx:           tx,
		repo:         repo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		usuarioRepo:  usuarioRepo,
		seq:          seq,
		tickets:      tickets,
		resumenCache: resumenCache,
		negocio:      negocio,
	}
}

type lineaResuelta struct {
	producto *model.Producto
	cantidad int
	subtotal decimal.Decimal
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
//   1. Replay by idempotency key
//   2. Resolve products and totals (pre-flight, outside TX)
//   3. Validate payment: cash covers total, credit names a client
//   4. BEGIN TX: resolve client, descontar stock, extend credit, nextval, insert
//   5. COMMIT, then enqueue the ticket job

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrCarritoVacio
	}
	if !metodoVentaValido(req.MetodoPago) {
		return nil, fmt.Errorf("%w: %q", ErrMetodoPagoInvalido, req.MetodoPago)
	}
	if req.Impuesto.IsNegative() {
		return nil, ErrImpuestoInvalido
	}
	impuesto, err := enCentavos("impuesto", req.Impuesto)
	if err != nil {
		return nil, err
	}
	req.Impuesto = impuesto
	if req.MontoRecibido != nil {
		recibido, err := enCentavos("monto_recibido", *req.MontoRecibido)
		if err != nil {
			return nil, err
		}
		req.MontoRecibido = &recibido
	}

	// 1. Idempotent replay
	key := ""
	if req.IdempotencyKey != nil {
		key = strings.TrimSpace(*req.IdempotencyKey)
	}
	if key != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, key)
		if err == nil {
			return ventaToResponse(existing), nil
		}
		if !repository.IsNotFound(err) {
			return nil, err
		}
	}

	// 2. Resolve products
	lineas := make([]lineaResuelta, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrCantidadInvalida, item.Cantidad)
		}
		pid, err := parseID(item.ProductoID, "producto_id")
		if err != nil {
			return nil, err
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.ProductoID)
			}
			return nil, err
		}
		if !p.Activo {
			return nil, fmt.Errorf("%w: %s", ErrProductoInactivo, p.Nombre)
		}
		if p.Stock < item.Cantidad {
			return nil, fmt.Errorf("%w: %s (disponible %d, solicitado %d)", ErrStockInsuficiente, p.Nombre, p.Stock, item.Cantidad)
		}
		lineSubtotal := p.PrecioVenta.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		subtotal = subtotal.Add(lineSubtotal)
		lineas = append(lineas, lineaResuelta{producto: p, cantidad: item.Cantidad, subtotal: lineSubtotal})
	}
	total := subtotal.Add(req.Impuesto)

	// 3. Payment
	montoRecibido, cambio := total, decimal.Zero
	if req.MetodoPago == model.MetodoEfectivo {
		if req.MontoRecibido == nil || req.MontoRecibido.LessThan(total) {
			return nil, fmt.Errorf("%w: total %s", ErrEfectivoInsuficiente, total.StringFixed(2))
		}
		montoRecibido = *req.MontoRecibido
		cambio = montoRecibido.Sub(total)
	}

	clienteID, err := parseOptionalID(req.ClienteID, "cliente_id")
	if err != nil {
		return nil, err
	}
	nombreCliente := ""
	if req.ClienteNombre != nil {
		nombreCliente = strings.TrimSpace(*req.ClienteNombre)
	}
	credito := req.MetodoPago == model.MetodoCredito
	if credito && clienteID == nil && nombreCliente == "" {
		return nil, ErrClienteRequerido
	}

	estadoPago := model.PagoPagado
	montoPagado := total
	if credito {
		estadoPago = model.PagoPendiente
		montoPagado = decimal.Zero
	}

	venta := &model.Venta{
		UsuarioID:     usuarioID,
		Subtotal:      subtotal,
		Impuesto:      req.Impuesto,
		Total:         total,
		MontoRecibido: montoRecibido,
		Cambio:        cambio,
		MontoPagado:   montoPagado,
		MetodoPago:    req.MetodoPago,
		EstadoPago:    estadoPago,
		Estado:        model.VentaCompletada,
	}
	if key != "" {
		venta.IdempotencyKey = &key
	}

	// 4. ACID transaction
	var cliente *model.Cliente
	txErr := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		venta.Items = venta.Items[:0]
		var err error
		cliente, err = s.resolverCliente(ctx, tx, clienteID, nombreCliente)
		if err != nil {
			return err
		}
		if cliente != nil {
			venta.ClienteID = &cliente.ID
		}

		ajustes := make([]ajusteStock, len(lineas))
		for i, l := range lineas {
			ajustes[i] = ajusteStock{productoID: l.producto.ID, nombre: l.producto.Nombre, cantidad: l.cantidad}
		}
		for _, a := range consolidarAjustes(ajustes) {
			ok, err := s.productoRepo.DescontarStockTx(ctx, tx, a.productoID, a.cantidad)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrStockInsuficiente, a.nombre)
			}
		}
		for i, l := range lineas {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     l.producto.ID,
				Linea:          i + 1,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.producto.PrecioVenta,
				Subtotal:       l.subtotal,
			})
		}

		if credito {
			if !cliente.Activo {
				return fmt.Errorf("%w: %s", ErrClienteInactivo, cliente.Nombre)
			}
			ok, err := s.clienteRepo.IncrementarSaldoTx(ctx, tx, cliente.ID, total)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: saldo %s + venta %s supera el límite %s",
					ErrLimiteCredito, cliente.Saldo.StringFixed(2), total.StringFixed(2), cliente.LimiteCredito.StringFixed(2))
			}
			cliente.Saldo = cliente.Saldo.Add(total)
		}

		n, err := s.seq.Next(ctx, tx, repository.SecuenciaVentas)
		if err != nil {
			return err
		}
		venta.NumeroVenta = repository.FormatNumeroVenta(n)
		return s.repo.CreateTx(ctx, tx, venta)
	})
	if txErr != nil {
		// A concurrent retry with the same key won the insert.
		if key != "" && repository.IsUniqueViolation(txErr) {
			if existing, err := s.repo.FindByIdempotencyKey(ctx, key); err == nil {
				return ventaToResponse(existing), nil
			}
		}
		return nil, txErr
	}

	venta.Cliente = cliente
	for i := range venta.Items {
		venta.Items[i].Producto = lineas[i].producto
	}
	if u, err := s.usuarioRepo.FindByID(ctx, usuarioID); err == nil {
		venta.Usuario = u
	}

	log.Info().
		Str("venta", venta.NumeroVenta).
		Str("metodo", venta.MetodoPago).
		Str("total", venta.Total.StringFixed(2)).
		Msg("venta registrada")

	s.invalidarResumen(ctx)

	// 5. Async ticket (best-effort)
	if s.tickets != nil {
		payload := worker.TicketJobPayload{VentaID: venta.ID.String()}
		if req.ClienteEmail != nil {
			payload.ClienteEmail = strings.TrimSpace(*req.ClienteEmail)
		}
		if err := s.tickets.EnqueueTicket(ctx, payload); err != nil {
			log.Warn().Err(err).Str("venta", venta.NumeroVenta).Msg("no se pudo encolar el ticket")
		}
	}

	return ventaToResponse(venta), nil
}

// resolverCliente looks the client up by id, else by name (creating an
// occasional client when none matches). Anonymous sales return nil.
func (s *ventaService) resolverCliente(ctx context.Context, tx *gorm.DB, id *uuid.UUID, nombre string) (*model.Cliente, error) {
	switch {
	case id != nil:
		c, err := s.clienteRepo.FindByIDTx(ctx, tx, *id)
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrClienteNoEncontrado, id)
		}
		return c, err
	case nombre != "":
		c, err := s.clienteRepo.FindByNombreTx(ctx, tx, nombre)
		if err == nil {
			return c, nil
		}
		if !repository.IsNotFound(err) {
			return nil, err
		}
		c = &model.Cliente{
			Nombre:        nombre,
			Tipo:          model.ClienteOcasional,
			LimiteCredito: decimal.Zero,
			Saldo:         decimal.Zero,
			Activo:        true,
		}
		if err := s.clienteRepo.CreateTx(ctx, tx, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, nil
}

// ── CancelarVenta ─────────────────────────────────────────────────────────────
// Restores stock, releases the outstanding credit and marks the sale
// cancelada, all under the sale row lock.

func (s *ventaService) CancelarVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	var numero string
	txErr := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		v, err := s.repo.FindByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrVentaNoEncontrada
			}
			return err
		}
		if v.Estado == model.VentaCancelada {
			return fmt.Errorf("%w: %s", ErrVentaCancelada, v.NumeroVenta)
		}
		numero = v.NumeroVenta

		ajustes := make([]ajusteStock, len(v.Items))
		for i, item := range v.Items {
			ajustes[i] = ajusteStock{productoID: item.ProductoID, cantidad: item.Cantidad}
		}
		for _, a := range consolidarAjustes(ajustes) {
			if err := s.productoRepo.RestaurarStockTx(ctx, tx, a.productoID, a.cantidad); err != nil {
				return err
			}
		}

		// Releases whatever this sale still owes, including a sub-cent
		// remainder left on a sale already marked pagado.
		if v.MetodoPago == model.MetodoCredito && v.ClienteID != nil {
			if pendiente := v.Pendiente(); pendiente.IsPositive() {
				ok, err := s.clienteRepo.DecrementarSaldoTx(ctx, tx, *v.ClienteID, pendiente)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("saldo del cliente %s menor al pendiente de %s", v.ClienteID, v.NumeroVenta)
				}
			}
		}

		ok, err := s.repo.MarcarCanceladaTx(ctx, tx, id, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrVentaCancelada, v.NumeroVenta)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("venta", numero).Msg("venta cancelada")
	s.invalidarResumen(ctx)
	return s.ObtenerVenta(ctx, id)
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrVentaNoEncontrada
		}
		return nil, err
	}
	return ventaToResponse(v), nil
}

// ListarVentas returns sales newest first. Without filters it lists everything.
func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	page, limit := paginar(filter.Page, filter.Limit, 50)
	desde, hasta, err := parseRango(filter.FechaInicio, filter.FechaFin)
	if err != nil {
		return nil, err
	}
	q := repository.VentaQuery{
		Desde:      desde,
		Hasta:      hasta,
		Estado:     filter.Estado,
		MetodoPago: filter.MetodoPago,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	}
	if filter.ClienteID != "" {
		cid, err := parseID(filter.ClienteID, "cliente_id")
		if err != nil {
			return nil, err
		}
		q.ClienteID = &cid
	}

	ventas, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// TicketPDF renders the receipt of a sale straight into w.
func (s *ventaService) TicketPDF(ctx context.Context, id uuid.UUID, w io.Writer) error {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrVentaNoEncontrada
		}
		return err
	}
	return infra.WriteTicketPDF(v, s.negocio, w)
}

func (s *ventaService) invalidarResumen(ctx context.Context) {
	if err := s.resumenCache.Invalidate(ctx); err != nil {
		log.Debug().Err(err).Msg("no se pudo invalidar el cache de reportes")
	}
}
