package service_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"slices"
	"testing"

	"tiendapos/internal/apierror"
	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(p model.Producto, cantidad int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{ProductoID: p.ID.String(), Cantidad: cantidad}
}

func ventaEfectivo(recibido string, items ...dto.ItemVentaRequest) dto.RegistrarVentaRequest {
	return dto.RegistrarVentaRequest{Items: items, MetodoPago: model.MetodoEfectivo, MontoRecibido: decPtr(recibido)}
}

func ventaCredito(c model.Cliente, items ...dto.ItemVentaRequest) dto.RegistrarVentaRequest {
	return dto.RegistrarVentaRequest{Items: items, MetodoPago: model.MetodoCredito, ClienteID: strPtr(c.ID.String())}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────

func TestRegistrarVenta_Efectivo_CalculaCambioYDescuentaStock(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Arroz 1kg", "25", 10)

	resp, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("100", item(p, 3)))
	require.NoError(t, err)

	assert.True(t, resp.Total.Equal(dec("75")))
	assert.True(t, resp.Cambio.Equal(dec("25")))
	assert.True(t, resp.MontoRecibido.Equal(dec("100")))
	assert.Equal(t, model.PagoPagado, resp.EstadoPago)
	assert.Equal(t, model.VentaCompletada, resp.Estado)
	assert.Equal(t, "VTA-000001", resp.NumeroVenta)
	assert.Equal(t, "Ana Cajera", resp.UsuarioNombre)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Arroz 1kg", resp.Items[0].Nombre)
	assert.Equal(t, 7, f.stock(p.ID))
}

func TestRegistrarVenta_TotalEsSumaDeLineasMasImpuesto(t *testing.T) {
	f := newFixture(t)
	a := f.addProducto("Lápiz", "3.50", 100)
	b := f.addProducto("Cuaderno", "18.25", 100)

	req := dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{item(a, 4), item(b, 3)},
		MetodoPago: model.MetodoTarjeta,
		Impuesto:   dec("9.12"),
	}
	resp, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, req)
	require.NoError(t, err)

	suma := resp.Impuesto
	for _, it := range resp.Items {
		suma = suma.Add(it.Subtotal)
	}
	assert.True(t, suma.Sub(resp.Total).Abs().LessThanOrEqual(dec("0.01")))
	assert.True(t, resp.Total.Equal(dec("77.87")))
	// Non-cash: tendered equals total, no change.
	assert.True(t, resp.MontoRecibido.Equal(resp.Total))
	assert.True(t, resp.Cambio.IsZero())
}

func TestRegistrarVenta_NumerosConsecutivos(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Sal", "10", 10)

	r1, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("10", item(p, 1)))
	require.NoError(t, err)
	r2, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("10", item(p, 1)))
	require.NoError(t, err)

	assert.Equal(t, "VTA-000001", r1.NumeroVenta)
	assert.Equal(t, "VTA-000002", r2.NumeroVenta)
}

func TestRegistrarVenta_Rechazos(t *testing.T) {
	cases := []struct {
		name   string
		build  func(f *fixture) dto.RegistrarVentaRequest
		want   error
		status int
	}{
		{
			name: "carrito vacío",
			build: func(f *fixture) dto.RegistrarVentaRequest {
				return dto.RegistrarVentaRequest{MetodoPago: model.MetodoTarjeta}
			},
			want:   service.ErrCarritoVacio,
			status: http.StatusBadRequest,
		},
		{
			name: "producto inexistente",
			build: func(f *fixture) dto.RegistrarVentaRequest {
				return dto.RegistrarVentaRequest{
					Items:      []dto.ItemVentaRequest{{ProductoID: uuid.NewString(), Cantidad: 1}},
					MetodoPago: model.MetodoTarjeta,
				}
			},
			want:   service.ErrProductoNoEncontrado,
			status: http.StatusNotFound,
		},
		{
			name: "producto inactivo",
			build: func(f *fixture) dto.RegistrarVentaRequest {
				p := f.addProducto("Viejo", "5", 10)
				p.Activo = false
				f.st.productos[p.ID] = p
				return dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{item(p, 1)}, MetodoPago: model.MetodoTarjeta}
			},
			want:   service.ErrProductoInactivo,
			status: http.StatusBadRequest,
		},
		{
			name: "stock insuficiente",
			build: func(f *fixture) dto.RegistrarVentaRequest {
				p := f.addProducto("Azúcar", "20", 2)
				return dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{item(p, 3)}, MetodoPago: model.MetodoTarjeta}
			},
			want:   service.ErrStockInsuficiente,
			status: http.StatusBadRequest,
		},
		{
			name: "efectivo insuficiente",
			build: func(f *fixture) dto.RegistrarVentaRequest {
				p := f.addProducto("Aceite", "40", 5)
				return ventaEfectivo("39.99", item(p, 1))
			},
			want:   service.ErrEfectivoInsuficiente,
			status: http.StatusBadRequest,
		},
		{
			name: "crédito sin cliente",
			build: func(f *fixture) dto.RegistrarVentaRequest {
				p := f.addProducto("Frijol", "30", 5)
				return dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{item(p, 1)}, MetodoPago: model.MetodoCredito}
			},
			want:   service.ErrClienteRequerido,
			status: http.StatusBadRequest,
		},
		{
			name: "cliente inexistente",
			build: func(f *fixture) dto.RegistrarVentaRequest {
				p := f.addProducto("Harina", "15", 5)
				return dto.RegistrarVentaRequest{
					Items: []dto.ItemVentaRequest{item(p, 1)}, MetodoPago: model.MetodoCredito,
					ClienteID: strPtr(uuid.NewString()),
				}
			},
			want:   service.ErrClienteNoEncontrado,
			status: http.StatusNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, tc.build(f))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			status, known := apierror.StatusOf(err)
			assert.True(t, known)
			assert.Equal(t, tc.status, status)
			assert.Empty(t, f.st.ventas)
		})
	}
}

func TestRegistrarVenta_StockAgotadoEnTransaccion_RevierteTodasLasLineas(t *testing.T) {
	f := newFixture(t)
	a := f.addProducto("Galletas", "12", 5)
	b := f.addProducto("Refresco", "18", 2)

	// Each line passes the pre-flight check alone; together they exceed b's stock.
	req := dto.RegistrarVentaRequest{
		Items:      []dto.ItemVentaRequest{item(a, 2), item(b, 2), item(b, 1)},
		MetodoPago: model.MetodoTarjeta,
	}
	_, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, req)
	require.ErrorIs(t, err, service.ErrStockInsuficiente)

	assert.Equal(t, 5, f.stock(a.ID), "first line decrement must roll back")
	assert.Equal(t, 2, f.stock(b.ID))
	assert.Empty(t, f.st.ventas)
	assert.Equal(t, 1, f.tx.rollbacks)
	assert.Empty(t, f.tickets.jobs)
}

func TestRegistrarVenta_Credito_IncrementaSaldo(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Despensa", "100", 10)
	c := f.addCliente("Doña Rosa", "500", "0")

	resp, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaCredito(c, item(p, 2)))
	require.NoError(t, err)

	assert.Equal(t, model.PagoPendiente, resp.EstadoPago)
	assert.True(t, resp.SaldoPendiente.Equal(dec("200")))
	require.NotNil(t, resp.ClienteNombre)
	assert.Equal(t, "Doña Rosa", *resp.ClienteNombre)
	assert.True(t, f.saldo(c.ID).Equal(dec("200")))
}

func TestRegistrarVenta_Credito_LimiteExcedido_NoTocaStock(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Despensa", "100", 10)
	c := f.addCliente("Don Beto", "500", "450")

	_, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaCredito(c, item(p, 1)))
	require.ErrorIs(t, err, service.ErrLimiteCredito)

	assert.Equal(t, 10, f.stock(p.ID))
	assert.True(t, f.saldo(c.ID).Equal(dec("450")))
	assert.Empty(t, f.st.ventas)
}

func TestRegistrarVenta_Credito_SaldoNuncaSuperaLimite(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Pan", "30", 100)
	c := f.addCliente("Lupita", "100", "0")

	for i := 0; i < 5; i++ {
		_, _ = f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaCredito(c, item(p, 1)))
		assert.True(t, f.saldo(c.ID).LessThanOrEqual(dec("100")))
	}
	assert.True(t, f.saldo(c.ID).Equal(dec("90")))
}

func TestRegistrarVenta_ClientePorNombre_CreaOcasional(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Jabón", "15", 10)

	req := dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{item(p, 1)},
		MetodoPago:    model.MetodoTarjeta,
		ClienteNombre: strPtr("  Cliente Mostrador "),
	}
	resp, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, req)
	require.NoError(t, err)
	require.NotNil(t, resp.ClienteID)

	require.Len(t, f.st.clientes, 1)
	for _, c := range f.st.clientes {
		assert.Equal(t, "Cliente Mostrador", c.Nombre)
		assert.Equal(t, model.ClienteOcasional, c.Tipo)
		assert.True(t, c.LimiteCredito.IsZero())
	}

	// Same name again reuses the client.
	req.ClienteNombre = strPtr("cliente mostrador")
	_, err = f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, req)
	require.NoError(t, err)
	assert.Len(t, f.st.clientes, 1)
}

func TestRegistrarVenta_ClienteOcasionalACredito_SeRevierte(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Jabón", "15", 10)

	req := dto.RegistrarVentaRequest{
		Items:         []dto.ItemVentaRequest{item(p, 1)},
		MetodoPago:    model.MetodoCredito,
		ClienteNombre: strPtr("Nuevo"),
	}
	_, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, req)
	require.ErrorIs(t, err, service.ErrLimiteCredito)
	assert.Empty(t, f.st.clientes, "occasional client creation rolls back with the sale")
}

func TestRegistrarVenta_IdempotencyKey_DevuelveLaMismaVenta(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Leche", "22", 10)

	req := ventaEfectivo("50", item(p, 2))
	req.IdempotencyKey = strPtr("pos-1-000042")

	first, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, req)
	require.NoError(t, err)
	second, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.st.ventas, 1)
	assert.Equal(t, 8, f.stock(p.ID))
}

func TestRegistrarVenta_EncolaTicket(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Leche", "22", 10)

	req := ventaEfectivo("22", item(p, 1))
	req.ClienteEmail = strPtr("cliente@correo.mx")
	resp, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, req)
	require.NoError(t, err)

	require.Len(t, f.tickets.jobs, 1)
	assert.Equal(t, resp.ID, f.tickets.jobs[0].VentaID)
	assert.Equal(t, "cliente@correo.mx", f.tickets.jobs[0].ClienteEmail)
}

func TestRegistrarVenta_FalloAlEncolar_NoFallaLaVenta(t *testing.T) {
	f := newFixture(t)
	f.tickets.err = errors.New("redis caído")
	p := f.addProducto("Leche", "22", 10)

	_, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("22", item(p, 1)))
	require.NoError(t, err)
	assert.Len(t, f.st.ventas, 1)
}

// ── CancelarVenta ─────────────────────────────────────────────────────────────

func TestCancelarVenta_RestauraStock(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Arroz 1kg", "25", 10)
	v, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("100", item(p, 3)))
	require.NoError(t, err)

	resp, err := f.ventaSvc.CancelarVenta(context.Background(), uuid.MustParse(v.ID))
	require.NoError(t, err)

	assert.Equal(t, model.VentaCancelada, resp.Estado)
	assert.NotNil(t, resp.CanceladaAt)
	assert.Equal(t, 10, f.stock(p.ID))
}

func TestCancelarVenta_DosVeces(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Arroz 1kg", "25", 10)
	v, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("25", item(p, 1)))
	require.NoError(t, err)
	id := uuid.MustParse(v.ID)

	_, err = f.ventaSvc.CancelarVenta(context.Background(), id)
	require.NoError(t, err)
	_, err = f.ventaSvc.CancelarVenta(context.Background(), id)
	require.ErrorIs(t, err, service.ErrVentaCancelada)
	assert.Equal(t, 10, f.stock(p.ID), "stock is restored only once")
}

func TestCancelarVenta_NoExiste(t *testing.T) {
	f := newFixture(t)
	_, err := f.ventaSvc.CancelarVenta(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrVentaNoEncontrada)
}

func TestCancelarVenta_Credito_LiberaSaldoPendiente(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Despensa", "100", 10)
	c := f.addCliente("Doña Rosa", "500", "0")
	v, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaCredito(c, item(p, 2)))
	require.NoError(t, err)

	_, err = f.ventaSvc.CancelarVenta(context.Background(), uuid.MustParse(v.ID))
	require.NoError(t, err)

	assert.True(t, f.saldo(c.ID).IsZero())
	assert.Equal(t, 10, f.stock(p.ID))
}

func TestCancelarVenta_CreditoParcial_SoloRevierteLoPendiente(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Despensa", "100", 10)
	c := f.addCliente("Doña Rosa", "500", "0")
	otra := f.addProducto("Cemento", "150", 10)

	v, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaCredito(c, item(p, 2)))
	require.NoError(t, err)
	_, err = f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaCredito(c, item(otra, 1)))
	require.NoError(t, err)
	require.True(t, f.saldo(c.ID).Equal(dec("350")))

	_, err = f.pagoSvc.RegistrarPago(context.Background(), f.cajero, dto.RegistrarPagoRequest{
		ClienteID: c.ID.String(), VentaID: v.ID, Monto: dec("80"), MetodoPago: model.MetodoEfectivo,
	})
	require.NoError(t, err)
	require.True(t, f.saldo(c.ID).Equal(dec("270")))

	_, err = f.ventaSvc.CancelarVenta(context.Background(), uuid.MustParse(v.ID))
	require.NoError(t, err)

	// Only the 120 still owed on this sale is released; the other sale's 150 stays.
	assert.True(t, f.saldo(c.ID).Equal(dec("150")), "saldo = %s", f.saldo(c.ID))
}

func TestCancelarVenta_CreditoPagado_NoTocaSaldo(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Despensa", "100", 10)
	c := f.addCliente("Doña Rosa", "500", "0")
	v, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaCredito(c, item(p, 1)))
	require.NoError(t, err)
	_, err = f.pagoSvc.RegistrarPago(context.Background(), f.cajero, dto.RegistrarPagoRequest{
		ClienteID: c.ID.String(), VentaID: v.ID, Monto: dec("100"), MetodoPago: model.MetodoEfectivo,
	})
	require.NoError(t, err)

	_, err = f.ventaSvc.CancelarVenta(context.Background(), uuid.MustParse(v.ID))
	require.NoError(t, err)
	assert.True(t, f.saldo(c.ID).IsZero())
}

func TestStockNuncaNegativo_SecuenciaVentasYCancelaciones(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Tortillas", "20", 4)

	var ids []string
	for i := 0; i < 6; i++ {
		v, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("40", item(p, 2)))
		if err == nil {
			ids = append(ids, v.ID)
		}
		assert.GreaterOrEqual(t, f.stock(p.ID), 0)
	}
	assert.Len(t, ids, 2)
	for _, id := range ids {
		_, err := f.ventaSvc.CancelarVenta(context.Background(), uuid.MustParse(id))
		require.NoError(t, err)
	}
	assert.Equal(t, 4, f.stock(p.ID))
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func TestListarVentas_FiltraPorMetodoYEstado(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Agua", "10", 100)

	_, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("10", item(p, 1)))
	require.NoError(t, err)
	tarjeta, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero,
		dto.RegistrarVentaRequest{Items: []dto.ItemVentaRequest{item(p, 1)}, MetodoPago: model.MetodoTarjeta})
	require.NoError(t, err)
	_, err = f.ventaSvc.CancelarVenta(context.Background(), uuid.MustParse(tarjeta.ID))
	require.NoError(t, err)

	all, err := f.ventaSvc.ListarVentas(context.Background(), dto.VentaFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	soloTarjeta, err := f.ventaSvc.ListarVentas(context.Background(), dto.VentaFilter{MetodoPago: model.MetodoTarjeta})
	require.NoError(t, err)
	require.Len(t, soloTarjeta.Data, 1)
	assert.Equal(t, tarjeta.ID, soloTarjeta.Data[0].ID)

	completadas, err := f.ventaSvc.ListarVentas(context.Background(), dto.VentaFilter{Estado: model.VentaCompletada})
	require.NoError(t, err)
	assert.Equal(t, int64(1), completadas.Total)
}

func TestListarVentas_RangoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.ventaSvc.ListarVentas(context.Background(), dto.VentaFilter{FechaInicio: "ayer"})
	assert.ErrorIs(t, err, service.ErrRangoFechas)
}

func TestTicketPDF(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Agua", "10", 100)
	v, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("20", item(p, 1)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.ventaSvc.TicketPDF(context.Background(), uuid.MustParse(v.ID), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.ErrorIs(t, f.ventaSvc.TicketPDF(context.Background(), uuid.New(), &buf), service.ErrVentaNoEncontrada)
}

// ordenados returns the ids of ps sorted the way product rows must be locked.
func ordenados(ps ...model.Producto) []uuid.UUID {
	ids := make([]uuid.UUID, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}

func TestRegistrarVenta_BloqueaProductosEnOrdenDeID(t *testing.T) {
	f := newFixture(t)
	a := f.addProducto("Arroz", "20", 10)
	b := f.addProducto("Frijol", "30", 10)
	c := f.addProducto("Azúcar", "25", 10)

	v, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero,
		ventaEfectivo("500", item(c, 1), item(a, 2), item(b, 1), item(a, 1)))
	require.NoError(t, err)

	// one update per product, in id order, whatever the cart order
	assert.Equal(t, ordenados(a, b, c), f.productos.bloqueos)
	assert.Equal(t, 7, f.stock(a.ID))

	// the ticket keeps the cart order
	require.Len(t, v.Items, 4)
	assert.Equal(t, c.ID.String(), v.Items[0].ProductoID)
	assert.Equal(t, a.ID.String(), v.Items[3].ProductoID)

	f.productos.bloqueos = nil
	_, err = f.ventaSvc.CancelarVenta(context.Background(), uuid.MustParse(v.ID))
	require.NoError(t, err)
	assert.Equal(t, ordenados(a, b, c), f.productos.bloqueos)
	assert.Equal(t, 10, f.stock(a.ID))
}

func TestRegistrarVenta_LineasRepetidasSumanContraElStock(t *testing.T) {
	f := newFixture(t)
	p := f.addProducto("Cuaderno", "30", 3)

	_, err := f.ventaSvc.RegistrarVenta(context.Background(), f.cajero, ventaEfectivo("500", item(p, 2), item(p, 2)))
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)
	assert.Equal(t, 3, f.stock(p.ID))
	assert.Empty(t, f.st.ventas)
}

func TestCancelarVenta_PagadaDentroDeTolerancia_LiberaElCentavo(t *testing.T) {
	f := newFixture(t)
	c := f.addCliente("Doña Rosa", "500", "0")
	ventaID := f.ventaACredito(t, c, "100.01")

	resp, err := f.pagoSvc.RegistrarPago(context.Background(), f.cajero, abono(c, ventaID, "100"))
	require.NoError(t, err)
	require.Equal(t, model.PagoPagado, resp.EstadoPagoVenta)
	require.True(t, f.saldo(c.ID).Equal(dec("0.01")))

	_, err = f.ventaSvc.CancelarVenta(context.Background(), uuid.MustParse(ventaID))
	require.NoError(t, err)

	// the leftover cent belongs to this sale and goes with it
	assert.True(t, f.saldo(c.ID).IsZero(), "saldo = %s", f.saldo(c.ID))
}
