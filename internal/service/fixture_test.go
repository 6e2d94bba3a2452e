package service_test

import (
	"testing"

	"tiendapos/internal/model"
	"tiendapos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fixture wires every service over one in-memory store.
type fixture struct {
	st      *store
	tx      *stubTx
	tickets *stubTickets

	productos *stubProductoRepo
	clientes  *stubClienteRepo
	ventas    *stubVentaRepo
	pagos     *stubPagoRepo
	cortes    *stubCorteRepo

	ventaSvc    service.VentaService
	pagoSvc     service.PagoService
	corteSvc    service.CorteService
	productoSvc service.ProductoService
	clienteSvc  service.ClienteService

	cajero uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newStore()
	f := &fixture{
		st:        st,
		tx:        &stubTx{st: st},
		tickets:   &stubTickets{},
		productos: &stubProductoRepo{st: st},
		clientes:  &stubClienteRepo{st: st},
		ventas:    &stubVentaRepo{st: st},
		pagos:     &stubPagoRepo{st: st},
		cortes:    &stubCorteRepo{st: st},
	}
	usuarios := &stubUsuarioRepo{st: st}
	seq := &stubSequencer{st: st}

	cajero := model.Usuario{ID: uuid.New(), Username: "caja1", Nombre: "Ana Cajera", Rol: "cajero", Activo: true}
	st.usuarios[cajero.ID] = cajero
	f.cajero = cajero.ID

	f.ventaSvc = service.NewVentaService(f.tx, f.ventas, f.productos, f.clientes, usuarios, seq, f.tickets, nil, "Tienda Test")
	f.pagoSvc = service.NewPagoService(f.tx, f.pagos, f.ventas, f.clientes, seq)
	f.corteSvc = service.NewCorteService(f.cortes, f.ventas)
	f.productoSvc = service.NewProductoService(f.productos, &stubProveedorRepo{st: st})
	f.clienteSvc = service.NewClienteService(f.clientes)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func (f *fixture) addProducto(nombre string, precio string, stock int) model.Producto {
	p := model.Producto{
		ID:          uuid.New(),
		Codigo:      "C-" + uuid.NewString()[:8],
		Nombre:      nombre,
		Seccion:     model.SeccionAbarrotes,
		PrecioVenta: dec(precio),
		Stock:       stock,
		StockMinimo: 2,
		Activo:      true,
	}
	f.st.productos[p.ID] = p
	return p
}

func (f *fixture) addCliente(nombre, limite, saldo string) model.Cliente {
	c := model.Cliente{
		ID:            uuid.New(),
		Nombre:        nombre,
		Tipo:          model.ClienteRegular,
		LimiteCredito: dec(limite),
		Saldo:         dec(saldo),
		Activo:        true,
	}
	f.st.clientes[c.ID] = c
	return c
}

func (f *fixture) stock(id uuid.UUID) int { return f.st.productos[id].Stock }

func (f *fixture) saldo(id uuid.UUID) decimal.Decimal { return f.st.clientes[id].Saldo }
