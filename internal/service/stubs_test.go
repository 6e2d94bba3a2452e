package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"
	"tiendapos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────

// store backs every stub repository. stubTx snapshots it before a
// transaction and restores it when fn fails, so rollbacks are observable.
// Sequences are left out on purpose: like PostgreSQL they never roll back.
type store struct {
	productos   map[uuid.UUID]model.Producto
	clientes    map[uuid.UUID]model.Cliente
	ventas      map[uuid.UUID]model.Venta
	pagos       []model.Pago
	cortes      map[uuid.UUID]model.CorteCaja
	usuarios    map[uuid.UUID]model.Usuario
	proveedores map[uuid.UUID]model.Proveedor
	seq         map[string]int64
}

func newStore() *store {
	return &store{
		productos:   map[uuid.UUID]model.Producto{},
		clientes:    map[uuid.UUID]model.Cliente{},
		ventas:      map[uuid.UUID]model.Venta{},
		cortes:      map[uuid.UUID]model.CorteCaja{},
		usuarios:    map[uuid.UUID]model.Usuario{},
		proveedores: map[uuid.UUID]model.Proveedor{},
		seq:         map[string]int64{},
	}
}

type snapshot struct {
	productos map[uuid.UUID]model.Producto
	clientes  map[uuid.UUID]model.Cliente
	ventas    map[uuid.UUID]model.Venta
	pagos     []model.Pago
	cortes    map[uuid.UUID]model.CorteCaja
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *store) snapshot() snapshot {
	return snapshot{
		productos: copyMap(s.productos),
		clientes:  copyMap(s.clientes),
		ventas:    copyMap(s.ventas),
		pagos:     append([]model.Pago(nil), s.pagos...),
		cortes:    copyMap(s.cortes),
	}
}

func (s *store) restore(snap snapshot) {
	s.productos = snap.productos
	s.clientes = snap.clientes
	s.ventas = snap.ventas
	s.pagos = snap.pagos
	s.cortes = snap.cortes
}

// ── Transactor / Sequencer ────────────────────────────────────────────────────

type stubTx struct {
	st        *store
	rollbacks int
}

func (t *stubTx) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.st.snapshot()
	if err := fn(nil); err != nil {
		t.st.restore(snap)
		t.rollbacks++
		return err
	}
	return nil
}

type stubSequencer struct{ st *store }

func (s *stubSequencer) Next(_ context.Context, _ *gorm.DB, nombre string) (int64, error) {
	s.st.seq[nombre]++
	return s.st.seq[nombre], nil
}

var (
	_ repository.Transactor = (*stubTx)(nil)
	_ repository.Sequencer  = (*stubSequencer)(nil)
)

// ── Productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	st *store
	// bloqueos records the product ids whose stock rows were updated, in order.
	bloqueos []uuid.UUID
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	for _, existing := range r.st.productos {
		if existing.Codigo == p.Codigo {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.st.productos[p.ID] = *p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.st.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.st.productos {
		if p.Codigo == codigo {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, f dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.st.productos {
		switch f.Activo {
		case "false":
			if p.Activo {
				continue
			}
		case "all":
		default:
			if !p.Activo {
				continue
			}
		}
		if f.Seccion != "" && p.Seccion != f.Seccion {
			continue
		}
		if f.Nombre != "" && !strings.Contains(strings.ToLower(p.Nombre), strings.ToLower(f.Nombre)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cur, ok := r.st.productos[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *p
	updated.Stock = cur.Stock
	r.st.productos[p.ID] = updated
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p := r.st.productos[id]
	p.Activo = false
	r.st.productos[id] = p
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, cantidad int) (bool, error) {
	r.bloqueos = append(r.bloqueos, id)
	p, ok := r.st.productos[id]
	if !ok || !p.Activo || p.Stock < cantidad {
		return false, nil
	}
	p.Stock -= cantidad
	r.st.productos[id] = p
	return true, nil
}

func (r *stubProductoRepo) RestaurarStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.bloqueos = append(r.bloqueos, id)
	p := r.st.productos[id]
	p.Stock += cantidad
	r.st.productos[id] = p
	return nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

type stubClienteRepo struct{ st *store }

func (r *stubClienteRepo) CreateTx(_ context.Context, _ *gorm.DB, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.st.clientes[c.ID] = *c
	return nil
}

func (r *stubClienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	return r.FindByIDTx(ctx, nil, id)
}

func (r *stubClienteRepo) FindByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.st.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubClienteRepo) FindByNombreTx(_ context.Context, _ *gorm.DB, nombre string) (*model.Cliente, error) {
	for _, c := range r.st.clientes {
		if c.Activo && strings.EqualFold(c.Nombre, nombre) {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) List(_ context.Context, f dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var out []model.Cliente
	for _, c := range r.st.clientes {
		if c.Activo && (f.Tipo == "" || c.Tipo == f.Tipo) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	cur, ok := r.st.clientes[c.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *c
	updated.Saldo = cur.Saldo
	r.st.clientes[c.ID] = updated
	return nil
}

func (r *stubClienteRepo) DesactivarSinSaldo(_ context.Context, id uuid.UUID) (bool, error) {
	c, ok := r.st.clientes[id]
	if !ok || !c.Saldo.IsZero() {
		return false, nil
	}
	c.Activo = false
	r.st.clientes[id] = c
	return true, nil
}

func (r *stubClienteRepo) IncrementarSaldoTx(_ context.Context, _ *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	c, ok := r.st.clientes[id]
	if !ok || c.Saldo.Add(monto).GreaterThan(c.LimiteCredito) {
		return false, nil
	}
	c.Saldo = c.Saldo.Add(monto)
	r.st.clientes[id] = c
	return true, nil
}

func (r *stubClienteRepo) DecrementarSaldoTx(_ context.Context, _ *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	c, ok := r.st.clientes[id]
	if !ok || c.Saldo.LessThan(monto) {
		return false, nil
	}
	c.Saldo = c.Saldo.Sub(monto)
	r.st.clientes[id] = c
	return true, nil
}

// ── Ventas ────────────────────────────────────────────────────────────────────

type stubVentaRepo struct{ st *store }

func (r *stubVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	for _, existing := range r.st.ventas {
		if existing.NumeroVenta == v.NumeroVenta {
			return gorm.ErrDuplicatedKey
		}
		if v.IdempotencyKey != nil && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *v.IdempotencyKey {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	stored := *v
	stored.Items = make([]model.VentaItem, len(v.Items))
	for i, it := range v.Items {
		it.VentaID = v.ID
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.Producto = nil
		stored.Items[i] = it
		v.Items[i].ID, v.Items[i].VentaID = it.ID, v.ID
	}
	stored.Cliente, stored.Usuario = nil, nil
	r.st.ventas[v.ID] = stored
	return nil
}

// hydrate mimics the preloads of the real repository.
func (r *stubVentaRepo) hydrate(v model.Venta) *model.Venta {
	items := make([]model.VentaItem, len(v.Items))
	for i, it := range v.Items {
		if p, ok := r.st.productos[it.ProductoID]; ok {
			it.Producto = &p
		}
		items[i] = it
	}
	v.Items = items
	if v.ClienteID != nil {
		if c, ok := r.st.clientes[*v.ClienteID]; ok {
			v.Cliente = &c
		}
	}
	if u, ok := r.st.usuarios[v.UsuarioID]; ok {
		v.Usuario = &u
	}
	return &v
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.st.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.hydrate(v), nil
}

func (r *stubVentaRepo) FindByIdempotencyKey(_ context.Context, key string) (*model.Venta, error) {
	for _, v := range r.st.ventas {
		if v.IdempotencyKey != nil && *v.IdempotencyKey == key {
			return r.hydrate(v), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVentaRepo) FindByIDForUpdateTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	return r.FindByID(ctx, id)
}

func (r *stubVentaRepo) List(_ context.Context, q repository.VentaQuery) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.st.ventas {
		if q.Desde != nil && v.CreatedAt.Before(*q.Desde) {
			continue
		}
		if q.Hasta != nil && !v.CreatedAt.Before(*q.Hasta) {
			continue
		}
		if q.Estado != "" && v.Estado != q.Estado {
			continue
		}
		if q.MetodoPago != "" && v.MetodoPago != q.MetodoPago {
			continue
		}
		if q.ClienteID != nil && (v.ClienteID == nil || *v.ClienteID != *q.ClienteID) {
			continue
		}
		out = append(out, *r.hydrate(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if q.Offset >= len(out) {
		return []model.Venta{}, total, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (r *stubVentaRepo) ListCompletadasEntre(_ context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.st.ventas {
		if v.Estado == model.VentaCompletada && !v.CreatedAt.Before(desde) && !v.CreatedAt.After(hasta) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubVentaRepo) MarcarCanceladaTx(_ context.Context, _ *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	v, ok := r.st.ventas[id]
	if !ok || v.Estado != model.VentaCompletada {
		return false, nil
	}
	v.Estado = model.VentaCancelada
	v.CanceladaAt = &at
	r.st.ventas[id] = v
	return true, nil
}

func (r *stubVentaRepo) AplicarPagoTx(_ context.Context, _ *gorm.DB, id uuid.UUID, monto decimal.Decimal, estadoPago string) error {
	v, ok := r.st.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.MontoPagado = v.MontoPagado.Add(monto)
	v.EstadoPago = estadoPago
	r.st.ventas[id] = v
	return nil
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

type stubPagoRepo struct{ st *store }

func (r *stubPagoRepo) CreateTx(_ context.Context, _ *gorm.DB, p *model.Pago) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	stored := *p
	stored.Venta, stored.Cliente = nil, nil
	r.st.pagos = append(r.st.pagos, stored)
	return nil
}

func (r *stubPagoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pago, error) {
	for _, p := range r.st.pagos {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPagoRepo) List(_ context.Context, q repository.PagoQuery) ([]model.Pago, int64, error) {
	var out []model.Pago
	for i := len(r.st.pagos) - 1; i >= 0; i-- {
		p := r.st.pagos[i]
		if q.ClienteID != nil && p.ClienteID != *q.ClienteID {
			continue
		}
		out = append(out, p)
	}
	total := int64(len(out))
	if q.Offset >= len(out) {
		return []model.Pago{}, total, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

// ── Cortes ────────────────────────────────────────────────────────────────────

type stubCorteRepo struct{ st *store }

func (r *stubCorteRepo) Create(_ context.Context, c *model.CorteCaja) error {
	for _, existing := range r.st.cortes {
		if existing.UsuarioID == c.UsuarioID && existing.Estado == model.CorteAbierto {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.st.cortes[c.ID] = *c
	return nil
}

func (r *stubCorteRepo) FindAbiertoPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.CorteCaja, error) {
	for _, c := range r.st.cortes {
		if c.UsuarioID == usuarioID && c.Estado == model.CorteAbierto {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCorteRepo) Cerrar(_ context.Context, c *model.CorteCaja) (bool, error) {
	cur, ok := r.st.cortes[c.ID]
	if !ok || cur.Estado != model.CorteAbierto {
		return false, nil
	}
	closed := *c
	closed.Estado = model.CorteCerrado
	r.st.cortes[c.ID] = closed
	return true, nil
}

func (r *stubCorteRepo) List(_ context.Context, usuarioID *uuid.UUID, page, limit int) ([]model.CorteCaja, int64, error) {
	var out []model.CorteCaja
	for _, c := range r.st.cortes {
		if usuarioID == nil || c.UsuarioID == *usuarioID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaApertura.After(out[j].FechaApertura) })
	return paginate(out, page, limit), int64(len(out)), nil
}

// ── Usuarios / Proveedores ────────────────────────────────────────────────────

type stubUsuarioRepo struct{ st *store }

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.st.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.st.usuarios {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) Upsert(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.st.usuarios[u.ID] = *u
	return nil
}

type stubProveedorRepo struct{ st *store }

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.st.proveedores[p.ID] = *p
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.st.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProveedorRepo) List(_ context.Context, f dto.ProveedorFilter) ([]model.Proveedor, int64, error) {
	buscar := strings.ToLower(f.Buscar)
	contiene := func(v *string) bool { return v != nil && strings.Contains(strings.ToLower(*v), buscar) }
	var out []model.Proveedor
	for _, p := range r.st.proveedores {
		switch {
		case (f.Estado == "" || f.Estado == dto.ProveedorActivo) && !p.Activo:
			continue
		case f.Estado == dto.ProveedorInactivo && p.Activo:
			continue
		}
		if buscar != "" && !strings.Contains(strings.ToLower(p.Nombre), buscar) && !contiene(p.Contacto) && !contiene(p.Email) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	p.Activo = r.st.proveedores[p.ID].Activo
	r.st.proveedores[p.ID] = *p
	return nil
}

func (r *stubProveedorRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	p := r.st.proveedores[id]
	p.Activo = activo
	r.st.proveedores[id] = p
	return nil
}

func (r *stubProveedorRepo) ContarPorEstado(_ context.Context) (activos, inactivos int64, err error) {
	for _, p := range r.st.proveedores {
		if p.Activo {
			activos++
		} else {
			inactivos++
		}
	}
	return activos, inactivos, nil
}

func (r *stubProveedorRepo) ContarPorCondicion(_ context.Context) ([]repository.ConteoCondicion, error) {
	conteo := map[string]int64{}
	valores := map[string]*string{}
	for _, p := range r.st.proveedores {
		if !p.Activo {
			continue
		}
		clave := ""
		if p.CondicionesPago != nil {
			clave = *p.CondicionesPago
		}
		conteo[clave]++
		valores[clave] = p.CondicionesPago
	}
	out := make([]repository.ConteoCondicion, 0, len(conteo))
	for k, n := range conteo {
		out = append(out, repository.ConteoCondicion{CondicionesPago: valores[k], Total: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return ptrOrEmpty(out[i].CondicionesPago) < ptrOrEmpty(out[j].CondicionesPago)
	})
	return out, nil
}

func ptrOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	_ repository.ProductoRepository  = (*stubProductoRepo)(nil)
	_ repository.ClienteRepository   = (*stubClienteRepo)(nil)
	_ repository.VentaRepository     = (*stubVentaRepo)(nil)
	_ repository.PagoRepository      = (*stubPagoRepo)(nil)
	_ repository.CorteRepository     = (*stubCorteRepo)(nil)
	_ repository.UsuarioRepository   = (*stubUsuarioRepo)(nil)
	_ repository.ProveedorRepository = (*stubProveedorRepo)(nil)
)

// ── Ticket queue ──────────────────────────────────────────────────────────────

type stubTickets struct {
	err  error
	jobs []worker.TicketJobPayload
}

func (s *stubTickets) EnqueueTicket(_ context.Context, p worker.TicketJobPayload) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, p)
	return nil
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
