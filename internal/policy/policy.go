// Package policy maps operator roles to the permissions they hold.
// A Policy is built once at startup and injected wherever a permission is
// checked, so tests can swap in a different table.
package policy

// Roles.
const (
	RolAdmin    = "admin"
	RolCajero   = "cajero"
	RolReportes = "reportes"
)

// Permission names.
const (
	CrearVenta           = "crear_venta"
	VerVentas            = "ver_ventas"
	CancelarVenta        = "cancelar_venta"
	ProcesarPago         = "procesar_pago"
	VerHistorialPagos    = "ver_historial_pagos"
	GestionarCaja        = "gestionar_caja"
	VerTodosLosCortes    = "ver_todos_los_cortes"
	VerProductos         = "ver_productos"
	CrearProducto        = "crear_producto"
	EditarProducto       = "editar_producto"
	EliminarProducto     = "eliminar_producto"
	VerClientes          = "ver_clientes"
	GestionarClientes    = "gestionar_clientes"
	EliminarCliente      = "eliminar_cliente"
	GestionarProveedores = "gestionar_proveedores"
	VerReportes          = "ver_reportes_completos"
	DescargarReportes    = "descargar_reportes"
)

// Policy is an immutable role → permission set table.
type Policy struct {
	permisos map[string]map[string]struct{}
}

// New builds a Policy from role → permissions. The input is copied.
func New(table map[string][]string) *Policy {
	p := &Policy{permisos: make(map[string]map[string]struct{}, len(table))}
	for rol, perms := range table {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		p.permisos[rol] = set
	}
	return p
}

// Default is the store's standard table.
func Default() *Policy {
	return New(map[string][]string{
		RolAdmin: {
			CrearVenta, VerVentas, CancelarVenta,
			ProcesarPago, VerHistorialPagos,
			GestionarCaja, VerTodosLosCortes,
			VerProductos, CrearProducto, EditarProducto, EliminarProducto,
			VerClientes, GestionarClientes, EliminarCliente,
			GestionarProveedores,
			VerReportes, DescargarReportes,
		},
		RolCajero: {
			CrearVenta, VerVentas,
			ProcesarPago,
			GestionarCaja,
			VerProductos,
			VerClientes, GestionarClientes,
		},
		RolReportes: {
			VerVentas, VerHistorialPagos, VerReportes, DescargarReportes,
		},
	})
}

// Allows reports whether rol holds perm. Unknown roles hold nothing.
func (p *Policy) Allows(rol, perm string) bool {
	if p == nil {
		return false
	}
	_, ok := p.permisos[rol][perm]
	return ok
}

// Permisos lists the permissions of rol in no particular order.
func (p *Policy) Permisos(rol string) []string {
	out := make([]string, 0, len(p.permisos[rol]))
	for perm := range p.permisos[rol] {
		out = append(out, perm)
	}
	return out
}
