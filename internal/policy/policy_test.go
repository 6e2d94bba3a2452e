package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_CajeroNoPuedeCancelar(t *testing.T) {
	p := Default()
	assert.True(t, p.Allows(RolCajero, CrearVenta))
	assert.True(t, p.Allows(RolCajero, GestionarCaja))
	assert.False(t, p.Allows(RolCajero, CancelarVenta))
	assert.False(t, p.Allows(RolCajero, VerTodosLosCortes))
}

func TestDefault_AdminTieneTodo(t *testing.T) {
	p := Default()
	for _, perm := range []string{CancelarVenta, VerTodosLosCortes, EliminarCliente, DescargarReportes} {
		assert.True(t, p.Allows(RolAdmin, perm), perm)
	}
}

func TestDefault_ReportesSoloLectura(t *testing.T) {
	p := Default()
	assert.True(t, p.Allows(RolReportes, VerReportes))
	assert.False(t, p.Allows(RolReportes, CrearVenta))
	assert.False(t, p.Allows(RolReportes, GestionarCaja))
}

func TestRolDesconocido(t *testing.T) {
	assert.False(t, Default().Allows("supervisor", VerVentas))
	var nilPolicy *Policy
	assert.False(t, nilPolicy.Allows(RolAdmin, VerVentas))
}

func TestNew_CopiaLaTabla(t *testing.T) {
	table := map[string][]string{"auditor": {VerVentas}}
	p := New(table)
	table["auditor"] = append(table["auditor"], CancelarVenta)

	assert.True(t, p.Allows("auditor", VerVentas))
	assert.False(t, p.Allows("auditor", CancelarVenta))
	assert.ElementsMatch(t, []string{VerVentas}, p.Permisos("auditor"))
}
