package service

import "tiendapos/internal/apierror"

// Domain errors. Wrap with fmt.Errorf("%w: ...") to add detail; handlers
// recover the status with apierror.StatusOf.
var (
	ErrIDInvalido         = apierror.Precondition("id inválido")
	ErrMetodoPagoInvalido = apierror.Precondition("método de pago inválido")
	ErrRangoFechas        = apierror.Precondition("rango de fechas inválido")
	ErrMontoPrecision     = apierror.Precondition("los montos admiten como máximo dos decimales")

	// ventas
	ErrCarritoVacio         = apierror.Precondition("la venta debe incluir al menos un producto")
	ErrCantidadInvalida     = apierror.Precondition("la cantidad debe ser mayor a cero")
	ErrImpuestoInvalido     = apierror.Precondition("el impuesto no puede ser negativo")
	ErrStockInsuficiente    = apierror.Precondition("stock insuficiente")
	ErrEfectivoInsuficiente = apierror.Precondition("el monto recibido es menor al total de la venta")
	ErrClienteRequerido     = apierror.Precondition("las ventas a crédito requieren un cliente")
	ErrLimiteCredito        = apierror.Precondition("límite de crédito excedido")
	ErrVentaNoEncontrada    = apierror.NotFound("venta no encontrada")
	ErrVentaCancelada       = apierror.Precondition("la venta está cancelada")

	// pagos
	ErrMontoInvalido        = apierror.Precondition("el monto debe ser mayor a cero")
	ErrSinSaldo             = apierror.Precondition("el cliente no tiene saldo pendiente")
	ErrMontoExcedeSaldo     = apierror.Precondition("el monto excede el saldo del cliente")
	ErrMontoExcedePendiente = apierror.Precondition("el monto excede el saldo pendiente de la venta")
	ErrVentaNoEsCredito     = apierror.Precondition("solo se aceptan abonos a ventas a crédito")
	ErrVentaDeOtroCliente   = apierror.Precondition("la venta no pertenece al cliente")

	// cortes de caja
	ErrCajaYaAbierta      = apierror.Precondition("ya tienes un corte de caja abierto")
	ErrCajaAbiertaEnCurso = apierror.Conflict("otro corte de caja se abrió al mismo tiempo")
	ErrCajaNoAbierta      = apierror.Precondition("no tienes un corte de caja abierto")
	ErrCorteNoEncontrado  = apierror.NotFound("no hay corte de caja abierto")
	ErrMontoNegativo      = apierror.Precondition("el monto no puede ser negativo")

	// catálogo
	ErrProductoNoEncontrado  = apierror.NotFound("producto no encontrado")
	ErrProductoInactivo      = apierror.Precondition("producto inactivo")
	ErrCodigoDuplicado       = apierror.Conflict("ya existe un producto con ese código")
	ErrPrecioInvalido        = apierror.Precondition("el precio de venta debe ser mayor a cero")
	ErrClienteNoEncontrado   = apierror.NotFound("cliente no encontrado")
	ErrClienteInactivo       = apierror.Precondition("cliente inactivo")
	ErrClienteDuplicado      = apierror.Conflict("ya existe un cliente con ese nombre")
	ErrClienteConSaldo       = apierror.Precondition("no se puede desactivar un cliente con saldo pendiente")
	ErrProveedorNoEncontrado = apierror.NotFound("proveedor no encontrado")

	// reportes
	ErrPeriodoInvalido = apierror.Precondition("periodo inválido: use diario, semanal o mensual")
)
