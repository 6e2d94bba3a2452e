package service

import (
	"tiendapos/internal/dto"
	"tiendapos/internal/model"
)

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:             v.ID.String(),
		NumeroVenta:    v.NumeroVenta,
		ClienteID:      uuidPtrString(v.ClienteID),
		UsuarioID:      v.UsuarioID.String(),
		Items:          make([]dto.ItemVentaResponse, 0, len(v.Items)),
		Subtotal:       v.Subtotal,
		Impuesto:       v.Impuesto,
		Total:          v.Total,
		MontoRecibido:  v.MontoRecibido,
		Cambio:         v.Cambio,
		MontoPagado:    v.MontoPagado,
		SaldoPendiente: v.Pendiente(),
		MetodoPago:     v.MetodoPago,
		EstadoPago:     v.EstadoPago,
		Estado:         v.Estado,
		CreatedAt:      formatTime(v.CreatedAt),
		CanceladaAt:    formatTimePtr(v.CanceladaAt),
	}
	if v.Cliente != nil {
		nombre := v.Cliente.Nombre
		resp.ClienteNombre = &nombre
	}
	if v.Usuario != nil {
		resp.UsuarioNombre = v.Usuario.Nombre
	}
	for _, it := range v.Items {
		item := dto.ItemVentaResponse{
			ProductoID:     it.ProductoID.String(),
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		}
		if it.Producto != nil {
			item.Codigo = it.Producto.Codigo
			item.Nombre = it.Producto.Nombre
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func pagoToResponse(p *model.Pago) dto.PagoResponse {
	resp := dto.PagoResponse{
		ID:            p.ID.String(),
		NumeroRecibo:  p.NumeroRecibo,
		VentaID:       p.VentaID.String(),
		ClienteID:     p.ClienteID.String(),
		Monto:         p.Monto,
		MetodoPago:    p.MetodoPago,
		Referencia:    p.Referencia,
		Observaciones: p.Observaciones,
		Estado:        p.Estado,
		CreatedAt:     formatTime(p.CreatedAt),
	}
	if p.Venta != nil {
		resp.NumeroVenta = p.Venta.NumeroVenta
	}
	if p.Cliente != nil {
		resp.ClienteNombre = p.Cliente.Nombre
	}
	return resp
}

func corteToResponse(c *model.CorteCaja) *dto.CorteResponse {
	resp := &dto.CorteResponse{
		ID:            c.ID.String(),
		UsuarioID:     c.UsuarioID.String(),
		Estado:        c.Estado,
		FechaApertura: formatTime(c.FechaApertura),
		FechaCierre:   formatTimePtr(c.FechaCierre),
		MontoInicial:  c.MontoInicial,
		MontoContado:  c.MontoContado,
		Totales: dto.TotalesPorMetodo{
			Efectivo:      c.TotalEfectivo,
			Tarjeta:       c.TotalTarjeta,
			Transferencia: c.TotalTransferencia,
			Credito:       c.TotalCredito,
			Total:         c.TotalVentas,
		},
		EfectivoEsperado:        c.EfectivoEsperado,
		Diferencia:              c.Diferencia,
		ClasificacionDiferencia: c.ClasificacionDiferencia,
		Ventas:                  []string(c.VentaIDs),
		Observaciones:           c.Observaciones,
	}
	if resp.Ventas == nil {
		resp.Ventas = []string{}
	}
	if c.Usuario != nil {
		resp.UsuarioNombre = c.Usuario.Nombre
	}
	return resp
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:           p.ID.String(),
		Codigo:       p.Codigo,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		Seccion:      p.Seccion,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		Stock:        p.Stock,
		StockMinimo:  p.StockMinimo,
		StockBajo:    p.StockBajo(),
		UnidadMedida: p.UnidadMedida,
		ProveedorID:  uuidPtrString(p.ProveedorID),
		Activo:       p.Activo,
	}
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:                c.ID.String(),
		Nombre:            c.Nombre,
		Telefono:          c.Telefono,
		Email:             c.Email,
		Direccion:         c.Direccion,
		Tipo:              c.Tipo,
		LimiteCredito:     c.LimiteCredito,
		Saldo:             c.Saldo,
		CreditoDisponible: c.CreditoDisponible(),
		Activo:            c.Activo,
	}
}

func proveedorToResponse(p *model.Proveedor) dto.ProveedorResponse {
	return dto.ProveedorResponse{
		ID:              p.ID.String(),
		Nombre:          p.Nombre,
		Contacto:        p.Contacto,
		Telefono:        p.Telefono,
		Email:           p.Email,
		Direccion:       p.Direccion,
		CondicionesPago: p.CondicionesPago,
		Activo:          p.Activo,
	}
}
