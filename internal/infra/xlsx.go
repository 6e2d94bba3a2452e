package infra

import (
	"fmt"
	"io"

	"tiendapos/internal/model"

	"github.com/xuri/excelize/v2"
)

var ventasXLSXHeader = []string{
	"Número", "Fecha", "Cliente", "Operador", "Método", "Estado pago", "Estado", "Subtotal", "Impuesto", "Total",
}

// WriteVentasXLSX renders the sales-by-date report as a single-sheet workbook.
func WriteVentasXLSX(ventas []model.Venta, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Ventas"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}
	for i, h := range ventasXLSXHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "J1", bold); err != nil {
		return err
	}

	for r, v := range ventas {
		cliente, operador := "", ""
		if v.Cliente != nil {
			cliente = v.Cliente.Nombre
		}
		if v.Usuario != nil {
			operador = v.Usuario.Nombre
		}
		subtotal, _ := v.Subtotal.Float64()
		impuesto, _ := v.Impuesto.Float64()
		total, _ := v.Total.Float64()
		row := []any{
			v.NumeroVenta, v.CreatedAt.Format("2006-01-02 15:04"), cliente, operador,
			v.MetodoPago, v.EstadoPago, v.Estado, subtotal, impuesto, total,
		}
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(sheet, "A", "B", 18)
	_ = f.SetColWidth(sheet, "C", "D", 24)

	return f.Write(w)
}
