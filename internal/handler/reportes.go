package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"tiendapos/internal/dto"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// VentasPorFecha godoc
// @Summary  Ventas en un rango de fechas
// @Tags     reportes
// @Produce  json
// @Security BearerAuth
// @Param    fecha_inicio query string true "YYYY-MM-DD"
// @Param    fecha_fin    query string true "YYYY-MM-DD (inclusive)"
// @Success  200 {array} dto.VentaResponse
// @Failure  400 {object} apierror.APIError
// @Router   /v1/reportes/ventas-por-fecha [get]
func (h *ReportesHandler) VentasPorFecha(c *gin.Context) {
	var q dto.RangoFechasQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.VentasPorFecha(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasPorFechaXLSX godoc
// @Summary  Exportar ventas a Excel
// @Tags     reportes
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param    fecha_inicio query string true "YYYY-MM-DD"
// @Param    fecha_fin    query string true "YYYY-MM-DD (inclusive)"
// @Success  200 {file} binary
// @Router   /v1/reportes/ventas-por-fecha.xlsx [get]
func (h *ReportesHandler) VentasPorFechaXLSX(c *gin.Context) {
	var q dto.RangoFechasQuery
	if !bindQuery(c, &q) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportarVentasXLSX(c.Request.Context(), q, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ventas_%s_%s.xlsx"`, q.FechaInicio, q.FechaFin))
	c.Data(http.StatusOK, xlsxMime, buf.Bytes())
}

func (h *ReportesHandler) VentasPorSeccion(c *gin.Context) {
	var q dto.RangoFechasQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.VentasPorSeccion(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) ProductosMasVendidos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit > 100 {
		limit = 100
	}
	resp, err := h.svc.ProductosMasVendidos(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) CuentasPorCobrar(c *gin.Context) {
	resp, err := h.svc.CuentasPorCobrar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) InventarioBajo(c *gin.Context) {
	resp, err := h.svc.InventarioBajo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenVentas godoc
// @Summary  Totales agrupados por periodo
// @Tags     reportes
// @Produce  json
// @Security BearerAuth
// @Param    periodo query string false "diario | semanal | mensual (default diario)"
// @Success  200 {object} dto.ResumenVentasResponse
// @Failure  400 {object} apierror.APIError
// @Router   /v1/reportes/resumen-ventas [get]
func (h *ReportesHandler) ResumenVentas(c *gin.Context) {
	resp, err := h.svc.ResumenVentas(c.Request.Context(), c.Query("periodo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
