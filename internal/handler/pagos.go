package handler

import (
	"net/http"

	"tiendapos/internal/dto"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type PagosHandler struct{ svc service.PagoService }

func NewPagosHandler(svc service.PagoService) *PagosHandler { return &PagosHandler{svc: svc} }

// RegistrarPago godoc
// @Summary      Registrar abono
// @Description  Aplica un pago a una venta a crédito del cliente y reduce su saldo.
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarPagoRequest true "Abono"
// @Success      201  {object} dto.RegistrarPagoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/pagos [post]
func (h *PagosHandler) RegistrarPago(c *gin.Context) {
	var req dto.RegistrarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PorCliente godoc
// @Summary      Pagos de un cliente
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID del cliente"
// @Success      200  {array}  dto.PagoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/pagos/cliente/{id} [get]
func (h *PagosHandler) PorCliente(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorCliente(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary      Historial de pagos
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Param        cliente_id   query string false "UUID del cliente"
// @Param        fecha_inicio query string false "YYYY-MM-DD"
// @Param        fecha_fin    query string false "YYYY-MM-DD"
// @Param        page         query int    false "Página"
// @Param        limit        query int    false "Registros por página (default 50)"
// @Success      200  {object} dto.PagoListResponse
// @Router       /v1/pagos/historial [get]
func (h *PagosHandler) Historial(c *gin.Context) {
	var filter dto.PagoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
