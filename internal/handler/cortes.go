package handler

import (
	"net/http"
	"strconv"

	"tiendapos/internal/dto"
	"tiendapos/internal/middleware"
	"tiendapos/internal/policy"
	"tiendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CortesHandler struct {
	svc service.CorteService
	pol *policy.Policy
}

func NewCortesHandler(svc service.CorteService, pol *policy.Policy) *CortesHandler {
	return &CortesHandler{svc: svc, pol: pol}
}

// Abrir godoc
// @Summary Abre la caja del operador
// @Tags cortes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCorteRequest true "Fondo inicial"
// @Success 201 {object} dto.CorteResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/cortes/abrir [post]
func (h *CortesHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCorteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la caja y calcula la diferencia
// @Tags cortes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCorteRequest true "Efectivo contado"
// @Success 200 {object} dto.CorteResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/cortes/cerrar [post]
func (h *CortesHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCorteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actual godoc
// @Summary Caja abierta del operador
// @Tags cortes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CorteResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cortes/actual [get]
func (h *CortesHandler) Actual(c *gin.Context) {
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	resp, err := h.svc.Actual(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns the caller's own sessions, or every operator's when the
// role holds ver_todos_los_cortes.
func (h *CortesHandler) Historial(c *gin.Context) {
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	verTodos := h.pol.Allows(middleware.GetClaims(c).Rol, policy.VerTodosLosCortes)

	resp, err := h.svc.Historial(c.Request.Context(), usuarioID, verTodos, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
