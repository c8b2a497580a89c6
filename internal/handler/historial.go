package handler

import (
	"net/http"

	"superbravo/internal/dto"
	"superbravo/internal/service"

	"github.com/gin-gonic/gin"
)

type HistorialHandler struct{ svc service.HistorialService }

func NewHistorialHandler(svc service.HistorialService) *HistorialHandler {
	return &HistorialHandler{svc: svc}
}

// ListarPorProducto godoc
// @Summary      Historial de un producto
// @Description  Entradas más recientes primero. Sigue disponible después de eliminar el producto.
// @Tags         historial
// @Produce      json
// @Param        productoId path  string true  "UUID del producto"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 10, máx 100)"
// @Success      200        {object} dto.HistorialListResponse
// @Failure      400        {object} apierror.APIError
// @Router       /v1/historial/producto/{productoId} [get]
func (h *HistorialHandler) ListarPorProducto(c *gin.Context) {
	id, ok := paramUUID(c, "productoId")
	if !ok {
		return
	}
	var f dto.HistorialFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.ListarPorProducto(c.Request.Context(), id, f.Page, f.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
