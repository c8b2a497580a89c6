package handler

import (
	"net/http"

	"superbravo/internal/dto"
	"superbravo/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportesHandler serves the read-only sales queries under /v1/ventas.
type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Description  Lista paginada. anio, anio+mes o anio+mes+dia acotan la fecha; search filtra por nombre de producto vendido.
// @Tags         reportes
// @Produce      json
// @Param        dia    query int    false "Día"
// @Param        mes    query int    false "Mes"
// @Param        anio   query int    false "Año"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 8, máx 100)"
// @Param        search query string false "Nombre de producto"
// @Success      200    {object} dto.VentaListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/ventas [get]
func (h *ReportesHandler) ListarVentas(c *gin.Context) {
	var f dto.VentaFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasPorDia godoc
// @Summary      Ventas de un día
// @Description  Sin dia, mes y anio completos devuelve todas las ventas.
// @Tags         reportes
// @Produce      json
// @Param        dia  query int false "Día"
// @Param        mes  query int false "Mes"
// @Param        anio query int false "Año"
// @Success      200  {array} dto.VentaResponse
// @Router       /v1/ventas/por-dia [get]
func (h *ReportesHandler) VentasPorDia(c *gin.Context) {
	var f dto.VentaFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.VentasPorDia(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasMensuales godoc
// @Summary      Total por día del mes en curso
// @Tags         reportes
// @Produce      json
// @Success      200 {array} dto.VentaDiaTotal
// @Router       /v1/ventas/mensual [get]
func (h *ReportesHandler) VentasMensuales(c *gin.Context) {
	resp, err := h.svc.VentasMensuales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasAnuales godoc
// @Summary      Total por mes del año en curso
// @Tags         reportes
// @Produce      json
// @Success      200 {array} dto.VentaMesTotal
// @Router       /v1/ventas/anual [get]
func (h *ReportesHandler) VentasAnuales(c *gin.Context) {
	resp, err := h.svc.VentasAnuales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasMensualesPorGestor godoc
// @Summary      Gestor con más ventas por día del mes en curso
// @Tags         reportes
// @Produce      json
// @Success      200 {array} dto.GestorTopDia
// @Router       /v1/ventas/mensual-por-gestor [get]
func (h *ReportesHandler) VentasMensualesPorGestor(c *gin.Context) {
	resp, err := h.svc.VentasMensualesPorGestor(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProductoTopDiario godoc
// @Summary      Producto más vendido por día del mes en curso
// @Tags         reportes
// @Produce      json
// @Success      200 {array} dto.ProductoTopDia
// @Router       /v1/ventas/producto-top-diario [get]
func (h *ReportesHandler) ProductoTopDiario(c *gin.Context) {
	resp, err := h.svc.ProductoTopDiario(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VendidosPorFecha godoc
// @Summary      Unidades vendidas por producto en una fecha
// @Tags         reportes
// @Produce      json
// @Param        fecha query string false "AAAA-MM-DD (default: hoy)"
// @Success      200   {array} dto.ProductoVendido
// @Failure      400   {object} apierror.APIError
// @Router       /v1/ventas/vendidos-por-fecha [get]
func (h *ReportesHandler) VendidosPorFecha(c *gin.Context) {
	resp, err := h.svc.VendidosPorFecha(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VendidosTotales godoc
// @Summary      Unidades vendidas por producto desde siempre
// @Tags         reportes
// @Produce      json
// @Success      200 {array} dto.ProductoVendidoTotal
// @Router       /v1/ventas/vendidos-totales [get]
func (h *ReportesHandler) VendidosTotales(c *gin.Context) {
	resp, err := h.svc.VendidosTotales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
