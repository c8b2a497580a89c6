package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"superbravo/internal/dto"
	"superbravo/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary      Registrar una nueva venta
// @Description  Descuenta existencia de todos los productos, asigna el código de factura del día y registra el historial, todo en una transacción.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.RegistrarVentaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      500  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenta(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerVenta godoc
// @Summary      Obtener venta
// @Tags         ventas
// @Produce      json
// @Param        id  path     string true "UUID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarVenta godoc
// @Summary      Eliminar venta
// @Description  Borra la venta y sus productos. La existencia no se restaura y el código no se reutiliza.
// @Tags         ventas
// @Produce      json
// @Param        id  path     string true "UUID de la venta"
// @Success      200 {object} map[string]string
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [delete]
func (h *VentasHandler) EliminarVenta(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarVenta(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Venta eliminada"})
}

// ProximoCodigoFactura godoc
// @Summary      Próximo código de factura
// @Description  Vista previa del código que recibirá la próxima venta de hoy. No reserva nada.
// @Tags         ventas
// @Produce      json
// @Success      200 {object} dto.ProximoCodigoFacturaResponse
// @Router       /v1/ventas/proximo-codigo-factura [get]
func (h *VentasHandler) ProximoCodigoFactura(c *gin.Context) {
	resp, err := h.svc.ProximoCodigoFactura(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarComprobante godoc
// @Summary      Comprobante PDF de una venta
// @Tags         ventas
// @Produce      application/pdf
// @Param        id  path string true "UUID de la venta"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id}/comprobante [get]
func (h *VentasHandler) DescargarComprobante(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	// rendered into memory first so a failure can still answer with JSON
	var buf bytes.Buffer
	if err := h.svc.EscribirComprobante(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="comprobante_%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
