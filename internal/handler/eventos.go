package handler

import (
	"io"
	"net/http"
	"time"

	"superbravo/internal/realtime"

	"github.com/gin-gonic/gin"
)

// keepAlive is how often an idle stream gets a comment line so proxies do
// not drop it.
var keepAlive = 25 * time.Second

// EventosHandler streams actualizarCodigoFactura events over SSE.
type EventosHandler struct{ hub *realtime.Hub }

func NewEventosHandler(hub *realtime.Hub) *EventosHandler { return &EventosHandler{hub: hub} }

// Stream godoc
// @Summary      Eventos de ventas (SSE)
// @Description  Emite actualizarCodigoFactura con el próximo código cada vez que se confirma una venta.
// @Tags         ventas
// @Produce      text/event-stream
// @Success      200
// @Router       /v1/ventas/eventos [get]
func (h *EventosHandler) Stream(c *gin.Context) {
	codigos, cancel := h.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case codigo, ok := <-codigos:
			if !ok {
				return false
			}
			c.SSEvent(realtime.EventoCodigoFactura, gin.H{"proximoCodigoFactura": codigo})
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})
}
