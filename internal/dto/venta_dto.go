package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type ClienteRequest struct {
	Nombre    string  `json:"nombre"`
	Carnet    string  `json:"carnet"`
	Direccion string  `json:"direccion"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// RegistrarVentaRequest is the body of POST /v1/ventas. Blank cliente fields
// are rejected by the service, which trims before checking.
type RegistrarVentaRequest struct {
	Items   []ItemVentaRequest `json:"items"   validate:"dive"`
	Cliente ClienteRequest     `json:"cliente"`
	// Gestor is optional; nil or blank means the sale has no sales agent.
	Gestor    *string        `json:"gestor"`
	Metadatos map[string]any `json:"metadatos"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas and
// GET /v1/ventas/por-dia. Zero Dia, Mes or Anio means "not given".
type VentaFilter struct {
	Dia    int    `form:"dia"`
	Mes    int    `form:"mes"`
	Anio   int    `form:"anio"`
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=8" validate:"min=1,max=100"`
	Search string `form:"search"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RegistrarVentaResponse struct {
	CodigoFactura string          `json:"codigo_factura"`
	VentaID       string          `json:"venta_id"`
	PrecioTotal   decimal.Decimal `json:"precio_total"`
}

type ItemVentaResponse struct {
	ProductoID   string          `json:"producto_id"`
	Nombre       string          `json:"nombre"`
	Codigo       string          `json:"codigo"`
	Cantidad     int             `json:"cantidad"`
	Existencia   int             `json:"existencia"`
	Costo        decimal.Decimal `json:"costo"`
	Venta        decimal.Decimal `json:"venta"`
	PrecioGestor decimal.Decimal `json:"precio_gestor"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type ClienteResponse struct {
	Nombre    string  `json:"nombre"`
	Carnet    string  `json:"carnet"`
	Direccion string  `json:"direccion"`
	Email     *string `json:"email,omitempty"`
}

type VentaResponse struct {
	ID            string              `json:"id"`
	CodigoFactura string              `json:"codigo_factura"`
	Cliente       ClienteResponse     `json:"cliente"`
	Gestor        string              `json:"gestor"`
	Items         []ItemVentaResponse `json:"items"`
	PrecioTotal   decimal.Decimal     `json:"precio_total"`
	Metadatos     map[string]any      `json:"metadatos,omitempty"`
	Fecha         string              `json:"fecha"`
}

type VentaListResponse struct {
	Data       []VentaResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type ProximoCodigoFacturaResponse struct {
	ProximoCodigoFactura string `json:"proximo_codigo_factura"`
}
