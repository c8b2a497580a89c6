package dto

import "github.com/shopspring/decimal"

// HistorialFilter is bound from the query string of the historial route.
type HistorialFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=10" validate:"min=1,max=100"`
}

// HistorialItem is one row of a product's audit trail.
type HistorialItem struct {
	ID           string           `json:"id"`
	ProductoID   string           `json:"producto_id"`
	Accion       string           `json:"accion"`
	Detalles     string           `json:"detalles"`
	Cantidad     *int             `json:"cantidad,omitempty"`
	Costo        *decimal.Decimal `json:"costo,omitempty"`
	Venta        *decimal.Decimal `json:"venta,omitempty"`
	PrecioGestor *decimal.Decimal `json:"precio_gestor,omitempty"`
	Usuario      *string          `json:"usuario,omitempty"`
	Fecha        string           `json:"fecha"`
}

// HistorialListResponse is returned by GET /v1/historial/producto/:productoId.
type HistorialListResponse struct {
	Data       []HistorialItem `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
