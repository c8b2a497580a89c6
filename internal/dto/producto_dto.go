package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre       string          `json:"nombre"        validate:"required,min=1,max=120"`
	Codigo       string          `json:"codigo"        validate:"required,max=40"`
	Descripcion  *string         `json:"descripcion"`
	Existencia   int             `json:"existencia"    validate:"min=0"`
	Costo        decimal.Decimal `json:"costo"         validate:"min=0"`
	Venta        decimal.Decimal `json:"venta"         validate:"min=0"`
	PrecioGestor decimal.Decimal `json:"precio_gestor" validate:"min=0"`
	URL          *string         `json:"url"`
}

// ActualizarProductoRequest has patch semantics: only non-nil fields overwrite
// the stored product.
type ActualizarProductoRequest struct {
	Nombre       *string          `json:"nombre"        validate:"omitempty,min=1,max=120"`
	Codigo       *string          `json:"codigo"        validate:"omitempty,max=40"`
	Descripcion  *string          `json:"descripcion"`
	Existencia   *int             `json:"existencia"    validate:"omitempty,min=0"`
	Costo        *decimal.Decimal `json:"costo"`
	Venta        *decimal.Decimal `json:"venta"`
	PrecioGestor *decimal.Decimal `json:"precio_gestor"`
	URL          *string          `json:"url"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"nombre"`
	Codigo       string          `json:"codigo"`
	Descripcion  *string         `json:"descripcion"`
	Existencia   int             `json:"existencia"`
	Costo        decimal.Decimal `json:"costo"`
	Venta        decimal.Decimal `json:"venta"`
	PrecioGestor decimal.Decimal `json:"precio_gestor"`
	URL          *string         `json:"url"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
