package dto

import "github.com/shopspring/decimal"

// VentaDiaTotal is revenue for one day of the month.
type VentaDiaTotal struct {
	Dia   int             `json:"dia"`
	Total decimal.Decimal `json:"total"`
}

// VentaMesTotal is revenue for one month of the year.
type VentaMesTotal struct {
	Mes   int             `json:"mes"`
	Total decimal.Decimal `json:"total"`
}

// GestorTopDia names the highest-earning sales agent of a day.
type GestorTopDia struct {
	Dia    int             `json:"dia"`
	Gestor string          `json:"gestor"`
	Total  decimal.Decimal `json:"total"`
}

// ProductoTopDia names the best-selling product of a day, in units.
type ProductoTopDia struct {
	Dia      int    `json:"dia"`
	Producto string `json:"producto"`
	Total    int    `json:"total"`
}

type ProductoVendido struct {
	Nombre string `json:"nombre"`
	Total  int    `json:"total"`
}

type ProductoVendidoTotal struct {
	Nombre               string `json:"nombre"`
	CantidadTotalVendida int    `json:"cantidad_total_vendida"`
}
