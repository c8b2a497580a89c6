package model

import "time"

// SecuenciaFactura is the per-day invoice counter. Ultimo is the last number
// handed out for Dia (YYYY-MM-DD in the shop's time zone).
type SecuenciaFactura struct {
	Dia       string `gorm:"type:varchar(10);primaryKey"`
	Ultimo    int    `gorm:"not null"`
	UpdatedAt time.Time
}

func (SecuenciaFactura) TableName() string { return "secuencias_factura" }
