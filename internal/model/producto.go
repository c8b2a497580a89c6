package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto holds current stock and pricing for one sellable item.
// Existencia never goes below zero: the CHECK constraint backs the
// conditional decrement done at sale time.
type Producto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre       string          `gorm:"index;not null"`
	Codigo       string          `gorm:"index;not null"`
	Descripcion  *string
	Existencia   int             `gorm:"not null;default:0;check:chk_productos_existencia,existencia >= 0"`
	Costo        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Venta        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioGestor decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// URL is the image reference; uploads are handled outside this service.
	URL       *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Producto) TableName() string { return "productos" }

func (p *Producto) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
