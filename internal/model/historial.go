package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Acciones registradas en el historial.
const (
	AccionCrear      = "CREAR"
	AccionActualizar = "ACTUALIZAR"
	AccionEliminar   = "ELIMINAR"
)

// Historial registra cada evento que afecta el inventario de un producto.
// Los registros son inmutables — nunca se eliminan ni modifican, tampoco
// cuando se elimina el producto (no hay FK con cascade).
type Historial struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ProductoID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_historial_producto_fecha,priority:1"`
	Accion       string           `gorm:"type:varchar(20);not null"`
	Detalles     string           `gorm:"type:text"`
	Cantidad     *int
	Costo        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Venta        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PrecioGestor *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Usuario      *string
	CreatedAt    time.Time `gorm:"not null;index:idx_historial_producto_fecha,priority:2"`
	// Secuencia counts the product's entries from 1 and breaks ties between
	// entries written with the same CreatedAt (the lines of one sale).
	Secuencia int64 `gorm:"not null;default:0;index:idx_historial_producto_fecha,priority:3"`
}

func (Historial) TableName() string { return "historial" }

func (h *Historial) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
