package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GestorNinguno is what receipts and reports print for a sale without agent.
// Requests that send it are stored with a nil Gestor.
const GestorNinguno = "Ninguno"

// Venta is a committed sale. It is immutable once written; the only allowed
// mutation is deletion.
//
// CodigoFactura is NumeroFactura zero-padded to four digits. The pair
// (DiaFactura, NumeroFactura) is unique: codes restart every calendar day.
type Venta struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClienteNombre    string    `gorm:"not null"`
	ClienteCarnet    string    `gorm:"not null"`
	ClienteDireccion string    `gorm:"not null"`
	ClienteEmail     *string
	// Gestor is nil when the sale has no sales agent.
	Gestor        *string         `gorm:"index"`
	DiaFactura    string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_ventas_dia_numero"`
	NumeroFactura int             `gorm:"not null;uniqueIndex:idx_ventas_dia_numero"`
	CodigoFactura string          `gorm:"type:varchar(10);not null"`
	PrecioTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Metadatos keeps any extra fields the client sends along with the sale.
	Metadatos map[string]any `gorm:"type:text;serializer:json"`
	CreatedAt time.Time      `gorm:"index;not null"`

	Items []VentaItem `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

func (Venta) TableName() string { return "ventas" }

func (v *Venta) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// VentaItem is one line of a sale. Product fields are copied at sale time so
// later product edits never rewrite history.
type VentaItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Posicion     int             `gorm:"not null"`
	ProductoID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Nombre       string          `gorm:"index;not null"`
	Codigo       string          `gorm:"not null"`
	Existencia   int             `gorm:"not null"` // stock left right after this line was sold
	Costo        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Venta        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioGestor decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad     int             `gorm:"not null"`
}

func (VentaItem) TableName() string { return "venta_items" }

func (i *VentaItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Subtotal is the line amount at the snapshot sale price.
func (i VentaItem) Subtotal() decimal.Decimal {
	return i.Venta.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}
