package repository

import (
	"context"
	"time"

	"superbravo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VentaQuery filters sales by a half-open creation window [Desde, Hasta) and
// by a substring of any sold product name.
type VentaQuery struct {
	Desde  *time.Time
	Hasta  *time.Time
	Search string
	Offset int
	Limit  int // 0 = no limit
}

// VendidoRow is one (product name, units sold) aggregate.
type VendidoRow struct {
	Nombre string
	Total  int
}

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q VentaQuery) ([]model.Venta, int64, error)
	// ListRango returns every sale created in [desde, hasta) with its items,
	// oldest first.
	ListRango(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)
	// Vendidos sums units per product name. A nil bound leaves that side open.
	// Rows come sorted by units descending, then by first sale.
	Vendidos(ctx context.Context, desde, hasta *time.Time) ([]VendidoRow, error)

	// NextNumeroFactura atomically bumps the counter of dia and returns the new
	// value. Must run inside the sale transaction so a rollback gives the
	// number back.
	NextNumeroFactura(ctx context.Context, tx *gorm.DB, dia string, now time.Time) (int, error)
	// UltimoNumeroFactura is the highest number handed out for dia, 0 if none.
	UltimoNumeroFactura(ctx context.Context, dia string) (int, error)

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func itemsEnOrden(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items", itemsEnOrden).Where("id = ?", id).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Delete removes the sale and its items. Stock is left untouched.
func (r *ventaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venta_id = ?", id).Delete(&model.VentaItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Venta{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ventaRepo) filtrar(ctx context.Context, q VentaQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Venta{})
	if q.Desde != nil {
		db = db.Where("created_at >= ?", q.Desde.UTC())
	}
	if q.Hasta != nil {
		db = db.Where("created_at < ?", q.Hasta.UTC())
	}
	if q.Search != "" {
		db = db.Where("id IN (?)",
			r.db.Model(&model.VentaItem{}).
				Select("venta_id").
				Where("LOWER(nombre) LIKE ?"+likeEscape, likePattern(q.Search)))
	}
	return db
}

func (r *ventaRepo) List(ctx context.Context, q VentaQuery) ([]model.Venta, int64, error) {
	var total int64
	if err := r.filtrar(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ventas []model.Venta
	db := r.filtrar(ctx, q).
		Preload("Items", itemsEnOrden).
		Order("created_at ASC").Order("numero_factura ASC").
		Offset(q.Offset)
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if err := db.Find(&ventas).Error; err != nil {
		return nil, 0, err
	}
	return ventas, total, nil
}

func (r *ventaRepo) ListRango(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	ventas, _, err := r.List(ctx, VentaQuery{Desde: &desde, Hasta: &hasta})
	return ventas, err
}

func (r *ventaRepo) Vendidos(ctx context.Context, desde, hasta *time.Time) ([]VendidoRow, error) {
	q := r.db.WithContext(ctx).
		Table("venta_items").
		Select("venta_items.nombre AS nombre, SUM(venta_items.cantidad) AS total").
		Joins("JOIN ventas ON ventas.id = venta_items.venta_id")
	if desde != nil {
		q = q.Where("ventas.created_at >= ?", desde.UTC())
	}
	if hasta != nil {
		q = q.Where("ventas.created_at < ?", hasta.UTC())
	}

	var rows []VendidoRow
	err := q.Group("venta_items.nombre").
		Order("total DESC").
		Order("MIN(ventas.created_at) ASC").
		Order("venta_items.nombre ASC").
		Scan(&rows).Error
	return rows, err
}

// The seed value covers sales written before the day's counter row existed.
const upsertSecuencia = `
INSERT INTO secuencias_factura (dia, ultimo, updated_at)
VALUES (?, COALESCE((SELECT MAX(numero_factura) FROM ventas WHERE dia_factura = ?), 0) + 1, ?)
ON CONFLICT (dia) DO UPDATE
   SET ultimo = secuencias_factura.ultimo + 1,
       updated_at = excluded.updated_at
RETURNING ultimo`

func (r *ventaRepo) NextNumeroFactura(ctx context.Context, tx *gorm.DB, dia string, now time.Time) (int, error) {
	var num int
	err := tx.WithContext(ctx).Raw(upsertSecuencia, dia, dia, now.UTC()).Scan(&num).Error
	return num, err
}

func (r *ventaRepo) UltimoNumeroFactura(ctx context.Context, dia string) (int, error) {
	var ultimo int
	err := r.db.WithContext(ctx).Raw(`
SELECT COALESCE(MAX(n), 0) FROM (
  SELECT ultimo AS n FROM secuencias_factura WHERE dia = ?
  UNION ALL
  SELECT numero_factura AS n FROM ventas WHERE dia_factura = ?
) AS candidatos`, dia, dia).Scan(&ultimo).Error
	return ultimo, err
}
