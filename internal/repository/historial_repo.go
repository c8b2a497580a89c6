package repository

import (
	"context"

	"superbravo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistorialRepository is append-only: there is no update or delete.
type HistorialRepository interface {
	CreateTx(tx *gorm.DB, h *model.Historial) error
	ListByProducto(ctx context.Context, productoID uuid.UUID, page, limit int) ([]model.Historial, int64, error)
}

type historialRepository struct{ db *gorm.DB }

func NewHistorialRepository(db *gorm.DB) HistorialRepository {
	return &historialRepository{db: db}
}

// CreateTx assigns the product's next Secuencia and inserts h. Every writer
// holds the product row lock (or just created the row), so entries of one
// product are numbered one at a time.
func (r *historialRepository) CreateTx(tx *gorm.DB, h *model.Historial) error {
	var ultima int64
	if err := tx.Model(&model.Historial{}).
		Select("COALESCE(MAX(secuencia), 0)").
		Where("producto_id = ?", h.ProductoID).
		Scan(&ultima).Error; err != nil {
		return err
	}
	h.Secuencia = ultima + 1
	return tx.Create(h).Error
}

// ListByProducto returns paginated entries for one product, newest first.
// page and limit must already be normalized by the caller.
func (r *historialRepository) ListByProducto(
	ctx context.Context,
	productoID uuid.UUID,
	page, limit int,
) ([]model.Historial, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Historial{}).
		Where("producto_id = ?", productoID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.Historial
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("created_at DESC").
		Order("secuencia DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
