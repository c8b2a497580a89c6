package repository

import (
	"context"
	"errors"

	"superbravo/internal/dto"
	"superbravo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockInsuficiente is returned by DescontarExistenciaTx when the product
// does not hold enough units; nothing was written.
var ErrStockInsuficiente = errors.New("stock insuficiente")

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Producto) error
	// UpdateTx writes only the named columns of p; the rest of the row,
	// existencia included, keeps whatever is stored.
	UpdateTx(tx *gorm.DB, p *model.Producto, columnas []string) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	// FindByIDForUpdateTx reads the row with SELECT ... FOR UPDATE so no sale
	// can change it until tx ends.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)

	// DescontarExistenciaTx decrements stock by cantidad only if at least
	// cantidad units are available, as one conditional UPDATE.
	DescontarExistenciaTx(tx *gorm.DB, id uuid.UUID, cantidad int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByIDTx(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})
	if filter.Search != "" {
		q = q.Where("LOWER(nombre) LIKE ?"+likeEscape, likePattern(filter.Search))
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Producto{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) UpdateTx(tx *gorm.DB, p *model.Producto, columnas []string) error {
	if len(columnas) == 0 {
		return nil
	}
	return tx.Model(p).Select(append(columnas, "updated_at")).Updates(p).Error
}

func (r *productoRepo) DescontarExistenciaTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND existencia >= ?", id, cantidad).
		Update("existencia", gorm.Expr("existencia - ?", cantidad))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockInsuficiente
	}
	return nil
}
