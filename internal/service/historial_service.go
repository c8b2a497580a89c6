package service

import (
	"context"
	"time"

	"superbravo/internal/dto"
	"superbravo/internal/model"
	"superbravo/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const historialLimitDefault = 10

// HistorialService is the audit ledger of inventory-affecting events.
type HistorialService interface {
	// RegistrarTx appends e inside tx so the entry commits or rolls back
	// together with the change it describes.
	RegistrarTx(ctx context.Context, tx *gorm.DB, e *model.Historial) error
	ListarPorProducto(ctx context.Context, productoID uuid.UUID, page, limit int) (*dto.HistorialListResponse, error)
}

type historialService struct {
	repo repository.HistorialRepository
}

func NewHistorialService(repo repository.HistorialRepository) HistorialService {
	return &historialService{repo: repo}
}

func (s *historialService) RegistrarTx(ctx context.Context, tx *gorm.DB, e *model.Historial) error {
	if err := s.repo.CreateTx(tx.WithContext(ctx), e); err != nil {
		return errAlmacenamiento("registrar historial", err)
	}
	return nil
}

func (s *historialService) ListarPorProducto(
	ctx context.Context,
	productoID uuid.UUID,
	page, limit int,
) (*dto.HistorialListResponse, error) {
	page, limit = normalizarPagina(page, limit, historialLimitDefault)

	rows, total, err := s.repo.ListByProducto(ctx, productoID, page, limit)
	if err != nil {
		return nil, errAlmacenamiento("listar historial", err)
	}

	data := make([]dto.HistorialItem, 0, len(rows))
	for i := range rows {
		data = append(data, historialToDTO(&rows[i]))
	}
	return &dto.HistorialListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPaginas(total, limit),
	}, nil
}

func historialToDTO(h *model.Historial) dto.HistorialItem {
	return dto.HistorialItem{
		ID:           h.ID.String(),
		ProductoID:   h.ProductoID.String(),
		Accion:       h.Accion,
		Detalles:     h.Detalles,
		Cantidad:     h.Cantidad,
		Costo:        h.Costo,
		Venta:        h.Venta,
		PrecioGestor: h.PrecioGestor,
		Usuario:      h.Usuario,
		Fecha:        h.CreatedAt.UTC().Format(time.RFC3339),
	}
}
