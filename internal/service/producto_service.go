package service

import (
	"context"
	"fmt"
	"strings"

	"superbravo/internal/dto"
	"superbravo/internal/model"
	"superbravo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	// Eliminar removes the product. Its historial is kept and no entry is
	// written for the deletion.
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo      repository.ProductoRepository
	historial HistorialService
}

func NewProductoService(repo repository.ProductoRepository, historial HistorialService) ProductoService {
	return &productoService{repo: repo, historial: historial}
}

func productoNoEncontrado(id uuid.UUID) *Error {
	return errNoEncontrado("Producto con ID %s no encontrado.", id)
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	codigo := strings.TrimSpace(req.Codigo)
	if nombre == "" || codigo == "" {
		return nil, errValidacion("El nombre y el código del producto son obligatorios.")
	}
	if req.Existencia < 0 {
		return nil, errValidacion("La existencia no puede ser negativa.")
	}

	p := &model.Producto{
		Nombre:       nombre,
		Codigo:       codigo,
		Descripcion:  req.Descripcion,
		Existencia:   req.Existencia,
		Costo:        req.Costo,
		Venta:        req.Venta,
		PrecioGestor: req.PrecioGestor,
		URL:          req.URL,
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		cantidad := p.Existencia
		return s.historial.RegistrarTx(ctx, tx, &model.Historial{
			ProductoID:   p.ID,
			Accion:       model.AccionCrear,
			Detalles:     fmt.Sprintf("Producto creado con existencia inicial de %d", p.Existencia),
			Cantidad:     &cantidad,
			Costo:        &p.Costo,
			Venta:        &p.Venta,
			PrecioGestor: &p.PrecioGestor,
		})
	})
	if err != nil {
		log.Error().Err(err).Str("producto", nombre).Msg("crear producto")
		return nil, asServiceError("crear producto", err, nil)
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asServiceError("obtener producto", err, productoNoEncontrado(id))
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	filter.Page, filter.Limit = normalizarPagina(filter.Page, filter.Limit, 20)

	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errAlmacenamiento("listar productos", err)
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPaginas(total, filter.Limit),
	}, nil
}

// Actualizar applies the non-nil fields of req. An ACTUALIZAR entry is
// written only when nombre, existencia, costo or venta actually changed.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	if req.Existencia != nil && *req.Existencia < 0 {
		return nil, errValidacion("La existencia no puede ser negativa.")
	}

	var actualizado *model.Producto
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx.WithContext(ctx), id)
		if err != nil {
			return err
		}

		cambios := cambiosProducto(p, req)
		aplicarCambios(p, req)

		if err := s.repo.UpdateTx(tx, p, columnasProducto(req)); err != nil {
			return err
		}
		actualizado = p

		if len(cambios) == 0 {
			return nil
		}
		return s.historial.RegistrarTx(ctx, tx, &model.Historial{
			ProductoID:   p.ID,
			Accion:       model.AccionActualizar,
			Detalles:     "Actualizaciones: " + strings.Join(cambios, ", "),
			Costo:        &p.Costo,
			Venta:        &p.Venta,
			PrecioGestor: &p.PrecioGestor,
		})
	})
	if err != nil {
		return nil, asServiceError("actualizar producto", err, productoNoEncontrado(id))
	}
	return productoToResponse(actualizado), nil
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return asServiceError("eliminar producto", err, productoNoEncontrado(id))
	}
	return nil
}

// cambiosProducto lists the tracked fields req would change on p, in the
// fixed order Nombre, Existencia, Costo, Venta.
func cambiosProducto(p *model.Producto, req dto.ActualizarProductoRequest) []string {
	var cambios []string
	if req.Nombre != nil && *req.Nombre != p.Nombre {
		cambios = append(cambios, fmt.Sprintf("Nombre: %s -> %s", p.Nombre, *req.Nombre))
	}
	if req.Existencia != nil && *req.Existencia != p.Existencia {
		cambios = append(cambios, fmt.Sprintf("Existencia: %d -> %d", p.Existencia, *req.Existencia))
	}
	if cambio, ok := cambioPrecio("Costo", p.Costo, req.Costo); ok {
		cambios = append(cambios, cambio)
	}
	if cambio, ok := cambioPrecio("Venta", p.Venta, req.Venta); ok {
		cambios = append(cambios, cambio)
	}
	return cambios
}

func cambioPrecio(campo string, antes decimal.Decimal, despues *decimal.Decimal) (string, bool) {
	if despues == nil || despues.Equal(antes) {
		return "", false
	}
	return fmt.Sprintf("%s: %s -> %s", campo, antes.String(), despues.String()), true
}

func aplicarCambios(p *model.Producto, req dto.ActualizarProductoRequest) {
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Codigo != nil {
		p.Codigo = *req.Codigo
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Existencia != nil {
		p.Existencia = *req.Existencia
	}
	if req.Costo != nil {
		p.Costo = *req.Costo
	}
	if req.Venta != nil {
		p.Venta = *req.Venta
	}
	if req.PrecioGestor != nil {
		p.PrecioGestor = *req.PrecioGestor
	}
	if req.URL != nil {
		p.URL = req.URL
	}
}

// columnasProducto names the columns req sets.
func columnasProducto(req dto.ActualizarProductoRequest) []string {
	var cols []string
	add := func(set bool, col string) {
		if set {
			cols = append(cols, col)
		}
	}
	add(req.Nombre != nil, "nombre")
	add(req.Codigo != nil, "codigo")
	add(req.Descripcion != nil, "descripcion")
	add(req.Existencia != nil, "existencia")
	add(req.Costo != nil, "costo")
	add(req.Venta != nil, "venta")
	add(req.PrecioGestor != nil, "precio_gestor")
	add(req.URL != nil, "url")
	return cols
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		Nombre:       p.Nombre,
		Codigo:       p.Codigo,
		Descripcion:  p.Descripcion,
		Existencia:   p.Existencia,
		Costo:        p.Costo,
		Venta:        p.Venta,
		PrecioGestor: p.PrecioGestor,
		URL:          p.URL,
	}
}
