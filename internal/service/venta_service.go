package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"superbravo/internal/apierror"
	"superbravo/internal/dto"
	"superbravo/internal/infra"
	"superbravo/internal/model"
	"superbravo/internal/realtime"
	"superbravo/internal/repository"
	"superbravo/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComprobanteDispatcher queues receipt rendering for a committed sale.
type ComprobanteDispatcher interface {
	EnqueueComprobante(ctx context.Context, payload worker.ComprobanteJobPayload) error
}

type VentaService interface {
	RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.RegistrarVentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	// EliminarVenta hard-deletes the sale. Stock is not restored and its
	// invoice code is not handed out again.
	EliminarVenta(ctx context.Context, id uuid.UUID) error
	ProximoCodigoFactura(ctx context.Context) (*dto.ProximoCodigoFacturaResponse, error)
	EscribirComprobante(ctx context.Context, id uuid.UUID, w io.Writer) error
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	historial    HistorialService
	secuenciador *SecuenciadorFactura
	notifier     realtime.Notifier
	dispatcher   ComprobanteDispatcher // nil when Redis is not configured
	negocio      string
	loc          *time.Location
	now          Clock
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	historial HistorialService,
	secuenciador *SecuenciadorFactura,
	notifier realtime.Notifier,
	dispatcher ComprobanteDispatcher,
	negocio string,
	loc *time.Location,
	now Clock,
) VentaService {
	if notifier == nil {
		notifier = realtime.Noop{}
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		historial:    historial,
		secuenciador: secuenciador,
		notifier:     notifier,
		dispatcher:   dispatcher,
		negocio:      negocio,
		loc:          loc,
		now:          now,
	}
}

type lineaVenta struct {
	productoID uuid.UUID
	cantidad   int
}

// validarVenta checks the request shape. Nothing is read or written.
func validarVenta(req dto.RegistrarVentaRequest) ([]lineaVenta, error) {
	if len(req.Items) == 0 {
		return nil, errValidacion("No hay productos en la venta.")
	}
	if strings.TrimSpace(req.Cliente.Nombre) == "" ||
		strings.TrimSpace(req.Cliente.Carnet) == "" ||
		strings.TrimSpace(req.Cliente.Direccion) == "" {
		return nil, errValidacion("Los datos del cliente están incompletos.")
	}

	lineas := make([]lineaVenta, 0, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, errValidacion("producto_id inválido en la posición %d.", i+1)
		}
		if item.Cantidad < 1 {
			return nil, errValidacion("La cantidad del producto %s debe ser al menos 1.", item.ProductoID)
		}
		lineas = append(lineas, lineaVenta{productoID: id, cantidad: item.Cantidad})
	}
	return lineas, nil
}

// totalesPorProducto sums the quantities of lines naming the same product and
// sorts the result by id. Concurrent sales then lock product rows in the
// same order.
func totalesPorProducto(lineas []lineaVenta) []lineaVenta {
	totales := make(map[uuid.UUID]int, len(lineas))
	for _, l := range lineas {
		totales[l.productoID] += l.cantidad
	}
	out := make([]lineaVenta, 0, len(totales))
	for id, cantidad := range totales {
		out = append(out, lineaVenta{productoID: id, cantidad: cantidad})
	}
	slices.SortFunc(out, func(a, b lineaVenta) int {
		return bytes.Compare(a.productoID[:], b.productoID[:])
	})
	return out
}

// normalizarGestor maps blank and the legacy "Ninguno" placeholder to nil.
func normalizarGestor(g *string) *string {
	if g == nil {
		return nil
	}
	v := strings.TrimSpace(*g)
	if v == "" || strings.EqualFold(v, model.GestorNinguno) {
		return nil
	}
	return &v
}

func textoOpcional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// One transaction:
//   1. per product, in ascending id order: conditional decrement of the
//      summed quantity, then re-read; item snapshots keep input order
//   2. reserve the day's invoice number
//   3. insert venta + items
//   4. one ACTUALIZAR historial entry per line
// Any failure rolls every step back, including the invoice number.
// After commit: notify the next code and queue the receipt, both best-effort.

func (s *ventaService) RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.RegistrarVentaResponse, error) {
	lineas, err := validarVenta(req)
	if err != nil {
		return nil, err
	}

	ahora := s.now()
	venta := model.Venta{
		ClienteNombre:    strings.TrimSpace(req.Cliente.Nombre),
		ClienteCarnet:    strings.TrimSpace(req.Cliente.Carnet),
		ClienteDireccion: strings.TrimSpace(req.Cliente.Direccion),
		ClienteEmail:     textoOpcional(req.Cliente.Email),
		Gestor:           normalizarGestor(req.Gestor),
		DiaFactura:       s.secuenciador.Dia(ahora),
		Metadatos:        req.Metadatos,
		CreatedAt:        ahora.UTC(),
	}
	if len(venta.Metadatos) == 0 {
		venta.Metadatos = nil
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		productos := make(map[uuid.UUID]*model.Producto, len(lineas))
		existencia := make(map[uuid.UUID]int, len(lineas))
		for _, t := range totalesPorProducto(lineas) {
			p, err := s.descontar(tx, t)
			if err != nil {
				return err
			}
			productos[p.ID] = p
			existencia[p.ID] = p.Existencia + t.cantidad
		}

		total := decimal.Zero
		for i, l := range lineas {
			p := productos[l.productoID]
			existencia[l.productoID] -= l.cantidad
			item := model.VentaItem{
				Posicion:     i,
				ProductoID:   p.ID,
				Nombre:       p.Nombre,
				Codigo:       p.Codigo,
				Existencia:   existencia[l.productoID],
				Costo:        p.Costo,
				Venta:        p.Venta,
				PrecioGestor: p.PrecioGestor,
				Cantidad:     l.cantidad,
			}
			total = total.Add(item.Subtotal())
			venta.Items = append(venta.Items, item)
		}
		venta.PrecioTotal = total

		numero, codigo, err := s.secuenciador.Siguiente(ctx, tx, ahora)
		if err != nil {
			return err
		}
		venta.NumeroFactura = numero
		venta.CodigoFactura = codigo

		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		for i := range venta.Items {
			item := &venta.Items[i]
			cantidad := item.Cantidad
			if err := s.historial.RegistrarTx(ctx, tx, &model.Historial{
				ProductoID: item.ProductoID,
				Accion:     model.AccionActualizar,
				Detalles: fmt.Sprintf("Venta %s: Existencia: %d -> %d",
					codigo, item.Existencia+item.Cantidad, item.Existencia),
				Cantidad:     &cantidad,
				Costo:        &item.Costo,
				Venta:        &item.Venta,
				PrecioGestor: &item.PrecioGestor,
				CreatedAt:    venta.CreatedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		out := asServiceError("registrar venta", txErr, nil)
		if KindOf(out) == apierror.KindAlmacenamiento {
			log.Error().Err(txErr).Msg("registrar venta: storage failure")
		}
		return nil, out
	}

	log.Info().
		Str("codigo", venta.CodigoFactura).
		Str("dia", venta.DiaFactura).
		Str("total", venta.PrecioTotal.StringFixed(2)).
		Int("items", len(venta.Items)).
		Msg("venta registrada")

	s.notifier.NotificarCodigoFactura(formatoCodigo(venta.NumeroFactura + 1))
	s.encolarComprobante(ctx, venta.ID)

	return &dto.RegistrarVentaResponse{
		CodigoFactura: venta.CodigoFactura,
		VentaID:       venta.ID.String(),
		PrecioTotal:   venta.PrecioTotal,
	}, nil
}

// descontar takes l.cantidad units out of the product and returns the row as
// it is after the decrement.
func (s *ventaService) descontar(tx *gorm.DB, l lineaVenta) (*model.Producto, error) {
	err := s.productoRepo.DescontarExistenciaTx(tx, l.productoID, l.cantidad)
	if errors.Is(err, repository.ErrStockInsuficiente) {
		// zero rows matched: either missing or short on stock
		p, ferr := s.productoRepo.FindByIDTx(tx, l.productoID)
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, productoNoEncontrado(l.productoID)
		}
		if ferr != nil {
			return nil, ferr
		}
		return nil, errStock(p.Nombre)
	}
	if err != nil {
		return nil, err
	}
	return s.productoRepo.FindByIDTx(tx, l.productoID)
}

func (s *ventaService) encolarComprobante(ctx context.Context, ventaID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.dispatcher.EnqueueComprobante(ctx, worker.ComprobanteJobPayload{VentaID: ventaID.String()}); err != nil {
			log.Warn().Err(err).Str("venta_id", ventaID.String()).Msg("failed to enqueue comprobante")
		}
	}()
}

func ventaNoEncontrada() *Error { return errNoEncontrado("Venta no encontrada") }

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asServiceError("obtener venta", err, ventaNoEncontrada())
	}
	resp := ventaToResponse(v, s.loc)
	return &resp, nil
}

func (s *ventaService) EliminarVenta(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return asServiceError("eliminar venta", err, ventaNoEncontrada())
	}
	log.Info().Str("venta_id", id.String()).Msg("venta eliminada")
	return nil
}

func (s *ventaService) ProximoCodigoFactura(ctx context.Context) (*dto.ProximoCodigoFacturaResponse, error) {
	codigo, err := s.secuenciador.Proximo(ctx, s.now())
	if err != nil {
		return nil, errAlmacenamiento("proximo codigo de factura", err)
	}
	return &dto.ProximoCodigoFacturaResponse{ProximoCodigoFactura: codigo}, nil
}

func (s *ventaService) EscribirComprobante(ctx context.Context, id uuid.UUID, w io.Writer) error {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return asServiceError("obtener venta", err, ventaNoEncontrada())
	}
	if err := infra.WriteComprobantePDF(w, v, s.negocio, s.loc); err != nil {
		return errAlmacenamiento("generar comprobante", err)
	}
	return nil
}

func gestorOPlaceholder(g *string) string {
	if g == nil {
		return model.GestorNinguno
	}
	return *g
}

func ventaToResponse(v *model.Venta, loc *time.Location) dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID:   item.ProductoID.String(),
			Nombre:       item.Nombre,
			Codigo:       item.Codigo,
			Cantidad:     item.Cantidad,
			Existencia:   item.Existencia,
			Costo:        item.Costo,
			Venta:        item.Venta,
			PrecioGestor: item.PrecioGestor,
			Subtotal:     item.Subtotal(),
		})
	}
	return dto.VentaResponse{
		ID:            v.ID.String(),
		CodigoFactura: v.CodigoFactura,
		Cliente: dto.ClienteResponse{
			Nombre:    v.ClienteNombre,
			Carnet:    v.ClienteCarnet,
			Direccion: v.ClienteDireccion,
			Email:     v.ClienteEmail,
		},
		Gestor:      gestorOPlaceholder(v.Gestor),
		Items:       items,
		PrecioTotal: v.PrecioTotal,
		Metadatos:   v.Metadatos,
		Fecha:       v.CreatedAt.In(loc).Format(time.RFC3339),
	}
}
