package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"superbravo/internal/dto"
	"superbravo/internal/infra"
	"superbravo/internal/model"
	"superbravo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// reloj is a settable clock shared by the services under test.
type reloj struct {
	mu sync.Mutex
	t  time.Time
}

func (r *reloj) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *reloj) Set(t time.Time) {
	r.mu.Lock()
	r.t = t
	r.mu.Unlock()
}

type notificador struct {
	mu      sync.Mutex
	codigos []string
}

func (n *notificador) NotificarCodigoFactura(c string) {
	n.mu.Lock()
	n.codigos = append(n.codigos, c)
	n.mu.Unlock()
}

func (n *notificador) Codigos() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.codigos...)
}

type entorno struct {
	db        *gorm.DB
	reloj     *reloj
	notif     *notificador
	productos ProductoService
	ventas    VentaService
	reportes  ReporteService
	historial HistorialService
	sec       *SecuenciadorFactura
	prodRepo  repository.ProductoRepository
	ventaRepo repository.VentaRepository
}

var hoy = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	db, err := infra.NewDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	e := &entorno{db: db, reloj: &reloj{t: hoy}, notif: &notificador{}}
	e.prodRepo = repository.NewProductoRepository(db)
	e.ventaRepo = repository.NewVentaRepository(db)
	e.historial = NewHistorialService(repository.NewHistorialRepository(db))
	e.sec = NewSecuenciadorFactura(e.ventaRepo, time.UTC)
	e.productos = NewProductoService(e.prodRepo, e.historial)
	e.ventas = NewVentaService(e.ventaRepo, e.prodRepo, e.historial, e.sec, e.notif, nil,
		"Super Bravo", time.UTC, e.reloj.Now)
	e.reportes = NewReporteService(e.ventaRepo, time.UTC, e.reloj.Now)
	return e
}

func (e *entorno) crearProducto(t *testing.T, nombre string, existencia int, venta string) uuid.UUID {
	t.Helper()
	p, err := e.productos.Crear(context.Background(), dto.CrearProductoRequest{
		Nombre:       nombre,
		Codigo:       "C-" + nombre,
		Existencia:   existencia,
		Costo:        decimal.NewFromInt(1),
		Venta:        decimal.RequireFromString(venta),
		PrecioGestor: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	return uuid.MustParse(p.ID)
}

func (e *entorno) existencia(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := e.prodRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Existencia
}

func (e *entorno) contarVentas(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Venta{}).Count(&n).Error)
	return n
}

func (e *entorno) contarHistorial(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Historial{}).Where("producto_id = ?", id).Count(&n).Error)
	return n
}

func pedido(items ...dto.ItemVentaRequest) dto.RegistrarVentaRequest {
	return dto.RegistrarVentaRequest{
		Items:   items,
		Cliente: dto.ClienteRequest{Nombre: "María", Carnet: "90010112345", Direccion: "Calle 23"},
	}
}

func item(id uuid.UUID, cantidad int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{ProductoID: id.String(), Cantidad: cantidad}
}

func assertKind(t *testing.T, err error, kind string) {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se), "expected *service.Error, got %T: %v", err, err)
	assert.Equal(t, kind, se.Kind)
}
