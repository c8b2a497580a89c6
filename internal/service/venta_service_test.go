package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"superbravo/internal/apierror"
	"superbravo/internal/dto"
	"superbravo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrarVenta_CodesIncreaseAndResetDaily(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	pan := e.crearProducto(t, "Pan", 100, "1.00")

	var codigos []string
	for i := 0; i < 3; i++ {
		resp, err := e.ventas.RegistrarVenta(ctx, pedido(item(pan, 1)))
		require.NoError(t, err)
		codigos = append(codigos, resp.CodigoFactura)
	}
	assert.Equal(t, []string{"0001", "0002", "0003"}, codigos)

	e.reloj.Set(hoy.Add(24 * time.Hour))
	resp, err := e.ventas.RegistrarVenta(ctx, pedido(item(pan, 1)))
	require.NoError(t, err)
	assert.Equal(t, "0001", resp.CodigoFactura)
}

func TestRegistrarVenta_EndToEnd(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Arroz", 5, "2.50")
	b := e.crearProducto(t, "Frijol", 2, "4.00")
	otro := e.crearProducto(t, "Sal", 10, "1.00")

	previa, err := e.ventas.RegistrarVenta(ctx, pedido(item(otro, 1)))
	require.NoError(t, err)
	require.Equal(t, "0001", previa.CodigoFactura)

	resp, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 3), item(b, 2)))
	require.NoError(t, err)

	assert.Equal(t, "0002", resp.CodigoFactura)
	assert.True(t, decimal.RequireFromString("15.50").Equal(resp.PrecioTotal))
	assert.Equal(t, 2, e.existencia(t, a))
	assert.Equal(t, 0, e.existencia(t, b))

	v, err := e.ventas.ObtenerVenta(ctx, uuid.MustParse(resp.VentaID))
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "Arroz", v.Items[0].Nombre)
	assert.Equal(t, 3, v.Items[0].Cantidad)
	assert.Equal(t, 2, v.Items[0].Existencia)
	assert.Equal(t, "Frijol", v.Items[1].Nombre)
	assert.Equal(t, 0, v.Items[1].Existencia)
	assert.Equal(t, "Ninguno", v.Gestor)
	assert.Equal(t, "María", v.Cliente.Nombre)

	h, err := e.historial.ListarPorProducto(ctx, a, 1, 10)
	require.NoError(t, err)
	require.Len(t, h.Data, 2)
	var detalles []string
	for _, it := range h.Data {
		detalles = append(detalles, it.Detalles)
	}
	assert.Contains(t, detalles, "Venta 0002: Existencia: 5 -> 2")
	assert.Contains(t, detalles, "Producto creado con existencia inicial de 5")

	assert.Equal(t, []string{"0002", "0003"}, e.notif.Codigos())
}

func TestRegistrarVenta_InsufficientStockChangesNothing(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "Aceite", 2, "3.00")

	_, err := e.ventas.RegistrarVenta(ctx, pedido(item(p, 10)))
	assertKind(t, err, apierror.KindStockInsuficiente)
	assert.Contains(t, err.Error(), "Aceite")

	assert.Equal(t, 2, e.existencia(t, p))
	assert.Zero(t, e.contarVentas(t))
	assert.EqualValues(t, 1, e.contarHistorial(t, p))
	assert.Empty(t, e.notif.Codigos())

	prox, err := e.ventas.ProximoCodigoFactura(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0001", prox.ProximoCodigoFactura)
}

func TestRegistrarVenta_FailureOnLaterItemRollsBackEarlierOnes(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Leche", 5, "1.00")
	b := e.crearProducto(t, "Queso", 1, "5.00")

	_, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 3), item(b, 2)))
	assertKind(t, err, apierror.KindStockInsuficiente)

	assert.Equal(t, 5, e.existencia(t, a))
	assert.Equal(t, 1, e.existencia(t, b))
	assert.EqualValues(t, 1, e.contarHistorial(t, a))

	resp, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 1)))
	require.NoError(t, err)
	assert.Equal(t, "0001", resp.CodigoFactura, "a rolled back sale must not consume a code")
}

func TestRegistrarVenta_UnknownProduct(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Leche", 5, "1.00")
	falta := uuid.New()

	_, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 1), item(falta, 1)))
	assertKind(t, err, apierror.KindNoEncontrado)
	assert.Contains(t, err.Error(), falta.String())
	assert.Equal(t, 5, e.existencia(t, a))
	assert.Zero(t, e.contarVentas(t))
}

func TestRegistrarVenta_Validation(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Leche", 5, "1.00")

	sinCarnet := pedido(item(a, 1))
	sinCarnet.Cliente.Carnet = "   "

	cases := map[string]dto.RegistrarVentaRequest{
		"sin items":        pedido(),
		"cantidad cero":    pedido(item(a, 0)),
		"id invalido":      pedido(dto.ItemVentaRequest{ProductoID: "x", Cantidad: 1}),
		"cliente vacio":    {Items: []dto.ItemVentaRequest{item(a, 1)}},
		"carnet en blanco": sinCarnet,
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.ventas.RegistrarVenta(ctx, req)
			assertKind(t, err, apierror.KindValidacion)
		})
	}
	assert.Equal(t, 5, e.existencia(t, a))
	assert.Zero(t, e.contarVentas(t))
}

func TestRegistrarVenta_GestorAndMetadatos(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Leche", 5, "1.00")

	ninguno := " ninguno "
	r := pedido(item(a, 1))
	r.Gestor = &ninguno
	resp, err := e.ventas.RegistrarVenta(ctx, r)
	require.NoError(t, err)

	var v model.Venta
	require.NoError(t, e.db.First(&v, "id = ?", resp.VentaID).Error)
	assert.Nil(t, v.Gestor)

	gestor := "  Pedro "
	r = pedido(item(a, 1))
	r.Gestor = &gestor
	r.Metadatos = map[string]any{"mensajero": "Juan", "descuento": 5, "urgente": true}
	resp, err = e.ventas.RegistrarVenta(ctx, r)
	require.NoError(t, err)

	got, err := e.ventas.ObtenerVenta(ctx, uuid.MustParse(resp.VentaID))
	require.NoError(t, err)
	assert.Equal(t, "Pedro", got.Gestor)
	assert.Equal(t, map[string]any{"mensajero": "Juan", "descuento": float64(5), "urgente": true}, got.Metadatos)
}

func TestNormalizarGestor_PlaceholderMeansNoAgent(t *testing.T) {
	assert.Nil(t, normalizarGestor(nil))
	assert.Nil(t, normalizarGestor(ptr("   ")))
	assert.Nil(t, normalizarGestor(ptr(model.GestorNinguno)))
	assert.Nil(t, normalizarGestor(ptr(" NINGUNO ")))
	assert.Equal(t, "Pedro", *normalizarGestor(ptr(" Pedro ")))

	assert.Equal(t, model.GestorNinguno, gestorOPlaceholder(nil))
	assert.Equal(t, "Ana", gestorOPlaceholder(ptr("Ana")))
}

func TestRegistrarVenta_SameProductTwice(t *testing.T) {
	e := nuevoEntorno(t)
	a := e.crearProducto(t, "Leche", 3, "1.00")

	_, err := e.ventas.RegistrarVenta(context.Background(), pedido(item(a, 2), item(a, 2)))
	assertKind(t, err, apierror.KindStockInsuficiente)
	assert.Equal(t, 3, e.existencia(t, a))
}

func TestRegistrarVenta_SameProductTwiceSnapshotsAndHistorial(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Leche", 5, "1.00")

	resp, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 2), item(a, 2)))
	require.NoError(t, err)
	assert.Equal(t, 1, e.existencia(t, a))

	v, err := e.ventas.ObtenerVenta(ctx, uuid.MustParse(resp.VentaID))
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	assert.Equal(t, 3, v.Items[0].Existencia)
	assert.Equal(t, 1, v.Items[1].Existencia)

	h, err := e.historial.ListarPorProducto(ctx, a, 1, 10)
	require.NoError(t, err)
	var ventas []string
	for _, it := range h.Data {
		if strings.HasPrefix(it.Detalles, "Venta ") {
			ventas = append(ventas, it.Detalles)
		}
	}
	assert.Equal(t, []string{
		"Venta 0001: Existencia: 3 -> 1",
		"Venta 0001: Existencia: 5 -> 3",
	}, ventas)
}

func TestRegistrarVenta_ItemsKeepInputOrder(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Arroz", 10, "1.00")
	b := e.crearProducto(t, "Frijol", 10, "1.00")
	primero, segundo := a, b
	if bytes.Compare(a[:], b[:]) < 0 {
		primero, segundo = b, a
	}

	resp, err := e.ventas.RegistrarVenta(ctx, pedido(item(primero, 1), item(segundo, 2), item(primero, 3)))
	require.NoError(t, err)

	v, err := e.ventas.ObtenerVenta(ctx, uuid.MustParse(resp.VentaID))
	require.NoError(t, err)
	require.Len(t, v.Items, 3)
	assert.Equal(t, primero.String(), v.Items[0].ProductoID)
	assert.Equal(t, 9, v.Items[0].Existencia)
	assert.Equal(t, segundo.String(), v.Items[1].ProductoID)
	assert.Equal(t, 8, v.Items[1].Existencia)
	assert.Equal(t, 6, v.Items[2].Existencia)
}

func TestTotalesPorProducto_GroupsAndSortsByID(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	got := totalesPorProducto([]lineaVenta{
		{productoID: c, cantidad: 1},
		{productoID: a, cantidad: 2},
		{productoID: c, cantidad: 4},
		{productoID: b, cantidad: 1},
	})
	assert.Equal(t, []lineaVenta{
		{productoID: a, cantidad: 2},
		{productoID: b, cantidad: 1},
		{productoID: c, cantidad: 5},
	}, got)
}

func TestRegistrarVenta_CodeWidensPast9999(t *testing.T) {
	e := nuevoEntorno(t)
	a := e.crearProducto(t, "Leche", 3, "1.00")
	require.NoError(t, e.db.Create(&model.SecuenciaFactura{Dia: "2024-05-15", Ultimo: 9999}).Error)

	resp, err := e.ventas.RegistrarVenta(context.Background(), pedido(item(a, 1)))
	require.NoError(t, err)
	assert.Equal(t, "10000", resp.CodigoFactura)
}

func TestEliminarVenta(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Leche", 5, "1.00")

	_, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 1)))
	require.NoError(t, err)
	segunda, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 1)))
	require.NoError(t, err)
	id := uuid.MustParse(segunda.VentaID)

	require.NoError(t, e.ventas.EliminarVenta(ctx, id))
	assert.EqualValues(t, 1, e.contarVentas(t))
	assert.Equal(t, 3, e.existencia(t, a), "deleting a sale does not restore stock")

	assertKind(t, e.ventas.EliminarVenta(ctx, id), apierror.KindNoEncontrado)
	_, err = e.ventas.ObtenerVenta(ctx, id)
	assertKind(t, err, apierror.KindNoEncontrado)

	tercera, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 1)))
	require.NoError(t, err)
	assert.Equal(t, "0003", tercera.CodigoFactura, "codes of deleted sales are not reissued")
}

func TestRegistrarVenta_ConcurrentSalesNeverOversell(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Leche", 5, "1.00")

	const n = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		codigos = map[string]bool{}
		fallos  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 1)))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.Equal(t, apierror.KindStockInsuficiente, KindOf(err))
				fallos++
				return
			}
			assert.False(t, codigos[resp.CodigoFactura], "duplicate code %s", resp.CodigoFactura)
			codigos[resp.CodigoFactura] = true
		}()
	}
	wg.Wait()

	assert.Len(t, codigos, 5)
	assert.Equal(t, n-5, fallos)
	assert.Equal(t, 0, e.existencia(t, a))
	for _, c := range []string{"0001", "0002", "0003", "0004", "0005"} {
		assert.True(t, codigos[c], "missing code %s", c)
	}
}

func TestEscribirComprobante(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "Leche", 5, "1.00")
	resp, err := e.ventas.RegistrarVenta(ctx, pedido(item(a, 2)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.ventas.EscribirComprobante(ctx, uuid.MustParse(resp.VentaID), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assertKind(t, e.ventas.EscribirComprobante(ctx, uuid.New(), &buf), apierror.KindNoEncontrado)
}
