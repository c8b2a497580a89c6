package router

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"superbravo/internal/apierror"
	"superbravo/internal/config"
	"superbravo/internal/dto"
	"superbravo/internal/infra"
	"superbravo/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type app struct {
	t   *testing.T
	r   *gin.Engine
	hub *realtime.Hub
}

func nuevaApp(t *testing.T) *app {
	t.Helper()
	db, err := infra.NewDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Env:            "test",
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    "http://localhost:5173",
		Timezone:       "UTC",
		BusinessName:   "Super Bravo",
	}
	hub := realtime.NewHub()
	return &app{t: t, r: New(cfg, db, nil, hub), hub: hub}
}

func (a *app) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *app) crearProducto(nombre string, existencia int, venta string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/v1/productos", map[string]any{
		"nombre": nombre, "codigo": "C-" + nombre, "existencia": existencia,
		"costo": "1", "venta": venta, "precio_gestor": "2",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.ProductoResponse](a.t, w).ID
}

func venta(items ...map[string]any) map[string]any {
	return map[string]any{
		"items":   items,
		"cliente": map[string]any{"nombre": "María", "carnet": "90010112345", "direccion": "Calle 23"},
		"gestor":  "Ana",
	}
}

func linea(id string, cantidad int) map[string]any {
	return map[string]any{"producto_id": id, "cantidad": cantidad}
}

func TestVentas_RegisterListAndDelete(t *testing.T) {
	a := nuevaApp(t)
	arroz := a.crearProducto("Arroz", 5, "2.50")
	aceite := a.crearProducto("Aceite", 2, "4.00")

	w := a.do(http.MethodGet, "/v1/ventas/proximo-codigo-factura", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0001", decode[dto.ProximoCodigoFacturaResponse](t, w).ProximoCodigoFactura)

	w = a.do(http.MethodPost, "/v1/ventas", venta(linea(arroz, 3), linea(aceite, 2)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	creada := decode[dto.RegistrarVentaResponse](t, w)
	assert.Equal(t, "0001", creada.CodigoFactura)
	assert.Equal(t, "15.5", creada.PrecioTotal.String())

	w = a.do(http.MethodGet, "/v1/ventas/"+creada.VentaID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detalle := decode[dto.VentaResponse](t, w)
	assert.Equal(t, "Ana", detalle.Gestor)
	require.Len(t, detalle.Items, 2)
	assert.Equal(t, 2, detalle.Items[0].Existencia)

	w = a.do(http.MethodGet, "/v1/productos/"+aceite, nil)
	assert.Equal(t, 0, decode[dto.ProductoResponse](t, w).Existencia)

	w = a.do(http.MethodGet, "/v1/ventas?search=aceite", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[dto.VentaListResponse](t, w).Total)

	w = a.do(http.MethodGet, "/v1/ventas/vendidos-totales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cantidad_total_vendida":3`)

	w = a.do(http.MethodDelete, "/v1/ventas/"+creada.VentaID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = a.do(http.MethodDelete, "/v1/ventas/"+creada.VentaID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierror.KindNoEncontrado, decode[apierror.APIError](t, w).Kind)

	w = a.do(http.MethodGet, "/v1/ventas/proximo-codigo-factura", nil)
	assert.Equal(t, "0002", decode[dto.ProximoCodigoFacturaResponse](t, w).ProximoCodigoFactura)
}

func TestVentas_ErrorStatuses(t *testing.T) {
	a := nuevaApp(t)
	arroz := a.crearProducto("Arroz", 1, "2.50")

	cases := []struct {
		name   string
		body   any
		status int
		kind   string
	}{
		{"insufficient stock", venta(linea(arroz, 2)), http.StatusBadRequest, apierror.KindStockInsuficiente},
		{"unknown product", venta(linea(uuid.NewString(), 1)), http.StatusNotFound, apierror.KindNoEncontrado},
		{"no items", venta(), http.StatusBadRequest, apierror.KindValidacion},
		{"zero quantity", venta(linea(arroz, 0)), http.StatusBadRequest, apierror.KindValidacion},
		{"bad product id", venta(linea("abc", 1)), http.StatusBadRequest, apierror.KindValidacion},
		{"missing client", map[string]any{"items": []any{linea(arroz, 1)}}, http.StatusBadRequest, apierror.KindValidacion},
		{"malformed json", "not an object", http.StatusBadRequest, apierror.KindValidacion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/v1/ventas", tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.kind, decode[apierror.APIError](t, w).Kind)
		})
	}

	w := a.do(http.MethodGet, "/v1/productos/"+arroz, nil)
	assert.Equal(t, 1, decode[dto.ProductoResponse](t, w).Existencia)

	w = a.do(http.MethodGet, "/v1/ventas/no-es-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/v1/ventas?anio=2024&mes=13", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/v1/ventas/vendidos-por-fecha?fecha=ayer", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVentas_MetadatosKeepJSONTypes(t *testing.T) {
	a := nuevaApp(t)
	arroz := a.crearProducto("Arroz", 5, "2.50")

	body := venta(linea(arroz, 1))
	body["metadatos"] = map[string]any{"descuento": 5, "mensajero": "Juan", "urgente": true}
	w := a.do(http.MethodPost, "/v1/ventas", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[dto.RegistrarVentaResponse](t, w).VentaID

	w = a.do(http.MethodGet, "/v1/ventas/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"descuento": float64(5), "mensajero": "Juan", "urgente": true},
		decode[dto.VentaResponse](t, w).Metadatos)
}

func TestListados_RejectOutOfRangePaging(t *testing.T) {
	a := nuevaApp(t)
	id := a.crearProducto("Arroz", 5, "2.50")
	historial := "/v1/historial/producto/" + id

	for _, path := range []string{
		historial + "?page=0",
		historial + "?limit=1000",
		historial + "?limit=abc",
		"/v1/ventas?page=0",
		"/v1/ventas?limit=1000",
		"/v1/productos?limit=101",
	} {
		w := a.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, apierror.KindValidacion, decode[apierror.APIError](t, w).Kind, path)
	}

	w := a.do(http.MethodGet, historial+"?limit=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, decode[dto.HistorialListResponse](t, w).Limit)

	w = a.do(http.MethodGet, "/v1/ventas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8, decode[dto.VentaListResponse](t, w).Limit)
}

func TestReportes_EmptyAreArrays(t *testing.T) {
	a := nuevaApp(t)
	for _, path := range []string{
		"/v1/ventas/mensual",
		"/v1/ventas/anual",
		"/v1/ventas/mensual-por-gestor",
		"/v1/ventas/producto-top-diario",
		"/v1/ventas/vendidos-por-fecha",
		"/v1/ventas/vendidos-totales",
		"/v1/ventas/por-dia",
	} {
		w := a.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()), path)
	}
}

func TestProductos_UpdateWritesHistorial(t *testing.T) {
	a := nuevaApp(t)
	id := a.crearProducto("Arroz", 10, "2")

	w := a.do(http.MethodPut, "/v1/productos/"+id, map[string]any{"existencia": 7})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/v1/historial/producto/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	h := decode[dto.HistorialListResponse](t, w)
	require.Len(t, h.Data, 2)
	assert.Equal(t, 10, h.Limit)

	w = a.do(http.MethodDelete, "/v1/productos/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/v1/historial/producto/"+id+"?page=1&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[dto.HistorialListResponse](t, w).Total)

	w = a.do(http.MethodPut, "/v1/productos/"+id, map[string]any{"existencia": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(http.MethodPost, "/v1/productos", map[string]any{"codigo": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComprobante_ServesPDF(t *testing.T) {
	a := nuevaApp(t)
	arroz := a.crearProducto("Arroz", 5, "2.50")
	w := a.do(http.MethodPost, "/v1/ventas", venta(linea(arroz, 1)))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[dto.RegistrarVentaResponse](t, w).VentaID

	w = a.do(http.MethodGet, "/v1/ventas/"+id+"/comprobante", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = a.do(http.MethodGet, "/v1/ventas/"+uuid.NewString()+"/comprobante", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth_WithoutRedis(t *testing.T) {
	a := nuevaApp(t)
	w := a.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestEventos_StreamsNextCodeAfterSale(t *testing.T) {
	a := nuevaApp(t)
	arroz := a.crearProducto("Arroz", 5, "2.50")

	srv := httptest.NewServer(a.r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/ventas/eventos", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return a.hub.Suscriptores() == 1 }, 2*time.Second, 10*time.Millisecond)

	w := a.do(http.MethodPost, "/v1/ventas", venta(linea(arroz, 1)))
	require.Equal(t, http.StatusCreated, w.Code)

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		lines = append(lines, line)
		if strings.HasPrefix(line, "data:") {
			break
		}
	}
	assert.Contains(t, lines, "event:"+realtime.EventoCodigoFactura)
	assert.Contains(t, lines[len(lines)-1], `"proximoCodigoFactura":"0002"`)
}
