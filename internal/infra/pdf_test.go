package infra

import (
	"bytes"
	"os"
	"testing"
	"time"

	"superbravo/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ventaDePrueba() *model.Venta {
	gestor := "Ana"
	return &model.Venta{
		ClienteNombre:    "José Pérez",
		ClienteCarnet:    "85010112345",
		ClienteDireccion: "Calle 5 #12",
		Gestor:           &gestor,
		DiaFactura:       "2024-05-01",
		NumeroFactura:    3,
		CodigoFactura:    "0003",
		PrecioTotal:      decimal.RequireFromString("31.50"),
		CreatedAt:        time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC),
		Items: []model.VentaItem{
			{Nombre: "Arroz 1kg con nombre muy largo", Codigo: "ARZ-001", Cantidad: 3, Venta: decimal.RequireFromString("7.50")},
			{Nombre: "Aceite", Codigo: "ACE", Cantidad: 1, Venta: decimal.RequireFromString("9.00")},
		},
	}
}

func TestWriteComprobantePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComprobantePDF(&buf, ventaDePrueba(), "Super Bravo", time.UTC))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestGenerateComprobantePDF(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateComprobantePDF(ventaDePrueba(), "Super Bravo", time.UTC, dir)
	require.NoError(t, err)
	assert.Contains(t, path, "comprobante_2024-05-01_0003.pdf")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestTruncar(t *testing.T) {
	assert.Equal(t, "Arroz", truncar("Arroz", 8))
	assert.Equal(t, "Arroz c.", truncar("Arroz con leche", 8))
	assert.Equal(t, "Año", truncar("Año", 3))
}
