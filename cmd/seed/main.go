// cmd/seed/main.go — Carga productos de demo.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"superbravo/internal/config"
	"superbravo/internal/dto"
	"superbravo/internal/infra"
	"superbravo/internal/repository"
	"superbravo/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type demo struct {
	nombre, codigo    string
	existencia        int
	costo, venta, pgs string
}

var productos = []demo{
	{"Arroz 1kg", "ARR-001", 120, "0.80", "1.20", "1.05"},
	{"Frijoles negros 1kg", "FRI-001", 80, "1.10", "1.75", "1.50"},
	{"Aceite vegetal 1L", "ACE-001", 60, "1.90", "2.80", "2.50"},
	{"Azúcar refino 1kg", "AZU-001", 90, "0.70", "1.10", "0.95"},
	{"Café molido 250g", "CAF-001", 40, "2.20", "3.50", "3.10"},
	{"Pasta espagueti 500g", "PAS-001", 100, "0.60", "0.95", "0.85"},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	repo := repository.NewProductoRepository(db)
	historial := service.NewHistorialService(repository.NewHistorialRepository(db))
	svc := service.NewProductoService(repo, historial)

	ctx := context.Background()
	existentes, err := svc.Listar(ctx, dto.ProductoFilter{Page: 1, Limit: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("listar productos")
	}
	if existentes.Total > 0 {
		log.Info().Int64("productos", existentes.Total).Msg("catalog already seeded, nothing to do")
		return
	}

	for _, p := range productos {
		creado, err := svc.Crear(ctx, dto.CrearProductoRequest{
			Nombre:       p.nombre,
			Codigo:       p.codigo,
			Existencia:   p.existencia,
			Costo:        decimal.RequireFromString(p.costo),
			Venta:        decimal.RequireFromString(p.venta),
			PrecioGestor: decimal.RequireFromString(p.pgs),
		})
		if err != nil {
			log.Fatal().Err(err).Str("producto", p.nombre).Msg("crear producto")
		}
		log.Info().Str("id", creado.ID).Str("producto", creado.Nombre).Msg("producto creado")
	}
}
