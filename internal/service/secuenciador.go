package service

import (
	"context"
	"time"

	"superbravo/internal/repository"

	"gorm.io/gorm"
)

// SecuenciadorFactura hands out the daily invoice numbers. Numbers start at 1
// each calendar day of loc and are never reused within that day, including
// numbers of deleted sales and of sales whose transaction rolled back after
// reserving (the rollback returns the number).
type SecuenciadorFactura struct {
	repo repository.VentaRepository
	loc  *time.Location
}

func NewSecuenciadorFactura(repo repository.VentaRepository, loc *time.Location) *SecuenciadorFactura {
	if loc == nil {
		loc = time.Local
	}
	return &SecuenciadorFactura{repo: repo, loc: loc}
}

// Siguiente reserves the next number for the day of fecha. tx must be the
// sale transaction.
func (s *SecuenciadorFactura) Siguiente(ctx context.Context, tx *gorm.DB, fecha time.Time) (int, string, error) {
	dia := s.Dia(fecha)
	n, err := s.repo.NextNumeroFactura(ctx, tx, dia, fecha)
	if err != nil {
		return 0, "", err
	}
	return n, formatoCodigo(n), nil
}

// Proximo previews the code the next sale of fecha's day would get. Nothing
// is reserved, so a concurrent sale may take it first.
func (s *SecuenciadorFactura) Proximo(ctx context.Context, fecha time.Time) (string, error) {
	ultimo, err := s.repo.UltimoNumeroFactura(ctx, s.Dia(fecha))
	if err != nil {
		return "", err
	}
	return formatoCodigo(ultimo + 1), nil
}

// Dia is the YYYY-MM-DD key of fecha in the shop's time zone.
func (s *SecuenciadorFactura) Dia(fecha time.Time) string {
	return diaClave(fecha, s.loc)
}
