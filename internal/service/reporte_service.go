package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"superbravo/internal/dto"
	"superbravo/internal/model"
	"superbravo/internal/repository"

	"github.com/shopspring/decimal"
)

const ventasLimitDefault = 8

// ReporteService answers the read-only sales queries. Empty ranges give empty
// slices, never errors. Reads take no locks and may miss a sale that is
// committing at the same moment.
type ReporteService interface {
	ListarVentas(ctx context.Context, f dto.VentaFilter) (*dto.VentaListResponse, error)
	// VentasPorDia lists a whole day without pagination. Without a complete
	// dia/mes/anio it lists every sale.
	VentasPorDia(ctx context.Context, f dto.VentaFilter) ([]dto.VentaResponse, error)
	VentasMensuales(ctx context.Context) ([]dto.VentaDiaTotal, error)
	VentasAnuales(ctx context.Context) ([]dto.VentaMesTotal, error)
	VentasMensualesPorGestor(ctx context.Context) ([]dto.GestorTopDia, error)
	ProductoTopDiario(ctx context.Context) ([]dto.ProductoTopDia, error)
	// VendidosPorFecha sums units per product for one day; fecha is
	// YYYY-MM-DD, empty means today.
	VendidosPorFecha(ctx context.Context, fecha string) ([]dto.ProductoVendido, error)
	VendidosTotales(ctx context.Context) ([]dto.ProductoVendidoTotal, error)
}

type reporteService struct {
	repo repository.VentaRepository
	loc  *time.Location
	now  Clock
}

func NewReporteService(repo repository.VentaRepository, loc *time.Location, now Clock) ReporteService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &reporteService{repo: repo, loc: loc, now: now}
}

// ventana resolves the filter to [desde, hasta): a year, a month of a year or
// a single day. Without anio there is no window.
func (s *reporteService) ventana(f dto.VentaFilter) (*time.Time, *time.Time, error) {
	if f.Anio == 0 {
		return nil, nil, nil
	}
	if f.Mes < 0 || f.Mes > 12 || f.Dia < 0 || f.Dia > 31 || (f.Dia > 0 && f.Mes == 0) {
		return nil, nil, errValidacion("Fecha inválida.")
	}

	var desde, hasta time.Time
	switch {
	case f.Dia > 0:
		desde = time.Date(f.Anio, time.Month(f.Mes), f.Dia, 0, 0, 0, 0, s.loc)
		if desde.Day() != f.Dia {
			return nil, nil, errValidacion("Fecha inválida.")
		}
		hasta = desde.AddDate(0, 0, 1)
	case f.Mes > 0:
		desde = time.Date(f.Anio, time.Month(f.Mes), 1, 0, 0, 0, 0, s.loc)
		hasta = desde.AddDate(0, 1, 0)
	default:
		desde = time.Date(f.Anio, time.January, 1, 0, 0, 0, 0, s.loc)
		hasta = desde.AddDate(1, 0, 0)
	}
	return &desde, &hasta, nil
}

func (s *reporteService) ListarVentas(ctx context.Context, f dto.VentaFilter) (*dto.VentaListResponse, error) {
	desde, hasta, err := s.ventana(f)
	if err != nil {
		return nil, err
	}
	page, limit := normalizarPagina(f.Page, f.Limit, ventasLimitDefault)

	ventas, total, err := s.repo.List(ctx, repository.VentaQuery{
		Desde:  desde,
		Hasta:  hasta,
		Search: strings.TrimSpace(f.Search),
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, errAlmacenamiento("listar ventas", err)
	}
	return &dto.VentaListResponse{
		Data:       s.aRespuestas(ventas),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPaginas(total, limit),
	}, nil
}

func (s *reporteService) VentasPorDia(ctx context.Context, f dto.VentaFilter) ([]dto.VentaResponse, error) {
	q := repository.VentaQuery{}
	if f.Dia > 0 && f.Mes > 0 && f.Anio > 0 {
		desde, hasta, err := s.ventana(dto.VentaFilter{Dia: f.Dia, Mes: f.Mes, Anio: f.Anio})
		if err != nil {
			return nil, err
		}
		q.Desde, q.Hasta = desde, hasta
	}
	ventas, _, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, errAlmacenamiento("listar ventas del dia", err)
	}
	return s.aRespuestas(ventas), nil
}

func (s *reporteService) aRespuestas(ventas []model.Venta) []dto.VentaResponse {
	out := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, ventaToResponse(&ventas[i], s.loc))
	}
	return out
}

// rango loads [desde, hasta) oldest first; every reduction below depends on
// that order for its tie-break.
func (s *reporteService) rango(ctx context.Context, desde, hasta time.Time, op string) ([]model.Venta, error) {
	ventas, err := s.repo.ListRango(ctx, desde, hasta)
	if err != nil {
		return nil, errAlmacenamiento(op, err)
	}
	return ventas, nil
}

func (s *reporteService) VentasMensuales(ctx context.Context) ([]dto.VentaDiaTotal, error) {
	desde := inicioMes(s.now(), s.loc)
	ventas, err := s.rango(ctx, desde, desde.AddDate(0, 1, 0), "ventas mensuales")
	if err != nil {
		return nil, err
	}

	totales := map[int]decimal.Decimal{}
	for _, v := range ventas {
		dia := v.CreatedAt.In(s.loc).Day()
		totales[dia] = totales[dia].Add(v.PrecioTotal)
	}
	out := make([]dto.VentaDiaTotal, 0, len(totales))
	for dia, total := range totales {
		out = append(out, dto.VentaDiaTotal{Dia: dia, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dia < out[j].Dia })
	return out, nil
}

func (s *reporteService) VentasAnuales(ctx context.Context) ([]dto.VentaMesTotal, error) {
	desde := inicioAnio(s.now(), s.loc)
	ventas, err := s.rango(ctx, desde, desde.AddDate(1, 0, 0), "ventas anuales")
	if err != nil {
		return nil, err
	}

	totales := map[int]decimal.Decimal{}
	for _, v := range ventas {
		mes := int(v.CreatedAt.In(s.loc).Month())
		totales[mes] = totales[mes].Add(v.PrecioTotal)
	}
	out := make([]dto.VentaMesTotal, 0, len(totales))
	for mes, total := range totales {
		out = append(out, dto.VentaMesTotal{Mes: mes, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mes < out[j].Mes })
	return out, nil
}

// acumulado is one (day, key) group. orden is the position of the group's
// first sale in chronological order and breaks ties.
type acumulado struct {
	dia   int
	clave string
	total decimal.Decimal
	orden int
}

type claveDia struct {
	dia   int
	clave string
}

// agrupador sums totals per (day, key), remembering first-appearance order.
type agrupador struct {
	index  map[claveDia]*acumulado
	grupos []*acumulado
}

func nuevoAgrupador() *agrupador {
	return &agrupador{index: map[claveDia]*acumulado{}}
}

func (a *agrupador) sumar(dia int, clave string, v decimal.Decimal) {
	k := claveDia{dia, clave}
	g, ok := a.index[k]
	if !ok {
		g = &acumulado{dia: dia, clave: clave, orden: len(a.grupos)}
		a.index[k] = g
		a.grupos = append(a.grupos, g)
	}
	g.total = g.total.Add(v)
}

// topPorDia keeps, for each day, the group with the highest total. On equal
// totals the group that appeared first wins. Result is ordered by day.
func (a *agrupador) topPorDia() []*acumulado {
	mejores := map[int]*acumulado{}
	for _, g := range a.grupos {
		m, ok := mejores[g.dia]
		if !ok {
			mejores[g.dia] = g
			continue
		}
		if c := g.total.Cmp(m.total); c > 0 || (c == 0 && g.orden < m.orden) {
			mejores[g.dia] = g
		}
	}
	out := make([]*acumulado, 0, len(mejores))
	for _, g := range mejores {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].dia < out[j].dia })
	return out
}

func (s *reporteService) VentasMensualesPorGestor(ctx context.Context) ([]dto.GestorTopDia, error) {
	desde := inicioMes(s.now(), s.loc)
	ventas, err := s.rango(ctx, desde, desde.AddDate(0, 1, 0), "ventas mensuales por gestor")
	if err != nil {
		return nil, err
	}

	grupos := nuevoAgrupador()
	for _, v := range ventas {
		// sales without agent, including legacy rows stored as "Ninguno"
		if v.Gestor == nil || strings.EqualFold(strings.TrimSpace(*v.Gestor), model.GestorNinguno) {
			continue
		}
		grupos.sumar(v.CreatedAt.In(s.loc).Day(), *v.Gestor, v.PrecioTotal)
	}

	top := grupos.topPorDia()
	out := make([]dto.GestorTopDia, 0, len(top))
	for _, g := range top {
		out = append(out, dto.GestorTopDia{Dia: g.dia, Gestor: g.clave, Total: g.total})
	}
	return out, nil
}

func (s *reporteService) ProductoTopDiario(ctx context.Context) ([]dto.ProductoTopDia, error) {
	desde := inicioMes(s.now(), s.loc)
	ventas, err := s.rango(ctx, desde, desde.AddDate(0, 1, 0), "producto top diario")
	if err != nil {
		return nil, err
	}

	grupos := nuevoAgrupador()
	for _, v := range ventas {
		dia := v.CreatedAt.In(s.loc).Day()
		for _, item := range v.Items {
			grupos.sumar(dia, item.Nombre, decimal.NewFromInt(int64(item.Cantidad)))
		}
	}

	top := grupos.topPorDia()
	out := make([]dto.ProductoTopDia, 0, len(top))
	for _, g := range top {
		out = append(out, dto.ProductoTopDia{Dia: g.dia, Producto: g.clave, Total: int(g.total.IntPart())})
	}
	return out, nil
}

func (s *reporteService) VendidosPorFecha(ctx context.Context, fecha string) ([]dto.ProductoVendido, error) {
	base := s.now()
	if fecha = strings.TrimSpace(fecha); fecha != "" {
		t, err := time.ParseInLocation(formatoDia, fecha, s.loc)
		if err != nil {
			return nil, errValidacion("Fecha inválida, se espera AAAA-MM-DD.")
		}
		base = t
	}
	desde := inicioDia(base, s.loc)
	hasta := desde.AddDate(0, 0, 1)

	rows, err := s.repo.Vendidos(ctx, &desde, &hasta)
	if err != nil {
		return nil, errAlmacenamiento("vendidos por fecha", err)
	}
	out := make([]dto.ProductoVendido, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProductoVendido{Nombre: r.Nombre, Total: r.Total})
	}
	return out, nil
}

func (s *reporteService) VendidosTotales(ctx context.Context) ([]dto.ProductoVendidoTotal, error) {
	rows, err := s.repo.Vendidos(ctx, nil, nil)
	if err != nil {
		return nil, errAlmacenamiento("vendidos totales", err)
	}
	out := make([]dto.ProductoVendidoTotal, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProductoVendidoTotal{Nombre: r.Nombre, CantidadTotalVendida: r.Total})
	}
	return out, nil
}
