package service

import (
	"fmt"
	"time"
)

// Clock returns the current instant. Services take one so tests can pin
// "today".
type Clock func() time.Time

const formatoDia = "2006-01-02"

func diaClave(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(formatoDia)
}

func inicioDia(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func inicioMes(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

func inicioAnio(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.In(loc).Year(), time.January, 1, 0, 0, 0, 0, loc)
}

// formatoCodigo pads to four digits; numbers past 9999 keep all their digits.
func formatoCodigo(n int) string {
	return fmt.Sprintf("%04d", n)
}

func totalPaginas(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func normalizarPagina(page, limit, defLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defLimit
	}
	return page, limit
}
