package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"superbravo/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// rateLimiter is the per-IP table behind RateLimiter. Expired entries are
// purged on a timer so IPs that never come back do not pile up.
type rateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		entries: make(map[string]*rateEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// allow counts one request from ip and reports whether it is within limit.
// When it is not, the second value is how long until the window resets.
func (l *rateLimiter) allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	if e.count > l.limit {
		return false, e.windowEnd.Sub(now)
	}
	return true, 0
}

func (l *rateLimiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	return purged
}

const purgeInterval = 5 * time.Minute

func (l *rateLimiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for range ticker.C {
		if n := l.purge(); n > 0 {
			log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
		}
	}
}

// RateLimiter caps every client IP to limit requests per window. A limit of
// zero or less disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := newRateLimiter(limit, window)
	go l.purgeLoop()
	return l.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	ok, retry := l.allow(c.ClientIP())
	if !ok {
		secs := int(retry.Seconds())
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			apierror.New(apierror.KindLimite, "Demasiadas solicitudes. Intente nuevamente en un momento."))
		return
	}
	c.Next()
}
