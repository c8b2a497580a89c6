package handler

import (
	"context"
	"net/http"
	"time"

	"superbravo/internal/realtime"
	"superbravo/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// The database is required; Redis is optional and reported as "disabled"
// when not configured. Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}
		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		if rdb == nil {
			body["redis"] = "disabled"
		} else if rdb.Ping(ctx).Err() != nil {
			body["redis"] = "error"
			status = http.StatusServiceUnavailable
		} else {
			body["redis"] = "connected"
			if dlq, err := worker.DLQLengths(ctx, rdb, worker.QueueComprobante, worker.QueueEmail); err == nil {
				body["dlq"] = dlq
			}
		}
		if hub != nil {
			body["sse_clients"] = hub.Suscriptores()
		}

		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
