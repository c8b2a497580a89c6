package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"superbravo/internal/config"
	"superbravo/internal/infra"
	"superbravo/internal/realtime"
	"superbravo/internal/repository"
	"superbravo/internal/router"
	"superbravo/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub()

	// Redis is optional: without it the node notifies its own SSE clients
	// and receipts are only rendered on demand.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without pub/sub and job queue")
			rdb = nil
		}
	}

	if rdb != nil {
		go realtime.Relay(ctx, rdb, hub)
		startWorkers(ctx, cfg, db, rdb)
	}

	r := router.New(cfg, db, rdb, hub)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: SSE streams stay open. Other routes are bounded by
		// the request timeout middleware.
		IdleTimeout: 60 * time.Second,
		// request contexts derive from ctx so cancel ends the SSE streams
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("superbravo listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

// startWorkers wires the receipt and email handlers (composition root) and
// launches the pool. Email jobs are only produced and consumed when SMTP is
// configured.
func startWorkers(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) {
	mailer := infra.NewMailer(cfg)
	ventaRepo := repository.NewVentaRepository(db)

	var emailDispatcher *worker.Dispatcher
	handlers := map[string]worker.JobHandler{}
	if mailer.Enabled() {
		emailDispatcher = worker.NewDispatcher(rdb)
		handlers[worker.QueueEmail] = worker.NewEmailWorker(mailer)
	}
	handlers[worker.QueueComprobante] = worker.NewComprobanteWorker(
		ventaRepo, emailDispatcher, cfg.PDFStoragePath, cfg.BusinessName, cfg.Location())

	worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
}
