// Package main implements the background worker that periodically scans the
// prompt library for underrated risk levels and untagged prompts.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dsjohal14/promptlib/internal/libs/config"
	"github.com/dsjohal14/promptlib/internal/libs/jobs"
	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/riskscan"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	store, err := db.Open(openCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer func() { _ = store.Close() }()

	metrics := obs.NewMetrics()
	queue := jobs.NewQueue()
	scanner := riskscan.New(store, metrics)

	srv := metricsServer(cfg.WorkerMetrics, metrics)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", srv.Addr).Msg("metrics server failed")
		}
	}()

	logger.Info().
		Dur("interval", cfg.WorkerInterval).
		Str("metrics_addr", cfg.WorkerMetrics).
		Msg("worker started")

	go schedule(ctx, queue, cfg.WorkerInterval, logger)
	process(ctx, queue, scanner, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info().Msg("worker stopped")
}

// metricsServer exposes the scanner counters for scraping.
func metricsServer(addr string, metrics *obs.Metrics) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// schedule enqueues a scan right away and then once per interval.
func schedule(ctx context.Context, queue *jobs.Queue, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job := queue.Enqueue(uuid.NewString())
		logger.Debug().Str("job_id", job.ID).Int("pending", queue.Pending()).Msg("scan scheduled")

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// process runs queued scans one at a time until ctx is done.
func process(ctx context.Context, queue *jobs.Queue, scanner *riskscan.Scanner, logger zerolog.Logger) {
	for {
		job, err := queue.Next(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		start := time.Now()
		rep, err := scanner.Run(ctx)
		queue.Finish(job.ID, err)
		if err != nil {
			logger.Error().Err(err).Str("job_id", job.ID).Msg("scan failed")
			continue
		}

		logger.Info().
			Str("job_id", job.ID).
			Int("scanned", rep.Scanned).
			Int("underrated", len(rep.Underrated)).
			Int("untagged", len(rep.Untagged)).
			Dur("took", time.Since(start)).
			Msg("scan finished")
	}
}
