// Package main implements the HTTP API server for the prompt library.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "github.com/dsjohal14/promptlib/internal/http"
	"github.com/dsjohal14/promptlib/internal/library"
	"github.com/dsjohal14/promptlib/internal/libs/config"
	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/ratelimit"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

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
	lib := library.New(store, metrics)

	// Create HTTP handler
	handler := apihttp.NewHandler(cfg, store, lib, metrics, logger)

	// Setup router
	r := setupRouter(handler, metrics, ratelimit.New(cfg.RateLimitEnabled))

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Warm the library so the first search does not pay for hydration
	go func() {
		if _, err := lib.Snapshot(ctx); err != nil {
			logger.Warn().Err(err).Msg("library warm-up failed")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("env", cfg.Env).
			Bool("rate_limit", cfg.RateLimitEnabled).
			Msg("starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

func setupRouter(h *apihttp.Handler, metrics *obs.Metrics, limiter *ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware)

	// Routes
	h.Routes(r, limiter)

	return r
}
