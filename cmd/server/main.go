package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/studentdash/roster-backend/internal/config"
	"github.com/studentdash/roster-backend/internal/database"
	"github.com/studentdash/roster-backend/internal/handler"
	"github.com/studentdash/roster-backend/internal/logger"
	"github.com/studentdash/roster-backend/internal/repository"
	"github.com/studentdash/roster-backend/internal/router"
	"github.com/studentdash/roster-backend/internal/service"
	"github.com/studentdash/roster-backend/internal/validator"
	"github.com/studentdash/roster-backend/internal/worker"
	"github.com/studentdash/roster-backend/internal/workspace"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Dur("provider_latency", cfg.ProviderLatency).
		Msg("Starting Roster Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	accountRepo := repository.NewAccountRepository(pool)
	tokenStore := repository.NewTokenStore(rdb)

	// ─── Initialize Providers ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, accountRepo, tokenStore)
	directory := service.NewStudentDirectory(cfg.ProviderLatency, cfg.SeedSampleStudents)

	// ─── Workspaces ────────────────────────────────────────────────────
	registry := workspace.NewRegistry(authService, directory, log)
	defer registry.Close()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(),
		Roster: handler.NewRosterHandler(registry),
		Course: handler.NewCourseHandler(directory),
		WS:     handler.NewWSHandler(log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": handler.PingFunc(pool.Ping),
			"redis":    handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		}, registry.Len, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	reaperWorker := worker.NewReaperWorker(registry, cfg.WorkspaceIdle, log)
	revocationWorker := worker.NewRevocationWorker(tokenStore, registry, log)

	go reaperWorker.Start(workerCtx)
	go revocationWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r, authLimiter := router.SetupRouter(registry, handlers, cfg, log)
	defer authLimiter.Stop()

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers, then close every workspace so open
	// streams and pending refreshes end.
	workerCancel()
	registry.Close()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
