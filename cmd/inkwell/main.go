// Package main is the entry point for the Inkwell document server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/autosave"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/content"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/router"
)

func main() {
	// Structured logger — outputs text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"autosave_interval", cfg.AutosaveInterval.String(),
		"max_versions", cfg.MaxVersions,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the document read cache. The cache is optional:
	// without it every read goes to PostgreSQL.
	var docCache *cache.DocumentCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, document cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		docCache = cache.NewDocumentCache(valkeyClient, cache.DefaultDocumentTTL)
	}

	// Document repository and rollback coordinator.
	svc := content.NewService(db, docCache)

	// Draft cache and autosave scheduler, with a background sweeper that
	// evicts idle draft buffers.
	sched := autosave.NewScheduler(svc, autosave.Config{
		Interval:    cfg.AutosaveInterval,
		MaxVersions: cfg.MaxVersions,
		MaxIdle:     cfg.DraftMaxIdle,
	})
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sched.RunSweeper(sweepCtx, cfg.DraftMaxIdle/4)

	// Create handler groups and wire up the router.
	r := router.New(handlers.NewDocuments(svc), handlers.NewAutosave(sched))

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
