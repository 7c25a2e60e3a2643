// Package main is the entry point for the courseforge content API server.
// It loads configuration, connects to the chosen store backend, sets up
// routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courseforge/internal/cache"
	"courseforge/internal/config"
	"courseforge/internal/content"
	"courseforge/internal/database"
	"courseforge/internal/handlers"
	"courseforge/internal/i18n"
	"courseforge/internal/middleware"
	"courseforge/internal/plugins"
	"courseforge/internal/router"
	"courseforge/internal/store"
)

func main() {
	// Structured logger — text output with debug level; swap the handler
	// for JSON in log-aggregated deployments.
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
		"store", cfg.StoreDriver,
	)

	// Open the content store for the configured backend.
	var contentStore store.Store
	switch cfg.StoreDriver {
	case "postgres":
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
		contentStore = store.NewPostgres(db)

	case "mongo":
		mongoStore, err := store.ConnectMongo(context.Background(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			slog.Error("failed to connect to mongodb", "error", err)
			os.Exit(1)
		}
		contentStore = mongoStore

	case "memory":
		slog.Warn("using the in-memory store — data is lost on restart")
		contentStore = store.NewMemory()
	}

	// Localized placeholder catalog for generated nodes.
	catalog, err := i18n.Load()
	if err != nil {
		slog.Error("failed to load locales", "error", err)
		os.Exit(1)
	}

	// Optional Valkey-backed tree cache.
	var treeCache content.Cache
	if cfg.CacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		treeCache = cache.NewTreeCache(valkeyClient, cache.DefaultTreeTTL)
	} else {
		slog.Info("tree cache disabled — VALKEY_HOST not set")
	}

	// Plugin registry and the content engine itself.
	registry := plugins.NewStaticRegistry(plugins.Defaults()...)
	engine := content.New(contentStore, registry, catalog, treeCache, cfg.Locale)

	// Seed development data (no-op if a course already exists).
	if cfg.IsDev() {
		if err := database.Seed(context.Background(), engine); err != nil {
			slog.Error("failed to seed store", "error", err)
			os.Exit(1)
		}
	}

	// Rate limiter for the mutation API.
	limiter := middleware.NewRateLimiter(120, time.Minute)
	defer limiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(handlers.NewContent(engine), limiter)

	// Create the HTTP server with sensible timeouts. Deep course clones can
	// touch hundreds of nodes, so the write timeout is generous.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
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
