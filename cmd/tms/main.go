// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/tms-go/internal/cache"
	"github.com/olegiv/tms-go/internal/config"
	"github.com/olegiv/tms-go/internal/handler/api"
	"github.com/olegiv/tms-go/internal/logging"
	"github.com/olegiv/tms-go/internal/middleware"
	"github.com/olegiv/tms-go/internal/scheduler"
	"github.com/olegiv/tms-go/internal/store"
	"github.com/olegiv/tms-go/internal/translation"
	"github.com/olegiv/tms-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "tms - Translation Management Service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_DB_DRIVER          sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_DB_PATH            SQLite database path (default: ./data/tms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_DB_DSN             MySQL DSN (required for mysql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_REDIS_URL          Redis URL for the export cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_CACHE_TTL          Export cache TTL in seconds, 0 disables (default: 300)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_EXPORT_CHUNK_SIZE  Streaming export chunk size (default: 1000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TMS_CACHE_WARM_SCHEDULE Cron schedule for export cache warm-up (optional)\n")
	}

	flag.Parse()

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsDevelopment())
	slog.SetDefault(logger)

	dialect := cfg.Dialect()
	if dialect == store.DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := store.Open(dialect, cfg.DBTarget())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db, dialect); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	logger.Info("database ready", "driver", dialect)

	ctx := context.Background()

	opts := translation.Options{
		ChunkSize: cfg.ExportChunkSize,
		Logger:    logger,
	}
	if cfg.CacheEnabled() {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisURL = cfg.RedisURL
		cacheCfg.Prefix = cfg.CachePrefix
		cacheCfg.DefaultTTL = cfg.CacheDuration()
		cacheCfg.MaxSize = cfg.CacheMaxSize

		c, backend := cache.New(ctx, cacheCfg, logger)
		defer func() { _ = c.Close() }()
		logger.Info("export cache enabled", "backend", backend, "ttl", cfg.CacheDuration())

		opts.Cache = c
		opts.CacheTTL = cfg.CacheDuration()
	}

	st := store.NewStore(db, dialect)
	svc := translation.NewService(st, opts)

	if cfg.CacheWarmEnabled() {
		sched := scheduler.New(svc, st, logger)
		if err := sched.Start(cfg.CacheWarmSchedule); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}
	apiHandler := api.NewHandler(svc, logger, info.WithDefaults())
	if sp, ok := opts.Cache.(cache.StatsProvider); ok {
		apiHandler.WithCacheStats(sp)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(cfg.IsDevelopment()))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitEnabled() {
			r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger).Middleware())
		}
		apiHandler.Routes(r)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	// No WriteTimeout: streamed exports may legitimately run long.
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.WithDefaults().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
