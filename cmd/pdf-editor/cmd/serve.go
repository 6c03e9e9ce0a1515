package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/adapter/inbound/rest"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/adapter/outbound/memory"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/config"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/ratelimit"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editing service",
	Long: `Start the PDF editing HTTP service.

The server holds uploaded documents as in-memory sessions, serializes
mutations per session, persists after every completed operation, and
reaps idle sessions. On shutdown it drains in-flight requests, then
tears down every live session and removes its files.

Examples:
  # Start with config file settings
  pdf-editor serve

  # Start with a specific config file
  pdf-editor --config /path/to/config.yaml serve`,
	RunE: runServe,
}

var devMode bool

func init() {
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (verbose logging)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
		cfg.SetDevDefaults()
	}

	logger := newLogger(cfg)
	if file := config.ConfigFileUsed(v); file != "" {
		logger.Info("loaded config", "file", file)
	}

	// Signal context for graceful shutdown. stop() restores default
	// handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, logger)
}

// run wires all components together and blocks until shutdown.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for _, dir := range []string{cfg.Storage.TempDir, cfg.Storage.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	store := memory.NewSessionStore()

	registry := prometheus.NewRegistry()
	metrics := rest.NewMetrics(registry, store.Len)

	coordinator := service.NewCoordinator(store, cfg.Storage.WorkDir,
		service.WithIdleTimeout(cfg.Session.IdleTimeout),
		service.WithStorageDir(cfg.Storage.TempDir),
		service.WithLogger(logger),
		service.WithReapHook(func(count int) {
			metrics.SessionsReaped.Add(float64(count))
		}),
	)

	// Remove working copies and orphaned session files left behind by a
	// previous process.
	if removed, err := coordinator.CleanupStale(ctx); err != nil {
		logger.Warn("stale file sweep failed", "error", err)
	} else if removed > 0 {
		logger.Info("removed stale files", "count", removed)
	}

	reaper := service.NewReaper(coordinator, cfg.Session.ReapInterval)
	reaper.Start(ctx)

	opts := []rest.Option{
		rest.WithLogger(logger),
		rest.WithMetrics(metrics, registry),
		rest.WithMaxUploadBytes(int64(cfg.Storage.MaxUploadMB) << 20),
		rest.WithMaxZoom(cfg.Render.MaxZoom),
	}
	if len(cfg.Auth.APIKeyHashes) > 0 {
		opts = append(opts, rest.WithAPIKeyHashes(cfg.Auth.APIKeyHashes))
		logger.Info("API key authentication enabled", "keys", len(cfg.Auth.APIKeyHashes))
	}

	var limiter *memory.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = memory.NewRateLimiterWithConfig(cfg.RateLimit.CleanupInterval, cfg.RateLimit.MaxTTL)
		limiter.Start(ctx)
		opts = append(opts, rest.WithRateLimiter(limiter, ratelimit.RateLimitConfig{
			Rate:   cfg.RateLimit.RequestsPerMinute,
			Burst:  cfg.RateLimit.Burst,
			Period: time.Minute,
		}))
		logger.Info("rate limiting enabled",
			"requests_per_minute", cfg.RateLimit.RequestsPerMinute,
			"burst", cfg.RateLimit.Burst)
	}

	handler := rest.NewHandler(coordinator, cfg.Storage.TempDir, opts...)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", cfg.Server.HTTPAddr,
			"idle_timeout", cfg.Session.IdleTimeout.String(),
			"reap_interval", cfg.Session.ReapInterval.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		reaper.Stop()
		if limiter != nil {
			limiter.Stop()
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful drain incomplete", "error", err)
	}

	reaper.Stop()
	if limiter != nil {
		limiter.Stop()
	}

	// Tear down every live session: close handles, remove files.
	if err := coordinator.CleanupAll(context.Background()); err != nil {
		logger.Warn("session teardown incomplete", "error", err)
	}

	logger.Info("pdf-editor stopped")
	return nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.Log.Level)
	if cfg.DevMode {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
