package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/audit"
	"github.com/fyrsmithlabs/decisiond/internal/cache"
	"github.com/fyrsmithlabs/decisiond/internal/config"
	"github.com/fyrsmithlabs/decisiond/internal/decision"
	"github.com/fyrsmithlabs/decisiond/internal/logging"
	"github.com/fyrsmithlabs/decisiond/internal/mcp"
	"github.com/fyrsmithlabs/decisiond/internal/ratelimit"
	"github.com/fyrsmithlabs/decisiond/internal/store"
	"github.com/fyrsmithlabs/decisiond/internal/telemetry"
	"github.com/fyrsmithlabs/decisiond/internal/thinking"
)

const shutdownTimeout = 10 * time.Second

// runServe wires every component and blocks until the transport closes
// or a termination signal arrives:
//  1. Loads and validates configuration
//  2. Builds the logger (stderr; stdout carries the protocol)
//  3. Starts the metrics pipeline when configured
//  4. Opens the session store (memory or sqlite)
//  5. Creates the decision and thinking services
//  6. Serves MCP tools on stdio
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if storeBackend != "" {
		cfg.Store.Backend = storeBackend
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("starting decisiond",
		zap.String("version", version),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("metrics_addr", cfg.Metrics.Addr),
	)

	if cfg.Metrics.Addr != "" {
		shutdownMetrics, err := telemetry.Setup(cfg.Metrics.Addr, logger)
		if err != nil {
			return fmt.Errorf("initialize telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	sessions, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Warn("store close failed", zap.Error(err))
		}
	}()

	reportCache := cache.New(&cache.Config{
		Size: cfg.Cache.Size,
		TTL:  cfg.Cache.TTL,
	})

	decisionSvc, err := decision.NewService(&decision.Config{
		MaxOptions:  decision.DefaultConfig().MaxOptions,
		MaxCriteria: decision.DefaultConfig().MaxCriteria,
		SessionTTL:  cfg.Session.TTL,
	}, sessions, reportCache, logger)
	if err != nil {
		return fmt.Errorf("create decision service: %w", err)
	}

	thinkingSvc, err := thinking.NewService(sessions, logger)
	if err != nil {
		return fmt.Errorf("create thinking service: %w", err)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		RPS:           cfg.RateLimit.RPS,
		Burst:         cfg.RateLimit.Burst,
		SweepInterval: ratelimit.DefaultConfig().SweepInterval,
		IdleTTL:       ratelimit.DefaultConfig().IdleTTL,
	}, logger)

	auditLog := audit.NewLog(cfg.Session.AuditCapacity, logger)

	srv, err := mcp.NewServer(&mcp.Config{
		Name:    "decisiond",
		Version: version,
		Logger:  logger,
	}, decisionSvc, thinkingSvc, limiter, auditLog)
	if err != nil {
		return fmt.Errorf("create MCP server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn("server close failed", zap.Error(err))
		}
	}()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("decisiond shutdown complete")
	return nil
}

// openStore builds the configured session store backend.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store at %s: %w", cfg.Store.Path, err)
		}
		logger.Info("sqlite session store ready", zap.String("path", cfg.Store.Path))
		return s, nil
	default:
		logger.Info("using in-memory session store")
		return store.NewMemoryStore(), nil
	}
}
