package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/surfcast/internal/adapter/http"
	"github.com/couchcryptid/surfcast/internal/adapter/surfdb"
	"github.com/couchcryptid/surfcast/internal/config"
	"github.com/couchcryptid/surfcast/internal/forecast"
	"github.com/couchcryptid/surfcast/internal/observability"
	"github.com/couchcryptid/surfcast/internal/store"
)

// storeReadiness gates readiness on the session database being reachable.
type storeReadiness struct {
	store *store.Store
}

func (r *storeReadiness) CheckReadiness(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	sessionStore, err := store.Open(cfg.DBPath, logger, metrics)
	if err != nil {
		logger.Error("failed to open session store", "db_path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	client := surfdb.NewClient(cfg.SurfDBBaseURL, cfg.SurfDBTimeout, logger, metrics)
	source := surfdb.NewCachedSource(client, cfg.SurfDBDirectoryTTL, metrics)
	forecasts := forecast.New(source, cfg.Regions, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, forecasts, sessionStore,
		&storeReadiness{store: sessionStore}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("surfcast started",
		"regions", cfg.Regions, "db_path", cfg.DBPath, "surfdb", cfg.SurfDBBaseURL)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := sessionStore.Close(); err != nil {
		logger.Error("session store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
