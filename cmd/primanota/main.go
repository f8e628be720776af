package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/accounting/entries"
	"github.com/primanota-erp/primanota/internal/accounting/functions"
	"github.com/primanota-erp/primanota/internal/accounting/openitems"
	"github.com/primanota-erp/primanota/internal/accounting/vat"
	"github.com/primanota-erp/primanota/internal/app"
	"github.com/primanota-erp/primanota/internal/masterdata/counterparties"
	"github.com/primanota-erp/primanota/internal/observability"
	"github.com/primanota-erp/primanota/internal/platform/cache"
	"github.com/primanota-erp/primanota/internal/platform/db"
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, chart cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	chartRepo := chart.NewRepository(pool)
	chartService := chart.NewService(chartRepo, redisClient, cfg.ChartCacheTTL, logger)
	chartHandler := chart.NewHandler(logger, chartService)

	functionsRepo := functions.NewRepository(pool)
	functionsService := functions.NewService(functionsRepo)
	functionsHandler := functions.NewHandler(logger, functionsService)

	vatRepo := vat.NewRepository(pool)
	vatService := vat.NewService(vatRepo)
	vatHandler := vat.NewHandler(logger, vatService)

	counterpartyRepo := counterparties.NewRepository(pool)
	counterpartyService := counterparties.NewService(counterpartyRepo)
	counterpartyHandler := counterparties.NewHandler(logger, counterpartyService)

	openItemRepo := openitems.NewRepository(pool)
	openItemService := openitems.NewService(openItemRepo)
	openItemHandler := openitems.NewHandler(logger, openItemService)

	entryRepo := entries.NewRepository(pool)
	entryService := entries.NewService(entryRepo, functionsService, chartService, vatService,
		counterpartyService, openItemRepo, logger)
	entryService.WithMetrics(metrics)
	entryHandler := entries.NewHandler(logger, entryService)

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		Pool:                  pool,
		ChartHandler:          chartHandler,
		FunctionsHandler:      functionsHandler,
		VatHandler:            vatHandler,
		OpenItemsHandler:      openItemHandler,
		EntriesHandler:        entryHandler,
		CounterpartiesHandler: counterpartyHandler,
		Metrics:               metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
