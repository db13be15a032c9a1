package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/paysentinel/transfer-risk-backend/internal/api/rest"
	"github.com/paysentinel/transfer-risk-backend/internal/infrastructure/cache"
	"github.com/paysentinel/transfer-risk-backend/internal/infrastructure/config"
	"github.com/paysentinel/transfer-risk-backend/internal/infrastructure/database"
	"github.com/paysentinel/transfer-risk-backend/internal/infrastructure/telemetry"
	"github.com/paysentinel/transfer-risk-backend/internal/metrics"
	"github.com/paysentinel/transfer-risk-backend/internal/service/risk"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create infrastructure logger: %v", err)
	}
	defer zapLogger.Sync()

	pool, err := database.NewConnectionPool(&cfg.Database, zapLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	listCache, err := cache.NewPayeeListCache(&cfg.Redis, zapLogger)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer listCache.Close()

	registry, err := metrics.NewRegistry("transfer-risk-backend")
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	riskService, err := risk.NewService(cfg.RiskCoreConfig(), listCache, logger)
	if err != nil {
		log.Fatalf("Failed to create risk service: %v", err)
	}

	historyRepo := database.NewTransactionHistoryRepository(pool.Pool())
	handler := rest.NewHandler(riskService, historyRepo, cfg.Database.HistoryLimit, logger, registry)
	server := rest.NewServer(cfg, handler, logger)

	// Prometheus scrape endpoint on its own listener.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", MetricsHandler())
		if err := http.ListenAndServe(":9090", mux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics listener failed", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Shutdown error: %v", err)
		}
	}
}
