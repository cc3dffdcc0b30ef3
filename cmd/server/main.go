package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/carcrafter/market-api/internal/business/market"
	"github.com/carcrafter/market-api/internal/platform/config"
	apirouter "github.com/carcrafter/market-api/internal/platform/http"
	"github.com/carcrafter/market-api/internal/platform/logging"
	"github.com/carcrafter/market-api/internal/platform/metrics"
	"github.com/carcrafter/market-api/internal/platform/predictor"
	"github.com/carcrafter/market-api/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	slog.SetDefault(logger)

	gin.SetMode(cfg.GinMode)

	// A missing dataset keeps the server up; dataset endpoints answer 503.
	analyzer := loadAnalyzer(cfg, logger)

	snapshots, closer, err := repository.OpenSnapshotStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("snapshot store init failed", "store", cfg.SnapshotStore, "err", err)
		os.Exit(1)
	}
	defer closer.Close()

	var estimator predictor.Estimator
	if analyzer != nil {
		estimator = analyzer
	}
	pred := predictor.New(nil, estimator, predictor.Config{
		URL:        cfg.ModelServiceURL,
		Timeout:    cfg.ModelServiceTimeout,
		MaxRetries: cfg.ModelServiceRetries,
		Logger:     logger,
	})

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		if analyzer != nil {
			m.SetListings(len(analyzer.Dataset().Listings))
		}
	}

	router := apirouter.NewRouter(apirouter.Options{
		Analyzer:       analyzer,
		Predictor:      pred,
		Snapshots:      snapshots,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()
	logger.Info("server listening", "port", cfg.Port, "market_trends_available", analyzer != nil)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
	logger.Info("server exited")
}

func loadAnalyzer(cfg config.Config, logger *slog.Logger) *market.Analyzer {
	ds, err := market.LoadDataset(cfg.DatasetPath, cfg.AdditionalDatasetPath, market.LoadOptions{
		CurrentYear: cfg.CurrentYear,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("market trends analyzer unavailable", "err", err)
		return nil
	}
	analyzer, err := market.NewAnalyzer(ds)
	if err != nil {
		logger.Error("market trends analyzer unavailable", "err", err)
		return nil
	}
	return analyzer
}
