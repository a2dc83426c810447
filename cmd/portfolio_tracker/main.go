package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"portfolio_tracker/internal/api"
	"portfolio_tracker/internal/client"
	"portfolio_tracker/internal/config"
	"portfolio_tracker/internal/registry"
	"portfolio_tracker/internal/repository"
	"portfolio_tracker/internal/service"
	"portfolio_tracker/pkg/metrics"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Route slog through zap so every dependency logs in one format.
	slogHandler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := getEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	chainRegistry := registry.NewChainRegistry(cfg.Chains, zapLogger)

	moralisTimeout := time.Duration(cfg.Moralis.RequestTimeoutMillis) * time.Millisecond
	balanceProvider := client.NewMoralisClient(cfg.Moralis.BaseURL, cfg.Moralis.APIKey, moralisTimeout, zapLogger)
	zapLogger.Info("Balance provider client initialized")

	coinGeckoTimeout := time.Duration(cfg.CoinGecko.RequestTimeoutMillis) * time.Millisecond
	priceClient := client.NewCoinGeckoClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, coinGeckoTimeout, zapLogger)
	zapLogger.Info("Market-data client initialized")

	priceService := service.NewPriceService(zapLogger, cfg, priceClient)
	priceService.Start(context.Background())
	defer priceService.Stop()

	nativeClients := client.NewEVMClientProvider(chainRegistry, moralisTimeout, zapLogger)

	snapshotCache := repository.NewSnapshotCache(time.Duration(cfg.Cache.SnapshotTTLSeconds)*time.Second, nil)

	portfolioSvc := service.NewPortfolioService(snapshotCache, balanceProvider, nativeClients, priceService, chainRegistry, cfg, zapLogger)
	zapLogger.Info("PortfolioService initialized")

	handler := api.NewPortfolioHandler(portfolioSvc, zapLogger)
	router := api.SetupRouter(handler, cfg, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
