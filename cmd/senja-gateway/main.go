package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/service"
	"github.com/Senja-Hookathon/senja-gateway/internal/config"
	"github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/httpclient"
	"github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/indexer"
	"github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/network/client"
	networkdefinition "github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/network/definition"
	"github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/restapi"
	"github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/tokenregistry"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/logger"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/metrics"
)

func main() {
	// Bootstrap logging before the config is available.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	slogHandler := zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{})
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yml"
	}
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

	registry := tokenregistry.New(cfg)
	chainProvider := networkdefinition.NewChainProvider(cfg.Crosschain.LocalEndpointID, logger.NewSlogAdapter())

	rpcTimeout := time.Duration(cfg.Network.RPCTimeoutMs) * time.Millisecond
	chainClient, err := client.NewEVMClient(cfg, rpcTimeout, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect chain client", zap.Error(err))
	}
	defer chainClient.Close()

	indexerClient := indexer.NewGraphClient(
		cfg.Indexer.URL,
		time.Duration(cfg.Indexer.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	priceOracle := httpclient.NewBinanceClient(
		cfg.PriceAPI.BaseURL,
		time.Duration(cfg.PriceAPI.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)

	queryCache := service.NewQueryCache(
		time.Duration(cfg.Cache.DefaultExpirationSeconds)*time.Second,
		time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
		zapLogger,
	)
	invalidation, err := service.NewInvalidationPolicy(queryCache, zapLogger)
	if err != nil {
		zapLogger.Fatal("Invalid cache invalidation policy", zap.Error(err))
	}

	feeService := service.NewFeeService(
		chainClient,
		chainClient,
		registry.HelperAddress(),
		cfg.Crosschain.LocalEndpointID,
		time.Duration(cfg.Crosschain.FeeQuoteTTLSecs)*time.Second,
		zapLogger,
	)
	lendingService := service.NewLendingService(
		chainClient,
		chainClient,
		feeService,
		invalidation,
		registry.FactoryAddress(),
		cfg.Crosschain.LocalEndpointID,
		cfg.Crosschain.BorrowGasLimit,
		zapLogger,
	)
	poolService := service.NewPoolService(indexerClient, chainClient, registry, queryCache, cfg.Pools, zapLogger)
	balanceService := service.NewBalanceService(chainClient, chainClient, queryCache, zapLogger)
	priceService := service.NewPriceService(priceOracle, queryCache, zapLogger)

	handler := restapi.NewHandler(
		lendingService,
		feeService,
		poolService,
		balanceService,
		priceService,
		registry,
		chainProvider,
		zapLogger,
	)
	router := restapi.NewRouter(handler, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", cfg.Server.Port))
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
