package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/netcash/paynow-go/internal/adapters/netcash"
	"github.com/netcash/paynow-go/internal/adapters/postgres"
	"github.com/netcash/paynow-go/internal/config"
	callbackHandler "github.com/netcash/paynow-go/internal/handlers/callback"
	checkoutHandler "github.com/netcash/paynow-go/internal/handlers/checkout"
	subscriptionHandler "github.com/netcash/paynow-go/internal/handlers/subscription"
	paymentService "github.com/netcash/paynow-go/internal/services/payment"
	subscriptionService "github.com/netcash/paynow-go/internal/services/subscription"
	"github.com/netcash/paynow-go/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting paynow service",
		zap.String("version", "0.1.0"),
	)

	dbPool, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	deps := initDependencies(dbPool, cfg, logger)

	// HTTP API server
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/v1/checkouts",
		observability.MetricsMiddleware("/api/v1/checkouts", http.HandlerFunc(deps.checkoutHandler.CreateCheckout)))
	httpMux.Handle("/api/v1/subscriptions",
		observability.MetricsMiddleware("/api/v1/subscriptions", http.HandlerFunc(deps.subscriptionHandler.Create)))
	httpMux.Handle("/api/v1/subscriptions/update",
		observability.MetricsMiddleware("/api/v1/subscriptions/update", http.HandlerFunc(deps.subscriptionHandler.Update)))
	httpMux.Handle("/api/v1/subscriptions/deactivate",
		observability.MetricsMiddleware("/api/v1/subscriptions/deactivate", http.HandlerFunc(deps.subscriptionHandler.Deactivate)))
	httpMux.Handle("/paynow/callback",
		observability.MetricsMiddleware("/paynow/callback", http.HandlerFunc(deps.callbackHandler.HandleCallback)))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      httpMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics and health server
	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(fmt.Sprintf("%d", cfg.Server.MetricsPort), healthChecker, logger)

	go func() {
		logger.Info("HTTP server listening",
			zap.String("address", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.Info("Servers stopped")
}

// Dependencies holds all initialized services and handlers
type Dependencies struct {
	checkoutHandler     *checkoutHandler.Handler
	subscriptionHandler *subscriptionHandler.Handler
	callbackHandler     *callbackHandler.Handler
}

// initLogger initializes the logger
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	if cfg.Development {
		logger, _ := zap.NewDevelopment()
		return logger
	}

	zapCfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := zapCfg.Build()
	return logger
}

// initDatabase initializes the PostgreSQL connection pool
func initDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// initDependencies initializes all services and handlers with dependency injection
func initDependencies(dbPool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) *Dependencies {
	repo := postgres.NewPaymentRepository(postgres.NewDBExecutor(dbPool))

	// Merchant credentials may live in a secret backend rather than the
	// environment; the env values act as fallbacks.
	creds := resolveCredentials(context.Background(), cfg, logger)

	gatewayCfg := netcash.DefaultConfig(creds.VendorKey)
	gatewayCfg.PartnerURL = cfg.Gateway.PartnerURL
	gatewayCfg.PayNowURL = cfg.Gateway.PayNowURL
	httpClient := &http.Client{Timeout: time.Duration(cfg.Gateway.Timeout) * time.Second}
	updater := netcash.NewSubscriptionUpdater(gatewayCfg, httpClient, logger)

	paymentSvc := paymentService.NewService(repo, paymentService.GatewayCredentials{
		ServiceKey: creds.ServiceKey,
		VendorKey:  creds.VendorKey,
		TestMode:   cfg.Gateway.TestMode,
	}, logger)

	subscriptionSvc := subscriptionService.NewService(repo, updater, subscriptionService.GatewayCredentials{
		ServiceKey: creds.ServiceKey,
		VendorKey:  creds.VendorKey,
		TestMode:   cfg.Gateway.TestMode,
	}, logger)

	return &Dependencies{
		checkoutHandler:     checkoutHandler.NewHandler(paymentSvc, logger),
		subscriptionHandler: subscriptionHandler.NewHandler(subscriptionSvc, logger),
		callbackHandler:     callbackHandler.NewHandler(paymentSvc, logger),
	}
}
