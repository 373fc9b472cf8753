package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/prodataworld/prodata-backend/api/routes"
	"github.com/prodataworld/prodata-backend/internal/alerts"
	"github.com/prodataworld/prodata-backend/internal/cart"
	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	"github.com/prodataworld/prodata-backend/internal/orders"
	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/internal/providers"
	"github.com/prodataworld/prodata-backend/internal/settings"
	"github.com/prodataworld/prodata-backend/internal/users"
	"github.com/prodataworld/prodata-backend/internal/wallet"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/metrics"
	"github.com/prodataworld/prodata-backend/pkg/migrate"
	"github.com/prodataworld/prodata-backend/pkg/pubsub"
	"github.com/prodataworld/prodata-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(registry)

	settingsService, err := settings.NewService(settings.Params{
		DB:       dbClient.DB(),
		Cache:    redisClient,
		CacheTTL: cfg.Fulfillment.SettingsCacheTTL,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	vendors := providers.FromConfig(cfg, providers.WithLogger(logg), providers.WithMetrics(fulfillmentMetrics))
	if len(vendors.Skipped) > 0 {
		logg.Warn(logg.WithField(context.Background(), "providers", vendors.Skipped), "fulfillment providers not configured")
	}

	var events fulfillment.EventPublisher
	if cfg.PubSub.Enabled() {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		events = pubsubClient
	}

	dispatcher, err := fulfillment.NewDispatcher(fulfillment.DispatcherParams{
		Store:     fulfillment.NewStore(dbClient.DB()),
		Providers: vendors.Providers,
		Flags:     settingsService,
		Events:    events,
		Metrics:   fulfillmentMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	productService, err := product.NewService(product.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	cartRepo := cart.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(cartRepo, productService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	walletService, err := wallet.NewService(dbClient, wallet.NewRepository(dbClient.DB()), usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(orders.ServiceParams{
		DB:         dbClient,
		Repo:       orders.NewRepository(dbClient.DB()),
		Users:      usersRepo,
		Products:   productService,
		Cart:       cartRepo,
		Wallet:     walletService,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	alertsService, err := alerts.NewService(alerts.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create alerts service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Services{
			DB:       dbClient,
			Redis:    redisClient,
			Metrics:  registry,
			Products: productService,
			Cart:     cartService,
			Orders:   ordersService,
			Wallet:   walletService,
			Alerts:   alertsService,
			Settings: settingsService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
