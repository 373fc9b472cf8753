package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/prodataworld/prodata-backend/internal/cron"
	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	"github.com/prodataworld/prodata-backend/internal/notifications"
	"github.com/prodataworld/prodata-backend/internal/providers"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/metrics"
	"github.com/prodataworld/prodata-backend/pkg/migrate"
	"github.com/prodataworld/prodata-backend/pkg/moolre"
	"github.com/prodataworld/prodata-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single job and exit")
	jobName := flag.String("job", "", "job to run with -once")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer)

	notifier := notifications.NewSMSNotifier(smsSender(cfg.SMS, logg), logg)
	store := fulfillment.NewStore(dbClient.DB())

	sync, err := fulfillment.NewStatusSync(fulfillment.StatusSyncParams{
		Store:    store,
		Notifier: notifier,
		Metrics:  fulfillmentMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create status sync", err)
		os.Exit(1)
	}
	maintenance, err := fulfillment.NewMaintenance(fulfillment.MaintenanceParams{
		Store:    store,
		Notifier: notifier,
		Logger:   logg,
		StaleAge: cfg.Fulfillment.StaleOrderAge,
		Keywords: cfg.Fulfillment.AutoCompleteNetworks,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order maintenance", err)
		os.Exit(1)
	}

	registry, err := buildRegistry(cfg, logg, fulfillmentMetrics, sync, maintenance)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        registry.Names(),
	})

	if *once {
		if err := service.RunOnce(ctx, *jobName); err != nil {
			logg.Error(logg.WithField(ctx, "job", *jobName), "cron job failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, m *metrics.FulfillmentMetrics, sync *fulfillment.StatusSync, maintenance *fulfillment.Maintenance) (*cron.Registry, error) {
	vendors := providers.FromConfig(cfg, providers.WithLogger(logg), providers.WithMetrics(m))

	var fosterPollers, otherPollers []fulfillment.StatusPoller
	for _, poller := range vendors.Pollers {
		if poller.Name() == fulfillment.ProviderFoster {
			fosterPollers = append(fosterPollers, poller)
			continue
		}
		otherPollers = append(otherPollers, poller)
	}

	fosterJob, err := cron.NewStatusSyncJob(cron.StatusSyncJobParams{
		Name: cron.JobFosterStatusSync, Logger: logg, Sync: sync, Pollers: fosterPollers,
	})
	if err != nil {
		return nil, err
	}
	providerJob, err := cron.NewStatusSyncJob(cron.StatusSyncJobParams{
		Name: cron.JobProviderStatusSync, Logger: logg, Sync: sync, Pollers: otherPollers,
	})
	if err != nil {
		return nil, err
	}
	oldOrdersJob, err := cron.NewCompleteOldOrdersJob(cron.MaintenanceJobParams{Logger: logg, Maintenance: maintenance})
	if err != nil {
		return nil, err
	}
	pusherJob, err := cron.NewFixPusherStatusJob(cron.MaintenanceJobParams{Logger: logg, Maintenance: maintenance})
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry()
	for _, job := range []cron.Job{fosterJob, providerJob, oldOrdersJob, pusherJob} {
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// smsSender returns nil when no gateway key is configured, which makes the
// notifier log messages instead of sending them.
func smsSender(cfg config.SMSConfig, logg *logger.Logger) notifications.Sender {
	client, err := moolre.NewClient(cfg.APIKey,
		moolre.WithBaseURL(cfg.BaseURL),
		moolre.WithSenderID(cfg.SenderID),
		moolre.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		logg.Warn(context.Background(), "sms gateway not configured, notifications will only be logged")
		return nil
	}
	return client
}
