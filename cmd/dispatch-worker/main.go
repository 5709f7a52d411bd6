package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brightpath-crm/notify-backend/internal/notifications"
	"github.com/brightpath-crm/notify-backend/internal/reminders"
	"github.com/brightpath-crm/notify-backend/internal/senders"
	"github.com/brightpath-crm/notify-backend/pkg/config"
	"github.com/brightpath-crm/notify-backend/pkg/db"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
	"github.com/brightpath-crm/notify-backend/pkg/metrics"
	"github.com/brightpath-crm/notify-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "dispatch-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "dispatch-worker",
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

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repository:  notificationsRepo,
		MaxAttempts: cfg.Dispatch.MaxAttempts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	remindersService, err := reminders.NewService(reminders.ServiceParams{
		Repository: reminders.NewRepository(dbClient.DB()),
		Notifier:   notificationsService,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminders service", err)
		os.Exit(1)
	}

	processor, err := notifications.NewProcessor(notifications.ProcessorParams{
		Repository: notificationsRepo,
		Email:      senders.NewEmailSender(cfg.SMTP, logg),
		Chat:       senders.NewWhatsAppSender(cfg.UltraMsg, nil, logg),
		Browser:    senders.NewBrowserSender(logg),
		Reminders:  remindersService,
		Logger:     logg,
		Metrics:    metrics.NewDispatchMetrics(prometheus.DefaultRegisterer),
		BatchSize:  cfg.Dispatch.BatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification processor", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Dispatch.Interval().String(),
	})
	logg.Info(ctx, "starting dispatch worker")

	processor.Start(cfg.Dispatch.Interval())
	<-ctx.Done()
	processor.Stop()

	logg.Info(ctx, "dispatch worker shutting down gracefully")
}
