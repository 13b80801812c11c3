// The worker consumes reservation lifecycle events from Kafka and writes
// them to the audit log. It runs as a separate process so the API never
// blocks on downstream processing.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"examly/internal/reservations"
	"examly/internal/shared/config"
	"examly/internal/stream"
	"examly/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	if !cfg.Kafka.Enabled {
		appLogger.Error("Kafka is disabled; the lifecycle worker has nothing to consume")
		os.Exit(1)
	}

	consumerConfig := stream.DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.Topics = []string{cfg.Kafka.Topic}
	consumerConfig.GroupID = cfg.Kafka.GroupID

	consumer, err := stream.NewConsumer(consumerConfig, auditHandler(appLogger))
	if err != nil {
		appLogger.Error("Failed to create lifecycle consumer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.StartWorkers(ctx, 3); err != nil {
		appLogger.Error("Failed to start lifecycle workers", slog.Any("error", err))
		os.Exit(1)
	}

	appLogger.Info("Lifecycle worker running",
		slog.String("topic", cfg.Kafka.Topic),
		slog.String("group", cfg.Kafka.GroupID),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down lifecycle worker...")
	cancel()
	if err := consumer.Stop(); err != nil {
		appLogger.Error("Error stopping consumer", slog.Any("error", err))
	}
	appLogger.Info("Lifecycle worker exited")
}

// auditHandler records every lifecycle event in structured form.
func auditHandler(l *logger.Logger) stream.EventHandler {
	return func(ctx context.Context, event reservations.LifecycleEvent) error {
		l.Info("reservation lifecycle event",
			slog.String("type", event.Type),
			slog.String("reservation_id", event.ReservationID),
			slog.String("slot_id", event.SlotID),
			slog.String("user_id", event.UserID),
			slog.Int("headcount", event.Headcount),
			slog.String("status", event.Status),
			slog.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
