package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/adapters/event"
	"github.com/hurmain7/devconnect/adapters/persistence"
	workerUC "github.com/hurmain7/devconnect/internal/application/usecase/post"
	"github.com/hurmain7/devconnect/internal/config"
	"github.com/hurmain7/devconnect/pkg/logger"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting devconnect account worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Kafka brokers are not configured", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Repositories
	postRepo := persistence.NewPostgresPostRepo(dbPool, appLogger)

	// Worker Use Case
	purgePostsUC := workerUC.NewPurgeUserPostsUseCase(postRepo, appLogger)

	// Kafka Consumer
	accountReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicAccountEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer accountReader.Close()

	consumer := event.NewAccountEventConsumer(accountReader, purgePostsUC, appLogger)

	appLogger.Info("Worker listening", zap.String("topic", event.TopicAccountEvents), zap.String("group_id", cfg.Kafka.GroupID))

	if err := consumer.Run(ctx); err != nil {
		// exit without committing; the failed event is redelivered on restart
		appLogger.Error("Worker stopped on unprocessable event", err)
		accountReader.Close()
		dbPool.Close()
		appLogger.Sync()
		log.Fatal("worker stopped")
	}
	appLogger.Info("Worker stopped")
}
