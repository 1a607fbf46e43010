package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/adapters/event"
	githubAdapter "github.com/hurmain7/devconnect/adapters/github"
	httpAdapter "github.com/hurmain7/devconnect/adapters/http"
	"github.com/hurmain7/devconnect/adapters/persistence"
	"github.com/hurmain7/devconnect/adapters/persistence/memory"
	"github.com/hurmain7/devconnect/internal/application/service"
	githubUC "github.com/hurmain7/devconnect/internal/application/usecase/github"
	profileUC "github.com/hurmain7/devconnect/internal/application/usecase/profile"
	"github.com/hurmain7/devconnect/internal/config"
	"github.com/hurmain7/devconnect/internal/domain/profile"
	"github.com/hurmain7/devconnect/internal/domain/user"
	"github.com/hurmain7/devconnect/pkg/auth"
	"github.com/hurmain7/devconnect/pkg/logger"
	"github.com/hurmain7/devconnect/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start devconnect API Server...", zap.String("env", cfg.App.Env))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.JWTSecret == "" {
		appLogger.Fatal("JWT secret is not configured", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "devconnect-api")
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}

	// Stores
	var (
		profileRepo profile.Repository
		userRepo    user.Repository
		revoker     service.SessionRevoker
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		appLogger.Warn("Using in-memory storage, data is lost on shutdown")
		store := memory.NewStore()
		profileRepo, userRepo, revoker = store.Profiles(), store.Users(), store.Sessions()

	default:
		if cfg.DB.MigrationsPath != "" {
			if err := persistence.RunMigrations(cfg.DB.DSN, cfg.DB.MigrationsPath, appLogger); err != nil {
				appLogger.Fatal("Cannot migrate database", err)
			}
		}

		dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Postgres", err)
		}
		defer dbPool.Close()

		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()

		profileRepo = persistence.NewPostgresProfileRepo(dbPool, appLogger)
		userRepo = persistence.NewPostgresUserRepo(dbPool, appLogger)
		revoker = persistence.NewRedisSessionStore(redisClient, cfg.Auth.TokenLifespan)
	}

	// Events
	var publisher service.EventPublisher = event.NewNoopPublisher(appLogger)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	}

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	githubClient := githubAdapter.NewClient(cfg, appLogger)

	// Use Cases
	profileUseCase := profileUC.NewProfileUseCase(profileRepo, userRepo, revoker, publisher, appLogger)
	listReposUseCase := githubUC.NewListReposUseCase(githubClient, appLogger)

	// HTTP
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		ProfileHandler: httpAdapter.NewProfileHandler(profileUseCase, appLogger),
		GithubHandler:  httpAdapter.NewGithubHandler(listReposUseCase, appLogger),
		JWTService:     jwtSvc,
		Revoker:        revoker,
		AllowedOrigins: cfg.App.AllowedOrigins,
		Logger:         appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Error("Server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		appLogger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", err)
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		appLogger.Error("Tracer shutdown failed", err)
	}
	appLogger.Info("Server exited")
}
