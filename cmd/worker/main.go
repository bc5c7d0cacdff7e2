package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/khoahotran/career-onboard/adapters/cache"
	"github.com/khoahotran/career-onboard/adapters/event"
	"github.com/khoahotran/career-onboard/adapters/persistence"
	homeUC "github.com/khoahotran/career-onboard/internal/application/usecase/home"
	userUC "github.com/khoahotran/career-onboard/internal/application/usecase/user"
	"github.com/khoahotran/career-onboard/internal/config"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.NewZapLogger("development", "").Fatal("cannot load config", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer appLogger.Sync()
	appLogger.Info("Starting home view warmer...")

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	insightRepo := persistence.NewPostgresInsightRepo(dbPool, appLogger)
	viewCache := cache.NewRedisViewCache(redisClient, cfg.Redis.ViewTTL)

	// Worker Use Case
	bootstrapUseCase := userUC.NewBootstrapUseCase(userRepo, nil, appLogger)
	homeViewUseCase := homeUC.NewGetHomeViewUseCase(bootstrapUseCase, userRepo, insightRepo, viewCache, appLogger)

	// Kafka Consumer
	consumer := event.NewProfileEventConsumer(cfg, homeViewUseCase, appLogger)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.Run(ctx)
}
