package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/adapters/cache"
	"github.com/khoahotran/career-onboard/adapters/event"
	httpAdapter "github.com/khoahotran/career-onboard/adapters/http"
	"github.com/khoahotran/career-onboard/adapters/llm"
	"github.com/khoahotran/career-onboard/adapters/persistence"
	homeUC "github.com/khoahotran/career-onboard/internal/application/usecase/home"
	insightUC "github.com/khoahotran/career-onboard/internal/application/usecase/insight"
	onboardingUC "github.com/khoahotran/career-onboard/internal/application/usecase/onboarding"
	userUC "github.com/khoahotran/career-onboard/internal/application/usecase/user"
	"github.com/khoahotran/career-onboard/internal/config"
	"github.com/khoahotran/career-onboard/internal/metrics"
	"github.com/khoahotran/career-onboard/pkg/auth"
	"github.com/khoahotran/career-onboard/pkg/logger"
	"github.com/khoahotran/career-onboard/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.NewZapLogger("development", "").Fatal("cannot load config", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer appLogger.Sync()
	appLogger.Info("Start career onboarding API server...")

	shutdownTracing, err := tracing.Init(cfg, appLogger, "career-onboard-api")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Error("Failed to flush traces", err)
		}
	}()

	// Initialize dependencies
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

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	llmService, err := llm.NewLLMAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init LLM adapter", err)
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	insightRepo := persistence.NewPostgresInsightRepo(dbPool, appLogger)
	unitOfWork := persistence.NewPostgresUnitOfWork(dbPool, appLogger)
	viewCache := cache.NewRedisViewCache(redisClient, cfg.Redis.ViewTTL)

	// Services
	appMetrics := metrics.New()
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenLifespan)

	// Use Cases
	bootstrapUseCase := userUC.NewBootstrapUseCase(userRepo, kafkaClient, appLogger)
	generateInsightsUseCase := insightUC.NewGenerateInsightsUseCase(llmService, appLogger)
	provisioner := insightUC.NewProvisioner(generateInsightsUseCase, cfg.Onboarding.InsightRefreshInterval, appMetrics, appLogger)
	homeViewUseCase := homeUC.NewGetHomeViewUseCase(bootstrapUseCase, userRepo, insightRepo, viewCache, appLogger)
	updateProfileUseCase := onboardingUC.NewUpdateProfileUseCase(
		bootstrapUseCase,
		unitOfWork,
		provisioner,
		viewCache,
		homeViewUseCase,
		kafkaClient,
		cfg.Onboarding.TxTimeout,
		appMetrics,
		appLogger,
	)
	statusUseCase := onboardingUC.NewGetOnboardingStatusUseCase(userRepo, appMetrics, appLogger)

	// HTTP Handlers
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		OnboardingHandler: httpAdapter.NewOnboardingHandler(updateProfileUseCase, statusUseCase, appLogger),
		HomeHandler:       httpAdapter.NewHomeHandler(homeViewUseCase),
		JWTService:        jwtSvc,
		Logger:            appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
