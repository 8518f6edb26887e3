package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/config"
	bookingDomain "github.com/estatery/service-rental/internal/domain/booking"
	rentalEvents "github.com/estatery/service-rental/internal/events"
	"github.com/estatery/service-rental/internal/handler"
	"github.com/estatery/service-rental/internal/platform/auth"
	"github.com/estatery/service-rental/internal/platform/database"
	"github.com/estatery/service-rental/internal/platform/kafka"
	"github.com/estatery/service-rental/internal/platform/logger"
	"github.com/estatery/service-rental/internal/platform/middleware"
	"github.com/estatery/service-rental/internal/repository"
)

const serviceName = "service-rental"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()
	notifier := rentalEvents.NewKafkaNotifier(kafkaProducer, log)

	// Initialize application services
	txManager := repository.NewGormTxManager(db, cfg.LockTimeout)
	clock := application.SystemClock{}

	bookingService := application.NewBookingService(
		txManager,
		bookingDomain.NewMonthlyPricingStrategy(),
		notifier,
		clock,
		log,
	)
	paymentService := application.NewPaymentService(txManager, clock, log)
	reviewService := application.NewReviewService(txManager, clock, log)
	propertyService := application.NewPropertyService(txManager, notifier, clock, log)
	dashboardService := application.NewDashboardService(txManager)
	sweeper := application.NewLifecycleSweeper(bookingService, paymentService, clock, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + serviceName
	paymentConsumer := rentalEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		paymentService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	handler.NewHealthHandler(sqlDB, serviceName).RegisterRoutes(router)
	handler.NewPropertyHandler(propertyService, bookingService, reviewService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewBookingHandler(bookingService, paymentService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPaymentHandler(paymentService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewReviewHandler(reviewService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewDashboardHandler(dashboardService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminBookingHandler(bookingService, sweeper).RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
