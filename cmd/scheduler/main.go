// Command scheduler runs the daily booking lifecycle sweep: activations at check-in,
// completions at check-out and overdue payment flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cron "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/config"
	bookingDomain "github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/platform/database"
	"github.com/estatery/service-rental/internal/platform/logger"
	"github.com/estatery/service-rental/internal/repository"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "rental-scheduler")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	txManager := repository.NewGormTxManager(db, cfg.LockTimeout)
	clock := application.SystemClock{}
	// Date-triggered transitions record no notifications, so the sweep runs without a notifier.
	bookingService := application.NewBookingService(
		txManager,
		bookingDomain.NewMonthlyPricingStrategy(),
		nil,
		clock,
		log,
	)
	paymentService := application.NewPaymentService(txManager, clock, log)
	sweeper := application.NewLifecycleSweeper(bookingService, paymentService, clock, log)

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := sweeper.RunDailyTransitions(ctx); err != nil {
			log.Error("daily transitions failed", zap.Error(err))
		}
	}

	if *once {
		sweep()
		return
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(cfg.ScheduleCron, sweep); err != nil {
		log.Fatal("failed to schedule daily transitions", zap.String("cron", cfg.ScheduleCron), zap.Error(err))
	}
	c.Start()
	log.Info("scheduler started", zap.String("cron", cfg.ScheduleCron))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler...")
	<-c.Stop().Done()
}
