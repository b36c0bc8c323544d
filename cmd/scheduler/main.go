package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/config"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/repository"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)
	log.Info().Msg("Starting loan scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	clientRepo := repository.NewClientRepository(db)
	loanService := service.NewLoanService(loanRepo, paymentRepo, clientRepo, nil, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Scheduler.Timezone).Msg("Invalid scheduler timezone")
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, cfg, loanService)

	c.Start()
	log.Info().Msg("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loanService *service.LoanService) {
	// Daily sweep persisting ATRASADO on every loan past its due date
	_, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		log.Info().Msg("Running overdue loan sweep...")
		marked, err := loanService.MarkOverdueLoans(ctx)
		if err != nil {
			log.Error().Err(err).Int("marked", marked).Msg("Overdue sweep failed")
			return
		}
		log.Info().Int("marked", marked).Msg("Overdue sweep finished")
	})
	if err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Scheduler.OverdueCron).Msg("Error scheduling overdue sweep")
	}

	log.Info().Msg("Cron jobs scheduled successfully")
}
