package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/config"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/handler"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/repository"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/service"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	clientRepo := repository.NewClientRepository(db)
	collectorRepo := repository.NewCollectorRepository(db)
	cashRepo := repository.NewCashEntryRepository(db)

	// Initialize services and handlers
	loanService := service.NewLoanService(loanRepo, paymentRepo, clientRepo, redisClient, cfg)
	registryService := service.NewRegistryService(clientRepo, collectorRepo, cashRepo)

	loanHandler := handler.NewLoanHandler(loanService)
	registryHandler := handler.NewRegistryHandler(registryService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(loanHandler, registryHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(loanHandler *handler.LoanHandler, registryHandler *handler.RegistryHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(handler.RequestLogger)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans/preview", loanHandler.PreviewLoan).Methods("POST")
	api.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}", loanHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.DeleteLoan).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/schedule", loanHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{loanId}/summary", loanHandler.GetSummary).Methods("GET")
	api.HandleFunc("/loans/{loanId}/payments", loanHandler.GetPayments).Methods("GET")
	api.HandleFunc("/loans/{loanId}/payments", loanHandler.ApplyPayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/payments/{paymentId}", loanHandler.ReversePayment).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/payment-day", loanHandler.ChangePaymentDay).Methods("PUT")
	api.HandleFunc("/loans/{loanId}/status", loanHandler.OverrideStatus).Methods("PUT")

	api.HandleFunc("/clients", registryHandler.CreateClient).Methods("POST")
	api.HandleFunc("/clients", registryHandler.ListClients).Methods("GET")
	api.HandleFunc("/clients/{clientId}", registryHandler.GetClient).Methods("GET")
	api.HandleFunc("/clients/{clientId}", registryHandler.UpdateClient).Methods("PUT")
	api.HandleFunc("/clients/{clientId}", registryHandler.DeleteClient).Methods("DELETE")
	api.HandleFunc("/clients/{clientId}/loans", loanHandler.ListClientLoans).Methods("GET")

	api.HandleFunc("/collectors", registryHandler.CreateCollector).Methods("POST")
	api.HandleFunc("/collectors", registryHandler.ListCollectors).Methods("GET")
	api.HandleFunc("/collectors/{collectorId}", registryHandler.GetCollector).Methods("GET")
	api.HandleFunc("/collectors/{collectorId}", registryHandler.UpdateCollector).Methods("PUT")
	api.HandleFunc("/collectors/{collectorId}", registryHandler.DeleteCollector).Methods("DELETE")

	api.HandleFunc("/cash-entries", registryHandler.CreateCashEntry).Methods("POST")
	api.HandleFunc("/cash-entries", registryHandler.ListCashEntries).Methods("GET")
	api.HandleFunc("/cash-entries/balance", registryHandler.GetCashBalance).Methods("GET")

	return router
}
