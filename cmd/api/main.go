package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ngo-donation-ledger/config"
	httpHandler "ngo-donation-ledger/internal/adapter/http/handler"
	"ngo-donation-ledger/internal/adapter/messaging"
	pgStorage "ngo-donation-ledger/internal/adapter/storage/postgres"
	redisStorage "ngo-donation-ledger/internal/adapter/storage/redis"
	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/internal/service"
	"ngo-donation-ledger/pkg/logger"
	"ngo-donation-ledger/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting NGO Donation Ledger")

	// The owner identity must be designated before the process serves
	// traffic; it is immutable for the process lifetime.
	owner := domain.Identity(cfg.Owner.Identity)
	if owner.IsZero() {
		log.Fatal().Msg("owner identity is not configured (NDL_OWNER_IDENTITY)")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize NATS notifier
	notifier, err := messaging.NewNATSNotifier(cfg.NATS.URL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer notifier.Close()
	log.Info().Msg("NATS connected")

	// Initialize repositories
	ngoRepo := pgStorage.NewNGORepo(pool)
	donationRepo := pgStorage.NewDonationRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	verifierRepo := pgStorage.NewVerifierRepo(pool)
	accountRepo := pgStorage.NewAccountRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize metrics
	m := metrics.New()

	// Initialize core services
	hashSvc := service.NewHashService()
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, walletRepo, hashSvc, tokenSvc, log)
	verifierSvc := service.NewVerifierService(verifierRepo, notifier, m, owner, log)
	registrySvc := service.NewRegistryService(ngoRepo, walletRepo, transactor, verifierSvc, notifier, m, log)
	donationSvc := service.NewDonationService(donationRepo, ngoRepo, walletRepo, transactor, notifier, m, log)
	walletSvc := service.NewWalletService(walletRepo, transactor, log)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)
	natsHealth := messaging.NewHealthCheck(notifier)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		RegistrySvc:    registrySvc,
		DonationSvc:    donationSvc,
		VerifierSvc:    verifierSvc,
		WalletSvc:      walletSvc,
		TokenSvc:       tokenSvc,
		NGORepo:        ngoRepo,
		DonationRepo:   donationRepo,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, natsHealth},
		Logger:         log,
	})

	// HTTP server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
