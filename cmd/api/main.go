package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resto-ledger/internal/config"
	"resto-ledger/internal/database"
	"resto-ledger/internal/handler"
	"resto-ledger/internal/i18n"
	"resto-ledger/internal/model"
	"resto-ledger/internal/repository"
	"resto-ledger/internal/restapi"
	"resto-ledger/internal/router"
	"resto-ledger/internal/service"
	"resto-ledger/internal/session"
	"resto-ledger/internal/validation"
	"resto-ledger/internal/workflow"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("remote", cfg.Remote.BaseURL).
		Str("session_backend", cfg.Session.Backend).
		Msg("starting resto-ledger")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, closeBackend, err := newSessionBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize session backend: %w", err)
	}
	defer closeBackend()

	store := session.NewStore(backend, logger)
	if err := store.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to restore session, starting signed out")
	}

	// Remote JSON store client; a 401 from it ends the session.
	interceptor := restapi.NewInterceptor(nil, store, func() {
		logger.Info().Msg("session expired, sign in required")
	}, logger)
	remote, err := restapi.New(cfg.Remote.BaseURL, restapi.Options{
		Timeout:   cfg.Remote.Timeout,
		Transport: interceptor,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize remote client: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(remote, logger)
	dishRepo := repository.NewDishRepository(remote, store, logger)
	saleRepo := repository.NewSaleRepository(remote, store, logger)
	purchaseRepo := repository.NewPurchaseRepository(remote, store, logger)

	validator := validation.New()
	tr := i18n.New(cfg.Language)

	// Initialize services and workflows
	authService := service.NewAuthService(userRepo, store, validator, cfg.Auth.RecoveryCooldown, logger)
	dishService := service.NewDishService(dishRepo, validator, logger)
	sales := workflow.NewSalesWorkflow(saleRepo, dishRepo, validator, tr, logger)
	purchases := workflow.NewPurchasesWorkflow(purchaseRepo, validator, tr, logger)

	unsubscribe := store.Subscribe(func(user *model.User) {
		if user == nil {
			sales.Reset()
			purchases.Reset()
		}
	})
	defer unsubscribe()

	// Initialize HTTP handlers
	mux := router.New(router.Handlers{
		Auth:      handler.NewAuthHandler(authService, tr, logger),
		Dishes:    handler.NewDishHandler(dishService, tr, logger),
		Sales:     handler.NewSalesHandler(sales, logger),
		Purchases: handler.NewPurchasesHandler(purchases, logger),
	}, store, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("signed_in", store.IsAuthenticated()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newSessionBackend builds the configured session backend. Remote backends
// keep a local file mirror and fall back to it when they cannot be reached
// at startup.
func newSessionBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Backend, func(), error) {
	local := session.NewFileBackend(cfg.Session.File, logger)
	noop := func() {}

	switch cfg.Session.Backend {
	case config.SessionBackendS3:
		s3Backend, err := session.NewS3Backend(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 session backend, falling back to local file only")
			return local, noop, nil
		}
		return session.NewFallbackBackend(s3Backend, local, logger), noop, nil

	case config.SessionBackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to connect to session database, falling back to local file only")
			return local, noop, nil
		}
		pgBackend, err := session.NewPostgresBackend(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		return session.NewFallbackBackend(pgBackend, local, logger), pool.Close, nil

	default:
		logger.Info().Str("path", cfg.Session.File).Msg("using local file for the session")
		return local, noop, nil
	}
}
