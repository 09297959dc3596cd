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

	"golang.org/x/sync/errgroup"

	"pharmaledger/internal/config"
	"pharmaledger/internal/database"
	"pharmaledger/internal/logger"
	"pharmaledger/internal/metrics"
	"pharmaledger/internal/server"
)

// @title           PharmaLedger API
// @version         1.0
// @description     Shift cash reconciliation, vendor and personal ledgers, and reports for a retail pharmacy.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	m := metrics.New()
	svc := server.NewServices(dbManager.DB(), appConfig, m)

	if appConfig.BootstrapAdminPassword != "" {
		admin, err := svc.Users.EnsureBootstrapAdmin(appConfig.BootstrapAdminUsername, appConfig.BootstrapAdminPassword)
		if err != nil {
			return fmt.Errorf("failed to create bootstrap admin: %w", err)
		}
		if admin != nil {
			log.Infow("bootstrap super user created", "username", admin.Username)
		}
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           server.NewRouter(appConfig, svc, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting PharmaLedger server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
