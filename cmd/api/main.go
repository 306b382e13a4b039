package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/buildmarket/engine/internal/api"
	"github.com/buildmarket/engine/internal/api/handlers"
	"github.com/buildmarket/engine/internal/repository"
	"github.com/buildmarket/engine/internal/services"
	"github.com/buildmarket/engine/pkg/config"
	"github.com/buildmarket/engine/pkg/database"
	"github.com/buildmarket/engine/pkg/logger"
)

// @title           BuildMarket Engine API
// @version         1.0
// @description     Construction marketplace backend for project funding and stage progression

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting BuildMarket Engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Asynq client for notification dispatch
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer asynqClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	contractorRepo := repository.NewContractorRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	stageRepo := repository.NewStageRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	gcRequestRepo := repository.NewGCRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	jwtSecret := []byte(cfg.JWTSecret)

	// Initialize services
	authService := services.NewAuthService(userRepo, contractorRepo, jwtSecret)
	projectService := services.NewProjectService(projectRepo, contractorRepo)
	gcRequestService := services.NewGCRequestService(db, projectRepo, gcRequestRepo, contractorRepo, asynqClient)
	fundingService := services.NewFundingService(db, projectRepo, asynqClient)
	stageService := services.NewStageService(db, projectRepo, stageRepo, contractorRepo, asynqClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectsHandler := handlers.NewProjectsHandler(projectService, gcRequestService, fundingService)
	stagesHandler := handlers.NewStagesHandler(stageService)
	gcRequestsHandler := handlers.NewGCRequestsHandler(gcRequestService)
	paymentsHandler := handlers.NewPaymentsHandler(paymentRepo)
	notificationsHandler := handlers.NewNotificationsHandler(notificationRepo)

	// Create router with dependencies
	router := api.NewRouter(api.Dependencies{
		HMACSecret:           jwtSecret,
		AuthHandler:          authHandler,
		ProjectsHandler:      projectsHandler,
		StagesHandler:        stagesHandler,
		GCRequestsHandler:    gcRequestsHandler,
		PaymentsHandler:      paymentsHandler,
		NotificationsHandler: notificationsHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
