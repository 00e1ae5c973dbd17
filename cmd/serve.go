package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Dosada05/sports-meet/docs"
	"github.com/Dosada05/sports-meet/handlers"
	"github.com/Dosada05/sports-meet/live"
	"github.com/Dosada05/sports-meet/repositories"
	"github.com/Dosada05/sports-meet/routes"
	"github.com/Dosada05/sports-meet/services"
	"github.com/Dosada05/sports-meet/storage"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var swagger bool
	cmd := &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), swagger)
		},
	}
	cmd.Flags().BoolVar(&swagger, "swagger", true, "serve API docs at /swagger/")
	return cmd
}

func serve(ctx context.Context, swagger bool) error {
	cfg, logger, err := setup()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("backend", cfg.StoreBackend),
		slog.Any("capabilities", cfg.Capabilities))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close document store", slog.Any("error", err))
		}
	}()

	hub := live.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)
	logger.Info("WebSocket Hub started")

	aggregates := repositories.NewAggregateRepository(store, cfg.Keys)
	fragments := repositories.NewFragmentRepository(store, cfg.Keys)
	backups := repositories.NewBackupRepository(store, cfg.Keys)
	locker := storage.NewLocker()

	queryService := services.NewQueryService(aggregates, cfg.Layout)
	documentService := services.NewDocumentService(aggregates, fragments, backups, locker, hub,
		services.DocumentServiceConfig{Layout: cfg.Layout, MaxBackups: cfg.MaxBackups}, logger)
	fragmentService := services.NewFragmentService(fragments, locker, hub, logger)
	authService := services.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash)
	if cfg.JWTSecretKey == "" {
		logger.Warn("JWT_SECRET_KEY is not set, write routes are unauthenticated")
	} else if !authService.Enabled() {
		logger.Warn("ADMIN_PASSWORD_HASH is not set, admin login is disabled")
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Options{
		Capabilities: cfg.Capabilities,
		CORSOrigins:  cfg.CORSOrigins,
		JWTSecret:    cfg.JWTSecretKey,
		Swagger:      swagger,
	}, routes.Handlers{
		Health:    handlers.NewHealthHandler(cfg.Keys.Aggregate),
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.MaxBodyBytes),
		Data:      handlers.NewDataHandler(queryService, documentService, cfg.MaxBodyBytes),
		Schedule:  handlers.NewScheduleHandler(queryService),
		Admin:     handlers.NewAdminHandler(documentService, cfg.MaxBodyBytes),
		Fragments: handlers.NewFragmentHandler(fragmentService, cfg.MaxBodyBytes),
		WebSocket: handlers.NewWebSocketHandler(hub, cfg.CORSOrigins, logger),
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		stopHub()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited", slog.Int("pid", os.Getpid()))
	return nil
}
