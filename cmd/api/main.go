package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/okta-import/internal/api/http"
	"github.com/spec-kit/okta-import/internal/api/http/handlers"
	"github.com/spec-kit/okta-import/internal/app"
	"github.com/spec-kit/okta-import/internal/auth"
	"github.com/spec-kit/okta-import/internal/config"
	"github.com/spec-kit/okta-import/internal/observability"
	"github.com/spec-kit/okta-import/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build import components", zap.Error(err))
	}
	defer components.Close()

	authService := service.NewAuthService(cfg.Auth, components.Admins, logger)
	if _, err := authService.BootstrapAdmin(ctx, cfg.Auth.BootstrapName, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), components.Admins)

	fiberApp := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(fiberApp, logger, components.Metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Dependency{
		"postgres": components.Postgres,
		"redis":    components.Redis,
	})

	httptransport.RegisterRoutes(fiberApp, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           handlers.NewAuthHandler(authService),
		Imports:        handlers.NewImportsHandler(components.Imports),
		Metrics:        components.Metrics.Handler(),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := fiberApp.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = fiberApp.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
