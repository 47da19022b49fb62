package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"retail-console/internal/adapters/apiclient"
	"retail-console/internal/adapters/http/middleware"
	"retail-console/internal/adapters/http/routes"
	"retail-console/internal/adapters/persistence/models"
	"retail-console/internal/adapters/persistence/repositories"
	"retail-console/internal/config"
	"retail-console/internal/core/policy"
	"retail-console/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Token store
	tokens, err := openTokenStore(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open token store: %v", err)
	}
	defer config.CloseDatabase()

	// Error notifications raised by backend calls
	notifications := services.NewNotificationService(100)
	notifications.Start()
	defer notifications.Stop()

	// Backend client
	client, err := apiclient.New(apiclient.Options{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		Tokens:   tokens,
		Notifier: notifications,
	})
	if err != nil {
		log.Fatalf("❌ Failed to create API client: %v", err)
	}

	// Session
	resolver := services.NewSessionResolver(tokens, client)
	sessions := services.NewSessionManager(tokens, resolver, client)
	client.OnAuthFailure(sessions.HandleAuthFailure)
	sessions.Initialize(context.Background())

	// Keep the access token fresh while the terminal is idle
	keepalive := services.NewKeepaliveService(cfg.Keepalive.Spec, cfg.Keepalive.Window, sessions, tokens, client)
	if err := keepalive.Start(); err != nil {
		log.Fatalf("❌ Failed to start keepalive: %v", err)
	}
	defer keepalive.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Retail Console Agent",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, routes.Deps{
		Config:        cfg,
		Client:        client,
		Sessions:      sessions,
		Notifications: notifications,
		Evaluator:     policy.NewConsoleEvaluator(),
	})

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Console agent starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// openTokenStore selects the token store named by TOKEN_STORE
func openTokenStore(cfg *config.Config) (repositories.TokenStore, error) {
	switch cfg.Tokens.Store {
	case "memory":
		log.Println("⚠️ Tokens are kept in memory and lost on restart")
		return repositories.NewMemoryTokenStore(), nil
	case "file":
		return repositories.NewFileTokenStore(cfg.Tokens.File, cfg.Tokens.Secret)
	case "db":
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			return nil, err
		}
		if err := models.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
		log.Println("✅ Database migration completed")
		return repositories.NewTokenRepository(db, cfg.Tokens.TerminalID), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Tokens.Store)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down console agent...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Console agent stopped gracefully")
}
