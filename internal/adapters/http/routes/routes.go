package routes

import (
	"path/filepath"
	"time"

	"retail-console/internal/adapters/apiclient"
	"retail-console/internal/adapters/http/handlers"
	"retail-console/internal/adapters/http/middleware"
	"retail-console/internal/config"
	"retail-console/internal/core/policy"
	"retail-console/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps holds everything the routes need
type Deps struct {
	Config        *config.Config
	Client        *apiclient.Client
	Sessions      *services.SessionManager
	Notifications *services.NotificationService
	Evaluator     *policy.Evaluator
}

// Setup configures all routes for the console agent
func Setup(app *fiber.App, deps Deps) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.Config, deps.Sessions)
	authHandler := handlers.NewAuthHandler(deps.Sessions)
	proxyHandler := handlers.NewProxyHandler(deps.Client)
	calcHandler := handlers.NewCalcHandler()
	notificationHandler := handlers.NewNotificationHandler(deps.Notifications)

	// Health & metrics
	app.Get("/status", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Session routes (public)
	authRoutes := app.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler)

	// Backend proxy (logged-in operator)
	apiRoutes := app.Group("/api", middleware.NoCacheHeaders(), middleware.RequireSession(deps.Sessions))
	apiRoutes.All("/*", proxyHandler.Forward)

	// Calculators
	calcRoutes := app.Group("/calc")
	setupCalcRoutes(calcRoutes, calcHandler)

	app.Get("/notifications", middleware.NoCacheHeaders(), notificationHandler.List)

	// SPA pages and assets
	setupPageRoutes(app, deps)
}

// setupAuthRoutes configures session routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler) {
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/logout", handler.Logout)
	router.Get("/me", handler.Me)
	router.Post("/refresh-user", handler.RefreshUser)
}

// setupCalcRoutes configures derived-value calculator routes
func setupCalcRoutes(router fiber.Router, handler *handlers.CalcHandler) {
	router.Post("/recycling-profit", handler.RecyclingProfit)
	router.Post("/currency", handler.Currency)
	router.Post("/debt-remainder", handler.DebtRemainder)
}

// setupPageRoutes gates page navigations and serves the SPA bundle.
// Unknown paths fall back to index.html so the SPA router can handle them.
func setupPageRoutes(app *fiber.App, deps Deps) {
	dir := deps.Config.StaticDir
	evaluator := deps.Evaluator
	if evaluator == nil {
		evaluator = policy.NewConsoleEvaluator()
	}

	app.Use(middleware.PageGate(deps.Sessions, evaluator))
	app.Use("/assets", middleware.AssetCache(24*time.Hour))
	app.Static("/", dir, fiber.Static{
		Compress: true,
		Index:    "index.html",
	})

	app.Get("/*", middleware.NoCacheHeaders(), func(c *fiber.Ctx) error {
		if middleware.IsAssetPath(c.Path()) {
			return fiber.ErrNotFound
		}
		return c.SendFile(filepath.Join(dir, "index.html"))
	})
}
