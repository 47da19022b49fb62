package handlers

import (
	"errors"

	"retail-console/internal/config"
	"retail-console/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg      *config.Config
	sessions *services.SessionManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, sessions *services.SessionManager) *HealthHandler {
	return &HealthHandler{cfg: cfg, sessions: sessions}
}

// Root returns the agent status
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 Retail console agent is running",
		"mode":    h.cfg.AppMode,
		"backend": h.cfg.API.BaseURL,
	})
}

// HealthCheck reports agent, token database and session health
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "healthy"
	if err := config.HealthCheck(); err != nil {
		dbStatus = "unhealthy"
		if errors.Is(err, config.ErrDatabaseDisabled) {
			dbStatus = "disabled"
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
			"session":  h.sessions.Snapshot().State,
		},
	})
}
