package handlers

import (
	"retail-console/internal/core/services"
	"retail-console/internal/pkg/pagination"
	"retail-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler lists the error toasts raised by backend calls
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the most recent notifications, newest first
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	items, total := h.notifications.Recent(params.Offset, params.Limit)
	return response.Paginated(c, items, params, total)
}
