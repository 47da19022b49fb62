package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"retail-console/internal/adapters/apiclient"
	"retail-console/internal/core/domain"
	"retail-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ProxyHandler forwards the SPA's API calls to the backend through the
// authenticated client
type ProxyHandler struct {
	client *apiclient.Client
}

// NewProxyHandler creates a new proxy handler
func NewProxyHandler(client *apiclient.Client) *ProxyHandler {
	return &ProxyHandler{client: client}
}

// Forward relays the request under /api/* to the same path on the backend
func (h *ProxyHandler) Forward(c *fiber.Ctx) error {
	target := c.Params("*")
	if strings.Contains(target, "..") {
		return response.BadRequest(c, "Invalid API path")
	}
	if qs := c.Request().URI().QueryString(); len(qs) > 0 {
		target += "?" + string(qs)
	}

	var in any
	if body := c.Body(); len(body) > 0 {
		if !json.Valid(body) {
			return response.BadRequest(c, "Request body must be JSON")
		}
		in = json.RawMessage(append([]byte(nil), body...))
	}

	var out apiclient.RawResponse
	if err := h.client.Do(c.UserContext(), c.Method(), target, in, &out); err != nil {
		var apiErr *apiclient.APIError
		switch {
		case errors.Is(err, apiclient.ErrInvalidPath):
			return response.BadRequest(c, "Invalid API path")
		case errors.Is(err, domain.ErrRefresh):
			return response.Unauthorized(c, "Session expired, please log in again")
		case errors.Is(err, domain.ErrNetwork):
			return response.BadGateway(c, apiclient.DefaultErrorMessage)
		case errors.As(err, &apiErr):
			return response.Error(c, apiErr.Status, apiErr.Message)
		default:
			log.Printf("❌ Proxy %s %s: %v", c.Method(), target, err)
			return response.BadGateway(c, apiclient.DefaultErrorMessage)
		}
	}

	if len(out.Body) == 0 {
		return c.SendStatus(out.Status)
	}
	if out.ContentType != "" {
		c.Set(fiber.HeaderContentType, out.ContentType)
	}
	return c.Status(out.Status).Send(out.Body)
}
