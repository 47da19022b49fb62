package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"retail-console/internal/adapters/apiclient"
	"retail-console/internal/core/domain"
	"retail-console/internal/core/services"
	"retail-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the operator's login, logout and profile endpoints
type AuthHandler struct {
	sessions *services.SessionManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *services.SessionManager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// LoginRequest represents login request body
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// SessionResponse is the session as the SPA sees it
type SessionResponse struct {
	State services.SessionState `json:"state"`
	User  *domain.CurrentUser   `json:"user,omitempty"`
}

func newSessionResponse(snap services.Snapshot) SessionResponse {
	return SessionResponse{State: snap.State, User: snap.User}
}

// Login exchanges credentials for tokens and resolves the operator
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.PhoneNumber == "" {
		return response.BadRequest(c, "Phone number is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	if err := h.sessions.SignIn(c.UserContext(), req.PhoneNumber, req.Password); err != nil {
		var apiErr *apiclient.APIError
		switch {
		case errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized):
			return response.Unauthorized(c, "Invalid phone number or password")
		case errors.Is(err, domain.ErrAuthenticationRequired):
			return response.Unauthorized(c, "Could not load your profile, please log in again")
		case errors.Is(err, domain.ErrNetwork):
			return response.BadGateway(c, apiclient.DefaultErrorMessage)
		case apiErr != nil:
			return response.Error(c, apiErr.Status, apiErr.Message)
		default:
			log.Printf("❌ Login failed: %v", err)
			return response.InternalServerError(c, "Login failed")
		}
	}

	return response.Success(c, "Login successful", newSessionResponse(h.sessions.Snapshot()))
}

// Logout clears the operator's tokens
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext()); err != nil {
		log.Printf("⚠️ Logout: %v", err)
	}
	return response.Success(c, "Logout successful", nil)
}

// Me returns the current session; anonymous sessions are not an error here
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	snap := h.sessions.Initialize(c.UserContext())
	return response.Success(c, "", newSessionResponse(snap))
}

// RefreshUser re-resolves the operator's profile from the backend
func (h *AuthHandler) RefreshUser(c *fiber.Ctx) error {
	snap := h.sessions.RefreshUser(c.UserContext())
	if !snap.Authenticated() {
		return response.Unauthorized(c, "Login required")
	}
	return response.Success(c, "Profile refreshed", newSessionResponse(snap))
}
