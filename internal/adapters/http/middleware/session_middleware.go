package middleware

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	"retail-console/internal/core/domain"
	"retail-console/internal/core/policy"
	"retail-console/internal/core/services"
	"retail-console/internal/pkg/metrics"
	"retail-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

var loginPattern = policy.Compile(policy.LoginPath)

// SessionSource exposes the process-wide session. Initialize returns at once
// after the first resolution has finished.
type SessionSource interface {
	Initialize(ctx context.Context) services.Snapshot
}

// CurrentUser returns the operator stored by RequireSession or PageGate
func CurrentUser(c *fiber.Ctx) (*domain.CurrentUser, bool) {
	user, ok := c.Locals("user").(*domain.CurrentUser)
	return user, ok && user != nil
}

// RequireSession rejects API calls while no operator is logged in
func RequireSession(sessions SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := sessions.Initialize(c.UserContext())
		if !snap.Authenticated() {
			return response.Unauthorized(c, "Login required")
		}

		c.Locals("user", snap.User)
		return c.Next()
	}
}

// PageGate decides every page navigation before the SPA is served:
// anonymous operators go to the login page, operators whose role may not
// open the page go to their role's landing page.
func PageGate(sessions SessionSource, evaluator *policy.Evaluator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
			return c.Next()
		}
		p := c.Path()
		if IsAssetPath(p) {
			return c.Next()
		}

		snap := sessions.Initialize(c.UserContext())
		var user *domain.CurrentUser
		if snap.Authenticated() {
			user = snap.User
		}

		if loginPattern.Match(p) {
			if user != nil {
				return c.Redirect(policy.FallbackPath(user.Role), fiber.StatusFound)
			}
			return c.Next()
		}

		decision := evaluator.Decide(user, p)
		switch {
		case decision.Allow:
			metrics.PageDecisions.WithLabelValues("allow").Inc()
			c.Locals("user", user)
			return c.Next()
		case errors.Is(decision.Err, domain.ErrAuthenticationRequired):
			metrics.PageDecisions.WithLabelValues("login").Inc()
			return c.Redirect(decision.Redirect+"?next="+url.QueryEscape(p), fiber.StatusFound)
		case decision.Redirect != "":
			metrics.PageDecisions.WithLabelValues("denied").Inc()
			return c.Redirect(decision.Redirect, fiber.StatusFound)
		default:
			metrics.PageDecisions.WithLabelValues("denied").Inc()
			return response.Forbidden(c, "You don't have permission to open this page")
		}
	}
}

// IsAssetPath reports whether p is a static asset rather than a page
func IsAssetPath(p string) bool {
	return strings.HasPrefix(p, "/assets/") || path.Ext(p) != ""
}
