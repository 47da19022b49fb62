// Package policy decides which console pages an operator may open.
package policy

import (
	"retail-console/internal/core/domain"
)

const (
	LoginPath           = "/login"
	defaultFallbackPath = "/"
	salesFallbackPath   = "/sales"
)

// Decision is the outcome of gating a navigation
type Decision struct {
	Allow    bool
	Redirect string
	Err      error
}

type compiledRule struct {
	pattern Pattern
	roles   domain.RoleSet
}

// Evaluator evaluates route access. It is pure and safe for concurrent use.
type Evaluator struct {
	salesRoutes []Pattern
	rules       []compiledRule
}

// NewEvaluator compiles the salesperson allow-list and the page rules
func NewEvaluator(salesRoutes []string, rules []RouteRule) *Evaluator {
	e := &Evaluator{}
	for _, p := range salesRoutes {
		e.salesRoutes = append(e.salesRoutes, Compile(p))
	}
	for _, r := range rules {
		e.rules = append(e.rules, compiledRule{pattern: Compile(r.Pattern), roles: r.AllowedRoles})
	}
	return e
}

// NewConsoleEvaluator returns an evaluator for the built-in console pages
func NewConsoleEvaluator() *Evaluator {
	return NewEvaluator(SalespersonRoutes, ConsoleRules)
}

// CanAccess reports whether user may open routePath given the roles the page declares
func (e *Evaluator) CanAccess(user *domain.CurrentUser, routePath string, declared domain.RoleSet) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}

	switch user.Role {
	case domain.RoleAdministrator:
		return true
	case domain.RoleSalesperson:
		for _, p := range e.salesRoutes {
			if p.Match(routePath) {
				return true
			}
		}
		return false
	default:
		return declared.Has(user.Role)
	}
}

// RolesFor returns the roles declared for the first rule matching routePath.
// Unknown pages declare no roles.
func (e *Evaluator) RolesFor(routePath string) domain.RoleSet {
	for _, r := range e.rules {
		if r.pattern.Match(routePath) {
			return r.roles
		}
	}
	return domain.NewRoleSet()
}

// Decide gates a navigation to routePath and says where to send the user instead
func (e *Evaluator) Decide(user *domain.CurrentUser, routePath string) Decision {
	if user == nil {
		return Decision{Redirect: LoginPath, Err: domain.ErrAuthenticationRequired}
	}
	if e.CanAccess(user, routePath, e.RolesFor(routePath)) {
		return Decision{Allow: true}
	}
	fallback := FallbackPath(user.Role)
	if Compile(fallback).Match(routePath) {
		// Nowhere else to send them.
		return Decision{Err: domain.ErrAuthorizationDenied}
	}
	return Decision{Redirect: fallback, Err: domain.ErrAuthorizationDenied}
}

// FallbackPath is the landing page for a role that was denied a page
func FallbackPath(role domain.Role) string {
	if role == domain.RoleSalesperson {
		return salesFallbackPath
	}
	return defaultFallbackPath
}
