package services

import (
	"context"
	"log"

	"retail-console/internal/adapters/persistence/repositories"
	"retail-console/internal/core/domain"
)

// SessionResolver turns the stored access token into a CurrentUser
type SessionResolver struct {
	tokens  repositories.TokenStore
	profile ProfileAPI
}

// NewSessionResolver creates a new session resolver
func NewSessionResolver(tokens repositories.TokenStore, profile ProfileAPI) *SessionResolver {
	return &SessionResolver{
		tokens:  tokens,
		profile: profile,
	}
}

// Resolve returns the current operator, or nil when there is no token or the
// profile request fails for any reason. It never refreshes tokens itself.
func (r *SessionResolver) Resolve(ctx context.Context) *domain.CurrentUser {
	if _, ok := r.tokens.Access(ctx); !ok {
		return nil
	}

	user, err := r.profile.Me(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to resolve current user: %v", err)
		return nil
	}
	return user
}
