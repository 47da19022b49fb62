package services

import (
	"context"

	"retail-console/internal/core/domain"
)

// ProfileAPI fetches the current operator's profile
type ProfileAPI interface {
	Me(ctx context.Context) (*domain.CurrentUser, error)
}

// CredentialsAPI exchanges login credentials for a token pair
type CredentialsAPI interface {
	Credentials(ctx context.Context, phoneNumber, password string) (domain.TokenPair, error)
}

// RefreshAPI exchanges the stored refresh token for a new access token
type RefreshAPI interface {
	Refresh(ctx context.Context) (string, error)
}

// Resolver resolves the current operator from the stored token
type Resolver interface {
	Resolve(ctx context.Context) *domain.CurrentUser
}
