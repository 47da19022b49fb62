package repositories

import (
	"context"

	"retail-console/internal/core/domain"
)

// TokenStore persists the operator's access/refresh pair.
// Tokens are opaque strings; no validation is performed.
type TokenStore interface {
	// Save overwrites any existing pair
	Save(ctx context.Context, tokens domain.TokenPair) error
	Access(ctx context.Context) (string, bool)
	Refresh(ctx context.Context) (string, bool)
	// Clear removes both tokens
	Clear(ctx context.Context) error
}
