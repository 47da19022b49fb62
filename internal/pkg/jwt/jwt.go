package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrNoExpiry     = errors.New("token has no expiry")
)

// ParseUnverified decodes an access token without checking its signature.
// The console never holds the signing key; it only reads the claims to plan
// refreshes. Never use the result for authorization.
func ParseUnverified(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of a token
func ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := ParseUnverified(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// ExpiresWithin reports whether the token expires before now+window
func ExpiresWithin(tokenString string, window time.Duration, now time.Time) (bool, error) {
	exp, err := ExpiresAt(tokenString)
	if err != nil {
		return false, err
	}
	return exp.Before(now.Add(window)), nil
}
