// internal/pkg/jwt/claims.go
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned when the session token is not a JWT. Opaque tokens
// are valid; they simply carry no claims the console can read.
var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims are the admin API access-token claims the console reads. The console
// never holds the signing key, so claims are informational only: the API stays
// the authority and answers 401 for anything it rejects.
type Claims struct {
	AdminID     string   `json:"admin_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasPermission checks if the claims contain a specific permission
func (c *Claims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ExpiredAt reports whether the exp claim is at or before now. Tokens without
// exp never expire on the client side.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// Inspect decodes the token's claims without verifying the signature.
func Inspect(token string) (*Claims, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrOpaqueToken
		}
		return nil, fmt.Errorf("failed to inspect token: %w", err)
	}
	return claims, nil
}
