// internal/pkg/session/types.go
package session

import (
	"context"

	"admin-console/internal/pkg/jwt"
)

// Principal is the signed-in admin's profile and permission set.
type Principal struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (p *Principal) clone() *Principal {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Permissions = append([]string(nil), p.Permissions...)
	return &cp
}

// PrincipalFromClaims builds a principal from access-token claims.
func PrincipalFromClaims(c *jwt.Claims) *Principal {
	if c == nil {
		return nil
	}
	id := c.AdminID
	if id == "" {
		id = c.Subject
	}
	return &Principal{
		ID:          id,
		Name:        c.Name,
		Email:       c.Email,
		Role:        c.Role,
		Permissions: append([]string(nil), c.Permissions...),
	}
}

type State string

const (
	StateLoggedOut       State = "logged_out"
	StateLoggedIn        State = "logged_in"
	StatePrincipalLoaded State = "principal_loaded"
)

// Session is the view of the gate that screens depend on.
type Session interface {
	CheckAuth(ctx context.Context) bool
	SetPrincipal(ctx context.Context, p *Principal)
	Logout(ctx context.Context)
	HasPermission(key string) bool
	Epoch() uint64
}
