// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"admin-console/internal/pkg/response"
	"admin-console/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

const (
	principalKey   = "principal"
	permissionsKey = "permissions"
	adminIDKey     = "admin_id"
)

// SessionGuard is the part of the session gate the middleware needs.
type SessionGuard interface {
	Guard(ctx context.Context) bool
	HasPermission(key string) bool
	Principal() *session.Principal
}

// accessTokenParam carries the access token for browser websocket
// handshakes, which cannot set headers.
const accessTokenParam = "access_token"

type AuthMiddleware struct {
	gate        SessionGuard
	accessToken []byte
}

func NewAuthMiddleware(gate SessionGuard, accessToken string) *AuthMiddleware {
	return &AuthMiddleware{
		gate:        gate,
		accessToken: []byte(accessToken),
	}
}

// Client authenticates the HTTP caller with the console access token, sent as
// "Authorization: Bearer <token>" or the access_token query parameter. It fails
// closed when no access token is configured.
func (m *AuthMiddleware) Client() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.Query(accessTokenParam)
		if h := c.GetHeader("Authorization"); h != "" {
			presented = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		if len(m.accessToken) == 0 || subtle.ConstantTimeCompare([]byte(presented), m.accessToken) != 1 {
			response.Unauthorized(c, "invalid access token")
			return
		}
		c.Next()
	}
}

// Auth rejects requests while the console has no persisted session token.
// The gate re-reads the credential store on every call.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.gate.Guard(c.Request.Context()) {
			response.Unauthorized(c, "not signed in")
			return
		}

		if p := m.gate.Principal(); p != nil {
			c.Set(principalKey, p)
			c.Set(adminIDKey, p.ID)
			c.Set(permissionsKey, p.Permissions)
		}

		c.Next()
	}
}

// RequirePermission requires at least one of the given permissions.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range permissions {
			if m.gate.HasPermission(p) {
				c.Next()
				return
			}
		}

		err := errors.New("admin does not have required permission")
		response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
			"required_permissions": permissions,
			"admin_permissions":    GetPermissions(c),
		})
	}
}

// RequireAllPermissions requires every given permission.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireAllPermissions(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range permissions {
			if !m.gate.HasPermission(p) {
				err := errors.New("admin does not have all required permissions")
				response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
					"required_permissions": permissions,
					"missing_permission":   p,
				})
				return
			}
		}
		c.Next()
	}
}
