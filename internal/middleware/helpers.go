// internal/middleware/helpers.go
package middleware

import (
	"admin-console/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

// GetPrincipal gets the signed-in admin from context
func GetPrincipal(c *gin.Context) (*session.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*session.Principal)
	return p, ok && p != nil
}

// GetAdminID gets the signed-in admin's ID from context
func GetAdminID(c *gin.Context) (string, bool) {
	v, exists := c.Get(adminIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// GetPermissions gets the admin's permissions from context
func GetPermissions(c *gin.Context) []string {
	permissions, exists := c.Get(permissionsKey)
	if !exists {
		return []string{}
	}

	permissionsList, ok := permissions.([]string)
	if !ok {
		return []string{}
	}

	return permissionsList
}

// HasPermission checks the context's permission list. Unknown keys deny.
func HasPermission(c *gin.Context, permission string) bool {
	if permission == "" {
		return false
	}
	for _, p := range GetPermissions(c) {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAuthenticated checks if request passed Auth() with a loaded principal
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(principalKey)
	return exists
}

// GetRequestID gets the request ID set by LoggingMiddleware
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
