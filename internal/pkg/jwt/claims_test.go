package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("not-the-console's-key"))
	require.NoError(t, err)
	return s
}

func TestInspect(t *testing.T) {
	exp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	token := signed(t, Claims{
		AdminID:     "a-1",
		Name:        "Ada",
		Role:        "moderator",
		Permissions: []string{"users.view", "reports.manage"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.Name)
	assert.True(t, claims.HasPermission("users.view"))
	assert.False(t, claims.HasPermission("payments.manage"))
	assert.False(t, claims.ExpiredAt(exp.Add(-time.Second)))
	assert.True(t, claims.ExpiredAt(exp))
}

func TestInspect_OpaqueToken(t *testing.T) {
	_, err := Inspect("3f9a1c-opaque")
	assert.ErrorIs(t, err, ErrOpaqueToken)
}

func TestExpiredAt_NoExpClaim(t *testing.T) {
	c := &Claims{}
	assert.False(t, c.ExpiredAt(time.Now().Add(100*365*24*time.Hour)))
}
