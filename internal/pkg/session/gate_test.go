package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"admin-console/internal/credstore"
	"admin-console/internal/notify"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) (*Gate, *credstore.MemoryStore, *notify.Recorder) {
	t.Helper()
	store := credstore.NewMemoryStore()
	rec := notify.NewRecorder()
	g := NewGate(store, Options{Notifier: rec, Navigator: rec}, nil)
	return g, store, rec
}

func persisted(t *testing.T, store credstore.Store) bool {
	t.Helper()
	_, err := store.Get(context.Background(), DefaultTokenKey)
	if errors.Is(err, credstore.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestGate_LoginLogoutLifecycle(t *testing.T) {
	ctx := context.Background()
	g, store, rec := newTestGate(t)

	assert.False(t, g.CheckAuth(ctx))
	assert.Equal(t, StateLoggedOut, g.State())

	require.NoError(t, g.Login(ctx, "tok-1", nil))
	assert.True(t, g.CheckAuth(ctx))
	assert.Equal(t, StateLoggedIn, g.State())

	g.SetPrincipal(ctx, &Principal{ID: "a-1", Permissions: []string{"users.view"}})
	assert.Equal(t, StatePrincipalLoaded, g.State())

	g.Logout(ctx)
	assert.False(t, g.IsAuthenticated())
	assert.Nil(t, g.Principal())
	assert.False(t, persisted(t, store))
	assert.Equal(t, []string{DefaultLoginPath}, rec.Paths())

	// Idempotent.
	g.Logout(ctx)
	assert.False(t, g.CheckAuth(ctx))
	assert.Equal(t, StateLoggedOut, g.State())
}

func TestGate_CheckAuthIsIdempotent(t *testing.T) {
	ctx := context.Background()
	g, store, _ := newTestGate(t)
	require.NoError(t, store.Set(ctx, DefaultTokenKey, "side-channel", time.Hour))

	for i := 0; i < 5; i++ {
		assert.True(t, g.CheckAuth(ctx))
	}
	assert.Equal(t, uint64(0), g.Epoch())
}

func TestGate_AuthFlagTracksPersistedToken(t *testing.T) {
	ctx := context.Background()
	g, store, _ := newTestGate(t)
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		switch r.Intn(5) {
		case 0:
			g.CheckAuth(ctx)
		case 1:
			g.Logout(ctx)
		case 2:
			g.SetPrincipal(ctx, &Principal{ID: "a-1"})
		case 3:
			g.SetPrincipal(ctx, nil)
		case 4:
			require.NoError(t, g.Login(ctx, "tok", nil))
		}
		assert.Equal(t, persisted(t, store), g.IsAuthenticated(), "step %d", i)
		if !g.IsAuthenticated() {
			assert.Nil(t, g.Principal(), "step %d", i)
		}
	}
}

func TestGate_SetPrincipalWithoutTokenIsIgnored(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newTestGate(t)

	g.SetPrincipal(ctx, &Principal{ID: "a-1", Permissions: []string{"users.view"}})
	assert.False(t, g.IsAuthenticated())
	assert.Nil(t, g.Principal())
	assert.False(t, g.HasPermission("users.view"))
}

func TestGate_SetPrincipalAdoptsSideChannelToken(t *testing.T) {
	ctx := context.Background()
	g, store, _ := newTestGate(t)
	require.NoError(t, store.Set(ctx, DefaultTokenKey, "written-elsewhere", time.Hour))

	g.SetPrincipal(ctx, &Principal{ID: "a-1"})
	assert.True(t, g.IsAuthenticated())
	tok, ok := g.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "written-elsewhere", tok)
}

func TestGate_HasPermissionFailsClosed(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newTestGate(t)

	for _, k := range []string{"", "users.view", "anything"} {
		assert.False(t, g.HasPermission(k))
	}

	require.NoError(t, g.Login(ctx, "tok", &Principal{Permissions: []string{"users.view"}}))
	assert.True(t, g.HasPermission("users.view"))
	assert.False(t, g.HasPermission("users.manage"))
	assert.False(t, g.HasPermission(""))

	g.Logout(ctx)
	assert.False(t, g.HasPermission("users.view"))
}

func TestGate_PrincipalIsCopied(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newTestGate(t)
	p := &Principal{Permissions: []string{"users.view"}}
	require.NoError(t, g.Login(ctx, "tok", p))

	p.Permissions[0] = "payments.manage"
	assert.False(t, g.HasPermission("payments.manage"))
	assert.True(t, g.HasPermission("users.view"))
}

func TestGate_ExpiredJWTIsTreatedAsLoggedOut(t *testing.T) {
	ctx := context.Background()
	g, store, _ := newTestGate(t)
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	g.SetClock(func() time.Time { return now })

	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(now.Add(time.Minute)),
	})
	signed, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	require.NoError(t, g.Login(ctx, signed, nil))
	assert.True(t, g.CheckAuth(ctx))

	now = now.Add(2 * time.Minute)
	assert.False(t, g.CheckAuth(ctx))
	assert.False(t, persisted(t, store))
	assert.Equal(t, uint64(1), g.Epoch())
}

func TestGate_InvalidateIsDeduplicated(t *testing.T) {
	ctx := context.Background()
	g, store, rec := newTestGate(t)
	require.NoError(t, g.Login(ctx, "tok", &Principal{ID: "a-1"}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	effective := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Invalidate(ctx, "tok") {
				mu.Lock()
				effective++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, effective)
	assert.Equal(t, 1, rec.Count(notify.LevelWarning))
	assert.False(t, g.IsAuthenticated())
	assert.False(t, persisted(t, store))
	assert.Equal(t, uint64(1), g.Epoch())
}

func TestGate_InvalidateIgnoresStaleToken(t *testing.T) {
	ctx := context.Background()
	g, _, rec := newTestGate(t)
	require.NoError(t, g.Login(ctx, "new-token", nil))

	assert.False(t, g.Invalidate(ctx, "old-token"))
	assert.True(t, g.IsAuthenticated())
	assert.Empty(t, rec.Notices())
}

func TestGate_GuardNavigatesWhenLoggedOut(t *testing.T) {
	ctx := context.Background()
	g, _, rec := newTestGate(t)

	assert.False(t, g.Guard(ctx))
	assert.Equal(t, []string{DefaultLoginPath}, rec.Paths())

	require.NoError(t, g.Login(ctx, "tok", nil))
	rec.Reset()
	assert.True(t, g.Guard(ctx))
	assert.Empty(t, rec.Paths())
}

func TestGate_AttachReplacesSurface(t *testing.T) {
	ctx := context.Background()
	g, _, first := newTestGate(t)
	second := notify.NewRecorder()
	g.Attach(second, nil)

	require.NoError(t, g.Login(ctx, "tok-1", nil))
	assert.True(t, g.Invalidate(ctx, "tok-1"))

	assert.Empty(t, first.Notices())
	assert.Equal(t, []string{"/login"}, first.Paths())
	require.Len(t, second.Notices(), 1)
	assert.Equal(t, NoticeSource, second.Notices()[0].Source)
}
