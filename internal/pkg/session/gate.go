// internal/pkg/session/gate.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"admin-console/internal/credstore"
	"admin-console/internal/notify"
	"admin-console/internal/pkg/jwt"

	"go.uber.org/zap"
)

const (
	DefaultTokenKey  = "admin_token"
	DefaultLoginPath = "/login"
	DefaultTokenTTL  = 7 * 24 * time.Hour

	// NoticeSource marks the notices the gate sends.
	NoticeSource = "session"
)

// Options configures a Gate.
type Options struct {
	TokenKey  string
	TokenTTL  time.Duration
	LoginPath string
	Notifier  notify.Notifier
	Navigator notify.Navigator
}

// Gate owns the console's session state. The token lives in the credential
// store; Gate keeps the derived flag and the principal consistent with it.
// All state changes go through Gate's methods.
type Gate struct {
	store   credstore.Store
	opts    Options
	logger  *zap.Logger
	nowFunc func() time.Time

	mu            sync.Mutex
	token         string
	authenticated bool
	principal     *Principal
	epoch         uint64
}

var _ Session = (*Gate)(nil)

func NewGate(store credstore.Store, opts Options, logger *zap.Logger) *Gate {
	if opts.TokenKey == "" {
		opts.TokenKey = DefaultTokenKey
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Navigator == nil {
		opts.Navigator = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		store:   store,
		opts:    opts,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// SetClock overrides the clock used for token expiry checks.
func (g *Gate) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nowFunc = now
}

// Attach replaces the toast surface and router. It must be called before the
// gate is shared; nil values leave the current ones in place.
func (g *Gate) Attach(n notify.Notifier, nav notify.Navigator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n != nil {
		g.opts.Notifier = n
	}
	if nav != nil {
		g.opts.Navigator = nav
	}
}

// CheckAuth syncs the authenticated flag with the persisted token and returns it.
func (g *Gate) CheckAuth(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	token, err := g.readTokenLocked(ctx)
	if err != nil {
		g.logger.Error("failed to read session token", zap.Error(err))
		g.clearLocked()
		return false
	}
	if token == "" {
		g.clearLocked()
		return false
	}

	if token != g.token {
		// Token replaced behind our back: the principal belongs to the old one.
		g.principal = nil
	}
	g.token = token
	g.authenticated = true
	return true
}

// Login records a successful credential exchange.
func (g *Gate) Login(ctx context.Context, token string, principal *Principal) error {
	if token == "" {
		return fmt.Errorf("login returned an empty token")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Set(ctx, g.opts.TokenKey, token, g.opts.TokenTTL); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}
	g.token = token
	g.authenticated = true
	g.principal = principal.clone()

	g.logger.Info("session started", zap.Bool("principal_loaded", principal != nil))
	return nil
}

// SetPrincipal records the profile of the signed-in admin. A non-nil principal
// forces the authenticated flag on when a token has been persisted through
// another path; without a persisted token the principal is not recorded.
func (g *Gate) SetPrincipal(ctx context.Context, p *Principal) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p == nil {
		g.principal = nil
		return
	}

	token, err := g.readTokenLocked(ctx)
	if err != nil || token == "" {
		g.logger.Warn("principal ignored: no session token", zap.Error(err))
		g.clearLocked()
		return
	}
	g.token = token
	g.authenticated = true
	g.principal = p.clone()
}

// Logout removes the token and clears the principal. Safe to call repeatedly.
func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	g.logoutLocked(ctx)
	g.mu.Unlock()

	g.opts.Navigator.Navigate(g.opts.LoginPath)
}

// Invalidate handles an unauthorized answer for the given token. Only the
// first call for the current token has an effect, so concurrent 401s produce
// a single logout and a single notice.
func (g *Gate) Invalidate(ctx context.Context, token string) bool {
	g.mu.Lock()
	if token == "" || !g.authenticated || token != g.token {
		g.mu.Unlock()
		return false
	}
	g.logoutLocked(ctx)
	g.mu.Unlock()

	g.logger.Warn("session invalidated by api")
	g.opts.Notifier.Notify(notify.Notice{
		Level:   notify.LevelWarning,
		Message: "Your session has expired. Please sign in again.",
		Source:  NoticeSource,
	})
	g.opts.Navigator.Navigate(g.opts.LoginPath)
	return true
}

// Guard is the protected-view check: it must run before any protected fetch.
func (g *Gate) Guard(ctx context.Context) bool {
	if g.CheckAuth(ctx) {
		return true
	}
	g.opts.Navigator.Navigate(g.opts.LoginPath)
	return false
}

// HasPermission fails closed: no principal, empty key or unknown key all deny.
func (g *Gate) HasPermission(key string) bool {
	if key == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.authenticated || g.principal == nil {
		return false
	}
	for _, p := range g.principal.Permissions {
		if p == key {
			return true
		}
	}
	return false
}

// Token returns the current token for the transport layer.
func (g *Gate) Token(_ context.Context) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.authenticated {
		return "", false
	}
	return g.token, true
}

// IsAuthenticated returns the flag without touching the store.
func (g *Gate) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// Principal returns a copy of the current principal, or nil.
func (g *Gate) Principal() *Principal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.principal.clone()
}

// Epoch increments on every transition out of LoggedIn.
func (g *Gate) Epoch() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case !g.authenticated:
		return StateLoggedOut
	case g.principal != nil:
		return StatePrincipalLoaded
	default:
		return StateLoggedIn
	}
}

// LoginPath is where the gate sends unauthenticated operators.
func (g *Gate) LoginPath() string {
	return g.opts.LoginPath
}

// readTokenLocked returns "" for a missing or expired token. Expired JWTs are
// removed from the store.
func (g *Gate) readTokenLocked(ctx context.Context) (string, error) {
	token, err := g.store.Get(ctx, g.opts.TokenKey)
	if errors.Is(err, credstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	claims, err := jwt.Inspect(token)
	if err != nil {
		if !errors.Is(err, jwt.ErrOpaqueToken) {
			g.logger.Debug("token claims unreadable", zap.Error(err))
		}
		return token, nil
	}
	if claims.ExpiredAt(g.nowFunc()) {
		g.logger.Info("session token expired")
		if err := g.store.Remove(ctx, g.opts.TokenKey); err != nil {
			g.logger.Error("failed to remove expired token", zap.Error(err))
		}
		return "", nil
	}
	return token, nil
}

func (g *Gate) logoutLocked(ctx context.Context) {
	if err := g.store.Remove(ctx, g.opts.TokenKey); err != nil {
		g.logger.Error("failed to remove session token", zap.Error(err))
	}
	g.clearLocked()
}

func (g *Gate) clearLocked() {
	if g.authenticated {
		g.epoch++
	}
	g.token = ""
	g.authenticated = false
	g.principal = nil
}
