// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"admin-console/internal/domain/admin"
	xerrors "admin-console/internal/pkg/errors"
	"admin-console/internal/pkg/jwt"
	"admin-console/internal/pkg/session"
	"admin-console/internal/transport"

	"go.uber.org/zap"
)

const (
	loginPath   = "admin/login"
	logoutPath  = "admin/logout"
	profilePath = "admin/profile"
)

// ErrProfileUnavailable means the session started but the profile could not be loaded.
var ErrProfileUnavailable = errors.New("signed in but the admin profile could not be loaded")

// Doer is the transport call the service needs.
type Doer interface {
	Do(ctx context.Context, req transport.Request, out any) (*transport.Envelope, error)
}

// AuthService exchanges credentials with the admin API and drives the session gate.
type AuthService struct {
	client Doer
	gate   *session.Gate
	logger *zap.Logger
}

func NewAuthService(client Doer, gate *session.Gate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		client: client,
		gate:   gate,
		logger: logger,
	}
}

// Login signs in, persists the token, then loads the admin's profile.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", xerrors.ErrInvalidInput)
	}

	var resp admin.LoginResponse
	_, err := s.client.Do(ctx, transport.Request{
		Method:    http.MethodPost,
		Path:      loginPath,
		Body:      admin.LoginRequest{Email: email, Password: password},
		Anonymous: true,
	}, &resp)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	principal := principalFromProfile(resp.Admin)
	if principal == nil {
		// Fall back to the token's claims until the profile arrives.
		if claims, err := jwt.Inspect(resp.Token); err == nil {
			principal = session.PrincipalFromClaims(claims)
		}
	}
	if err := s.gate.Login(ctx, resp.Token, principal); err != nil {
		return nil, err
	}
	s.logger.Info("admin signed in", zap.String("email", email))

	p, err := s.RefreshProfile(ctx)
	if err != nil {
		return s.gate.Principal(), fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
	}
	return p, nil
}

// RefreshProfile reloads the signed-in admin's profile and permissions.
func (s *AuthService) RefreshProfile(ctx context.Context) (*session.Principal, error) {
	if !s.gate.CheckAuth(ctx) {
		return nil, xerrors.ErrSessionExpired
	}

	var profile admin.Profile
	if _, err := s.client.Do(ctx, transport.Request{Method: http.MethodGet, Path: profilePath}, &profile); err != nil {
		s.logger.Warn("failed to load admin profile", zap.Error(err))
		return nil, err
	}

	s.gate.SetPrincipal(ctx, principalFromProfile(&profile))
	p := s.gate.Principal()
	if p == nil {
		// Logged out while the profile was in flight.
		return nil, xerrors.ErrSessionExpired
	}
	return p, nil
}

// Logout tells the API to drop the token, then ends the local session
// whatever the API answered.
func (s *AuthService) Logout(ctx context.Context) {
	if s.gate.CheckAuth(ctx) {
		if _, err := s.client.Do(ctx, transport.Request{Method: http.MethodPost, Path: logoutPath}, nil); err != nil {
			s.logger.Debug("upstream logout failed", zap.Error(err))
		}
	}
	s.gate.Logout(ctx)
	s.logger.Info("admin signed out")
}

// Principal returns the signed-in admin, or nil.
func (s *AuthService) Principal() *session.Principal {
	return s.gate.Principal()
}

func principalFromProfile(p *admin.Profile) *session.Principal {
	if p == nil || p.ID == 0 {
		return nil
	}
	return &session.Principal{
		ID:          strconv.FormatInt(p.ID, 10),
		Name:        p.FullName,
		Email:       p.Email,
		Role:        p.Role,
		Permissions: append([]string(nil), p.Permissions...),
	}
}
