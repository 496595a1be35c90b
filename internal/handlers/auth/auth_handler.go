// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"admin-console/internal/domain/admin"
	"admin-console/internal/pkg/response"
	"admin-console/internal/pkg/session"
	"admin-console/internal/screens"
	authUsecase "admin-console/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	registry    *screens.Registry
	perms       screens.PermissionChecker
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, registry *screens.Registry, perms screens.PermissionChecker, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		registry:    registry,
		perms:       perms,
		logger:      logger,
	}
}

// MeResponse is the signed-in admin and the screens they may open.
type MeResponse struct {
	Admin   *session.Principal `json:"admin"`
	Screens []screens.Kind     `json:"screens"`
}

// ========== Login ==========

// Login exchanges credentials for a console session
func (h *AuthHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	principal, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, authUsecase.ErrProfileUnavailable) {
		h.logger.Warn("signed in without profile", zap.String("email", req.Email), zap.Error(err))
		response.Success(c, http.StatusOK, "login successful, profile unavailable", h.me(principal))
		return
	}
	if err != nil {
		h.logger.Error("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.FromError(c, "login failed", err)
		return
	}

	h.logger.Info("admin logged in",
		zap.String("admin_id", principal.ID),
		zap.String("email", principal.Email),
	)

	response.Success(c, http.StatusOK, "login successful", h.me(principal))
}

// ========== Logout ==========

// Logout ends the console session
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context())
	response.Success(c, http.StatusOK, "logout successful", nil)
}

// ========== Profile ==========

// GetMe returns the signed-in admin, loading the profile when it is missing
func (h *AuthHandler) GetMe(c *gin.Context) {
	principal := h.authService.Principal()
	if principal == nil {
		p, err := h.authService.RefreshProfile(c.Request.Context())
		if err != nil {
			response.FromError(c, "failed to get profile", err)
			return
		}
		principal = p
	}

	response.Success(c, http.StatusOK, "profile retrieved", h.me(principal))
}

// RefreshProfile reloads the profile and permissions from the API
func (h *AuthHandler) RefreshProfile(c *gin.Context) {
	principal, err := h.authService.RefreshProfile(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to refresh profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile refreshed", h.me(principal))
}

func (h *AuthHandler) me(p *session.Principal) MeResponse {
	return MeResponse{Admin: p, Screens: h.registry.Visible(h.perms)}
}
