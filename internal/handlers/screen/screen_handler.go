// internal/handlers/screen/screen_handler.go
package screen

import (
	"errors"
	"net/http"

	xerrors "admin-console/internal/pkg/errors"
	"admin-console/internal/pkg/response"
	"admin-console/internal/resource"
	"admin-console/internal/screens"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScreenHandler struct {
	registry *screens.Registry
	perms    screens.PermissionChecker
	logger   *zap.Logger
}

func NewScreenHandler(registry *screens.Registry, perms screens.PermissionChecker, logger *zap.Logger) *ScreenHandler {
	return &ScreenHandler{
		registry: registry,
		perms:    perms,
		logger:   logger,
	}
}

type FilterRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

type PageRequest struct {
	Page int `json:"page" binding:"required"`
}

type MutationResponse struct {
	Result resource.Result `json:"result"`
	State  any             `json:"state"`
}

// ListScreens returns the screens the admin may open
func (h *ScreenHandler) ListScreens(c *gin.Context) {
	response.Success(c, http.StatusOK, "screens retrieved", h.registry.Visible(h.perms))
}

// Mount loads the screen's current page
func (h *ScreenHandler) Mount(c *gin.Context) {
	s, ok := h.access(c, false)
	if !ok {
		return
	}
	h.respond(c, s, s.Mount(c.Request.Context()), "screen loaded")
}

// GetState returns the screen's state without fetching
func (h *ScreenHandler) GetState(c *gin.Context) {
	s, ok := h.access(c, false)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "screen state", s.Snapshot())
}

// Refresh reloads the current page with the current filters
func (h *ScreenHandler) Refresh(c *gin.Context) {
	s, ok := h.access(c, false)
	if !ok {
		return
	}
	h.respond(c, s, s.Refresh(c.Request.Context()), "screen refreshed")
}

// SetFilter changes one filter and goes back to page 1. Search filters are
// debounced and answered with 202 before the fetch runs.
func (h *ScreenHandler) SetFilter(c *gin.Context) {
	s, ok := h.access(c, false)
	if !ok {
		return
	}

	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	fetch, err := s.RequestFilterChange(req.Key, req.Value)
	if err != nil {
		response.FromError(c, "invalid filter", err)
		return
	}
	if err := s.Execute(c.Request.Context(), fetch); err != nil {
		h.respond(c, s, err, "")
		return
	}
	if fetch.Debounce > 0 {
		response.Success(c, http.StatusAccepted, "filter scheduled", s.Snapshot())
		return
	}
	response.Success(c, http.StatusOK, "filter applied", s.Snapshot())
}

// GoToPage moves to another page. Pages outside 1..total_pages change nothing.
func (h *ScreenHandler) GoToPage(c *gin.Context) {
	s, ok := h.access(c, false)
	if !ok {
		return
	}

	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	fetch, ok := s.RequestPage(req.Page)
	if !ok {
		response.Success(c, http.StatusOK, "page out of range", s.Snapshot())
		return
	}
	h.respond(c, s, s.Execute(c.Request.Context(), fetch), "page loaded")
}

// Mutate creates, updates, deletes or changes the status of one item
func (h *ScreenHandler) Mutate(c *gin.Context) {
	s, ok := h.access(c, true)
	if !ok {
		return
	}

	var m resource.Mutation
	if err := c.ShouldBindJSON(&m); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	res, err := s.Mutate(c.Request.Context(), m)
	if err != nil {
		h.logger.Info("mutation failed",
			zap.String("kind", s.Kind().Name),
			zap.String("mutation", string(m.Kind)),
			zap.String("target_id", m.TargetID),
			zap.Error(err),
		)
		response.FromError(c, "mutation failed", err)
		return
	}

	status := http.StatusOK
	if m.Kind == resource.MutationCreate {
		status = http.StatusCreated
	}
	response.Success(c, status, res.Message, MutationResponse{Result: res, State: s.Snapshot()})
}

func (h *ScreenHandler) access(c *gin.Context, manage bool) (screens.Screen, bool) {
	s, err := h.registry.Access(h.perms, c.Param("kind"), manage)
	if err != nil {
		if errors.Is(err, xerrors.ErrForbidden) {
			h.logger.Warn("screen access denied",
				zap.String("kind", c.Param("kind")),
				zap.Bool("manage", manage),
			)
		}
		response.FromError(c, "screen not available", err)
		return nil, false
	}
	return s, true
}

// respond answers with the screen state. A superseded load is not a failure:
// the newer load owns the state.
func (h *ScreenHandler) respond(c *gin.Context, s screens.Screen, err error, message string) {
	if err != nil && !errors.Is(err, resource.ErrSuperseded) {
		response.FromError(c, "failed to load "+s.Kind().Name, err)
		return
	}
	response.Success(c, http.StatusOK, message, s.Snapshot())
}
