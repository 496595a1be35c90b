// internal/handlers/websocket/websocket.go
package handlers

import (
	"net/http"
	"slices"
	"time"

	"admin-console/internal/pkg/response"
	ws "admin-console/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler accepts upgrades from the given origins. A "*" entry
// allows any origin; requests without an Origin header are always allowed.
func NewWebSocketHandler(hub *ws.Hub, origins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades the request once the console session checks out.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	if !h.hub.Running() {
		response.Error(c, http.StatusServiceUnavailable, "websocket unavailable", ws.ErrHubClosed)
		return
	}

	auth, err := h.hub.AuthenticateClient(c.Request.Context())
	if err != nil {
		h.logger.Warn("WebSocket authentication failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		response.Error(c, http.StatusUnauthorized, "authentication failed", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, auth)
	if err := h.hub.Join(c.Request.Context(), client); err != nil {
		h.logger.Warn("WebSocket client dropped", zap.Error(err))
		conn.Close()
		return
	}

	h.logger.Info("WebSocket client connected",
		zap.String("admin_id", auth.AdminID),
		zap.String("name", auth.Name),
	)

	go client.WritePump()
	go client.ReadPump()
}

// GetStats returns WebSocket connection statistics
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"total_connections": h.hub.TotalClients(),
		"timestamp":         time.Now(),
	}

	response.Success(c, http.StatusOK, "WebSocket stats", stats)
}
