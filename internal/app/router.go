// internal/app/router.go
package app

import (
	authHandler "admin-console/internal/handlers/auth"
	journalHandler "admin-console/internal/handlers/journal"
	screenHandler "admin-console/internal/handlers/screen"
	wsHandler "admin-console/internal/handlers/websocket"
	"admin-console/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	ScreenHandler  *screenHandler.ScreenHandler
	JournalHandler *journalHandler.JournalHandler
	WSHandler      *wsHandler.WebSocketHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// Everything below requires the console access token.
	client := h.AuthMiddleware.Client()

	// ==================== WebSocket ====================
	r.GET("/ws", client, h.WSHandler.HandleConnection)

	// ==================== Sign-in Routes ====================
	authPublic := api.Group("/auth")
	authPublic.Use(client)
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(client, h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.GetMe)
		authProtected.POST("/profile/refresh", h.AuthHandler.RefreshProfile)
		authProtected.GET("/ws-stats", h.WSHandler.GetStats)
	}

	// ==================== Screens ====================
	screens := api.Group("/screens")
	screens.Use(client, h.AuthMiddleware.Auth())
	{
		screens.GET("", h.ScreenHandler.ListScreens)
		screens.GET("/:kind", h.ScreenHandler.Mount)
		screens.GET("/:kind/state", h.ScreenHandler.GetState)
		screens.POST("/:kind/refresh", h.ScreenHandler.Refresh)
		screens.POST("/:kind/filter", h.ScreenHandler.SetFilter)
		screens.POST("/:kind/page", h.ScreenHandler.GoToPage)
		screens.POST("/:kind/mutations", h.ScreenHandler.Mutate)
	}

	// ==================== Mutation Journal ====================
	if h.JournalHandler != nil {
		journal := api.Group("/journal")
		journal.Use(client, h.AuthMiddleware.Auth(), h.AuthMiddleware.RequirePermission("admins.view"))
		{
			journal.GET("", h.JournalHandler.ListRecent)
		}
	} else {
		logger.Info("mutation journal disabled: DATABASE_URL not set")
	}
}
