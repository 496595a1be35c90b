// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"admin-console/internal/config"
	authHandler "admin-console/internal/handlers/auth"
	journalHandler "admin-console/internal/handlers/journal"
	screenHandler "admin-console/internal/handlers/screen"
	wsHandler "admin-console/internal/handlers/websocket"
	"admin-console/internal/middleware"
	"admin-console/internal/notify"
	"admin-console/internal/pkg/session"
	"admin-console/internal/websocket"
	wsHandlers "admin-console/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg     config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	console *Console
	hub     *websocket.Hub
}

// NewServer wires the console behind the HTTP and websocket surfaces.
func NewServer(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.ValidateServe(); err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, logger: logger}

	// ----- Console (store, gate, transport, screens, journal) -----
	console, err := NewConsole(ctx, cfg, func(gate *session.Gate) Surface {
		s.hub = websocket.NewHub(gate, logger.Named("ws"))
		return Surface{
			Notifier:  notify.Multi{notify.NewLogNotifier(logger.Named("notice")), s.hub},
			Navigator: s.hub,
			OnChange:  s.hub.BroadcastScreenState,
		}
	}, logger)
	if err != nil {
		return nil, err
	}
	s.console = console

	// ----- WebSocket handlers -----
	if err := s.hub.RegisterHandler(wsHandlers.NewScreenHandler(console.Registry, logger.Named("ws"))); err != nil {
		console.Close()
		return nil, fmt.Errorf("failed to register screen handler: %w", err)
	}

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:    authHandler.NewAuthHandler(console.Auth, console.Registry, console.Gate, logger),
		ScreenHandler:  screenHandler.NewScreenHandler(console.Registry, console.Gate, logger),
		WSHandler:      wsHandler.NewWebSocketHandler(s.hub, cfg.CORSOrigins, logger),
		AuthMiddleware: middleware.NewAuthMiddleware(console.Gate, cfg.AccessToken),
	}
	if console.Journal != nil {
		handlers.JournalHandler = journalHandler.NewJournalHandler(console.Journal, logger)
	}

	// ----- Middlewares -----
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s.engine = gin.New()
	s.engine.Use(
		middleware.LoggingMiddleware(logger),
		middleware.RecoveryMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, logger, handlers)
	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Console returns the wiring shared with the CLI.
func (s *Server) Console() *Console {
	return s.console
}

// Run serves HTTP and runs the hub until ctx is cancelled, then shuts both down.
func (s *Server) Run(ctx context.Context) error {
	defer s.console.Close()

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.hub.Run(ctx)
	})
	g.Go(func() error {
		s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
