// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"
	"sync/atomic"

	wstypes "admin-console/internal/domain/websocket"
	"admin-console/internal/notify"
	"admin-console/internal/pkg/session"

	"go.uber.org/zap"
)

// Authenticator is the part of the session gate the hub needs.
type Authenticator interface {
	CheckAuth(ctx context.Context) bool
	Principal() *session.Principal
}

// Hub fans console events out to the connected front ends. It is the toast
// surface and the router of the server.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	Register   chan *Client
	unregister chan *Client

	broadcast chan *BroadcastMessage
	running   atomic.Bool
	done      chan struct{}

	handlerRegistry *HandlerRegistry
	auth            Authenticator
	logger          *zap.Logger
}

var (
	_ notify.Notifier  = (*Hub)(nil)
	_ notify.Navigator = (*Hub)(nil)
)

type BroadcastMessage struct {
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

func NewHub(auth Authenticator, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:         make(map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		done:            make(chan struct{}),
		handlerRegistry: NewHandlerRegistry(),
		auth:            auth,
		logger:          logger,
	}
}

// AuthenticateClient admits a connection only while the console session is signed in.
func (h *Hub) AuthenticateClient(ctx context.Context) (*ClientAuth, error) {
	if !h.auth.CheckAuth(ctx) {
		return nil, ErrUnauthorized
	}
	auth := &ClientAuth{}
	if p := h.auth.Principal(); p != nil {
		auth.AdminID = p.ID
		auth.Name = p.Name
		auth.Permissions = p.Permissions
	}
	return auth, nil
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) error {
	return h.handlerRegistry.Register(handler)
}

// HandleClientMessage processes a message from a client using registered handlers
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return nil // Will be handled by client's default handler
	}
	return handler.HandleMessage(ctx, client, msg)
}

// Run serves registrations and broadcasts until ctx is done. It may be called once.
func (h *Hub) Run(ctx context.Context) error {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return nil

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("admin_id", client.adminID),
		zap.Int("total", total),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]any{
		"admin_id":    client.adminID,
		"name":        client.name,
		"permissions": client.permissions,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client]; exists {
		delete(h.clients, client)
		client.Close()
		h.logger.Info("websocket client disconnected",
			zap.String("admin_id", client.adminID),
			zap.Int("total", len(h.clients)),
		)
	}
}

// BroadcastMessage delivers msg to every client subscribed to its channel.
func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.IsSubscribed(msg.Channel) {
			client.SendMessage(msg.Message)
		}
	}
}

// Join hands client to the hub loop. It gives up with ErrHubClosed once Run
// has returned, or with the context error.
func (h *Hub) Join(ctx context.Context, client *Client) error {
	select {
	case h.Register <- client:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether Run is accepting clients.
func (h *Hub) Running() bool {
	return h.running.Load()
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify pushes a toast. The session's expiry notice also tells clients to drop
// their local session.
func (h *Hub) Notify(n notify.Notice) {
	h.enqueue(wstypes.ChannelToasts, wstypes.NewMessage(wstypes.EventTypeToast, wstypes.ToastData{
		Level:   string(n.Level),
		Message: n.Message,
		Source:  n.Source,
	}))
	if n.Source == session.NoticeSource && n.Level == notify.LevelWarning {
		h.enqueue(wstypes.ChannelNavigation, wstypes.NewMessage(wstypes.EventTypeSessionExpired, wstypes.SessionEventData{
			Reason:  "unauthorized",
			Message: n.Message,
		}))
	}
}

// Navigate asks the front ends to change route.
func (h *Hub) Navigate(path string) {
	h.enqueue(wstypes.ChannelNavigation, wstypes.NewMessage(wstypes.EventTypeNavigate, wstypes.NavigateData{Path: path}))
}

// BroadcastScreenState pushes a screen snapshot to the screens channel.
func (h *Hub) BroadcastScreenState(kind string, state any) {
	h.enqueue(wstypes.ChannelScreens, wstypes.NewMessage(wstypes.EventTypeScreenState, wstypes.ScreenStateData{
		Kind:  kind,
		State: state,
	}))
}

// enqueue never blocks the caller: controllers notify while handling requests.
func (h *Hub) enqueue(channel wstypes.ChannelType, msg *wstypes.WSMessage) {
	if !h.running.Load() {
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{Channel: channel, Message: msg}:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event", zap.String("type", string(msg.Type)))
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
