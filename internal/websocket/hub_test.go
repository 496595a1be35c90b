package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	wstypes "admin-console/internal/domain/websocket"
	"admin-console/internal/notify"
	"admin-console/internal/pkg/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	ok        bool
	principal *session.Principal
}

func (f fakeAuth) CheckAuth(context.Context) bool { return f.ok }
func (f fakeAuth) Principal() *session.Principal { return f.principal }

func startHub(t *testing.T, auth Authenticator) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(auth, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Run(ctx) }()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientAuth, err := hub.AuthenticateClient(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, clientAuth)
		if err := hub.Join(r.Context(), client); err != nil {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := read(t, conn)
	require.Equal(t, wstypes.EventTypeConnected, msg.Type)
	return hub, conn
}

func read(t *testing.T, conn *websocket.Conn) *wstypes.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := wstypes.ParseMessage(data)
	require.NoError(t, err)
	return msg
}

func TestHub_RejectsLoggedOutSession(t *testing.T) {
	hub := NewHub(fakeAuth{ok: false}, nil)
	_, err := hub.AuthenticateClient(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHub_PushesToastsAndNavigation(t *testing.T) {
	hub, conn := startHub(t, fakeAuth{ok: true, principal: &session.Principal{ID: "a-1"}})

	hub.Notify(notify.Notice{Level: notify.LevelSuccess, Message: "User banned", Source: "users"})
	msg := read(t, conn)
	assert.Equal(t, wstypes.EventTypeToast, msg.Type)
	data := msg.Data.(map[string]any)
	assert.Equal(t, "User banned", data["message"])
	assert.Equal(t, "success", data["level"])

	hub.Navigate("/login")
	msg = read(t, conn)
	assert.Equal(t, wstypes.EventTypeNavigate, msg.Type)
	assert.Equal(t, "/login", msg.Data.(map[string]any)["path"])
}

func TestHub_SessionNoticeAlsoSignalsExpiry(t *testing.T) {
	hub, conn := startHub(t, fakeAuth{ok: true})

	hub.Notify(notify.Notice{Level: notify.LevelWarning, Message: "expired", Source: session.NoticeSource})
	assert.Equal(t, wstypes.EventTypeToast, read(t, conn).Type)
	assert.Equal(t, wstypes.EventTypeSessionExpired, read(t, conn).Type)
}

func TestHub_ScreenStateNeedsSubscription(t *testing.T) {
	hub, conn := startHub(t, fakeAuth{ok: true})

	require.NoError(t, conn.WriteJSON(wstypes.NewMessage(wstypes.EventTypeSubscribe, wstypes.SubscribeRequest{
		Channels: []wstypes.ChannelType{wstypes.ChannelScreens, "bogus"},
	})))
	ack := read(t, conn)
	assert.Equal(t, wstypes.EventTypeSubscribe, ack.Type)
	assert.Equal(t, []any{"screens"}, ack.Data.(map[string]any)["channels"])

	hub.BroadcastScreenState("users", map[string]any{"page": 1})
	msg := read(t, conn)
	assert.Equal(t, wstypes.EventTypeScreenState, msg.Type)
	assert.Equal(t, "users", msg.Data.(map[string]any)["kind"])
}

func TestHub_Ping(t *testing.T) {
	_, conn := startHub(t, fakeAuth{ok: true})
	require.NoError(t, conn.WriteJSON(wstypes.NewMessage(wstypes.EventTypePing, nil)))
	assert.Equal(t, wstypes.EventTypePong, read(t, conn).Type)
}

func TestHub_DropsEventsWhenNotRunning(t *testing.T) {
	hub := NewHub(fakeAuth{ok: true}, nil)
	for i := 0; i < 1000; i++ {
		hub.Notify(notify.Notice{Level: notify.LevelInfo, Message: "x"})
	}
	assert.Zero(t, hub.TotalClients())
}

func TestHub_JoinAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(fakeAuth{ok: true}, nil)
	client := NewClient(hub, nil, &ClientAuth{AdminID: "a-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, hub.Join(ctx, client), context.DeadlineExceeded)

	runCtx, stop := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = hub.Run(runCtx)
		close(stopped)
	}()
	require.Eventually(t, hub.Running, time.Second, time.Millisecond)
	stop()
	<-stopped

	assert.ErrorIs(t, hub.Join(context.Background(), client), ErrHubClosed)
}
