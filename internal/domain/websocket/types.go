// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Console events (server -> client)
	EventTypeToast          EventType = "toast"
	EventTypeNavigate       EventType = "navigate"
	EventTypeScreenState    EventType = "screen:state"
	EventTypeSessionExpired EventType = "session:expired"

	// Screen commands (client -> server)
	EventTypeScreenMount   EventType = "screen:mount"
	EventTypeScreenFilter  EventType = "screen:filter"
	EventTypeScreenPage    EventType = "screen:page"
	EventTypeScreenRefresh EventType = "screen:refresh"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType      `json:"type"`
	Data      any            `json:"data,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	ID        string         `json:"id,omitempty"`
}

// Subscription channels that clients can subscribe to
type ChannelType string

const (
	ChannelToasts     ChannelType = "toasts"
	ChannelNavigation ChannelType = "navigation"
	ChannelScreens    ChannelType = "screens"
)

// DefaultChannels are subscribed on connect.
var DefaultChannels = []ChannelType{ChannelToasts, ChannelNavigation}

// SubscribeRequest sent by client to subscribe to specific channels
type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// UnsubscribeRequest sent by client to unsubscribe from channels
type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ToastData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

type NavigateData struct {
	Path string `json:"path"`
}

// ScreenStateData carries a screen snapshot.
type ScreenStateData struct {
	Kind  string `json:"kind"`
	State any    `json:"state"`
}

// ScreenCommand is the payload of every screen:* event.
type ScreenCommand struct {
	Kind  string `json:"kind"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	Page  int    `json:"page,omitempty"`
}

// SessionEventData for session events
type SessionEventData struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Helper to create messages
func NewMessage(eventType EventType, data any) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
