// internal/websocket/handler/screen.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	wstypes "admin-console/internal/domain/websocket"
	"admin-console/internal/resource"
	"admin-console/internal/screens"
	ws "admin-console/internal/websocket"

	"go.uber.org/zap"
)

// ScreenHandler lets a connected front end drive list screens over the socket.
type ScreenHandler struct {
	registry *screens.Registry
	logger   *zap.Logger
}

func NewScreenHandler(registry *screens.Registry, logger *zap.Logger) *ScreenHandler {
	return &ScreenHandler{registry: registry, logger: logger}
}

// SupportedEvents returns events this handler supports
func (h *ScreenHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeScreenMount,
		wstypes.EventTypeScreenFilter,
		wstypes.EventTypeScreenPage,
		wstypes.EventTypeScreenRefresh,
	}
}

// HandleMessage runs one screen command and answers with the screen state.
// Failures have already been reported as toasts by the screen itself.
func (h *ScreenHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var cmd wstypes.ScreenCommand
	if err := mapToStruct(msg.Data, &cmd); err != nil {
		client.SendError("invalid_request", "Invalid screen command", err.Error())
		return nil
	}

	screen, err := h.registry.Access(client, cmd.Kind, false)
	if err != nil {
		client.SendError("forbidden", "Screen not available", err.Error())
		return nil
	}

	switch msg.Type {
	case wstypes.EventTypeScreenMount:
		err = screen.Mount(ctx)
	case wstypes.EventTypeScreenFilter:
		err = screen.SetFilter(ctx, cmd.Key, cmd.Value)
	case wstypes.EventTypeScreenPage:
		err = screen.GoToPage(ctx, cmd.Page)
	case wstypes.EventTypeScreenRefresh:
		err = screen.Refresh(ctx)
	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}

	if err != nil && !errors.Is(err, resource.ErrSuperseded) {
		h.logger.Debug("screen command failed",
			zap.String("kind", cmd.Kind),
			zap.String("event", string(msg.Type)),
			zap.Error(err),
		)
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeScreenState, wstypes.ScreenStateData{
		Kind:  cmd.Kind,
		State: screen.Snapshot(),
	}))
	return nil
}

// Helper function to convert a decoded payload to struct
func mapToStruct(data any, target any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}
