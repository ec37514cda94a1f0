// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/okian/tally/internal/adapters/hub"
	"github.com/okian/tally/pkg/logger"
)

// Websocket buffer sizes.
const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
)

// liveEvent is the named push frame sent on every leaderboard change.
// The payload is always the full ranked sequence, never a delta.
type liveEvent struct {
	Event string       `json:"event"`
	Data  hub.Snapshot `json:"data"`
}

// LiveHandler upgrades /ws connections and bridges hub subscriptions
// onto them.
type LiveHandler struct {
	deps     Dependencies
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewLiveHandler creates a new live-update handler. Origins follow the
// same policy as CORS on the REST routes.
func NewLiveHandler(deps Dependencies, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		deps:   deps,
		logger: logger.Get().Named("live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsReadBufferSize,
			WriteBufferSize: wsWriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(allowedOrigins, origin)
			},
		},
	}
}

// HandleLive handles GET /ws requests. No historical replay happens on
// connect; the peer receives snapshots from the next publish onward.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	ctx := r.Context()
	sub := h.deps.Subscribe(ctx)
	h.logger.Info(ctx, "client connected", logger.String("subscription", sub.ID()))

	go h.writePump(conn, sub)
	h.readPump(ctx, conn)

	// Unsubscribe closes the snapshot channel, which ends the write pump.
	h.deps.Unsubscribe(context.Background(), sub)
	_ = conn.Close()
	h.logger.Info(ctx, "client disconnected", logger.String("subscription", sub.ID()))
}

// writePump forwards every published snapshot to the peer until the
// subscription is closed or a write fails.
func (h *LiveHandler) writePump(conn *websocket.Conn, sub *hub.Subscription) {
	for snapshot := range sub.C {
		ev := liveEvent{Event: "leaderboardUpdate", Data: snapshot}
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// readPump drains inbound frames; the payloads are ignored, reading
// exists only to notice the peer going away.
func (h *LiveHandler) readPump(ctx context.Context, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn(ctx, "unexpected websocket close", logger.Error(err))
			}
			return
		}
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
	}
	return false
}
