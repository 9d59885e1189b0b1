package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests to websocket connections and runs the
// control-protocol read loop for each one. Inbound messages are handled to
// completion before the next is read.
type Handler struct {
	registry *ConnectionRegistry
	logger   *slog.Logger
	now      func() time.Time
	upgrader websocket.Upgrader
}

// NewHandler wires the websocket endpoint.
func NewHandler(registry *ConnectionRegistry, logger *slog.Logger, now func() time.Time) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Handler{
		registry: registry,
		logger:   logger,
		now:      now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The app serves browsers on arbitrary dev hosts; subscription
			// keys are opaque and carry no credentials.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	conn := h.registry.Register(ws)
	conn.send(outboundMessage{
		Type:      MessageConnected,
		Data:      timestampPayload{Timestamp: h.now().UnixMilli()},
		Timestamp: h.now().UnixMilli(),
	})

	h.readLoop(conn, ws)
}

func (h *Handler) readLoop(conn *Connection, ws *websocket.Conn) {
	defer h.registry.Unregister(conn)
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Warn("discarding unparseable control message", slog.String("error", err.Error()))
			continue
		}
		h.handleControl(conn, msg)
	}
}

// handleControl applies one inbound control message to the connection's
// subscription state. Unrecognized types are logged and ignored.
func (h *Handler) handleControl(conn *Connection, msg inboundMessage) {
	switch msg.Type {
	case controlSubscribe:
		if msg.PassCode != "" {
			h.registry.SubscribePass(conn, msg.PassCode)
		}
		if msg.LinkID != "" {
			h.registry.SubscribeLink(conn, msg.LinkID)
		}
	case controlSubscribeSlots:
		h.registry.SubscribeLink(conn, msg.LinkID)
	case controlUnsubscribe, controlUnsubscribeSlots:
		h.registry.UnsubscribeLink(conn, msg.LinkID)
	case controlPing:
		conn.send(outboundMessage{
			Type:      MessagePong,
			Data:      timestampPayload{Timestamp: h.now().UnixMilli()},
			Timestamp: h.now().UnixMilli(),
		})
	default:
		h.logger.Info("ignoring unknown control message", slog.String("type", msg.Type))
	}
}
