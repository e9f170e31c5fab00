package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/usecase"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler upgrades dashboard connections to WebSocket and bridges each
// one to a broadcaster subscription. Every connection first receives the
// replay backlog, then live events, all in sequence order.
type StreamHandler struct {
	broadcaster *usecase.Broadcaster
	logger      *slog.Logger
}

// NewStreamHandler creates a new live event stream handler.
func NewStreamHandler(broadcaster *usecase.Broadcaster, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		broadcaster: broadcaster,
		logger:      logger.With("component", "ws_stream"),
	}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	sub := h.broadcaster.Subscribe()
	h.logger.Info("stream client connected", "remote", r.RemoteAddr)

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// writePump forwards subscription events to the peer and keeps the
// connection alive with pings. It owns all writes on the connection.
func (h *StreamHandler) writePump(conn *websocket.Conn, sub *usecase.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("stream write failed", "error", err)
				h.broadcaster.Unsubscribe(sub)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.broadcaster.Unsubscribe(sub)
				return
			}
		}
	}
}

// readPump discards inbound frames and unsubscribes when the peer goes away.
func (h *StreamHandler) readPump(conn *websocket.Conn, sub *usecase.Subscriber) {
	defer func() {
		h.broadcaster.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("stream client read error", "error", err)
			}
			return
		}
	}
}
