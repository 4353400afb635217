package httpapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wrtmon/wrtmon/internal/model"
)

const writeTimeout = 10 * time.Second

// Hub fans poller snapshots out to websocket subscribers. New subscribers
// immediately receive the most recent snapshot so the dashboard never
// starts blank.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    *model.Snapshot

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is same-host; the API carries no credentials.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Publish stores the snapshot and pushes it to every subscriber. A client
// that cannot keep up is dropped rather than allowed to stall the rest.
func (h *Hub) Publish(snapshot model.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = &snapshot
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(snapshot); err != nil {
			h.logger.Debug("dropping slow websocket client", "err", err)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// Serve upgrades the request and subscribes the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	if h.last != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(*h.last); err != nil {
			delete(h.clients, conn)
			h.mu.Unlock()
			_ = conn.Close()
			return
		}
	}
	h.mu.Unlock()

	// Drain the connection to notice the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.clients, conn)
				h.mu.Unlock()
				_ = conn.Close()
				return
			}
		}
	}()
}

// ClientCount reports the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
