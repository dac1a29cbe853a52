package eventstream

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Hub pushes relayed ledger events to websocket clients. Clients may narrow
// the stream with ?collection= and ?event_type= query parameters.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type client struct {
	conn       *websocket.Conn
	send       chan ports.EventEnvelope
	collection string
	eventType  string
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast is a bus handler. Clients whose buffer is full miss the event.
func (h *Hub) Broadcast(_ context.Context, envelope ports.EventEnvelope) error {
	var collection string
	if data, err := ports.DecodeEventData(envelope); err == nil {
		collection = data.Collection
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.wants(envelope.EventType, collection) {
			continue
		}
		select {
		case c.send <- envelope:
		default:
			h.logger.Warn("dropping event for slow stream client",
				"event", "eventstream_client_drop",
				"module", "internal/platform/eventstream",
				"layer", "platform",
				"event_id", envelope.EventID,
			)
		}
	}
	return nil
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			"event", "eventstream_upgrade_failed",
			"module", "internal/platform/eventstream",
			"layer", "platform",
			"error", err.Error(),
		)
		return
	}

	c := &client{
		conn:       conn,
		send:       make(chan ports.EventEnvelope, sendBuffer),
		collection: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("collection"))),
		eventType:  strings.TrimSpace(r.URL.Query().Get("event_type")),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go h.writeLoop(c, done)
	h.readLoop(c)
	close(done)
	h.remove(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// readLoop discards client messages and returns when the peer goes away.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case envelope := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(envelope); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (c *client) wants(eventType string, collection string) bool {
	if c.eventType != "" && c.eventType != eventType {
		return false
	}
	if c.collection != "" && c.collection != collection {
		return false
	}
	return true
}
