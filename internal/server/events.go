package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soyeahso/toolforge/internal/logging"
)

// Change event types broadcast over /ws.
const (
	EventToolCreated  = "tool.created"
	EventToolUpdated  = "tool.updated"
	EventToolDeleted  = "tool.deleted"
	EventAgentCreated = "agent.created"
	EventAgentUpdated = "agent.updated"
	EventAgentDeleted = "agent.deleted"
)

// Event is one change notification.
type Event struct {
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"ts"`
}

// eventBuffer is the per-client send queue depth. A client that falls this
// far behind is dropped rather than allowed to block mutations.
const eventBuffer = 64

type eventClient struct {
	id   string
	conn *websocket.Conn
	send chan Event
}

// Hub fans change events out to connected WebSocket clients.
type Hub struct {
	log      *logging.Logger
	upgrader websocket.Upgrader
	seq      atomic.Int64

	mu      sync.Mutex
	clients map[string]*eventClient
}

// NewHub creates an event hub. allowedOrigins controls which browser
// origins may connect; an empty list permits only same-origin and
// non-browser clients.
func NewHub(log *logging.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		log:     log.Sub("events"),
		clients: make(map[string]*eventClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkWebSocketOrigin(allowedOrigins),
		},
	}
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin
// headers. No Origin header means a same-origin or non-browser client and
// is always allowed.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Broadcast queues an event for every connected client. Clients whose
// queue is full are disconnected.
func (h *Hub) Broadcast(eventType, name string) {
	evt := Event{
		Type:      eventType,
		Name:      name,
		Seq:       h.seq.Add(1),
		Timestamp: time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- evt:
		default:
			h.log.Warn().Str("connId", id).Msg("dropping slow event client")
			delete(h.clients, id)
			close(c.send)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client. Used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}

// handleWebSocket upgrades the connection and streams events until the
// client disconnects.
func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &eventClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan Event, eventBuffer),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	h.log.Debug().Str("connId", client.id).Str("remote", r.RemoteAddr).Msg("event client connected")

	go h.writeLoop(client)
	h.readLoop(client)
}

// writeLoop pushes queued events to the client until its channel closes.
func (h *Hub) writeLoop(c *eventClient) {
	for evt := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(evt); err != nil {
			h.log.Debug().Err(err).Str("connId", c.id).Msg("event write failed")
			break
		}
	}
	c.conn.Close()
}

// readLoop drains incoming frames so pings are answered, and removes the
// client when the connection drops.
func (h *Hub) readLoop(c *eventClient) {
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()

	h.log.Debug().Str("connId", c.id).Msg("event client disconnected")
}
