package admin

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"robotctl/internal/registry"
)

// dashboardEvent is the JSON frame pushed to every connected dashboard
// client whenever a session's Record changes or a metrics snapshot ticks.
type dashboardEvent struct {
	Type    string              `json:"type"`
	Session *registry.Record    `json:"session,omitempty"`
	Metrics *registry.Snapshot  `json:"metrics,omitempty"`
}

// client wraps one dashboard websocket connection with a bounded send
// queue, split into a non-blocking enqueue and a dedicated writer
// goroutine: a slow or stalled dashboard browser must never be able to
// block event delivery to anyone else.
type client struct {
	ws   *websocket.Conn
	send chan []byte
}

func newClient(ws *websocket.Conn) *client {
	return &client{ws: ws, send: make(chan []byte, 64)}
}

// enqueue drops the event if the client's queue is full rather than
// blocking the broadcaster.
func (c *client) enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
	}
}

func (c *client) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) readPump(hub *Hub) {
	defer hub.remove(c)
	defer c.ws.Close()
	c.ws.SetReadLimit(1 << 10)
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Hub fans session lifecycle events out to every connected dashboard
// client. It implements acceptor.DashboardSink.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub constructs an empty Hub. Origin checking is left permissive,
// matching the dashboard's trusted-operator deployment model; a
// production exposure in front of untrusted networks should tighten
// CheckOrigin.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// HandleWS upgrades a request to a websocket and registers it as a
// dashboard client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(ws)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump(h)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Publish fans eventType/rec out to every connected client. Marshal
// failures and individual stalled clients are silently dropped; neither
// can be allowed to propagate back into the session goroutine that called
// this.
func (h *Hub) Publish(eventType string, rec registry.Record) {
	h.broadcast(dashboardEvent{Type: eventType, Session: &rec})
}

// PublishMetrics fans a metrics snapshot out to every connected client,
// for the periodic "metrics" tick alongside per-session lifecycle events.
func (h *Hub) PublishMetrics(snap registry.Snapshot) {
	h.broadcast(dashboardEvent{Type: "metrics", Metrics: &snap})
}

func (h *Hub) broadcast(ev dashboardEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.enqueue(b)
	}
}
