// Package stream broadcasts simulation output to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/nbodysim/internal/sim"
	"go.uber.org/zap"
)

const (
	writeWait         = 5 * time.Second
	DefaultBufferSize = 16
)

const (
	TypeSnapshot   = "snapshot"
	TypeCollision  = "collision"
	TypeDegenerate = "degenerate"
)

// Message is the JSON envelope sent to clients.
type Message struct {
	Type       string               `json:"type"`
	Snapshot   *sim.Snapshot        `json:"snapshot,omitempty"`
	Collision  *sim.CollisionEvent  `json:"collision,omitempty"`
	Degenerate *sim.DegenerateEvent `json:"degenerate,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a sim.Sink and sim.EventHandler that fans messages out to every
// connected client. A client whose buffer is full is disconnected; the
// engine never waits on the network.
type Hub struct {
	upgrader   websocket.Upgrader
	bufferSize int
	logger     *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
		logger:     logger,
		clients:    make(map[*client]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.bufferSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected", zap.String("remote", conn.RemoteAddr().String()), zap.Int("clients", n))

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client input and unregisters the client once the
// connection fails.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("client write failed", zap.Error(err))
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// removeLocked must be called with h.mu held.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) broadcast(m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow client", zap.String("type", m.Type))
			h.removeLocked(c)
		}
	}
	return nil
}

func (h *Hub) WriteSnapshot(_ context.Context, s sim.Snapshot) error {
	return h.broadcast(Message{Type: TypeSnapshot, Snapshot: &s})
}

func (h *Hub) OnCollision(ev sim.CollisionEvent) {
	if err := h.broadcast(Message{Type: TypeCollision, Collision: &ev}); err != nil {
		h.logger.Error("broadcast collision", zap.Error(err))
	}
}

func (h *Hub) OnDegenerate(ev sim.DegenerateEvent) {
	if err := h.broadcast(Message{Type: TypeDegenerate, Degenerate: &ev}); err != nil {
		h.logger.Error("broadcast degenerate pair", zap.Error(err))
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
	return nil
}
