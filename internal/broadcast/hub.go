// Package broadcast pushes named JSON messages to connected WebSocket clients.
//
// The Hub owns the client set. Clients are receive-only: anything they send is
// read and discarded so control frames keep flowing. A client whose send buffer
// is full is dropped rather than allowed to slow down the others.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const broadcastBuffer = 256

var (
	// ErrHubClosed is returned by Emit after Run has returned.
	ErrHubClosed = errors.New("broadcast hub closed")

	// ErrBacklog is returned by Emit when the hub cannot keep up.
	ErrBacklog = errors.New("broadcast backlog full")
)

// Message is the frame written to clients.
type Message struct {
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains active WebSocket clients and broadcasts messages to them.
type Hub struct {
	logger *zap.Logger

	clients map[*Client]struct{}
	mu      sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	done     chan struct{}
	doneOnce sync.Once
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger.Named("broadcast"),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			connectedClients.Set(float64(n))
			h.logger.Debug("Client connected", zap.String("client", c.id), zap.Int("clients", n))

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			var slow []*Client
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.logger.Warn("Dropping slow client", zap.String("client", c.id))
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	connectedClients.Set(float64(n))
}

func (h *Hub) shutdown() {
	h.doneOnce.Do(func() { close(h.done) })
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	connectedClients.Set(0)
}

// Emit queues a named message for every connected client. It never blocks.
func (h *Hub) Emit(event string, data any) error {
	payload, err := json.Marshal(Message{Event: event, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", event, err)
	}
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- payload:
		return nil
	default:
		return ErrBacklog
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// join registers c unless the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters c unless the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
