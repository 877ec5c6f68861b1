package broadcast

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sseKeepAlive is how often an idle stream gets a comment line so proxies
// keep the connection open.
const sseKeepAlive = 30 * time.Second

// SSEHandler streams hub messages as Server-Sent Events, for dashboards that
// cannot open a WebSocket. Each message is sent as "event: <name>" with the
// full Message JSON as data.
type SSEHandler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewSSEHandler creates an SSEHandler on hub.
func NewSSEHandler(hub *Hub) *SSEHandler {
	return &SSEHandler{hub: hub, logger: hub.logger}
}

// ServeHTTP implements http.Handler.
func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	c := &Client{
		id:     uuid.NewString(),
		hub:    h.hub,
		send:   make(chan []byte, clientSendBuffer),
		logger: h.logger.With(zap.String("client", "sse")),
	}
	if !h.hub.join(c) {
		http.Error(w, "Shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.hub.leave(c)

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: connected\ndata: {\"clientId\":%q}\n\n", c.id)
	flusher.Flush()
	h.logger.Debug("SSE client connected", zap.String("client", c.id))

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("SSE client disconnected", zap.String("client", c.id))
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName(msg), msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func eventName(msg []byte) string {
	var head struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(msg, &head); err != nil || head.Event == "" {
		return "message"
	}
	return head.Event
}
