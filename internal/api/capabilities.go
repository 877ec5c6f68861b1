package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/classifier"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// CapabilitiesResponse is the response for GET /api/v1/capabilities.
type CapabilitiesResponse struct {
	// Version is the API schema version. Currently "1".
	Version string `json:"version"`

	// Threshold is the reconstruction error above which a reading is anomalous.
	Threshold float64 `json:"threshold"`

	// Rules lists the diagnosis rules in evaluation order.
	Rules []RuleInfo `json:"rules"`

	// Sinks lists the alert sinks in dispatch order.
	Sinks []string `json:"sinks"`

	// Bus describes the pub/sub sink, if any.
	Bus *BusStatus `json:"bus,omitempty"`

	// WebSocketClients is the number of connected broadcast clients.
	WebSocketClients *int `json:"websocketClients,omitempty"`

	// UpSince is when the service started.
	UpSince string `json:"upSince"`
}

// RuleInfo describes one diagnosis rule.
type RuleInfo struct {
	Name  string          `json:"name"`
	Issue types.IssueKind `json:"issue"`
}

// BusStatus describes the pub/sub sink.
type BusStatus struct {
	Kind  string `json:"kind"`
	Topic string `json:"topic"`
}

// CapabilitiesHandlerOptions configures the CapabilitiesHandler.
type CapabilitiesHandlerOptions struct {
	Classifier *classifier.Classifier
	Sinks      []string
	Bus        *BusStatus

	// ClientCount reports connected WebSocket clients. Nil omits the field.
	ClientCount func() int
}

// CapabilitiesHandler handles GET /api/v1/capabilities.
type CapabilitiesHandler struct {
	logger    *zap.Logger
	opts      CapabilitiesHandlerOptions
	startTime time.Time
}

// NewCapabilitiesHandler creates a new CapabilitiesHandler.
func NewCapabilitiesHandler(logger *zap.Logger, opts CapabilitiesHandlerOptions) *CapabilitiesHandler {
	return &CapabilitiesHandler{
		logger:    logger.Named("capabilities"),
		opts:      opts,
		startTime: time.Now(),
	}
}

// ServeHTTP implements http.Handler.
func (h *CapabilitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.buildResponse())
}

func (h *CapabilitiesHandler) buildResponse() CapabilitiesResponse {
	resp := CapabilitiesResponse{
		Version: "1",
		Rules:   []RuleInfo{},
		Sinks:   append([]string{}, h.opts.Sinks...),
		Bus:     h.opts.Bus,
		UpSince: h.startTime.UTC().Format(time.RFC3339),
	}
	if c := h.opts.Classifier; c != nil {
		resp.Threshold = c.Threshold()
		for _, rule := range c.Rules() {
			resp.Rules = append(resp.Rules, RuleInfo{Name: rule.Name, Issue: rule.Issue})
		}
	}
	if h.opts.ClientCount != nil {
		n := h.opts.ClientCount()
		resp.WebSocketClients = &n
	}
	return resp
}
