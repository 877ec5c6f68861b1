package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthResponse is the response for health endpoints.
type HealthResponse struct {
	Status    string `json:"status"` // ok, not ready
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ReadinessCheck returns nil when the service can take traffic.
type ReadinessCheck func() error

// HealthHandler serves /healthz, or /readyz when it has a check.
type HealthHandler struct {
	logger *zap.Logger
	check  ReadinessCheck
}

// NewHealthHandler creates a liveness handler when check is nil and a
// readiness handler otherwise.
func NewHealthHandler(check ReadinessCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger.Named("health"),
		check:  check,
	}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{Status: "ok", Timestamp: time.Now().UTC().Format(time.RFC3339)}
	status := http.StatusOK
	if h.check != nil {
		if err := h.check(); err != nil {
			resp.Status = "not ready"
			resp.Reason = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, h.logger, status, resp)
}
