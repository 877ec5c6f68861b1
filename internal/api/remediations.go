package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/notifier"
)

// RemediationsResponse is the wire format for GET /api/v1/remediations.
type RemediationsResponse struct {
	Remediations []notifier.CatalogEntry `json:"remediations"`
	Fallback     string                  `json:"fallback"`
}

// RemediationsHandler handles GET /api/v1/remediations.
type RemediationsHandler struct {
	logger  *zap.Logger
	catalog *notifier.Catalog
}

// NewRemediationsHandler creates a new RemediationsHandler.
func NewRemediationsHandler(c *notifier.Catalog, logger *zap.Logger) *RemediationsHandler {
	return &RemediationsHandler{
		logger:  logger.Named("remediations"),
		catalog: c,
	}
}

// ServeHTTP implements http.Handler.
func (h *RemediationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries := []notifier.CatalogEntry{}
	if h.catalog != nil {
		entries = h.catalog.Entries()
	}
	writeJSON(w, h.logger, http.StatusOK, RemediationsResponse{
		Remediations: entries,
		Fallback:     notifier.FallbackRemediation,
	})
}
