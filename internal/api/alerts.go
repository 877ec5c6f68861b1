package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/notifier"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/pipeline"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

const maxReadingBody = 64 << 10

// Processor runs one reading through detection and dispatch.
type Processor interface {
	Process(ctx context.Context, reading types.SensorReading) (pipeline.Result, error)
}

// TestAlertResponse is the body of a successful GET /test_alert.
type TestAlertResponse struct {
	Message string `json:"message"`
}

// TestAlertHandler handles GET /test_alert.
type TestAlertHandler struct {
	logger    *zap.Logger
	processor Processor
}

// NewTestAlertHandler creates a new TestAlertHandler.
func NewTestAlertHandler(p Processor, logger *zap.Logger) *TestAlertHandler {
	return &TestAlertHandler{
		logger:    logger.Named("test-alert"),
		processor: p,
	}
}

// ServeHTTP implements http.Handler.
func (h *TestAlertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, err := h.processor.Process(r.Context(), pipeline.SampleReading())
	if err != nil {
		h.logger.Error("Test alert failed", zap.Error(err))
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}

	fields := []zap.Field{zap.Bool("anomalous", res.Anomalous), zap.Float64("reconstruction_error", res.ReconstructionError)}
	if res.Report != nil {
		fields = append(fields, zap.String("event_id", res.Report.EventID), zap.Int("failed_sinks", res.Report.Failed()))
	}
	h.logger.Info("Test alert triggered", fields...)

	writeJSON(w, h.logger, http.StatusOK, TestAlertResponse{Message: "Test alert triggered."})
}

// ReadingRequest is the body of POST /api/v1/readings.
type ReadingRequest struct {
	Values []float64 `json:"values"`
}

// ReadingResponse is the body of a successful POST /api/v1/readings.
type ReadingResponse struct {
	Anomalous           bool                  `json:"anomalous"`
	ReconstructionError float64               `json:"reconstruction_error"`
	Threshold           float64               `json:"threshold"`
	Issue               types.IssueKind       `json:"issue,omitempty"`
	Rule                string                `json:"rule,omitempty"`
	Remediation         string                `json:"remediation,omitempty"`
	EventID             string                `json:"event_id,omitempty"`
	Deliveries          []notifier.SinkResult `json:"deliveries,omitempty"`
}

// ReadingsHandler handles POST /api/v1/readings.
type ReadingsHandler struct {
	logger    *zap.Logger
	processor Processor
}

// NewReadingsHandler creates a new ReadingsHandler.
func NewReadingsHandler(p Processor, logger *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{
		logger:    logger.Named("readings"),
		processor: p,
	}
}

// ServeHTTP implements http.Handler.
func (h *ReadingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReadingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReadingBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		if isMaxBytes(err) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, h.logger, status, "invalid request body: "+err.Error())
		return
	}

	res, err := h.processor.Process(r.Context(), types.SensorReading(req.Values))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Failed to process reading", zap.Error(err))
		}
		writeError(w, h.logger, status, err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusOK, newReadingResponse(res))
}

func newReadingResponse(res pipeline.Result) ReadingResponse {
	out := ReadingResponse{
		Anomalous:           res.Anomalous,
		ReconstructionError: res.ReconstructionError,
		Threshold:           res.Threshold,
	}
	if res.Event != nil {
		out.Issue = res.Event.Issue
		out.Rule = res.Event.Rule
		out.Remediation = res.Event.Remediation
		out.EventID = res.Event.ID
	}
	if res.Report != nil {
		out.Deliveries = res.Report.Results
	}
	return out
}

// isMaxBytes reports whether err came from an oversized body.
func isMaxBytes(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
