package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

const defaultSinkTimeout = 5 * time.Second

// Sink result statuses.
const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
	StatusTimeout   = "timeout"
	StatusPanic     = "panic"
)

var tracer = otel.Tracer("github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/notifier")

// DispatcherOptions configures the Dispatcher behavior.
type DispatcherOptions struct {
	SinkTimeout time.Duration // default 5s, bounds each Notify call
	Sinks       []Sink
}

// DefaultDispatcherOptions returns sensible defaults.
func DefaultDispatcherOptions() DispatcherOptions {
	return DispatcherOptions{
		SinkTimeout: defaultSinkTimeout,
	}
}

// SinkResult is the outcome of one sink for one event.
type SinkResult struct {
	Sink     string        `json:"sink"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report summarizes a Dispatch call. Results follow sink registration order.
type Report struct {
	EventID string       `json:"event_id"`
	Results []SinkResult `json:"results"`
}

// Failed returns the number of sinks that did not deliver.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status != StatusDelivered {
			n++
		}
	}
	return n
}

// Dispatcher fans anomaly events out to every registered sink.
type Dispatcher struct {
	logger  *zap.Logger
	timeout time.Duration
	sinks   []Sink
}

// NewDispatcher creates a new Dispatcher. Sinks are fixed at construction.
func NewDispatcher(logger *zap.Logger, opts DispatcherOptions) *Dispatcher {
	timeout := opts.SinkTimeout
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	return &Dispatcher{
		logger:  logger.Named("dispatcher"),
		timeout: timeout,
		sinks:   append([]Sink(nil), opts.Sinks...),
	}
}

// Start begins background workers of sinks that have them. Non-blocking.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, s := range d.sinks {
		if st, ok := s.(Starter); ok {
			st.Start(ctx)
			d.logger.Info("Started sink worker", zap.String("sink", s.Name()))
		}
	}
}

// Sinks returns the registered sink names in registration order.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Dispatch invokes every sink once, concurrently, each under its own timeout.
// Sink errors, panics and timeouts are logged and recorded in the Report; they
// never stop other sinks and are never returned to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, event types.AnomalyEvent) Report {
	ctx, span := tracer.Start(ctx, "notifier.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.id", event.ID),
		attribute.String("event.issue", string(event.Issue)),
		attribute.Int("sinks", len(d.sinks)),
	)

	report := Report{
		EventID: event.ID,
		Results: make([]SinkResult, len(d.sinks)),
	}

	var wg sync.WaitGroup
	for i, s := range d.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.Results[i] = d.notify(ctx, s, copyEvent(event))
		}()
	}
	wg.Wait()

	failed := report.Failed()
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d sinks failed", failed, len(d.sinks)))
	}
	d.logger.Info("Dispatched anomaly",
		zap.String("event_id", event.ID),
		zap.String("issue", string(event.Issue)),
		zap.Int("sinks", len(d.sinks)),
		zap.Int("failed", failed),
	)
	return report
}

// notify runs one sink and converts every failure mode into a SinkResult.
func (d *Dispatcher) notify(ctx context.Context, s Sink, event types.AnomalyEvent) SinkResult {
	name := s.Name()
	start := time.Now()

	sctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Buffered so an abandoned sink goroutine can still finish.
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &panicError{value: r}
			}
		}()
		done <- s.Notify(sctx, event)
	}()

	var err error
	select {
	case err = <-done:
	case <-sctx.Done():
		err = sctx.Err()
	}

	elapsed := time.Since(start)
	result := SinkResult{Sink: name, Status: StatusDelivered, Duration: elapsed}
	if err != nil {
		result.Error = err.Error()
		var pe *panicError
		switch {
		case errors.As(err, &pe):
			result.Status = StatusPanic
		case errors.Is(err, context.DeadlineExceeded):
			result.Status = StatusTimeout
		default:
			result.Status = StatusFailed
		}
		d.logger.Warn("Sink notification failed",
			zap.String("sink", name),
			zap.String("status", result.Status),
			zap.String("event_id", event.ID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}

	sinkNotifyTotal.WithLabelValues(name, result.Status).Inc()
	sinkNotifyDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	return result
}

// copyEvent gives each sink its own reading slice.
func copyEvent(e types.AnomalyEvent) types.AnomalyEvent {
	e.Reading = e.Reading.Clone()
	return e
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("sink panicked: %v", e.value)
}
