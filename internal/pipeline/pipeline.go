// Package pipeline runs one sensor reading through normalization, scoring,
// classification, remediation lookup and alert dispatch.
//
// A Pipeline holds no mutable state. Every collaborator is read-only after
// construction, so Process may be called concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/classifier"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/model"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/notifier"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

var tracer = otel.Tracer("github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/pipeline")

// SampleReading is the fixed reading used by the test-alert trigger. It is
// far outside normal operation on temperature, load and vibration.
func SampleReading() types.SensorReading {
	return types.SensorReading{105, 950, 80, 50, 45, 300, 10}
}

// Scorer returns the reconstruction error of a normalized vector.
type Scorer interface {
	Score(v types.NormalizedVector) (float64, error)
}

// Dispatcher fans an event out to the alert sinks.
type Dispatcher interface {
	Dispatch(ctx context.Context, event types.AnomalyEvent) notifier.Report
}

// Options wires a Pipeline. Dispatcher may be nil for evaluation-only use.
type Options struct {
	Normalizer model.Normalizer
	Scorer     Scorer
	Classifier *classifier.Classifier
	Catalog    *notifier.Catalog
	Dispatcher Dispatcher
}

// Result is the outcome of one reading.
type Result struct {
	Anomalous           bool
	ReconstructionError float64
	Threshold           float64
	Event               *types.AnomalyEvent // nil for a normal reading
	Report              *notifier.Report    // nil unless the event was dispatched
}

// Pipeline is the per-reading detection flow.
type Pipeline struct {
	logger     *zap.Logger
	normalizer model.Normalizer
	scorer     Scorer
	classifier *classifier.Classifier
	catalog    *notifier.Catalog
	dispatcher Dispatcher
	newID      func() string
	now        func() time.Time
}

// New creates a Pipeline.
func New(logger *zap.Logger, opts Options) (*Pipeline, error) {
	switch {
	case opts.Normalizer == nil:
		return nil, fmt.Errorf("pipeline requires a normalizer")
	case opts.Scorer == nil:
		return nil, fmt.Errorf("pipeline requires a scorer")
	case opts.Classifier == nil:
		return nil, fmt.Errorf("pipeline requires a classifier")
	case opts.Catalog == nil:
		return nil, fmt.Errorf("pipeline requires a remediation catalog")
	}
	return &Pipeline{
		logger:     logger.Named("pipeline"),
		normalizer: opts.Normalizer,
		scorer:     opts.Scorer,
		classifier: opts.Classifier,
		catalog:    opts.Catalog,
		dispatcher: opts.Dispatcher,
		newID:      uuid.NewString,
		now:        time.Now,
	}, nil
}

// Threshold returns the classifier threshold.
func (p *Pipeline) Threshold() float64 { return p.classifier.Threshold() }

// Process evaluates the reading and, when it is anomalous, dispatches the
// event to every sink. Cancelling ctx does not cancel delivery. Sink failures
// are reported in Result.Report and never returned as an error. Errors are
// *types.ShapeError, *types.ValueError or wrap types.ErrModelUnavailable.
func (p *Pipeline) Process(ctx context.Context, reading types.SensorReading) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Process")
	defer span.End()

	res, err := p.evaluate(ctx, reading)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Bool("anomalous", res.Anomalous),
		attribute.Float64("reconstruction_error", res.ReconstructionError),
	)
	if !res.Anomalous || p.dispatcher == nil {
		return res, nil
	}

	// Delivery belongs to the pipeline, not the caller: a caller that gives
	// up must not cut sinks short. The per-sink timeout still bounds each one.
	report := p.dispatcher.Dispatch(context.WithoutCancel(ctx), *res.Event)
	res.Report = &report
	return res, nil
}

// Evaluate runs every stage except dispatch.
func (p *Pipeline) Evaluate(ctx context.Context, reading types.SensorReading) (Result, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Evaluate")
	defer span.End()
	res, err := p.evaluate(ctx, reading)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (p *Pipeline) evaluate(ctx context.Context, reading types.SensorReading) (Result, error) {
	reading = reading.Clone()

	vec, err := p.normalizer.Transform(reading)
	if err != nil {
		p.observeError(err)
		return Result{}, fmt.Errorf("normalize reading: %w", err)
	}

	_, scoreSpan := tracer.Start(ctx, "pipeline.Score")
	recErr, err := p.scorer.Score(vec)
	scoreSpan.End()
	if err != nil {
		p.observeError(err)
		return Result{}, fmt.Errorf("score reading: %w", err)
	}
	reconstructionError.Observe(recErr)

	res := Result{ReconstructionError: recErr, Threshold: p.classifier.Threshold()}
	verdict, anomalous := p.classifier.Classify(reading, recErr)
	if !anomalous {
		readingsTotal.WithLabelValues(resultNormal).Inc()
		p.logger.Debug("Reading within normal operation", zap.Float64("reconstruction_error", recErr))
		return res, nil
	}

	readingsTotal.WithLabelValues(resultAnomalous).Inc()
	anomaliesTotal.WithLabelValues(string(verdict.Issue)).Inc()

	event := types.AnomalyEvent{
		ID:                  p.newID(),
		Issue:               verdict.Issue,
		Rule:                verdict.Rule,
		Remediation:         p.catalog.Lookup(verdict.Issue),
		ReconstructionError: recErr,
		Reading:             verdict.Reading,
		DetectedAt:          p.now().UTC(),
	}
	res.Anomalous = true
	res.Event = &event

	p.logger.Info("Anomaly detected",
		zap.String("event_id", event.ID),
		zap.String("issue", string(event.Issue)),
		zap.String("rule", event.Rule),
		zap.Float64("reconstruction_error", recErr),
		zap.Float64("threshold", res.Threshold),
	)
	return res, nil
}

func (p *Pipeline) observeError(err error) {
	label := resultError
	if errors.Is(err, types.ErrShape) {
		label = resultRejected
	}
	readingsTotal.WithLabelValues(label).Inc()
}
