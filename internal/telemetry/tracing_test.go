package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/config"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), zap.NewNop(), config.TracingConfig{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_UnsupportedProtocol(t *testing.T) {
	_, err := Setup(context.Background(), zap.NewNop(), config.TracingConfig{
		Endpoint: "localhost:4317",
		Protocol: "udp",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported OTLP protocol")
}

func TestNewProvider_RecordsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp, err := newProvider(config.TracingConfig{ServiceName: "cranewatch-test", SampleRatio: 1}, exp)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "pipeline.process")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "pipeline.process", spans[0].Name)

	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "cranewatch-test", service)
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	params := sdktrace.SamplingParameters{ParentContext: context.Background(), Name: "x"}

	assert.Equal(t, sdktrace.RecordAndSample, sampler(1).ShouldSample(params).Decision)
	assert.Equal(t, sdktrace.RecordAndSample, sampler(2).ShouldSample(params).Decision)
	assert.Equal(t, sdktrace.Drop, sampler(0).ShouldSample(params).Decision)
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}
