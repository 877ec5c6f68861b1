package notifier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// recordingSink records every event it receives and returns err.
type recordingSink struct {
	name  string
	err   error
	mu    sync.Mutex
	calls []types.AnomalyEvent
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Notify(_ context.Context, event types.AnomalyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, event)
	return s.err
}

func (s *recordingSink) received() []types.AnomalyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.AnomalyEvent(nil), s.calls...)
}

type panickingSink struct{ name string }

func (s *panickingSink) Name() string { return s.name }
func (s *panickingSink) Notify(context.Context, types.AnomalyEvent) error {
	panic("display server gone")
}

// stuckSink ignores its context and never returns until released.
type stuckSink struct {
	release chan struct{}
}

func (s *stuckSink) Name() string { return "stuck" }
func (s *stuckSink) Notify(context.Context, types.AnomalyEvent) error {
	<-s.release
	return nil
}

// mutatingSink overwrites the reading it was handed.
type mutatingSink struct{}

func (mutatingSink) Name() string { return "mutating" }
func (mutatingSink) Notify(_ context.Context, event types.AnomalyEvent) error {
	for i := range event.Reading {
		event.Reading[i] = -1
	}
	return nil
}

type startableSink struct {
	recordingSink
	started atomic.Bool
}

func (s *startableSink) Start(context.Context) { s.started.Store(true) }

func testEvent() types.AnomalyEvent {
	return types.AnomalyEvent{
		ID:                  "evt-1",
		Issue:               types.IssueHighTemperature,
		Rule:                "high-temperature",
		Remediation:         DefaultCatalog().Lookup(types.IssueHighTemperature),
		ReconstructionError: 0.18,
		Reading:             types.SensorReading{105, 950, 80, 50, 45, 300, 10},
		DetectedAt:          time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestDefaultDispatcherOptions(t *testing.T) {
	opts := DefaultDispatcherOptions()
	assert.Equal(t, 5*time.Second, opts.SinkTimeout)
	assert.Empty(t, opts.Sinks)
}

func TestNewDispatcher_ZeroTimeoutUsesDefault(t *testing.T) {
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{})
	assert.Equal(t, defaultSinkTimeout, d.timeout)
	assert.Empty(t, d.Sinks())
}

func TestDispatch_AllSinksReceiveEvent(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	c := &recordingSink{name: "c"}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{Sinks: []Sink{a, b, c}})

	event := testEvent()
	report := d.Dispatch(context.Background(), event)

	assert.Equal(t, "evt-1", report.EventID)
	assert.Zero(t, report.Failed())
	require.Len(t, report.Results, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, report.Results[i].Sink)
		assert.Equal(t, StatusDelivered, report.Results[i].Status)
		assert.Empty(t, report.Results[i].Error)
	}
	for _, s := range []*recordingSink{a, b, c} {
		got := s.received()
		require.Len(t, got, 1, "sink %s", s.name)
		assert.Equal(t, event, got[0])
	}
}

func TestDispatch_NoSinks(t *testing.T) {
	d := NewDispatcher(zap.NewNop(), DefaultDispatcherOptions())
	report := d.Dispatch(context.Background(), testEvent())
	assert.Empty(t, report.Results)
	assert.Zero(t, report.Failed())
}

func TestDispatch_FailingSinkIsIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	failing := &recordingSink{name: "operator", err: errors.New("no display")}
	broadcast := &recordingSink{name: "broadcast"}
	bus := &recordingSink{name: "bus"}
	d := NewDispatcher(zap.New(core), DispatcherOptions{Sinks: []Sink{failing, broadcast, bus}})

	report := d.Dispatch(context.Background(), testEvent())

	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, StatusFailed, report.Results[0].Status)
	assert.Equal(t, "no display", report.Results[0].Error)
	assert.Equal(t, StatusDelivered, report.Results[1].Status)
	assert.Equal(t, StatusDelivered, report.Results[2].Status)
	assert.Len(t, broadcast.received(), 1)
	assert.Len(t, bus.received(), 1)

	entries := logs.FilterMessage("Sink notification failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "operator", entries[0].ContextMap()["sink"])
}

func TestDispatch_PanickingSinkIsIsolated(t *testing.T) {
	broadcast := &recordingSink{name: "broadcast"}
	bus := &recordingSink{name: "bus"}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{
		Sinks: []Sink{&panickingSink{name: "operator"}, broadcast, bus},
	})

	var report Report
	require.NotPanics(t, func() {
		report = d.Dispatch(context.Background(), testEvent())
	})

	assert.Equal(t, StatusPanic, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Error, "display server gone")
	assert.Len(t, broadcast.received(), 1)
	assert.Len(t, bus.received(), 1)
}

func TestDispatch_SlowSinkTimesOut(t *testing.T) {
	stuck := &stuckSink{release: make(chan struct{})}
	defer close(stuck.release)
	fast := &recordingSink{name: "fast"}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{
		SinkTimeout: 50 * time.Millisecond,
		Sinks:       []Sink{stuck, fast},
	})

	start := time.Now()
	report := d.Dispatch(context.Background(), testEvent())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, StatusTimeout, report.Results[0].Status)
	assert.Equal(t, StatusDelivered, report.Results[1].Status)
	assert.Len(t, fast.received(), 1)
}

func TestDispatch_EverySinkFails(t *testing.T) {
	sinks := []Sink{
		&recordingSink{name: "a", err: errors.New("a down")},
		&recordingSink{name: "b", err: errors.New("b down")},
		&panickingSink{name: "c"},
	}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{Sinks: sinks})
	report := d.Dispatch(context.Background(), testEvent())
	assert.Equal(t, 3, report.Failed())
}

func TestDispatch_SinksGetPrivateReadings(t *testing.T) {
	observerSink := &recordingSink{name: "observer"}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{Sinks: []Sink{mutatingSink{}, observerSink}})

	event := testEvent()
	d.Dispatch(context.Background(), event)

	assert.Equal(t, types.SensorReading{105, 950, 80, 50, 45, 300, 10}, event.Reading)
	got := observerSink.received()
	require.Len(t, got, 1)
	assert.Equal(t, types.SensorReading{105, 950, 80, 50, 45, 300, 10}, got[0].Reading)
}

func TestDispatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stuck := &stuckSink{release: make(chan struct{})}
	defer close(stuck.release)

	d := NewDispatcher(zap.NewNop(), DispatcherOptions{Sinks: []Sink{stuck}})
	report := d.Dispatch(ctx, testEvent())
	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusFailed, report.Results[0].Status)
}

func TestDispatcher_StartAndSinks(t *testing.T) {
	s := &startableSink{recordingSink: recordingSink{name: "worker"}}
	plain := &recordingSink{name: "plain"}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{Sinks: []Sink{s, plain}})

	d.Start(context.Background())
	assert.True(t, s.started.Load())
	assert.Equal(t, []string{"worker", "plain"}, d.Sinks())
}

func TestReport_Failed(t *testing.T) {
	r := Report{Results: []SinkResult{
		{Status: StatusDelivered},
		{Status: StatusTimeout},
		{Status: StatusPanic},
		{Status: StatusFailed},
	}}
	assert.Equal(t, 3, r.Failed())
}
