// Package testutil provides shared test helpers for cranewatch.
// Import this in test files to avoid duplicating artifact loading and fake sinks.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/model"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// ArtifactPath returns the path of a file under deploy/artifacts, resolved
// from the module root so it works from any package directory.
func ArtifactPath(t *testing.T, name string) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "deploy", "artifacts", name)
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above working directory")
		dir = parent
	}
}

// LoadModel loads the shipped scaler and autoencoder.
// Fails the test immediately if either can't be read or parsed.
func LoadModel(t *testing.T) (*model.MinMaxScaler, *model.Autoencoder) {
	t.Helper()
	ctx := context.Background()
	store, err := model.NewArtifacts(model.S3Options{})
	require.NoError(t, err)

	scaler, err := model.LoadMinMaxScaler(ctx, store, ArtifactPath(t, "scaler.yaml"))
	require.NoError(t, err, "failed to load scaler")
	ae, err := model.LoadAutoencoder(ctx, store, ArtifactPath(t, "autoencoder.yaml"))
	require.NoError(t, err, "failed to load autoencoder")
	return scaler, ae
}

// RecordingSink is a fake alert sink that remembers every event it receives.
// Err is returned from every Notify call; Delay is applied before returning
// unless the context ends first.
type RecordingSink struct {
	SinkName string
	Err      error
	Delay    time.Duration

	mu     sync.Mutex
	events []types.AnomalyEvent
}

// Name implements notifier.Sink.
func (s *RecordingSink) Name() string { return s.SinkName }

// Notify implements notifier.Sink.
func (s *RecordingSink) Notify(ctx context.Context, event types.AnomalyEvent) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.Err
}

// Events returns a copy of the received events.
func (s *RecordingSink) Events() []types.AnomalyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.AnomalyEvent(nil), s.events...)
}

// Count returns the number of received events.
func (s *RecordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
