package notifier

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

const (
	defaultOperatorQueueSize      = 32
	defaultOperatorDisplayTimeout = 30 * time.Second
	operatorAlertTitle            = "Anomaly Detected!"
)

var (
	// ErrOperatorQueueFull is returned by OperatorSink.Notify when the display
	// worker is behind.
	ErrOperatorQueueFull = errors.New("operator alert queue full")

	// ErrOperatorNotRunning is returned by OperatorSink.Notify before Start or
	// after the Start context ends, when nothing would render the alert.
	ErrOperatorNotRunning = errors.New("operator display worker not running")
)

// OperatorDisplay presents an alert to a human at the machine.
type OperatorDisplay interface {
	Show(ctx context.Context, title, body string) error
}

// OperatorSinkConfig holds the configuration for creating an OperatorSink.
type OperatorSinkConfig struct {
	QueueSize      int           // default 32
	DisplayTimeout time.Duration // default 30s, bounds one Show call
}

// OperatorSink hands events to a background worker that renders them on an
// OperatorDisplay. Notify only enqueues, so a blocking display never holds up
// detection or the other sinks.
type OperatorSink struct {
	logger         *zap.Logger
	display        OperatorDisplay
	displayTimeout time.Duration
	queue          chan types.AnomalyEvent
	wg             sync.WaitGroup

	// mu guards running. Notify enqueues under the read lock so nothing lands
	// in the queue after the worker's final drain.
	mu      sync.RWMutex
	running bool
}

// NewOperatorSink creates an OperatorSink. Call Start to begin rendering.
func NewOperatorSink(logger *zap.Logger, display OperatorDisplay, cfg OperatorSinkConfig) *OperatorSink {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultOperatorQueueSize
	}
	timeout := cfg.DisplayTimeout
	if timeout <= 0 {
		timeout = defaultOperatorDisplayTimeout
	}
	return &OperatorSink{
		logger:         logger.Named("operator-sink"),
		display:        display,
		displayTimeout: timeout,
		queue:          make(chan types.AnomalyEvent, size),
	}
}

// Name implements Sink.
func (s *OperatorSink) Name() string { return "operator" }

// Notify implements Sink. Enqueues the event for the display worker.
func (s *OperatorSink) Notify(ctx context.Context, event types.AnomalyEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return ErrOperatorNotRunning
	}
	select {
	case s.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		operatorQueueDropped.Inc()
		return ErrOperatorQueueFull
	}
}

// Start implements Starter.
func (s *OperatorSink) Start(ctx context.Context) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.wg.Add(1)
	go s.worker(ctx)
	s.logger.Info("Operator sink started", zap.Int("queue_size", cap(s.queue)))
}

// Close waits for the worker to drain queued alerts. Call after the context
// passed to Start is cancelled.
func (s *OperatorSink) Close() {
	s.wg.Wait()
}

func (s *OperatorSink) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			for {
				select {
				case event := <-s.queue:
					s.show(context.Background(), event)
				default:
					return
				}
			}
		case event := <-s.queue:
			s.show(ctx, event)
		}
	}
}

func (s *OperatorSink) show(ctx context.Context, event types.AnomalyEvent) {
	ctx, cancel := context.WithTimeout(ctx, s.displayTimeout)
	defer cancel()

	title, body := RenderOperatorAlert(event)
	if err := s.display.Show(ctx, title, body); err != nil {
		s.logger.Error("Operator display failed",
			zap.String("event_id", event.ID),
			zap.String("issue", string(event.Issue)),
			zap.Error(err),
		)
	}
}

// RenderOperatorAlert returns the pop-up title and body for an event.
func RenderOperatorAlert(event types.AnomalyEvent) (title, body string) {
	return operatorAlertTitle, fmt.Sprintf("Issue: %s\nTroubleshooting: %s", event.Issue, event.Remediation)
}

// LogDisplay writes operator alerts to the log. Used on headless hosts.
type LogDisplay struct {
	logger *zap.Logger
}

// NewLogDisplay creates a LogDisplay.
func NewLogDisplay(logger *zap.Logger) *LogDisplay {
	return &LogDisplay{logger: logger.Named("operator-display")}
}

// Show implements OperatorDisplay.
func (d *LogDisplay) Show(_ context.Context, title, body string) error {
	d.logger.Warn(title, zap.String("alert", body))
	return nil
}

// CommandDisplay runs a desktop notification command such as notify-send or
// zenity. The {title} and {body} placeholders in each argument are replaced.
type CommandDisplay struct {
	argv []string
}

// NewCommandDisplay creates a CommandDisplay. argv[0] must be resolvable on PATH.
func NewCommandDisplay(argv []string) (*CommandDisplay, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, fmt.Errorf("operator display command is required")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("operator display command %q: %w", argv[0], err)
	}
	return &CommandDisplay{argv: append([]string(nil), argv...)}, nil
}

// Show implements OperatorDisplay.
func (d *CommandDisplay) Show(ctx context.Context, title, body string) error {
	r := strings.NewReplacer("{title}", title, "{body}", body)
	args := make([]string, len(d.argv)-1)
	for i, a := range d.argv[1:] {
		args[i] = r.Replace(a)
	}
	out, err := exec.CommandContext(ctx, d.argv[0], args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w (output: %s)", d.argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
