package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

const (
	webhookEnvelopeType = "cranewatch.anomaly"
	defaultWebhookHTTP  = 10 * time.Second
	userAgent           = "cranewatch/v1"
)

// WebhookEnvelope is the JSON payload POSTed to webhook endpoints.
type WebhookEnvelope struct {
	// Type identifies the notification kind.
	Type string `json:"type"`
	// SchemaVersion allows consumers to detect breaking changes.
	SchemaVersion string `json:"schemaVersion"`
	// Timestamp is the RFC3339 time the notification was sent.
	Timestamp string `json:"timestamp"`
	// Data is the anomaly event.
	Data types.AnomalyEvent `json:"data"`
}

// WebhookSinkConfig holds the configuration for creating a WebhookSink.
type WebhookSinkConfig struct {
	URL                string
	Timeout            time.Duration
	InsecureSkipVerify bool
	AuthToken          string // sent as a bearer token when set
}

// WebhookSink POSTs each event once to an HTTP endpoint. There is no retry.
type WebhookSink struct {
	httpClient *http.Client
	logger     *zap.Logger
	url        string
	authToken  string
	now        func() time.Time
}

// NewWebhookSink creates a WebhookSink. Returns an error if the URL is invalid.
func NewWebhookSink(logger *zap.Logger, cfg WebhookSinkConfig) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("webhook URL must include a host")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookHTTP
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // user-configured
		logger.Warn("Webhook TLS certificate verification is disabled",
			zap.String("url", RedactURL(cfg.URL)))
	}

	return &WebhookSink{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		logger:     logger.Named("webhook-sink"),
		url:        cfg.URL,
		authToken:  cfg.AuthToken,
		now:        time.Now,
	}, nil
}

// Name implements Sink.
func (s *WebhookSink) Name() string { return "webhook" }

// Notify implements Sink.
func (s *WebhookSink) Notify(ctx context.Context, event types.AnomalyEvent) error {
	body, err := json.Marshal(WebhookEnvelope{
		Type:          webhookEnvelopeType,
		SchemaVersion: "1",
		Timestamp:     s.now().UTC().Format(time.RFC3339),
		Data:          event,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to %s: %w", RedactURL(s.url), err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned HTTP %d", RedactURL(s.url), resp.StatusCode)
	}
	s.logger.Debug("Webhook delivered", zap.String("event_id", event.ID), zap.Int("status", resp.StatusCode))
	return nil
}

// RedactURL hides the userinfo password and every query value so a webhook
// URL can be logged.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
