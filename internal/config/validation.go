package config

import (
	"fmt"
	"math"
	"net/url"
	"slices"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

var (
	busKinds         = []string{"none", "log", "nats", "amqp", "mqtt", "redis"}
	operatorDisplays = []string{"log", "command"}
	logLevels        = []string{"debug", "info", "warn", "error"}
	logFormats       = []string{"json", "console"}
	otlpProtocols    = []string{"grpc", "http"}
	tlsModes         = []string{"off", "files", "self-signed"}
	issueKinds       = []string{"high_temperature", "overload", "high_vibration", "abnormal_power"}
)

// Validate validates the configuration and returns validation errors.
func (c *Config) Validate() []error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if c.Server.Addr == "" {
		add("server.addr", "listen address is required")
	}
	if c.Server.RequestsPerSecond < 0 {
		add("server.requests_per_second", "must be >= 0, got %g", c.Server.RequestsPerSecond)
	}
	if c.Server.RequestsPerSecond > 0 && c.Server.Burst < 1 {
		add("server.burst", "must be >= 1 when requests_per_second is set, got %d", c.Server.Burst)
	}
	switch c.Server.TLS.Mode {
	case "off":
	case "files":
		if c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "" {
			add("server.tls.cert_file", "cert_file and key_file are required in files mode")
		}
	case "self-signed":
		if c.Server.TLS.Dir == "" {
			add("server.tls.dir", "certificate directory is required in self-signed mode")
		}
		if len(c.Server.TLS.Hosts) == 0 {
			add("server.tls.hosts", "at least one host is required in self-signed mode")
		}
	default:
		add("server.tls.mode", "must be one of %v, got %q", tlsModes, c.Server.TLS.Mode)
	}
	if c.Server.TLS.Mode != "off" && c.Server.TLS.CheckInterval <= 0 {
		add("server.tls.check_interval", "must be positive, got %s", c.Server.TLS.CheckInterval)
	}

	// Model
	if c.Model.AutoencoderURI == "" {
		add("model.autoencoder_uri", "model artifact location is required")
	}
	if c.Model.ScalerURI == "" {
		add("model.scaler_uri", "scaler artifact location is required")
	}

	// Detection
	if !finite(c.Detection.Threshold) || c.Detection.Threshold < 0 {
		add("detection.threshold", "must be a finite non-negative number, got %g", c.Detection.Threshold)
	}
	for _, cut := range []struct {
		key   string
		value float64
	}{
		{"temperature", c.Detection.Cutoffs.Temperature},
		{"load", c.Detection.Cutoffs.Load},
		{"vibration", c.Detection.Cutoffs.Vibration},
		{"power", c.Detection.Cutoffs.Power},
	} {
		if !finite(cut.value) {
			add("detection.cutoffs."+cut.key, "must be a finite number, got %g", cut.value)
		}
	}

	for kind, text := range c.Remediations {
		if !slices.Contains(issueKinds, kind) {
			add("remediations."+kind, "unknown issue kind, expected one of %v", issueKinds)
		} else if text == "" {
			add("remediations."+kind, "remediation text must not be empty")
		}
	}

	// Dispatch
	if c.Dispatch.SinkTimeout <= 0 {
		add("dispatch.sink_timeout", "must be positive, got %s", c.Dispatch.SinkTimeout)
	}

	// Operator
	if c.Operator.Enabled {
		if !slices.Contains(operatorDisplays, c.Operator.Display) {
			add("operator.display", "must be one of %v, got %q", operatorDisplays, c.Operator.Display)
		}
		if c.Operator.Display == "command" && len(c.Operator.Command) == 0 {
			add("operator.command", "command is required when display is \"command\"")
		}
		if c.Operator.QueueSize < 1 {
			add("operator.queue_size", "must be >= 1, got %d", c.Operator.QueueSize)
		}
	}

	// Bus
	if !slices.Contains(busKinds, c.Bus.Kind) {
		add("bus.kind", "must be one of %v, got %q", busKinds, c.Bus.Kind)
	}
	switch c.Bus.Kind {
	case "nats", "amqp", "mqtt", "redis":
		if c.Bus.URL == "" {
			add("bus.url", "broker url is required for bus kind %q", c.Bus.Kind)
		}
	}
	if c.Bus.Kind != "none" && c.Bus.Topic == "" {
		add("bus.topic", "topic is required")
	}
	if c.Bus.QoS < 0 || c.Bus.QoS > 2 {
		add("bus.qos", "must be 0, 1 or 2, got %d", c.Bus.QoS)
	}

	// Webhook
	if c.Webhook.URL != "" {
		u, err := url.Parse(c.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("webhook.url", "must be an absolute http or https URL")
		}
	}

	// Logging
	if !slices.Contains(logLevels, c.Logging.Level) {
		add("logging.level", "must be one of %v, got %q", logLevels, c.Logging.Level)
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		add("logging.format", "must be one of %v, got %q", logFormats, c.Logging.Format)
	}

	// Tracing
	if c.Tracing.Endpoint != "" && !slices.Contains(otlpProtocols, c.Tracing.Protocol) {
		add("tracing.protocol", "must be one of %v, got %q", otlpProtocols, c.Tracing.Protocol)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		add("tracing.sample_ratio", "must be between 0 and 1, got %g", c.Tracing.SampleRatio)
	}

	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
