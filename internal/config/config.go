// Package config loads cranewatch configuration.
//
// Sources, highest priority first:
//  1. Command-line flags bound through LoadOptions.Flags
//  2. Environment variables (CRANEWATCH_ prefix, "." replaced by "_",
//     e.g. CRANEWATCH_BUS_KIND), including values from .env files
//  3. YAML config file
//  4. Built-in defaults (DefaultConfig)
//
// Configuration is read once at startup. Thresholds, rules and the
// remediation catalog are fixed for the lifetime of the process.
package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Detection DetectionConfig `mapstructure:"detection"`

	// Remediations overrides catalog text per issue kind, e.g.
	// remediations.overload: "Lower the hook and redistribute the load."
	Remediations map[string]string `mapstructure:"remediations"`

	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Operator  OperatorConfig  `mapstructure:"operator"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Bus       BusConfig       `mapstructure:"bus"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RequestsPerSecond limits the trigger endpoints. 0 disables the limit.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`

	TLS TLSConfig `mapstructure:"tls"`
}

// TLSConfig configures HTTPS for the listener.
type TLSConfig struct {
	// Mode is off, files or self-signed.
	Mode string `mapstructure:"mode"`

	// CertFile and KeyFile are read in files mode and reloaded on every
	// rotation check.
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`

	// Dir holds ca.crt, tls.crt and tls.key in self-signed mode.
	Dir string `mapstructure:"dir"`

	// Hosts are the DNS names and IP addresses put in a generated certificate.
	Hosts         []string      `mapstructure:"hosts"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

// ModelConfig locates the model and scaler artifacts.
type ModelConfig struct {
	AutoencoderURI string   `mapstructure:"autoencoder_uri"`
	ScalerURI      string   `mapstructure:"scaler_uri"`
	S3             S3Config `mapstructure:"s3"`
}

// S3Config configures s3:// artifact URIs.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// DetectionConfig holds the anomaly threshold and rule cutoffs.
type DetectionConfig struct {
	Threshold float64       `mapstructure:"threshold"`
	Cutoffs   CutoffsConfig `mapstructure:"cutoffs"`
}

// CutoffsConfig holds the per-channel rule cutoffs.
type CutoffsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	Load        float64 `mapstructure:"load"`
	Vibration   float64 `mapstructure:"vibration"`
	Power       float64 `mapstructure:"power"`
}

// DispatchConfig configures the alert dispatcher.
type DispatchConfig struct {
	SinkTimeout time.Duration `mapstructure:"sink_timeout"`
}

// OperatorConfig configures the operator pop-up sink.
type OperatorConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Display is "log" or "command".
	Display string `mapstructure:"display"`

	// Command is the argv run for Display "command". {title} and {body}
	// are substituted in each argument.
	Command        []string      `mapstructure:"command"`
	QueueSize      int           `mapstructure:"queue_size"`
	DisplayTimeout time.Duration `mapstructure:"display_timeout"`
}

// BroadcastConfig configures the real-time WebSocket sink.
type BroadcastConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins lists origins permitted to open WebSocket connections.
	// Empty or ["*"] allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BusConfig configures the pub/sub sink.
type BusConfig struct {
	// Kind is one of none, log, nats, amqp, mqtt, redis.
	Kind           string        `mapstructure:"kind"`
	URL            string        `mapstructure:"url"`
	Topic          string        `mapstructure:"topic"`
	Exchange       string        `mapstructure:"exchange"`
	ClientID       string        `mapstructure:"client_id"`
	QoS            int           `mapstructure:"qos"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// WebhookConfig configures the outbound webhook sink. An empty URL disables it.
type WebhookConfig struct {
	URL                string        `mapstructure:"url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	AuthToken          string        `mapstructure:"auth_token"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

// LoggingConfig configures zap and optional file rotation.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console

	// File, when set, receives a copy of every log entry with rotation.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// TracingConfig configures OpenTelemetry export. An empty Endpoint disables it.
type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`

	// Protocol is the OTLP transport, grpc or http.
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}
