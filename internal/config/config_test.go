package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Zero(t, cfg.Server.RequestsPerSecond)
	assert.Equal(t, "off", cfg.Server.TLS.Mode)
	assert.Equal(t, 0.01, cfg.Detection.Threshold)
	assert.Equal(t, CutoffsConfig{Temperature: 100, Load: 900, Vibration: 45, Power: 40}, cfg.Detection.Cutoffs)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.SinkTimeout)
	assert.True(t, cfg.Operator.Enabled)
	assert.Equal(t, "log", cfg.Operator.Display)
	assert.True(t, cfg.Broadcast.Enabled)
	assert.Equal(t, "log", cfg.Bus.Kind)
	assert.Equal(t, "crane/anomalies", cfg.Bus.Topic)
	assert.Empty(t, cfg.Webhook.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Tracing.Endpoint)

	assert.Empty(t, cfg.Validate(), "defaults must validate")
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(LoadOptions{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Detection, cfg.Detection)
	assert.Equal(t, []string{"*"}, cfg.Broadcast.AllowedOrigins)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cranewatch.yaml", `
server:
  addr: ":8080"
  requests_per_second: 2.5
detection:
  threshold: 0.05
  cutoffs:
    temperature: 90
remediations:
  overload: "Lower the hook and redistribute the load."
dispatch:
  sink_timeout: 2s
bus:
  kind: NATS
  url: nats://broker:4222
  topic: site-a/crane-3
broadcast:
  allowed_origins:
    - http://localhost:3000
`)

	cfg, err := Load(LoadOptions{ConfigFile: path, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2.5, cfg.Server.RequestsPerSecond)
	assert.Equal(t, 0.05, cfg.Detection.Threshold)
	assert.Equal(t, 90.0, cfg.Detection.Cutoffs.Temperature)
	assert.Equal(t, 900.0, cfg.Detection.Cutoffs.Load, "unset keys keep their defaults")
	assert.Equal(t, "Lower the hook and redistribute the load.", cfg.Remediations["overload"])
	assert.Equal(t, 2*time.Second, cfg.Dispatch.SinkTimeout)
	assert.Equal(t, "nats", cfg.Bus.Kind, "kind is normalized")
	assert.Equal(t, "site-a/crane-3", cfg.Bus.Topic)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Broadcast.AllowedOrigins)
}

func TestLoad_TLSSelfSigned(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cranewatch.yaml", `
server:
  tls:
    mode: Self-Signed
    dir: /var/lib/cranewatch/certs
    hosts: ["crane-7.local", " crane-7.local", "10.0.0.7", ""]
`)

	cfg, err := Load(LoadOptions{ConfigFile: path, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "self-signed", cfg.Server.TLS.Mode)
	assert.Equal(t, "/var/lib/cranewatch/certs", cfg.Server.TLS.Dir)
	assert.Equal(t, []string{"crane-7.local", "10.0.0.7"}, cfg.Server.TLS.Hosts)
	assert.Equal(t, time.Hour, cfg.Server.TLS.CheckInterval)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"), EnvFiles: []string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cranewatch.yaml", "detection:\n  threshold: 0.05\n")
	t.Setenv("CRANEWATCH_DETECTION_THRESHOLD", "0.2")
	t.Setenv("CRANEWATCH_BUS_KIND", "none")
	t.Setenv("CRANEWATCH_DISPATCH_SINK_TIMEOUT", "750ms")

	cfg, err := Load(LoadOptions{ConfigFile: path, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.Detection.Threshold)
	assert.Equal(t, "none", cfg.Bus.Kind)
	assert.Equal(t, 750*time.Millisecond, cfg.Dispatch.SinkTimeout)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "CRANEWATCH_WEBHOOK_URL=https://hooks.example.com/alerts\n")
	// t.Setenv restores the variable after the test; godotenv only sets unset keys.
	t.Setenv("CRANEWATCH_WEBHOOK_URL", "")
	require.NoError(t, os.Unsetenv("CRANEWATCH_WEBHOOK_URL"))

	cfg, err := Load(LoadOptions{EnvFiles: []string{envFile, filepath.Join(dir, "missing.env")}})
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/alerts", cfg.Webhook.URL)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("CRANEWATCH_SERVER_ADDR", ":7000")

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("addr", ":5000", "")
	fs.Float64("threshold", 0.01, "")
	require.NoError(t, fs.Parse([]string{"--addr", ":9000"}))

	cfg, err := Load(LoadOptions{
		EnvFiles: []string{},
		Flags:    fs,
		FlagKeys: map[string]string{"addr": "server.addr", "threshold": "detection.threshold"},
	})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 0.01, cfg.Detection.Threshold, "unchanged flag does not override")
}

func TestLoad_UnknownFlag(t *testing.T) {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	_, err := Load(LoadOptions{EnvFiles: []string{}, Flags: fs, FlagKeys: map[string]string{"addr": "server.addr"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not defined")
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("CRANEWATCH_BUS_KIND", "kafka")
	t.Setenv("CRANEWATCH_DETECTION_THRESHOLD", "-1")

	_, err := Load(LoadOptions{EnvFiles: []string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "bus.kind")
	assert.Contains(t, err.Error(), "detection.threshold")
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		modifyFn func(*Config)
		field    string
	}{
		{name: "empty addr", modifyFn: func(c *Config) { c.Server.Addr = "" }, field: "server.addr"},
		{name: "negative rate", modifyFn: func(c *Config) { c.Server.RequestsPerSecond = -1 }, field: "server.requests_per_second"},
		{name: "rate without burst", modifyFn: func(c *Config) { c.Server.RequestsPerSecond = 1; c.Server.Burst = 0 }, field: "server.burst"},
		{name: "bad tls mode", modifyFn: func(c *Config) { c.Server.TLS.Mode = "acme" }, field: "server.tls.mode"},
		{name: "tls files missing", modifyFn: func(c *Config) { c.Server.TLS.Mode = "files"; c.Server.TLS.KeyFile = "tls.key" }, field: "server.tls.cert_file"},
		{name: "self-signed without hosts", modifyFn: func(c *Config) { c.Server.TLS.Mode = "self-signed"; c.Server.TLS.Hosts = nil }, field: "server.tls.hosts"},
		{name: "tls zero interval", modifyFn: func(c *Config) { c.Server.TLS.Mode = "self-signed"; c.Server.TLS.CheckInterval = 0 }, field: "server.tls.check_interval"},
		{name: "no model", modifyFn: func(c *Config) { c.Model.AutoencoderURI = "" }, field: "model.autoencoder_uri"},
		{name: "no scaler", modifyFn: func(c *Config) { c.Model.ScalerURI = "" }, field: "model.scaler_uri"},
		{name: "negative threshold", modifyFn: func(c *Config) { c.Detection.Threshold = -0.1 }, field: "detection.threshold"},
		{name: "infinite threshold", modifyFn: func(c *Config) { c.Detection.Threshold = math.Inf(1) }, field: "detection.threshold"},
		{name: "NaN temperature cutoff", modifyFn: func(c *Config) { c.Detection.Cutoffs.Temperature = math.NaN() }, field: "detection.cutoffs.temperature"},
		{name: "infinite load cutoff", modifyFn: func(c *Config) { c.Detection.Cutoffs.Load = math.Inf(1) }, field: "detection.cutoffs.load"},
		{name: "NaN vibration cutoff", modifyFn: func(c *Config) { c.Detection.Cutoffs.Vibration = math.NaN() }, field: "detection.cutoffs.vibration"},
		{name: "negative infinite power cutoff", modifyFn: func(c *Config) { c.Detection.Cutoffs.Power = math.Inf(-1) }, field: "detection.cutoffs.power"},
		{name: "unknown remediation", modifyFn: func(c *Config) { c.Remediations["unknown"] = "x" }, field: "remediations.unknown"},
		{name: "empty remediation", modifyFn: func(c *Config) { c.Remediations["overload"] = "" }, field: "remediations.overload"},
		{name: "zero sink timeout", modifyFn: func(c *Config) { c.Dispatch.SinkTimeout = 0 }, field: "dispatch.sink_timeout"},
		{name: "bad display", modifyFn: func(c *Config) { c.Operator.Display = "tk" }, field: "operator.display"},
		{name: "command without argv", modifyFn: func(c *Config) { c.Operator.Display = "command"; c.Operator.Command = nil }, field: "operator.command"},
		{name: "zero queue", modifyFn: func(c *Config) { c.Operator.QueueSize = 0 }, field: "operator.queue_size"},
		{name: "bad bus kind", modifyFn: func(c *Config) { c.Bus.Kind = "kafka" }, field: "bus.kind"},
		{name: "broker without url", modifyFn: func(c *Config) { c.Bus.Kind = "amqp" }, field: "bus.url"},
		{name: "empty topic", modifyFn: func(c *Config) { c.Bus.Topic = "" }, field: "bus.topic"},
		{name: "bad qos", modifyFn: func(c *Config) { c.Bus.QoS = 3 }, field: "bus.qos"},
		{name: "relative webhook", modifyFn: func(c *Config) { c.Webhook.URL = "/hooks" }, field: "webhook.url"},
		{name: "bad level", modifyFn: func(c *Config) { c.Logging.Level = "trace" }, field: "logging.level"},
		{name: "bad format", modifyFn: func(c *Config) { c.Logging.Format = "xml" }, field: "logging.format"},
		{name: "bad protocol", modifyFn: func(c *Config) { c.Tracing.Endpoint = "otel:4317"; c.Tracing.Protocol = "udp" }, field: "tracing.protocol"},
		{name: "bad ratio", modifyFn: func(c *Config) { c.Tracing.SampleRatio = 2 }, field: "tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modifyFn(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1, "%v", errs)

			var ve *ValidationError
			require.True(t, errors.As(errs[0], &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestConfigValidation_DisabledSinksSkipChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Operator.Enabled = false
	cfg.Operator.Display = "tk"
	cfg.Bus.Kind = "none"
	cfg.Bus.Topic = ""
	assert.Empty(t, cfg.Validate())
}
