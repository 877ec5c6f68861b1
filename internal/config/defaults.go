package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultConfig returns a configuration with all default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Server defaults
	cfg.Server.Addr = ":5000"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 15 * time.Second
	cfg.Server.RequestsPerSecond = 0
	cfg.Server.Burst = 10
	cfg.Server.TLS.Mode = "off"
	cfg.Server.TLS.Dir = "certs"
	cfg.Server.TLS.Hosts = []string{"localhost", "127.0.0.1"}
	cfg.Server.TLS.CheckInterval = time.Hour

	// Model defaults
	cfg.Model.AutoencoderURI = "deploy/artifacts/autoencoder.yaml"
	cfg.Model.ScalerURI = "deploy/artifacts/scaler.yaml"
	cfg.Model.S3.Region = "us-east-1"
	cfg.Model.S3.UseSSL = true

	// Detection defaults
	cfg.Detection.Threshold = 0.01
	cfg.Detection.Cutoffs = CutoffsConfig{
		Temperature: 100,
		Load:        900,
		Vibration:   45,
		Power:       40,
	}

	cfg.Remediations = map[string]string{}

	// Dispatch defaults
	cfg.Dispatch.SinkTimeout = 5 * time.Second

	// Operator defaults
	cfg.Operator.Enabled = true
	cfg.Operator.Display = "log"
	cfg.Operator.Command = []string{"notify-send", "--urgency=critical", "{title}", "{body}"}
	cfg.Operator.QueueSize = 32
	cfg.Operator.DisplayTimeout = 30 * time.Second

	// Broadcast defaults
	cfg.Broadcast.Enabled = true
	cfg.Broadcast.AllowedOrigins = []string{"*"}

	// Bus defaults
	cfg.Bus.Kind = "log"
	cfg.Bus.Topic = "crane/anomalies"
	cfg.Bus.Exchange = "cranewatch.alerts"
	cfg.Bus.ClientID = "cranewatch"
	cfg.Bus.QoS = 0
	cfg.Bus.ConnectTimeout = 10 * time.Second

	// Webhook defaults
	cfg.Webhook.Timeout = 10 * time.Second

	// Logging defaults
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Logging.MaxSizeMB = 100
	cfg.Logging.MaxBackups = 5
	cfg.Logging.MaxAgeDays = 30
	cfg.Logging.Compress = true

	// Tracing defaults
	cfg.Tracing.Protocol = "grpc"
	cfg.Tracing.ServiceName = "cranewatch"
	cfg.Tracing.SampleRatio = 1.0

	return cfg
}

// setDefaults registers every key with viper. Keys unknown to viper are not
// picked up from the environment.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.requests_per_second", d.Server.RequestsPerSecond)
	v.SetDefault("server.burst", d.Server.Burst)
	v.SetDefault("server.tls.mode", d.Server.TLS.Mode)
	v.SetDefault("server.tls.cert_file", d.Server.TLS.CertFile)
	v.SetDefault("server.tls.key_file", d.Server.TLS.KeyFile)
	v.SetDefault("server.tls.dir", d.Server.TLS.Dir)
	v.SetDefault("server.tls.hosts", d.Server.TLS.Hosts)
	v.SetDefault("server.tls.check_interval", d.Server.TLS.CheckInterval)

	v.SetDefault("model.autoencoder_uri", d.Model.AutoencoderURI)
	v.SetDefault("model.scaler_uri", d.Model.ScalerURI)
	v.SetDefault("model.s3.endpoint", d.Model.S3.Endpoint)
	v.SetDefault("model.s3.access_key", d.Model.S3.AccessKey)
	v.SetDefault("model.s3.secret_key", d.Model.S3.SecretKey)
	v.SetDefault("model.s3.region", d.Model.S3.Region)
	v.SetDefault("model.s3.use_ssl", d.Model.S3.UseSSL)

	v.SetDefault("detection.threshold", d.Detection.Threshold)
	v.SetDefault("detection.cutoffs.temperature", d.Detection.Cutoffs.Temperature)
	v.SetDefault("detection.cutoffs.load", d.Detection.Cutoffs.Load)
	v.SetDefault("detection.cutoffs.vibration", d.Detection.Cutoffs.Vibration)
	v.SetDefault("detection.cutoffs.power", d.Detection.Cutoffs.Power)

	v.SetDefault("dispatch.sink_timeout", d.Dispatch.SinkTimeout)

	v.SetDefault("operator.enabled", d.Operator.Enabled)
	v.SetDefault("operator.display", d.Operator.Display)
	v.SetDefault("operator.command", d.Operator.Command)
	v.SetDefault("operator.queue_size", d.Operator.QueueSize)
	v.SetDefault("operator.display_timeout", d.Operator.DisplayTimeout)

	v.SetDefault("broadcast.enabled", d.Broadcast.Enabled)
	v.SetDefault("broadcast.allowed_origins", d.Broadcast.AllowedOrigins)

	v.SetDefault("bus.kind", d.Bus.Kind)
	v.SetDefault("bus.url", d.Bus.URL)
	v.SetDefault("bus.topic", d.Bus.Topic)
	v.SetDefault("bus.exchange", d.Bus.Exchange)
	v.SetDefault("bus.client_id", d.Bus.ClientID)
	v.SetDefault("bus.qos", d.Bus.QoS)
	v.SetDefault("bus.connect_timeout", d.Bus.ConnectTimeout)

	v.SetDefault("webhook.url", d.Webhook.URL)
	v.SetDefault("webhook.timeout", d.Webhook.Timeout)
	v.SetDefault("webhook.auth_token", d.Webhook.AuthToken)
	v.SetDefault("webhook.insecure_skip_verify", d.Webhook.InsecureSkipVerify)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.protocol", d.Tracing.Protocol)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sample_ratio", d.Tracing.SampleRatio)
}
