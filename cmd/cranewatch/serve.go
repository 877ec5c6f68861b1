package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/api"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/broadcast"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/certs"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/classifier"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/config"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/logging"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/telemetry"
)

// serveFlagKeys maps serve flags to the config keys they override.
var serveFlagKeys = map[string]string{
	"addr":        "server.addr",
	"threshold":   "detection.threshold",
	"model":       "model.autoencoder_uri",
	"scaler":      "model.scaler_uri",
	"bus-kind":    "bus.kind",
	"bus-url":     "bus.url",
	"bus-topic":   "bus.topic",
	"webhook-url": "webhook.url",
	"rate-limit":  "server.requests_per_second",
	"tls-mode":    "server.tls.mode",
	"log-level":   "logging.level",
	"log-format":  "logging.format",
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger endpoint and alert sinks",
		Long: `Load the model artifacts, connect the alert sinks and serve the
HTTP API until interrupted.

Flags override the config file and CRANEWATCH_* environment variables.

Examples:
  # Serve with the bundled model and log-only sinks
  cranewatch serve

  # Publish alerts to NATS
  cranewatch serve --bus-kind nats --bus-url nats://localhost:4222`,
		RunE: runServe,
	}

	f := cmd.Flags()
	f.String("addr", ":5000", "HTTP listen address")
	f.Float64("threshold", classifier.DefaultThreshold, "Reconstruction error above which a reading is anomalous")
	f.String("model", "", "Autoencoder artifact path or s3:// URI")
	f.String("scaler", "", "Scaler artifact path or s3:// URI")
	f.String("bus-kind", "log", "Message bus: none, log, nats, amqp, mqtt, redis")
	f.String("bus-url", "", "Message bus URL")
	f.String("bus-topic", "crane/anomalies", "Message bus topic")
	f.String("webhook-url", "", "Webhook URL for anomaly events (empty disables)")
	f.Float64("rate-limit", 0, "Trigger requests per second (0 disables)")
	f.String("tls-mode", "off", "TLS mode: off, files, self-signed")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.String("log-format", "json", "Log format: json, console")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
		FlagKeys:   serveFlagKeys,
	})
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting cranewatch",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.Float64("threshold", cfg.Detection.Threshold),
		zap.String("bus_kind", cfg.Bus.Kind),
		zap.Bool("operator_enabled", cfg.Operator.Enabled),
		zap.Bool("broadcast_enabled", cfg.Broadcast.Enabled),
	)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}
	return serve(ctx, logger, cfg, ln)
}

// setupTracing is replaced in tests.
var setupTracing = telemetry.Setup

// serve runs until ctx is cancelled or the server fails. It owns ln.
func serve(ctx context.Context, logger *zap.Logger, cfg *config.Config, ln net.Listener) error {
	shutdownTracing, err := setupTracing(ctx, logger, cfg.Tracing)
	if err != nil {
		ln.Close()
		return err
	}
	// Runs last, on every return path.
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Failed to flush traces", zap.Error(err))
		}
	}()

	// Workers outlive ctx so in-flight requests can still dispatch while
	// the HTTP server drains.
	workCtx, stopWork := context.WithCancel(context.Background())
	defer stopWork()

	svc, err := newService(workCtx, logger, cfg)
	if err != nil {
		ln.Close()
		return err
	}

	if ln, err = listenTLS(workCtx, logger, cfg.Server.TLS, ln); err != nil {
		_ = svc.Close()
		return err
	}

	var ready atomic.Bool
	srv := &http.Server{
		Handler:           api.NewHandler(logger, svc.apiOptions(cfg, &ready)),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	ready.Store(true)
	logger.Info("HTTP server listening",
		zap.String("addr", ln.Addr().String()),
		zap.Strings("sinks", svc.dispatcher.Sinks()),
	)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}
	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	stopWork()
	if err := svc.Close(); err != nil {
		logger.Error("Failed to close sinks", zap.Error(err))
	}
	logger.Info("Stopped")
	return serveErr
}

// listenTLS wraps ln in TLS unless the mode is off.
func listenTLS(ctx context.Context, logger *zap.Logger, cfg config.TLSConfig, ln net.Listener) (net.Listener, error) {
	mgr := certs.NewManager(certs.Options{
		Mode:     certs.Mode(cfg.Mode),
		CertFile: cfg.CertFile,
		KeyFile:  cfg.KeyFile,
		Dir:      cfg.Dir,
		Hosts:    cfg.Hosts,
	}, logger)
	if !mgr.Enabled() {
		return ln, nil
	}
	if err := mgr.EnsureCertificates(); err != nil {
		ln.Close()
		return nil, fmt.Errorf("tls: %w", err)
	}
	mgr.StartRotationWatcher(ctx, cfg.CheckInterval)
	logger.Info("Serving TLS",
		zap.String("mode", cfg.Mode),
		zap.Time("expires", mgr.Leaf().NotAfter))
	return tls.NewListener(ln, mgr.TLSConfig()), nil
}

func (s *service) apiOptions(cfg *config.Config, ready *atomic.Bool) api.Options {
	opts := api.Options{
		Processor: s.pipeline,
		Catalog:   s.catalog,
		Capabilities: api.CapabilitiesHandlerOptions{
			Classifier: s.classifier,
			Sinks:      s.dispatcher.Sinks(),
		},
		Ready: func() error {
			if !ready.Load() {
				return errors.New("not serving")
			}
			return nil
		},
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
	}
	if s.busSink != nil {
		opts.Capabilities.Bus = &api.BusStatus{Kind: string(s.busKind), Topic: s.busSink.Topic()}
	}
	if s.hub != nil {
		opts.WebSocket = broadcast.NewHandler(s.hub, cfg.Broadcast.AllowedOrigins)
		opts.Events = broadcast.NewSSEHandler(s.hub)
		opts.Capabilities.ClientCount = s.hub.ClientCount
	}
	return opts
}
