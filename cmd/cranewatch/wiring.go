package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/broadcast"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/bus"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/classifier"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/config"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/model"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/notifier"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/pipeline"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// loadModel loads the scaler and autoencoder and checks that they agree on
// the number of channels. Every error wraps types.ErrModelUnavailable.
func loadModel(ctx context.Context, cfg config.ModelConfig) (*model.MinMaxScaler, *model.Autoencoder, error) {
	store, err := model.NewArtifacts(model.S3Options{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", types.ErrModelUnavailable, err)
	}

	scaler, err := model.LoadMinMaxScaler(ctx, store, cfg.ScalerURI)
	if err != nil {
		return nil, nil, err
	}
	ae, err := model.LoadAutoencoder(ctx, store, cfg.AutoencoderURI)
	if err != nil {
		return nil, nil, err
	}
	if scaler.Dimensions() != ae.InputDim() {
		return nil, nil, fmt.Errorf("%w: scaler has %d channels, model expects %d",
			types.ErrModelUnavailable, scaler.Dimensions(), ae.InputDim())
	}
	return scaler, ae, nil
}

func newClassifier(cfg config.DetectionConfig) (*classifier.Classifier, error) {
	return classifier.New(cfg.Threshold, classifier.DefaultRules(classifier.Thresholds{
		Temperature: cfg.Cutoffs.Temperature,
		Load:        cfg.Cutoffs.Load,
		Vibration:   cfg.Cutoffs.Vibration,
		Power:       cfg.Cutoffs.Power,
	}))
}

func newCatalog(overrides map[string]string) (*notifier.Catalog, error) {
	m := make(map[types.IssueKind]string, len(overrides))
	for k, v := range overrides {
		m[types.IssueKind(k)] = v
	}
	return notifier.NewCatalog(m)
}

// service is everything serve builds from configuration.
type service struct {
	classifier *classifier.Classifier
	catalog    *notifier.Catalog
	dispatcher *notifier.Dispatcher
	pipeline   *pipeline.Pipeline
	hub        *broadcast.Hub
	busSink    *notifier.BusSink
	busKind    bus.Kind

	closers []func() error
}

// newService wires the pipeline and its sinks. Background workers are bound
// to ctx; call Close after ctx is cancelled.
func newService(ctx context.Context, logger *zap.Logger, cfg *config.Config) (_ *service, err error) {
	svc := &service{busKind: bus.Kind(cfg.Bus.Kind)}
	defer func() {
		if err != nil {
			_ = svc.Close()
		}
	}()

	scaler, ae, err := loadModel(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}
	logger.Info("Model loaded",
		zap.String("autoencoder", cfg.Model.AutoencoderURI),
		zap.String("scaler", cfg.Model.ScalerURI),
		zap.Int("channels", ae.InputDim()),
	)

	if svc.classifier, err = newClassifier(cfg.Detection); err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	if svc.catalog, err = newCatalog(cfg.Remediations); err != nil {
		return nil, fmt.Errorf("build remediation catalog: %w", err)
	}

	sinks, err := svc.buildSinks(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	svc.dispatcher = notifier.NewDispatcher(logger, notifier.DispatcherOptions{
		SinkTimeout: cfg.Dispatch.SinkTimeout,
		Sinks:       sinks,
	})

	svc.pipeline, err = pipeline.New(logger, pipeline.Options{
		Normalizer: scaler,
		Scorer:     model.NewScorer(ae),
		Classifier: svc.classifier,
		Catalog:    svc.catalog,
		Dispatcher: svc.dispatcher,
	})
	if err != nil {
		return nil, err
	}

	if svc.hub != nil {
		go svc.hub.Run(ctx)
	}
	svc.dispatcher.Start(ctx)
	return svc, nil
}

func (s *service) buildSinks(ctx context.Context, logger *zap.Logger, cfg *config.Config) ([]notifier.Sink, error) {
	var sinks []notifier.Sink

	if cfg.Operator.Enabled {
		var display notifier.OperatorDisplay
		switch cfg.Operator.Display {
		case "command":
			cmdDisplay, err := notifier.NewCommandDisplay(cfg.Operator.Command)
			if err != nil {
				return nil, fmt.Errorf("operator display: %w", err)
			}
			display = cmdDisplay
		default:
			display = notifier.NewLogDisplay(logger)
		}
		op := notifier.NewOperatorSink(logger, display, notifier.OperatorSinkConfig{
			QueueSize:      cfg.Operator.QueueSize,
			DisplayTimeout: cfg.Operator.DisplayTimeout,
		})
		s.closers = append(s.closers, func() error { op.Close(); return nil })
		sinks = append(sinks, op)
	}

	if cfg.Broadcast.Enabled {
		s.hub = broadcast.NewHub(logger)
		sinks = append(sinks, notifier.NewBroadcastSink(s.hub))
	}

	if s.busKind != bus.KindNone {
		pub, err := bus.New(ctx, logger, bus.Config{
			Kind:           s.busKind,
			URL:            cfg.Bus.URL,
			Exchange:       cfg.Bus.Exchange,
			ClientID:       cfg.Bus.ClientID,
			QoS:            byte(cfg.Bus.QoS),
			ConnectTimeout: cfg.Bus.ConnectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect %s bus: %w", s.busKind, err)
		}
		s.closers = append(s.closers, pub.Close)
		s.busSink = notifier.NewBusSink(pub, cfg.Bus.Topic)
		sinks = append(sinks, s.busSink)
	}

	if cfg.Webhook.URL != "" {
		wh, err := notifier.NewWebhookSink(logger, notifier.WebhookSinkConfig{
			URL:                cfg.Webhook.URL,
			Timeout:            cfg.Webhook.Timeout,
			InsecureSkipVerify: cfg.Webhook.InsecureSkipVerify,
			AuthToken:          cfg.Webhook.AuthToken,
		})
		if err != nil {
			return nil, fmt.Errorf("webhook sink: %w", err)
		}
		logger.Info("Webhook sink configured", zap.String("url", notifier.RedactURL(cfg.Webhook.URL)))
		sinks = append(sinks, wh)
	}

	return sinks, nil
}

// Close releases sink resources in reverse order of creation.
func (s *service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
