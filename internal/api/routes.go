package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/notifier"
)

// Options configures the routes registered by RegisterHandlers.
type Options struct {
	Processor    Processor
	Catalog      *notifier.Catalog
	Capabilities CapabilitiesHandlerOptions

	// WebSocket serves /ws and Events serves /events. Nil leaves the
	// route unregistered.
	WebSocket http.Handler
	Events    http.Handler

	// Ready backs /readyz. Nil reports ready.
	Ready ReadinessCheck

	// RequestsPerSecond limits /test_alert and /api/v1/readings together.
	// 0 disables the limit.
	RequestsPerSecond float64
	Burst             int
}

// RegisterHandlers registers API handlers on the given mux.
func RegisterHandlers(mux *http.ServeMux, logger *zap.Logger, opts Options) {
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	trigger := func(route string, h http.Handler) http.Handler {
		return instrument(route, countRequests(route, RateLimit(route, limiter, logger, h)))
	}

	mux.Handle("/test_alert", trigger("/test_alert", NewTestAlertHandler(opts.Processor, logger)))
	mux.Handle("/api/v1/readings", trigger("/api/v1/readings", NewReadingsHandler(opts.Processor, logger)))
	mux.Handle("/api/v1/remediations", instrument("/api/v1/remediations", NewRemediationsHandler(opts.Catalog, logger)))
	mux.Handle("/api/v1/capabilities", instrument("/api/v1/capabilities", NewCapabilitiesHandler(logger, opts.Capabilities)))

	if opts.WebSocket != nil {
		mux.Handle("/ws", opts.WebSocket)
	}
	if opts.Events != nil {
		mux.Handle("/events", opts.Events)
	}

	ready := opts.Ready
	if ready == nil {
		ready = func() error { return nil }
	}
	mux.Handle("/healthz", NewHealthHandler(nil, logger))
	mux.Handle("/readyz", NewHealthHandler(ready, logger))
	mux.Handle("/metrics", promhttp.Handler())
}

// NewHandler returns a mux with every route registered.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	mux := http.NewServeMux()
	RegisterHandlers(mux, logger, opts)
	return mux
}

func instrument(route string, h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, route,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + route
		}),
	)
}
