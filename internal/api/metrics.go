package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts trigger requests by route and status code.
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cranewatch_http_requests_total",
		Help: "Trigger endpoint requests by route and status code",
	}, []string{"route", "code"})

	// rateLimitedTotal counts requests rejected by the limiter.
	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cranewatch_http_rate_limited_total",
		Help: "Requests rejected with 429 by the trigger rate limiter",
	}, []string{"route"})
)
