package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sinkNotifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cranewatch_sink_notify_total",
			Help: "Total sink notification attempts by sink and status.",
		},
		[]string{"sink", "status"},
	)
	sinkNotifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cranewatch_sink_notify_duration_seconds",
			Help:    "Duration of sink notification calls.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"sink"},
	)
	operatorQueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cranewatch_operator_alerts_dropped_total",
			Help: "Operator alerts dropped because the display queue was full.",
		},
	)
)
