package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultNormal    = "normal"
	resultAnomalous = "anomalous"
	resultRejected  = "rejected"
	resultError     = "error"
)

var (
	readingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cranewatch_readings_total",
			Help: "Readings processed by outcome (normal, anomalous, rejected, error).",
		},
		[]string{"result"},
	)
	anomaliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cranewatch_anomalies_total",
			Help: "Anomalies detected by issue category.",
		},
		[]string{"issue"},
	)
	reconstructionError = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cranewatch_reconstruction_error",
			Help:    "Reconstruction error of scored readings.",
			Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)
