package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectedClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "cranewatch_websocket_clients",
		Help: "Number of connected real-time alert clients.",
	},
)
