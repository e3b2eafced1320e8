// Package metrics provides Prometheus metrics for the call server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks open WebSocket connections per flow.
	ActiveConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "callroom_active_connections",
			Help: "Number of currently open connections",
		},
		[]string{"flow"},
	)

	// ActiveRooms tracks rooms with at least one member.
	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "callroom_active_rooms",
			Help: "Number of rooms with at least one member",
		},
	)

	// BroadcastDeliveries counts payloads queued to room members.
	BroadcastDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callroom_broadcast_deliveries_total",
			Help: "Total number of payloads queued to room members",
		},
	)

	// BroadcastDrops counts payloads a recipient could not accept.
	BroadcastDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callroom_broadcast_drops_total",
			Help: "Total number of payloads dropped for slow or closing recipients",
		},
	)

	// AdapterRequests counts external adapter calls by outcome.
	AdapterRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callroom_adapter_requests_total",
			Help: "Total number of external adapter calls",
		},
		[]string{"adapter", "outcome"},
	)

	// AdapterDuration tracks the latency of external adapter calls.
	AdapterDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "callroom_adapter_duration_seconds",
			Help:    "Duration of external adapter calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"adapter"},
	)
)

// RecordConnectionOpened increments the open connection gauge for flow.
func RecordConnectionOpened(flow string) {
	ActiveConnections.WithLabelValues(flow).Inc()
}

// RecordConnectionClosed decrements the open connection gauge for flow.
func RecordConnectionClosed(flow string) {
	ActiveConnections.WithLabelValues(flow).Dec()
}

// ObserveAdapter records one adapter call; outcome is "ok" or the error kind.
func ObserveAdapter(adapter string, start time.Time, outcome string) {
	AdapterDuration.WithLabelValues(adapter).Observe(time.Since(start).Seconds())
	AdapterRequests.WithLabelValues(adapter, outcome).Inc()
}
