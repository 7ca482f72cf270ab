package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the server
type Metrics struct {
	// Session metrics
	activeSessions      prometheus.Gauge
	connectionsAccepted prometheus.Counter
	connectionsClosed   prometheus.Counter

	// Frame metrics
	commandsReceived *prometheus.CounterVec // by command kind
	responsesSent    *prometheus.CounterVec // by response kind

	// Broadcast metrics
	broadcastFanout prometheus.Histogram
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		activeSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "onlinechat_active_sessions",
				Help: "Current number of authenticated sessions",
			},
		),
		connectionsAccepted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "onlinechat_connections_accepted_total",
				Help: "Total number of connections accepted",
			},
		),
		connectionsClosed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "onlinechat_connections_closed_total",
				Help: "Total number of connections closed",
			},
		),
		commandsReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onlinechat_commands_received_total",
				Help: "Total number of commands received from clients by kind",
			},
			[]string{"kind"},
		),
		responsesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onlinechat_responses_sent_total",
				Help: "Total number of responses and events sent to clients by kind",
			},
			[]string{"kind"},
		),
		broadcastFanout: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "onlinechat_broadcast_fanout",
				Help:    "Number of clients that received each broadcast",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
	}
}

// RecordActiveSessions updates the authenticated session count
func (m *Metrics) RecordActiveSessions(count int) {
	m.activeSessions.Set(float64(count))
}

// RecordConnectionAccepted increments the accepted connection counter
func (m *Metrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

// RecordConnectionClosed increments the closed connection counter
func (m *Metrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
}

// RecordCommandReceived increments the command counter for a kind
func (m *Metrics) RecordCommandReceived(kind string) {
	m.commandsReceived.WithLabelValues(kind).Inc()
}

// RecordResponseSent increments the response counter for a kind
func (m *Metrics) RecordResponseSent(kind string) {
	m.responsesSent.WithLabelValues(kind).Inc()
}

// RecordBroadcastFanout records how many clients received a broadcast
func (m *Metrics) RecordBroadcastFanout(recipientCount int) {
	m.broadcastFanout.Observe(float64(recipientCount))
}
