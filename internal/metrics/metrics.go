// Package metrics provides Prometheus metrics for observability.
// Metrics are organized by domain: HTTP requests, realtime gateway, and notification fan-out.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "nano_comments"
)

// Relay message results.
const (
	RelayDelivered = "delivered"
	RelayNoRoom    = "no_room"
	RelayDropped   = "dropped"
)

var (
	// HTTP metrics - track request volume and latency
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Gateway metrics - live connections held by this process
	GatewayConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "connections",
			Help:      "Number of open realtime connections in this process",
		},
	)

	GatewayJoinedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "joined_users",
			Help:      "Number of users with at least one joined connection in this process",
		},
	)

	GatewayEventsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "events_sent_total",
			Help:      "Events pushed to connections by event name",
		},
		[]string{"event"},
	)

	// Notification metrics - dispatch and relay fan-out
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "dispatched_total",
			Help:      "Notifications persisted by type and publish result",
		},
		[]string{"type", "publish"},
	)

	RelayMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "messages_total",
			Help:      "Relay messages received by this process by result",
		},
		[]string{"result"},
	)
)

// ObserveDispatch records one persisted notification and whether its publish succeeded.
func ObserveDispatch(notificationType string, published bool) {
	result := "ok"
	if !published {
		result = "failed"
	}
	NotificationsDispatched.WithLabelValues(notificationType, result).Inc()
}

// ObserveRelayMessage records the outcome of one relay message.
func ObserveRelayMessage(result string) {
	RelayMessages.WithLabelValues(result).Inc()
}

// ObserveEventSent records one event pushed to a connection.
func ObserveEventSent(event string) {
	GatewayEventsSent.WithLabelValues(event).Inc()
}
