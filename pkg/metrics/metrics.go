package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunar_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts decision-procedure evaluations by transport
	// (http|socket|guard) and outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunar_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"transport", "result"},
	)

	// SocketEvents counts inbound websocket events by name.
	SocketEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunar_socket_events_total",
			Help: "Total number of inbound websocket events",
		},
		[]string{"event"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lunar_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
