// Package metrics registers the console's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts backend calls by method and final status.
	// Status is "error" when no response was received.
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_backend_requests_total",
			Help: "Backend API requests issued by the console",
		},
		[]string{"method", "status"},
	)

	// TokenRefreshes counts refresh attempts by result (ok, failed)
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_token_refreshes_total",
			Help: "Access token refresh attempts",
		},
		[]string{"result"},
	)

	// SessionTransitions counts session state changes by target state
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_session_transitions_total",
			Help: "Session state transitions",
		},
		[]string{"state"},
	)

	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_notifications_dropped_total",
			Help: "Error notifications dropped because the sink was full",
		},
	)

	PageDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_page_decisions_total",
			Help: "Page gate decisions (allow, login, denied)",
		},
		[]string{"decision"},
	)
)
