// Package telemetry defines the Prometheus collectors exposed on /metrics.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "muzfi"

var (
	// OktaRequestsTotal counts Okta management API calls by operation and result.
	OktaRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "okta_requests_total",
			Help:      "Total number of Okta management API calls by operation and result",
		},
		[]string{"op", "result"}, // result: ok, not_found, not_applied, error
	)

	// OktaRequestDurationSeconds measures Okta management API latency.
	OktaRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "okta_request_duration_seconds",
			Help:      "Duration of Okta management API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// RoleEditsTotal counts role edits by action and result.
	RoleEditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_edits_total",
			Help:      "Total number of role edits by action and result",
		},
		[]string{"action", "result"}, // result: applied, not_applied, error
	)

	// AuthzDenialsTotal counts rejected requests by reason.
	AuthzDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_denials_total",
			Help:      "Total number of rejected requests by reason",
		},
		[]string{"reason"}, // reason: unauthenticated, policy, not_acting_user
	)
)

// RecordOktaRequest records one Okta call.
func RecordOktaRequest(op, result string, elapsed time.Duration) {
	OktaRequestsTotal.WithLabelValues(op, result).Inc()
	OktaRequestDurationSeconds.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordRoleEdit records the outcome of a role edit.
func RecordRoleEdit(action, result string) {
	RoleEditsTotal.WithLabelValues(action, result).Inc()
}

// RecordAuthzDenial records a rejected request.
func RecordAuthzDenial(reason string) {
	AuthzDenialsTotal.WithLabelValues(reason).Inc()
}
