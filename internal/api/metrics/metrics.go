// Package metrics defines the Prometheus metrics for the user directory API.
// Metric names, labels and help strings live here and nowhere else.
//
// Metrics register with the default registry on package init (promauto).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "directory"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - op: "register", "login" or "me"
//   - result: "ok" or the error code returned to the client (e.g. "InvalidCredentials")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication endpoint calls, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountOperationsTotal counts account CRUD calls.
// Labels:
//   - op: "list", "get", "create", "update" or "delete"
//   - result: "ok" or the error code returned to the client
var AccountOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_operations_total",
		Help:      "Total number of account operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// OperationDuration measures service calls made by the handlers.
// Label:
//   - op: same values as the counters above
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of directory service calls made by HTTP handlers.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// ObserveAuth records one auth call.
func ObserveAuth(op, result string, start time.Time) {
	AuthAttemptsTotal.WithLabelValues(op, result).Inc()
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveAccount records one account call.
func ObserveAccount(op, result string, start time.Time) {
	AccountOperationsTotal.WithLabelValues(op, result).Inc()
	OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
