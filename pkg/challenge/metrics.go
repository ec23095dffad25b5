package challenge

import "github.com/prometheus/client_golang/prometheus"

var (
	// TransitionsTotal counts committed challenge transitions.
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolve_challenge_transitions_total",
			Help: "Total number of committed challenge transitions",
		},
		[]string{"status", "reason"},
	)

	// OperationErrorsTotal counts failed manager operations by operation.
	OperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolve_challenge_operation_errors_total",
			Help: "Total number of challenge operations that returned an error",
		},
		[]string{"operation"},
	)

	// CreditsMovedTotal counts credits staked and refunded.
	CreditsMovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolve_credits_moved_total",
			Help: "Total resolve credits debited or credited by challenge transitions",
		},
		[]string{"direction"},
	)
)

// Collectors returns the metrics to register with the metrics server.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{TransitionsTotal, OperationErrorsTotal, CreditsMovedTotal}
}
