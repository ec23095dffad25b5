package action

import "github.com/prometheus/client_golang/prometheus"

var (
	// ExecutionsTotal counts action executions by final result.
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolve_action_executions_total",
			Help: "Total number of action executions",
		},
		[]string{"action_id", "result"},
	)

	// ExecutionDuration measures action executions including retries.
	ExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resolve_action_execution_duration_seconds",
			Help:    "Duration of action executions including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action_id"},
	)
)

// Collectors returns the action metrics to register with the metrics server.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{ExecutionsTotal, ExecutionDuration}
}
