package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "taskfan"

var (
	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of task sessions, labeled by overall status.",
		},
		[]string{"status"},
	)

	SessionLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_latency_seconds",
			Help:      "Wall-clock duration of the concurrent dispatch phase (seconds).",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	WorkerCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_calls_total",
			Help:      "Total number of outbound worker calls, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	WorkerCallLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_call_latency_seconds",
			Help:      "Round-trip latency of individual worker calls (seconds).",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	RegisteredWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_workers",
			Help:      "Current number of workers in the registry.",
		},
	)

	WorkersEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workers_evicted_total",
			Help:      "Total number of workers evicted by the liveness checker.",
		},
	)
)

// Outcome label values for WorkerCallsTotal / WorkerCallLatencySeconds.
const (
	OutcomeSuccess          = "success"
	OutcomeTimeout          = "timeout"
	OutcomeConnectionFailed = "connection_failed"
	OutcomeWorkerError      = "worker_error"
)

func init() {
	prometheus.MustRegister(
		SessionsTotal,
		SessionLatencySeconds,
		WorkerCallsTotal,
		WorkerCallLatencySeconds,
		RegisteredWorkers,
		WorkersEvictedTotal,
	)
}
