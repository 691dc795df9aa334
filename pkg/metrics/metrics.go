package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Dispatch metrics
	OperationsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_operations_processed_total",
			Help: "Total number of tasks processed by worker kind",
		},
		[]string{"kind"},
	)

	OperationsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_operations_running",
			Help: "Number of operations currently executing",
		},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_queue_depth",
			Help: "Queued tasks by queue class",
		},
		[]string{"class"},
	)

	SubmissionsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_submissions_rejected_total",
			Help: "Total number of submissions rejected by a bounded queue",
		},
	)

	DeserializationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_deserialization_failures_total",
			Help: "Total number of packets dropped due to deserialization failure",
		},
	)

	// Worker metrics
	WorkersAlive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_workers_alive",
			Help: "Live dispatch workers by kind",
		},
		[]string{"kind"},
	)

	WorkerRespawns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_worker_respawns_total",
			Help: "Total number of dead workers restarted by the watchdog",
		},
	)

	WorkerDeaths = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_worker_deaths_total",
			Help: "Total number of worker goroutines that exited after a fault",
		},
	)

	// Transport metrics
	PacketsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_packets_received_total",
			Help: "Total number of packets received by kind",
		},
		[]string{"kind"},
	)

	OperationLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_operation_duration_seconds",
			Help:    "Operation handler execution time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Storage metrics
	StoredEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_stored_entries",
			Help: "Total number of entries held by the record store",
		},
	)

	InvocationsPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_invocations_pending",
			Help: "Invocations registered and awaiting a response",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(OperationsProcessed)
	prometheus.MustRegister(OperationsRunning)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(SubmissionsRejected)
	prometheus.MustRegister(DeserializationFailures)
	prometheus.MustRegister(WorkersAlive)
	prometheus.MustRegister(WorkerRespawns)
	prometheus.MustRegister(WorkerDeaths)
	prometheus.MustRegister(PacketsReceived)
	prometheus.MustRegister(OperationLatency)
	prometheus.MustRegister(StoredEntries)
	prometheus.MustRegister(InvocationsPending)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
