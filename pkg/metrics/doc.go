/*
Package metrics provides Prometheus metrics collection and exposition for Burrow.

The metrics package defines and registers all Burrow metrics using the
Prometheus client library, providing observability into dispatch throughput,
queue depths, worker health, and transport activity. Metrics are exposed via
an HTTP endpoint for scraping by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry               │          │
	│  │  - Global DefaultRegistry                  │          │
	│  │  - MustRegister at package init            │          │
	│  │  - Automatic Go runtime metrics            │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                │          │
	│  │                                            │          │
	│  │  Dispatch: processed, running, rejected    │          │
	│  │  Queues: work/priority/response depth      │          │
	│  │  Workers: alive, deaths, respawns          │          │
	│  │  Transport: packets by kind                │          │
	│  │  Storage: entry count                      │          │
	│  │  Invocations: pending count                │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint             │          │
	│  │  - Path: /metrics                          │          │
	│  │  - Format: Prometheus text exposition      │          │
	│  │  - Handler: promhttp.Handler()             │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Metric Naming

All metrics use the burrow_ prefix with Prometheus conventions: _total for
counters, base units (seconds) for histograms, and label dimensions kept
low-cardinality (worker kind, queue class, packet kind).

# Collector

Counters on the hot path (processed tasks, rejections, deserialization
drops) are incremented inline by their owning components. Gauges that
require sampling (queue depths, alive workers, running operations, pending
invocations, stored entries) are refreshed by the node-level collector
(pkg/node) on a 15-second ticker.

# Timer

Timer wraps latency measurement for histogram observation:

	timer := metrics.NewTimer()
	// ... do the work ...
	timer.ObserveDuration(metrics.OperationLatency)

# See Also

  - pkg/scheduler - Source of the sampled dispatch statistics
  - pkg/node - Serves the /metrics listener
*/
package metrics
