package node

import (
	"time"

	"github.com/cuemby/burrow/pkg/invocation"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/storage"
)

// MetricsCollector samples node state into the Prometheus gauges
type MetricsCollector struct {
	sched    *scheduler.Scheduler
	registry *invocation.Registry
	store    storage.Store
	stopCh   chan struct{}
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(sched *scheduler.Scheduler, registry *invocation.Registry, store storage.Store) *MetricsCollector {
	return &MetricsCollector{
		sched:    sched,
		registry: registry,
		store:    store,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *MetricsCollector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *MetricsCollector) Stop() {
	close(c.stopCh)
}

func (c *MetricsCollector) collect() {
	alive := make(map[scheduler.WorkerKind]int)
	for _, stat := range c.sched.WorkerStats() {
		if stat.Alive {
			alive[stat.Kind]++
		}
	}
	for _, kind := range []scheduler.WorkerKind{
		scheduler.WorkerKindPartition,
		scheduler.WorkerKindGeneric,
		scheduler.WorkerKindResponse,
	} {
		metrics.WorkersAlive.WithLabelValues(string(kind)).Set(float64(alive[kind]))
	}

	metrics.QueueDepth.WithLabelValues("work").Set(float64(c.sched.QueueSize()))
	metrics.QueueDepth.WithLabelValues("priority").Set(float64(c.sched.PriorityQueueSize()))
	metrics.QueueDepth.WithLabelValues("response").Set(float64(c.sched.ResponseQueueSize()))

	metrics.OperationsRunning.Set(float64(c.sched.RunningOperationCount()))
	metrics.InvocationsPending.Set(float64(c.registry.Pending()))
	metrics.StoredEntries.Set(float64(c.store.EntryCount()))
}
