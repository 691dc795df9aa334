/*
Package health provides liveness checks for a Burrow node.

The Service runs registered Checkers and aggregates their results into
a single Status. A node is healthy only when every check passes.

	┌──────────────────────────────────────────────┐
	│                Checker Interface             │
	│  • Name() string                             │
	│  • Check(ctx) Result                         │
	└────────┬─────────────────────────────────────┘
	         │
	    ┌────┴────────┐
	    ▼             ▼
	┌──────────┐  ┌──────────┐
	│  Worker  │  │  Queue   │
	│  Check   │  │  Check   │
	└──────────┘  └──────────┘
	  no dead       depth under
	  workers       threshold

WorkerCheck fails when any dispatch worker has died and not been
respawned. QueueCheck fails when the combined depth of the dispatch
queues exceeds a threshold, a sign workers cannot keep up with
arrivals.

Handler serves the aggregated status as JSON on the metrics listener
(conventionally /healthz), answering 200 when healthy and 503 when
not, so probes can act on the status code alone.

# Usage

	svc := health.NewService(5 * time.Second)
	svc.Register(health.NewWorkerCheck(sched))
	svc.Register(health.NewQueueCheck(sched, 10000))

	mux.Handle("/healthz", svc.Handler())
*/
package health
