/*
Package scheduler provides operation dispatch for a Burrow grid node.

The scheduler is responsible for routing every task the node has to run
(deserialized operations, raw wire packets, housekeeping runnables) onto a
fixed set of long-lived dispatch workers. It guarantees that all
operations of a partition execute on a single goroutine, that urgent work
overtakes ordinary work, and that invocation responses never queue behind
operations.

# Architecture

Tasks enter through three submission paths and fan out over three worker
classes:

	          Submit(op)    SubmitPacket(pkt)    SubmitRunnable(fn)
	              │                │                    │
	              ▼                ▼                    ▼
	┌────────────────────────────────────────────────────────────┐
	│                        Routing                             │
	│  - executor-named op  → named executor pool                │
	│  - response packet    → response worker FIFO               │
	│  - partition id >= 0  → partition worker (id mod P)        │
	│  - partition id <  0  → shared generic queue               │
	│  - urgent             → priority queue + wakeup no-op      │
	└───────────┬────────────────┬─────────────────┬─────────────┘
	            │                │                 │
	            ▼                ▼                 ▼
	┌──────────────────┐ ┌──────────────────┐ ┌───────────────┐
	│ P partition      │ │ G generic        │ │ 1 response    │
	│ workers          │ │ workers          │ │ worker        │
	│ private FIFO +   │ │ shared FIFO +    │ │ private FIFO  │
	│ priority queue   │ │ priority queue   │ │ (no priority) │
	└──────────────────┘ └──────────────────┘ └───────────────┘

Defaults: P = max(2, NumCPU), G = max(2, NumCPU/2), both overridable via
Config.

# Partition Affinity

Partition p is owned by partition worker p mod P for the scheduler's
lifetime. Because one goroutine drains one partition queue, all
operations of a partition are serialized without locks; the storage layer
relies on this to see at most one writer per partition.

# Urgent Work

Every worker drains its priority queue to exhaustion after each blocking
take returns and before processing the ordinary task it took. An urgent
submission offers the task to the priority queue and a singleton no-op
wakeup to the blocking FIFO; the wakeup exists only
to rouse a sleeping worker, and spurious wakeups are harmless.

# Worker Loop

Each worker runs:

	for {
		task ← blocking take          (sleeps here)
		if interrupted: exit if shutting down, else re-take
		if shutting down: exit
		drain priority queue to empty
		process(task)
	}

Processing increments the worker's processed count, then branches on task
type: runnables are called under a panic guard; operation packets are
deserialized (failures are logged and the packet dropped); operations are
published to the worker's current-operation slot, handed to the operation
handler, and the slot is cleared when the handler returns. Handler errors
and panics are logged and never kill the worker loop; a fault escaping
the per-task guards marks the worker dead for the watchdog
(pkg/reconciler) to act on.

# Goroutine Role Policy

Contexts are tagged with the role of the goroutine they act for: dispatch
workers tag the contexts they invoke handlers with, the transport tags
its reader goroutines RoleIO, everything else is RoleUser. Two predicates
consult the tag:

  - AllowedToRun: may this goroutine execute the operation in place
    instead of queueing it? I/O goroutines never may; partition-bound
    operations only on their owning worker.
  - InvocationAllowed: may this goroutine block for an invocation
    response? Partition workers only for their own partitions, because
    blocking on a foreign partition deadlocks when the target operation
    sits behind the caller in its own queue.

# Shutdown

Stop raises the shutdown flag, interrupts every blocking queue, and joins
each worker with a bounded wait (TerminationTimeout, default 3s). Workers
checking the flag after every take exit promptly; a worker stuck in a
long-running operation is logged and abandoned.

# Usage

	sched, err := scheduler.NewScheduler(scheduler.Config{
		OperationHandler: opHandler,
		ResponseHandler:  respHandler,
		Executors:        executorService,
	})
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Partition operation: serialized on the owning worker
	err = sched.Submit(&types.Operation{PartitionID: 42, Kind: types.OpPut, ...})

	// Urgent packet from the wire
	err = sched.SubmitPacket(pkt)

	// Housekeeping on a partition worker
	err = sched.SubmitRunnable(func() { compact(42) }, 42)

# See Also

  - pkg/queue - The blocking/priority queue pair each worker owns
  - pkg/handler - Default operation handler executing grid operations
  - pkg/invocation - Response handler completing pending invocations
  - pkg/reconciler - Watchdog respawning dead workers
*/
package scheduler
