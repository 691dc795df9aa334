/*
Package reconciler provides failure detection and healing for dispatch workers.

The reconciler is the node's worker watchdog. A dispatch worker that
panics outside the per-task guard (or exhausts memory) dies and leaves
its queues unserved; the watchdog sweeps the scheduler's dead-worker
view on a short ticker and applies the configured policy:

	┌──────────────────── WATCHDOG SWEEP ────────────────────┐
	│                                                        │
	│   scheduler.DeadWorkers()                              │
	│          │                                             │
	│          ▼                                             │
	│   ┌─ policy ──────────────────────────────────┐        │
	│   │ respawn   relaunch on existing queues,    │        │
	│   │           exponential backoff per worker  │        │
	│   │ escalate  trigger node shutdown (once)    │        │
	│   │ none      log and publish the death only  │        │
	│   └───────────────────────────────────────────┘        │
	│                                                        │
	└────────────────────────────────────────────────────────┘

Respawned workers reuse their queues, so tasks submitted while the
worker was dead are drained after the relaunch. Failed respawn
attempts back off exponentially (500ms initial, 30s cap) per worker.

Each death and respawn is published on the event broker as
worker.died / worker.respawned with the worker id in metadata.

# Usage

	watchdog := reconciler.NewReconciler(sched, cfg.Scheduler.RespawnPolicy, broker, n.Stop)
	watchdog.Start()
	defer watchdog.Stop()

# Integration Points

  - pkg/scheduler: DeadWorkers / RespawnWorker supervisor surface
  - pkg/events: death and respawn notifications
  - pkg/node: escalate callback wires to node shutdown
*/
package reconciler
