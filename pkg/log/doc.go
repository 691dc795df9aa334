/*
Package log provides structured logging for Burrow using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support filtering
by severity level for production debugging.

# Architecture

Burrow's logging system provides structured JSON logging with minimal overhead:

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐           │
	│  │            Global Logger                   │           │
	│  │  - Zerolog instance                        │           │
	│  │  - Initialized via log.Init()              │           │
	│  │  - Thread-safe for concurrent use          │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │         Component Loggers                  │           │
	│  │  - WithComponent("scheduler")              │           │
	│  │  - WithNodeID("node-abc123")               │           │
	│  │  - WithWorkerID("partition-7")             │           │
	│  │  - WithPartitionID(42)                     │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │            Log Output                      │           │
	│  │  JSON (production) or console (dev)        │           │
	│  └────────────────────────────────────────────┘           │
	└───────────────────────────────────────────────────────────┘

# Usage

Initializing the logger:

	import "github.com/cuemby/burrow/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
		Output:     os.Stdout,
	})

Simple logging:

	log.Info("Node started")
	log.Warn("Queue depth above threshold")
	log.Error("Failed to decode packet")

Structured logging:

	log.Logger.Info().
		Int32("partition_id", 42).
		Uint64("call_id", 17).
		Msg("Operation completed")

Component loggers:

	schedulerLog := log.WithComponent("scheduler")
	schedulerLog.Debug().Str("worker", "partition-3").Msg("Worker started")

	workerLog := log.WithWorkerID("generic-1")
	workerLog.Error().Err(err).Msg("Task panicked")

# Log Levels

  - Debug: per-task dispatch decisions, queue drains (development only)
  - Info: lifecycle transitions (node start/stop, worker start/stop)
  - Warn: recoverable anomalies (rejected submissions, dropped packets)
  - Error: operation faults, deserialization failures, dead workers
  - Fatal: unrecoverable startup errors (process exits)

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing

Context Logger Pattern:
  - Create child loggers with context fields
  - Automatically includes context in all logs
  - Avoids repetitive field specification

Error Logging Pattern:
  - Always use .Err(err) for error objects
  - Consistent error format across the codebase

# Best Practices

Do:
  - Use Info level for production
  - Use structured fields for queryable data
  - Create component-specific loggers
  - Include context (worker ID, partition ID, call ID)

Don't:
  - Log payload contents (may hold user data)
  - Use Debug level in production
  - Log in the per-operation hot path above Debug

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - pkg/scheduler - Main consumer of worker/partition loggers
*/
package log
