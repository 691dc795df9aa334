/*
Package fault classifies panics recovered from task execution.

Dispatch workers run user-supplied tasks and must survive their panics.
When a worker recovers, it hands the recovered value to Inspect, which
classifies it as out-of-memory, runtime, or user fault and captures the
goroutine stack for logging. Out-of-memory faults additionally pass
through a process-wide handler hook (SetOOMHandler) before they reach the
log, so a node can react to memory pressure centrally.
*/
package fault
