package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/fault"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/types"
)

// WorkerKind distinguishes the three dispatch worker classes
type WorkerKind string

const (
	WorkerKindPartition WorkerKind = "partition"
	WorkerKindGeneric   WorkerKind = "generic"
	WorkerKindResponse  WorkerKind = "response"
)

// WorkerInfo identifies a dispatch worker
type WorkerInfo struct {
	ID    string
	Kind  WorkerKind
	Index int
}

// WorkerStat is a point-in-time snapshot of one worker
type WorkerStat struct {
	ID          string
	Kind        WorkerKind
	Index       int
	Processed   uint64
	QueueLen    int
	PriorityLen int
	Alive       bool
}

// wakeupTask is the singleton no-op offered to a blocking FIFO whenever an
// urgent task lands on the paired priority queue. Processing it does
// nothing; its only purpose is to wake a sleeping worker. Extra wakeups
// are harmless.
var wakeupTask = types.Runnable(func() {})

// worker is a single dispatch goroutine. Partition workers own their queue
// pair exclusively; generic workers share the scheduler's generic pair.
// The processed counter and the current-operation pointer have a single
// writer (the worker goroutine); readers go through atomics.
type worker struct {
	info     WorkerInfo
	work     *queue.Blocking
	priority *queue.Priority
	sched    *Scheduler
	logger   zerolog.Logger

	processed atomic.Uint64
	current   atomic.Pointer[types.Operation]
	alive     atomic.Bool
	died      atomic.Bool
	done      chan struct{}
}

func newWorker(info WorkerInfo, work *queue.Blocking, priority *queue.Priority, sched *Scheduler, logger zerolog.Logger) *worker {
	return &worker{
		info:     info,
		work:     work,
		priority: priority,
		sched:    sched,
		logger:   logger.With().Str("worker_id", info.ID).Logger(),
	}
}

// start launches the worker goroutine. Restartable: a respawned worker
// reuses its queues and keeps its processed count.
func (w *worker) start() {
	w.done = make(chan struct{})
	w.alive.Store(true)
	w.died.Store(false)
	go w.run()
}

func (w *worker) run() {
	defer close(w.done)

	ctx := withWorkerRole(context.Background(), w.info)

	w.sched.lifecycle.OnWorkerStart(w.info)
	defer w.sched.lifecycle.OnWorkerStop(w.info)

	defer func() {
		w.alive.Store(false)
		if r := recover(); r != nil {
			flt := fault.Inspect(r)
			metrics.WorkerDeaths.Inc()
			w.died.Store(true)
			w.logger.Error().
				Str("fault", string(flt.Kind)).
				Interface("recovered", flt.Recovered).
				Msg("Worker exited after fault")
		}
	}()

	w.logger.Debug().Msg("Worker started")
	w.loop(ctx)
	w.logger.Debug().Msg("Worker stopped")
}

func (w *worker) loop(ctx context.Context) {
	for {
		task, err := w.work.Take()
		if err != nil {
			// Interrupted. Only shutdown interrupts the queue; without
			// the shutdown flag the worker retries the take.
			if w.sched.isShutdown() {
				return
			}
			continue
		}

		if w.sched.isShutdown() {
			return
		}

		w.drainPriority(ctx)
		w.process(ctx, task)
	}
}

// drainPriority runs urgent tasks to exhaustion. Called before every
// ordinary task so urgent work always overtakes queued ordinary work.
func (w *worker) drainPriority(ctx context.Context) {
	for {
		task, ok := w.priority.Poll()
		if !ok {
			return
		}
		w.process(ctx, task)
	}
}

func (w *worker) process(ctx context.Context, task any) {
	w.processed.Add(1)
	metrics.OperationsProcessed.WithLabelValues(string(w.info.Kind)).Inc()

	switch t := task.(type) {
	case types.Runnable:
		w.runRunnable(t)
	case *types.Packet:
		op, err := w.sched.cfg.OperationHandler.Deserialize(t)
		if err != nil {
			metrics.DeserializationFailures.Inc()
			w.logger.Error().Err(err).Msg("Failed to deserialize operation packet")
			return
		}
		if op == nil {
			return
		}
		w.runOperation(ctx, op)
	case *types.Operation:
		w.runOperation(ctx, t)
	default:
		w.logger.Error().Str("type", fmt.Sprintf("%T", task)).Msg("Unknown task type")
	}
}

func (w *worker) runRunnable(fn types.Runnable) {
	defer func() {
		if r := recover(); r != nil {
			flt := fault.Inspect(r)
			w.logger.Error().
				Str("fault", string(flt.Kind)).
				Interface("recovered", flt.Recovered).
				Msg("Task panicked")
		}
	}()

	fn()
}

func (w *worker) runOperation(ctx context.Context, op *types.Operation) {
	w.current.Store(op)
	defer w.current.Store(nil)

	defer func() {
		if r := recover(); r != nil {
			flt := fault.Inspect(r)
			w.logger.Error().
				Str("fault", string(flt.Kind)).
				Interface("recovered", flt.Recovered).
				Uint64("call_id", op.CallID).
				Int32("partition_id", op.PartitionID).
				Msg("Operation panicked")
		}
	}()

	timer := metrics.NewTimer()
	if err := w.sched.cfg.OperationHandler.Process(ctx, op); err != nil {
		w.logger.Error().
			Err(err).
			Uint64("call_id", op.CallID).
			Int32("partition_id", op.PartitionID).
			Msg("Operation failed")
	}
	timer.ObserveDuration(metrics.OperationLatency)
}

func (w *worker) stat() WorkerStat {
	return WorkerStat{
		ID:          w.info.ID,
		Kind:        w.info.Kind,
		Index:       w.info.Index,
		Processed:   w.processed.Load(),
		QueueLen:    w.work.Len(),
		PriorityLen: w.priority.Len(),
		Alive:       w.alive.Load(),
	}
}

// responseWorker drains response packets on a private FIFO. It has no
// priority queue; responses are processed strictly in arrival order.
type responseWorker struct {
	info   WorkerInfo
	work   *queue.Blocking
	sched  *Scheduler
	logger zerolog.Logger

	processed atomic.Uint64
	alive     atomic.Bool
	done      chan struct{}
}

func newResponseWorker(sched *Scheduler, logger zerolog.Logger) *responseWorker {
	info := WorkerInfo{ID: "response-0", Kind: WorkerKindResponse}
	return &responseWorker{
		info:   info,
		work:   queue.NewBlocking(0),
		sched:  sched,
		logger: logger.With().Str("worker_id", info.ID).Logger(),
	}
}

func (w *responseWorker) start() {
	w.done = make(chan struct{})
	w.alive.Store(true)
	go w.run()
}

func (w *responseWorker) run() {
	defer close(w.done)
	defer w.alive.Store(false)

	for {
		task, err := w.work.Take()
		if err != nil {
			if w.sched.isShutdown() {
				return
			}
			continue
		}

		if w.sched.isShutdown() {
			return
		}

		pkt, ok := task.(*types.Packet)
		if !ok {
			w.logger.Error().Str("type", fmt.Sprintf("%T", task)).Msg("Unknown task type")
			continue
		}
		w.handle(pkt)
	}
}

func (w *responseWorker) handle(pkt *types.Packet) {
	w.processed.Add(1)
	metrics.OperationsProcessed.WithLabelValues(string(w.info.Kind)).Inc()

	defer func() {
		if r := recover(); r != nil {
			flt := fault.Inspect(r)
			w.logger.Error().
				Str("fault", string(flt.Kind)).
				Interface("recovered", flt.Recovered).
				Msg("Response handler panicked")
		}
	}()

	resp, err := w.sched.cfg.ResponseHandler.Deserialize(pkt)
	if err != nil {
		metrics.DeserializationFailures.Inc()
		w.logger.Error().Err(err).Msg("Failed to deserialize response packet")
		return
	}
	if resp == nil {
		return
	}

	if err := w.sched.cfg.ResponseHandler.Process(resp); err != nil {
		w.logger.Error().Err(err).Uint64("call_id", resp.CallID).Msg("Response handling failed")
	}
}
