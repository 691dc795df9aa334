package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/fault"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/types"
)

var (
	// ErrInvalidRouting is returned when an operation's routing attributes
	// contradict each other, such as a named-executor operation that is
	// partition-aware or urgent.
	ErrInvalidRouting = errors.New("invalid operation routing")

	// ErrNilTask is returned when a nil task is submitted
	ErrNilTask = errors.New("nil task")
)

// DefaultTerminationTimeout bounds the per-worker wait during shutdown
const DefaultTerminationTimeout = 3 * time.Second

// OperationHandler turns operation packets into operations and executes
// them. Implementations must be safe for concurrent use by all workers.
type OperationHandler interface {
	Deserialize(pkt *types.Packet) (*types.Operation, error)
	Process(ctx context.Context, op *types.Operation) error
}

// ResponseHandler turns response packets into responses and completes the
// pending invocations they belong to.
type ResponseHandler interface {
	Deserialize(pkt *types.Packet) (*types.Response, error)
	Process(resp *types.Response) error
}

// Executor runs tasks outside the dispatch workers
type Executor interface {
	Submit(fn func()) error
}

// ExecutorRegistry resolves named executors. Get returns nil for unknown
// names.
type ExecutorRegistry interface {
	Get(name string) Executor
}

// Lifecycle receives worker start/stop notifications
type Lifecycle interface {
	OnWorkerStart(info WorkerInfo)
	OnWorkerStop(info WorkerInfo)
}

type noopLifecycle struct{}

func (noopLifecycle) OnWorkerStart(WorkerInfo) {}
func (noopLifecycle) OnWorkerStop(WorkerInfo)  {}

// Config wires the scheduler's collaborators and tuning knobs
type Config struct {
	// PartitionWorkers is the partition worker count. <= 0 selects
	// max(2, NumCPU).
	PartitionWorkers int

	// GenericWorkers is the generic worker count. <= 0 selects
	// max(2, NumCPU/2).
	GenericWorkers int

	// QueueCapacity bounds each ordinary work queue. 0 means unbounded.
	QueueCapacity int

	// TerminationTimeout bounds the per-worker wait during Stop
	TerminationTimeout time.Duration

	// OperationHandler executes operations. Required.
	OperationHandler OperationHandler

	// ResponseHandler completes invocations from response packets. Required.
	ResponseHandler ResponseHandler

	// Executors resolves named executors. Optional; when nil every
	// executor-named submission fails with ErrInvalidRouting.
	Executors ExecutorRegistry

	// Lifecycle observes worker starts and stops. Optional.
	Lifecycle Lifecycle

	// Active reports whether the node accepts work. Rejected packet
	// submissions are swallowed while the node is inactive. Optional;
	// defaults to always active.
	Active func() bool
}

// Scheduler routes operations, packets, and runnables onto partition
// workers, generic workers, and the response worker.
//
// Partition p is owned by partition worker p mod P for the scheduler's
// lifetime, which serializes all operations of a partition on a single
// goroutine. Generic work is pulled from a shared queue by all generic
// workers. Urgent tasks bypass ordinary FIFO order through per-worker
// priority queues.
type Scheduler struct {
	cfg    Config
	logger zerolog.Logger

	partitionWorkers []*worker
	genericWorkers   []*worker
	response         *responseWorker

	genericWork     *queue.Blocking
	genericPriority *queue.Priority

	lifecycle Lifecycle
	active    func() bool

	mu       sync.Mutex
	started  bool
	shutdown chan struct{}
	down     bool
}

// NewScheduler creates a scheduler from the given configuration
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.OperationHandler == nil {
		return nil, fmt.Errorf("failed to create scheduler: operation handler is required")
	}
	if cfg.ResponseHandler == nil {
		return nil, fmt.Errorf("failed to create scheduler: response handler is required")
	}

	if cfg.PartitionWorkers <= 0 {
		cfg.PartitionWorkers = maxInt(2, runtime.NumCPU())
	}
	if cfg.GenericWorkers <= 0 {
		cfg.GenericWorkers = maxInt(2, runtime.NumCPU()/2)
	}
	if cfg.TerminationTimeout <= 0 {
		cfg.TerminationTimeout = DefaultTerminationTimeout
	}

	s := &Scheduler{
		cfg:             cfg,
		logger:          log.WithComponent("scheduler"),
		genericWork:     queue.NewBlocking(cfg.QueueCapacity),
		genericPriority: queue.NewPriority(),
		lifecycle:       cfg.Lifecycle,
		active:          cfg.Active,
		shutdown:        make(chan struct{}),
	}
	if s.lifecycle == nil {
		s.lifecycle = noopLifecycle{}
	}
	if s.active == nil {
		s.active = func() bool { return true }
	}

	for i := 0; i < cfg.PartitionWorkers; i++ {
		info := WorkerInfo{
			ID:    fmt.Sprintf("partition-%d", i),
			Kind:  WorkerKindPartition,
			Index: i,
		}
		w := newWorker(info, queue.NewBlocking(cfg.QueueCapacity), queue.NewPriority(), s, s.logger)
		s.partitionWorkers = append(s.partitionWorkers, w)
	}

	for i := 0; i < cfg.GenericWorkers; i++ {
		info := WorkerInfo{
			ID:    fmt.Sprintf("generic-%d", i),
			Kind:  WorkerKindGeneric,
			Index: i,
		}
		w := newWorker(info, s.genericWork, s.genericPriority, s, s.logger)
		s.genericWorkers = append(s.genericWorkers, w)
	}

	s.response = newResponseWorker(s, s.logger)

	return s, nil
}

// Start launches all workers
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, w := range s.partitionWorkers {
		w.start()
	}
	for _, w := range s.genericWorkers {
		w.start()
	}
	s.response.start()

	s.logger.Info().
		Int("partition_workers", len(s.partitionWorkers)).
		Int("generic_workers", len(s.genericWorkers)).
		Msg("Scheduler started")
}

// Stop shuts the scheduler down: the shutdown flag is raised, every queue
// is interrupted, and each worker is joined with a bounded wait.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.down {
		s.mu.Unlock()
		return
	}
	s.down = true
	close(s.shutdown)
	s.mu.Unlock()

	for _, w := range s.partitionWorkers {
		w.work.Interrupt()
	}
	s.genericWork.Interrupt()
	s.response.work.Interrupt()

	for _, w := range s.partitionWorkers {
		s.join(w.info.ID, w.done)
	}
	for _, w := range s.genericWorkers {
		s.join(w.info.ID, w.done)
	}
	s.join(s.response.info.ID, s.response.done)

	s.logger.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) join(id string, done chan struct{}) {
	if done == nil {
		return
	}

	timer := time.NewTimer(s.cfg.TerminationTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		s.logger.Warn().
			Str("worker_id", id).
			Dur("timeout", s.cfg.TerminationTimeout).
			Msg("Worker did not stop in time")
	}
}

func (s *Scheduler) isShutdown() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

// Submit schedules an operation. Operations naming an executor must be
// neither partition-aware nor urgent; they run on the named executor
// outside the dispatch workers. All other operations are routed by
// partition and urgency.
func (s *Scheduler) Submit(op *types.Operation) error {
	if op == nil {
		return ErrNilTask
	}

	if op.ExecutorName != "" {
		return s.submitToExecutor(op)
	}

	return s.route(op, op.PartitionID, op.Urgent)
}

// SubmitRunnable schedules a housekeeping task on the worker owning the
// given partition, or on the generic workers for a negative partition id.
func (s *Scheduler) SubmitRunnable(fn types.Runnable, partitionID int32) error {
	if fn == nil {
		return ErrNilTask
	}

	return s.route(fn, partitionID, false)
}

// SubmitPacket schedules a wire packet. Response packets go to the
// response worker; everything else is routed by partition and urgency.
// Rejections are swallowed while the node is inactive: a shutting-down
// node drops remote work instead of erroring on it.
func (s *Scheduler) SubmitPacket(pkt *types.Packet) error {
	if pkt == nil {
		return ErrNilTask
	}

	var err error
	if pkt.IsResponse() {
		err = s.response.work.Offer(pkt)
		if err != nil {
			metrics.SubmissionsRejected.Inc()
			err = fmt.Errorf("failed to enqueue response packet: %w", err)
		}
	} else {
		err = s.route(pkt, pkt.PartitionID, pkt.IsUrgent())
	}

	if err != nil && errors.Is(err, queue.ErrRejected) && !s.active() {
		s.logger.Debug().Msg("Dropped packet rejected during shutdown")
		return nil
	}
	return err
}

func (s *Scheduler) submitToExecutor(op *types.Operation) error {
	if op.PartitionAware() {
		return fmt.Errorf("executor operation %q must not be partition-aware: %w", op.ExecutorName, ErrInvalidRouting)
	}
	if op.Urgent {
		return fmt.Errorf("executor operation %q must not be urgent: %w", op.ExecutorName, ErrInvalidRouting)
	}

	if s.cfg.Executors == nil {
		return fmt.Errorf("no executor registry for operation %q: %w", op.ExecutorName, ErrInvalidRouting)
	}
	exec := s.cfg.Executors.Get(op.ExecutorName)
	if exec == nil {
		return fmt.Errorf("unknown executor %q: %w", op.ExecutorName, ErrInvalidRouting)
	}

	if err := exec.Submit(func() { s.processOnExecutor(op) }); err != nil {
		return fmt.Errorf("failed to submit to executor %q: %w", op.ExecutorName, err)
	}
	return nil
}

// processOnExecutor runs an operation on an external executor goroutine.
// There is no current-operation tracking outside the dispatch workers.
func (s *Scheduler) processOnExecutor(op *types.Operation) {
	defer func() {
		if r := recover(); r != nil {
			flt := fault.Inspect(r)
			s.logger.Error().
				Str("fault", string(flt.Kind)).
				Interface("recovered", flt.Recovered).
				Str("executor", op.ExecutorName).
				Msg("Executor operation panicked")
		}
	}()

	if err := s.cfg.OperationHandler.Process(context.Background(), op); err != nil {
		s.logger.Error().
			Err(err).
			Str("executor", op.ExecutorName).
			Uint64("call_id", op.CallID).
			Msg("Executor operation failed")
	}
}

// route places a task on the queue pair selected by partition id. Urgent
// tasks go to the priority queue, paired with a wakeup no-op on the
// blocking FIFO so a sleeping worker notices them.
func (s *Scheduler) route(task any, partitionID int32, urgent bool) error {
	work, priority := s.queuesFor(partitionID)

	if urgent {
		priority.Offer(task)
		if err := work.Offer(wakeupTask); err != nil {
			// Bounded FIFO full. The urgent task itself is safely queued;
			// the worker will see it at its next wakeup.
			s.logger.Warn().
				Int32("partition_id", partitionID).
				Msg("Wakeup rejected by bounded queue")
		}
		return nil
	}

	if err := work.Offer(task); err != nil {
		metrics.SubmissionsRejected.Inc()
		return fmt.Errorf("failed to enqueue task for partition %d: %w", partitionID, err)
	}
	return nil
}

func (s *Scheduler) queuesFor(partitionID int32) (*queue.Blocking, *queue.Priority) {
	if partitionID < 0 {
		return s.genericWork, s.genericPriority
	}
	w := s.partitionWorkers[s.partitionOwner(partitionID)]
	return w.work, w.priority
}

func (s *Scheduler) partitionOwner(partitionID int32) int {
	return int(partitionID) % len(s.partitionWorkers)
}

// PartitionWorkerCount returns the number of partition workers
func (s *Scheduler) PartitionWorkerCount() int {
	return len(s.partitionWorkers)
}

// GenericWorkerCount returns the number of generic workers
func (s *Scheduler) GenericWorkerCount() int {
	return len(s.genericWorkers)
}

// RunningOperationCount returns the number of operations currently
// executing on dispatch workers
func (s *Scheduler) RunningOperationCount() int {
	count := 0
	for _, w := range s.partitionWorkers {
		if w.current.Load() != nil {
			count++
		}
	}
	for _, w := range s.genericWorkers {
		if w.current.Load() != nil {
			count++
		}
	}
	return count
}

// QueueSize returns the total depth of all ordinary work queues
func (s *Scheduler) QueueSize() int {
	size := s.genericWork.Len()
	for _, w := range s.partitionWorkers {
		size += w.work.Len()
	}
	return size
}

// PriorityQueueSize returns the total depth of all priority queues
func (s *Scheduler) PriorityQueueSize() int {
	size := s.genericPriority.Len()
	for _, w := range s.partitionWorkers {
		size += w.priority.Len()
	}
	return size
}

// ResponseQueueSize returns the depth of the response worker's FIFO
func (s *Scheduler) ResponseQueueSize() int {
	return s.response.work.Len()
}

// IsOperationExecuting reports whether an operation from the given caller
// with the given call id is currently executing. Partition-bound lookups
// check only the owning worker; generic lookups scan all generic workers.
func (s *Scheduler) IsOperationExecuting(caller types.Address, partitionID int32, callID uint64) bool {
	if partitionID >= 0 {
		return operationMatches(s.partitionWorkers[s.partitionOwner(partitionID)], caller, callID)
	}

	for _, w := range s.genericWorkers {
		if operationMatches(w, caller, callID) {
			return true
		}
	}
	return false
}

func operationMatches(w *worker, caller types.Address, callID uint64) bool {
	op := w.current.Load()
	if op == nil {
		return false
	}
	return op.CallID == callID && op.CallerAddress.Equal(caller)
}

// WorkerStats returns a snapshot of every dispatch worker
func (s *Scheduler) WorkerStats() []WorkerStat {
	stats := make([]WorkerStat, 0, len(s.partitionWorkers)+len(s.genericWorkers)+1)
	for _, w := range s.partitionWorkers {
		stats = append(stats, w.stat())
	}
	for _, w := range s.genericWorkers {
		stats = append(stats, w.stat())
	}
	stats = append(stats, WorkerStat{
		ID:        s.response.info.ID,
		Kind:      WorkerKindResponse,
		Processed: s.response.processed.Load(),
		QueueLen:  s.response.work.Len(),
		Alive:     s.response.alive.Load(),
	})
	return stats
}

// DeadWorkers returns the ids of workers that exited after a fault and
// have not been respawned
func (s *Scheduler) DeadWorkers() []string {
	var dead []string
	for _, w := range s.partitionWorkers {
		if w.died.Load() {
			dead = append(dead, w.info.ID)
		}
	}
	for _, w := range s.genericWorkers {
		if w.died.Load() {
			dead = append(dead, w.info.ID)
		}
	}
	return dead
}

// RespawnWorker restarts a dead worker on its existing queues. Queued
// tasks survive the death of their worker; only the goroutine is replaced.
func (s *Scheduler) RespawnWorker(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return fmt.Errorf("failed to respawn worker %s: scheduler is stopped", id)
	}

	w := s.findWorker(id)
	if w == nil {
		return fmt.Errorf("failed to respawn worker %s: no such worker", id)
	}
	if !w.died.Load() {
		return fmt.Errorf("failed to respawn worker %s: worker is alive", id)
	}

	w.start()
	metrics.WorkerRespawns.Inc()
	s.logger.Info().Str("worker_id", id).Msg("Worker respawned")
	return nil
}

func (s *Scheduler) findWorker(id string) *worker {
	for _, w := range s.partitionWorkers {
		if w.info.ID == id {
			return w
		}
	}
	for _, w := range s.genericWorkers {
		if w.info.ID == id {
			return w
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
