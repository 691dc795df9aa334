package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/transport"
	"github.com/cuemby/burrow/pkg/types"
)

// trackingHandler records processed operations and their interleaving
// per partition. Process can be stalled through the gate channel.
type trackingHandler struct {
	mu        sync.Mutex
	active    map[int32]int
	maxActive map[int32]int
	order     map[int32][]uint64
	roles     map[uint64]scheduler.Role
	gate      chan struct{}
	processed chan *types.Operation
}

func newTrackingHandler() *trackingHandler {
	return &trackingHandler{
		active:    make(map[int32]int),
		maxActive: make(map[int32]int),
		order:     make(map[int32][]uint64),
		roles:     make(map[uint64]scheduler.Role),
		processed: make(chan *types.Operation, 1024),
	}
}

func (h *trackingHandler) Deserialize(pkt *types.Packet) (*types.Operation, error) {
	return transport.UnmarshalOperation(pkt.Payload)
}

func (h *trackingHandler) Process(ctx context.Context, op *types.Operation) error {
	h.mu.Lock()
	h.active[op.PartitionID]++
	if h.active[op.PartitionID] > h.maxActive[op.PartitionID] {
		h.maxActive[op.PartitionID] = h.active[op.PartitionID]
	}
	h.roles[op.CallID] = scheduler.RoleOf(ctx)
	gate := h.gate
	h.mu.Unlock()

	if gate != nil {
		<-gate
	}

	h.mu.Lock()
	h.order[op.PartitionID] = append(h.order[op.PartitionID], op.CallID)
	h.active[op.PartitionID]--
	h.mu.Unlock()

	h.processed <- op
	return nil
}

type captureResponseHandler struct {
	responses chan *types.Response
}

func newCaptureResponseHandler() *captureResponseHandler {
	return &captureResponseHandler{responses: make(chan *types.Response, 64)}
}

func (h *captureResponseHandler) Deserialize(pkt *types.Packet) (*types.Response, error) {
	return transport.UnmarshalResponse(pkt.Payload)
}

func (h *captureResponseHandler) Process(resp *types.Response) error {
	h.responses <- resp
	return nil
}

func newTestScheduler(t *testing.T, mutate func(*scheduler.Config)) (*scheduler.Scheduler, *trackingHandler, *captureResponseHandler) {
	t.Helper()

	opHandler := newTrackingHandler()
	respHandler := newCaptureResponseHandler()
	cfg := scheduler.Config{
		PartitionWorkers:   2,
		GenericWorkers:     2,
		TerminationTimeout: time.Second,
		OperationHandler:   opHandler,
		ResponseHandler:    respHandler,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := scheduler.NewScheduler(cfg)
	require.NoError(t, err)
	return s, opHandler, respHandler
}

func awaitProcessed(t *testing.T, h *trackingHandler, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-h.processed:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for operation %d of %d", i+1, n)
		}
	}
}

// TestNewSchedulerRequiresHandlers tests constructor validation
func TestNewSchedulerRequiresHandlers(t *testing.T) {
	_, err := scheduler.NewScheduler(scheduler.Config{ResponseHandler: newCaptureResponseHandler()})
	assert.Error(t, err)

	_, err = scheduler.NewScheduler(scheduler.Config{OperationHandler: newTrackingHandler()})
	assert.Error(t, err)
}

// TestPartitionOperationsSerialized tests that all operations of one
// partition run one at a time and in submission order
func TestPartitionOperationsSerialized(t *testing.T) {
	s, h, _ := newTestScheduler(t, nil)
	s.Start()
	defer s.Stop()

	const perPartition = 50
	partitions := []int32{0, 1, 2, 3}

	callID := uint64(0)
	for i := 0; i < perPartition; i++ {
		for _, p := range partitions {
			callID++
			op := &types.Operation{PartitionID: p, CallID: callID, Kind: types.OpNoop}
			require.NoError(t, s.Submit(op))
		}
	}

	awaitProcessed(t, h, perPartition*len(partitions))

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range partitions {
		assert.Equal(t, 1, h.maxActive[p], "partition %d saw concurrent execution", p)
		require.Len(t, h.order[p], perPartition)
		for i := 1; i < len(h.order[p]); i++ {
			assert.Greater(t, h.order[p][i], h.order[p][i-1],
				"partition %d processed out of order", p)
		}
	}
}

// TestUrgentOvertakesQueued tests that urgent operations run before
// ordinary operations queued earlier
func TestUrgentOvertakesQueued(t *testing.T) {
	h := newTrackingHandler()
	h.gate = make(chan struct{})

	s, _, _ := newTestScheduler(t, func(c *scheduler.Config) {
		c.PartitionWorkers = 1
		c.OperationHandler = h
	})
	s.Start()
	defer s.Stop()

	// Occupy the single partition worker
	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, CallID: 1, Kind: types.OpNoop}))
	require.Eventually(t, func() bool {
		return s.IsOperationExecuting(types.Address{}, 0, 1)
	}, 5*time.Second, 5*time.Millisecond)

	// Queue an ordinary operation, then an urgent one behind it
	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, CallID: 2, Kind: types.OpNoop}))
	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, CallID: 3, Urgent: true, Kind: types.OpNoop}))

	close(h.gate)
	awaitProcessed(t, h, 3)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, []uint64{1, 3, 2}, h.order[0])
}

// TestGenericOperationsRunOnGenericWorkers tests negative-partition routing
func TestGenericOperationsRunOnGenericWorkers(t *testing.T) {
	s, h, _ := newTestScheduler(t, nil)
	s.Start()
	defer s.Stop()

	op := &types.Operation{PartitionID: types.GenericPartitionID, CallID: 7, Kind: types.OpNoop}
	require.NoError(t, s.Submit(op))
	awaitProcessed(t, h, 1)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, scheduler.RoleGeneric, h.roles[7])
}

// TestPartitionOperationsRunOnOwningWorker tests role tagging on the
// partition path
func TestPartitionOperationsRunOnOwningWorker(t *testing.T) {
	s, h, _ := newTestScheduler(t, nil)
	s.Start()
	defer s.Stop()

	op := &types.Operation{PartitionID: 5, CallID: 8, Kind: types.OpNoop}
	require.NoError(t, s.Submit(op))
	awaitProcessed(t, h, 1)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, scheduler.RolePartition, h.roles[8])
}

// TestSubmitRunnable tests housekeeping task submission
func TestSubmitRunnable(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)
	s.Start()
	defer s.Stop()

	ran := make(chan struct{})
	require.NoError(t, s.SubmitRunnable(func() { close(ran) }, 0))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("runnable never executed")
	}

	assert.ErrorIs(t, s.SubmitRunnable(nil, 0), scheduler.ErrNilTask)
}

// TestSubmitPacketResponsePath tests that response packets reach the
// response worker
func TestSubmitPacketResponsePath(t *testing.T) {
	s, _, rh := newTestScheduler(t, nil)
	s.Start()
	defer s.Stop()

	pkt, err := transport.ResponsePacket(&types.Response{CallID: 11, Value: []byte("v")})
	require.NoError(t, err)
	require.NoError(t, s.SubmitPacket(pkt))

	select {
	case resp := <-rh.responses:
		assert.Equal(t, uint64(11), resp.CallID)
		assert.Equal(t, []byte("v"), resp.Value)
	case <-time.After(5 * time.Second):
		t.Fatal("response packet never processed")
	}
}

// TestSubmitPacketOperationPath tests deserialization and execution of
// operation packets
func TestSubmitPacketOperationPath(t *testing.T) {
	s, h, _ := newTestScheduler(t, nil)
	s.Start()
	defer s.Stop()

	pkt, err := transport.OperationPacket(&types.Operation{PartitionID: 2, CallID: 12, Kind: types.OpNoop})
	require.NoError(t, err)
	require.NoError(t, s.SubmitPacket(pkt))

	awaitProcessed(t, h, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, []uint64{12}, h.order[2])
}

// TestMalformedPacketDropped tests that a packet that fails to decode is
// dropped without killing the worker
func TestMalformedPacketDropped(t *testing.T) {
	s, h, _ := newTestScheduler(t, func(c *scheduler.Config) { c.PartitionWorkers = 1 })
	s.Start()
	defer s.Stop()

	require.NoError(t, s.SubmitPacket(&types.Packet{PartitionID: 0, Payload: []byte("not json")}))

	// The same worker still processes subsequent work
	pkt, err := transport.OperationPacket(&types.Operation{PartitionID: 0, CallID: 13, Kind: types.OpNoop})
	require.NoError(t, err)
	require.NoError(t, s.SubmitPacket(pkt))
	awaitProcessed(t, h, 1)

	assert.Empty(t, s.DeadWorkers())
}

// inlineExecutor runs submitted tasks synchronously
type inlineExecutor struct{ err error }

func (e *inlineExecutor) Submit(fn func()) error {
	if e.err != nil {
		return e.err
	}
	fn()
	return nil
}

type mapRegistry map[string]scheduler.Executor

func (m mapRegistry) Get(name string) scheduler.Executor { return m[name] }

// TestExecutorRouting tests named-executor validation and dispatch
func TestExecutorRouting(t *testing.T) {
	exec := &inlineExecutor{}
	s, h, _ := newTestScheduler(t, func(c *scheduler.Config) {
		c.Executors = mapRegistry{"batch": exec}
	})
	s.Start()
	defer s.Stop()

	t.Run("partition-aware executor op rejected", func(t *testing.T) {
		err := s.Submit(&types.Operation{ExecutorName: "batch", PartitionID: 1, Kind: types.OpNoop})
		assert.ErrorIs(t, err, scheduler.ErrInvalidRouting)
	})

	t.Run("urgent executor op rejected", func(t *testing.T) {
		err := s.Submit(&types.Operation{
			ExecutorName: "batch",
			PartitionID:  types.GenericPartitionID,
			Urgent:       true,
			Kind:         types.OpNoop,
		})
		assert.ErrorIs(t, err, scheduler.ErrInvalidRouting)
	})

	t.Run("unknown executor rejected", func(t *testing.T) {
		err := s.Submit(&types.Operation{
			ExecutorName: "nope",
			PartitionID:  types.GenericPartitionID,
			Kind:         types.OpNoop,
		})
		assert.ErrorIs(t, err, scheduler.ErrInvalidRouting)
	})

	t.Run("valid executor op runs", func(t *testing.T) {
		op := &types.Operation{
			ExecutorName: "batch",
			PartitionID:  types.GenericPartitionID,
			CallID:       21,
			Kind:         types.OpNoop,
		}
		require.NoError(t, s.Submit(op))
		awaitProcessed(t, h, 1)
	})

	t.Run("executor submit failure surfaces", func(t *testing.T) {
		exec.err = errors.New("pool closed")
		err := s.Submit(&types.Operation{
			ExecutorName: "batch",
			PartitionID:  types.GenericPartitionID,
			Kind:         types.OpNoop,
		})
		assert.Error(t, err)
		exec.err = nil
	})
}

// TestSubmitNil tests nil task rejection
func TestSubmitNil(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)

	assert.ErrorIs(t, s.Submit(nil), scheduler.ErrNilTask)
	assert.ErrorIs(t, s.SubmitPacket(nil), scheduler.ErrNilTask)
}

// TestBoundedQueueRejection tests capacity enforcement on submission
func TestBoundedQueueRejection(t *testing.T) {
	// Workers deliberately not started so the queue fills up
	s, _, _ := newTestScheduler(t, func(c *scheduler.Config) {
		c.PartitionWorkers = 1
		c.QueueCapacity = 1
	})

	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, Kind: types.OpNoop}))

	err := s.Submit(&types.Operation{PartitionID: 0, Kind: types.OpNoop})
	assert.ErrorIs(t, err, queue.ErrRejected)
}

// TestRejectedPacketSwallowedWhenInactive tests the shutdown drop policy
func TestRejectedPacketSwallowedWhenInactive(t *testing.T) {
	active := true
	s, _, _ := newTestScheduler(t, func(c *scheduler.Config) {
		c.PartitionWorkers = 1
		c.QueueCapacity = 1
		c.Active = func() bool { return active }
	})

	pkt, err := transport.OperationPacket(&types.Operation{PartitionID: 0, Kind: types.OpNoop})
	require.NoError(t, err)
	require.NoError(t, s.SubmitPacket(pkt))

	// Active node: rejection is an error
	assert.ErrorIs(t, s.SubmitPacket(pkt), queue.ErrRejected)

	// Inactive node: the same rejection is swallowed
	active = false
	assert.NoError(t, s.SubmitPacket(pkt))
}

// TestUrgentSubmissionNeverRejected tests that bounded FIFOs do not
// refuse urgent work
func TestUrgentSubmissionNeverRejected(t *testing.T) {
	s, _, _ := newTestScheduler(t, func(c *scheduler.Config) {
		c.PartitionWorkers = 1
		c.QueueCapacity = 1
	})

	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, Kind: types.OpNoop}))

	// FIFO is full; the urgent operation still lands on the priority queue
	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, Urgent: true, Kind: types.OpNoop}))
	assert.Equal(t, 1, s.PriorityQueueSize())
}

// TestIsOperationExecuting tests current-operation visibility
func TestIsOperationExecuting(t *testing.T) {
	h := newTrackingHandler()
	h.gate = make(chan struct{})

	s, _, _ := newTestScheduler(t, func(c *scheduler.Config) {
		c.PartitionWorkers = 1
		c.OperationHandler = h
	})
	s.Start()
	defer s.Stop()

	caller := types.Address{Host: "10.0.0.1", Port: 5701}
	op := &types.Operation{PartitionID: 0, CallID: 31, CallerAddress: caller, Kind: types.OpNoop}
	require.NoError(t, s.Submit(op))

	require.Eventually(t, func() bool {
		return s.IsOperationExecuting(caller, 0, 31)
	}, 5*time.Second, 5*time.Millisecond)

	assert.False(t, s.IsOperationExecuting(caller, 0, 99))
	assert.False(t, s.IsOperationExecuting(types.Address{Host: "10.0.0.2", Port: 5701}, 0, 31))

	close(h.gate)
	awaitProcessed(t, h, 1)

	require.Eventually(t, func() bool {
		return !s.IsOperationExecuting(caller, 0, 31)
	}, 5*time.Second, 5*time.Millisecond)
}

// TestStopJoinsWorkers tests shutdown joining and idempotence
func TestStopJoinsWorkers(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil)
	s.Start()

	assert.Equal(t, 2, s.PartitionWorkerCount())
	assert.Equal(t, 2, s.GenericWorkerCount())

	s.Stop()
	s.Stop()

	for _, stat := range s.WorkerStats() {
		assert.False(t, stat.Alive, "worker %s still alive after stop", stat.ID)
	}
}

// TestWorkerDeathAndRespawn tests fault-driven worker death and the
// respawn path the watchdog drives
func TestWorkerDeathAndRespawn(t *testing.T) {
	poison := []byte("poison")
	h := &panickyHandler{inner: newTrackingHandler(), poison: poison}

	s, err := scheduler.NewScheduler(scheduler.Config{
		PartitionWorkers:   1,
		GenericWorkers:     1,
		TerminationTimeout: time.Second,
		OperationHandler:   h,
		ResponseHandler:    newCaptureResponseHandler(),
	})
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	require.NoError(t, s.SubmitPacket(&types.Packet{PartitionID: 0, Payload: poison}))

	require.Eventually(t, func() bool {
		return len(s.DeadWorkers()) == 1
	}, 5*time.Second, 5*time.Millisecond)
	dead := s.DeadWorkers()[0]
	assert.Equal(t, "partition-0", dead)

	// Work queued while dead survives the respawn
	pkt, err := transport.OperationPacket(&types.Operation{PartitionID: 0, CallID: 41, Kind: types.OpNoop})
	require.NoError(t, err)
	require.NoError(t, s.SubmitPacket(pkt))

	require.NoError(t, s.RespawnWorker(dead))
	assert.Empty(t, s.DeadWorkers())
	awaitProcessed(t, h.inner, 1)

	// Respawning a live worker fails
	assert.Error(t, s.RespawnWorker(dead))
	assert.Error(t, s.RespawnWorker("no-such-worker"))
}

// panickyHandler panics in Deserialize for a poisoned payload, which is
// outside the per-operation guard and kills the worker goroutine.
type panickyHandler struct {
	inner  *trackingHandler
	poison []byte
}

func (h *panickyHandler) Deserialize(pkt *types.Packet) (*types.Operation, error) {
	if string(pkt.Payload) == string(h.poison) {
		panic(fmt.Sprintf("poisoned packet for partition %d", pkt.PartitionID))
	}
	return h.inner.Deserialize(pkt)
}

func (h *panickyHandler) Process(ctx context.Context, op *types.Operation) error {
	return h.inner.Process(ctx, op)
}

// TestOperationPanicDoesNotKillWorker tests the per-operation guard
func TestOperationPanicDoesNotKillWorker(t *testing.T) {
	h := &explodingHandler{inner: newTrackingHandler()}

	s, err := scheduler.NewScheduler(scheduler.Config{
		PartitionWorkers:   1,
		GenericWorkers:     1,
		TerminationTimeout: time.Second,
		OperationHandler:   h,
		ResponseHandler:    newCaptureResponseHandler(),
	})
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, CallID: 51, Kind: "explode"}))
	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, CallID: 52, Kind: types.OpNoop}))

	awaitProcessed(t, h.inner, 1)
	assert.Empty(t, s.DeadWorkers())
}

type explodingHandler struct {
	inner *trackingHandler
}

func (h *explodingHandler) Deserialize(pkt *types.Packet) (*types.Operation, error) {
	return h.inner.Deserialize(pkt)
}

func (h *explodingHandler) Process(ctx context.Context, op *types.Operation) error {
	if op.Kind == "explode" {
		panic("operation blew up")
	}
	return h.inner.Process(ctx, op)
}

// TestWorkerStats tests the stats snapshot shape
func TestWorkerStats(t *testing.T) {
	s, h, _ := newTestScheduler(t, nil)
	s.Start()
	defer s.Stop()

	require.NoError(t, s.Submit(&types.Operation{PartitionID: 0, CallID: 61, Kind: types.OpNoop}))
	awaitProcessed(t, h, 1)

	stats := s.WorkerStats()
	require.Len(t, stats, 5)

	kinds := make(map[scheduler.WorkerKind]int)
	var processed uint64
	for _, stat := range stats {
		kinds[stat.Kind]++
		processed += stat.Processed
		assert.True(t, stat.Alive)
	}
	assert.Equal(t, 2, kinds[scheduler.WorkerKindPartition])
	assert.Equal(t, 2, kinds[scheduler.WorkerKindGeneric])
	assert.Equal(t, 1, kinds[scheduler.WorkerKindResponse])
	assert.GreaterOrEqual(t, processed, uint64(1))
}
