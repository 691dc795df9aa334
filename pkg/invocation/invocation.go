package invocation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/transport"
	"github.com/cuemby/burrow/pkg/types"
)

// Registry tracks invocations awaiting their responses. Call ids are
// assigned monotonically; the response worker completes entries through
// the Handler adapter.
type Registry struct {
	nextCallID atomic.Uint64
	mu         sync.Mutex
	pending    map[uint64]*Invocation
	logger     zerolog.Logger
	closed     bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[uint64]*Invocation),
		logger:  log.WithComponent("invocation"),
	}
}

// Register assigns the operation a call id and tracks the invocation
func (r *Registry) Register(op *types.Operation) *Invocation {
	inv := &Invocation{
		op:       op,
		response: make(chan *types.Response, 1),
	}

	op.CallID = r.nextCallID.Add(1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		inv.response <- &types.Response{CallID: op.CallID, Err: "node is shutting down"}
		return inv
	}
	r.pending[op.CallID] = inv
	r.mu.Unlock()

	return inv
}

// Complete delivers a response to its pending invocation. It reports
// false when no invocation matches the call id, which happens for
// duplicate or late responses.
func (r *Registry) Complete(resp *types.Response) bool {
	r.mu.Lock()
	inv, ok := r.pending[resp.CallID]
	if ok {
		delete(r.pending, resp.CallID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	inv.response <- resp
	return true
}

// Pending returns the number of invocations awaiting a response
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Close fails every pending invocation and rejects new registrations
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	pending := r.pending
	r.pending = make(map[uint64]*Invocation)
	r.mu.Unlock()

	for callID, inv := range pending {
		inv.response <- &types.Response{CallID: callID, Err: "node is shutting down"}
	}
}

// Invocation is one tracked call awaiting its response
type Invocation struct {
	op       *types.Operation
	response chan *types.Response
}

// Operation returns the invoked operation
func (i *Invocation) Operation() *types.Operation {
	return i.op
}

// Await blocks until the response arrives or the context is done
func (i *Invocation) Await(ctx context.Context) (*types.Response, error) {
	select {
	case resp := <-i.response:
		return resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to await response for call %d: %w", i.op.CallID, ctx.Err())
	}
}

// Handler adapts the registry to the scheduler's response handler: it
// decodes response envelopes and completes their pending invocations.
type Handler struct {
	registry *Registry
}

// NewHandler creates a response handler backed by the registry
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Deserialize decodes a response packet's payload
func (h *Handler) Deserialize(pkt *types.Packet) (*types.Response, error) {
	return transport.UnmarshalResponse(pkt.Payload)
}

// Process completes the pending invocation for the response
func (h *Handler) Process(resp *types.Response) error {
	if !h.registry.Complete(resp) {
		return fmt.Errorf("no pending invocation for call %d", resp.CallID)
	}
	return nil
}
