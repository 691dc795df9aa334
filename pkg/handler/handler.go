package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/invocation"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/transport"
	"github.com/cuemby/burrow/pkg/types"
)

// Responder delivers a response packet back to a remote caller
type Responder interface {
	Deliver(addr types.Address, pkt *types.Packet) error
}

// Handler executes grid operations against the record store. Responses
// for remote callers go out through the responder; responses for local
// callers complete their pending invocations directly.
type Handler struct {
	store     storage.Store
	registry  *invocation.Registry
	responder Responder
	logger    zerolog.Logger
}

// NewHandler creates an operation handler backed by the store. The
// responder may be nil on nodes that never serve remote callers.
func NewHandler(store storage.Store, registry *invocation.Registry, responder Responder) *Handler {
	return &Handler{
		store:     store,
		registry:  registry,
		responder: responder,
		logger:    log.WithComponent("handler"),
	}
}

// Deserialize decodes an operation packet's payload
func (h *Handler) Deserialize(pkt *types.Packet) (*types.Operation, error) {
	return transport.UnmarshalOperation(pkt.Payload)
}

// Process executes the operation and routes its response
func (h *Handler) Process(ctx context.Context, op *types.Operation) error {
	resp := &types.Response{
		CallID:        op.CallID,
		CallerAddress: op.CallerAddress,
	}

	value, err := h.execute(op)
	if err != nil {
		resp.Err = err.Error()
	}
	resp.Value = value

	return h.respond(op, resp)
}

func (h *Handler) execute(op *types.Operation) ([]byte, error) {
	switch op.Kind {
	case types.OpPut:
		return nil, h.store.Put(op.PartitionID, op.Key, op.Value)
	case types.OpGet:
		value, err := h.store.Get(op.PartitionID, op.Key)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return value, err
	case types.OpDelete:
		removed, err := h.store.Delete(op.PartitionID, op.Key)
		if err != nil {
			return nil, err
		}
		if removed {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	case types.OpNoop:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (h *Handler) respond(op *types.Operation, resp *types.Response) error {
	if op.CallID == 0 {
		// Fire-and-forget operations carry no call id and get no response
		return nil
	}

	if op.CallerAddress == (types.Address{}) {
		if h.registry != nil && !h.registry.Complete(resp) {
			h.logger.Warn().
				Uint64("call_id", resp.CallID).
				Msg("No pending invocation for local response")
		}
		return nil
	}

	if h.responder == nil {
		return fmt.Errorf("no responder for remote caller %s", op.CallerAddress)
	}

	pkt, err := transport.ResponsePacket(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response for call %d: %w", resp.CallID, err)
	}
	if err := h.responder.Deliver(op.CallerAddress, pkt); err != nil {
		return fmt.Errorf("failed to deliver response for call %d: %w", resp.CallID, err)
	}
	return nil
}
