package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/types"
)

// noopOpHandler and noopRespHandler satisfy OperationHandler/ResponseHandler
// for tests that only need a valid Scheduler and never exercise packet
// deserialization (Submit is called directly rather than SubmitPacket).
type noopOpHandler struct{}

func (noopOpHandler) Deserialize(pkt *types.Packet) (*types.Operation, error) {
	return nil, errors.New("deserialize not supported in this test handler")
}

func (noopOpHandler) Process(ctx context.Context, op *types.Operation) error { return nil }

type noopRespHandler struct{}

func (noopRespHandler) Deserialize(pkt *types.Packet) (*types.Response, error) {
	return nil, errors.New("deserialize not supported in this test handler")
}

func (noopRespHandler) Process(resp *types.Response) error { return nil }

// newTestScheduler builds a Scheduler for internal-package tests (policy and
// routing) that need access to unexported scheduler internals and therefore
// cannot live alongside the transport-dependent tests in scheduler_test.go.
func newTestScheduler(t *testing.T, mutate func(*Config)) (*Scheduler, OperationHandler, ResponseHandler) {
	t.Helper()

	opHandler := noopOpHandler{}
	respHandler := noopRespHandler{}
	cfg := Config{
		PartitionWorkers:   2,
		GenericWorkers:     2,
		TerminationTimeout: time.Second,
		OperationHandler:   opHandler,
		ResponseHandler:    respHandler,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := NewScheduler(cfg)
	require.NoError(t, err)
	return s, opHandler, respHandler
}
