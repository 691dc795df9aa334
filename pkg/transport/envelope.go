package transport

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/burrow/pkg/types"
)

// MarshalOperation encodes an operation into a packet payload
func MarshalOperation(op *types.Operation) ([]byte, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation: %w", err)
	}
	return data, nil
}

// UnmarshalOperation decodes an operation from a packet payload
func UnmarshalOperation(payload []byte) (*types.Operation, error) {
	var op types.Operation
	if err := json.Unmarshal(payload, &op); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}
	return &op, nil
}

// MarshalResponse encodes a response into a packet payload
func MarshalResponse(resp *types.Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return data, nil
}

// UnmarshalResponse decodes a response from a packet payload
func UnmarshalResponse(payload []byte) (*types.Response, error) {
	var resp types.Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// OperationPacket wraps an operation into a routable packet
func OperationPacket(op *types.Operation) (*types.Packet, error) {
	payload, err := MarshalOperation(op)
	if err != nil {
		return nil, err
	}

	pkt := &types.Packet{
		PartitionID: op.PartitionID,
		Payload:     payload,
	}
	if op.Urgent {
		pkt.SetFlag(types.FlagUrgent)
	}
	return pkt, nil
}

// ResponsePacket wraps a response into a response-flagged packet
func ResponsePacket(resp *types.Response) (*types.Packet, error) {
	payload, err := MarshalResponse(resp)
	if err != nil {
		return nil, err
	}

	pkt := &types.Packet{
		PartitionID: types.GenericPartitionID,
		Payload:     payload,
	}
	pkt.SetFlag(types.FlagResponse)
	return pkt, nil
}
