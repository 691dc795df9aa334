package transport

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/types"
)

// TestPacketRoundTrip tests encode/decode and stream read/write symmetry
func TestPacketRoundTrip(t *testing.T) {
	pkt := &types.Packet{
		PartitionID: 27,
		Payload:     []byte(`{"kind":"put"}`),
	}
	pkt.SetFlag(types.FlagUrgent)

	decoded, err := DecodePacket(EncodePacket(pkt))
	require.NoError(t, err)
	assert.Equal(t, pkt.PartitionID, decoded.PartitionID)
	assert.Equal(t, pkt.Flags, decoded.Flags)
	assert.Equal(t, pkt.Payload, decoded.Payload)
	assert.True(t, decoded.IsUrgent())
	assert.False(t, decoded.IsResponse())

	var buf bytes.Buffer
	require.NoError(t, WritePacket(&buf, pkt))
	streamed, err := ReadPacket(&buf)
	require.NoError(t, err)
	assert.Equal(t, decoded, streamed)
}

// TestPacketNegativePartition tests that generic routing survives the wire
func TestPacketNegativePartition(t *testing.T) {
	pkt := &types.Packet{PartitionID: types.GenericPartitionID}

	decoded, err := DecodePacket(EncodePacket(pkt))
	require.NoError(t, err)
	assert.Equal(t, types.GenericPartitionID, decoded.PartitionID)
}

// TestPacketEmptyPayload tests a header-only frame
func TestPacketEmptyPayload(t *testing.T) {
	pkt := &types.Packet{PartitionID: 3}

	frame := EncodePacket(pkt)
	assert.Len(t, frame, HeaderSize)

	decoded, err := DecodePacket(frame)
	require.NoError(t, err)
	assert.Empty(t, decoded.Payload)
}

// TestDecodeErrors tests the frame error taxonomy
func TestDecodeErrors(t *testing.T) {
	valid := EncodePacket(&types.Packet{PartitionID: 1, Payload: []byte("x")})

	t.Run("short buffer", func(t *testing.T) {
		_, err := DecodePacket(valid[:HeaderSize-1])
		assert.ErrorIs(t, err, ErrShortPacket)
	})

	t.Run("bad magic", func(t *testing.T) {
		frame := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint16(frame[0:2], 0xdead)
		_, err := DecodePacket(frame)
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("bad version", func(t *testing.T) {
		frame := append([]byte(nil), valid...)
		frame[2] = Version + 1
		_, err := DecodePacket(frame)
		assert.ErrorIs(t, err, ErrBadVersion)
	})

	t.Run("payload too large", func(t *testing.T) {
		frame := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(frame[9:13], MaxPayloadSize+1)
		_, err := DecodePacket(frame)
		assert.ErrorIs(t, err, ErrPayloadTooLarge)
	})

	t.Run("truncated payload", func(t *testing.T) {
		frame := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(frame[9:13], 100)
		_, err := DecodePacket(frame)
		assert.ErrorIs(t, err, ErrShortPacket)
	})
}

// TestReadPacketRejectsBadFrames tests stream-side validation
func TestReadPacketRejectsBadFrames(t *testing.T) {
	frame := EncodePacket(&types.Packet{PartitionID: 1})
	binary.LittleEndian.PutUint16(frame[0:2], 0xbeef)

	_, err := ReadPacket(bytes.NewReader(frame))
	assert.ErrorIs(t, err, ErrBadMagic)
}

// TestOperationPacket tests the operation envelope wrapper
func TestOperationPacket(t *testing.T) {
	op := &types.Operation{
		PartitionID: 9,
		CallID:      42,
		Urgent:      true,
		Kind:        types.OpPut,
		Key:         []byte("k"),
		Value:       []byte("v"),
	}

	pkt, err := OperationPacket(op)
	require.NoError(t, err)
	assert.Equal(t, int32(9), pkt.PartitionID)
	assert.True(t, pkt.IsUrgent())
	assert.False(t, pkt.IsResponse())

	decoded, err := UnmarshalOperation(pkt.Payload)
	require.NoError(t, err)
	assert.Equal(t, op.CallID, decoded.CallID)
	assert.Equal(t, op.Kind, decoded.Kind)
	assert.Equal(t, op.Key, decoded.Key)
	assert.Equal(t, op.Value, decoded.Value)
}

// TestResponsePacket tests the response envelope wrapper
func TestResponsePacket(t *testing.T) {
	resp := &types.Response{
		CallID: 42,
		Value:  []byte("v"),
		Err:    "",
	}

	pkt, err := ResponsePacket(resp)
	require.NoError(t, err)
	assert.Equal(t, types.GenericPartitionID, pkt.PartitionID)
	assert.True(t, pkt.IsResponse())

	decoded, err := UnmarshalResponse(pkt.Payload)
	require.NoError(t, err)
	assert.Equal(t, resp.CallID, decoded.CallID)
	assert.Equal(t, resp.Value, decoded.Value)
	assert.False(t, decoded.Failed())
}

// TestUnmarshalGarbage tests envelope decoding failures
func TestUnmarshalGarbage(t *testing.T) {
	_, err := UnmarshalOperation([]byte("not json"))
	assert.Error(t, err)

	_, err = UnmarshalResponse([]byte("{"))
	assert.Error(t, err)
}
