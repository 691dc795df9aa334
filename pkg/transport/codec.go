package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cuemby/burrow/pkg/types"
)

// Wire format constants. The header is fixed-size little-endian:
//
//	offset  size  field
//	0       2     magic 0x4252 ("BR")
//	2       1     version
//	3       2     flags
//	5       4     partition id (int32)
//	9       4     payload length (uint32)
//	13      n     payload
const (
	Magic      uint16 = 0x4252
	Version    uint8  = 1
	HeaderSize        = 13

	// MaxPayloadSize caps a single packet's payload at 64 MiB
	MaxPayloadSize = 64 << 20
)

var (
	// ErrBadMagic is returned when a frame does not start with the magic
	ErrBadMagic = errors.New("bad packet magic")

	// ErrBadVersion is returned for an unsupported protocol version
	ErrBadVersion = errors.New("unsupported protocol version")

	// ErrPayloadTooLarge is returned when a frame declares a payload
	// beyond MaxPayloadSize
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrShortPacket is returned when a buffer is smaller than the header
	ErrShortPacket = errors.New("short packet")
)

// EncodePacket serializes a packet into a single wire frame
func EncodePacket(pkt *types.Packet) []byte {
	buf := make([]byte, HeaderSize+len(pkt.Payload))
	binary.LittleEndian.PutUint16(buf[0:2], Magic)
	buf[2] = Version
	binary.LittleEndian.PutUint16(buf[3:5], pkt.Flags)
	binary.LittleEndian.PutUint32(buf[5:9], uint32(pkt.PartitionID))
	binary.LittleEndian.PutUint32(buf[9:13], uint32(len(pkt.Payload)))
	copy(buf[HeaderSize:], pkt.Payload)
	return buf
}

// DecodePacket parses a complete wire frame
func DecodePacket(buf []byte) (*types.Packet, error) {
	if len(buf) < HeaderSize {
		return nil, ErrShortPacket
	}

	if binary.LittleEndian.Uint16(buf[0:2]) != Magic {
		return nil, ErrBadMagic
	}
	if buf[2] != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, buf[2])
	}

	length := binary.LittleEndian.Uint32(buf[9:13])
	if length > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	if len(buf) < HeaderSize+int(length) {
		return nil, ErrShortPacket
	}

	pkt := &types.Packet{
		Flags:       binary.LittleEndian.Uint16(buf[3:5]),
		PartitionID: int32(binary.LittleEndian.Uint32(buf[5:9])),
	}
	if length > 0 {
		pkt.Payload = make([]byte, length)
		copy(pkt.Payload, buf[HeaderSize:HeaderSize+length])
	}
	return pkt, nil
}

// WritePacket writes a packet frame to the writer
func WritePacket(w io.Writer, pkt *types.Packet) error {
	if _, err := w.Write(EncodePacket(pkt)); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	return nil
}

// ReadPacket reads exactly one packet frame from the reader
func ReadPacket(r io.Reader) (*types.Packet, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if binary.LittleEndian.Uint16(header[0:2]) != Magic {
		return nil, ErrBadMagic
	}
	if header[2] != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, header[2])
	}

	length := binary.LittleEndian.Uint32(header[9:13])
	if length > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	pkt := &types.Packet{
		Flags:       binary.LittleEndian.Uint16(header[3:5]),
		PartitionID: int32(binary.LittleEndian.Uint32(header[5:9])),
	}
	if length > 0 {
		pkt.Payload = make([]byte, length)
		if _, err := io.ReadFull(r, pkt.Payload); err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
	}
	return pkt, nil
}
