package protocol

import (
	"encoding/binary"
	"io"
)

// FrameHeaderSize is the size of the frame header in bytes.
const FrameHeaderSize = 6

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameHello   FrameType = 0x00 // Server greeting
	FramePatches FrameType = 0x02 // Server → client edit scripts
	FrameControl FrameType = 0x03 // Ack, resync, ping/pong
	FrameError   FrameType = 0x05 // Error report
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHello:
		return "Hello"
	case FramePatches:
		return "Patches"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional flags for frame processing.
type FrameFlags uint8

const (
	FlagSnapshot FrameFlags = 0x01 // Patches frame holds a full mount
	FlagFinal    FrameFlags = 0x04 // Last frame before close
)

// Has returns true if the flags contain flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame is a protocol frame: a 6-byte header and a payload.
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a frame with no flags.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// NewFrameWithFlags creates a frame with flags.
func NewFrameWithFlags(ft FrameType, flags FrameFlags, payload []byte) *Frame {
	return &Frame{Type: ft, Flags: flags, Payload: payload}
}

// Encode returns the frame with its header.
func (f *Frame) Encode() []byte {
	buf := make([]byte, 0, FrameHeaderSize+len(f.Payload))
	buf = append(buf, byte(f.Type), byte(f.Flags))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(f.Payload)))
	return append(buf, f.Payload...)
}

// DecodeFrame decodes one complete frame with the default limits.
func DecodeFrame(data []byte) (*Frame, error) {
	return DecodeFrameWithLimits(data, DefaultLimits())
}

// DecodeFrameWithLimits decodes one complete frame. The payload is copied.
func DecodeFrameWithLimits(data []byte, limits Limits) (*Frame, error) {
	limits = limits.orDefault()
	if len(data) < FrameHeaderSize {
		return nil, decodeError("frame header", io.ErrUnexpectedEOF)
	}
	length := binary.BigEndian.Uint32(data[2:])
	if uint64(length) > uint64(limits.MaxPayload) {
		return nil, decodeError("frame", ErrFrameTooLarge)
	}
	if uint64(len(data)-FrameHeaderSize) < uint64(length) {
		return nil, decodeError("frame payload", io.ErrUnexpectedEOF)
	}
	if uint64(len(data)-FrameHeaderSize) > uint64(length) {
		return nil, decodeError("frame", ErrTrailingBytes)
	}
	return &Frame{
		Type:    FrameType(data[0]),
		Flags:   FrameFlags(data[1]),
		Payload: append([]byte(nil), data[FrameHeaderSize:]...),
	}, nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader, limits Limits) (*Frame, error) {
	limits = limits.orDefault()
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[2:])
	if uint64(length) > uint64(limits.MaxPayload) {
		return nil, decodeError("frame", ErrFrameTooLarge)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, decodeError("frame payload", err)
	}
	return &Frame{Type: FrameType(header[0]), Flags: FrameFlags(header[1]), Payload: payload}, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	_, err := w.Write(f.Encode())
	return err
}
