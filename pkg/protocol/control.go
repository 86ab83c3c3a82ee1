package protocol

import "fmt"

// ControlType identifies a control message.
type ControlType uint8

const (
	ControlPing   ControlType = 0x01 // Liveness probe
	ControlPong   ControlType = 0x02 // Reply to ping
	ControlAck    ControlType = 0x03 // Client applied frames up to Seq
	ControlResync ControlType = 0x04 // Client wants a fresh snapshot
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlAck:
		return "Ack"
	case ControlResync:
		return "Resync"
	default:
		return "Unknown"
	}
}

// Control is a control message. Seq is meaningful for Ack and Resync.
type Control struct {
	Type ControlType
	Seq  uint64
}

// EncodeControl encodes a control payload.
func EncodeControl(c *Control) []byte {
	e := NewEncoderWithCap(1 + MaxVarintLen)
	e.WriteUint8(byte(c.Type))
	e.WriteUvarint(c.Seq)
	return e.Bytes()
}

// DecodeControl decodes a control payload.
func DecodeControl(data []byte) (*Control, error) {
	d := NewDecoder(data)
	c, err := decodeControl(d)
	if err == nil {
		err = d.finish()
	}
	if err != nil {
		return nil, decodeError("control", err)
	}
	return c, nil
}

func decodeControl(d *Decoder) (*Control, error) {
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ct := ControlType(t)
	if ct < ControlPing || ct > ControlResync {
		return nil, fmt.Errorf("%w: control type 0x%02x", ErrUnknownOp, t)
	}
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	return &Control{Type: ct, Seq: seq}, nil
}
