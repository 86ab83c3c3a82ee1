package protocol

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vango-dev/weave/pkg/vdom"
)

// Value tags for prop values and SetProp payloads.
const (
	valNil    byte = 0x00
	valFalse  byte = 0x01
	valTrue   byte = 0x02
	valString byte = 0x03
	valInt    byte = 0x04
	valInt64  byte = 0x05
	valUint64 byte = 0x06
	valFloat  byte = 0x07
	valStyle  byte = 0x08
)

// writeValue encodes a prop value. Types without a tag travel as their
// attribute string.
func (e *Encoder) writeValue(v any) {
	switch val := v.(type) {
	case nil:
		e.WriteUint8(valNil)
	case bool:
		if val {
			e.WriteUint8(valTrue)
		} else {
			e.WriteUint8(valFalse)
		}
	case string:
		e.WriteUint8(valString)
		e.WriteString(val)
	case int:
		e.WriteUint8(valInt)
		e.WriteSvarint(int64(val))
	case int64:
		e.WriteUint8(valInt64)
		e.WriteSvarint(val)
	case uint64:
		e.WriteUint8(valUint64)
		e.WriteUvarint(val)
	case float64:
		e.WriteUint8(valFloat)
		e.WriteFloat64(val)
	case vdom.Style:
		e.writeStyle(val)
	case map[string]string:
		e.writeStyle(val)
	default:
		s, ok := vdom.AttrValue(v)
		if !ok {
			e.WriteUint8(valNil)
			return
		}
		e.WriteUint8(valString)
		e.WriteString(s)
	}
}

func (e *Encoder) writeStyle(s map[string]string) {
	e.WriteUint8(valStyle)
	e.WriteUvarint(uint64(len(s)))
	for _, k := range slices.Sorted(maps.Keys(s)) {
		e.WriteString(k)
		e.WriteString(s[k])
	}
}

// readValue decodes a value written by writeValue. Style maps decode as
// vdom.Style.
func (d *Decoder) readValue() (any, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case valNil:
		return nil, nil
	case valFalse:
		return false, nil
	case valTrue:
		return true, nil
	case valString:
		return d.ReadString()
	case valInt:
		v, err := d.ReadSvarint()
		return int(v), err
	case valInt64:
		return d.ReadSvarint()
	case valUint64:
		return d.ReadUvarint()
	case valFloat:
		return d.ReadFloat64()
	case valStyle:
		n, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		s := make(vdom.Style, n)
		for range n {
			k, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			if s[k], err = d.ReadString(); err != nil {
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: value tag 0x%02x", ErrUnknownOp, tag)
	}
}
