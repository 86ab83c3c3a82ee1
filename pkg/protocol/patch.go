package protocol

import (
	"fmt"

	"github.com/vango-dev/weave/pkg/vdom"
)

// PatchesFrame is one render's edit script with its sequence number.
type PatchesFrame struct {
	Seq     uint64
	Patches []vdom.Patch
}

// EncodePatches encodes a patches frame payload.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame payload with the given encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		e.WritePatch(&pf.Patches[i])
	}
}

// WritePatch appends one patch. Only the fields its op uses are written.
func (e *Encoder) WritePatch(p *vdom.Patch) {
	e.WriteUint8(byte(p.Op))
	e.WriteStrings(p.Path)

	switch p.Op {
	case vdom.PatchSetText:
		e.WriteString(p.Value)
	case vdom.PatchSetAttr, vdom.PatchSetStyle:
		e.WriteString(p.Name)
		e.WriteString(p.Value)
	case vdom.PatchRemoveAttr, vdom.PatchRemoveStyle, vdom.PatchRemoveProp:
		e.WriteString(p.Name)
	case vdom.PatchSetProp:
		e.WriteString(p.Name)
		e.WriteString(p.Value)
		e.writeValue(p.Raw)
	case vdom.PatchInsertNode:
		e.WriteString(p.Key)
		e.WriteString(p.Before)
		e.WriteVNode(p.Node)
	case vdom.PatchMoveNode:
		e.WriteString(p.Key)
		e.WriteString(p.Before)
	case vdom.PatchRemoveNode:
		e.WriteString(p.Key)
	case vdom.PatchReplaceNode, vdom.PatchMount:
		e.WriteVNode(p.Node)
	}
}

// DecodePatches decodes a patches frame payload.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	return DecodePatchesWithLimits(data, DefaultLimits())
}

// DecodePatchesWithLimits decodes a patches frame payload within limits.
func DecodePatchesWithLimits(data []byte, limits Limits) (*PatchesFrame, error) {
	d := NewDecoderWithLimits(data, limits)
	pf, err := DecodePatchesFrom(d)
	if err == nil {
		err = d.finish()
	}
	if err != nil {
		return nil, decodeError("patches", err)
	}
	return pf, nil
}

// DecodePatchesFrom decodes a patches frame payload from a decoder.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	pf := &PatchesFrame{Seq: seq, Patches: make([]vdom.Patch, count)}
	for i := range pf.Patches {
		if err := d.ReadPatch(&pf.Patches[i]); err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
	}
	return pf, nil
}

// ReadPatch decodes one patch into p.
func (d *Decoder) ReadPatch(p *vdom.Patch) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = vdom.PatchOp(op)
	if p.Path, err = d.ReadStrings(); err != nil {
		return err
	}

	switch p.Op {
	case vdom.PatchSetText:
		p.Value, err = d.ReadString()
	case vdom.PatchSetAttr, vdom.PatchSetStyle:
		if p.Name, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()
	case vdom.PatchRemoveAttr, vdom.PatchRemoveStyle, vdom.PatchRemoveProp:
		p.Name, err = d.ReadString()
	case vdom.PatchSetProp:
		if p.Name, err = d.ReadString(); err != nil {
			return err
		}
		if p.Value, err = d.ReadString(); err != nil {
			return err
		}
		p.Raw, err = d.readValue()
	case vdom.PatchInsertNode:
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		if p.Before, err = d.ReadString(); err != nil {
			return err
		}
		p.Node, err = d.ReadVNode()
	case vdom.PatchMoveNode:
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Before, err = d.ReadString()
	case vdom.PatchRemoveNode:
		p.Key, err = d.ReadString()
	case vdom.PatchReplaceNode, vdom.PatchMount:
		p.Node, err = d.ReadVNode()
	default:
		return fmt.Errorf("%w: patch op 0x%02x", ErrUnknownOp, op)
	}
	return err
}
