package protocol

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vango-dev/weave/pkg/vdom"
)

// nullNode marks an absent node or child slot.
const nullNode byte = 0xFF

// EncodeVNode encodes a tree. Event handlers and the reserved "key" prop
// are stripped; nil children keep their slot so synthetic keys survive.
func EncodeVNode(node *vdom.VNode) []byte {
	e := NewEncoder()
	e.WriteVNode(node)
	return e.Bytes()
}

// WriteVNode appends an encoded tree.
func (e *Encoder) WriteVNode(node *vdom.VNode) {
	if node == nil {
		e.WriteUint8(nullNode)
		return
	}
	e.WriteUint8(byte(node.Kind))
	e.WriteString(node.Key)

	switch node.Kind {
	case vdom.KindText:
		e.WriteString(node.Text)
		return
	case vdom.KindElement:
		e.WriteString(node.Tag)
		names := wireProps(node.Props)
		e.WriteUvarint(uint64(len(names)))
		for _, name := range names {
			e.WriteString(name)
			e.writeValue(node.Props[name])
		}
	}

	e.WriteUvarint(uint64(len(node.Children)))
	for _, c := range node.Children {
		e.WriteVNode(c)
	}
}

// wireProps returns the sorted prop names that go on the wire.
func wireProps(p vdom.Props) []string {
	names := make([]string, 0, len(p))
	for _, name := range slices.Sorted(maps.Keys(p)) {
		if name == "key" || vdom.IsEventHandler(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// DecodeVNode decodes a tree encoded by EncodeVNode.
func DecodeVNode(data []byte) (*vdom.VNode, error) {
	d := NewDecoder(data)
	n, err := d.ReadVNode()
	if err == nil {
		err = d.finish()
	}
	if err != nil {
		return nil, decodeError("vnode", err)
	}
	return n, nil
}

// ReadVNode decodes one tree, enforcing the depth limit.
func (d *Decoder) ReadVNode() (*vdom.VNode, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind == nullNode {
		return nil, nil
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	n := &vdom.VNode{Kind: vdom.VKind(kind)}
	if n.Key, err = d.ReadString(); err != nil {
		return nil, err
	}

	switch n.Kind {
	case vdom.KindText:
		if n.Text, err = d.ReadString(); err != nil {
			return nil, err
		}
		return n, nil
	case vdom.KindElement:
		if n.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}
		count, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			n.Props = make(vdom.Props, count)
		}
		for range count {
			name, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			if n.Props[name], err = d.readValue(); err != nil {
				return nil, err
			}
		}
	case vdom.KindFragment:
	default:
		return nil, fmt.Errorf("%w: node kind %d", ErrUnknownOp, kind)
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		n.Children = make([]*vdom.VNode, count)
	}
	for i := range count {
		if n.Children[i], err = d.ReadVNode(); err != nil {
			return nil, err
		}
	}
	return n, nil
}
