package vdom

import (
	"fmt"
	"strings"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Insert new child
	PatchRemoveNode  PatchOp = 0x05 // Remove child
	PatchMoveNode    PatchOp = 0x06 // Move child to new position
	PatchReplaceNode PatchOp = 0x07 // Replace node entirely
	PatchSetStyle    PatchOp = 0x08 // Set one style property
	PatchRemoveStyle PatchOp = 0x09 // Remove one style property
	PatchSetProp     PatchOp = 0x0A // Set DOM property (value, checked, ...)
	PatchRemoveProp  PatchOp = 0x0B // Reset DOM property
	PatchMount       PatchOp = 0x0C // Replace the whole tree (Node nil unmounts)
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchSetStyle:
		return "SetStyle"
	case PatchRemoveStyle:
		return "RemoveStyle"
	case PatchSetProp:
		return "SetProp"
	case PatchRemoveProp:
		return "RemoveProp"
	case PatchMount:
		return "Mount"
	default:
		return "Unknown"
	}
}

// Patch represents a single operation against a live tree.
//
// Path lists identity keys from the root down to the target node; an empty
// Path is the root. For child operations (InsertNode, RemoveNode, MoveNode)
// Path names the parent and Key the child. Before is the identity key of
// the sibling the child is placed in front of; empty means append.
type Patch struct {
	Op     PatchOp
	Path   []string
	Key    string // child identity key (Insert/Remove/Move)
	Before string // anchor sibling (Insert/Move)
	Name   string // attribute, style or property name
	Value  string // new value as a string
	Raw    any    // SetProp: the property's original value
	Node   *VNode // InsertNode/ReplaceNode/Mount
}

// String renders the patch for logs and the diff command.
func (p Patch) String() string {
	var b strings.Builder
	b.WriteString(p.Op.String())
	b.WriteString(" /")
	b.WriteString(strings.Join(p.Path, "/"))
	switch p.Op {
	case PatchInsertNode, PatchMoveNode:
		fmt.Fprintf(&b, " %s", p.Key)
		if p.Before != "" {
			fmt.Fprintf(&b, " before %s", p.Before)
		}
	case PatchRemoveNode:
		fmt.Fprintf(&b, " %s", p.Key)
	case PatchSetAttr, PatchSetStyle, PatchSetProp:
		fmt.Fprintf(&b, " %s=%q", p.Name, p.Value)
	case PatchRemoveAttr, PatchRemoveStyle, PatchRemoveProp:
		fmt.Fprintf(&b, " %s", p.Name)
	case PatchSetText:
		fmt.Fprintf(&b, " %q", p.Value)
	}
	return b.String()
}

// Counts tallies patches by op.
func Counts(patches []Patch) map[PatchOp]int {
	counts := make(map[PatchOp]int)
	for _, p := range patches {
		counts[p.Op]++
	}
	return counts
}
