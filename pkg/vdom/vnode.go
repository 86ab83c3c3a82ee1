package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// VNode is the virtual tree node. Trees are treated as immutable once
// built: the differ and patcher never write to them.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes, styles, DOM properties and event handlers
	Children []*VNode // Child nodes
	Key      string   // Reconciliation key
	Text     string   // For KindText
}

// Props holds attributes and event handlers.
//
// Values are interpreted by name: "style" may be a string or a Style map,
// the DOM properties (value, checked, selected, disabled) are set as
// properties, names starting with "on" are event handlers and never reach
// the output tree, and "key" is reserved. A nil or false value means the
// attribute is absent.
type Props map[string]any

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventHandler(key) {
			return true
		}
	}
	return false
}

// Count returns the number of nodes in the tree rooted at v.
func (v *VNode) Count() int {
	if v == nil {
		return 0
	}
	n := 1
	for _, c := range v.Children {
		n += c.Count()
	}
	return n
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}

// IsEventHandler reports whether a prop name is an event handler.
// Case-insensitive so onclick, onClick and ONCLICK are all skipped.
func IsEventHandler(name string) bool {
	return len(name) > 2 && strings.EqualFold(name[:2], "on")
}
