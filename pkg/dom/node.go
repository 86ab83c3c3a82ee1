package dom

import (
	"maps"
	"slices"

	"github.com/vango-dev/weave/pkg/vdom"
)

// Node is a node of the live output tree.
type Node struct {
	Kind vdom.VKind
	Tag  string

	// key is the node's identity key within its parent.
	key  string
	text string

	attrs  map[string]string
	styles map[string]string
	props  map[string]any

	parent   *Node
	children []*Node

	// index maps identity key to child. It holds exactly the nodes in
	// children.
	index map[string]*Node
}

// Build constructs a live subtree from v with identity key key.
func Build(v *vdom.VNode, key string) *Node {
	n := &Node{
		Kind: v.Kind,
		Tag:  v.Tag,
		key:  key,
		text: v.Text,
	}
	if v.Kind == vdom.KindElement {
		n.setProps(v.Props)
	}
	for _, c := range vdom.Children(v) {
		n.appendChild(Build(c.Node, c.Key))
	}
	return n
}

func (n *Node) setProps(props vdom.Props) {
	for name, value := range props {
		if name == "key" || vdom.IsEventHandler(name) {
			continue
		}
		switch {
		case vdom.IsProperty(name):
			if value != nil {
				n.SetProp(name, value)
			}
		case name == "style":
			if s, ok := value.(vdom.Style); ok {
				for k, v := range s {
					n.SetStyle(k, v)
				}
				continue
			}
			if s, ok := value.(map[string]string); ok {
				for k, v := range s {
					n.SetStyle(k, v)
				}
				continue
			}
			fallthrough
		default:
			if s, ok := vdom.AttrValue(value); ok {
				n.SetAttr(name, s)
			}
		}
	}
}

// Key returns the node's identity key within its parent.
func (n *Node) Key() string {
	return n.key
}

// Parent returns the parent node, or nil for a root or detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the children in order. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildKeys returns the identity keys of the children in order.
func (n *Node) ChildKeys() []string {
	keys := make([]string, len(n.children))
	for i, c := range n.children {
		keys[i] = c.key
	}
	return keys
}

// Child returns the child with identity key key.
func (n *Node) Child(key string) (*Node, bool) {
	c, ok := n.index[key]
	return c, ok
}

// Text returns the content of a text node.
func (n *Node) Text() string {
	return n.text
}

// SetText replaces the content of a text node. On an element or fragment
// it replaces all children with a single text node, as textContent does.
func (n *Node) SetText(s string) {
	if n.Kind == vdom.KindText {
		n.text = s
		return
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.index = nil
	if s != "" {
		n.appendChild(&Node{Kind: vdom.KindText, key: vdom.SyntheticKeyPrefix + "0", text: s})
	}
}

// TextContent returns the concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n.Kind == vdom.KindText {
		return n.text
	}
	var s string
	for _, c := range n.children {
		s += c.TextContent()
	}
	return s
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Attrs returns a copy of the attributes.
func (n *Node) Attrs() map[string]string {
	return maps.Clone(n.attrs)
}

// SetAttr sets an attribute. Setting "style" replaces any per-property
// styles.
func (n *Node) SetAttr(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
	if name == "style" {
		n.styles = nil
	}
}

// RemoveAttr removes an attribute. Removing "style" also clears
// per-property styles.
func (n *Node) RemoveAttr(name string) {
	delete(n.attrs, name)
	if name == "style" {
		n.styles = nil
	}
}

// Style returns one style property.
func (n *Node) Style(name string) (string, bool) {
	v, ok := n.styles[name]
	return v, ok
}

// SetStyle sets one style property.
func (n *Node) SetStyle(name, value string) {
	if n.styles == nil {
		n.styles = make(map[string]string)
	}
	n.styles[name] = value
	delete(n.attrs, "style")
}

// RemoveStyle removes one style property.
func (n *Node) RemoveStyle(name string) {
	delete(n.styles, name)
}

// Prop returns a DOM property value.
func (n *Node) Prop(name string) (any, bool) {
	v, ok := n.props[name]
	return v, ok
}

// SetProp sets a DOM property.
func (n *Node) SetProp(name string, value any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
}

// RemoveProp resets a DOM property.
func (n *Node) RemoveProp(name string) {
	delete(n.props, name)
}

// ClassName returns the class attribute.
func (n *Node) ClassName() string {
	return n.attrs["class"]
}

// appendChild adds c as the last child.
func (n *Node) appendChild(c *Node) {
	n.insertAt(c, len(n.children))
}

// insertBefore inserts c in front of the child keyed before, or appends
// when before is empty.
func (n *Node) insertBefore(c *Node, before string) bool {
	if before == "" {
		n.appendChild(c)
		return true
	}
	i := n.indexOf(before)
	if i < 0 {
		return false
	}
	n.insertAt(c, i)
	return true
}

func (n *Node) insertAt(c *Node, i int) {
	if old, ok := n.index[c.key]; ok && old != c {
		// Last wins: a node with the same identity is replaced.
		if j := slices.Index(n.children, old); j >= 0 && j < i {
			i--
		}
		n.removeChild(old)
	}
	c.parent = n
	n.children = slices.Insert(n.children, i, c)
	if n.index == nil {
		n.index = make(map[string]*Node)
	}
	n.index[c.key] = c
}

// removeChild detaches c and drops its index entry.
func (n *Node) removeChild(c *Node) {
	i := slices.Index(n.children, c)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	delete(n.index, c.key)
	c.parent = nil
}

// replaceChild swaps old for c in place.
func (n *Node) replaceChild(old, c *Node) {
	i := slices.Index(n.children, old)
	if i < 0 {
		return
	}
	old.parent = nil
	c.parent = n
	n.children[i] = c
	n.index[c.key] = c
}

func (n *Node) indexOf(key string) int {
	c, ok := n.index[key]
	if !ok {
		return -1
	}
	return slices.Index(n.children, c)
}
