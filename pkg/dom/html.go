package dom

import (
	"bytes"
	"io"
	"sort"

	"github.com/vango-dev/weave/pkg/vdom"
)

// booleanAttrs render without a value when present.
var booleanAttrs = map[string]bool{
	"hidden":   true,
	"checked":  true,
	"selected": true,
	"disabled": true,
	"readonly": true,
	"required": true,
	"multiple": true,
	"open":     true,
}

// HTML renders the subtree as HTML. Fragments contribute only their
// children. DOM properties are rendered as their attribute equivalents.
func (n *Node) HTML() string {
	var buf bytes.Buffer
	_ = n.WriteHTML(&buf)
	return buf.String()
}

// WriteHTML streams the subtree as HTML to w.
func (n *Node) WriteHTML(w io.Writer) error {
	ew := &errWriter{w: w}
	n.writeHTML(ew)
	return ew.err
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) str(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (n *Node) writeHTML(w *errWriter) {
	switch n.Kind {
	case vdom.KindText:
		w.str(escapeHTML(n.text))
	case vdom.KindFragment:
		for _, c := range n.children {
			c.writeHTML(w)
		}
	case vdom.KindElement:
		w.str("<")
		w.str(n.Tag)
		n.writeAttributes(w)
		w.str(">")
		if vdom.IsVoidElement(n.Tag) {
			return
		}
		for _, c := range n.children {
			c.writeHTML(w)
		}
		w.str("</")
		w.str(n.Tag)
		w.str(">")
	}
}

// writeAttributes writes attributes sorted by name for deterministic
// output.
func (n *Node) writeAttributes(w *errWriter) {
	attrs := make(map[string]string, len(n.attrs)+len(n.props)+1)
	for k, v := range n.attrs {
		attrs[k] = v
	}
	for k, v := range n.props {
		if s, ok := vdom.AttrValue(v); ok {
			attrs[k] = s
		}
	}
	if len(n.styles) > 0 {
		attrs["style"] = vdom.Style(n.styles).String()
	}

	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		w.str(" ")
		w.str(name)
		if booleanAttrs[name] && (attrs[name] == "" || attrs[name] == "true") {
			continue
		}
		w.str(`="`)
		w.str(escapeAttr(attrs[name]))
		w.str(`"`)
	}
}
