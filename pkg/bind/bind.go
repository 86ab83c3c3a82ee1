// Package bind connects reactive computations to single slots of a live
// node: its text, one attribute, one DOM property, its inline style or its
// class list.
//
// Each binding runs its compute function inside a reactor, so it re-runs
// whenever anything it read changes. If compute panics the failure is
// handled like any reactor failure and the slot keeps the last value that
// was applied.
package bind

import (
	"fmt"
	"strings"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/vdom"
)

// Binding is a live connection between a computation and a node slot.
type Binding struct {
	Node    *dom.Node
	Reactor *reactive.Reactor
}

// Dispose stops further updates. Safe to call more than once.
func (b *Binding) Dispose() {
	b.Reactor.Dispose()
}

func bindSlot(rt *reactive.Runtime, node *dom.Node, name string, apply func()) *Binding {
	r := rt.Effect(func() reactive.Cleanup {
		apply()
		return nil
	}, reactive.WithName(name))
	return &Binding{Node: node, Reactor: r}
}

// Text keeps the node's text equal to fn's result. A nil result is the
// empty string; other values are formatted with fmt.
func Text[T any](rt *reactive.Runtime, node *dom.Node, fn func() T) *Binding {
	return bindSlot(rt, node, "bind:text", func() {
		node.SetText(stringify(fn()))
	})
}

// Attribute keeps the named attribute equal to fn's result. nil or false
// removes the attribute; other values are stringified.
func Attribute[T any](rt *reactive.Runtime, node *dom.Node, name string, fn func() T) *Binding {
	return bindSlot(rt, node, "bind:attr:"+name, func() {
		if s, ok := vdom.AttrValue(any(fn())); ok {
			node.SetAttr(name, s)
		} else {
			node.RemoveAttr(name)
		}
	})
}

// Property assigns fn's result to the named DOM property as is. nil resets
// the property.
func Property[T any](rt *reactive.Runtime, node *dom.Node, name string, fn func() T) *Binding {
	return bindSlot(rt, node, "bind:prop:"+name, func() {
		v := any(fn())
		if v == nil {
			node.RemoveProp(name)
			return
		}
		node.SetProp(name, v)
	})
}

// Style keeps the node's inline style in step with fn's result, property
// by property. fn returns vdom.Style, map[string]string or map[string]any
// (string or nil values); keys may be camelCase or hyphenated. A nil value
// removes that property and a nil map removes every property the binding
// set.
func Style(rt *reactive.Runtime, node *dom.Node, fn func() any) *Binding {
	applied := make(map[string]bool)
	return bindSlot(rt, node, "bind:style", func() {
		next := styleMap(fn())
		for prop := range applied {
			if _, ok := next[prop]; !ok {
				node.RemoveStyle(prop)
				delete(applied, prop)
			}
		}
		for prop, v := range next {
			if v == nil {
				node.RemoveStyle(prop)
				delete(applied, prop)
				continue
			}
			node.SetStyle(prop, *v)
			applied[prop] = true
		}
	})
}

// Class keeps the node's class attribute equal to fn's result, normalized
// with vdom.ClassString: strings as is, slices with falsy entries dropped,
// maps by truthy key.
func Class(rt *reactive.Runtime, node *dom.Node, fn func() any) *Binding {
	return bindSlot(rt, node, "bind:class", func() {
		node.SetAttr("class", vdom.ClassString(fn()))
	})
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return vdom.PropToString(v)
	}
}

// styleMap normalizes a style value to hyphenated property names. A nil
// entry means "remove".
func styleMap(v any) map[string]*string {
	out := make(map[string]*string)
	set := func(k string, val *string) {
		out[hyphenate(k)] = val
	}
	switch m := v.(type) {
	case vdom.Style:
		for k, s := range m {
			set(k, &s)
		}
	case map[string]string:
		for k, s := range m {
			set(k, &s)
		}
	case map[string]any:
		for k, raw := range m {
			if raw == nil {
				set(k, nil)
				continue
			}
			s := stringify(raw)
			set(k, &s)
		}
	}
	return out
}

// hyphenate converts camelCase CSS property names to their hyphenated
// form: backgroundColor becomes background-color. Custom properties
// (--x) are left alone.
func hyphenate(name string) string {
	if strings.HasPrefix(name, "--") || strings.IndexFunc(name, isUpper) < 0 {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 4)
	for _, r := range name {
		if isUpper(r) {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
