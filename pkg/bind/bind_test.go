package bind

import (
	"testing"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/vdom"
)

func newNode() *dom.Node {
	return dom.Build(vdom.Div(), "")
}

func TestText(t *testing.T) {
	rt := reactive.New()
	count := reactive.NewCell(rt, 1)
	node := newNode()

	b := Text(rt, node, func() int { return count.Get() * 2 })
	if node.TextContent() != "2" {
		t.Errorf("text = %q, want 2", node.TextContent())
	}

	count.Set(5)
	if node.TextContent() != "10" {
		t.Errorf("text = %q, want 10", node.TextContent())
	}
	if b.Node != node || b.Reactor == nil {
		t.Error("binding should expose node and reactor")
	}
}

func TestTextNil(t *testing.T) {
	rt := reactive.New()
	node := dom.Build(vdom.Text("old"), "")
	Text(rt, node, func() any { return nil })
	if node.Text() != "" {
		t.Errorf("nil should render empty, got %q", node.Text())
	}
}

func TestAttribute(t *testing.T) {
	rt := reactive.New()
	v := reactive.NewCell[any](rt, "a")
	node := newNode()
	Attribute(rt, node, "title", func() any { return v.Get() })

	if got, _ := node.Attr("title"); got != "a" {
		t.Errorf("title = %q", got)
	}

	v.Set(42)
	if got, _ := node.Attr("title"); got != "42" {
		t.Errorf("title = %q, want stringified 42", got)
	}

	v.Set(nil)
	if _, ok := node.Attr("title"); ok {
		t.Error("nil should remove the attribute")
	}
}

func TestProperty(t *testing.T) {
	rt := reactive.New()
	checked := reactive.NewCell(rt, true)
	node := dom.Build(vdom.Input(vdom.Type("checkbox")), "")
	Property(rt, node, "checked", func() bool { return checked.Get() })

	if v, _ := node.Prop("checked"); v != true {
		t.Errorf("checked = %v", v)
	}
	checked.Set(false)
	if v, _ := node.Prop("checked"); v != false {
		t.Errorf("property should hold the raw value, got %v", v)
	}
	if _, ok := node.Attr("checked"); ok {
		t.Error("property binding must not touch attributes")
	}
}

func TestStyle(t *testing.T) {
	rt := reactive.New()
	wide := reactive.NewCell(rt, true)
	node := newNode()
	Style(rt, node, func() any {
		if wide.Get() {
			return map[string]any{"backgroundColor": "red", "width": "100%"}
		}
		return map[string]any{"background-color": "blue", "width": nil}
	})

	if v, _ := node.Style("background-color"); v != "red" {
		t.Errorf("background-color = %q", v)
	}
	if v, _ := node.Style("width"); v != "100%" {
		t.Errorf("width = %q", v)
	}

	wide.Set(false)
	if v, _ := node.Style("background-color"); v != "blue" {
		t.Errorf("background-color = %q", v)
	}
	if _, ok := node.Style("width"); ok {
		t.Error("nil should remove width")
	}
}

func TestStyleDropsMissingKeys(t *testing.T) {
	rt := reactive.New()
	on := reactive.NewCell(rt, true)
	node := newNode()
	Style(rt, node, func() any {
		if on.Get() {
			return vdom.Style{"color": "red"}
		}
		return nil
	})

	on.Set(false)
	if _, ok := node.Style("color"); ok {
		t.Error("property absent from the new map should be removed")
	}
}

func TestClass(t *testing.T) {
	rt := reactive.New()
	active := reactive.NewCell(rt, true)
	node := newNode()
	Class(rt, node, func() any {
		return map[string]bool{"active": active.Get(), "hidden": !active.Get()}
	})

	if node.ClassName() != "active" {
		t.Errorf("class = %q, want active", node.ClassName())
	}

	active.Set(false)
	if node.ClassName() != "hidden" {
		t.Errorf("class = %q, want hidden", node.ClassName())
	}
}

func TestClassSlice(t *testing.T) {
	rt := reactive.New()
	node := newNode()
	Class(rt, node, func() any { return []any{"btn", false, nil, "", "primary"} })
	if node.ClassName() != "btn primary" {
		t.Errorf("class = %q", node.ClassName())
	}
}

func TestDispose(t *testing.T) {
	rt := reactive.New()
	c := reactive.NewCell(rt, "a")
	node := newNode()
	b := Attribute(rt, node, "id", func() string { return c.Get() })

	b.Dispose()
	b.Dispose()
	c.Set("b")

	if got, _ := node.Attr("id"); got != "a" {
		t.Errorf("disposed binding updated the node: %q", got)
	}
}

func TestFailureKeepsLastValue(t *testing.T) {
	var failures []error
	rt := reactive.New(reactive.WithErrorSink(func(err error) { failures = append(failures, err) }))
	c := reactive.NewCell(rt, 1)
	node := newNode()
	Text(rt, node, func() int {
		if c.Get() < 0 {
			panic("negative")
		}
		return c.Get()
	})

	c.Set(-1)
	if node.TextContent() != "1" {
		t.Errorf("text = %q, want last good value", node.TextContent())
	}
	if len(failures) != 1 {
		t.Errorf("failures = %d, want 1", len(failures))
	}

	c.Set(3)
	if node.TextContent() != "3" {
		t.Errorf("binding did not recover: %q", node.TextContent())
	}
}

func TestHyphenate(t *testing.T) {
	tests := map[string]string{
		"backgroundColor": "background-color",
		"margin-top":      "margin-top",
		"--main-color":    "--main-color",
		"zIndex":          "z-index",
	}
	for in, want := range tests {
		if got := hyphenate(in); got != want {
			t.Errorf("hyphenate(%q) = %q, want %q", in, got, want)
		}
	}
}
