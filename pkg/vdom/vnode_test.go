package vdom

import (
	"reflect"
	"testing"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{VKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestElConstruction(t *testing.T) {
	node := El("x-card", Props{"key": "fromProps", "size": "lg"}, []*VNode{Text("a"), nil, Text("b")}, "explicit")

	if node.Kind != KindElement || node.Tag != "x-card" {
		t.Errorf("node = %+v", node)
	}
	if node.Key != "explicit" {
		t.Errorf("Key = %q, want the explicit argument", node.Key)
	}
	if len(node.Children) != 2 {
		t.Errorf("nil child not skipped: %d children", len(node.Children))
	}

	if El("div", Props{"key": "k"}, nil).Key != "k" {
		t.Error("key prop should set Key")
	}
}

func TestCreateElementArgs(t *testing.T) {
	handler := func() {}
	node := Div(
		nil,
		Class("a"),
		[]Attr{ID("main"), Class("b")},
		Props{"data-x": "1"},
		"text",
		Span(),
		[]*VNode{P(), nil},
		OnClick(handler),
		Styles(Style{"color": "red"}),
		Styles(Style{"margin": "0"}),
	)

	if node.Props["class"] != "a b" {
		t.Errorf("class = %v, want accumulated %q", node.Props["class"], "a b")
	}
	if node.Props["id"] != "main" || node.Props["data-x"] != "1" {
		t.Errorf("props = %v", node.Props)
	}
	if !reflect.DeepEqual(node.Props["style"], Style{"color": "red", "margin": "0"}) {
		t.Errorf("style = %v", node.Props["style"])
	}
	if len(node.Children) != 3 || node.Children[0].Kind != KindText {
		t.Errorf("children = %d", len(node.Children))
	}
	if !node.IsInteractive() {
		t.Error("node with onclick should be interactive")
	}
	if node.Count() != 4 {
		t.Errorf("Count() = %d, want 4", node.Count())
	}
}

func TestClassString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "btn primary", "btn primary"},
		{"map", map[string]bool{"active": true, "hidden": false}, "active"},
		{"map sorted", map[string]bool{"z": true, "a": true}, "a z"},
		{"slice", []any{"a", false, nil, "", "b"}, "a b"},
		{"strings", []string{"x", "", "y"}, "x y"},
		{"nil", nil, ""},
		{"nested", []any{"a", map[string]bool{"b": true}}, "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassString(tt.in); got != tt.want {
				t.Errorf("ClassString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := Classes("a", map[string]bool{"b": true}).Value; got != "a b" {
		t.Errorf("Classes = %v", got)
	}
}

func TestStyleString(t *testing.T) {
	s := Style{"margin": "0", "color": "red"}
	if got := s.String(); got != "color: red; margin: 0;" {
		t.Errorf("String() = %q", got)
	}
	if (Style{}).String() != "" {
		t.Error("empty style should render empty")
	}
}

func TestAttrValue(t *testing.T) {
	tests := []struct {
		in      any
		want    string
		present bool
	}{
		{nil, "", false},
		{false, "", false},
		{true, "", true},
		{"x", "x", true},
		{3, "3", true},
		{1.5, "1.5", true},
		{Style{"a": "b"}, "a: b;", true},
	}
	for _, tt := range tests {
		got, ok := AttrValue(tt.in)
		if got != tt.want || ok != tt.present {
			t.Errorf("AttrValue(%v) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.present)
		}
	}
}

func TestChildrenIdentity(t *testing.T) {
	parent := Div(Span(), Span(Key("k")), Span())
	got := Children(parent)
	keys := []string{got[0].Key, got[1].Key, got[2].Key}
	if !reflect.DeepEqual(keys, []string{"#0", "k", "#2"}) {
		t.Errorf("keys = %v", keys)
	}

	dup := Div(Span(Key("a"), Text("1")), Span(Key("b")), Span(Key("a"), Text("2")))
	got = Children(dup)
	if len(got) != 2 || got[0].Key != "b" || got[1].Node.Children[0].Text != "2" {
		t.Errorf("duplicate keys not resolved last-wins: %+v", got)
	}

	if Children(nil) != nil || Children(Div()) != nil {
		t.Error("empty parents should have no children")
	}
}

func TestHelpers(t *testing.T) {
	if If(false, Div()) != nil || If(true, Div()) == nil {
		t.Error("If")
	}
	if IfElse(false, Div(), Span()).Tag != "span" {
		t.Error("IfElse")
	}
	if When(false, func() *VNode { panic("evaluated") }) != nil {
		t.Error("When")
	}
	if Unless(true, Div()) != nil {
		t.Error("Unless")
	}
	items := Range([]string{"a", "", "c"}, func(s string, i int) *VNode {
		if s == "" {
			return nil
		}
		return Li(Key(i), Text(s))
	})
	if len(items) != 2 || items[1].Key != "2" {
		t.Errorf("Range = %v", items)
	}
	if len(Repeat(3, func(i int) *VNode { return Text("x") })) != 3 || Repeat(0, nil) != nil {
		t.Error("Repeat")
	}
	f := Fragment("a", nil, Span(), []*VNode{P()}, Key("frag"))
	if len(f.Children) != 3 || f.Key != "frag" {
		t.Errorf("Fragment = %+v", f)
	}
	if Textf("%d items", 3).Text != "3 items" {
		t.Error("Textf")
	}
	if !IsVoidElement("br") || IsVoidElement("div") {
		t.Error("IsVoidElement")
	}
}
