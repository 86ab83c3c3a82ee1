package protocol

import (
	"bytes"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	werrors "github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/vdom"
)

func list(keys ...int) *vdom.VNode {
	return vdom.Ul(vdom.ID("list"), vdom.Range(keys, func(k, _ int) *vdom.VNode {
		return vdom.Li(vdom.Key(fmt.Sprint(k)), vdom.Textf("item %d", k))
	}))
}

func sampleTree() *vdom.VNode {
	return vdom.Div(
		vdom.Class("card"),
		vdom.Styles(vdom.Style{"color": "red", "margin": "0"}),
		vdom.OnClick(func() {}),
		vdom.H1(vdom.Text("Title")),
		vdom.Input(vdom.Type("checkbox"), vdom.CheckedIf(true), vdom.Value("x")),
		vdom.El("meter", vdom.Props{"value": 0.5, "max": 1, "low": int64(-3), "high": uint64(9)}, nil),
		vdom.Fragment(vdom.Key("frag"), vdom.Span(vdom.Text("a")), vdom.Text("b")),
		list(1, 2, 3),
	)
}

// sameTree reports whether two trees render identically.
func sameTree(a, b *vdom.VNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	return len(vdom.Diff(a, b)) == 0
}

func samePatch(t *testing.T, i int, want, got vdom.Patch) {
	t.Helper()
	if want.Op != got.Op || !slices.Equal(want.Path, got.Path) || want.Key != got.Key ||
		want.Before != got.Before || want.Name != got.Name || want.Value != got.Value {
		t.Errorf("patch %d = %v, want %v", i, got, want)
	}
	if want.Op == vdom.PatchSetProp && want.Raw != got.Raw {
		t.Errorf("patch %d Raw = %#v, want %#v", i, got.Raw, want.Raw)
	}
	if !sameTree(want.Node, got.Node) {
		t.Errorf("patch %d node differs", i)
	}
}

func TestVNodeRoundTrip(t *testing.T) {
	tree := sampleTree()
	data := EncodeVNode(tree)
	got, err := DecodeVNode(data)
	if err != nil {
		t.Fatalf("DecodeVNode: %v", err)
	}
	if !sameTree(tree, got) {
		t.Errorf("decoded tree differs: %v", vdom.Diff(tree, got))
	}
	if !bytes.Equal(EncodeVNode(got), data) {
		t.Error("re-encoding the decoded tree changed the bytes")
	}
	if _, ok := got.Props["onclick"]; ok {
		t.Error("event handler reached the wire")
	}
	meter := got.Children[2]
	if meter.Props["max"] != 1 || meter.Props["low"] != int64(-3) || meter.Props["high"] != uint64(9) {
		t.Errorf("typed props = %#v", meter.Props)
	}
	if _, ok := got.Props["style"].(vdom.Style); !ok {
		t.Errorf("style decoded as %T", got.Props["style"])
	}
}

func TestVNodeNilChildKeepsSlot(t *testing.T) {
	tree := &vdom.VNode{Kind: vdom.KindElement, Tag: "div", Children: []*vdom.VNode{nil, vdom.Text("x")}}
	got, err := DecodeVNode(EncodeVNode(tree))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Children) != 2 || got.Children[0] != nil {
		t.Fatalf("children = %v", got.Children)
	}
	if k := vdom.IdentityKey(got.Children[1], 1); k != "#1" {
		t.Errorf("identity key = %q, want #1", k)
	}
}

func TestPatchesRoundTrip(t *testing.T) {
	prev := vdom.Div(vdom.Class("a"), vdom.Input(vdom.Value("old")), list(1, 2, 3, 4))
	next := vdom.Div(vdom.Styles(vdom.Style{"color": "blue"}), vdom.Input(vdom.Value("new"), vdom.Disabled()), list(4, 2, 5, 1))

	patches := vdom.Diff(prev, next)
	patches = append(patches,
		vdom.Patch{Op: vdom.PatchReplaceNode, Path: []string{"#0"}, Node: vdom.P(vdom.Text("p"))},
		vdom.Patch{Op: vdom.PatchMount, Node: sampleTree()},
		vdom.Patch{Op: vdom.PatchMount},
	)
	pf := &PatchesFrame{Seq: 42, Patches: patches}

	got, err := DecodePatches(EncodePatches(pf))
	if err != nil {
		t.Fatalf("DecodePatches: %v", err)
	}
	if got.Seq != 42 || len(got.Patches) != len(patches) {
		t.Fatalf("got seq %d with %d patches, want 42 with %d", got.Seq, len(got.Patches), len(patches))
	}
	for i := range patches {
		samePatch(t, i, patches[i], got.Patches[i])
	}
}

// A decoded script applied to a remote tree keeps it equal to the local one.
func TestDecodedPatchesKeepRemoteInSync(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	local, remote := dom.NewPatcher(), dom.NewPatcher()

	prev := list(1, 2, 3, 4, 5, 6)
	local.Mount(prev)
	mount, err := DecodeVNode(EncodeVNode(prev))
	if err != nil {
		t.Fatal(err)
	}
	remote.Mount(mount)

	for round := range 50 {
		keys := rng.Perm(8)[:rng.Intn(8)]
		next := list(keys...)
		patches := vdom.Diff(prev, next)
		if err := local.Apply(patches); err != nil {
			t.Fatalf("round %d local: %v", round, err)
		}
		pf, err := DecodePatches(EncodePatches(&PatchesFrame{Seq: uint64(round), Patches: patches}))
		if err != nil {
			t.Fatalf("round %d decode: %v", round, err)
		}
		if err := remote.Apply(pf.Patches); err != nil {
			t.Fatalf("round %d remote: %v", round, err)
		}
		if local.Root().HTML() != remote.Root().HTML() {
			t.Fatalf("round %d: remote %s, local %s", round, remote.Root().HTML(), local.Root().HTML())
		}
		prev = next
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := EncodePatches(&PatchesFrame{Seq: 9, Patches: vdom.Diff(list(1, 2, 3), list(3, 4, 1))})
	for n := range len(data) {
		_, err := DecodePatches(data[:n])
		if err == nil {
			t.Fatalf("prefix of %d/%d bytes decoded", n, len(data))
		}
		if !werrors.HasCode(err, "E005") {
			t.Fatalf("prefix %d: err = %v, want E005", n, err)
		}
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	data := append(EncodeVNode(vdom.Text("x")), 0x00)
	if _, err := DecodeVNode(data); !werrors.HasCode(err, "E005") {
		t.Errorf("err = %v, want E005", err)
	}
}

func TestDecodeUnknownOp(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteUvarint(1)
	e.WriteUint8(0x7E)
	e.WriteStrings(nil)
	if _, err := DecodePatches(e.Bytes()); !werrors.HasCode(err, "E005") {
		t.Errorf("err = %v, want E005", err)
	}
}

func BenchmarkEncodePatches(b *testing.B) {
	pf := &PatchesFrame{Seq: 1, Patches: vdom.Diff(list(1, 2, 3, 4, 5, 6, 7, 8), list(8, 7, 6, 5, 4, 3, 2, 1, 9))}
	e := NewEncoderWithCap(1024)
	b.ReportAllocs()
	for b.Loop() {
		e.Reset()
		EncodePatchesTo(e, pf)
	}
}

func BenchmarkDecodePatches(b *testing.B) {
	data := EncodePatches(&PatchesFrame{Seq: 1, Patches: vdom.Diff(list(1, 2, 3, 4, 5, 6, 7, 8), list(8, 7, 6, 5, 4, 3, 2, 1, 9))})
	b.ReportAllocs()
	for b.Loop() {
		if _, err := DecodePatches(data); err != nil {
			b.Fatal(err)
		}
	}
}
