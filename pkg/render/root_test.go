package render

import (
	"slices"
	"testing"

	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/vdom"
)

type recordingObserver struct {
	stats []Stats
}

func (o *recordingObserver) RenderCompleted(s Stats) {
	o.stats = append(o.stats, s)
}

func TestRootMountEmitsMountFrame(t *testing.T) {
	rt := reactive.New()
	count := reactive.NewCell(rt, 0)
	root := New(rt, func() *vdom.VNode {
		return vdom.Div(vdom.Textf("count: %d", count.Get()))
	})

	var frames []Frame
	root.OnPatch(func(f Frame) { frames = append(frames, f) })
	live := root.Mount()

	if live == nil || live.HTML() != "<div>count: 0</div>" {
		t.Fatalf("live = %v", live)
	}
	if len(frames) != 1 || frames[0].Seq != 1 || frames[0].Patches[0].Op != vdom.PatchMount {
		t.Fatalf("frames = %+v, want one mount frame at seq 1", frames)
	}
	if root.Mount() != live {
		t.Error("second Mount should return the existing live root")
	}
}

func TestRootPatchesOnChange(t *testing.T) {
	rt := reactive.New()
	count := reactive.NewCell(rt, 0)
	root := New(rt, func() *vdom.VNode {
		return vdom.Div(vdom.Textf("count: %d", count.Get()))
	})
	root.Mount()

	var frames []Frame
	root.OnPatch(func(f Frame) { frames = append(frames, f) })

	count.Set(1)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	f := frames[0]
	if f.Seq != 2 {
		t.Errorf("Seq = %d, want 2", f.Seq)
	}
	if len(f.Patches) != 1 || f.Patches[0].Op != vdom.PatchSetText || f.Patches[0].Value != "count: 1" {
		t.Errorf("patches = %v", f.Patches)
	}
	if got := root.Live().TextContent(); got != "count: 1" {
		t.Errorf("live text = %q", got)
	}
}

func TestRootEqualRenderSkipsSequence(t *testing.T) {
	rt := reactive.New()
	n := reactive.NewCell(rt, 1)
	root := New(rt, func() *vdom.VNode {
		// Parity only, so 1 -> 3 renders the same tree.
		if n.Get()%2 == 1 {
			return vdom.Span(vdom.Text("odd"))
		}
		return vdom.Span(vdom.Text("even"))
	})
	root.Mount()

	var frames int
	root.OnPatch(func(Frame) { frames++ })
	n.Set(3)
	if frames != 0 {
		t.Errorf("identical render produced %d frames", frames)
	}
	if root.Seq() != 1 {
		t.Errorf("Seq() = %d, want 1", root.Seq())
	}
	n.Set(4)
	if frames != 1 || root.Seq() != 2 {
		t.Errorf("frames = %d seq = %d, want 1 and 2", frames, root.Seq())
	}
}

func TestRootKeyedListKeepsIdentity(t *testing.T) {
	rt := reactive.New()
	items := reactive.NewCell(rt, []string{"a", "b", "c"})
	root := New(rt, func() *vdom.VNode {
		return vdom.Ul(vdom.Range(items.Get(), func(s string, _ int) *vdom.VNode {
			return vdom.Li(vdom.Key(s), vdom.Text(s))
		}))
	})
	live := root.Mount()
	b, _ := live.Child("b")

	var ops []vdom.PatchOp
	root.OnPatch(func(f Frame) {
		for _, p := range f.Patches {
			ops = append(ops, p.Op)
		}
	})
	items.Set([]string{"c", "a", "b", "d"})

	if got, _ := live.Child("b"); got != b {
		t.Error("node b was rebuilt")
	}
	if got := live.ChildKeys(); !slices.Equal(got, []string{"c", "a", "b", "d"}) {
		t.Errorf("ChildKeys = %v", got)
	}
	if !slices.Equal(ops, []vdom.PatchOp{vdom.PatchMoveNode, vdom.PatchInsertNode}) {
		t.Errorf("ops = %v, want [MoveNode InsertNode]", ops)
	}
}

func TestRootBatchRendersOnce(t *testing.T) {
	rt := reactive.New()
	first := reactive.NewCell(rt, "John")
	last := reactive.NewCell(rt, "Smith")
	obs := &recordingObserver{}
	root := New(rt, func() *vdom.VNode {
		return vdom.P(vdom.Text(first.Get() + " " + last.Get()))
	}, WithObserver(obs))
	root.Mount()

	rt.Batch(func() {
		first.Set("Jane")
		last.Set("Doe")
	})
	if len(obs.stats) != 2 {
		t.Fatalf("renders = %d, want 2", len(obs.stats))
	}
	s := obs.stats[1]
	if s.Patches != 1 || s.Nodes != 2 || s.Seq != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRootRemoveSink(t *testing.T) {
	rt := reactive.New()
	c := reactive.NewCell(rt, 0)
	root := New(rt, func() *vdom.VNode { return vdom.Textf("%d", c.Get()) })
	root.Mount()

	var a, b int
	removeA := root.OnPatch(func(Frame) { a++ })
	root.OnPatch(func(Frame) { b++ })
	c.Set(1)
	removeA()
	c.Set(2)

	if a != 1 || b != 2 {
		t.Errorf("a = %d b = %d, want 1 and 2", a, b)
	}
}

func TestRootSnapshot(t *testing.T) {
	rt := reactive.New()
	c := reactive.NewCell(rt, "x")
	root := New(rt, func() *vdom.VNode { return vdom.Div(vdom.Text(c.Get())) })
	root.Mount()
	c.Set("y")

	snap := root.Snapshot()
	if snap.Seq != 2 || len(snap.Patches) != 1 || snap.Patches[0].Op != vdom.PatchMount {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Patches[0].Node != root.Tree() {
		t.Error("snapshot should carry the last tree")
	}
}

func TestRootRemountsWhenLiveTreeDiverges(t *testing.T) {
	rt := reactive.New()
	c := reactive.NewCell(rt, "one")
	obs := &recordingObserver{}
	root := New(rt, func() *vdom.VNode {
		return vdom.Div(vdom.Span(vdom.Key("x"), vdom.Text(c.Get())))
	}, WithObserver(obs))
	live := root.Mount()

	// Replace the children behind the reconciler's back.
	live.SetText("broken")

	var frames []Frame
	root.OnPatch(func(f Frame) { frames = append(frames, f) })
	c.Set("two")

	if len(frames) != 1 || frames[0].Patches[0].Op != vdom.PatchMount {
		t.Fatalf("frames = %+v, want one mount frame", frames)
	}
	if !obs.stats[len(obs.stats)-1].Remount {
		t.Error("Remount should be reported")
	}
	if got := root.Live().HTML(); got != "<div><span>two</span></div>" {
		t.Errorf("HTML = %q", got)
	}
}

func TestRootDispose(t *testing.T) {
	rt := reactive.New()
	c := reactive.NewCell(rt, 0)
	renders := 0
	root := New(rt, func() *vdom.VNode {
		renders++
		return vdom.Textf("%d", c.Get())
	})
	root.Mount()
	root.Dispose()
	c.Set(1)

	if renders != 1 {
		t.Errorf("renders = %d after dispose, want 1", renders)
	}
	if root.Live().Text() != "0" {
		t.Errorf("live tree changed after dispose: %q", root.Live().Text())
	}
}
