package vtest

import (
	"slices"
	"strings"
	"testing"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/protocol"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
	"github.com/vango-dev/weave/pkg/vdom"
)

// Harness is a mounted render root with a recorded frame log and a remote
// live tree fed from the encoded frames.
type Harness struct {
	t      testing.TB
	root   *render.Root
	remote *dom.Patcher
	frames []render.Frame
}

// Mount mounts view on rt. Every frame is encoded, decoded and applied to
// the remote tree, which must then match the root's live tree. The root is
// disposed when the test ends.
func Mount(t testing.TB, rt *reactive.Runtime, view render.View, opts ...render.Option) *Harness {
	t.Helper()
	h := &Harness{
		t:      t,
		root:   render.New(rt, view, opts...),
		remote: dom.NewPatcher(),
	}
	h.root.OnPatch(h.record)
	h.root.Mount()
	t.Cleanup(h.root.Dispose)
	return h
}

func (h *Harness) record(f render.Frame) {
	h.t.Helper()
	h.frames = append(h.frames, f)

	data := protocol.EncodePatches(&protocol.PatchesFrame{Seq: f.Seq, Patches: f.Patches})
	decoded, err := protocol.DecodePatches(data)
	if err != nil {
		h.t.Errorf("frame %d does not decode: %v", f.Seq, err)
		return
	}
	if err := h.remote.Apply(decoded.Patches); err != nil {
		h.t.Errorf("frame %d does not apply remotely: %v", f.Seq, err)
		return
	}
	if got, want := h.remote.Root().HTML(), h.root.Live().HTML(); got != want {
		h.t.Errorf("remote diverged after frame %d:\nremote: %s\nlive:   %s",
			f.Seq, truncate(got, 500), truncate(want, 500))
	}
}

// Root returns the mounted render root.
func (h *Harness) Root() *render.Root {
	return h.root
}

// Remote returns the remote live tree.
func (h *Harness) Remote() *dom.Node {
	return h.remote.Root()
}

// Frames returns every recorded frame, mount frame first.
func (h *Harness) Frames() []render.Frame {
	return h.frames
}

// Last returns the most recent frame.
func (h *Harness) Last() render.Frame {
	h.t.Helper()
	if len(h.frames) == 0 {
		h.t.Fatal("no frames recorded")
	}
	return h.frames[len(h.frames)-1]
}

// HTML returns the live tree as HTML.
func (h *Harness) HTML() string {
	return h.root.Live().HTML()
}

// ExpectHTML asserts the live tree renders exactly want.
func (h *Harness) ExpectHTML(want string) {
	h.t.Helper()
	if got := h.HTML(); got != want {
		h.t.Errorf("HTML = %s, want %s", truncate(got, 500), want)
	}
}

// ExpectFrames asserts how many frames have been recorded.
func (h *Harness) ExpectFrames(n int) {
	h.t.Helper()
	if len(h.frames) != n {
		h.t.Errorf("frames = %d, want %d", len(h.frames), n)
	}
}

// ExpectOps asserts the op sequence of the most recent frame.
func (h *Harness) ExpectOps(ops ...vdom.PatchOp) {
	h.t.Helper()
	last := h.Last()
	got := make([]vdom.PatchOp, len(last.Patches))
	for i, p := range last.Patches {
		got[i] = p.Op
	}
	if !slices.Equal(got, ops) {
		h.t.Errorf("ops = %v, want %v", got, ops)
	}
}

// RenderToString renders a VNode and returns the HTML string.
//
// Example:
//
//	html := vtest.RenderToString(view())
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(node *vdom.VNode) string {
	if node == nil {
		return ""
	}
	return dom.Build(node, "").HTML()
}

// ExpectContains asserts that rendered output contains expected substring.
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t testing.TB, node *vdom.VNode, tag string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
func ExpectAttribute(t testing.TB, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
