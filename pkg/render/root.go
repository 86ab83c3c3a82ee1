package render

import (
	"log/slog"
	"time"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/vdom"
)

// View builds the virtual tree. It runs inside a reactor, so every cell or
// derivation it reads becomes a dependency of the render.
type View func() *vdom.VNode

// Frame is one render's edit script.
type Frame struct {
	Seq     uint64
	Patches []vdom.Patch
}

// Sink receives frames on the runtime's goroutine.
type Sink func(Frame)

// Stats describes one completed render.
type Stats struct {
	Seq      uint64
	Patches  int
	Nodes    int
	Remount  bool
	Duration time.Duration
}

// Observer receives render events.
type Observer interface {
	RenderCompleted(stats Stats)
}

// Option configures a Root.
type Option func(*Root)

// WithLogger sets the structured logger. Default: the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Root) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver registers an Observer for render events.
func WithObserver(o Observer) Option {
	return func(r *Root) {
		r.observer = o
	}
}

// WithName labels the root's reactor.
func WithName(name string) Option {
	return func(r *Root) {
		r.name = name
	}
}

// Root renders a View into a live tree and keeps it up to date.
type Root struct {
	rt      *reactive.Runtime
	view    View
	name    string
	patcher *dom.Patcher
	scope   *reactive.Scope
	reactor *reactive.Reactor

	tree    *vdom.VNode
	mounted bool
	seq     uint64

	sinks  map[int]Sink
	nextID int

	logger   *slog.Logger
	observer Observer
}

// New creates a Root. Nothing renders until Mount.
func New(rt *reactive.Runtime, view View, opts ...Option) *Root {
	r := &Root{
		rt:     rt,
		view:   view,
		name:   "render",
		sinks:  make(map[int]Sink),
		logger: rt.Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.patcher = dom.NewPatcher(dom.WithLogger(r.logger))
	return r
}

// Mount renders the view for the first time and starts tracking it.
// Calling Mount again returns the existing live root.
func (r *Root) Mount() *dom.Node {
	if r.reactor != nil {
		return r.patcher.Root()
	}
	r.scope = r.rt.NewScope()
	r.scope.Run(func() {
		r.reactor = r.rt.Effect(func() reactive.Cleanup {
			r.render()
			return nil
		}, reactive.WithName(r.name))
	})
	return r.patcher.Root()
}

// render runs the view and reconciles.
func (r *Root) render() {
	start := time.Now()
	next := r.view()

	var (
		patches []vdom.Patch
		remount bool
	)
	if !r.mounted {
		patches = []vdom.Patch{{Op: vdom.PatchMount, Node: next}}
		r.patcher.Mount(next)
		r.mounted = true
	} else {
		patches = vdom.Diff(r.tree, next)
		if err := r.patcher.Apply(patches); err != nil {
			// The live tree no longer matches the last render.
			r.logger.Error("patch failed, remounting", "root", r.name, "error", err)
			patches = []vdom.Patch{{Op: vdom.PatchMount, Node: next}}
			r.patcher.Mount(next)
			remount = true
		}
	}
	r.tree = next

	if len(patches) > 0 {
		r.seq++
		frame := Frame{Seq: r.seq, Patches: patches}
		for _, id := range r.sinkIDs() {
			if sink, ok := r.sinks[id]; ok {
				sink(frame)
			}
		}
	}

	stats := Stats{
		Seq:      r.seq,
		Patches:  len(patches),
		Nodes:    next.Count(),
		Remount:  remount,
		Duration: time.Since(start),
	}
	if r.observer != nil {
		r.observer.RenderCompleted(stats)
	}
	r.logger.Debug("render",
		"root", r.name,
		"seq", stats.Seq,
		"patches", stats.Patches,
		"nodes", stats.Nodes,
		"duration", stats.Duration)
}

// sinkIDs returns sink ids in registration order.
func (r *Root) sinkIDs() []int {
	ids := make([]int, 0, len(r.sinks))
	for id := 0; id < r.nextID; id++ {
		if _, ok := r.sinks[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// OnPatch registers a sink for every frame after it is registered and
// returns a function that removes it.
func (r *Root) OnPatch(sink Sink) (remove func()) {
	id := r.nextID
	r.nextID++
	r.sinks[id] = sink
	return func() {
		delete(r.sinks, id)
	}
}

// Snapshot returns the current tree as a mount frame at the current
// sequence number, for sinks that join late.
func (r *Root) Snapshot() Frame {
	return Frame{Seq: r.seq, Patches: []vdom.Patch{{Op: vdom.PatchMount, Node: r.tree}}}
}

// Tree returns the last rendered virtual tree.
func (r *Root) Tree() *vdom.VNode {
	return r.tree
}

// Live returns the live root node.
func (r *Root) Live() *dom.Node {
	return r.patcher.Root()
}

// Patcher returns the patcher that owns the live tree.
func (r *Root) Patcher() *dom.Patcher {
	return r.patcher
}

// Seq returns the sequence number of the last frame.
func (r *Root) Seq() uint64 {
	return r.seq
}

// Runtime returns the runtime the root renders on.
func (r *Root) Runtime() *reactive.Runtime {
	return r.rt
}

// Dispose stops rendering. The live tree is left as it is.
func (r *Root) Dispose() {
	if r.scope != nil {
		r.scope.Dispose()
	}
}
