package dom

import (
	"log/slog"
	"strings"

	werrors "github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/vdom"
)

// Patcher owns a live tree and applies edit scripts to it.
type Patcher struct {
	root   *Node
	logger *slog.Logger
	stats  Stats
}

// Stats counts the work a Patcher has done.
type Stats struct {
	Mounts int

	// Applied and Failed count patches; ByOp breaks Applied down.
	Applied int
	Failed  int
	ByOp    map[vdom.PatchOp]int
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Patcher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPatcher creates an unmounted Patcher.
func NewPatcher(opts ...Option) *Patcher {
	p := &Patcher{
		logger: slog.Default(),
		stats:  Stats{ByOp: make(map[vdom.PatchOp]int)},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mount builds the live tree from v without diffing. A nil v unmounts.
func (p *Patcher) Mount(v *vdom.VNode) *Node {
	p.stats.Mounts++
	return p.mount(v)
}

func (p *Patcher) mount(v *vdom.VNode) *Node {
	if v == nil {
		p.root = nil
		return nil
	}
	p.root = Build(v, "")
	return p.root
}

// Root returns the live root, or nil before Mount.
func (p *Patcher) Root() *Node {
	return p.root
}

// Stats returns a copy of the counters.
func (p *Patcher) Stats() Stats {
	s := p.stats
	s.ByOp = make(map[vdom.PatchOp]int, len(p.stats.ByOp))
	for op, n := range p.stats.ByOp {
		s.ByOp[op] = n
	}
	return s
}

// Lookup resolves a path of identity keys from the root.
func (p *Patcher) Lookup(path []string) (*Node, bool) {
	if p.root == nil {
		return nil, false
	}
	n := p.root
	for _, key := range path {
		c, ok := n.index[key]
		if !ok {
			return nil, false
		}
		n = c
	}
	return n, true
}

// Apply applies patches in order. It stops at the first patch whose target
// cannot be resolved and returns an E003 error; patches before it stay
// applied. Applying to an unmounted Patcher fails with E020 unless the
// script starts with a mount.
func (p *Patcher) Apply(patches []vdom.Patch) error {
	for i, patch := range patches {
		if err := p.apply(patch); err != nil {
			p.stats.Failed++
			p.logger.Warn("patch rejected",
				"index", i,
				"op", patch.Op.String(),
				"path", strings.Join(patch.Path, "/"),
				"error", err)
			return err
		}
		p.stats.Applied++
		p.stats.ByOp[patch.Op]++
	}
	return nil
}

func (p *Patcher) apply(patch vdom.Patch) error {
	if patch.Op == vdom.PatchMount {
		p.mount(patch.Node)
		return nil
	}
	if p.root == nil {
		return werrors.New("E020").WithDetailf("%s before mount", patch.Op)
	}

	target, ok := p.Lookup(patch.Path)
	if !ok {
		return unknownTarget(patch, "path")
	}

	switch patch.Op {
	case vdom.PatchSetText:
		target.SetText(patch.Value)

	case vdom.PatchSetAttr:
		target.SetAttr(patch.Name, patch.Value)

	case vdom.PatchRemoveAttr:
		target.RemoveAttr(patch.Name)

	case vdom.PatchSetStyle:
		target.SetStyle(patch.Name, patch.Value)

	case vdom.PatchRemoveStyle:
		target.RemoveStyle(patch.Name)

	case vdom.PatchSetProp:
		if patch.Raw != nil {
			target.SetProp(patch.Name, patch.Raw)
		} else {
			target.SetProp(patch.Name, patch.Value)
		}

	case vdom.PatchRemoveProp:
		target.RemoveProp(patch.Name)

	case vdom.PatchInsertNode:
		if patch.Node == nil {
			return unknownTarget(patch, "node")
		}
		if !target.insertBefore(Build(patch.Node, patch.Key), patch.Before) {
			return unknownTarget(patch, "anchor")
		}

	case vdom.PatchRemoveNode:
		child, ok := target.index[patch.Key]
		if !ok {
			return unknownTarget(patch, "child")
		}
		target.removeChild(child)

	case vdom.PatchMoveNode:
		child, ok := target.index[patch.Key]
		if !ok {
			return unknownTarget(patch, "child")
		}
		if patch.Before != "" {
			if _, ok := target.index[patch.Before]; !ok || patch.Before == patch.Key {
				return unknownTarget(patch, "anchor")
			}
		}
		target.removeChild(child)
		target.insertBefore(child, patch.Before)

	case vdom.PatchReplaceNode:
		if patch.Node == nil {
			return unknownTarget(patch, "node")
		}
		next := Build(patch.Node, target.key)
		if target.parent == nil {
			p.root = next
			return nil
		}
		target.parent.replaceChild(target, next)

	default:
		return werrors.New("E003").WithDetailf("unsupported op %s", patch.Op)
	}
	return nil
}

func unknownTarget(patch vdom.Patch, what string) error {
	return werrors.New("E003").WithDetailf("%s: no %s for %s", patch.Op, what, patch.String())
}
