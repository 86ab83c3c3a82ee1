package reactive

// node is the state shared by every readable graph node.
type node struct {
	id uint64

	// version increments whenever the node's observable value changes.
	version uint64

	// subs are the edges to dependents, in subscription order.
	// Owned by the EdgePool; only the pool appends or removes.
	subs []*Edge
}

// source is anything that can be read inside a tracking context.
type source interface {
	base() *node

	// refresh brings the source's value up to date. Cells are always
	// current; stale derivations recompute here.
	refresh()
}

// subscriber is anything that records dependencies and is notified through
// edges when a dependency changes.
type subscriber interface {
	ID() uint64

	// invalidate is called when a dependency may have changed.
	invalidate()

	// scope returns the owning scope, or nil when the owner is gone or
	// was never set.
	scope() *Scope

	// addDep appends a newly acquired edge to the dependency list.
	addDep(e *Edge)
}

// depsChanged refreshes every dependency in order and reports whether any
// version differs from the one observed at the last run.
func depsChanged(deps []*Edge) bool {
	for _, e := range deps {
		if !e.live {
			return true
		}
		e.src.refresh()
		if e.src.base().version != e.observed {
			return true
		}
	}
	return false
}

// notify invalidates every current dependent of n.
func notify(n *node) {
	if len(n.subs) == 0 {
		return
	}
	subs := make([]*Edge, len(n.subs))
	copy(subs, n.subs)
	for _, e := range subs {
		if e.live {
			e.dst.invalidate()
		}
	}
}
