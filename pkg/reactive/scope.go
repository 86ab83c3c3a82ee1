package reactive

// disposer is implemented by every node a Scope can own.
type disposer interface {
	dispose()
}

// Scope owns a region of the graph. Disposing a scope disposes its child
// scopes (last created first), every reactor, derivation and cell created
// while it was the current owner, and finally runs its cleanups in reverse
// registration order.
//
// Nodes hold their scope weakly: a scope that is dropped without Dispose can
// be garbage collected, after which EdgePool.Cleanup evicts its edges.
type Scope struct {
	id uint64
	rt *Runtime

	parent   *Scope
	children []*Scope

	nodes    []disposer
	cleanups []func()

	// values holds context values provided at this scope.
	values map[any]any

	disposed bool
}

// NewScope creates a scope. If a scope is current, the new one becomes its
// child and is disposed with it.
func (rt *Runtime) NewScope() *Scope {
	return newScope(rt, rt.owner)
}

// NewRootScope creates a scope with no parent.
func (rt *Runtime) NewRootScope() *Scope {
	return newScope(rt, nil)
}

func newScope(rt *Runtime, parent *Scope) *Scope {
	s := &Scope{
		id:     rt.nextID(),
		rt:     rt,
		parent: parent,
	}
	if parent != nil && !parent.disposed {
		parent.children = append(parent.children, s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed returns true if this scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed
}

// Run executes fn with s as the current owner.
func (s *Scope) Run(fn func()) {
	s.rt.WithOwner(s, fn)
}

// OnCleanup registers fn to run when the scope is disposed. On an already
// disposed scope fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Provide stores a context value visible to this scope and its descendants.
func (s *Scope) Provide(key, value any) {
	if s.values == nil {
		s.values = make(map[any]any)
	}
	s.values[key] = value
}

// Lookup finds the nearest value provided for key, walking up the parents.
func (s *Scope) Lookup(key any) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// adopt registers a node for disposal with this scope.
func (s *Scope) adopt(d disposer) {
	if s.disposed {
		d.dispose()
		return
	}
	s.nodes = append(s.nodes, d)
}

// removeChild removes a child scope from this scope's children.
func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Dispose tears the scope down. Repeated calls are no-ops.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	nodes := s.nodes
	s.nodes = nil
	for i := len(nodes) - 1; i >= 0; i-- {
		nodes[i].dispose()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	s.values = nil
}
