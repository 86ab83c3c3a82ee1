package reactive

import (
	"weak"

	werrors "github.com/vango-dev/weave/internal/errors"
)

// Derivation is a memoized computation over cells and other derivations.
//
// Derivations are lazy: compute runs on the first read, and afterwards only
// when a read finds the derivation stale and at least one dependency's
// version actually moved. A derivation read any number of times after a
// single upstream change recomputes once.
//
// A Derivation is itself a source: reactors and other derivations can
// depend on it, and its version only increments when the computed value
// changes, which stops propagation at equal results.
type Derivation[T any] struct {
	node
	rt *Runtime

	compute func() T

	value    T
	hasValue bool

	// stale is set by invalidation and cleared by a successful refresh.
	stale bool

	// computing guards against a derivation reading itself.
	computing bool

	// failed is set when the last compute panicked; the next read
	// recomputes regardless of dependency versions.
	failed bool

	deps []*Edge

	equal func(T, T) bool

	owner    weak.Pointer[Scope]
	disposed bool
}

// Derive creates a derivation owned by the runtime's current scope.
// compute does not run until the first read.
func Derive[T any](rt *Runtime, compute func() T) *Derivation[T] {
	d := &Derivation[T]{
		node:    node{id: rt.nextID()},
		rt:      rt,
		compute: compute,
		stale:   true,
	}
	if owner := rt.owner; owner != nil {
		d.owner = weak.Make(owner)
		owner.adopt(d)
	}
	return d
}

func (d *Derivation[T]) base() *node { return &d.node }

// ID returns the unique identifier for this derivation.
func (d *Derivation[T]) ID() uint64 {
	return d.id
}

// Version returns the number of times the computed value changed.
func (d *Derivation[T]) Version() uint64 {
	return d.version
}

// Stale reports whether the next read has to re-validate dependencies.
func (d *Derivation[T]) Stale() bool {
	return d.stale
}

// Get returns the derivation's value, recomputing if necessary, and
// subscribes the current listener.
//
// A panic inside compute propagates to the caller; the derivation stays
// stale so the next read retries. The caller is subscribed either way, so
// an upstream fix reaches it.
func (d *Derivation[T]) Get() T {
	defer d.rt.track(d)
	d.refresh()
	return d.value
}

// Peek returns the value without subscribing. It still recomputes when
// stale.
func (d *Derivation[T]) Peek() T {
	d.refresh()
	return d.value
}

// WithEquals configures the equality used to decide whether a recompute
// changed the value.
func (d *Derivation[T]) WithEquals(fn func(T, T) bool) *Derivation[T] {
	d.equal = fn
	return d
}

// invalidate marks the derivation stale and forwards the notification.
// A failed derivation is already stale but still forwards, so dependents
// learn about the change that may fix it. Implements subscriber.
func (d *Derivation[T]) invalidate() {
	if (d.stale && !d.failed) || d.disposed {
		return
	}
	d.stale = true
	notify(&d.node)
}

func (d *Derivation[T]) scope() *Scope {
	return d.owner.Value()
}

func (d *Derivation[T]) addDep(e *Edge) {
	d.deps = append(d.deps, e)
}

// refresh re-validates a stale derivation. Implements source.
func (d *Derivation[T]) refresh() {
	if d.hasValue && !d.stale {
		return
	}
	if d.computing {
		panic(werrors.New("E001").WithDetailf("derivation %d", d.id))
	}
	if d.hasValue && !d.failed && !d.disposed && !depsChanged(d.deps) {
		d.stale = false
		return
	}
	d.recompute()
}

// recompute runs compute inside a fresh tracking context, replacing the
// dependency set.
func (d *Derivation[T]) recompute() {
	d.computing = true
	d.rt.pool.ReleaseAll(d.deps)
	clear(d.deps)
	d.deps = d.deps[:0]

	old := d.rt.setListener(d)
	if d.disposed {
		// Disposed derivations still answer reads but no longer track.
		d.rt.setListener(nil)
	}
	completed := false
	defer func() {
		d.rt.setListener(old)
		d.computing = false
		d.failed = !completed
	}()

	next := d.compute()
	completed = true

	if !d.hasValue || !d.equals(d.value, next) {
		d.value = next
		d.version++
	}
	d.hasValue = true
	d.stale = d.disposed
}

func (d *Derivation[T]) equals(a, b T) bool {
	if d.equal != nil {
		return d.equal(a, b)
	}
	return defaultEquals(a, b)
}

// dispose releases all dependency edges.
func (d *Derivation[T]) dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.stale = true
	d.rt.pool.ReleaseAll(d.deps)
	clear(d.deps)
	d.deps = nil
}
