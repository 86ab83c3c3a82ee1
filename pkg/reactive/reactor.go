package reactive

import "weak"

// Cleanup is returned by a reactor function. It runs before the reactor's
// next run and when the reactor is disposed.
type Cleanup func()

// Priority orders reactors within a flush.
type Priority uint8

const (
	// PriorityImmediate reactors run synchronously as soon as the write
	// that invalidated them has finished propagating, even inside a batch.
	PriorityImmediate Priority = iota

	// PriorityNormal is the default.
	PriorityNormal

	// PriorityLow reactors run after every normal reactor of the same pass.
	PriorityLow
)

// String returns the string representation of the Priority.
func (p Priority) String() string {
	switch p {
	case PriorityImmediate:
		return "immediate"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// Reactor is a side effect that re-runs whenever a dependency read during its
// last run changes. It is the only node type that produces observable output.
type Reactor struct {
	id uint64
	rt *Runtime

	fn      func() Cleanup
	cleanup Cleanup

	deps []*Edge

	// runScope owns everything created by the current run. It is disposed
	// before the next run.
	runScope *Scope

	owner    weak.Pointer[Scope]
	priority Priority
	name     string

	// ran is set once the first run has started.
	ran bool

	// failed is set while the last run panicked; the next run executes
	// regardless of dependency versions.
	failed bool

	// queued is maintained by the scheduler.
	queued bool

	// immediateQueued is set while waiting in Runtime.immediate.
	immediateQueued bool

	disposed bool
	runs     uint64
}

// EffectOption configures a Reactor.
type EffectOption func(*Reactor)

// WithPriority sets the reactor's scheduling priority.
func WithPriority(p Priority) EffectOption {
	return func(r *Reactor) {
		r.priority = p
	}
}

// WithName labels the reactor in logs, errors and traces.
func WithName(name string) EffectOption {
	return func(r *Reactor) {
		r.name = name
	}
}

// Effect creates a Reactor owned by the current scope and runs it once
// immediately to establish its dependencies.
//
// If the first run panics, the failure goes to the error sink when one is
// registered, and is re-panicked as a *ReactorError otherwise.
//
// Example:
//
//	rt.Effect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
func (rt *Runtime) Effect(fn func() Cleanup, opts ...EffectOption) *Reactor {
	r := &Reactor{
		id:       rt.nextID(),
		rt:       rt,
		fn:       fn,
		priority: PriorityNormal,
	}
	for _, opt := range opts {
		opt(r)
	}
	if owner := rt.owner; owner != nil {
		r.owner = weak.Make(owner)
		owner.adopt(r)
	}

	rt.hold++
	err := rt.runReactor(r)
	rt.hold--
	if err != nil {
		rt.fail(err)
	}
	rt.requestFlush()
	return r
}

// OnCleanup registers fn with the current scope. Inside a reactor it runs
// before the reactor's next run; outside any scope it is never called.
func (rt *Runtime) OnCleanup(fn func()) {
	if rt.owner != nil {
		rt.owner.OnCleanup(fn)
	}
}

// ID returns the unique identifier for this reactor.
func (r *Reactor) ID() uint64 {
	return r.id
}

// Name returns the reactor's label, if any.
func (r *Reactor) Name() string {
	return r.name
}

// Priority returns the reactor's scheduling priority.
func (r *Reactor) Priority() Priority {
	return r.priority
}

// Runs returns how many times the reactor function has executed.
func (r *Reactor) Runs() uint64 {
	return r.runs
}

// Disposed reports whether the reactor has been disposed.
func (r *Reactor) Disposed() bool {
	return r.disposed
}

// Dependencies returns the number of sources read during the last run.
func (r *Reactor) Dependencies() int {
	return len(r.deps)
}

// invalidate schedules the reactor. Implements subscriber.
func (r *Reactor) invalidate() {
	if r.disposed {
		return
	}
	if r.priority == PriorityImmediate {
		if !r.immediateQueued {
			r.immediateQueued = true
			r.rt.immediate = append(r.rt.immediate, r)
		}
		return
	}
	r.rt.sched.enqueue(r)
}

func (r *Reactor) scope() *Scope {
	return r.owner.Value()
}

func (r *Reactor) addDep(e *Edge) {
	r.deps = append(r.deps, e)
}

// run executes the reactor if this is its first run or a dependency
// actually changed. Reports whether fn executed.
func (r *Reactor) run() bool {
	if r.disposed {
		return false
	}
	if r.ran && !r.failed && !depsChanged(r.deps) {
		return false
	}
	r.execute()
	return true
}

// execute runs cleanup, resets the run scope and dependency set, then calls
// fn inside a tracking context.
func (r *Reactor) execute() {
	r.ran = true
	r.runs++

	if c := r.cleanup; c != nil {
		r.cleanup = nil
		c()
	}
	if r.runScope != nil {
		r.runScope.Dispose()
	}
	r.runScope = newScope(r.rt, nil)

	r.rt.pool.ReleaseAll(r.deps)
	clear(r.deps)
	r.deps = r.deps[:0]

	oldListener := r.rt.setListener(r)
	oldOwner := r.rt.setOwner(r.runScope)
	r.failed = true
	defer func() {
		r.rt.setOwner(oldOwner)
		r.rt.setListener(oldListener)
	}()

	r.cleanup = r.fn()
	r.failed = false
}

// Dispose stops the reactor: it leaves the queue, releases its edges,
// disposes everything its last run created and runs the last cleanup.
// Repeated calls are no-ops.
func (r *Reactor) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.rt.sched.remove(r)

	if c := r.cleanup; c != nil {
		r.cleanup = nil
		c()
	}
	if r.runScope != nil {
		r.runScope.Dispose()
		r.runScope = nil
	}
	r.rt.pool.ReleaseAll(r.deps)
	clear(r.deps)
	r.deps = nil
}

func (r *Reactor) dispose() {
	r.Dispose()
}
