package reactive

import (
	"context"
	"log/slog"
	"sync"
)

// FlushMode selects when queued reactors run after a write.
type FlushMode uint8

const (
	// FlushSync runs queued reactors inline, as soon as the outermost batch
	// ends or a write outside any batch returns.
	FlushSync FlushMode = iota

	// FlushAsync registers a single deferred flush with the runtime's
	// Deferrer. Every write before that flush runs is coalesced into it.
	FlushAsync
)

// String returns the string representation of the FlushMode.
func (m FlushMode) String() string {
	switch m {
	case FlushSync:
		return "sync"
	case FlushAsync:
		return "async"
	default:
		return "unknown"
	}
}

// DefaultMaxFlushPasses bounds how many times one flush re-drains the queue
// when reactors keep writing cells.
const DefaultMaxFlushPasses = 100

// DefaultPoolSize is the default free-list capacity of the edge pool.
const DefaultPoolSize = 4096

// Deferrer schedules a callback to run at the end of the current turn.
// The runtime itself is the default Deferrer; hosts with their own event
// loop can supply one with WithDeferrer.
type Deferrer interface {
	Defer(fn func())
}

// ErrorSink receives reactor failures. When a sink is registered, failures
// triggered by writes are delivered to it instead of being re-panicked.
type ErrorSink func(err error)

// Runtime owns one reactive graph: the tracking context, the scheduler, the
// edge pool and the deferred task queues.
type Runtime struct {
	// listener is the subscriber currently tracking reads.
	// nil means reads don't create edges.
	listener subscriber

	// owner is the Scope that adopts newly created nodes.
	owner *Scope

	// batchDepth tracks nested Batch calls.
	batchDepth int

	// hold defers flushing while a reactor runs outside the scheduler
	// (first runs and immediate reactors).
	hold int

	sched *Scheduler
	pool  *EdgePool

	// immediate collects PriorityImmediate reactors invalidated by the
	// write currently propagating.
	immediate []*Reactor

	flushing       bool
	flushScheduled bool

	mode      FlushMode
	maxPasses int
	logger    *slog.Logger
	sink      ErrorSink
	observer  Observer
	deferrer  Deferrer

	ids uint64

	// microtasks run after the current dispatched task (or on Drain).
	microtasks []func()

	// Cross-goroutine task queue consumed by Run.
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithFlushMode selects synchronous or deferred flushing.
func WithFlushMode(m FlushMode) Option {
	return func(rt *Runtime) {
		rt.mode = m
	}
}

// WithMaxFlushPasses bounds re-drain passes within a single flush.
func WithMaxFlushPasses(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxPasses = n
		}
	}
}

// WithPoolSize sets the edge pool free-list capacity.
func WithPoolSize(n int) Option {
	return func(rt *Runtime) {
		rt.pool = NewEdgePool(n)
	}
}

// WithErrorSink registers an error boundary for reactor failures.
func WithErrorSink(sink ErrorSink) Option {
	return func(rt *Runtime) {
		rt.sink = sink
	}
}

// WithObserver registers an Observer for flush and failure events.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		if o != nil {
			rt.observer = o
		}
	}
}

// WithDeferrer replaces the runtime's own microtask queue as the target of
// deferred flushes.
func WithDeferrer(d Deferrer) Option {
	return func(rt *Runtime) {
		rt.deferrer = d
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		sched:     newScheduler(),
		pool:      NewEdgePool(DefaultPoolSize),
		mode:      FlushSync,
		maxPasses: DefaultMaxFlushPasses,
		logger:    slog.Default(),
		observer:  nopObserver{},
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.deferrer == nil {
		rt.deferrer = rt
	}
	return rt
}

var (
	defaultRuntime     *Runtime
	defaultRuntimeOnce sync.Once
)

// Default returns the process-wide convenience Runtime. It is created on
// first use with default options.
func Default() *Runtime {
	defaultRuntimeOnce.Do(func() {
		defaultRuntime = New()
	})
	return defaultRuntime
}

// Pool returns the runtime's edge pool.
func (rt *Runtime) Pool() *EdgePool {
	return rt.pool
}

// Mode returns the configured flush mode.
func (rt *Runtime) Mode() FlushMode {
	return rt.mode
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Pending returns the number of reactors queued for the next flush.
func (rt *Runtime) Pending() int {
	return rt.sched.Len()
}

func (rt *Runtime) nextID() uint64 {
	rt.ids++
	return rt.ids
}

// =============================================================================
// Tracking Context
// =============================================================================

// setListener sets the current subscriber and returns the previous one.
func (rt *Runtime) setListener(s subscriber) subscriber {
	old := rt.listener
	rt.listener = s
	return old
}

// setOwner sets the current owner scope and returns the previous one.
func (rt *Runtime) setOwner(s *Scope) *Scope {
	old := rt.owner
	rt.owner = s
	return old
}

// Owner returns the scope that adopts nodes created right now, or nil.
func (rt *Runtime) Owner() *Scope {
	return rt.owner
}

// Tracking reports whether reads currently create dependency edges.
func (rt *Runtime) Tracking() bool {
	return rt.listener != nil
}

// track records an edge from src to the current listener.
func (rt *Runtime) track(src source) {
	sub := rt.listener
	if sub == nil {
		return
	}
	e, existing := rt.pool.Acquire(src, sub, sub.scope())
	e.observed = src.base().version
	if !existing {
		sub.addDep(e)
	}
}

// Untracked runs fn without recording any dependency edges.
func (rt *Runtime) Untracked(fn func()) {
	old := rt.setListener(nil)
	defer rt.setListener(old)
	fn()
}

// WithOwner runs fn with s adopting every node created inside it.
func (rt *Runtime) WithOwner(s *Scope, fn func()) {
	old := rt.setOwner(s)
	defer rt.setOwner(old)
	fn()
}

// =============================================================================
// Deferred Work
// =============================================================================

// Defer queues fn to run when the current turn ends. Implements Deferrer.
// Must be called from the runtime's goroutine.
func (rt *Runtime) Defer(fn func()) {
	rt.microtasks = append(rt.microtasks, fn)
}

// Drain runs queued microtasks, including ones queued while draining.
// Returns the number executed.
func (rt *Runtime) Drain() int {
	n := 0
	for len(rt.microtasks) > 0 {
		tasks := rt.microtasks
		rt.microtasks = nil
		for _, fn := range tasks {
			fn()
			n++
		}
	}
	return n
}

// Dispatch queues fn to run on the runtime's loop. It is the only Runtime
// method safe to call from other goroutines. Returns false once the loop
// has stopped.
func (rt *Runtime) Dispatch(fn func()) bool {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return false
	}
	rt.tasks = append(rt.tasks, fn)
	rt.mu.Unlock()

	select {
	case rt.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes dispatched tasks until ctx is cancelled. After each task the
// microtask queue is drained, which is where FlushAsync flushes happen.
// A panicking task is logged and does not stop the loop.
func (rt *Runtime) Run(ctx context.Context) error {
	defer func() {
		rt.mu.Lock()
		rt.closed = true
		rt.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rt.wake:
		}

		rt.mu.Lock()
		tasks := rt.tasks
		rt.tasks = nil
		rt.mu.Unlock()

		for _, fn := range tasks {
			rt.executeTask(fn)
		}
	}
}

// executeTask runs a dispatched function followed by the microtask queue.
func (rt *Runtime) executeTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("dispatched task panicked", "panic", r)
			// Keep microtasks for the next task; a half-run flush resumes.
		}
	}()
	fn()
	rt.Drain()
}
