package reactive

import (
	"errors"
	"time"

	werrors "github.com/vango-dev/weave/internal/errors"
)

// Batch groups writes into one transaction. Writes inside fn mark
// dependents stale immediately, but reactors only run once the outermost
// batch returns, at most once each per flush pass.
//
// If fn panics the batch unwinds without flushing; queued reactors run on
// the next flush.
//
// Example:
//
//	rt.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// Reactors reading both names run once.
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	completed := false
	defer func() {
		rt.batchDepth--
		if completed && rt.batchDepth == 0 {
			rt.requestFlush()
		}
	}()
	fn()
	completed = true
}

// BatchNamed is Batch with a label logged at debug level, for tracing which
// transactions trigger work.
func (rt *Runtime) BatchNamed(name string, fn func()) {
	rt.logger.Debug("batch start", "batch", name, "depth", rt.batchDepth)
	defer rt.logger.Debug("batch end", "batch", name, "pending", rt.sched.Len())
	rt.Batch(fn)
}

// BatchDepth returns the current batch nesting depth.
func (rt *Runtime) BatchDepth() int {
	return rt.batchDepth
}

// propagate invalidates n's dependents after a write, runs immediate
// reactors, then requests a flush.
func (rt *Runtime) propagate(n *node) {
	notify(n)
	rt.runImmediate()
	rt.requestFlush()
}

// runImmediate runs PriorityImmediate reactors collected during propagation.
// Flushing is held until they finish.
func (rt *Runtime) runImmediate() {
	if len(rt.immediate) == 0 {
		return
	}
	var errs []error
	rt.hold++
	for len(rt.immediate) > 0 {
		r := rt.immediate[0]
		rt.immediate = rt.immediate[1:]
		r.immediateQueued = false
		if _, err := rt.runReactorChecked(r); err != nil {
			errs = append(errs, err)
		}
	}
	rt.hold--
	rt.immediate = nil
	if len(errs) > 0 {
		rt.fail(errors.Join(errs...))
	}
}

// requestFlush flushes now (FlushSync) or registers one deferred flush
// (FlushAsync). It does nothing inside a batch, a reactor's first run or a
// running flush; the outer boundary picks the work up.
func (rt *Runtime) requestFlush() {
	if rt.batchDepth > 0 || rt.hold > 0 || rt.flushing || rt.sched.Len() == 0 {
		return
	}
	switch rt.mode {
	case FlushAsync:
		if rt.flushScheduled {
			return
		}
		rt.flushScheduled = true
		rt.deferrer.Defer(func() {
			rt.flushScheduled = false
			if err := rt.Flush(); err != nil {
				rt.fail(err)
			}
		})
	default:
		if err := rt.Flush(); err != nil {
			rt.fail(err)
		}
	}
}

// Flush runs queued reactors until the queue is empty, in passes ordered by
// priority then FIFO. It returns every reactor failure joined. Calling
// Flush from inside a running flush is a no-op.
func (rt *Runtime) Flush() error {
	if rt.flushing {
		return nil
	}
	rt.flushing = true
	defer func() {
		rt.flushing = false
	}()

	start := time.Now()
	var (
		stats FlushStats
		errs  []error
	)
	for rt.sched.Len() > 0 {
		if stats.Passes >= rt.maxPasses {
			errs = append(errs, werrors.New("E002").
				WithDetailf("%d passes, %d reactors still queued", stats.Passes, rt.sched.Len()))
			break
		}
		stats.Passes++
		res := rt.sched.runPass(rt)
		stats.Reactors += res.ran
		stats.Skipped += res.skipped
		if len(res.errs) > 0 {
			stats.Failures += len(res.errs)
			errs = append(errs, res.errs...)
			break
		}
	}
	stats.Duration = time.Since(start)

	rt.observer.FlushCompleted(stats)
	if stats.Passes > 0 {
		rt.logger.Debug("flush",
			"passes", stats.Passes,
			"reactors", stats.Reactors,
			"skipped", stats.Skipped,
			"failures", stats.Failures,
			"duration", stats.Duration)
	}
	return errors.Join(errs...)
}

// runReactor unconditionally executes r, converting a panic into a
// *ReactorError.
func (rt *Runtime) runReactor(r *Reactor) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = rt.reactorFailed(r, v)
		}
	}()
	r.execute()
	return nil
}

// runReactorChecked runs r only if a dependency changed.
func (rt *Runtime) runReactorChecked(r *Reactor) (ran bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			ran = true
			err = rt.reactorFailed(r, v)
		}
	}()
	return r.run(), nil
}

func (rt *Runtime) reactorFailed(r *Reactor, v any) *ReactorError {
	re := newReactorError(r, v)
	rt.observer.ReactorFailed(re)
	rt.logger.Error("reactor failed",
		"reactor", r.id,
		"name", r.name,
		"priority", r.priority.String(),
		"panic", v)
	if rt.sink != nil {
		rt.sink(re)
	}
	return re
}

// fail re-panics err unless an error sink is registered. Reactor failures
// already reached the sink when they were recovered.
func (rt *Runtime) fail(err error) {
	if rt.sink == nil {
		panic(err)
	}
	for _, e := range flatten(err) {
		if _, ok := e.(*ReactorError); !ok {
			rt.sink(e)
		}
	}
}

// flatten expands an errors.Join result into its parts.
func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
