// Package reactive provides the fine-grained reactive graph for weave.
//
// The graph has three node types. A Cell holds mutable state. A Derivation
// is a memoized pure computation over cells and other derivations; it is
// recomputed lazily, on the next read after one of its inputs changed. A
// Reactor is an eagerly scheduled side effect; it is the only node type that
// produces observable output.
//
// Dependencies are tracked automatically: reading a Cell or Derivation while
// a Derivation computes or a Reactor runs records an Edge from the source to
// the running subscriber. The dependency set is rebuilt on every run, so
// edges from branches no longer taken are released.
//
// # Core Types
//
//	rt := reactive.New()
//
//	count := reactive.NewCell(rt, 0)
//	doubled := reactive.Derive(rt, func() int { return count.Get() * 2 })
//
//	rt.Effect(func() reactive.Cleanup {
//	    fmt.Println("doubled is", doubled.Get())
//	    return nil
//	})
//
//	count.Set(5) // prints "doubled is 10"
//
// # Batching
//
// Writes inside Batch mark dependents stale immediately but defer reactor
// execution until the outermost batch returns. Each affected reactor runs at
// most once per flush pass:
//
//	rt.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
//
// # Runtime
//
// All state lives in an explicit *Runtime. A Runtime is not safe for
// concurrent use: it models a single-threaded cooperative scheduler. Other
// goroutines hand work to it with Dispatch, which Run executes on the
// runtime's own loop. Default returns a shared instance for simple call
// sites; tests and render roots should construct their own.
package reactive
