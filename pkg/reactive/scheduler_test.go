package reactive

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	werrors "github.com/vango-dev/weave/internal/errors"
)

func TestSchedulerPriorityOrder(t *testing.T) {
	rt := New()
	c := NewCell(rt, 0)
	var order []string
	track := func(name string) func() Cleanup {
		return func() Cleanup {
			if c.Get() > 0 {
				order = append(order, name)
			}
			return nil
		}
	}
	rt.Effect(track("low"), WithPriority(PriorityLow))
	rt.Effect(track("normal"))
	rt.Effect(track("immediate"), WithPriority(PriorityImmediate))

	c.Set(1)

	want := "immediate,normal,low"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestSchedulerImmediateBypassesBatch(t *testing.T) {
	rt := New()
	c := NewCell(rt, 0)
	var seen []int
	rt.Effect(func() Cleanup {
		seen = append(seen, c.Get())
		return nil
	}, WithPriority(PriorityImmediate))

	rt.Batch(func() {
		c.Set(1)
		if len(seen) != 2 {
			t.Errorf("immediate reactor did not run inside batch: %v", seen)
		}
	})
}

func TestSchedulerFIFO(t *testing.T) {
	rt := New()
	cells := make([]*Cell[int], 3)
	var order []int
	for i := range cells {
		c := NewCell(rt, 0)
		cells[i] = c
		rt.Effect(func() Cleanup {
			if c.Get() > 0 {
				order = append(order, i)
			}
			return nil
		})
	}

	rt.Batch(func() {
		cells[2].Set(1)
		cells[0].Set(1)
		cells[1].Set(1)
	})

	if len(order) != 3 || order[0] != 2 || order[1] != 0 || order[2] != 1 {
		t.Errorf("order = %v, want [2 0 1]", order)
	}
}

func TestSchedulerFailureAbortsTier(t *testing.T) {
	var sunk []error
	rt := New(WithErrorSink(func(err error) { sunk = append(sunk, err) }))
	fail := NewCell(rt, 0)
	other := NewCell(rt, 0)
	otherRuns := 0
	rt.Effect(func() Cleanup {
		if fail.Get() > 0 {
			panic("first")
		}
		return nil
	})
	rt.Effect(func() Cleanup {
		_ = other.Get()
		otherRuns++
		return nil
	})

	rt.Batch(func() {
		fail.Set(1)
		other.Set(1)
	})

	if len(sunk) != 1 {
		t.Fatalf("sink received %d errors, want 1", len(sunk))
	}
	if otherRuns != 1 {
		t.Errorf("reactor after the failure ran in the same flush")
	}
	if rt.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", rt.Pending())
	}

	if err := rt.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	if otherRuns != 2 {
		t.Errorf("otherRuns = %d after retry, want 2", otherRuns)
	}
}

func TestSchedulerCascade(t *testing.T) {
	rt := New()
	a := NewCell(rt, 0)
	b := NewCell(rt, 0)
	rt.Effect(func() Cleanup {
		b.Set(a.Get() * 2)
		return nil
	})
	var seen []int
	downstream := rt.Effect(func() Cleanup {
		seen = append(seen, b.Get())
		return nil
	})

	a.Set(1)
	a.Set(2)

	if want := []int{0, 2, 4}; !slices.Equal(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
	if rt.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", rt.Pending())
	}
	if downstream.queued {
		t.Error("downstream reactor left marked as queued")
	}
}

func TestSchedulerCascadeInBatch(t *testing.T) {
	rt := New()
	a := NewCell(rt, 0)
	b := NewCell(rt, 0)
	c := NewCell(rt, 0)
	rt.Effect(func() Cleanup {
		b.Set(a.Get() + 1)
		return nil
	}, WithPriority(PriorityLow))
	rt.Effect(func() Cleanup {
		c.Set(b.Get() + 1)
		return nil
	})
	var seen []int
	rt.Effect(func() Cleanup {
		seen = append(seen, c.Get())
		return nil
	}, WithPriority(PriorityLow))

	rt.Batch(func() {
		a.Set(10)
	})

	if got := seen[len(seen)-1]; got != 12 {
		t.Errorf("last seen = %d, want 12 (seen %v)", got, seen)
	}
	if rt.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", rt.Pending())
	}
}

func TestSchedulerPassLimit(t *testing.T) {
	var sunk []error
	rt := New(
		WithMaxFlushPasses(10),
		WithErrorSink(func(err error) { sunk = append(sunk, err) }),
	)
	a := NewCell(rt, 0)
	b := NewCell(rt, 0)
	rt.Effect(func() Cleanup {
		b.Set(a.Get() + 1)
		return nil
	})
	rt.Effect(func() Cleanup {
		a.Set(b.Get() + 1)
		return nil
	})

	if len(sunk) == 0 {
		t.Fatal("expected pass limit error")
	}
	if !werrors.HasCode(sunk[0], "E002") {
		t.Errorf("expected E002, got %v", sunk[0])
	}
}

type recordingObserver struct {
	flushes  []FlushStats
	failures int
}

func (o *recordingObserver) FlushCompleted(s FlushStats)   { o.flushes = append(o.flushes, s) }
func (o *recordingObserver) ReactorFailed(*ReactorError) { o.failures++ }

func TestSchedulerObserver(t *testing.T) {
	obs := &recordingObserver{}
	rt := New(WithObserver(obs))
	a := NewCell(rt, 1)
	parity := Derive(rt, func() int { return a.Get() % 2 })
	rt.Effect(func() Cleanup {
		_ = parity.Get()
		return nil
	})
	rt.Effect(func() Cleanup {
		_ = a.Get()
		return nil
	})

	a.Set(3)

	if len(obs.flushes) != 1 {
		t.Fatalf("flushes = %d, want 1", len(obs.flushes))
	}
	s := obs.flushes[0]
	if s.Passes != 1 || s.Reactors != 1 || s.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 pass, 1 ran, 1 skipped", s)
	}
}

func TestSchedulerAsyncCoalesces(t *testing.T) {
	rt := New(WithFlushMode(FlushAsync))
	c := NewCell(rt, 0)
	var seen []int
	rt.Effect(func() Cleanup {
		seen = append(seen, c.Get())
		return nil
	})

	c.Set(1)
	c.Set(2)
	c.Set(3)
	if len(seen) != 1 {
		t.Fatalf("async flush ran synchronously: %v", seen)
	}
	if rt.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", rt.Pending())
	}

	if n := rt.Drain(); n != 1 {
		t.Errorf("Drain() = %d, want 1 deferred flush", n)
	}
	if len(seen) != 2 || seen[1] != 3 {
		t.Errorf("seen = %v, want [0 3]", seen)
	}
	if rt.Drain() != 0 {
		t.Error("second Drain should be empty")
	}
}

type recordingDeferrer struct {
	fns []func()
}

func (d *recordingDeferrer) Defer(fn func()) { d.fns = append(d.fns, fn) }

func TestSchedulerCustomDeferrer(t *testing.T) {
	d := &recordingDeferrer{}
	rt := New(WithFlushMode(FlushAsync), WithDeferrer(d))
	c := NewCell(rt, 0)
	runs := 0
	rt.Effect(func() Cleanup {
		_ = c.Get()
		runs++
		return nil
	})

	c.Set(1)
	c.Set(2)
	if len(d.fns) != 1 {
		t.Fatalf("deferred %d flushes, want 1", len(d.fns))
	}
	d.fns[0]()
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestRuntimeRunLoop(t *testing.T) {
	rt := New(WithFlushMode(FlushAsync))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- rt.Run(ctx) }()

	var (
		c    *Cell[int]
		seen []int
	)
	done := make(chan struct{})
	rt.Dispatch(func() {
		c = NewCell(rt, 0)
		rt.Effect(func() Cleanup {
			seen = append(seen, c.Get())
			return nil
		})
	})
	rt.Dispatch(func() { panic("task failure is logged") })
	rt.Dispatch(func() { c.Set(7) })
	rt.Dispatch(func() { close(done) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatched tasks did not run")
	}

	if len(seen) != 2 || seen[1] != 7 {
		t.Errorf("seen = %v, want [0 7]", seen)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if rt.Dispatch(func() {}) {
		t.Error("Dispatch after Run returned should report false")
	}
}

func TestFlushModeString(t *testing.T) {
	if FlushSync.String() != "sync" || FlushAsync.String() != "async" {
		t.Errorf("unexpected names %q %q", FlushSync, FlushAsync)
	}
}
