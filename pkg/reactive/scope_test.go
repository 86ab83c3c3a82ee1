package reactive

import (
	"strings"
	"testing"
)

func TestScopeDisposeOrder(t *testing.T) {
	rt := New()
	var log []string
	root := rt.NewRootScope()
	root.Run(func() {
		root.OnCleanup(func() { log = append(log, "root-1") })
		root.OnCleanup(func() { log = append(log, "root-2") })

		for _, name := range []string{"a", "b"} {
			child := rt.NewScope()
			child.OnCleanup(func() { log = append(log, name) })
		}

		rt.Effect(func() Cleanup {
			return func() { log = append(log, "effect") }
		})
	})

	root.Dispose()

	want := "b,a,effect,root-2,root-1"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("dispose order = %s, want %s", got, want)
	}
	if !root.IsDisposed() {
		t.Error("IsDisposed() = false")
	}
}

func TestScopeDisposeIdempotent(t *testing.T) {
	rt := New()
	s := rt.NewRootScope()
	n := 0
	s.OnCleanup(func() { n++ })

	s.Dispose()
	s.Dispose()

	if n != 1 {
		t.Errorf("cleanup ran %d times, want 1", n)
	}
}

func TestScopeOnCleanupAfterDispose(t *testing.T) {
	rt := New()
	s := rt.NewRootScope()
	s.Dispose()

	ran := false
	s.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("OnCleanup on a disposed scope should run immediately")
	}
}

func TestScopeChildDetaches(t *testing.T) {
	rt := New()
	parent := rt.NewRootScope()
	var child *Scope
	parent.Run(func() {
		child = rt.NewScope()
	})
	if child.Parent() != parent {
		t.Fatal("child not attached to current owner")
	}

	child.Dispose()
	if len(parent.children) != 0 {
		t.Errorf("disposed child still listed: %d", len(parent.children))
	}
	parent.Dispose()
}

func TestScopeAdoptAfterDispose(t *testing.T) {
	rt := New()
	s := rt.NewRootScope()
	s.Dispose()

	var c *Cell[int]
	rt.WithOwner(s, func() {
		c = NewCell(rt, 0)
	})
	if !c.Disposed() {
		t.Error("node created under a disposed scope should be disposed")
	}
}

func TestScopeContextValues(t *testing.T) {
	type themeKey struct{}
	rt := New()
	root := rt.NewRootScope()
	root.Provide(themeKey{}, "dark")

	var child *Scope
	root.Run(func() {
		child = rt.NewScope()
	})

	v, ok := child.Lookup(themeKey{})
	if !ok || v != "dark" {
		t.Errorf("Lookup = %v, %v", v, ok)
	}

	child.Provide(themeKey{}, "light")
	if v, _ := child.Lookup(themeKey{}); v != "light" {
		t.Errorf("nearest value should win, got %v", v)
	}
	if v, _ := root.Lookup(themeKey{}); v != "dark" {
		t.Errorf("root value changed: %v", v)
	}

	if _, ok := root.Lookup("missing"); ok {
		t.Error("Lookup found a missing key")
	}
}

func TestDefaultRuntime(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return one runtime")
	}
	if Default().Mode() != FlushSync {
		t.Errorf("Default().Mode() = %v", Default().Mode())
	}
}
