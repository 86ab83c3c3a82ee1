package reactive

import "testing"

func TestCellGetSet(t *testing.T) {
	rt := New()
	c := NewCell(rt, 1)

	if c.Get() != 1 {
		t.Errorf("Get() = %d, want 1", c.Get())
	}

	c.Set(2)
	if c.Get() != 2 {
		t.Errorf("Get() = %d, want 2", c.Get())
	}
	if c.Version() != 1 {
		t.Errorf("Version() = %d, want 1", c.Version())
	}
}

func TestCellEqualWriteIsNoop(t *testing.T) {
	rt := New()
	c := NewCell(rt, "a")
	runs := 0
	rt.Effect(func() Cleanup {
		_ = c.Get()
		runs++
		return nil
	})

	c.Set("a")

	if c.Version() != 0 {
		t.Errorf("Version() = %d, want 0 after equal write", c.Version())
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestCellDeepEqualSlices(t *testing.T) {
	rt := New()
	c := NewCell(rt, []int{1, 2})
	c.Set([]int{1, 2})
	if c.Version() != 0 {
		t.Errorf("structurally equal slice should not bump version, got %d", c.Version())
	}
	c.Set([]int{1, 2, 3})
	if c.Version() != 1 {
		t.Errorf("Version() = %d, want 1", c.Version())
	}
}

func TestCellWithEquals(t *testing.T) {
	rt := New()
	type user struct {
		ID   int
		Name string
	}
	c := NewCell(rt, user{ID: 1, Name: "a"}).WithEquals(func(a, b user) bool {
		return a.ID == b.ID
	})

	c.Set(user{ID: 1, Name: "renamed"})
	if c.Peek().Name != "a" {
		t.Errorf("same ID should be treated as equal, got %q", c.Peek().Name)
	}

	c.Set(user{ID: 2, Name: "b"})
	if c.Peek().ID != 2 {
		t.Errorf("ID = %d, want 2", c.Peek().ID)
	}
}

func TestCellUpdate(t *testing.T) {
	rt := New()
	c := NewCell(rt, 10)
	c.Update(func(n int) int { return n + 5 })
	if c.Peek() != 15 {
		t.Errorf("Peek() = %d, want 15", c.Peek())
	}
}

func TestCellPeekDoesNotTrack(t *testing.T) {
	rt := New()
	c := NewCell(rt, 0)
	runs := 0
	rt.Effect(func() Cleanup {
		_ = c.Peek()
		runs++
		return nil
	})

	c.Set(1)

	if runs != 1 {
		t.Errorf("Peek should not subscribe, runs = %d", runs)
	}
	if len(c.subs) != 0 {
		t.Errorf("expected no edges, got %d", len(c.subs))
	}
}

func TestCellReadOutsideTrackingCreatesNoEdge(t *testing.T) {
	rt := New()
	c := NewCell(rt, 0)
	_ = c.Get()
	if len(c.subs) != 0 {
		t.Errorf("untracked read created %d edges", len(c.subs))
	}
	if rt.Tracking() {
		t.Error("runtime should not be tracking at top level")
	}
}

func TestCellDisposedWriteDropped(t *testing.T) {
	rt := New()
	s := rt.NewRootScope()
	var c *Cell[int]
	s.Run(func() {
		c = NewCell(rt, 1)
	})

	s.Dispose()
	c.Set(2)

	if !c.Disposed() {
		t.Error("cell should be disposed with its scope")
	}
	if c.Peek() != 1 {
		t.Errorf("write to disposed cell applied: %d", c.Peek())
	}
}

func TestCellAnyMixedTypes(t *testing.T) {
	rt := New()
	c := NewCell[any](rt, "a")
	c.Set(42)
	c.Set(nil)
	c.Set(nil)
	if c.Version() != 2 {
		t.Errorf("Version() = %d, want 2", c.Version())
	}
}
