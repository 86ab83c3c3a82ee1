package reactive

import werrors "github.com/vango-dev/weave/internal/errors"

// Cell is a mutable reactive value. Reading it inside a tracking context
// subscribes the running Derivation or Reactor; writing it invalidates every
// subscriber and requests a flush.
type Cell[T any] struct {
	node
	rt *Runtime

	value T

	// equal decides whether a write changes the value.
	// If nil, uses defaultEquals.
	equal func(T, T) bool

	disposed bool
}

// NewCell creates a cell owned by the runtime's current scope.
func NewCell[T any](rt *Runtime, initial T) *Cell[T] {
	c := &Cell[T]{
		node:  node{id: rt.nextID()},
		rt:    rt,
		value: initial,
	}
	if owner := rt.owner; owner != nil {
		owner.adopt(c)
	}
	return c
}

func (c *Cell[T]) base() *node { return &c.node }
func (c *Cell[T]) refresh()    {}

// ID returns the unique identifier for this cell.
func (c *Cell[T]) ID() uint64 {
	return c.id
}

// Version returns the number of effective writes so far.
func (c *Cell[T]) Version() uint64 {
	return c.version
}

// Get returns the current value and subscribes the current listener.
func (c *Cell[T]) Get() T {
	c.rt.track(c)
	return c.value
}

// Peek returns the current value without subscribing.
func (c *Cell[T]) Peek() T {
	return c.value
}

// Set writes a new value. Equal values are ignored. Otherwise the version
// increments, dependents are marked stale and a flush is requested;
// derivations recompute only when next read.
func (c *Cell[T]) Set(value T) {
	if c.disposed {
		c.rt.logger.Warn("write to disposed cell dropped",
			"cell", c.id,
			"error", werrors.New("E004"))
		return
	}
	if c.equals(c.value, value) {
		return
	}
	c.value = value
	c.version++
	c.rt.propagate(&c.node)
}

// Update reads the current value, applies fn and writes the result.
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

// WithEquals configures a custom equality function and returns the cell.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

// Disposed reports whether the owning scope has disposed this cell.
func (c *Cell[T]) Disposed() bool {
	return c.disposed
}

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// dispose stops accepting writes. Existing edges are released by their
// dependents on their next run or disposal.
func (c *Cell[T]) dispose() {
	c.disposed = true
}
