package reactive

import "weak"

// Edge links a source (Cell or Derivation) to a dependent (Derivation or
// Reactor). Edges carry invalidation only; values are always pulled.
//
// Edges are owned by an EdgePool, never by either endpoint.
type Edge struct {
	src source
	dst subscriber

	// observed is the source version seen by the dependent's last read.
	observed uint64

	owner    weak.Pointer[Scope]
	hasOwner bool

	// subIdx is this edge's position in src.subs.
	subIdx int

	live bool
}

// Source returns the ID of the edge's source node, or 0 for a released edge.
func (e *Edge) Source() uint64 {
	if !e.live {
		return 0
	}
	return e.src.base().id
}

// Dependent returns the ID of the edge's dependent, or 0 for a released edge.
func (e *Edge) Dependent() uint64 {
	if !e.live {
		return 0
	}
	return e.dst.ID()
}

// Live reports whether the edge is currently linked.
func (e *Edge) Live() bool {
	return e.live
}

type edgeKey struct {
	src, dst uint64
}

// PoolStats is a snapshot of EdgePool counters.
type PoolStats struct {
	Hits      uint64 // Acquire found an existing edge for the pair
	Allocated uint64 // Acquire allocated a new edge
	Reused    uint64 // Acquire took an edge from the free list
	Dropped   uint64 // Release found the free list full
	Evicted   uint64 // Cleanup unlinked an edge whose owner was collected
	Live      int
	Free      int
}

// EdgePool recycles dependency edges and indexes live ones by
// (source, dependent) pair.
type EdgePool struct {
	maxSize int
	free    []*Edge
	index   map[edgeKey]*Edge
	stats   PoolStats
}

// NewEdgePool creates a pool whose free list holds at most maxSize edges.
// maxSize <= 0 disables recycling.
func NewEdgePool(maxSize int) *EdgePool {
	if maxSize < 0 {
		maxSize = 0
	}
	return &EdgePool{
		maxSize: maxSize,
		index:   make(map[edgeKey]*Edge),
	}
}

// MaxSize returns the free-list capacity.
func (p *EdgePool) MaxSize() int {
	return p.maxSize
}

// Acquire returns the live edge linking src to dst, creating and linking one
// if none exists. The second result reports whether the edge already existed.
// owner is held weakly; see Cleanup.
func (p *EdgePool) Acquire(src source, dst subscriber, owner *Scope) (*Edge, bool) {
	k := edgeKey{src: src.base().id, dst: dst.ID()}
	if e, ok := p.index[k]; ok {
		p.stats.Hits++
		return e, true
	}

	var e *Edge
	if n := len(p.free); n > 0 {
		e = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.stats.Reused++
	} else {
		e = &Edge{}
		p.stats.Allocated++
	}

	e.src = src
	e.dst = dst
	e.live = true
	if owner != nil {
		e.owner = weak.Make(owner)
		e.hasOwner = true
	}

	n := src.base()
	e.subIdx = len(n.subs)
	n.subs = append(n.subs, e)
	p.index[k] = e
	return e, false
}

// Release unlinks e and returns it to the free list, or drops it when the
// list is full. Releasing an already released edge is a no-op.
func (p *EdgePool) Release(e *Edge) {
	if e == nil || !e.live {
		return
	}
	p.unlink(e)
	*e = Edge{}
	if len(p.free) < p.maxSize {
		p.free = append(p.free, e)
	} else {
		p.stats.Dropped++
	}
}

// ReleaseAll releases every edge in edges.
func (p *EdgePool) ReleaseAll(edges []*Edge) {
	for _, e := range edges {
		p.Release(e)
	}
}

// Cleanup unlinks live edges whose owner scope has been garbage collected
// and returns how many were evicted. Evicted edges are not recycled: a
// dependent that outlived its scope may still hold them.
func (p *EdgePool) Cleanup() int {
	evicted := 0
	for _, e := range p.index {
		if !e.hasOwner || e.owner.Value() != nil {
			continue
		}
		p.unlink(e)
		e.live = false
		evicted++
	}
	p.stats.Evicted += uint64(evicted)
	return evicted
}

// Stats returns a snapshot of the pool counters.
func (p *EdgePool) Stats() PoolStats {
	s := p.stats
	s.Live = len(p.index)
	s.Free = len(p.free)
	return s
}

// unlink removes e from its source's subscriber list and from the index.
func (p *EdgePool) unlink(e *Edge) {
	n := e.src.base()
	last := len(n.subs) - 1
	if e.subIdx <= last && n.subs[e.subIdx] == e {
		moved := n.subs[last]
		n.subs[e.subIdx] = moved
		moved.subIdx = e.subIdx
		n.subs[last] = nil
		n.subs = n.subs[:last]
	}
	delete(p.index, edgeKey{src: n.id, dst: e.dst.ID()})
}
