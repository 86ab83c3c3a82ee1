package reactive

import mapset "github.com/deckarep/golang-set/v2"

// Scheduler holds reactors waiting for the next flush, one FIFO queue per
// deferred priority. A reactor is queued at most once.
type Scheduler struct {
	normal []*Reactor
	low    []*Reactor

	// queued deduplicates by reactor identity.
	queued mapset.Set[uint64]
}

func newScheduler() *Scheduler {
	return &Scheduler{
		queued: mapset.NewThreadUnsafeSet[uint64](),
	}
}

// Len returns the number of queued reactors.
func (s *Scheduler) Len() int {
	return len(s.normal) + len(s.low)
}

// enqueue appends r to its priority queue unless already queued.
func (s *Scheduler) enqueue(r *Reactor) {
	if !s.queued.Add(r.id) {
		return
	}
	r.queued = true
	if r.priority == PriorityLow {
		s.low = append(s.low, r)
	} else {
		s.normal = append(s.normal, r)
	}
}

// remove drops r from the queue.
func (s *Scheduler) remove(r *Reactor) {
	if !r.queued {
		return
	}
	r.queued = false
	s.queued.Remove(r.id)
	if r.priority == PriorityLow {
		s.low = removeReactor(s.low, r)
	} else {
		s.normal = removeReactor(s.normal, r)
	}
}

func removeReactor(q []*Reactor, r *Reactor) []*Reactor {
	for i, x := range q {
		if x == r {
			return append(q[:i], q[i+1:]...)
		}
	}
	return q
}

// passResult summarizes one pass over the queues.
type passResult struct {
	ran, skipped int
	errs         []error
}

// runPass drains the queues as they stand at the start of the pass, normal
// tier first. Reactors queued while the pass runs wait for the next pass.
// A failure aborts the rest of its tier; the unrun reactors go back to the
// front of the tier's queue.
func (s *Scheduler) runPass(rt *Runtime) passResult {
	var res passResult
	normal, low := s.normal, s.low
	s.normal, s.low = nil, nil

	// Reactors enqueued while a tier runs land in s.normal / s.low, so the
	// fields are read only after the tier returns.
	if rest := s.runTier(rt, normal, &res); len(rest) > 0 {
		s.normal = append(rest, s.normal...)
	}
	if rest := s.runTier(rt, low, &res); len(rest) > 0 {
		s.low = append(rest, s.low...)
	}
	return res
}

// runTier runs tier in order and returns the reactors left unrun by a
// failure, still marked queued.
func (s *Scheduler) runTier(rt *Runtime, tier []*Reactor, res *passResult) []*Reactor {
	for i, r := range tier {
		if !r.queued {
			// Disposed or removed after the pass started.
			continue
		}
		r.queued = false
		s.queued.Remove(r.id)

		ran, err := rt.runReactorChecked(r)
		if err != nil {
			res.errs = append(res.errs, err)
			var rest []*Reactor
			for _, left := range tier[i+1:] {
				if left.queued {
					rest = append(rest, left)
				}
			}
			return rest
		}
		if ran {
			res.ran++
		} else {
			res.skipped++
		}
	}
	return nil
}
