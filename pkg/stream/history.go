package stream

import "sync"

// History is a ring buffer of encoded patch frames by sequence number,
// used to replay what a reconnecting client missed.
type History struct {
	mu       sync.RWMutex
	frames   [][]byte
	seqs     []uint64
	head     int // next write position
	count    int
	capacity int
}

// NewHistory creates a history holding up to capacity frames.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{
		frames:   make([][]byte, capacity),
		seqs:     make([]uint64, capacity),
		capacity: capacity,
	}
}

// Add stores an encoded frame. Sequence numbers must increase; the oldest
// frame is overwritten when full. The frame is not copied.
func (h *History) Add(seq uint64, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.frames[h.head] = frame
	h.seqs[h.head] = seq
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}
}

// Since returns the frames after seq up to and including latest, oldest
// first. ok is false when any of them has been overwritten or was never
// stored. A client that is already current gets an empty, ok result.
func (h *History) Since(seq, latest uint64) (frames [][]byte, ok bool) {
	if seq > latest {
		return nil, false
	}
	if seq == latest {
		return nil, true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return nil, false
	}
	oldest := (h.head - h.count + h.capacity) % h.capacity
	want := seq + 1
	for i := range h.count {
		idx := (oldest + i) % h.capacity
		s := h.seqs[idx]
		if s < want {
			continue
		}
		if s != want {
			return nil, false
		}
		frames = append(frames, h.frames[idx])
		if s == latest {
			return frames, true
		}
		want++
	}
	return nil, false
}

// Len returns the number of stored frames.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Range returns the lowest and highest stored sequence numbers.
func (h *History) Range() (lowest, highest uint64, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.count == 0 {
		return 0, 0, false
	}
	oldest := (h.head - h.count + h.capacity) % h.capacity
	newest := (h.head - 1 + h.capacity) % h.capacity
	return h.seqs[oldest], h.seqs[newest], true
}
