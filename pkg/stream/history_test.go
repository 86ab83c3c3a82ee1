package stream

import (
	"fmt"
	"testing"
)

func fill(h *History, from, to uint64) {
	for s := from; s <= to; s++ {
		h.Add(s, []byte(fmt.Sprint(s)))
	}
}

func TestHistorySince(t *testing.T) {
	h := NewHistory(5)
	fill(h, 1, 3)

	frames, ok := h.Since(1, 3)
	if !ok || len(frames) != 2 || string(frames[0]) != "2" || string(frames[1]) != "3" {
		t.Errorf("Since(1, 3) = %q, %v", frames, ok)
	}
	if frames, ok := h.Since(3, 3); !ok || len(frames) != 0 {
		t.Errorf("Since(3, 3) = %q, %v; want empty, true", frames, ok)
	}
	frames, ok = h.Since(0, 3)
	if !ok || len(frames) != 3 || string(frames[0]) != "1" || string(frames[2]) != "3" {
		t.Errorf("Since(0, 3) = %q, %v; want all three frames", frames, ok)
	}
	if _, ok := h.Since(4, 3); ok {
		t.Error("Since past latest should fail")
	}
	if _, ok := h.Since(1, 5); ok {
		t.Error("Since beyond stored frames should fail")
	}
}

func TestHistorySinceMissingFirst(t *testing.T) {
	h := NewHistory(5)
	fill(h, 2, 3)

	if _, ok := h.Since(0, 3); ok {
		t.Error("seq 1 was never stored; Since(0, 3) should fail")
	}
	frames, ok := h.Since(1, 3)
	if !ok || len(frames) != 2 || string(frames[0]) != "2" {
		t.Errorf("Since(1, 3) = %q, %v", frames, ok)
	}
}

func TestHistoryOverwrite(t *testing.T) {
	h := NewHistory(3)
	fill(h, 1, 7)

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	lo, hi, ok := h.Range()
	if !ok || lo != 5 || hi != 7 {
		t.Errorf("Range() = %d, %d, %v; want 5, 7", lo, hi, ok)
	}
	if _, ok := h.Since(3, 7); ok {
		t.Error("seq 4 was overwritten; Since(3, 7) should fail")
	}
	frames, ok := h.Since(4, 7)
	if !ok || len(frames) != 3 || string(frames[2]) != "7" {
		t.Errorf("Since(4, 7) = %q, %v", frames, ok)
	}
}

func TestHistoryGap(t *testing.T) {
	h := NewHistory(10)
	fill(h, 1, 2)
	fill(h, 5, 6)
	if _, ok := h.Since(1, 6); ok {
		t.Error("gap between 2 and 5 should fail")
	}
	if _, ok := h.Since(4, 6); !ok {
		t.Error("Since(4, 6) should succeed")
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(0)
	if _, _, ok := h.Range(); ok {
		t.Error("empty history has no range")
	}
	if _, ok := h.Since(0, 1); ok {
		t.Error("empty history cannot replay")
	}
}
