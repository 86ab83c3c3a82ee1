package reactive

import "time"

// FlushStats describes one completed flush.
type FlushStats struct {
	Passes   int
	Reactors int // reactors whose function executed
	Skipped  int // dequeued reactors whose dependencies turned out unchanged
	Failures int
	Duration time.Duration
}

// Observer receives runtime events. Implementations must not write cells.
type Observer interface {
	FlushCompleted(stats FlushStats)
	ReactorFailed(err *ReactorError)
}

type nopObserver struct{}

func (nopObserver) FlushCompleted(FlushStats)   {}
func (nopObserver) ReactorFailed(*ReactorError) {}
