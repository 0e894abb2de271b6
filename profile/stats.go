package profile

import (
	"sync"
	"time"
)

// SectionStats is a snapshot of one section.
type SectionStats struct {
	Name  string
	Count uint64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
	// Avg is the lifetime average.
	Avg time.Duration
	// RecentAvg is the average over the rolling window, separating recent
	// transient cost from steady-state cost.
	RecentAvg time.Duration
}

// FrameStats summarizes frame-to-frame time.
type FrameStats struct {
	Frames    uint64
	Last      time.Duration
	Avg       time.Duration
	Min       time.Duration
	Max       time.Duration
	RecentAvg time.Duration
	// FPS is derived from RecentAvg.
	FPS float64
}

// accumulator holds the running statistics of one section.
type accumulator struct {
	name string

	mu    sync.Mutex
	count uint64
	total time.Duration
	min   time.Duration
	max   time.Duration
	last  time.Duration

	ring   []time.Duration
	next   int
	filled int
	recent time.Duration
}

func newAccumulator(name string, window int) *accumulator {
	return &accumulator{name: name, ring: make([]time.Duration, window)}
}

func (a *accumulator) add(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count == 0 || d < a.min {
		a.min = d
	}
	if d > a.max {
		a.max = d
	}
	a.count++
	a.total += d
	a.last = d

	a.recent += d - a.ring[a.next]
	a.ring[a.next] = d
	a.next = (a.next + 1) % len(a.ring)
	if a.filled < len(a.ring) {
		a.filled++
	}
}

func (a *accumulator) snapshot() SectionStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := SectionStats{
		Name:  a.name,
		Count: a.count,
		Total: a.total,
		Min:   a.min,
		Max:   a.max,
		Last:  a.last,
	}
	if a.count > 0 {
		s.Avg = a.total / time.Duration(a.count) //nolint:gosec // sample counts stay far below MaxInt64
	}
	if a.filled > 0 {
		s.RecentAvg = a.recent / time.Duration(a.filled)
	}
	return s
}

func (a *accumulator) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.count, a.total, a.min, a.max, a.last = 0, 0, 0, 0, 0
	clear(a.ring)
	a.next, a.filled, a.recent = 0, 0, 0
}
