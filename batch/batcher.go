package batch

import (
	"errors"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/internal/logging"
	"github.com/gogpu/overlay/paint"
	"github.com/gogpu/overlay/surface"
)

// DefaultInitialCapacity is the per-kind buffer capacity reserved by New.
const DefaultInitialCapacity = 256

// ErrNoSurface is returned by Flush when neither an argument nor a bound
// surface is available. Pending primitives are kept.
var ErrNoSurface = errors.New("batch: no surface to flush to")

// Option configures a Batcher.
type Option func(*Batcher)

// WithInitialCapacity sets the per-kind buffer capacity reserved up front.
func WithInitialCapacity(n int) Option {
	return func(b *Batcher) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// Stats holds batching counters since construction or the last ResetStats.
type Stats struct {
	// Added is the number of primitives passed to Add*.
	Added int
	// Drawn is the number of primitives emitted to a surface.
	Drawn int
	// Batches is the number of style groups emitted. For points and lines
	// each group is one surface call.
	Batches int
	// Calls is the number of surface calls. Circles cost one call each.
	Calls int
	// StyleSwitches counts style changes observed on a kind's buffer.
	StyleSwitches int
	// Discarded is the number of primitives dropped by Clear.
	Discarded int
}

// Batcher accumulates draw primitives grouped by style and emits each group
// as one batched surface call.
//
// Each primitive kind (points, lines, circles) has its own buffer and its own
// current style. Adding a primitive whose StyleKey differs from the current
// style of its kind closes the current group; if a surface is bound (Begin),
// the closed group is drawn right away, otherwise it is retained and drawn by
// the next Flush.
//
// Flush emits points, then lines, then circles. Ordering across kinds is not
// guaranteed beyond that; callers needing strict z-order across kinds must
// flush between kinds.
//
// Batcher is NOT safe for concurrent use. It is driven by the render thread.
type Batcher struct {
	target surface.Surface

	points  lane[geom.Point]
	lines   lane[geom.Segment]
	circles lane[geom.Circle]

	capacity int
	stats    Stats
}

// New creates a batcher.
func New(opts ...Option) *Batcher {
	b := &Batcher{capacity: DefaultInitialCapacity}
	for _, opt := range opts {
		opt(b)
	}
	b.points.reserve(b.capacity)
	b.lines.reserve(b.capacity)
	b.circles.reserve(b.capacity / 4)
	return b
}

// Begin binds the surface that style-change flushes draw to. Passing nil
// unbinds it.
func (b *Batcher) Begin(s surface.Surface) {
	b.target = s
}

// Surface returns the bound surface, or nil.
func (b *Batcher) Surface() surface.Surface {
	return b.target
}

// AddPoint adds a point drawn with style.
func (b *Batcher) AddPoint(p geom.Point, style paint.StyleKey) {
	b.stats.Added++
	if b.points.add(p, style) {
		b.stats.StyleSwitches++
		if b.target != nil {
			b.flushPoints(b.target, true)
		}
	}
}

// AddLine adds a line segment drawn with style.
func (b *Batcher) AddLine(s geom.Segment, style paint.StyleKey) {
	b.stats.Added++
	if b.lines.add(s, style) {
		b.stats.StyleSwitches++
		if b.target != nil {
			b.flushLines(b.target, true)
		}
	}
}

// AddCircle adds a circle drawn with style.
func (b *Batcher) AddCircle(c geom.Circle, style paint.StyleKey) {
	b.stats.Added++
	if b.circles.add(c, style) {
		b.stats.StyleSwitches++
		if b.target != nil {
			b.flushCircles(b.target, true)
		}
	}
}

// AddPointPaint is AddPoint with the style taken from p. The batcher keeps
// only p's StyleKey, so p may be returned to its pool right after the call.
func (b *Batcher) AddPointPaint(pt geom.Point, p *paint.Paint) {
	b.AddPoint(pt, keyOf(p))
}

// AddLinePaint is AddLine with the style taken from p.
func (b *Batcher) AddLinePaint(s geom.Segment, p *paint.Paint) {
	b.AddLine(s, keyOf(p))
}

// AddCirclePaint is AddCircle with the style taken from p.
func (b *Batcher) AddCirclePaint(c geom.Circle, p *paint.Paint) {
	b.AddCircle(c, keyOf(p))
}

// Pending returns the number of primitives not yet drawn.
func (b *Batcher) Pending() int {
	return b.points.size() + b.lines.size() + b.circles.size()
}

// Flush draws every pending group to s, or to the bound surface when s is
// nil: points first, then lines, then circles.
func (b *Batcher) Flush(s surface.Surface) error {
	if s == nil {
		s = b.target
	}
	if s == nil {
		if b.Pending() > 0 {
			return ErrNoSurface
		}
		return nil
	}
	b.flushPoints(s, false)
	b.flushLines(s, false)
	b.flushCircles(s, false)
	return nil
}

// Clear discards pending primitives without drawing them. Use it for
// canceled frames.
func (b *Batcher) Clear() {
	n := b.Pending()
	if n > 0 {
		logging.Logger().Debug("batch: discarding pending primitives", "count", n)
	}
	b.stats.Discarded += n
	b.points.reset()
	b.lines.reset()
	b.circles.reset()
}

// Stats returns the batching counters.
func (b *Batcher) Stats() Stats {
	return b.stats
}

// ResetStats zeroes the batching counters.
func (b *Batcher) ResetStats() {
	b.stats = Stats{}
}

// flush emits a lane's groups. With closedOnly set the open group stays
// pending.
func flush[T any](l *lane[T], closedOnly bool, fn func(items []T, style paint.StyleKey)) {
	if closedOnly {
		l.emitClosed(fn)
		return
	}
	l.emit(fn)
}

func (b *Batcher) flushPoints(s surface.Surface, closedOnly bool) {
	flush(&b.points, closedOnly, func(items []geom.Point, style paint.StyleKey) {
		s.DrawPoints(items, style)
		b.count(len(items), 1)
	})
}

func (b *Batcher) flushLines(s surface.Surface, closedOnly bool) {
	flush(&b.lines, closedOnly, func(items []geom.Segment, style paint.StyleKey) {
		s.DrawLines(items, style)
		b.count(len(items), 1)
	})
}

// flushCircles draws circles one call each; there is no batched circle
// primitive, but grouping by style still avoids redundant style churn.
func (b *Batcher) flushCircles(s surface.Surface, closedOnly bool) {
	flush(&b.circles, closedOnly, func(items []geom.Circle, style paint.StyleKey) {
		for _, c := range items {
			s.DrawCircle(c, style)
		}
		b.count(len(items), len(items))
	})
}

func (b *Batcher) count(prims, calls int) {
	b.stats.Drawn += prims
	b.stats.Calls += calls
	b.stats.Batches++
}

func keyOf(p *paint.Paint) paint.StyleKey {
	if p == nil {
		d := paint.Default(paint.CategoryStroke)
		return d.Key()
	}
	return p.Key()
}
