package paint

import (
	"sync"
	"sync/atomic"
)

// DefaultMaxIdle is the default number of idle paints kept per category.
const DefaultMaxIdle = 256

// PoolOption configures a Pool.
type PoolOption func(*poolOptions)

type poolOptions struct {
	maxIdle int
	warmup  int
}

// WithMaxIdle bounds the idle paints retained per category. Paints returned
// beyond the bound are dropped for the garbage collector.
func WithMaxIdle(n int) PoolOption {
	return func(o *poolOptions) {
		o.maxIdle = n
	}
}

// WithWarmup pre-allocates n paints per category at construction.
func WithWarmup(n int) PoolOption {
	return func(o *poolOptions) {
		o.warmup = n
	}
}

// Pool hands out reusable paints in three independent categories.
//
// Ownership moves to the caller on Get and back to the pool on Return. A
// returned paint is reset to its category default before it can be handed
// out again. A paint is never given to two borrowers at once: returning the
// same paint twice stores it once.
//
// Usage:
//
//	p := pool.GetStroke()
//	p.Color = red
//	batcher.AddLine(seg, p.Key())
//	pool.ReturnStroke(p)
//
// Unlike sync.Pool, paints are never released behind the caller's back, so
// after warmup a steady-state frame allocates nothing.
//
// Pool is safe for concurrent use.
type Pool struct {
	stores  [numCategories]store
	maxIdle int
}

// store is the free list of one category.
type store struct {
	mu   sync.Mutex
	free []*Paint

	allocated   atomic.Int64
	outstanding atomic.Int64
}

// NewPool creates a paint pool.
func NewPool(opts ...PoolOption) *Pool {
	o := poolOptions{maxIdle: DefaultMaxIdle}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxIdle <= 0 {
		o.maxIdle = DefaultMaxIdle
	}

	p := &Pool{maxIdle: o.maxIdle}
	for c := range p.stores {
		p.stores[c].free = make([]*Paint, 0, min(o.maxIdle, 64))
	}
	if o.warmup > 0 {
		p.Warmup(o.warmup)
	}
	return p
}

// Warmup pre-allocates n paints per category so hot paths do not allocate.
func (p *Pool) Warmup(n int) {
	for c := Category(0); c < numCategories; c++ {
		paints := make([]*Paint, n)
		for i := range paints {
			paints[i] = p.Get(c)
		}
		for _, pt := range paints {
			p.Return(pt)
		}
	}
}

// Get borrows a paint of category c, allocating when the free list is empty.
// An invalid category is treated as CategoryStroke.
func (p *Pool) Get(c Category) *Paint {
	if !c.Valid() {
		c = CategoryStroke
	}
	s := &p.stores[c]

	s.mu.Lock()
	var pt *Paint
	if n := len(s.free); n > 0 {
		pt = s.free[n-1]
		s.free[n-1] = nil
		s.free = s.free[:n-1]
		pt.pooled = false
	}
	s.mu.Unlock()

	if pt == nil {
		pt = New(c)
		s.allocated.Add(1)
	}
	s.outstanding.Add(1)
	return pt
}

// Return releases a paint to the store of its own category.
// Nil is ignored.
func (p *Pool) Return(pt *Paint) {
	if pt == nil {
		return
	}
	p.put(pt, pt.category)
}

// put resets pt to the defaults of c and stores it.
func (p *Pool) put(pt *Paint, c Category) {
	if !c.Valid() {
		c = CategoryStroke
	}
	from := pt.category
	if !from.Valid() {
		from = CategoryStroke
	}
	s := &p.stores[c]

	s.mu.Lock()
	defer s.mu.Unlock()

	// Reset unconditionally, even on a double return: state must not leak.
	// An idle paint stays in the store it already sits in.
	if pt.pooled {
		pt.resetTo(from)
		return
	}
	pt.resetTo(c)
	p.stores[from].outstanding.Add(-1)
	if len(s.free) >= p.maxIdle {
		return
	}
	pt.pooled = true
	s.free = append(s.free, pt)
}

// GetStroke borrows a stroke paint.
func (p *Pool) GetStroke() *Paint { return p.Get(CategoryStroke) }

// GetFill borrows a fill paint.
func (p *Pool) GetFill() *Paint { return p.Get(CategoryFill) }

// GetText borrows a text paint.
func (p *Pool) GetText() *Paint { return p.Get(CategoryText) }

// ReturnStroke releases pt into the stroke store, reset to stroke defaults.
func (p *Pool) ReturnStroke(pt *Paint) {
	if pt != nil {
		p.put(pt, CategoryStroke)
	}
}

// ReturnFill releases pt into the fill store, reset to fill defaults.
func (p *Pool) ReturnFill(pt *Paint) {
	if pt != nil {
		p.put(pt, CategoryFill)
	}
}

// ReturnText releases pt into the text store, reset to text defaults.
func (p *Pool) ReturnText(pt *Paint) {
	if pt != nil {
		p.put(pt, CategoryText)
	}
}

// With borrows a paint of category c for the duration of fn. The paint is
// returned on every exit path, including a panic in fn, which is re-raised.
func (p *Pool) With(c Category, fn func(*Paint) error) error {
	pt := p.Get(c)
	defer p.put(pt, pt.category)
	return fn(pt)
}

// WithStroke runs fn with a borrowed stroke paint.
func (p *Pool) WithStroke(fn func(*Paint) error) error { return p.With(CategoryStroke, fn) }

// WithFill runs fn with a borrowed fill paint.
func (p *Pool) WithFill(fn func(*Paint) error) error { return p.With(CategoryFill, fn) }

// WithText runs fn with a borrowed text paint.
func (p *Pool) WithText(fn func(*Paint) error) error { return p.With(CategoryText, fn) }

// CategoryStats describes one category store.
type CategoryStats struct {
	// Allocated is the number of paints created since the pool was built.
	Allocated int64
	// Outstanding is the number of paints currently borrowed.
	Outstanding int64
	// Idle is the number of paints waiting in the free list.
	Idle int
}

// Stats is a snapshot of all category stores.
type Stats [numCategories]CategoryStats

// Of returns the stats of category c.
func (s Stats) Of(c Category) CategoryStats {
	if !c.Valid() {
		return CategoryStats{}
	}
	return s[c]
}

// Stats returns a snapshot of allocation and borrow counts.
func (p *Pool) Stats() Stats {
	var out Stats
	for c := range p.stores {
		s := &p.stores[c]
		s.mu.Lock()
		idle := len(s.free)
		s.mu.Unlock()
		out[c] = CategoryStats{
			Allocated:   s.allocated.Load(),
			Outstanding: s.outstanding.Load(),
			Idle:        idle,
		}
	}
	return out
}
