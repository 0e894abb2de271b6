// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package spatial

import (
	"log/slog"
	"sync"

	"github.com/tidwall/rtree"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/internal/logging"
)

// DefaultPointRadius is the half-size of the envelope built around each
// entity position. Values below 1 are clamped to 1 so point queries behave
// predictably against rectangular node bounds.
const DefaultPointRadius = 1.0

// searchSlop widens tree searches slightly; results are then filtered with the
// exact inclusive intersection test, so touching envelopes are never lost to
// floating-point rounding in node bounds.
const searchSlop = 1e-9

// Entry pairs a caller-owned entity handle with its world position.
// The index keeps the handle value only; entity data is never copied.
type Entry[T any] struct {
	Value T
	Pos   geom.Point
}

// item is what the tree stores: the handle plus its screen-space point and envelope.
type item[T any] struct {
	value T
	pos   geom.Point
	env   geom.Rect
}

// Option configures an Index.
type Option func(*options)

type options struct {
	pointRadius float64
}

// WithPointRadius sets the envelope half-size around each entity position.
func WithPointRadius(r float64) Option {
	return func(o *options) {
		o.pointRadius = r
	}
}

// Index is an R-tree over entity positions for viewport and radius queries.
//
// Rebuild replaces the whole tree (bulk load); there is no incremental
// mutation. Queries take a read lock and may run concurrently with each other;
// Rebuild builds the new tree outside the lock and swaps it in under the write
// lock, so in-flight queries finish against the previous tree.
//
// Index is safe for concurrent use.
type Index[T any] struct {
	mu     sync.RWMutex
	tree   *rtree.RTreeG[item[T]]
	count  int
	bounds geom.Rect

	radius float64
}

// New creates an empty index.
func New[T any](opts ...Option) *Index[T] {
	o := options{pointRadius: DefaultPointRadius}
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.pointRadius >= 1) { // also catches NaN
		o.pointRadius = 1
	}
	return &Index[T]{
		tree:   &rtree.RTreeG[item[T]]{},
		radius: o.pointRadius,
	}
}

// PointRadius returns the envelope half-size used for each entity.
func (x *Index[T]) PointRadius() float64 {
	return x.radius
}

// Rebuild clears the index and bulk-loads entities, keyed by each entity's
// transformed position expanded into a square envelope. A nil transform is
// the identity. Entities whose transformed position is not finite are
// skipped. Empty or nil input leaves an empty index.
func (x *Index[T]) Rebuild(entities []Entry[T], transform geom.Transform) {
	if transform == nil {
		transform = geom.Identity
	}

	tree := &rtree.RTreeG[item[T]]{}
	var bounds geom.Rect
	count, skipped := 0, 0

	for i := range entities {
		pos := transform(entities[i].Pos)
		if !pos.IsFinite() {
			skipped++
			continue
		}
		env := geom.Around(pos, x.radius)
		tree.Insert(
			[2]float64{env.MinX, env.MinY},
			[2]float64{env.MaxX, env.MaxY},
			item[T]{value: entities[i].Value, pos: pos, env: env},
		)
		if count == 0 {
			bounds = env
		} else {
			bounds = bounds.Union(env)
		}
		count++
	}

	x.mu.Lock()
	x.tree = tree
	x.count = count
	x.bounds = bounds
	x.mu.Unlock()

	if skipped > 0 {
		logging.Logger().Debug("spatial: skipped non-finite positions",
			slog.Int("skipped", skipped), slog.Int("indexed", count))
	}
}

// Len returns the number of indexed entities.
func (x *Index[T]) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.count
}

// Bounds returns the union of all entity envelopes and false when the index
// is empty.
func (x *Index[T]) Bounds() (geom.Rect, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.bounds, x.count > 0
}

// QueryViewport returns every entity whose envelope intersects view expanded
// by margin. Envelopes touching the expanded edge are included. The result is
// computed fresh on every call. An invalid view yields nil.
func (x *Index[T]) QueryViewport(view geom.Rect, margin float64) []T {
	var out []T
	x.Visit(view, margin, func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Visit streams the entities QueryViewport would return to fn without
// allocating a result slice. Returning false from fn stops the walk.
func (x *Index[T]) Visit(view geom.Rect, margin float64, fn func(T) bool) {
	q := view.Expand(margin)
	if !q.Valid() {
		return
	}
	x.search(q, func(it *item[T]) bool {
		if !it.env.Intersects(q) {
			return true
		}
		return fn(it.value)
	})
}

// QueryRadius returns every entity whose position lies within radius of
// center (Euclidean distance <= radius). The rectangular tree search is a
// pre-filter only; the exact squared-distance test removes its false
// positives. A negative or non-finite radius yields nil.
func (x *Index[T]) QueryRadius(center geom.Point, radius float64) []T {
	if !(radius >= 0) || !center.IsFinite() || !geom.Pt(radius, 0).IsFinite() {
		return nil
	}
	r2 := radius * radius
	var out []T
	x.search(geom.Around(center, radius), func(it *item[T]) bool {
		if it.pos.DistanceSquared(center) <= r2 {
			out = append(out, it.value)
		}
		return true
	})
	return out
}

// search walks tree items whose node bounds touch q (slightly widened).
func (x *Index[T]) search(q geom.Rect, fn func(*item[T]) bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.count == 0 {
		return
	}
	w := q.Expand(searchSlop)
	x.tree.Search(
		[2]float64{w.MinX, w.MinY},
		[2]float64{w.MaxX, w.MaxY},
		func(_, _ [2]float64, it item[T]) bool {
			return fn(&it)
		},
	)
}
