package glyph

import (
	"image"

	"github.com/gogpu/overlay/geom"
)

// Metrics describe the extent of rendered text in pixels.
type Metrics struct {
	// Width is the advance width of the whole string after scaleX.
	Width float32
	// Ascent is the distance from the baseline to the top of the line.
	Ascent float32
	// Descent is the distance from the baseline to the bottom of the line,
	// positive downwards.
	Descent float32
}

// Height returns Ascent + Descent.
func (m Metrics) Height() float32 {
	return m.Ascent + m.Descent
}

// Glyph is a rendered, immutable piece of text: a coverage mask plus the
// metrics needed to place it. The mask is only reachable through the cache's
// draw entry points, so a Glyph can be shared freely across goroutines.
type Glyph struct {
	mask    *image.Alpha
	metrics Metrics
	// offset is the position of the mask's top-left corner relative to the
	// pen origin on the baseline.
	offset geom.Point
}

// Metrics returns the glyph metrics.
func (g *Glyph) Metrics() Metrics {
	return g.metrics
}

// Offset returns the mask's top-left corner relative to the baseline origin.
func (g *Glyph) Offset() geom.Point {
	return g.offset
}

// Bounds returns the mask size. It is empty for whitespace-only text.
func (g *Glyph) Bounds() image.Rectangle {
	if g.mask == nil {
		return image.Rectangle{}
	}
	return g.mask.Bounds()
}

// Bytes returns the approximate memory held by the glyph.
func (g *Glyph) Bytes() int {
	if g.mask == nil {
		return 0
	}
	return len(g.mask.Pix)
}
