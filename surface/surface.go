// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/paint"
)

// Surface is the low-level 2D drawing target the overlay renders into.
//
// The production implementation belongs to the host application (a window,
// a GPU canvas, a game overlay hook). This package ships two implementations
// for tooling and tests: Recorder and ImageSurface.
//
// Slices passed to DrawPoints and DrawLines are only valid for the duration
// of the call; implementations that keep them must copy.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, normally the render thread.
type Surface interface {
	// DrawPoints draws all points in one batched call with one style.
	DrawPoints(pts []geom.Point, style paint.StyleKey)

	// DrawLines draws all segments in one batched call with one style.
	DrawLines(segs []geom.Segment, style paint.StyleKey)

	// DrawCircle draws a single circle. Typical 2D backends have no batched
	// circle primitive.
	DrawCircle(c geom.Circle, style paint.StyleKey)

	// DrawMask composites a coverage mask tinted with c, its top-left
	// corner at the given position.
	DrawMask(mask *image.Alpha, at geom.Point, c color.RGBA, blend paint.BlendMode)

	// DrawImage composites a color image, its top-left corner at the given position.
	DrawImage(img image.Image, at geom.Point, blend paint.BlendMode)

	// DrawText draws text with the surface's own text primitive, glyph by
	// glyph. The position is the left end of the baseline. It must always
	// succeed; it is the last-resort path for text.
	DrawText(text string, at geom.Point, style paint.TextStyle)
}
