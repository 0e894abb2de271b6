package paint

import (
	"image/color"
	"math"

	"github.com/chewxy/math32"
)

// widthBucketsPerPixel is the stroke-width quantization used for batching.
const widthBucketsPerPixel = 4

// StyleKey is the batching-relevant projection of a paint. Two paints are
// batch-equal iff their StyleKeys are equal; other paint fields may differ.
// StyleKey is a comparable value and never aliases a pooled Paint.
type StyleKey struct {
	Color       color.RGBA
	WidthBucket uint16
	Blend       BlendMode
	Mode        Mode
}

// WidthBucket quantizes a stroke width to quarter pixels.
// Negative and NaN widths map to bucket 0.
func WidthBucket(w float32) uint16 {
	if !(w > 0) {
		return 0
	}
	b := math32.Round(w * widthBucketsPerPixel)
	if b > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(b)
}

// Width returns the stroke width the bucket represents.
func (k StyleKey) Width() float32 {
	return float32(k.WidthBucket) / widthBucketsPerPixel
}

// TextStyle is the text-relevant projection of a paint, passed by value to
// surfaces so a pooled Paint can be returned right after the draw call.
type TextStyle struct {
	Color  color.RGBA
	Blend  BlendMode
	Size   float32
	Family string
	Weight Weight
	Slant  Slant
	ScaleX float32
	SkewX  float32
	Align  Align
}
