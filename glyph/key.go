package glyph

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gogpu/overlay/paint"
)

// Attributes are the font attributes that change the shape of rendered
// text. Color and blend mode are deliberately absent: they are applied at
// draw time, so text differing only in color shares one cached glyph.
type Attributes struct {
	Size   float32
	ScaleX float32
	SkewX  float32
	Family string
	Weight paint.Weight
	Slant  paint.Slant
}

// AttributesOf extracts the shape-affecting attributes of a text paint.
func AttributesOf(p *paint.Paint) Attributes {
	if p == nil {
		d := paint.Default(paint.CategoryText)
		p = &d
	}
	return Attributes{
		Size:   p.TextSize,
		ScaleX: p.ScaleX,
		SkewX:  p.SkewX,
		Family: p.Family,
		Weight: p.Weight,
		Slant:  p.Slant,
	}
}

// normalize canonicalizes attributes so equal renderings compare equal:
// a zero ScaleX means 1, an empty family means the default family, and
// negative zero skew is folded into zero. Weights snap to regular or bold.
func (a Attributes) normalize() (Attributes, error) {
	if !(a.Size > 0) || math.IsInf(float64(a.Size), 0) {
		return a, ErrInvalidSize
	}
	if a.ScaleX == 0 {
		a.ScaleX = 1
	}
	if !(a.ScaleX > 0) || math.IsInf(float64(a.ScaleX), 0) {
		return a, ErrInvalidScale
	}
	if math.IsNaN(float64(a.SkewX)) || math.IsInf(float64(a.SkewX), 0) {
		return a, ErrInvalidScale
	}
	if a.SkewX == 0 {
		a.SkewX = 0
	}
	if a.Family == "" {
		a.Family = paint.DefaultFamily
	}
	a.Weight = snapWeight(a.Weight)
	return a, nil
}

func snapWeight(w paint.Weight) paint.Weight {
	if w >= 600 {
		return paint.WeightBold
	}
	return paint.WeightRegular
}

// Key identifies one cached glyph: the exact text plus every
// shape-affecting attribute. Key is comparable and immutable.
type Key struct {
	Text  string
	Attrs Attributes
}

// NewKey validates text and attributes and returns the canonical key.
func NewKey(text string, attrs Attributes) (Key, error) {
	if !utf8.ValidString(text) {
		return Key{}, ErrInvalidText
	}
	a, err := attrs.normalize()
	if err != nil {
		return Key{}, err
	}
	return Key{Text: text, Attrs: a}, nil
}

// flightKey encodes the key as a string for singleflight. Floats are
// encoded by bit pattern so distinct attributes never collide.
func (k Key) flightKey() string {
	var b strings.Builder
	b.Grow(len(k.Text) + len(k.Attrs.Family) + 40)
	b.WriteString(k.Attrs.Family)
	b.WriteByte(0)
	var buf [20]byte
	for _, f := range [...]float32{k.Attrs.Size, k.Attrs.ScaleX, k.Attrs.SkewX} {
		b.Write(strconv.AppendUint(buf[:0], uint64(math.Float32bits(f)), 36))
		b.WriteByte(0)
	}
	b.Write(strconv.AppendUint(buf[:0], uint64(k.Attrs.Weight), 10))
	b.WriteByte(0)
	b.Write(strconv.AppendUint(buf[:0], uint64(k.Attrs.Slant), 10))
	b.WriteByte(0)
	b.WriteString(k.Text)
	return b.String()
}
