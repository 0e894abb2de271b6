package glyph

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// ShapedGlyph is one positioned glyph of a Run. Positions are in pixels
// relative to the run origin on the baseline, y pointing down.
type ShapedGlyph struct {
	ID       uint16
	X, Y     float32
	XAdvance float32
	Cluster  int
}

// Run is the result of shaping one string with one set of attributes.
type Run struct {
	Glyphs  []ShapedGlyph
	Advance float32
	Ascent  float32
	Descent float32
	RTL     bool
	Source  *FontSource
	Attrs   Attributes
}

// Shaper turns text into positioned glyphs. Implementations must be safe for
// concurrent use.
type Shaper interface {
	Shape(text string, attrs Attributes) (*Run, error)
}

// ShaperFunc adapts a function to the Shaper interface.
type ShaperFunc func(text string, attrs Attributes) (*Run, error)

// Shape implements Shaper.
func (f ShaperFunc) Shape(text string, attrs Attributes) (*Run, error) {
	return f(text, attrs)
}

// GoTextShaper shapes text with go-text/typesetting's HarfBuzz port.
//
// GoTextShaper is safe for concurrent use. Parsed fonts are shared; a
// lightweight font.Face is created per call because faces are not safe for
// concurrent use, and HarfbuzzShaper instances are pooled for the same reason.
type GoTextShaper struct {
	book       *FontBook
	shaperPool sync.Pool
}

// NewGoTextShaper creates a shaper resolving faces from book.
func NewGoTextShaper(book *FontBook) *GoTextShaper {
	return &GoTextShaper{
		book: book,
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape implements Shaper. Attributes must already be normalized; ScaleX and
// SkewX are applied by the rasterizer, not the shaper.
func (s *GoTextShaper) Shape(text string, attrs Attributes) (*Run, error) {
	src, err := s.book.Lookup(attrs.Family, attrs.Weight, attrs.Slant)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	rtl := isRTL(text)
	dir := di.DirectionLTR
	if rtl {
		dir = di.DirectionRTL
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      font.NewFace(src.shaping),
		Size:      fixed.Int26_6(attrs.Size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.shaperPool.Put(hb)

	run := &Run{
		Glyphs:  make([]ShapedGlyph, len(out.Glyphs)),
		Ascent:  fixedToFloat(out.LineBounds.Ascent),
		Descent: -fixedToFloat(out.LineBounds.Descent),
		RTL:     rtl,
		Source:  src,
		Attrs:   attrs,
	}
	var x float32
	for i, g := range out.Glyphs {
		adv := fixedToFloat(g.Advance)
		run.Glyphs[i] = ShapedGlyph{
			ID:       uint16(g.GlyphID), //nolint:gosec // sfnt glyph indexes are 16-bit
			X:        x + fixedToFloat(g.XOffset),
			Y:        -fixedToFloat(g.YOffset),
			XAdvance: adv,
			Cluster:  g.TextIndex(),
		}
		x += adv
	}
	run.Advance = x
	return run, nil
}

// isRTL reports whether the whole string resolves to a single right-to-left
// bidi run. Mixed text is shaped left to right.
func isRTL(text string) bool {
	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return false
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() != 1 {
		return false
	}
	run := ordering.Run(0)
	return run.Direction() == bidi.RightToLeft
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
