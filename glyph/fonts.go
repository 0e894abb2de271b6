package glyph

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/overlay/paint"
)

// MonoFamily is the family name of the Go Mono faces in DefaultFontBook.
const MonoFamily = "Go Mono"

// FontSource is one loaded font file, parsed twice: once by go-text for
// shaping and once by x/image/font/sfnt for outlines. Both parsed forms are
// read-only and safe for concurrent use.
type FontSource struct {
	name     string
	shaping  *font.Font
	outlines *sfnt.Font
}

// NewFontSource parses TTF or OTF data. The data must not be modified
// afterwards.
func NewFontSource(name string, data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("glyph: parse %s for shaping: %w", name, err)
	}
	outlines, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse %s outlines: %w", name, err)
	}
	return &FontSource{name: name, shaping: face.Font, outlines: outlines}, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string) (*FontSource, error) {
	// #nosec G304 -- font path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("glyph: read font: %w", err)
	}
	return NewFontSource(path, data)
}

// Name returns the name the source was created with.
func (s *FontSource) Name() string {
	return s.name
}

type faceKey struct {
	family string
	weight paint.Weight
	slant  paint.Slant
}

// FontBook maps family, weight and slant to a FontSource.
//
// Weights snap to regular (below 600) or bold. Lookups fall back from the
// exact style to the family's regular upright face, then to the default
// family. FontBook is safe for concurrent use.
type FontBook struct {
	mu            sync.RWMutex
	faces         map[faceKey]*FontSource
	defaultFamily string
}

// NewFontBook creates an empty font book whose fallback family is
// defaultFamily.
func NewFontBook(defaultFamily string) *FontBook {
	if defaultFamily == "" {
		defaultFamily = paint.DefaultFamily
	}
	return &FontBook{
		faces:         make(map[faceKey]*FontSource),
		defaultFamily: defaultFamily,
	}
}

var (
	defaultBookOnce sync.Once
	defaultBook     *FontBook
	errDefaultBook  error
)

// DefaultFontBook returns a shared book holding the Go fonts: family "Go"
// and "Go Mono", each in regular, bold, italic and bold italic.
func DefaultFontBook() (*FontBook, error) {
	defaultBookOnce.Do(func() {
		b := NewFontBook(paint.DefaultFamily)
		for _, f := range []struct {
			family string
			weight paint.Weight
			slant  paint.Slant
			data   []byte
		}{
			{paint.DefaultFamily, paint.WeightRegular, paint.SlantUpright, goregular.TTF},
			{paint.DefaultFamily, paint.WeightBold, paint.SlantUpright, gobold.TTF},
			{paint.DefaultFamily, paint.WeightRegular, paint.SlantItalic, goitalic.TTF},
			{paint.DefaultFamily, paint.WeightBold, paint.SlantItalic, gobolditalic.TTF},
			{MonoFamily, paint.WeightRegular, paint.SlantUpright, gomono.TTF},
			{MonoFamily, paint.WeightBold, paint.SlantUpright, gomonobold.TTF},
			{MonoFamily, paint.WeightRegular, paint.SlantItalic, gomonoitalic.TTF},
			{MonoFamily, paint.WeightBold, paint.SlantItalic, gomonobolditalic.TTF},
		} {
			src, err := NewFontSource(fmt.Sprintf("%s %d %d", f.family, f.weight, f.slant), f.data)
			if err != nil {
				errDefaultBook = err
				return
			}
			b.Register(f.family, f.weight, f.slant, src)
		}
		defaultBook = b
	})
	return defaultBook, errDefaultBook
}

// Register adds or replaces the face for family, weight and slant.
func (b *FontBook) Register(family string, w paint.Weight, s paint.Slant, src *FontSource) {
	if src == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faces[faceKey{family, snapWeight(w), s}] = src
}

// Len returns the number of registered faces.
func (b *FontBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.faces)
}

// Lookup resolves a face, falling back as described on FontBook.
func (b *FontBook) Lookup(family string, w paint.Weight, s paint.Slant) (*FontSource, error) {
	w = snapWeight(w)
	if family == "" {
		family = b.defaultFamily
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, k := range [...]faceKey{
		{family, w, s},
		{family, paint.WeightRegular, paint.SlantUpright},
		{b.defaultFamily, w, s},
		{b.defaultFamily, paint.WeightRegular, paint.SlantUpright},
	} {
		if src, ok := b.faces[k]; ok {
			return src, nil
		}
	}
	return nil, fmt.Errorf("%w: family %q", ErrNoFont, family)
}
