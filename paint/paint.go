package paint

import (
	"image/color"
)

// Category is the closed set of pooled paint kinds.
type Category uint8

const (
	// CategoryStroke is for outlines, lines and points.
	CategoryStroke Category = iota
	// CategoryFill is for filled shapes.
	CategoryFill
	// CategoryText is for labels and icons.
	CategoryText

	numCategories = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStroke:
		return "stroke"
	case CategoryFill:
		return "fill"
	case CategoryText:
		return "text"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	return c < numCategories
}

// Mode selects whether a shape is filled, stroked, or both.
type Mode uint8

const (
	// ModeFill fills the shape interior.
	ModeFill Mode = iota
	// ModeStroke strokes the shape outline.
	ModeStroke
	// ModeFillAndStroke fills and then strokes.
	ModeFillAndStroke
)

// BlendMode specifies how source and destination colors are combined.
type BlendMode uint8

const (
	// BlendSourceOver is the default Porter-Duff source-over mode.
	BlendSourceOver BlendMode = iota
	// BlendAdd adds source to destination (glow effects).
	BlendAdd
	// BlendMultiply multiplies source and destination colors.
	BlendMultiply
	// BlendScreen is the inverse of multiply.
	BlendScreen
	// BlendCopy replaces destination with source.
	BlendCopy
)

// LineCap specifies the shape of line endpoints.
type LineCap uint8

const (
	// CapButt specifies a flat line cap.
	CapButt LineCap = iota
	// CapRound specifies a rounded line cap.
	CapRound
	// CapSquare specifies a square line cap.
	CapSquare
)

// Weight is a font weight on the usual 100..900 scale.
type Weight uint16

const (
	// WeightRegular is the normal text weight.
	WeightRegular Weight = 400
	// WeightBold is the bold text weight.
	WeightBold Weight = 700
)

// Slant selects upright or italic faces.
type Slant uint8

const (
	// SlantUpright selects upright faces.
	SlantUpright Slant = iota
	// SlantItalic selects italic faces.
	SlantItalic
)

// Align is horizontal text alignment relative to the draw position.
type Align uint8

const (
	// AlignLeft places the draw position at the left edge of the text.
	AlignLeft Align = iota
	// AlignCenter centers the text on the draw position.
	AlignCenter
	// AlignRight places the draw position at the right edge of the text.
	AlignRight
)

// DefaultFamily is the font family text paints start with.
const DefaultFamily = "Go"

// Effect is a shader, color filter or image filter attached to a paint.
// Pools detach effects on return so no reference leaks to the next borrower.
type Effect interface {
	EffectName() string
}

// Paint is a mutable, pooled style object. Borrow one from a Pool, set the
// fields you need, draw, and return it. Every field is reset to its
// category default on return.
type Paint struct {
	category Category
	pooled   bool

	Color       color.RGBA
	Mode        Mode
	StrokeWidth float32
	Cap         LineCap
	Blend       BlendMode
	Antialias   bool
	Effect      Effect

	TextSize float32
	Family   string
	Weight   Weight
	Slant    Slant
	ScaleX   float32
	SkewX    float32
	Align    Align
}

// New creates an unpooled paint holding the defaults of c.
// An invalid category yields a stroke paint.
func New(c Category) *Paint {
	p := &Paint{}
	p.resetTo(c)
	return p
}

// Category returns the category the paint belongs to.
func (p *Paint) Category() Category {
	return p.category
}

// resetTo overwrites every field with the defaults of c.
func (p *Paint) resetTo(c Category) {
	if !c.Valid() {
		c = CategoryStroke
	}
	pooled := p.pooled
	*p = defaults[c]
	p.pooled = pooled
}

// defaults holds the canonical state of each category.
var defaults = [numCategories]Paint{
	CategoryStroke: {
		category:    CategoryStroke,
		Color:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Mode:        ModeStroke,
		StrokeWidth: 1,
		Cap:         CapRound,
		Blend:       BlendSourceOver,
		Antialias:   true,
		TextSize:    12,
		Family:      DefaultFamily,
		Weight:      WeightRegular,
		ScaleX:      1,
	},
	CategoryFill: {
		category:  CategoryFill,
		Color:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Mode:      ModeFill,
		Cap:       CapButt,
		Blend:     BlendSourceOver,
		Antialias: true,
		TextSize:  12,
		Family:    DefaultFamily,
		Weight:    WeightRegular,
		ScaleX:    1,
	},
	CategoryText: {
		category:  CategoryText,
		Color:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Mode:      ModeFill,
		Cap:       CapButt,
		Blend:     BlendSourceOver,
		Antialias: true,
		TextSize:  14,
		Family:    DefaultFamily,
		Weight:    WeightRegular,
		Slant:     SlantUpright,
		ScaleX:    1,
		Align:     AlignLeft,
	},
}

// Default returns a copy of the canonical state for c.
func Default(c Category) Paint {
	if !c.Valid() {
		c = CategoryStroke
	}
	return defaults[c]
}

// IsDefault reports whether every mutable property equals the category default.
func (p *Paint) IsDefault() bool {
	if p.Effect != nil || !p.category.Valid() {
		return false
	}
	d := defaults[p.category]
	d.pooled = p.pooled
	return *p == d
}

// Key returns the batching-relevant projection of the paint.
func (p *Paint) Key() StyleKey {
	k := StyleKey{
		Color: p.Color,
		Blend: p.Blend,
		Mode:  p.Mode,
	}
	if p.Mode != ModeFill {
		k.WidthBucket = WidthBucket(p.StrokeWidth)
	}
	return k
}

// TextStyle returns the text-relevant projection of the paint.
func (p *Paint) TextStyle() TextStyle {
	return TextStyle{
		Color:  p.Color,
		Blend:  p.Blend,
		Size:   p.TextSize,
		Family: p.Family,
		Weight: p.Weight,
		Slant:  p.Slant,
		ScaleX: p.ScaleX,
		SkewX:  p.SkewX,
		Align:  p.Align,
	}
}
