package glyph

import "errors"

// Sentinel errors for the glyph package.
var (
	// ErrInvalidText is returned for text that is not valid UTF-8.
	ErrInvalidText = errors.New("glyph: text is not valid UTF-8")

	// ErrInvalidSize is returned for a non-positive or non-finite text size.
	ErrInvalidSize = errors.New("glyph: invalid text size")

	// ErrInvalidScale is returned for a non-finite or non-positive scaleX or a
	// non-finite skewX.
	ErrInvalidScale = errors.New("glyph: invalid scale or skew")

	// ErrNoFont is returned when the font book has no face for a family.
	ErrNoFont = errors.New("glyph: no font available")

	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("glyph: empty font data")
)
