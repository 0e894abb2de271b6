// Package glyph caches rendered text and icons so that recurring labels
// never pay the shaping cost twice.
//
// The cache has three tiers, tried in order by Cache:
//
//  1. Atlas: a bounded vocabulary (distance and height labels, an item
//     catalog, icons at discrete sizes) prerendered once by BuildAtlas.
//     Immutable and never evicted.
//  2. ShapedCache: any other text, shaped with go-text/typesetting and
//     rasterized on first use, then kept in a bounded LRU with a periodic
//     staleness sweep.
//  3. Fallback: the surface's own text primitive, uncached. It always
//     succeeds, so invalid input degrades instead of failing.
//
// Entries are keyed by the text and every shape-affecting attribute (size,
// family, weight, slant, scaleX, skewX). Color and blend mode are applied at
// draw time, so labels differing only in color share one entry.
//
// Example:
//
//	book, _ := glyph.DefaultFontBook()
//	shaper := glyph.NewGoTextShaper(book)
//	atlas, _ := glyph.BuildAtlas(ctx, glyph.AtlasConfig{
//		Styles:      []glyph.Attributes{{Size: 14}},
//		MaxDistance: 500,
//	}, shaper)
//	cache := glyph.New(atlas, glyph.NewShapedCache(shaper, glyph.DefaultShapedConfig()))
//
//	cache.BeginFrame()
//	cache.Draw(surf, glyph.DistanceLabel(42), pos, textPaint)
package glyph
