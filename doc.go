// Package overlay is a performance layer for 2D overlays that redraw
// thousands of moving entities every frame.
//
// # Overview
//
// A frame has three costs worth removing: drawing entities nobody can see,
// issuing one draw call per primitive, and shaping the same labels again and
// again. The sub-packages each remove one:
//
//   - spatial: an R-tree over screen positions culls off-screen entities.
//   - batch: same-style points and lines are submitted in one call.
//   - glyph: text is prerendered (atlas), cached after first use (LRU), or
//     drawn by the surface as a last resort.
//   - paint: transient style objects are pooled so steady frames allocate
//     nothing.
//   - profile and bench measure the result.
//
// Pipeline wires them together for one render loop.
//
// # Quick Start
//
//	cfg, err := overlay.LoadConfig("overlay.toml")
//	p, err := overlay.New[EntityID](ctx, cfg)
//
//	p.Rebuild(entries, geom.Affine(zoom, zoom, -camX, -camY))
//
//	p.BeginFrame()
//	for _, id := range p.CullView() {
//		stroke := p.Paints().GetStroke()
//		stroke.Color = teamColor(id)
//		p.Batcher().AddPointPaint(pos(id), stroke)
//		p.Paints().ReturnStroke(stroke)
//	}
//	err = p.EndFrame(surf)
//
// # Coordinate System
//
// Screen coordinates, as every surface uses:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// # Logging
//
// Logging is silent until SetLogger is called.
package overlay

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
