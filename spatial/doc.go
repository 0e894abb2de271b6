// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package spatial provides an R-tree index over entity positions for
// per-frame viewport culling and radius queries.
//
// The index is rebuilt in bulk whenever the entity set changes materially:
//
//	idx := spatial.New[*Entity]()
//	idx.Rebuild(entries, worldToScreen)
//	visible := idx.QueryViewport(geom.RectXYWH(0, 0, 1920, 1080), 50)
//
// Every entity is stored as a small square envelope around its transformed
// position (see WithPointRadius). Viewport queries return entities whose
// envelope intersects the margin-expanded view, edges included. Radius queries
// use the tree as a rectangular pre-filter and then test exact distances.
//
// Queries cost O(log n + k); Rebuild costs O(n log n).
package spatial
