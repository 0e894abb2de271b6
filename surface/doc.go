// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface defines the drawing-surface abstraction the overlay renders
// into, plus two implementations used by tooling and tests.
//
// # Surface
//
// Surface exposes exactly the primitives the overlay needs: batched points and
// lines, individual circles, coverage masks (cached text), color images
// (icons), and an uncached text primitive of last resort. The host
// application supplies the production implementation.
//
// # Implementations
//
//   - Recorder records or counts calls; tests use it to check batching.
//   - ImageSurface rasterizes into an *image.RGBA with x/image/vector.
//
// Neither implementation is safe for concurrent use.
package surface
