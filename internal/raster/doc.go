// Package raster turns PDF-style path construction into anti-aliased pixels.
//
// Paths are built in device space from lines and Bezier curves, flattened to
// polygons on the fly, and filled with golang.org/x/image/vector. Strokes are
// expanded into filled outlines first.
//
// # Stroke Expansion
//
// A stroke is converted to a set of filled polygons:
//   - one quadrilateral per flattened segment
//   - a join polygon (miter, bevel or round) between adjacent segments
//   - caps at both ends of open subpaths
//
// Every polygon is emitted with the same orientation, so overlapping pieces
// accumulate coverage instead of cancelling each other out.
package raster
