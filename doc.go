// Package projektor is the core of a paged document viewer.
//
// # Overview
//
// Projektor renders pages of a paginated document (PDF, XPS, scanned page
// sets) into pixel surfaces at a zoom factor, and keeps the navigation state
// of a viewer: current page, zoom and scroll offset.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/projektor"
//	    "github.com/gogpu/projektor/backend/builtin"
//	)
//
//	reg := builtin.NewRegistry(builtin.Config{})
//	b, err := reg.Lookup("mupdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v := projektor.NewViewer(projektor.WithViewport(800, 577))
//	if err := v.Open(b, "paper.pdf"); err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	v.GotoPage(1)
//	v.SetOptimalZoom()
//	v.Surface().SavePNG("page1.png")
//
// # Architecture
//
// The module is organized into:
//   - Public API: Surface, Format, Description, Document, Viewer, Presenter
//   - Backends: backend (interface and registry), backend/mupdf,
//     backend/vector, backend/scan, backend/builtin
//   - Internal: raster (path flattening, stroking, filling), termview
//     (terminal presenter and key map)
//
// # Navigation
//
// Every mutating Viewer call clamps its argument (pages into [1, N], zoom
// into [0.25, 2.5], scroll into [0, max]) and renders only when the clamped
// value differs from the current one. Rendering is synchronous. A failed
// render leaves the previous surface displayed and sets an error flag that
// the next successful render clears.
//
// # Coordinate System
//
// Surfaces use image coordinates: origin at the top-left, X right, Y down.
// Scroll offsets are measured in surface pixels from that origin.
package projektor

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
