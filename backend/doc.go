// Package backend provides the pluggable document backend abstraction.
//
// A Backend decodes one family of document formats and opens documents as
// projektor.Document values. Several independent backends can be available
// at once; the viewer picks one by name at startup.
//
// # Backend Registration
//
// Backends are registered explicitly on a Registry. There is no init-time
// self registration: the set of backends is whatever the program puts into
// its registry, in that order.
//
//	reg := backend.NewRegistry()
//	reg.Register("MuPDF", func() backend.Backend { return mupdf.New() })
//	reg.Register("Scan", func() backend.Backend { return scan.New() })
//
// The builtin package builds the registry with every backend of this module.
//
// # Backend Selection
//
// Names are matched ignoring case. Default returns the first registered
// backend:
//
//	b, err := reg.Lookup("mupdf")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	doc, err := b.Open("paper.pdf")
//
// # Available Backends
//
//   - MuPDF: PDF, XPS, EPUB and CBZ via MuPDF (backend/mupdf)
//   - Vector: pure Go PDF content stream rasterizer (backend/vector)
//   - Scan: page images, directories and ZIP/CBZ archives (backend/scan)
package backend
