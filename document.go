package projektor

// Document is one open document owned by a render backend.
//
// A Document exclusively owns its decoder handle and context. It is not safe
// for concurrent use; the Viewer drives it from a single goroutine. After
// Close the Document must not be used.
type Document interface {
	// Description returns the last computed description. It never fails.
	Description() Description

	// Render rasterizes the 1-based page at the given zoom factor into a new
	// surface. Out-of-range pages and decoder failures return an error
	// matching ErrRenderFailed; the document stays usable afterwards.
	// Rendering the same page at the same zoom twice yields Equal surfaces.
	Render(page int, zoom float64) (*Surface, error)

	// Close releases the document handle and then the decoder context.
	Close() error
}

// Opener opens documents. backend.Backend satisfies it.
type Opener interface {
	Open(path string) (Document, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Document, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Document, error) { return f(path) }
