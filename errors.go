package projektor

import (
	"errors"
	"fmt"
)

// Error kinds reported at the document boundary.
var (
	// ErrOpenFailed is matched by every error returned from a failed open:
	// bad path, corrupt or unsupported document, decoder allocation failure.
	ErrOpenFailed = errors.New("projektor: cannot open document")

	// ErrRenderFailed is matched by every error returned from a failed render.
	// The document stays usable for other pages.
	ErrRenderFailed = errors.New("projektor: cannot render page")

	// ErrClosed is returned when a document is used after Close.
	ErrClosed = errors.New("projektor: document closed")

	// ErrNoDocument is returned by viewer operations before a document is open.
	ErrNoDocument = errors.New("projektor: no document")

	// ErrAlreadyOpen is returned by Viewer.Open when a document is open.
	ErrAlreadyOpen = errors.New("projektor: document already open")
)

// OpenError describes a failed open.
type OpenError struct {
	Backend string
	Path    string
	Err     error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("projektor: %s: cannot open %q: %v", e.Backend, e.Path, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *OpenError) Unwrap() error { return e.Err }

// Is reports whether target is ErrOpenFailed.
func (e *OpenError) Is(target error) bool { return target == ErrOpenFailed }

// RenderError describes a failed render of one page at one zoom factor.
type RenderError struct {
	Backend string
	Page    int
	Zoom    float64
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("projektor: %s: cannot render page %d at zoom %.2f: %v", e.Backend, e.Page, e.Zoom, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *RenderError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRenderFailed.
func (e *RenderError) Is(target error) bool { return target == ErrRenderFailed }
