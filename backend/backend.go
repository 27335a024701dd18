package backend

import (
	"errors"

	"github.com/gogpu/projektor"
)

// Common backend errors.
var (
	// ErrUnknownBackend is returned when a requested backend is not registered.
	ErrUnknownBackend = errors.New("backend: unknown backend")

	// ErrNoBackends is returned by Default when nothing is registered.
	ErrNoBackends = errors.New("backend: no backends registered")
)

// Backend decodes one family of document formats.
//
// Open creates an independent projektor.Document per call; a Backend itself
// holds no per-document state and may be shared. Open must not partially
// succeed: on failure every resource it created is released and the error
// matches projektor.ErrOpenFailed.
type Backend interface {
	// Name returns the backend identifier (e.g., "MuPDF", "Scan").
	Name() string

	// Open opens the document at path.
	Open(path string) (projektor.Document, error)
}

// Factory creates a new backend instance.
type Factory func() Backend
