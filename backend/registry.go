package backend

import (
	"fmt"
	"sync"

	"golang.org/x/text/cases"

	"github.com/gogpu/projektor"
)

// Registry maps backend names to factories.
//
// A Registry is built once at startup with explicit Register calls and is
// read-only afterwards. Lookups ignore case. The first registered backend is
// the default.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	index   map[string]int
}

type entry struct {
	name    string
	factory Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// foldName returns the case-insensitive key for name. A new Caser is created
// per call because Casers are not safe for concurrent use.
func foldName(name string) string {
	return cases.Fold().String(name)
}

// Register adds a backend factory under name.
//
// Register panics if:
//   - name is empty
//   - factory is nil
//   - a backend with the same name (ignoring case) is already registered
//
// This ensures that mistakes in the static backend set are caught at
// startup rather than silently overwriting backends.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		panic("backend: Register name is empty")
	}
	if factory == nil {
		panic("backend: Register factory is nil")
	}
	key := foldName(name)
	if _, dup := r.index[key]; dup {
		panic("backend: Register called twice for " + name)
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, entry{name: name, factory: factory})
}

// Lookup creates the backend registered under name, ignoring case.
// Unknown names return an error matching ErrUnknownBackend.
func (r *Registry) Lookup(name string) (Backend, error) {
	r.mu.RLock()
	i, ok := r.index[foldName(name)]
	var f Factory
	if ok {
		f = r.entries[i].factory
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, name)
	}
	return f(), nil
}

// Default creates the first registered backend.
func (r *Registry) Default() (Backend, error) {
	r.mu.RLock()
	if len(r.entries) == 0 {
		r.mu.RUnlock()
		return nil, ErrNoBackends
	}
	f := r.entries[0].factory
	r.mu.RUnlock()
	return f(), nil
}

// Names returns the registered names in registration order, as given to
// Register.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered,
// ignoring case.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[foldName(name)]
	return ok
}

// Resolve returns the canonical spelling of name, or the default backend's
// name when name is empty.
func (r *Registry) Resolve(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		if len(r.entries) == 0 {
			return "", ErrNoBackends
		}
		return r.entries[0].name, nil
	}
	i, ok := r.index[foldName(name)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownBackend, name)
	}
	return r.entries[i].name, nil
}

// Open opens path with the named backend, or with the default backend when
// name is empty.
func (r *Registry) Open(name, path string) (projektor.Document, error) {
	var (
		b   Backend
		err error
	)
	if name == "" {
		b, err = r.Default()
	} else {
		b, err = r.Lookup(name)
	}
	if err != nil {
		return nil, err
	}
	return b.Open(path)
}
