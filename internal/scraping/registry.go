package scraping

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrNilBackend       = errors.New("backend cannot be nil")
	ErrEmptyBackendName = errors.New("backend name cannot be empty")
	ErrDuplicateBackend = errors.New("duplicate backend name")
)

// Registry holds the fixed set of backends, in registration order.
type Registry struct {
	backends []Backend
	active   []Backend
}

// NewRegistry creates a registry. Backends that failed to initialize are kept
// for reporting but never returned by Active.
func NewRegistry(logger *zap.Logger, backends ...Backend) (*Registry, error) {
	seen := make(map[string]struct{}, len(backends))
	r := &Registry{
		backends: make([]Backend, 0, len(backends)),
		active:   make([]Backend, 0, len(backends)),
	}

	for _, b := range backends {
		if b == nil {
			return nil, ErrNilBackend
		}
		name := strings.TrimSpace(b.Name())
		if name == "" {
			return nil, ErrEmptyBackendName
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBackend, name)
		}
		seen[key] = struct{}{}

		r.backends = append(r.backends, b)
		if b.Initialized() {
			r.active = append(r.active, b)
		} else {
			logger.Debug("Backend not initialized, excluding", zap.String("backend", name))
		}
	}

	return r, nil
}

// Usable reports whether at least one backend is initialized
func (r *Registry) Usable() bool {
	return len(r.active) > 0
}

// Active returns the initialized backends in registration order
func (r *Registry) Active() []Backend {
	active := make([]Backend, len(r.active))
	copy(active, r.active)
	return active
}

// All returns every registered backend, initialized or not
func (r *Registry) All() []Backend {
	all := make([]Backend, len(r.backends))
	copy(all, r.backends)
	return all
}
