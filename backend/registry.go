package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/px"
)

// Backend name constants.
const (
	// BackendMemory is the name of the host-memory backend.
	BackendMemory = "memory"
	// BackendWGPU is the name of the Pure Go GPU backend (gogpu/wgpu).
	BackendWGPU = "wgpu"
	// BackendNoop is the name of the gogpu/wgpu backend on the HAL noop
	// device, which validates every call without a GPU.
	BackendNoop = "wgpu-noop"
)

// Factory opens a new backend instance.
type Factory func() (Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first that opens wins).
	backendPriority = []string{BackendWGPU, BackendMemory}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open opens the backend registered under name.
func Open(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrBackendNotAvailable, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackendNotAvailable, name, err)
	}
	return b, nil
}

// Default opens the best available backend based on priority.
// Priority order: wgpu > memory.
// A backend that fails to open is logged and skipped.
func Default() (Backend, error) {
	for _, name := range backendPriority {
		if !IsRegistered(name) {
			continue
		}
		b, err := Open(name)
		if err == nil {
			return b, nil
		}
		px.Logger().Warn("backend: falling back", "backend", name, "err", err)
	}
	return nil, ErrBackendNotAvailable
}

// MustDefault returns the default backend or panics.
func MustDefault() Backend {
	b, err := Default()
	if err != nil {
		panic(err)
	}
	return b
}
