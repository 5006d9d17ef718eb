package backend

import (
	"errors"

	"github.com/gogpu/px"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot open a device.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend is an accelerator that can be selected by name.
//
// Backends must be registered via Register() and are opened via Open()
// or Default(). The caller owns the returned backend and must Close it.
type Backend interface {
	px.Accelerator

	// Name returns the backend identifier (e.g., "memory", "wgpu").
	Name() string

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()
}
