package backend

import (
	"github.com/gogpu/px/internal/fakeaccel"
)

// MemoryBackend keeps textures and buffers in host memory.
// Writes, clears and read-backs behave like a device; draws are
// recorded but not rasterized. It is always available.
type MemoryBackend struct {
	*fakeaccel.Accelerator
}

// init registers the memory backend on package import.
func init() {
	Register(BackendMemory, func() (Backend, error) {
		return NewMemoryBackend(), nil
	})
}

// NewMemoryBackend creates a new host-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{Accelerator: fakeaccel.New()}
}

// Name returns the backend identifier.
func (b *MemoryBackend) Name() string {
	return BackendMemory
}

// CacheKey identifies the current host-memory device. It changes on Close,
// so modules compiled before Close are not reused.
func (b *MemoryBackend) CacheKey() any {
	return b.Accelerator
}

// Close releases all textures and buffers.
func (b *MemoryBackend) Close() {
	b.Accelerator = fakeaccel.New()
}
