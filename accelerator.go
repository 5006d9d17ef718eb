package px

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Resource IDs
//
// These opaque IDs represent GPU resources owned by an Accelerator. Each
// implementation maintains the mapping between IDs and backend resources.

// TextureID is an opaque handle to an RGBA8 texture.
type TextureID uint64

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// InvalidID is the zero value, representing an absent resource.
const InvalidID = 0

var (
	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("px: unknown GPU resource")

	// ErrReadbackSize is returned when a texture read-back does not match
	// the buffer dimensions.
	ErrReadbackSize = errors.New("px: texture read-back size mismatch")
)

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageVertex marks a per-vertex attribute buffer.
	BufferUsageVertex BufferUsage = 1 << iota

	// BufferUsageUniform marks a uniform buffer.
	BufferUsageUniform
)

// Region is a rectangular area of a texture, in pixels.
type Region struct {
	X, Y          int
	Width, Height int
}

// RegionOf returns a region covering the rectangle.
func RegionOf(r Rect) Region {
	s := r.Size()
	return Region{X: r.Min.X, Y: r.Min.Y, Width: s.Width(), Height: s.Height()}
}

// Sampler selects how a bound texture is filtered.
type Sampler uint8

const (
	// SamplerNearest grabs the nearest pixel, without interpolation.
	SamplerNearest Sampler = iota

	// SamplerInterpolate interpolates linearly between pixels.
	SamplerInterpolate
)

// BindingKind identifies the resource attached at a group/binding pair.
type BindingKind uint8

const (
	// BindingUniform attaches a uniform buffer.
	BindingUniform BindingKind = iota

	// BindingTexture attaches a sampled 2D texture.
	BindingTexture

	// BindingSampler attaches a sampler.
	BindingSampler
)

// Binding attaches one resource to a shader group/binding slot.
type Binding struct {
	Group   uint16
	Binding uint16
	Kind    BindingKind

	// Buffer and Size are set for BindingUniform.
	Buffer BufferID
	Size   uint64

	// Texture is set for BindingTexture.
	Texture TextureID

	// Sampler is set for BindingSampler.
	Sampler Sampler
}

// DrawCommand is a single triangle-list draw.
//
// Once Draw succeeds, the render pass owns the command's vertex and
// uniform buffers and destroys them after End. If Draw fails, the caller
// keeps ownership.
type DrawCommand struct {
	Label string

	Module        ShaderModuleID
	VertexEntry   string
	FragmentEntry string

	Layout      gputypes.VertexBufferLayout
	Vertices    BufferID
	VertexCount uint32

	Bindings []Binding
}

// RenderPassDesc describes a render pass over a single color target.
type RenderPassDesc struct {
	Label  string
	Target TextureID

	// Clear replaces the target contents with ClearColor when the pass
	// begins. Otherwise the existing contents are loaded.
	Clear      bool
	ClearColor Color
}

// CacheKeyer is implemented by accelerators whose identity is not their
// Go value. Caches of per-accelerator resources, such as compiled shader
// modules, key on CacheKey instead of the accelerator. The key must be
// comparable and must change whenever previously issued IDs become invalid.
type CacheKeyer interface {
	CacheKey() any
}

// RenderPass records draws until End submits them.
type RenderPass interface {
	Draw(cmd *DrawCommand) error
	End() error
}

// Accelerator is the GPU service used by Pixels, shaders and scenes.
//
// An Accelerator is created once by the host application and passed by
// reference into every operation that needs the GPU. Writes are queued in
// submission order, so a texture write followed by a draw that samples the
// texture needs no extra synchronization.
type Accelerator interface {
	// CreateTexture creates an RGBA8 texture usable as copy source and
	// destination, sampled texture and render target.
	CreateTexture(label string, width, height int) (TextureID, error)

	// WriteTexture queues a write of tightly packed RGBA8 rows
	// (region.Width*4 bytes each) into the region.
	WriteTexture(id TextureID, region Region, data []byte) error

	// ReadTexture reads the whole texture back as tightly packed rows.
	// It blocks until all queued work affecting the texture is complete.
	ReadTexture(id TextureID) ([]byte, error)

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)

	// CreateBuffer creates a buffer initialized with data.
	CreateBuffer(label string, usage BufferUsage, data []byte) (BufferID, error)

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// CompileShader compiles WGSL source into a module.
	CompileShader(label, source string) (ShaderModuleID, error)

	// BeginRenderPass starts a render pass targeting a texture.
	BeginRenderPass(desc RenderPassDesc) (RenderPass, error)

	// Flush submits all queued work and waits for it to complete.
	Flush() error
}
