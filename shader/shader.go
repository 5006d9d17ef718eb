package shader

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/px"
)

var (
	// ErrNoTexture is returned when textured globals are drawn without pixels.
	ErrNoTexture = errors.New("shader: textured globals have no pixels")

	// ErrAcceleratorKey is returned when an accelerator cannot key the
	// module cache: it is not comparable and does not implement px.CacheKeyer.
	ErrAcceleratorKey = errors.New("shader: accelerator is not comparable")
)

// Option configures a Shader.
type Option func(*config)

type config struct {
	label string
}

// WithLabel sets the debug label used for the shader module and the
// buffers of its draws.
func WithLabel(label string) Option {
	return func(c *config) {
		c.label = label
	}
}

// Shader is a WGSL program generated from vertex type V, fragment type F
// and globals type G.
//
// The source and vertex layout are generated on first use and the module
// is compiled once per accelerator. Later draws reuse both. Shader is safe
// for concurrent use.
type Shader[V, F Variables, G Globals] struct {
	label  string
	bodies Bodies

	mu       sync.Mutex
	built    bool
	source   string
	layout   gputypes.VertexBufferLayout
	buildErr error
	modules  map[any]px.ShaderModuleID
}

// New returns a shader with the given entry point bodies. Nothing is
// generated or compiled until the shader is first used.
func New[V, F Variables, G Globals](bodies Bodies, opts ...Option) *Shader[V, F, G] {
	c := config{label: "px_shader"}
	for _, opt := range opts {
		opt(&c)
	}
	return &Shader[V, F, G]{
		label:   c.label,
		bodies:  bodies,
		modules: make(map[any]px.ShaderModuleID),
	}
}

// Label returns the debug label.
func (s *Shader[V, F, G]) Label() string { return s.label }

// build generates source and layout once. Generation is deterministic, so
// a failure is cached too. Callers hold s.mu.
func (s *Shader[V, F, G]) build() error {
	if s.built {
		return s.buildErr
	}
	s.built = true

	var g G
	if err := validateSlots(g); err != nil {
		s.buildErr = err
		return err
	}
	src, err := Source[V, F, G](s.bodies)
	if err != nil {
		s.buildErr = err
		return err
	}
	layout, err := VertexLayout[V]()
	if err != nil {
		s.buildErr = err
		return err
	}
	s.source = src
	s.layout = layout

	px.Logger().Debug("shader: generated",
		"label", s.label,
		"bytes", len(src),
		"stride", layout.ArrayStride,
		"attributes", len(layout.Attributes),
	)
	return nil
}

// Source returns the generated WGSL program.
func (s *Shader[V, F, G]) Source() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.build(); err != nil {
		return "", err
	}
	return s.source, nil
}

// Layout returns the vertex buffer layout of V.
func (s *Shader[V, F, G]) Layout() (gputypes.VertexBufferLayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.build(); err != nil {
		return gputypes.VertexBufferLayout{}, err
	}
	return s.layout, nil
}

// Module returns the compiled module for acc, compiling it on first use.
// Compilation failures are not cached.
func (s *Shader[V, F, G]) Module(acc px.Accelerator) (px.ShaderModuleID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.build(); err != nil {
		return px.InvalidID, err
	}
	key, err := cacheKey(acc)
	if err != nil {
		return px.InvalidID, err
	}
	if id, ok := s.modules[key]; ok {
		return id, nil
	}
	id, err := acc.CompileShader(s.label, s.source)
	if err != nil {
		return px.InvalidID, fmt.Errorf("shader: compile %s: %w", s.label, err)
	}
	s.modules[key] = id
	px.Logger().Debug("shader: compiled", "label", s.label, "module", id)
	return id, nil
}

// Compiled reports whether a module for acc is cached.
func (s *Shader[V, F, G]) Compiled(acc px.Accelerator) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, err := cacheKey(acc)
	if err != nil {
		return false
	}
	_, ok := s.modules[key]
	return ok
}

// cacheKey returns the module cache key for acc.
func cacheKey(acc px.Accelerator) (any, error) {
	var key any = acc
	if k, ok := acc.(px.CacheKeyer); ok {
		key = k.CacheKey()
	}
	if key == nil || !reflect.TypeOf(key).Comparable() {
		return nil, fmt.Errorf("%w: %T", ErrAcceleratorKey, acc)
	}
	return key, nil
}

// Shading binds vertices and global values to the shader.
func (s *Shader[V, F, G]) Shading(vertices []V, globals G) *Shading[V, F, G] {
	return &Shading[V, F, G]{shader: s, vertices: vertices, Globals: globals}
}

// Shading is a shader with its vertices and global values specified.
// Globals may be changed between draws; vertices are uploaded on every
// draw.
type Shading[V, F Variables, G Globals] struct {
	shader   *Shader[V, F, G]
	vertices []V
	Globals  G
}

// Shader returns the shader this shading draws with.
func (sh *Shading[V, F, G]) Shader() *Shader[V, F, G] { return sh.shader }

// VertexCount returns the number of vertices drawn.
func (sh *Shading[V, F, G]) VertexCount() int { return len(sh.vertices) }

// Record records one draw into pass. It compiles the shader if needed,
// uploads vertices and uniform values, and makes a bound texture current
// on the GPU before the draw is recorded. Drawing no vertices is a no-op.
func (sh *Shading[V, F, G]) Record(acc px.Accelerator, pass px.RenderPass) error {
	if len(sh.vertices) == 0 {
		return nil
	}
	if err := ValidateGlobals(sh.Globals); err != nil {
		return err
	}
	module, err := sh.shader.Module(acc)
	if err != nil {
		return err
	}
	layout, err := sh.shader.Layout()
	if err != nil {
		return err
	}

	label := sh.shader.label
	var owned []px.BufferID
	release := func() {
		for _, id := range owned {
			acc.DestroyBuffer(id)
		}
	}

	vbuf, err := acc.CreateBuffer(label+"_vertices", px.BufferUsageVertex, vertexBytes(sh.vertices))
	if err != nil {
		return fmt.Errorf("shader: create vertex buffer: %w", err)
	}
	owned = append(owned, vbuf)

	var bindings []px.Binding
	for _, v := range sh.Globals.List() {
		val, _ := sh.Globals.Value(v.Name())
		data := uniformBytes(val)
		buf, err := acc.CreateBuffer(label+"_"+v.Name(), px.BufferUsageUniform, data)
		if err != nil {
			release()
			return fmt.Errorf("shader: create uniform %s: %w", v.Name(), err)
		}
		owned = append(owned, buf)
		group, binding, _ := v.Location().GroupBinding()
		bindings = append(bindings, px.Binding{
			Group:   group,
			Binding: binding,
			Kind:    px.BindingUniform,
			Buffer:  buf,
			Size:    uint64(len(data)),
		})
	}

	if tg, ok := any(sh.Globals).(TexturedGlobals); ok {
		tb := tg.Texture()
		if tb.Pixels == nil {
			release()
			return fmt.Errorf("%w: %s", ErrNoTexture, tb.Name)
		}
		if err := tb.Pixels.EnsureUpToDateOnGPU(acc, px.NeedItLater); err != nil {
			release()
			return err
		}
		tex, _ := tb.Pixels.Texture()
		bindings = append(bindings,
			px.Binding{Group: tb.Group, Binding: tb.Binding, Kind: px.BindingTexture, Texture: tex},
			px.Binding{Group: tb.SamplerGroup, Binding: tb.SamplerBinding, Kind: px.BindingSampler, Sampler: tb.Sampler},
		)
	}

	cmd := &px.DrawCommand{
		Label:         label,
		Module:        module,
		VertexEntry:   VertexEntryPoint,
		FragmentEntry: FragmentEntryPoint,
		Layout:        layout,
		Vertices:      vbuf,
		VertexCount:   uint32(len(sh.vertices)),
		Bindings:      bindings,
	}
	if err := pass.Draw(cmd); err != nil {
		release()
		return fmt.Errorf("shader: draw %s: %w", label, err)
	}
	return nil
}

// vertexBytes reinterprets the vertex slice as bytes without copying.
// VertexLayout guarantees V has no padding or untracked fields.
func vertexBytes[V any](vs []V) []byte {
	if len(vs) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), len(vs)*int(unsafe.Sizeof(vs[0])))
}

// uniformBytes pads a value to the 16-byte granularity of uniform buffers.
func uniformBytes(v Value) []byte {
	b := v.Bytes()
	if pad := (16 - len(b)%16) % 16; pad > 0 {
		b = append(b, make([]byte, pad)...)
	}
	return b
}
