// Package fakeaccel provides an in-memory px.Accelerator.
//
// Textures are plain byte slices, so writes, clears and read-backs behave
// like a real device. Draw commands are recorded but not rasterized.
// Tests use it directly; the memory backend wraps it for GPU-less hosts.
package fakeaccel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/px"
)

// ErrInjected is a convenient error for failure injection.
var ErrInjected = errors.New("fakeaccel: injected failure")

// Call is one recorded accelerator call.
type Call struct {
	Op     string
	ID     uint64
	Region px.Region
	Bytes  int
}

// Texture is the backing store of a fake texture.
type Texture struct {
	Label         string
	Width, Height int
	Data          []byte
}

// Buffer is the backing store of a fake buffer.
type Buffer struct {
	Label string
	Usage px.BufferUsage
	Data  []byte
}

// Accelerator is a recording px.Accelerator.
// The Fail* fields make the corresponding call return that error.
type Accelerator struct {
	mu sync.Mutex

	nextID   uint64
	textures map[px.TextureID]*Texture
	buffers  map[px.BufferID]*Buffer
	modules  map[px.ShaderModuleID]string

	calls   []Call
	draws   []px.DrawCommand
	passes  []px.RenderPassDesc
	flushes int

	FailCreateTexture error
	FailWriteTexture  error
	FailReadTexture   error
	FailCreateBuffer  error
	FailCompile       error
	FailBeginPass     error
	FailDraw          error
	FailFlush         error

	// TruncateReads drops this many bytes from every read-back.
	TruncateReads int
}

var _ px.Accelerator = (*Accelerator)(nil)

// New returns an empty fake accelerator.
func New() *Accelerator {
	return &Accelerator{
		textures: make(map[px.TextureID]*Texture),
		buffers:  make(map[px.BufferID]*Buffer),
		modules:  make(map[px.ShaderModuleID]string),
	}
}

func (a *Accelerator) newID() uint64 {
	a.nextID++
	return a.nextID
}

func (a *Accelerator) record(c Call) {
	a.calls = append(a.calls, c)
}

// CreateTexture implements px.Accelerator.
func (a *Accelerator) CreateTexture(label string, width, height int) (px.TextureID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailCreateTexture != nil {
		return px.InvalidID, a.FailCreateTexture
	}
	if width < 0 || height < 0 {
		return px.InvalidID, fmt.Errorf("fakeaccel: invalid texture size %dx%d", width, height)
	}
	id := px.TextureID(a.newID())
	a.textures[id] = &Texture{Label: label, Width: width, Height: height, Data: make([]byte, width*height*4)}
	a.record(Call{Op: "CreateTexture", ID: uint64(id), Region: px.Region{Width: width, Height: height}})
	return id, nil
}

// WriteTexture implements px.Accelerator.
func (a *Accelerator) WriteTexture(id px.TextureID, r px.Region, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailWriteTexture != nil {
		return a.FailWriteTexture
	}
	tex, ok := a.textures[id]
	if !ok {
		return fmt.Errorf("texture %d: %w", id, px.ErrUnknownResource)
	}
	if r.X < 0 || r.Y < 0 || r.Width < 0 || r.Height < 0 || r.X+r.Width > tex.Width || r.Y+r.Height > tex.Height {
		return fmt.Errorf("fakeaccel: region %+v outside %dx%d texture", r, tex.Width, tex.Height)
	}
	rowBytes := r.Width * 4
	if len(data) != rowBytes*r.Height {
		return fmt.Errorf("fakeaccel: got %d bytes for %dx%d region", len(data), r.Width, r.Height)
	}
	for y := range r.Height {
		dst := ((r.Y+y)*tex.Width + r.X) * 4
		copy(tex.Data[dst:dst+rowBytes], data[y*rowBytes:])
	}
	a.record(Call{Op: "WriteTexture", ID: uint64(id), Region: r, Bytes: len(data)})
	return nil
}

// ReadTexture implements px.Accelerator.
func (a *Accelerator) ReadTexture(id px.TextureID) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailReadTexture != nil {
		return nil, a.FailReadTexture
	}
	tex, ok := a.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", id, px.ErrUnknownResource)
	}
	n := max(len(tex.Data)-a.TruncateReads, 0)
	out := make([]byte, n)
	copy(out, tex.Data)
	a.record(Call{Op: "ReadTexture", ID: uint64(id), Bytes: n})
	return out, nil
}

// DestroyTexture implements px.Accelerator.
func (a *Accelerator) DestroyTexture(id px.TextureID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.textures[id]; ok {
		delete(a.textures, id)
		a.record(Call{Op: "DestroyTexture", ID: uint64(id)})
	}
}

// CreateBuffer implements px.Accelerator.
func (a *Accelerator) CreateBuffer(label string, usage px.BufferUsage, data []byte) (px.BufferID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailCreateBuffer != nil {
		return px.InvalidID, a.FailCreateBuffer
	}
	id := px.BufferID(a.newID())
	a.buffers[id] = &Buffer{Label: label, Usage: usage, Data: append([]byte(nil), data...)}
	a.record(Call{Op: "CreateBuffer", ID: uint64(id), Bytes: len(data)})
	return id, nil
}

// DestroyBuffer implements px.Accelerator.
func (a *Accelerator) DestroyBuffer(id px.BufferID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyBuffer(id)
}

func (a *Accelerator) destroyBuffer(id px.BufferID) {
	if _, ok := a.buffers[id]; ok {
		delete(a.buffers, id)
		a.record(Call{Op: "DestroyBuffer", ID: uint64(id)})
	}
}

// CompileShader implements px.Accelerator.
func (a *Accelerator) CompileShader(label, source string) (px.ShaderModuleID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailCompile != nil {
		return px.InvalidID, a.FailCompile
	}
	id := px.ShaderModuleID(a.newID())
	a.modules[id] = source
	a.record(Call{Op: "CompileShader", ID: uint64(id), Bytes: len(source)})
	return id, nil
}

// BeginRenderPass implements px.Accelerator. A clearing pass fills the
// target immediately.
func (a *Accelerator) BeginRenderPass(desc px.RenderPassDesc) (px.RenderPass, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailBeginPass != nil {
		return nil, a.FailBeginPass
	}
	tex, ok := a.textures[desc.Target]
	if !ok {
		return nil, fmt.Errorf("render target %d: %w", desc.Target, px.ErrUnknownResource)
	}
	if desc.Clear {
		c := desc.ClearColor
		for i := 0; i < len(tex.Data); i += 4 {
			tex.Data[i], tex.Data[i+1], tex.Data[i+2], tex.Data[i+3] = c.R, c.G, c.B, c.A
		}
	}
	a.passes = append(a.passes, desc)
	a.record(Call{Op: "BeginRenderPass", ID: uint64(desc.Target)})
	return &pass{acc: a}, nil
}

// Flush implements px.Accelerator.
func (a *Accelerator) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailFlush != nil {
		return a.FailFlush
	}
	a.flushes++
	a.record(Call{Op: "Flush"})
	return nil
}

type pass struct {
	acc   *Accelerator
	owned []px.BufferID
	ended bool
}

func (p *pass) Draw(cmd *px.DrawCommand) error {
	a := p.acc
	a.mu.Lock()
	defer a.mu.Unlock()
	if p.ended {
		return errors.New("fakeaccel: draw after End")
	}
	if a.FailDraw != nil {
		return a.FailDraw
	}
	if _, ok := a.modules[cmd.Module]; !ok {
		return fmt.Errorf("shader module %d: %w", cmd.Module, px.ErrUnknownResource)
	}
	ids := []px.BufferID{cmd.Vertices}
	for _, b := range cmd.Bindings {
		switch b.Kind {
		case px.BindingUniform:
			ids = append(ids, b.Buffer)
		case px.BindingTexture:
			if _, ok := a.textures[b.Texture]; !ok {
				return fmt.Errorf("bound texture %d: %w", b.Texture, px.ErrUnknownResource)
			}
		}
	}
	for _, id := range ids {
		if _, ok := a.buffers[id]; !ok {
			return fmt.Errorf("buffer %d: %w", id, px.ErrUnknownResource)
		}
	}
	p.owned = append(p.owned, ids...)
	a.draws = append(a.draws, *cmd)
	a.record(Call{Op: "Draw", ID: uint64(cmd.Module)})
	return nil
}

func (p *pass) End() error {
	a := p.acc
	a.mu.Lock()
	defer a.mu.Unlock()
	if p.ended {
		return errors.New("fakeaccel: render pass already ended")
	}
	p.ended = true
	for _, id := range p.owned {
		a.destroyBuffer(id)
	}
	a.record(Call{Op: "EndRenderPass"})
	return nil
}

// Texture returns the backing store of a live texture.
func (a *Accelerator) Texture(id px.TextureID) (*Texture, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.textures[id]
	return t, ok
}

// Buffer returns the backing store of a live buffer.
func (a *Accelerator) Buffer(id px.BufferID) (*Buffer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buffers[id]
	return b, ok
}

// Module returns the source of a compiled module.
func (a *Accelerator) Module(id px.ShaderModuleID) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.modules[id]
	return s, ok
}

// LiveBuffers returns the number of buffers not yet destroyed.
func (a *Accelerator) LiveBuffers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffers)
}

// LiveTextures returns the number of textures not yet destroyed.
func (a *Accelerator) LiveTextures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.textures)
}

// Calls returns a copy of every recorded call, optionally filtered by op.
func (a *Accelerator) Calls(ops ...string) []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []Call
	for _, c := range a.calls {
		if len(ops) == 0 || contains(ops, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

// Draws returns the recorded draw commands.
func (a *Accelerator) Draws() []px.DrawCommand {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]px.DrawCommand(nil), a.draws...)
}

// Passes returns the descriptors of every render pass begun.
func (a *Accelerator) Passes() []px.RenderPassDesc {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]px.RenderPassDesc(nil), a.passes...)
}

// Flushes returns how many times Flush succeeded.
func (a *Accelerator) Flushes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flushes
}

// ResetCalls clears the call log.
func (a *Accelerator) ResetCalls() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = nil
}

func contains(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}
