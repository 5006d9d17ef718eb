// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/px"
)

// Accelerator errors.
var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("wgpu: accelerator is closed")

	// ErrNoDevice is returned when a nil device or queue is wrapped.
	ErrNoDevice = errors.New("wgpu: device is nil")

	// ErrBackendUnavailable is returned when no Vulkan backend is registered.
	ErrBackendUnavailable = errors.New("wgpu: vulkan backend not available")

	// ErrNoAdapter is returned when the instance exposes no adapters.
	ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

	// ErrProvider is returned when a device provider does not expose HAL types.
	ErrProvider = errors.New("wgpu: provider does not expose HAL types")

	// ErrShaderCompile is returned when WGSL fails to compile.
	ErrShaderCompile = errors.New("wgpu: shader compilation failed")

	// ErrUnsupportedBinding is returned for texture and sampler bindings.
	ErrUnsupportedBinding = errors.New("wgpu: texture and sampler bindings are not supported")

	// ErrRegion is returned when a write region is outside the texture or
	// does not match the data length.
	ErrRegion = errors.New("wgpu: invalid texture region")

	// ErrTimeout is returned when a submission does not complete in time.
	ErrTimeout = errors.New("wgpu: timed out waiting for GPU")
)

// submitTimeout bounds every wait on submitted work.
var submitTimeout = 5 * time.Second

// Polling backoff while waiting for a submission index.
const (
	pollMinBackoff = 50 * time.Microsecond
	pollMaxBackoff = 2 * time.Millisecond
)

type texture struct {
	label         string
	width, height int
	raw           hal.Texture
	view          hal.TextureView
}

type buffer struct {
	label string
	usage px.BufferUsage
	size  uint64
	raw   hal.Buffer
}

// Accelerator implements px.Accelerator using gogpu/wgpu/hal directly.
//
// Accelerator is safe for concurrent use. Resource maps are protected by
// a mutex; HAL calls run outside the lock where the resource is already
// resolved.
type Accelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     GPUInfo
	external bool
	noop     bool
	closed   bool

	nextID atomic.Uint64

	textures map[px.TextureID]*texture
	buffers  map[px.BufferID]*buffer
	modules  map[px.ShaderModuleID]hal.ShaderModule

	pipelines *pipelineCache
}

var _ px.Accelerator = (*Accelerator)(nil)

func newAccelerator(device hal.Device, queue hal.Queue) *Accelerator {
	return &Accelerator{
		device:    device,
		queue:     queue,
		external:  true,
		textures:  make(map[px.TextureID]*texture),
		buffers:   make(map[px.BufferID]*buffer),
		modules:   make(map[px.ShaderModuleID]hal.ShaderModule),
		pipelines: newPipelineCache(),
	}
}

// Info describes the device in use.
func (a *Accelerator) Info() GPUInfo { return a.info }

// PipelineStats returns hit and miss counts of the render pipeline cache.
func (a *Accelerator) PipelineStats() (hits, misses uint64) {
	return a.pipelines.Stats()
}

func (a *Accelerator) newID() uint64 {
	return a.nextID.Add(1)
}

// CreateTexture implements px.Accelerator. A texture with an empty size is
// backed by a 1x1 allocation so that it can still be bound.
func (a *Accelerator) CreateTexture(label string, width, height int) (px.TextureID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return px.InvalidID, ErrClosed
	}

	raw, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: extent(width), Height: extent(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return px.InvalidID, fmt.Errorf("wgpu: create texture %s: %w", label, err)
	}
	view, err := a.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		a.device.DestroyTexture(raw)
		return px.InvalidID, fmt.Errorf("wgpu: create texture view %s: %w", label, err)
	}

	id := px.TextureID(a.newID())
	a.textures[id] = &texture{label: label, width: width, height: height, raw: raw, view: view}
	px.Logger().Debug("wgpu: texture created", "label", label, "id", id, "width", width, "height", height)
	return id, nil
}

// WriteTexture implements px.Accelerator.
func (a *Accelerator) WriteTexture(id px.TextureID, r px.Region, data []byte) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	tex, ok := a.textures[id]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("texture %d: %w", id, px.ErrUnknownResource)
	}
	if r.X < 0 || r.Y < 0 || r.Width < 0 || r.Height < 0 ||
		r.X+r.Width > tex.width || r.Y+r.Height > tex.height {
		return fmt.Errorf("%w: %+v in %dx%d", ErrRegion, r, tex.width, tex.height)
	}
	if len(data) != r.Width*r.Height*4 {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrRegion, len(data), r.Width, r.Height)
	}
	if r.Width == 0 || r.Height == 0 {
		return nil
	}

	w, h := uint32(r.Width), uint32(r.Height) //nolint:gosec // bounded by texture size
	err := a.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex.raw,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(r.X), Y: uint32(r.Y), Z: 0}, //nolint:gosec // checked non-negative
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture %s: %w", tex.label, err)
	}
	return nil
}

// DestroyTexture implements px.Accelerator.
func (a *Accelerator) DestroyTexture(id px.TextureID) {
	a.mu.Lock()
	tex, ok := a.textures[id]
	delete(a.textures, id)
	a.mu.Unlock()

	if ok {
		a.destroyTexture(tex)
	}
}

func (a *Accelerator) destroyTexture(tex *texture) {
	a.device.DestroyTextureView(tex.view)
	a.device.DestroyTexture(tex.raw)
}

// CreateBuffer implements px.Accelerator.
func (a *Accelerator) CreateBuffer(label string, usage px.BufferUsage, data []byte) (px.BufferID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return px.InvalidID, ErrClosed
	}

	size := bufferSize(len(data))
	raw, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: halBufferUsage(usage),
	})
	if err != nil {
		return px.InvalidID, fmt.Errorf("wgpu: create buffer %s: %w", label, err)
	}
	if len(data) > 0 {
		if pad := int(size) - len(data); pad > 0 {
			data = append(append(make([]byte, 0, size), data...), make([]byte, pad)...)
		}
		if err := a.queue.WriteBuffer(raw, 0, data); err != nil {
			a.device.DestroyBuffer(raw)
			return px.InvalidID, fmt.Errorf("wgpu: write buffer %s: %w", label, err)
		}
	}

	id := px.BufferID(a.newID())
	a.buffers[id] = &buffer{label: label, usage: usage, size: size, raw: raw}
	return id, nil
}

// DestroyBuffer implements px.Accelerator.
func (a *Accelerator) DestroyBuffer(id px.BufferID) {
	a.mu.Lock()
	buf, ok := a.buffers[id]
	delete(a.buffers, id)
	a.mu.Unlock()

	if ok {
		a.device.DestroyBuffer(buf.raw)
	}
}

// CompileShader implements px.Accelerator. The WGSL is compiled to SPIR-V
// with naga and the words are handed to the device.
func (a *Accelerator) CompileShader(label, source string) (px.ShaderModuleID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return px.InvalidID, ErrClosed
	}

	spirv, err := naga.Compile(source)
	if err != nil {
		return px.InvalidID, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}
	module, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirvWords(spirv)},
	})
	if err != nil {
		return px.InvalidID, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}

	id := px.ShaderModuleID(a.newID())
	a.modules[id] = module
	px.Logger().Debug("wgpu: shader compiled", "label", label, "id", id, "spirv_bytes", len(spirv))
	return id, nil
}

// Flush implements px.Accelerator by submitting an empty command buffer
// and waiting for it, which orders it after every queued write and pass.
func (a *Accelerator) Flush() error {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return ErrClosed
	}

	encoder, err := a.beginEncoder("px_flush")
	if err != nil {
		return err
	}
	return a.submitAndWait(encoder)
}

// Close releases every resource created by the accelerator, then the
// device and instance if the accelerator owns them. Close is idempotent.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true

	a.pipelines.DestroyAll(a.device)
	for id, tex := range a.textures {
		a.destroyTexture(tex)
		delete(a.textures, id)
	}
	for id, buf := range a.buffers {
		a.device.DestroyBuffer(buf.raw)
		delete(a.buffers, id)
	}
	for id, m := range a.modules {
		a.device.DestroyShaderModule(m)
		delete(a.modules, id)
	}

	if !a.external {
		a.device.Destroy()
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.queue = nil
	a.instance = nil
	px.Logger().Info("wgpu: accelerator closed", "gpu", a.info.String())
}

// beginEncoder creates a command encoder and begins recording.
func (a *Accelerator) beginEncoder(label string) (hal.CommandEncoder, error) {
	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	return encoder, nil
}

// submitAndWait ends encoding, submits the command buffer and blocks until
// the queue reports its submission index as completed. The command buffer
// is freed only once the GPU is done with it.
func (a *Accelerator) submitAndWait(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}

	index, err := a.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		a.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := a.waitSubmission(index); err != nil {
		return err
	}
	a.device.FreeCommandBuffer(cmdBuf)
	return nil
}

// waitSubmission polls the queue until every submission up to index has
// completed, backing off between polls.
func (a *Accelerator) waitSubmission(index uint64) error {
	deadline := time.Now().Add(submitTimeout)
	backoff := pollMinBackoff
	for a.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrTimeout, index, submitTimeout)
		}
		time.Sleep(backoff)
		backoff = min(backoff*2, pollMaxBackoff)
	}
	return nil
}

func (a *Accelerator) lookupTexture(id px.TextureID) (*texture, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}
	tex, ok := a.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", id, px.ErrUnknownResource)
	}
	return tex, nil
}

// halBufferUsage maps px usages to HAL usages. Every buffer is a copy
// destination so that its initial contents can be written.
func halBufferUsage(u px.BufferUsage) gputypes.BufferUsage {
	usage := gputypes.BufferUsageCopyDst
	if u&px.BufferUsageVertex != 0 {
		usage |= gputypes.BufferUsageVertex
	}
	if u&px.BufferUsageUniform != 0 {
		usage |= gputypes.BufferUsageUniform
	}
	return usage
}

// bufferSize rounds n up to a whole number of 4-byte words, with a
// minimum of one word.
func bufferSize(n int) uint64 {
	if n <= 0 {
		return 4
	}
	return uint64((n + 3) &^ 3)
}

// extent clamps a texture dimension to at least one pixel.
func extent(n int) uint32 {
	if n < 1 {
		return 1
	}
	return uint32(n) //nolint:gosec // texture dimensions fit uint32
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}
