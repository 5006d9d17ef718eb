package px

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"unsafe"

	"github.com/gogpu/px/internal/synced"
)

// Pixels is a 2D RGBA8 pixel buffer mirrored between CPU memory and a GPU
// texture.
//
// The CPU copy is a flat row-major array, top row first. It is only valid
// while the state reports a current CPU copy; the texture exists exactly
// when the state reports a GPU copy.
//
// Pixels is not safe for concurrent use.
type Pixels struct {
	size    Size
	state   synced.State
	texture TextureID
	array   []Color
	label   string
	upload  UploadMode
}

// New creates a CPU-resident buffer filled with Transparent.
func New(size Size, opts ...Option) *Pixels {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Pixels{
		size:   size,
		state:  synced.CPUOnly,
		array:  make([]Color, size.Area()),
		label:  o.label,
		upload: o.upload,
	}
}

// NewOnAccelerator creates a buffer that lives only in GPU memory.
// The texture is created immediately and the CPU copy stays empty until
// EnsureUpToDateOnCPU is called. acc must not be nil.
func NewOnAccelerator(acc Accelerator, size Size, opts ...Option) (*Pixels, error) {
	if acc == nil {
		panic("px: NewOnAccelerator requires an accelerator")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	tex, err := acc.CreateTexture(o.label, size.Width(), size.Height())
	if err != nil {
		return nil, fmt.Errorf("px: create texture: %w", err)
	}
	return &Pixels{
		size:    size,
		state:   synced.GPUOnly,
		texture: tex,
		label:   o.label,
		upload:  o.upload,
	}, nil
}

// Size returns the buffer dimensions.
func (p *Pixels) Size() Size { return p.size }

// Width returns the buffer width in pixels.
func (p *Pixels) Width() int { return p.size.Width() }

// Height returns the buffer height in pixels.
func (p *Pixels) Height() int { return p.size.Height() }

// Label returns the debug label.
func (p *Pixels) Label() string { return p.label }

// State returns where the buffer data currently lives.
func (p *Pixels) State() synced.State { return p.state }

// Texture returns the GPU texture, if one exists.
func (p *Pixels) Texture() (TextureID, bool) {
	return p.texture, p.texture != InvalidID
}

// Pixel returns the CPU color at pt. ok is false when pt is out of bounds.
// It panics if the CPU copy is missing or stale.
func (p *Pixels) Pixel(pt Point) (c Color, ok bool) {
	p.mustReadCPU("Pixel")
	if !p.size.Contains(pt) {
		return Transparent, false
	}
	return p.array[pt.Y*p.size.Width()+pt.X], true
}

// Row returns CPU row y, which aliases the buffer storage. Writes through
// the slice are not tracked. Row returns nil when y is out of range and
// panics if the CPU copy is missing or stale.
func (p *Pixels) Row(y int) []Color {
	p.mustReadCPU("Row")
	if y < 0 || y >= p.size.Height() {
		return nil
	}
	w := p.size.Width()
	return p.array[y*w : (y+1)*w : (y+1)*w]
}

// WritePixel writes a single pixel on the preferred side.
//
// Out-of-bounds coordinates are silently ignored. A CPU write never fails
// and acc may be nil. A GPU write is queued on acc and becomes visible with
// the next submission; it panics if acc is nil.
func (p *Pixels) WritePixel(acc Accelerator, pt Point, c Color) error {
	if !p.size.Contains(pt) {
		return nil
	}
	if p.state.PrefersWritingToCPU() {
		p.array[pt.Y*p.size.Width()+pt.X] = c
		p.state.CPUWasUpdated()
		return nil
	}

	tex := p.mustTexture(acc, "WritePixel")
	data := [4]byte{c.R, c.G, c.B, c.A}
	if err := acc.WriteTexture(tex, Region{X: pt.X, Y: pt.Y, Width: 1, Height: 1}, data[:]); err != nil {
		return fmt.Errorf("px: write pixel: %w", err)
	}
	p.state.GPUWasUpdated()
	return nil
}

// Clear fills the whole buffer with c on the preferred side.
func (p *Pixels) Clear(acc Accelerator, c Color) error {
	if p.state.PrefersWritingToCPU() {
		for i := range p.array {
			p.array[i] = c
		}
		p.state.CPUWasUpdated()
		return nil
	}

	tex := p.mustTexture(acc, "Clear")
	if !p.size.Empty() {
		fill := make([]Color, p.size.Area())
		for i := range fill {
			fill[i] = c
		}
		region := Region{Width: p.size.Width(), Height: p.size.Height()}
		if err := acc.WriteTexture(tex, region, colorBytes(fill)); err != nil {
			return fmt.Errorf("px: clear: %w", err)
		}
	}
	p.state.GPUWasUpdated()
	return nil
}

// EnsureUpToDateOnGPU pushes the CPU copy to the texture if the GPU copy is
// missing or stale, creating the texture on first use. The transfer is
// queued; NeedItNow also flushes acc.
//
// Afterwards both copies are identical and CPU writes remain preferred.
func (p *Pixels) EnsureUpToDateOnGPU(acc Accelerator, need NeedIt) error {
	if !p.state.NeedsGPUUpdate() {
		return nil
	}
	if acc == nil {
		panic("px: EnsureUpToDateOnGPU requires an accelerator")
	}

	created := false
	if p.texture == InvalidID {
		tex, err := acc.CreateTexture(p.label, p.size.Width(), p.size.Height())
		if err != nil {
			return fmt.Errorf("px: create texture: %w", err)
		}
		p.texture = tex
		created = true
	}

	if !p.size.Empty() {
		if err := p.uploadTo(acc); err != nil {
			if created {
				acc.DestroyTexture(p.texture)
				p.texture = InvalidID
			}
			return err
		}
	}
	p.state.CPUSynced()

	Logger().Debug("px: pixels uploaded",
		"label", p.label,
		"width", p.size.Width(),
		"height", p.size.Height(),
		"mode", p.upload,
	)

	if need == NeedItNow {
		if err := acc.Flush(); err != nil {
			return fmt.Errorf("px: flush: %w", err)
		}
	}
	return nil
}

func (p *Pixels) uploadTo(acc Accelerator) error {
	w, h := p.size.Width(), p.size.Height()
	if p.upload == UploadPerRow {
		for y := range h {
			row := p.array[y*w : (y+1)*w]
			if err := acc.WriteTexture(p.texture, Region{Y: y, Width: w, Height: 1}, colorBytes(row)); err != nil {
				return fmt.Errorf("px: upload row %d: %w", y, err)
			}
		}
		return nil
	}
	if err := acc.WriteTexture(p.texture, Region{Width: w, Height: h}, colorBytes(p.array)); err != nil {
		return fmt.Errorf("px: upload: %w", err)
	}
	return nil
}

// EnsureUpToDateOnCPU reads the texture back into CPU memory if the CPU
// copy is missing or stale. The read-back is synchronous.
//
// Afterwards both copies are identical and GPU writes remain preferred.
// On error the state is unchanged.
func (p *Pixels) EnsureUpToDateOnCPU(acc Accelerator) error {
	if !p.state.NeedsCPUUpdate() {
		return nil
	}
	tex := p.mustTexture(acc, "EnsureUpToDateOnCPU")

	data, err := acc.ReadTexture(tex)
	if err != nil {
		return fmt.Errorf("px: read texture: %w", err)
	}
	if want := p.size.Area() * 4; len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrReadbackSize, len(data), want)
	}

	array := make([]Color, p.size.Area())
	copy(colorBytes(array), data)
	p.array = array
	p.state.GPUSynced()

	Logger().Debug("px: pixels read back", "label", p.label, "bytes", len(data))
	return nil
}

// RenderTarget makes the texture current and returns it for use as a
// render pass target. The upload, if any, is queued ahead of the pass.
func (p *Pixels) RenderTarget(acc Accelerator) (TextureID, error) {
	if err := p.EnsureUpToDateOnGPU(acc, NeedItLater); err != nil {
		return InvalidID, err
	}
	return p.texture, nil
}

// DrawnOnGPU records that the texture was modified by GPU rendering.
// It panics if the CPU copy is ahead.
func (p *Pixels) DrawnOnGPU() {
	p.state.GPUWasUpdated()
}

// Release destroys the texture. A current CPU copy is kept and the buffer
// returns to CPU-only; if the GPU held the only current data, the buffer is
// reset to Transparent.
func (p *Pixels) Release(acc Accelerator) {
	if p.texture == InvalidID {
		return
	}
	if acc != nil {
		acc.DestroyTexture(p.texture)
	}
	p.texture = InvalidID

	if p.state.NeedsCPUUpdate() {
		Logger().Warn("px: released pixels held newer data on the GPU", "label", p.label)
		p.array = make([]Color, p.size.Area())
	}
	p.state = synced.CPUOnly
}

// ToImage copies the CPU data into an image.
// It panics if the CPU copy is missing or stale.
func (p *Pixels) ToImage() *image.NRGBA {
	p.mustReadCPU("ToImage")
	img := image.NewNRGBA(image.Rect(0, 0, p.size.Width(), p.size.Height()))
	copy(img.Pix, colorBytes(p.array))
	return img
}

// FromImage creates a CPU-resident buffer from an image.
func FromImage(img image.Image, opts ...Option) *Pixels {
	b := img.Bounds()
	p := New(Sz(b.Dx(), b.Dy()), opts...)
	w := p.size.Width()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.array[(y-b.Min.Y)*w+(x-b.Min.X)] = FromColor(img.At(x, y))
		}
	}
	return p
}

// SavePNG saves the CPU copy to a PNG file.
func (p *Pixels) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, p.ToImage()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (p *Pixels) mustReadCPU(op string) {
	if p.state.NeedsCPUUpdate() {
		panic(fmt.Sprintf("px: %s: CPU copy is %s; call EnsureUpToDateOnCPU first", op, p.state))
	}
}

func (p *Pixels) mustTexture(acc Accelerator, op string) TextureID {
	if acc == nil {
		panic(fmt.Sprintf("px: %s requires an accelerator", op))
	}
	if p.texture == InvalidID {
		panic(fmt.Sprintf("px: %s: no texture in state %s", op, p.state))
	}
	return p.texture
}

// colorBytes reinterprets colors as their RGBA8 bytes without copying.
func colorBytes(c []Color) []byte {
	if len(c) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&c[0])), len(c)*int(unsafe.Sizeof(Color{})))
}
