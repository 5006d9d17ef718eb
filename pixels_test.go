package px_test

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/px"
	"github.com/gogpu/px/internal/fakeaccel"
	"github.com/gogpu/px/internal/synced"
)

func TestNewIsTransparentOnCPU(t *testing.T) {
	p := px.New(px.Sz(8, 4))
	if p.State() != synced.CPUOnly {
		t.Errorf("State() = %s, want CPUOnly", p.State())
	}
	if _, ok := p.Texture(); ok {
		t.Error("new pixels should not have a texture")
	}
	for y := range p.Height() {
		row := p.Row(y)
		if len(row) != 8 {
			t.Fatalf("len(Row(%d)) = %d, want 8", y, len(row))
		}
		for x, c := range row {
			if c != px.Transparent {
				t.Fatalf("pixel (%d,%d) = %v, want transparent", x, y, c)
			}
		}
	}
}

func TestNewClampsNegativeSize(t *testing.T) {
	p := px.New(px.Sz(-3, 2))
	if p.Width() != 0 || p.Height() != 2 {
		t.Errorf("size = %dx%d, want 0x2", p.Width(), p.Height())
	}
	if err := p.WritePixel(nil, px.Pt(0, 0), px.White); err != nil {
		t.Errorf("WritePixel on empty buffer = %v", err)
	}
}

func TestNewOnAccelerator(t *testing.T) {
	acc := fakeaccel.New()
	p, err := px.NewOnAccelerator(acc, px.Sz(3, 2), px.WithLabel("gpu"))
	if err != nil {
		t.Fatalf("NewOnAccelerator() = %v", err)
	}
	if p.State() != synced.GPUOnly {
		t.Errorf("State() = %s, want GPUOnly", p.State())
	}
	id, ok := p.Texture()
	if !ok {
		t.Fatal("expected a texture")
	}
	tex, _ := acc.Texture(id)
	if tex.Width != 3 || tex.Height != 2 || tex.Label != "gpu" {
		t.Errorf("texture = %dx%d %q", tex.Width, tex.Height, tex.Label)
	}
}

func TestNewOnAcceleratorError(t *testing.T) {
	acc := fakeaccel.New()
	acc.FailCreateTexture = fakeaccel.ErrInjected
	_, err := px.NewOnAccelerator(acc, px.Sz(1, 1))
	if !errors.Is(err, fakeaccel.ErrInjected) {
		t.Errorf("err = %v, want injected", err)
	}
}

func TestNewOnAcceleratorNilPanics(t *testing.T) {
	mustPanic(t, "requires an accelerator", func() {
		_, _ = px.NewOnAccelerator(nil, px.Sz(1, 1))
	})
}

func TestWritePixelOutOfBoundsIgnored(t *testing.T) {
	acc := fakeaccel.New()
	cpu := px.New(px.Sz(4, 4))
	gpu, err := px.NewOnAccelerator(acc, px.Sz(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	acc.ResetCalls()

	oob := []px.Point{{X: -1, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 4}, {X: 100, Y: 100}}
	for _, pt := range oob {
		if err := cpu.WritePixel(acc, pt, px.White); err != nil {
			t.Errorf("cpu WritePixel(%v) = %v", pt, err)
		}
		if err := gpu.WritePixel(acc, pt, px.White); err != nil {
			t.Errorf("gpu WritePixel(%v) = %v", pt, err)
		}
	}
	if cpu.State() != synced.CPUOnly || gpu.State() != synced.GPUOnly {
		t.Errorf("states changed: %s, %s", cpu.State(), gpu.State())
	}
	if n := len(acc.Calls()); n != 0 {
		t.Errorf("accelerator saw %d calls, want 0", n)
	}
	for y := range 4 {
		for _, c := range cpu.Row(y) {
			if c != px.Transparent {
				t.Fatal("out-of-bounds write modified data")
			}
		}
	}
}

func TestWritePixelCPURoundTrip(t *testing.T) {
	p := px.New(px.Sz(5, 5))
	c := px.RGBA(1, 2, 3, 4)
	if err := p.WritePixel(nil, px.Pt(2, 3), c); err != nil {
		t.Fatal(err)
	}
	got, ok := p.Pixel(px.Pt(2, 3))
	if !ok || got != c {
		t.Errorf("Pixel() = %v, %v, want %v", got, ok, c)
	}
	if p.Row(3)[2] != c {
		t.Error("Row does not reflect the write")
	}
	if _, ok := p.Pixel(px.Pt(5, 0)); ok {
		t.Error("Pixel out of bounds should report false")
	}
}

func TestWritePixelGPURoundTrip(t *testing.T) {
	acc := fakeaccel.New()
	p, err := px.NewOnAccelerator(acc, px.Sz(4, 3))
	if err != nil {
		t.Fatal(err)
	}
	c := px.RGB(200, 100, 50)
	if err := p.WritePixel(acc, px.Pt(1, 2), c); err != nil {
		t.Fatal(err)
	}
	if p.State() != synced.GPUOnly {
		t.Errorf("State() = %s, want GPUOnly", p.State())
	}
	writes := acc.Calls("WriteTexture")
	if len(writes) != 1 {
		t.Fatalf("WriteTexture calls = %d, want 1", len(writes))
	}
	if want := (px.Region{X: 1, Y: 2, Width: 1, Height: 1}); writes[0].Region != want {
		t.Errorf("region = %+v, want %+v", writes[0].Region, want)
	}

	if err := p.EnsureUpToDateOnCPU(acc); err != nil {
		t.Fatalf("EnsureUpToDateOnCPU() = %v", err)
	}
	if p.State() != synced.GPUPreferred {
		t.Errorf("State() = %s, want GPUPreferred", p.State())
	}
	got, ok := p.Pixel(px.Pt(1, 2))
	if !ok || got != c {
		t.Errorf("Pixel() = %v, want %v", got, c)
	}
}

func TestWritePixelGPUError(t *testing.T) {
	acc := fakeaccel.New()
	p, err := px.NewOnAccelerator(acc, px.Sz(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	acc.FailWriteTexture = fakeaccel.ErrInjected
	if err := p.WritePixel(acc, px.Pt(0, 0), px.White); !errors.Is(err, fakeaccel.ErrInjected) {
		t.Errorf("err = %v, want injected", err)
	}
}

func TestWritePixelGPUWithoutAcceleratorPanics(t *testing.T) {
	p, err := px.NewOnAccelerator(fakeaccel.New(), px.Sz(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	mustPanic(t, "requires an accelerator", func() {
		_ = p.WritePixel(nil, px.Pt(0, 0), px.White)
	})
}

func TestEnsureUpToDateOnGPU(t *testing.T) {
	tests := []struct {
		name       string
		mode       px.UploadMode
		need       px.NeedIt
		wantWrites int
		wantFlush  int
	}{
		{"flattened later", px.UploadFlattened, px.NeedItLater, 1, 0},
		{"flattened now", px.UploadFlattened, px.NeedItNow, 1, 1},
		{"per row", px.UploadPerRow, px.NeedItLater, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := fakeaccel.New()
			p := px.New(px.Sz(2, 3), px.WithUploadMode(tt.mode))
			c := px.RGB(9, 8, 7)
			_ = p.WritePixel(nil, px.Pt(1, 2), c)

			if err := p.EnsureUpToDateOnGPU(acc, tt.need); err != nil {
				t.Fatal(err)
			}
			if p.State() != synced.CPUPreferred {
				t.Errorf("State() = %s, want CPUPreferred", p.State())
			}
			if got := len(acc.Calls("WriteTexture")); got != tt.wantWrites {
				t.Errorf("WriteTexture calls = %d, want %d", got, tt.wantWrites)
			}
			if acc.Flushes() != tt.wantFlush {
				t.Errorf("Flushes() = %d, want %d", acc.Flushes(), tt.wantFlush)
			}

			id, _ := p.Texture()
			tex, _ := acc.Texture(id)
			off := (2*2 + 1) * 4
			if got := tex.Data[off : off+4]; got[0] != 9 || got[1] != 8 || got[2] != 7 || got[3] != 255 {
				t.Errorf("texture pixel = %v", got)
			}

			// Already current: no further transfers.
			acc.ResetCalls()
			if err := p.EnsureUpToDateOnGPU(acc, px.NeedItLater); err != nil {
				t.Fatal(err)
			}
			if n := len(acc.Calls()); n != 0 {
				t.Errorf("second sync made %d calls", n)
			}
		})
	}
}

func TestEnsureUpToDateOnGPUReusesTexture(t *testing.T) {
	acc := fakeaccel.New()
	p := px.New(px.Sz(2, 2))
	if err := p.EnsureUpToDateOnGPU(acc, px.NeedItLater); err != nil {
		t.Fatal(err)
	}
	first, _ := p.Texture()

	// CPUPreferred -> CPUAhead after writing the CPU side again.
	_ = p.WritePixel(nil, px.Pt(0, 0), px.White)
	if p.State() != synced.CPUAhead {
		t.Fatalf("State() = %s, want CPUAhead", p.State())
	}
	if err := p.EnsureUpToDateOnGPU(acc, px.NeedItLater); err != nil {
		t.Fatal(err)
	}
	second, _ := p.Texture()
	if first != second {
		t.Errorf("texture replaced: %d -> %d", first, second)
	}
	if n := len(acc.Calls("CreateTexture")); n != 1 {
		t.Errorf("CreateTexture calls = %d, want 1", n)
	}
}

func TestEnsureUpToDateOnGPUEmpty(t *testing.T) {
	acc := fakeaccel.New()
	p := px.New(px.Sz(0, 0))
	if err := p.EnsureUpToDateOnGPU(acc, px.NeedItLater); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Texture(); !ok {
		t.Error("texture should exist after sync")
	}
	if n := len(acc.Calls("WriteTexture")); n != 0 {
		t.Errorf("WriteTexture calls = %d, want 0", n)
	}
}

func TestEnsureUpToDateOnGPUErrors(t *testing.T) {
	acc := fakeaccel.New()
	acc.FailCreateTexture = fakeaccel.ErrInjected
	p := px.New(px.Sz(1, 1))
	if err := p.EnsureUpToDateOnGPU(acc, px.NeedItLater); !errors.Is(err, fakeaccel.ErrInjected) {
		t.Errorf("create err = %v", err)
	}
	if p.State() != synced.CPUOnly {
		t.Errorf("State() = %s after failure", p.State())
	}

	acc = fakeaccel.New()
	acc.FailWriteTexture = fakeaccel.ErrInjected
	if err := p.EnsureUpToDateOnGPU(acc, px.NeedItLater); !errors.Is(err, fakeaccel.ErrInjected) {
		t.Errorf("write err = %v", err)
	}
	if p.State() != synced.CPUOnly {
		t.Errorf("State() = %s after failure", p.State())
	}

	acc = fakeaccel.New()
	acc.FailFlush = fakeaccel.ErrInjected
	p = px.New(px.Sz(1, 1))
	if err := p.EnsureUpToDateOnGPU(acc, px.NeedItNow); !errors.Is(err, fakeaccel.ErrInjected) {
		t.Errorf("flush err = %v", err)
	}
}

func TestEnsureUpToDateOnGPUNilAcceleratorPanics(t *testing.T) {
	p := px.New(px.Sz(1, 1))
	mustPanic(t, "requires an accelerator", func() {
		_ = p.EnsureUpToDateOnGPU(nil, px.NeedItLater)
	})
}

func TestEnsureUpToDateOnCPUNoop(t *testing.T) {
	p := px.New(px.Sz(2, 2))
	if err := p.EnsureUpToDateOnCPU(nil); err != nil {
		t.Errorf("EnsureUpToDateOnCPU on CPU-only pixels = %v", err)
	}
}

func TestEnsureUpToDateOnCPUShortRead(t *testing.T) {
	acc := fakeaccel.New()
	p, err := px.NewOnAccelerator(acc, px.Sz(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	acc.TruncateReads = 4
	if err := p.EnsureUpToDateOnCPU(acc); !errors.Is(err, px.ErrReadbackSize) {
		t.Errorf("err = %v, want ErrReadbackSize", err)
	}
	if p.State() != synced.GPUOnly {
		t.Errorf("State() = %s, want GPUOnly", p.State())
	}

	acc.TruncateReads = 0
	acc.FailReadTexture = fakeaccel.ErrInjected
	if err := p.EnsureUpToDateOnCPU(acc); !errors.Is(err, fakeaccel.ErrInjected) {
		t.Errorf("err = %v, want injected", err)
	}
}

func TestStaleCPUReadPanics(t *testing.T) {
	p, err := px.NewOnAccelerator(fakeaccel.New(), px.Sz(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	mustPanic(t, "EnsureUpToDateOnCPU", func() { _, _ = p.Pixel(px.Pt(0, 0)) })
	mustPanic(t, "EnsureUpToDateOnCPU", func() { _ = p.Row(0) })
	mustPanic(t, "EnsureUpToDateOnCPU", func() { _ = p.ToImage() })
}

func TestWritesFollowPreferredSide(t *testing.T) {
	acc := fakeaccel.New()
	p := px.New(px.Sz(2, 2))
	if err := p.EnsureUpToDateOnGPU(acc, px.NeedItLater); err != nil {
		t.Fatal(err)
	}

	// The texture is drawn to by the GPU; from now on writes go there.
	p.DrawnOnGPU()
	if p.State() != synced.GPUAhead {
		t.Fatalf("State() = %s, want GPUAhead", p.State())
	}
	acc.ResetCalls()
	if err := p.WritePixel(acc, px.Pt(0, 1), px.White); err != nil {
		t.Fatal(err)
	}
	if n := len(acc.Calls("WriteTexture")); n != 1 {
		t.Errorf("GPU-preferred write made %d texture writes", n)
	}

	if err := p.EnsureUpToDateOnCPU(acc); err != nil {
		t.Fatal(err)
	}
	if c, _ := p.Pixel(px.Pt(0, 1)); c != px.White {
		t.Errorf("Pixel() = %v after read-back", c)
	}

	// GPUPreferred: the next write still targets the GPU.
	acc.ResetCalls()
	_ = p.WritePixel(acc, px.Pt(1, 1), px.Black)
	if p.State() != synced.GPUAhead || len(acc.Calls("WriteTexture")) != 1 {
		t.Errorf("state %s after GPU-preferred write", p.State())
	}
}

func TestClear(t *testing.T) {
	acc := fakeaccel.New()

	cpu := px.New(px.Sz(3, 2))
	if err := cpu.Clear(nil, px.White); err != nil {
		t.Fatal(err)
	}
	if c, _ := cpu.Pixel(px.Pt(2, 1)); c != px.White {
		t.Errorf("CPU clear: %v", c)
	}

	gpu, err := px.NewOnAccelerator(acc, px.Sz(3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if err := gpu.Clear(acc, px.RGB(1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	if err := gpu.EnsureUpToDateOnCPU(acc); err != nil {
		t.Fatal(err)
	}
	if c, _ := gpu.Pixel(px.Pt(0, 0)); c != px.RGB(1, 2, 3) {
		t.Errorf("GPU clear: %v", c)
	}
}

func TestRenderTargetAndRelease(t *testing.T) {
	acc := fakeaccel.New()
	p := px.New(px.Sz(2, 2))
	_ = p.WritePixel(nil, px.Pt(0, 0), px.White)

	id, err := p.RenderTarget(acc)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Texture(); got != id {
		t.Errorf("RenderTarget() = %d, Texture() = %d", id, got)
	}

	p.Release(acc)
	if _, ok := p.Texture(); ok {
		t.Error("texture should be gone after Release")
	}
	if acc.LiveTextures() != 0 {
		t.Errorf("LiveTextures() = %d", acc.LiveTextures())
	}
	if p.State() != synced.CPUOnly {
		t.Errorf("State() = %s, want CPUOnly", p.State())
	}
	if c, _ := p.Pixel(px.Pt(0, 0)); c != px.White {
		t.Error("Release dropped a current CPU copy")
	}

	g, err := px.NewOnAccelerator(acc, px.Sz(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	g.Release(acc)
	if c, _ := g.Pixel(px.Pt(1, 1)); c != px.Transparent {
		t.Errorf("released GPU-only pixels = %v, want transparent", c)
	}
}

func TestImageRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 13, 12))
	img.Set(11, 11, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	p := px.FromImage(img)
	if p.Width() != 3 || p.Height() != 2 {
		t.Fatalf("size = %dx%d", p.Width(), p.Height())
	}
	if c, _ := p.Pixel(px.Pt(1, 1)); c != px.RGB(10, 20, 30) {
		t.Errorf("Pixel() = %v", c)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := p.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := px.FromColor(decoded.At(1, 1)); got != px.RGB(10, 20, 30) {
		t.Errorf("decoded pixel = %v", got)
	}
}

func mustPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		var msg string
		switch v := r.(type) {
		case string:
			msg = v
		case error:
			msg = v.Error()
		}
		if !strings.Contains(msg, contains) {
			t.Errorf("panic %q does not contain %q", msg, contains)
		}
	}()
	fn()
}
