// Package scene draws onto pixel buffers through scoped render passes.
//
// A render pass exists only for the duration of a callback, so recorded
// draws can never outlive the pass or the buffers they reference:
//
//	bg := scene.New(px.Black)
//	err := bg.DrawOn(acc, target, func(d *scene.Drawer) error {
//		return d.Draw(triangle)
//	})
//
// A Scene can also retain drawables and replay them with Render.
package scene

import (
	"errors"
	"fmt"

	"github.com/gogpu/px"
)

// Drawable records draws into a render pass. *shader.Shading implements it.
type Drawable interface {
	Record(acc px.Accelerator, pass px.RenderPass) error
}

// DrawableFunc adapts a function to Drawable.
type DrawableFunc func(acc px.Accelerator, pass px.RenderPass) error

// Record calls f.
func (f DrawableFunc) Record(acc px.Accelerator, pass px.RenderPass) error {
	return f(acc, pass)
}

// Scene is a background color and an ordered list of retained drawables.
//
// An opaque background clears the target at the start of every pass.
// Otherwise the existing contents are kept and drawn over.
type Scene struct {
	Background px.Color
	Label      string

	items []Drawable

	// version is incremented on each modification for cache invalidation
	version uint64
}

// New creates an empty scene with the given background.
func New(background px.Color) *Scene {
	return &Scene{Background: background, Label: "px_scene"}
}

// Add appends drawables to the scene. Nil drawables are skipped.
func (s *Scene) Add(items ...Drawable) {
	for _, d := range items {
		if d != nil {
			s.items = append(s.items, d)
		}
	}
	s.version++
}

// Reset removes all drawables, keeping the background.
func (s *Scene) Reset() {
	clear(s.items)
	s.items = s.items[:0]
	s.version++
}

// Len returns the number of retained drawables.
func (s *Scene) Len() int { return len(s.items) }

// Version returns a counter that changes whenever the scene is modified.
func (s *Scene) Version() uint64 { return s.version }

// Render draws every retained drawable onto target in one pass.
func (s *Scene) Render(acc px.Accelerator, target *px.Pixels) error {
	return s.DrawOn(acc, target, func(d *Drawer) error {
		return d.Draw(s.items...)
	})
}

// DrawOn makes target current on the GPU, begins a render pass over it and
// calls fn with a Drawer for that pass. The pass is ended when fn returns,
// even if fn fails. Once the pass has been submitted and has cleared or
// drawn, target is marked as updated on the GPU.
func (s *Scene) DrawOn(acc px.Accelerator, target *px.Pixels, fn func(*Drawer) error) error {
	if acc == nil {
		panic("scene: DrawOn requires an accelerator")
	}
	tex, err := target.RenderTarget(acc)
	if err != nil {
		return fmt.Errorf("scene: render target: %w", err)
	}

	clearTarget := s.Background.IsOpaque()
	pass, err := acc.BeginRenderPass(px.RenderPassDesc{
		Label:      s.Label,
		Target:     tex,
		Clear:      clearTarget,
		ClearColor: s.Background,
	})
	if err != nil {
		return fmt.Errorf("scene: begin render pass: %w", err)
	}

	d := &Drawer{acc: acc, pass: pass}
	var drawErr error
	if fn != nil {
		drawErr = fn(d)
	}
	endErr := pass.End()
	if endErr != nil {
		endErr = fmt.Errorf("scene: end render pass: %w", endErr)
	}

	if endErr == nil && (clearTarget || d.draws > 0) {
		target.DrawnOnGPU()
	}
	px.Logger().Debug("scene: pass drawn",
		"label", s.Label,
		"draws", d.draws,
		"clear", clearTarget,
	)
	return errors.Join(drawErr, endErr)
}

// Drawer records drawables into the pass of a single DrawOn call.
// It must not be used after the callback returns.
type Drawer struct {
	acc   px.Accelerator
	pass  px.RenderPass
	draws int
}

// Accelerator returns the accelerator the pass runs on.
func (d *Drawer) Accelerator() px.Accelerator { return d.acc }

// Draws returns the number of drawables recorded so far.
func (d *Drawer) Draws() int { return d.draws }

// Draw records each drawable in order, stopping at the first error.
func (d *Drawer) Draw(items ...Drawable) error {
	for i, item := range items {
		if err := item.Record(d.acc, d.pass); err != nil {
			return fmt.Errorf("scene: drawable %d: %w", i, err)
		}
		d.draws++
	}
	return nil
}
