// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/px"
)

// errPassEnded is returned for draws after End and for a second End.
var errPassEnded = errors.New("wgpu: render pass already ended")

// renderPass records draws into one HAL render pass over a texture.
// It is not safe for concurrent use.
type renderPass struct {
	acc     *Accelerator
	label   string
	encoder hal.CommandEncoder
	rp      hal.RenderPassEncoder
	ended   bool

	draws      int
	owned      []px.BufferID
	bindGroups []hal.BindGroup
}

// BeginRenderPass implements px.Accelerator.
func (a *Accelerator) BeginRenderPass(desc px.RenderPassDesc) (px.RenderPass, error) {
	tex, err := a.lookupTexture(desc.Target)
	if err != nil {
		return nil, err
	}
	label := desc.Label
	if label == "" {
		label = "px_pass"
	}

	encoder, err := a.beginEncoder(label)
	if err != nil {
		return nil, err
	}

	load := gputypes.LoadOpLoad
	if desc.Clear {
		load = gputypes.LoadOpClear
	}
	r, g, b, alpha := desc.ClearColor.Floats()
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       tex.view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: r, G: g, B: b, A: alpha},
		}},
	})
	return &renderPass{acc: a, label: label, encoder: encoder, rp: rp}, nil
}

// Draw implements px.RenderPass. Resources are resolved and the pipeline
// and bind groups created before anything is recorded, so a failed draw
// leaves the pass unchanged and the buffers with the caller.
func (p *renderPass) Draw(cmd *px.DrawCommand) error {
	if p.ended {
		return errPassEnded
	}
	a := p.acc
	key, err := keyFor(cmd)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	module, ok := a.modules[cmd.Module]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("shader module %d: %w", cmd.Module, px.ErrUnknownResource)
	}
	vertices, ok := a.buffers[cmd.Vertices]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("vertex buffer %d: %w", cmd.Vertices, px.ErrUnknownResource)
	}
	uniforms := make([]*buffer, len(cmd.Bindings))
	for i, b := range cmd.Bindings {
		buf, ok := a.buffers[b.Buffer]
		if !ok {
			a.mu.Unlock()
			return fmt.Errorf("uniform buffer %d: %w", b.Buffer, px.ErrUnknownResource)
		}
		uniforms[i] = buf
	}
	device := a.device
	a.mu.Unlock()

	pipeline, err := a.pipelines.getOrCreate(device, module, &key)
	if err != nil {
		return err
	}

	groups := make([]hal.BindGroup, len(pipeline.groupLayouts))
	release := func() {
		for _, bg := range groups {
			if bg != nil {
				device.DestroyBindGroup(bg)
			}
		}
	}
	for group, layout := range pipeline.groupLayouts {
		var entries []gputypes.BindGroupEntry
		for i, b := range cmd.Bindings {
			if int(b.Group) != group {
				continue
			}
			size := b.Size
			if size == 0 || size > uniforms[i].size {
				size = uniforms[i].size
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding: uint32(b.Binding),
				Resource: gputypes.BufferBinding{
					Buffer: uniforms[i].raw.NativeHandle(), Offset: 0, Size: size,
				},
			})
		}
		bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s_group_%d", cmd.Label, group),
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			release()
			return fmt.Errorf("wgpu: create bind group %d: %w", group, err)
		}
		groups[group] = bg
	}

	p.rp.SetPipeline(pipeline.raw)
	for group, bg := range groups {
		p.rp.SetBindGroup(uint32(group), bg, nil) //nolint:gosec // group count is small
	}
	p.rp.SetVertexBuffer(0, vertices.raw, 0)
	p.rp.Draw(cmd.VertexCount, 1, 0, 0)

	p.draws++
	p.bindGroups = append(p.bindGroups, groups...)
	p.owned = append(p.owned, cmd.Vertices)
	for _, b := range cmd.Bindings {
		p.owned = append(p.owned, b.Buffer)
	}
	return nil
}

// End implements px.RenderPass. It submits the pass, waits for the GPU and
// releases the resources owned by its draws, also when submission fails.
func (p *renderPass) End() error {
	if p.ended {
		return errPassEnded
	}
	p.ended = true
	p.rp.End()

	err := p.acc.submitAndWait(p.encoder)

	for _, bg := range p.bindGroups {
		p.acc.device.DestroyBindGroup(bg)
	}
	for _, id := range p.owned {
		p.acc.DestroyBuffer(id)
	}
	p.bindGroups = nil
	p.owned = nil

	if err != nil {
		return fmt.Errorf("wgpu: render pass %s: %w", p.label, err)
	}
	px.Logger().Debug("wgpu: render pass submitted", "label", p.label, "draws", p.draws)
	return nil
}
