// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/px"
)

// errPipelineNilDevice is returned when a pipeline is requested without a device.
var errPipelineNilDevice = errors.New("wgpu: device is nil")

// uniformSlot is one uniform buffer binding a pipeline expects.
type uniformSlot struct {
	group, binding uint16
}

// pipelineKey identifies everything a render pipeline depends on.
type pipelineKey struct {
	module        px.ShaderModuleID
	vertexEntry   string
	fragmentEntry string
	layout        gputypes.VertexBufferLayout
	uniforms      []uniformSlot
}

// keyFor builds the pipeline key of a draw. uniforms are sorted so that
// binding order in the command does not matter.
func keyFor(cmd *px.DrawCommand) (pipelineKey, error) {
	key := pipelineKey{
		module:        cmd.Module,
		vertexEntry:   cmd.VertexEntry,
		fragmentEntry: cmd.FragmentEntry,
		layout:        cmd.Layout,
	}
	for _, b := range cmd.Bindings {
		if b.Kind != px.BindingUniform {
			return pipelineKey{}, fmt.Errorf("%w: @group(%d) @binding(%d)", ErrUnsupportedBinding, b.Group, b.Binding)
		}
		key.uniforms = append(key.uniforms, uniformSlot{b.Group, b.Binding})
	}
	sort.Slice(key.uniforms, func(i, j int) bool {
		a, b := key.uniforms[i], key.uniforms[j]
		if a.group != b.group {
			return a.group < b.group
		}
		return a.binding < b.binding
	})
	return key, nil
}

// groupCount returns one more than the highest group index in use.
func (k *pipelineKey) groupCount() int {
	n := 0
	for _, u := range k.uniforms {
		if int(u.group) >= n {
			n = int(u.group) + 1
		}
	}
	return n
}

// hash computes an FNV-1a hash of the key.
func (k *pipelineKey) hash() uint64 {
	h := fnv.New64a()
	hashWriteUint64(h, uint64(k.module))
	hashWriteString(h, k.vertexEntry)
	hashWriteString(h, k.fragmentEntry)

	hashWriteUint64(h, k.layout.ArrayStride)
	hashWriteUint32(h, uint32(k.layout.StepMode))
	//nolint:gosec // G115: attribute count is bounded by GPU limits (< 32)
	hashWriteUint32(h, uint32(len(k.layout.Attributes)))
	for i := range k.layout.Attributes {
		attr := &k.layout.Attributes[i]
		hashWriteUint32(h, attr.ShaderLocation)
		hashWriteUint32(h, uint32(attr.Format))
		hashWriteUint64(h, attr.Offset)
	}

	//nolint:gosec // G115: binding count is bounded by GPU limits
	hashWriteUint32(h, uint32(len(k.uniforms)))
	for _, u := range k.uniforms {
		hashWriteUint32(h, uint32(u.group))
		hashWriteUint32(h, uint32(u.binding))
	}
	return h.Sum64()
}

// renderPipeline is a cached pipeline with the layouts it was built from.
type renderPipeline struct {
	raw          hal.RenderPipeline
	layout       hal.PipelineLayout
	groupLayouts []hal.BindGroupLayout
}

// pipelineCache caches render pipelines by key hash.
//
// pipelineCache is safe for concurrent use. It uses RWMutex with
// double-check locking for efficient reads and safe writes.
type pipelineCache struct {
	mu    sync.RWMutex
	cache map[uint64]*renderPipeline

	hits   uint64
	misses uint64
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{cache: make(map[uint64]*renderPipeline)}
}

// getOrCreate returns the pipeline for key, creating it on a miss.
func (c *pipelineCache) getOrCreate(device hal.Device, module hal.ShaderModule, key *pipelineKey) (*renderPipeline, error) {
	keyHash := key.hash()

	c.mu.RLock()
	if p, ok := c.cache[keyHash]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.cache[keyHash]; ok {
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}
	if device == nil {
		return nil, errPipelineNilDevice
	}

	p, err := createRenderPipeline(device, module, key)
	if err != nil {
		return nil, err
	}
	c.cache[keyHash] = p
	atomic.AddUint64(&c.misses, 1)
	px.Logger().Debug("wgpu: pipeline created",
		"module", key.module,
		"stride", key.layout.ArrayStride,
		"groups", len(p.groupLayouts),
	)
	return p, nil
}

// Stats returns cache hit and miss counts.
func (c *pipelineCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Size returns the number of cached pipelines.
func (c *pipelineCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// DestroyAll destroys every cached pipeline and empties the cache.
func (c *pipelineCache) DestroyAll(device hal.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for h, p := range c.cache {
		p.destroy(device)
		delete(c.cache, h)
	}
}

func (p *renderPipeline) destroy(device hal.Device) {
	if p.raw != nil {
		device.DestroyRenderPipeline(p.raw)
	}
	if p.layout != nil {
		device.DestroyPipelineLayout(p.layout)
	}
	for _, l := range p.groupLayouts {
		device.DestroyBindGroupLayout(l)
	}
}

// createRenderPipeline builds one bind group layout per group index, even
// for unused groups, then the pipeline layout and the pipeline. On failure
// every partially created object is destroyed.
func createRenderPipeline(device hal.Device, module hal.ShaderModule, key *pipelineKey) (*renderPipeline, error) {
	p := &renderPipeline{}
	for group := range key.groupCount() {
		var entries []gputypes.BindGroupLayoutEntry
		for _, u := range key.uniforms {
			if int(u.group) != group {
				continue
			}
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    uint32(u.binding),
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
		}
		layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("px_group_%d_layout", group),
			Entries: entries,
		})
		if err != nil {
			p.destroy(device)
			return nil, fmt.Errorf("wgpu: create bind group layout %d: %w", group, err)
		}
		p.groupLayouts = append(p.groupLayouts, layout)
	}

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "px_pipe_layout",
		BindGroupLayouts: p.groupLayouts,
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	p.layout = pipeLayout

	raw, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "px_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: key.vertexEntry,
			Buffers:    []gputypes.VertexBufferLayout{key.layout},
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: key.fragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	p.raw = raw
	return p, nil
}

// hashWriteUint32 writes a uint32 to the hash.
func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteUint64 writes a uint64 to the hash.
func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteString writes a length-prefixed string to the hash.
//
//nolint:gosec // G115: entry point names are short
func hashWriteString(h hash.Hash64, s string) {
	hashWriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}
