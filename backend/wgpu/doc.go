// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements px.Accelerator on the gogpu/wgpu HAL.
//
// The accelerator owns every resource it creates and hands out opaque
// px IDs for them. Textures are RGBA8Unorm and usable as copy source,
// copy destination, sampled texture and render attachment.
//
// # Device
//
// Open selects a Vulkan adapter, preferring discrete and integrated GPUs,
// and owns the resulting device:
//
//	acc, err := wgpu.Open()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer acc.Close()
//
// A device shared with a windowing host is wrapped with New or
// NewFromProvider. Close then releases only the accelerator's own
// resources and leaves the device alive.
//
// # Shaders
//
// WGSL is compiled to SPIR-V with gogpu/naga before the module is created,
// so syntax and validation errors surface from CompileShader as
// ErrShaderCompile.
//
// # Render passes
//
// Each draw uses a triangle-list pipeline cached per shader module,
// entry points, vertex layout and uniform slots. Uniform buffers are
// attached through one bind group per group index. Texture and sampler
// bindings are rejected with ErrUnsupportedBinding.
//
// End submits the pass, waits for the GPU and releases the buffers owned
// by its draws.
//
// # Read-back
//
// ReadTexture copies the texture into a staging buffer whose rows are
// padded to 256 bytes, waits on a fence and strips the padding, so callers
// always receive tightly packed rows.
package wgpu
