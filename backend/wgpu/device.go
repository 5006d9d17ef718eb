// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/px"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// GPUInfo contains information about the selected GPU.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Shared is true when the device belongs to another owner.
	Shared bool
}

// String returns a human-readable description of the GPU.
func (g GPUInfo) String() string {
	if g.Name == "" {
		g.Name = "unknown GPU"
	}
	if g.Shared {
		return g.Name + " (shared)"
	}
	return fmt.Sprintf("%s (%v)", g.Name, g.DeviceType)
}

// Open creates an accelerator on the first suitable Vulkan adapter.
// The accelerator owns the device and destroys it on Close.
func Open() (*Accelerator, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrBackendUnavailable
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	return openInstance(instance)
}

// openInstance opens a device on instance and takes ownership of both.
func openInstance(instance hal.Instance) (*Accelerator, error) {
	adapters := instance.EnumerateAdapters(nil)
	selected := selectAdapter(adapters)
	if selected == nil {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	a := newAccelerator(openDev.Device, openDev.Queue)
	a.instance = instance
	a.external = false
	a.info = GPUInfo{Name: selected.Info.Name, DeviceType: selected.Info.DeviceType}
	px.Logger().Info("wgpu: accelerator opened", "gpu", a.info.String())
	return a, nil
}

// selectAdapter prefers discrete and integrated GPUs over software and
// virtual adapters. It returns nil when adapters is empty.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	if len(adapters) == 0 {
		return nil
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// New wraps a device owned by the caller. Close does not destroy it.
func New(device hal.Device, queue hal.Queue) (*Accelerator, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	a := newAccelerator(device, queue)
	a.info = GPUInfo{Shared: true}
	return a, nil
}

// NewFromProvider wraps the device of a gpucontext provider, such as a
// windowing host. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Accelerator, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProvider)
	}
	a, err := New(device, queue)
	if err != nil {
		return nil, err
	}
	px.Logger().Info("wgpu: using shared device", "format", provider.SurfaceFormat())
	return a, nil
}
