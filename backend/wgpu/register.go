// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/px/backend"
)

// init registers the Vulkan and noop backends on package import.
func init() {
	backend.Register(backend.BackendWGPU, func() (backend.Backend, error) {
		return Open()
	})
	backend.Register(backend.BackendNoop, func() (backend.Backend, error) {
		return OpenNoop()
	})
}

var _ backend.Backend = (*Accelerator)(nil)

// Name returns the backend identifier.
func (a *Accelerator) Name() string {
	if a.noop {
		return backend.BackendNoop
	}
	return backend.BackendWGPU
}

// OpenNoop creates an accelerator on the HAL noop device. Every call is
// validated, but nothing is rendered, so read-backs do not reflect draws.
func OpenNoop() (*Accelerator, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create noop instance: %w", err)
	}
	a, err := openInstance(instance)
	if err != nil {
		return nil, err
	}
	a.noop = true
	return a, nil
}
