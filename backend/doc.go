// Package backend selects a px.Accelerator by name.
//
// Backends are registered via init() functions and opened at runtime.
// The memory backend is always registered on import:
//
//	import _ "github.com/gogpu/px/backend"
//
// GPU backends register themselves when their package is imported:
//
//	import _ "github.com/gogpu/px/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to open the best available backend, or Open() to request
// a specific backend by name:
//
//	// Open the default (best available) backend
//	b, err := backend.Default()
//
//	// Or request a specific backend
//	b, err := backend.Open("memory")
//
// Every backend is a px.Accelerator:
//
//	b, err := backend.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	p := px.New(px.Sz(64, 64))
//	if err := p.EnsureUpToDateOnGPU(b, px.NeedItNow); err != nil {
//		log.Fatal(err)
//	}
//
// # Available Backends
//
// - "memory": host-memory textures, draws recorded but not rasterized (always available)
// - "wgpu": GPU-accelerated via gogpu/wgpu on Vulkan
// - "wgpu-noop": gogpu/wgpu on the HAL noop device, for environments without a GPU
package backend
