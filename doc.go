// Package px provides pixel buffers that live in CPU memory, GPU texture
// memory, or both, and keeps the two copies coherent.
//
// # Overview
//
// A [Pixels] buffer tracks where its authoritative data lives. Writes go to
// whichever side is currently preferred, and explicit synchronization calls
// move data across the boundary only when the other side is stale:
//
//	pixels := px.New(px.Sz(64, 64))
//	_ = pixels.WritePixel(nil, px.Pt(3, 4), px.RGB(255, 0, 0)) // CPU write
//
//	// Before drawing on the GPU:
//	if err := pixels.EnsureUpToDateOnGPU(acc, px.NeedItLater); err != nil {
//	    return err
//	}
//
// GPU access goes through an [Accelerator], which is passed explicitly to
// every operation that needs it. The backend/wgpu package provides an
// implementation on top of gogpu/wgpu.
//
// # Shaders
//
// The shader package describes vertex, fragment and global variables as
// typed lists and generates WGSL source and vertex buffer layouts from them.
// The scene package records draws into a render pass that targets a
// [Pixels] buffer.
//
// # Coordinate System
//
// Origin (0,0) is the top-left pixel. X increases to the right and Y
// increases downward. Rows are stored top to bottom.
package px

// Version is the current version of the library.
const Version = "0.1.0"
