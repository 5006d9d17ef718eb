// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/px"
)

// copyPitchAlignment is the row alignment required of texture-to-buffer
// copies.
const copyPitchAlignment = 256

// alignedRowPitch rounds a row of width RGBA8 pixels up to the copy pitch.
func alignedRowPitch(width uint32) uint32 {
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// ReadTexture implements px.Accelerator. It blocks until every queued
// write and pass has completed.
func (a *Accelerator) ReadTexture(id px.TextureID) ([]byte, error) {
	tex, err := a.lookupTexture(id)
	if err != nil {
		return nil, err
	}
	if tex.width == 0 || tex.height == 0 {
		return []byte{}, nil
	}

	w, h := uint32(tex.width), uint32(tex.height) //nolint:gosec // texture dimensions fit uint32
	bytesPerRow := w * 4
	alignedBytesPerRow := alignedRowPitch(w)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: tex.label + "_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(staging)

	encoder, err := a.beginEncoder("px_readback")
	if err != nil {
		return nil, err
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex.raw,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(tex.raw, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: tex.raw, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex.raw,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := a.submitAndWait(encoder); err != nil {
		return nil, err
	}

	readback, err := a.mapStaging(staging, stagingSize)
	if err != nil {
		return nil, err
	}
	px.Logger().Debug("wgpu: texture read back", "label", tex.label, "bytes", stagingSize)
	return stripRowPadding(readback, bytesPerRow, alignedBytesPerRow, h), nil
}

// mapStaging copies size bytes out of a completed MapRead buffer.
func (a *Accelerator) mapStaging(staging hal.Buffer, size uint64) ([]byte, error) {
	mapping, err := a.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := a.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return out, nil
}

// stripRowPadding removes the per-row copy padding from an aligned
// read-back.
func stripRowPadding(data []byte, bytesPerRow, alignedBytesPerRow, rows uint32) []byte {
	if alignedBytesPerRow == bytesPerRow {
		return data[:uint64(bytesPerRow)*uint64(rows)]
	}
	tight := make([]byte, uint64(bytesPerRow)*uint64(rows))
	for row := uint32(0); row < rows; row++ {
		srcOff := int(row) * int(alignedBytesPerRow)
		dstOff := int(row) * int(bytesPerRow)
		copy(tight[dstOff:dstOff+int(bytesPerRow)], data[srcOff:srcOff+int(bytesPerRow)])
	}
	return tight
}
