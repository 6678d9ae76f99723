package wgpu_backend

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// textureFormat maps a gpu format to the closest WebGPU format. Three-channel formats widen to
// four channels and RGBA16 is stored as half float because 16-bit unorm needs an optional feature.
func textureFormat(f gpu.TextureFormat) (wgpu.TextureFormat, error) {
	switch f {
	case gpu.FormatRGBA8:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case gpu.FormatRGBA16, gpu.FormatRGBA16F, gpu.FormatRGB16F:
		return wgpu.TextureFormatRGBA16Float, nil
	case gpu.FormatRGB32F, gpu.FormatRGBA32F:
		return wgpu.TextureFormatRGBA32Float, nil
	case gpu.FormatDepth16:
		return wgpu.TextureFormatDepth16Unorm, nil
	case gpu.FormatDepth24:
		return wgpu.TextureFormatDepth24Plus, nil
	case gpu.FormatDepth32F:
		return wgpu.TextureFormatDepth32Float, nil
	}
	return wgpu.TextureFormatUndefined, errors.Errorf("wgpu: unsupported texture format %s", f)
}

var borderOnce sync.Once

// addressMode maps a gpu address mode. WebGPU has no border color, so clamp-to-border falls back to
// clamp-to-edge; shaders treat out-of-range shadow lookups as lit instead.
func addressMode(m gpu.AddressMode) wgpu.AddressMode {
	switch m {
	case gpu.AddressRepeat:
		return wgpu.AddressModeRepeat
	case gpu.AddressClampToBorder:
		borderOnce.Do(func() {
			log.Printf("[wgpu] clamp-to-border is not supported, using clamp-to-edge")
		})
	}
	return wgpu.AddressModeClampToEdge
}

func filterMode(f gpu.FilterMode) wgpu.FilterMode {
	if f == gpu.FilterLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func cullMode(c gpu.CullMode) wgpu.CullMode {
	switch c {
	case gpu.CullBack:
		return wgpu.CullModeBack
	case gpu.CullFront:
		return wgpu.CullModeFront
	}
	return wgpu.CullModeNone
}

// sampleType returns the bind group layout sample type for a texture of the given kind.
func sampleType(k gpu.TextureKind) wgpu.TextureSampleType {
	switch k {
	case gpu.TextureUnfilterable:
		return wgpu.TextureSampleTypeUnfilterableFloat
	case gpu.TextureDepth:
		return wgpu.TextureSampleTypeDepth
	}
	return wgpu.TextureSampleTypeFloat
}

// textureBinding and samplerBinding place texture slot s at bindings 2s and 2s+1 of group 1.
func textureBinding(slot int) uint32 {
	return uint32(2 * slot)
}

func samplerBinding(slot int) uint32 {
	return uint32(2*slot + 1)
}

// flipViewportY converts a bottom-left origin rectangle into WebGPU's top-left origin.
func flipViewportY(y, height, surfaceHeight int) int {
	return surfaceHeight - y - height
}

// clampViewport fits (x, y, w, h) inside a width x height attachment. ok is false when nothing is left.
func clampViewport(rect [4]int, width, height int) (out [4]float32, ok bool) {
	x0, y0 := max(rect[0], 0), max(rect[1], 0)
	x1, y1 := min(rect[0]+rect[2], width), min(rect[1]+rect[3], height)
	if x1 <= x0 || y1 <= y0 {
		return out, false
	}
	return [4]float32{float32(x0), float32(y0), float32(x1 - x0), float32(y1 - y0)}, true
}
