package gl_backend

import (
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"
)

// internalFormat maps a gpu format to its sized GL internal format.
func internalFormat(f gpu.TextureFormat) (uint32, error) {
	switch f {
	case gpu.FormatRGBA8:
		return gl.RGBA8, nil
	case gpu.FormatRGBA16:
		return gl.RGBA16, nil
	case gpu.FormatRGBA16F:
		return gl.RGBA16F, nil
	case gpu.FormatRGB16F:
		return gl.RGB16F, nil
	case gpu.FormatRGB32F:
		return gl.RGB32F, nil
	case gpu.FormatRGBA32F:
		return gl.RGBA32F, nil
	case gpu.FormatDepth16:
		return gl.DEPTH_COMPONENT16, nil
	case gpu.FormatDepth24:
		return gl.DEPTH_COMPONENT24, nil
	case gpu.FormatDepth32F:
		return gl.DEPTH_COMPONENT32F, nil
	}
	return 0, errors.Errorf("gl: unsupported texture format %s", f)
}

func wrapMode(m gpu.AddressMode) int32 {
	switch m {
	case gpu.AddressRepeat:
		return gl.REPEAT
	case gpu.AddressClampToBorder:
		return gl.CLAMP_TO_BORDER
	}
	return gl.CLAMP_TO_EDGE
}

func filter(f gpu.FilterMode) int32 {
	if f == gpu.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

// bufferMask converts a ClearMask into GL buffer bits.
func bufferMask(m gpu.ClearMask) uint32 {
	var bits uint32
	if m.Has(gpu.ClearColor) {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if m.Has(gpu.ClearDepth) {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	return bits
}

// drawBuffer maps a color attachment index, or gpu.NoBuffer, to a GL draw/read buffer enum.
func drawBuffer(index int) uint32 {
	if index == gpu.NoBuffer {
		return gl.NONE
	}
	return gl.COLOR_ATTACHMENT0 + uint32(index)
}

// framebufferStatus names a glCheckFramebufferStatus result.
func framebufferStatus(status uint32) string {
	switch status {
	case gl.FRAMEBUFFER_COMPLETE:
		return "complete"
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return "incomplete attachment"
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return "missing attachment"
	case gl.FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER:
		return "incomplete draw buffer"
	case gl.FRAMEBUFFER_INCOMPLETE_READ_BUFFER:
		return "incomplete read buffer"
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return "unsupported"
	case gl.FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:
		return "incomplete multisample"
	}
	return "unknown status"
}
