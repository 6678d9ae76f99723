package gpu

import "fmt"

// TextureHandle identifies a texture owned by a Context. Zero is never a valid texture.
type TextureHandle uint32

// FramebufferHandle identifies a render target owned by a Context.
// DefaultFramebuffer is the window's surface.
type FramebufferHandle uint32

// ProgramHandle identifies a linked shader program. Zero is never valid.
type ProgramHandle uint32

// MeshHandle identifies an uploaded indexed mesh. Zero is never valid.
type MeshHandle uint32

// DefaultFramebuffer is the on-screen target presented by Present.
const DefaultFramebuffer FramebufferHandle = 0

// NoBuffer disables a draw or read buffer slot (GL_NONE).
const NoBuffer = -1

// ShadingLanguage names the shader source dialect a Context compiles.
type ShadingLanguage int

const (
	// GLSL is GLSL 4.30 core.
	GLSL ShadingLanguage = iota
	// WGSL is the WebGPU shading language.
	WGSL
)

func (s ShadingLanguage) String() string {
	switch s {
	case GLSL:
		return "glsl"
	case WGSL:
		return "wgsl"
	}
	return fmt.Sprintf("ShadingLanguage(%d)", int(s))
}

// TextureFormat is the storage format of a texture. FormatNone means "no attachment".
type TextureFormat int

const (
	FormatNone TextureFormat = iota
	FormatRGBA8
	FormatRGBA16
	FormatRGBA16F
	FormatRGB16F
	FormatRGB32F
	FormatRGBA32F
	FormatDepth16
	FormatDepth24
	FormatDepth32F
)

// IsDepth reports whether the format is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == FormatDepth16 || f == FormatDepth24 || f == FormatDepth32F
}

// IsFloat reports whether the format stores floating point color.
func (f TextureFormat) IsFloat() bool {
	switch f {
	case FormatRGBA16F, FormatRGB16F, FormatRGB32F, FormatRGBA32F:
		return true
	}
	return false
}

func (f TextureFormat) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatRGBA8:
		return "rgba8"
	case FormatRGBA16:
		return "rgba16"
	case FormatRGBA16F:
		return "rgba16f"
	case FormatRGB16F:
		return "rgb16f"
	case FormatRGB32F:
		return "rgb32f"
	case FormatRGBA32F:
		return "rgba32f"
	case FormatDepth16:
		return "depth16"
	case FormatDepth24:
		return "depth24"
	case FormatDepth32F:
		return "depth32f"
	}
	return fmt.Sprintf("TextureFormat(%d)", int(f))
}

// AddressMode controls sampling outside [0, 1].
type AddressMode int

const (
	AddressRepeat AddressMode = iota
	AddressClampToEdge
	AddressClampToBorder
)

// FilterMode controls texel filtering.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// ClearMask selects which attachments Clear and BlitFramebuffer touch.
type ClearMask uint8

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// Has reports whether every bit of o is set in m.
func (m ClearMask) Has(o ClearMask) bool {
	return m&o == o
}

func (m ClearMask) String() string {
	switch m {
	case 0:
		return "none"
	case ClearColor:
		return "color"
	case ClearDepth:
		return "depth"
	case ClearColor | ClearDepth:
		return "color|depth"
	}
	return fmt.Sprintf("ClearMask(%d)", uint8(m))
}

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

func (c CullMode) String() string {
	switch c {
	case CullNone:
		return "none"
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	}
	return fmt.Sprintf("CullMode(%d)", int(c))
}

// TextureKind tells a backend how a shader samples a bound texture.
type TextureKind int

const (
	// TextureFloat is a filterable color texture.
	TextureFloat TextureKind = iota
	// TextureUnfilterable is a 32-bit float color texture read without filtering.
	TextureUnfilterable
	// TextureDepth is a depth texture read with a comparison or raw depth sampler.
	TextureDepth
)
