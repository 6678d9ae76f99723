// package gpu defines the explicit bind-state interface that every rendering pass talks to.
//
// A Context owns textures, render targets, programs and meshes and exposes the small set of
// state changes the passes need. State is sticky: a bound target, program, cull mode or texture
// stays bound until changed. Implementations live in gl_backend (OpenGL 4.3 core) and
// wgpu_backend (WebGPU); Recorder is an in-memory implementation for tests.
package gpu

import "github.com/pkg/errors"

var (
	// ErrIncompleteFramebuffer is returned by CheckFramebuffer when a target cannot be rendered to.
	ErrIncompleteFramebuffer = errors.New("gpu: framebuffer incomplete")
	// ErrUnknownHandle is returned when a handle does not name a live resource.
	ErrUnknownHandle = errors.New("gpu: unknown handle")
	// ErrShaderCompile is returned when a program fails to compile or link.
	ErrShaderCompile = errors.New("gpu: shader compilation failed")
)

// Context is the GPU device abstraction.
type Context interface {
	// ShadingLanguage returns the shader dialect CreateProgram expects.
	ShadingLanguage() ShadingLanguage

	// CreateTexture allocates a 2D texture with storage for desc.Width x desc.Height texels.
	//
	// Parameters:
	//   - desc: size, format, filtering and addressing
	//
	// Returns:
	//   - TextureHandle: the new texture
	//   - error: a wrapped allocation error
	CreateTexture(desc TextureDescriptor) (TextureHandle, error)

	// DeleteTexture releases a texture. Unknown handles are ignored.
	DeleteTexture(tex TextureHandle)

	// CreateFramebuffer allocates an empty off-screen target.
	CreateFramebuffer(label string) (FramebufferHandle, error)

	// AttachColor attaches tex at color attachment point index.
	AttachColor(fb FramebufferHandle, index int, tex TextureHandle) error

	// AttachDepth attaches a depth texture.
	AttachDepth(fb FramebufferHandle, tex TextureHandle) error

	// SetDrawBuffers declares which color attachments fragment outputs 0..n-1 write to.
	// An empty list disables color output (GL_NONE).
	SetDrawBuffers(fb FramebufferHandle, buffers []int) error

	// SetReadBuffer selects the color attachment used as a read source, or NoBuffer.
	SetReadBuffer(fb FramebufferHandle, buffer int) error

	// CheckFramebuffer validates completeness. Returns a wrapped ErrIncompleteFramebuffer on failure.
	CheckFramebuffer(fb FramebufferHandle) error

	// DeleteFramebuffer releases a target but not its attached textures.
	DeleteFramebuffer(fb FramebufferHandle)

	// CreateProgram compiles and links a program and resolves its named uniform blocks and samplers
	// to their slots.
	CreateProgram(desc ProgramDescriptor) (ProgramHandle, error)

	// DeleteProgram releases a program.
	DeleteProgram(p ProgramHandle)

	// CreateMesh uploads an indexed mesh.
	CreateMesh(desc MeshDescriptor) (MeshHandle, error)

	// DeleteMesh releases a mesh.
	DeleteMesh(m MeshHandle)

	// BindTarget makes fb the destination of subsequent clears and draws.
	BindTarget(fb FramebufferHandle)

	// SetViewport sets the pixel rectangle draws map to.
	SetViewport(x, y, width, height int)

	// SetClearColor sets the color used by Clear(ClearColor).
	SetClearColor(r, g, b, a float32)

	// Clear clears the selected attachments of the bound target.
	Clear(mask ClearMask)

	// SetCullMode sets face culling for subsequent draws.
	SetCullMode(mode CullMode)

	// SetDepthTest enables or disables depth testing and writing.
	SetDepthTest(enabled bool)

	// BindTexture binds tex to a sampler slot.
	BindTexture(slot int, tex TextureHandle)

	// UseProgram selects the program for subsequent draws.
	UseProgram(p ProgramHandle)

	// SetUniformBlock uploads std140 data for the block at slot. The data is captured at call time;
	// later draws see it until the slot is written again.
	SetUniformBlock(slot int, data []byte)

	// DrawMesh draws an indexed mesh with the current state.
	DrawMesh(m MeshHandle)

	// DrawFullscreen draws one covering triangle with the current state.
	DrawFullscreen()

	// BlitFramebuffer copies the masked attachments of a width x height region from src to dst.
	BlitFramebuffer(src, dst FramebufferHandle, width, height int, mask ClearMask)

	// ResizeSurface informs the context that the default framebuffer changed size.
	ResizeSurface(width, height int)

	// Present submits the frame and shows the default framebuffer.
	Present() error

	// Release frees every resource the context still owns.
	Release()
}
