// package gl_backend implements gpu.Context on OpenGL 4.3 core.
//
// Handles are the GL object names themselves, so framebuffer 0 is the window's default framebuffer.
// Every call must happen on the thread that owns the GL context.
package gl_backend

import (
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"
)

// Swapper presents the default framebuffer, usually the GLFW window.
type Swapper interface {
	SwapBuffers()
}

type mesh struct {
	vao, vbo, ebo uint32
	count         int32
}

type uniformBuffer struct {
	id   uint32
	size int
}

// glContext is the OpenGL implementation of gpu.Context.
type glContext struct {
	mu *sync.Mutex

	swapper Swapper
	width   int
	height  int

	textures     map[gpu.TextureHandle]gpu.TextureDescriptor
	framebuffers map[gpu.FramebufferHandle]string
	programs     map[gpu.ProgramHandle]*program
	meshes       map[gpu.MeshHandle]*mesh
	uniforms     map[int]*uniformBuffer
	emptyVAO     uint32

	target gpu.FramebufferHandle
}

var _ gpu.Context = &glContext{}

// NewContext loads the GL function pointers for the current context and prepares default state.
//
// Parameters:
//   - swapper: presents the default framebuffer
//   - width, height: the default framebuffer size
//
// Returns:
//   - gpu.Context: the context
//   - error: an error if GL could not be initialized
func NewContext(swapper Swapper, width, height int) (gpu.Context, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "gl: init")
	}
	c := &glContext{
		mu:           &sync.Mutex{},
		swapper:      swapper,
		width:        width,
		height:       height,
		textures:     make(map[gpu.TextureHandle]gpu.TextureDescriptor),
		framebuffers: make(map[gpu.FramebufferHandle]string),
		programs:     make(map[gpu.ProgramHandle]*program),
		meshes:       make(map[gpu.MeshHandle]*mesh),
		uniforms:     make(map[int]*uniformBuffer),
	}
	// the full-screen triangle has no attributes but core profile still needs a VAO bound
	gl.GenVertexArrays(1, &c.emptyVAO)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.FrontFace(gl.CCW)
	return c, nil
}

func (c *glContext) ShadingLanguage() gpu.ShadingLanguage {
	return gpu.GLSL
}

func glError(what string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Errorf("gl: %s: error 0x%x", what, code)
	}
	return nil
}

func (c *glContext) CreateTexture(desc gpu.TextureDescriptor) (gpu.TextureHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	internal, err := internalFormat(desc.Format)
	if err != nil {
		return 0, err
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, errors.Errorf("gl: texture %s: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexStorage2D(gl.TEXTURE_2D, 1, internal, int32(desc.Width), int32(desc.Height))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter(desc.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter(desc.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(desc.AddressMode))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(desc.AddressMode))
	if desc.AddressMode == gpu.AddressClampToBorder {
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &desc.BorderColor[0])
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := glError("texture " + desc.Label); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}

	c.textures[gpu.TextureHandle(id)] = desc
	return gpu.TextureHandle(id), nil
}

func (c *glContext) DeleteTexture(tex gpu.TextureHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.textures[tex]; !ok {
		return
	}
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
	delete(c.textures, tex)
}

func (c *glContext) CreateFramebuffer(label string) (gpu.FramebufferHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var id uint32
	gl.GenFramebuffers(1, &id)
	if id == 0 {
		return 0, errors.Errorf("gl: framebuffer %s: allocation failed", label)
	}
	c.framebuffers[gpu.FramebufferHandle(id)] = label
	return gpu.FramebufferHandle(id), nil
}

// withFramebuffer binds fb for the duration of fn and restores the bound target. Caller must hold the
// mutex.
func (c *glContext) withFramebuffer(fb gpu.FramebufferHandle, fn func()) error {
	if _, ok := c.framebuffers[fb]; !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "framebuffer %d", fb)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	fn()
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(c.target))
	return nil
}

func (c *glContext) AttachColor(fb gpu.FramebufferHandle, index int, tex gpu.TextureHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.textures[tex]; !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "texture %d", tex)
	}
	return c.withFramebuffer(fb, func() {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(index), gl.TEXTURE_2D, uint32(tex), 0)
	})
}

func (c *glContext) AttachDepth(fb gpu.FramebufferHandle, tex gpu.TextureHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.textures[tex]; !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "texture %d", tex)
	}
	return c.withFramebuffer(fb, func() {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, uint32(tex), 0)
	})
}

func (c *glContext) SetDrawBuffers(fb gpu.FramebufferHandle, buffers []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.withFramebuffer(fb, func() {
		if len(buffers) == 0 {
			gl.DrawBuffer(gl.NONE)
			return
		}
		enums := make([]uint32, len(buffers))
		for i, b := range buffers {
			enums[i] = drawBuffer(b)
		}
		gl.DrawBuffers(int32(len(enums)), &enums[0])
	})
}

func (c *glContext) SetReadBuffer(fb gpu.FramebufferHandle, buffer int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.withFramebuffer(fb, func() {
		gl.ReadBuffer(drawBuffer(buffer))
	})
}

func (c *glContext) CheckFramebuffer(fb gpu.FramebufferHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fb == gpu.DefaultFramebuffer {
		return nil
	}
	var status uint32
	if err := c.withFramebuffer(fb, func() {
		status = gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	}); err != nil {
		return err
	}
	if status != gl.FRAMEBUFFER_COMPLETE {
		return errors.Wrapf(gpu.ErrIncompleteFramebuffer, "%s: %s (0x%x)", c.framebuffers[fb], framebufferStatus(status), status)
	}
	return nil
}

func (c *glContext) DeleteFramebuffer(fb gpu.FramebufferHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.framebuffers[fb]; !ok {
		return
	}
	if c.target == fb {
		c.target = gpu.DefaultFramebuffer
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
	delete(c.framebuffers, fb)
}

func (c *glContext) CreateProgram(desc gpu.ProgramDescriptor) (gpu.ProgramHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if desc.VertexSource == "" {
		return 0, errors.Wrapf(gpu.ErrShaderCompile, "%s: missing vertex source", desc.Label)
	}
	p, err := linkProgram(desc)
	if err != nil {
		return 0, err
	}
	c.programs[gpu.ProgramHandle(p.id)] = p
	return gpu.ProgramHandle(p.id), nil
}

func (c *glContext) DeleteProgram(h gpu.ProgramHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.programs[h]
	if !ok {
		return
	}
	p.delete()
	delete(c.programs, h)
}

func (c *glContext) CreateMesh(desc gpu.MeshDescriptor) (gpu.MeshHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return 0, errors.Errorf("gl: mesh %s is empty", desc.Label)
	}

	m := &mesh{count: int32(len(desc.Indices))}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(desc.Vertices)*gpu.VertexStride, gl.Ptr(desc.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(desc.Indices)*4, gl.Ptr(desc.Indices), gl.STATIC_DRAW)

	var v gpu.Vertex
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, gpu.VertexStride, unsafe.Offsetof(v.Position))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, gpu.VertexStride, unsafe.Offsetof(v.Normal))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, gpu.VertexStride, unsafe.Offsetof(v.UV))

	gl.BindVertexArray(0)
	if err := glError("mesh " + desc.Label); err != nil {
		c.deleteMesh(m)
		return 0, err
	}

	c.meshes[gpu.MeshHandle(m.vao)] = m
	return gpu.MeshHandle(m.vao), nil
}

func (c *glContext) deleteMesh(m *mesh) {
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
}

func (c *glContext) DeleteMesh(h gpu.MeshHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.meshes[h]
	if !ok {
		return
	}
	c.deleteMesh(m)
	delete(c.meshes, h)
}

func (c *glContext) BindTarget(fb gpu.FramebufferHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.target = fb
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

func (c *glContext) SetViewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (c *glContext) SetClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (c *glContext) Clear(mask gpu.ClearMask) {
	if mask.Has(gpu.ClearDepth) {
		// depth writes must be on for the clear to reach the buffer
		gl.DepthMask(true)
	}
	gl.Clear(bufferMask(mask))
}

func (c *glContext) SetCullMode(mode gpu.CullMode) {
	switch mode {
	case gpu.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
}

func (c *glContext) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(enabled)
}

func (c *glContext) BindTexture(slot int, tex gpu.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (c *glContext) UseProgram(p gpu.ProgramHandle) {
	gl.UseProgram(uint32(p))
}

// SetUniformBlock keeps one uniform buffer per slot, bound at that binding point.
func (c *glContext) SetUniformBlock(slot int, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(data) == 0 {
		return
	}
	ub, ok := c.uniforms[slot]
	if !ok {
		ub = &uniformBuffer{}
		gl.GenBuffers(1, &ub.id)
		c.uniforms[slot] = ub
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, ub.id)
	if len(data) > ub.size {
		gl.BufferData(gl.UNIFORM_BUFFER, len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
		ub.size = len(data)
	} else {
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(slot), ub.id)
}

func (c *glContext) DrawMesh(h gpu.MeshHandle) {
	c.mu.Lock()
	m, ok := c.meshes[h]
	c.mu.Unlock()
	if !ok {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (c *glContext) DrawFullscreen() {
	gl.BindVertexArray(c.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

func (c *glContext) BlitFramebuffer(src, dst gpu.FramebufferHandle, width, height int, mask gpu.ClearMask) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(src))
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, uint32(dst))
	w, h := int32(width), int32(height)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, bufferMask(mask), gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(c.target))
}

func (c *glContext) ResizeSurface(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

func (c *glContext) Present() error {
	if err := glError("frame"); err != nil {
		c.swapper.SwapBuffers()
		return err
	}
	c.swapper.SwapBuffers()
	return nil
}

func (c *glContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	c.target = gpu.DefaultFramebuffer
	for h, p := range c.programs {
		p.delete()
		delete(c.programs, h)
	}
	for h, m := range c.meshes {
		c.deleteMesh(m)
		delete(c.meshes, h)
	}
	for fb := range c.framebuffers {
		id := uint32(fb)
		gl.DeleteFramebuffers(1, &id)
		delete(c.framebuffers, fb)
	}
	for tex := range c.textures {
		id := uint32(tex)
		gl.DeleteTextures(1, &id)
		delete(c.textures, tex)
	}
	for slot, ub := range c.uniforms {
		gl.DeleteBuffers(1, &ub.id)
		delete(c.uniforms, slot)
	}
	if c.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &c.emptyVAO)
		c.emptyVAO = 0
	}
}
