// package wgpu_backend implements gpu.Context on WebGPU.
//
// WebGPU has no bind state, so calls are recorded into passes and encoded into one command buffer when
// Present is called. Uniform writes go to a single arena buffer bound with dynamic offsets, which keeps
// the sticky-uniform semantics every pass relies on.
package wgpu_backend

import (
	"runtime"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// maxTextureSlots bounds the sampler slots a program may use.
const maxTextureSlots = 8

// maxUniformSlots bounds the uniform block slots a program may use.
const maxUniformSlots = 8

type texture struct {
	desc    gpu.TextureDescriptor
	format  wgpu.TextureFormat
	tex     *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

func (t *texture) release() {
	if t.sampler != nil {
		t.sampler.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.tex != nil {
		t.tex.Release()
	}
}

type program struct {
	desc           gpu.ProgramDescriptor
	vertex         *wgpu.ShaderModule
	fragment       *wgpu.ShaderModule
	uniformLayout  *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	uniformSlots   []gpu.UniformBlock
	uniformGroup   *wgpu.BindGroup
}

func (p *program) release() {
	if p.uniformGroup != nil {
		p.uniformGroup.Release()
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
	}
	if p.textureLayout != nil {
		p.textureLayout.Release()
	}
	if p.uniformLayout != nil {
		p.uniformLayout.Release()
	}
	if p.fragment != nil && p.fragment != p.vertex {
		p.fragment.Release()
	}
	if p.vertex != nil {
		p.vertex.Release()
	}
}

type mesh struct {
	vertices *wgpu.Buffer
	indices  *wgpu.Buffer
	count    uint32
}

// wgpuContext is the WebGPU implementation of gpu.Context.
type wgpuContext struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	forceFallback bool
	width         int
	height        int
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView

	next         uint32
	textures     map[gpu.TextureHandle]*texture
	framebuffers map[gpu.FramebufferHandle]*framebuffer
	programs     map[gpu.ProgramHandle]*program
	meshes       map[gpu.MeshHandle]*mesh

	pipelines     map[pipelineKey]*wgpu.RenderPipeline
	textureGroups map[textureGroupKey]*wgpu.BindGroup
	uniforms      *wgpu.Buffer
	uniformsSize  int
	arena         *uniformArena

	state frameState
	ops   []frameOp
	open  *passRecord
}

var _ gpu.Context = &wgpuContext{}

// NewContext creates a WebGPU device for the given window surface and configures the surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface of the window
//   - width, height: initial surface size in pixels
//   - options: functional options to configure the context
//
// Returns:
//   - gpu.Context: the context
//   - error: an error if no adapter or device could be acquired
func NewContext(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...ContextBuilderOption) (gpu.Context, error) {
	runtime.LockOSThread()
	c := &wgpuContext{
		mu:            &sync.Mutex{},
		presentMode:   wgpu.PresentModeFifo,
		textures:      make(map[gpu.TextureHandle]*texture),
		framebuffers:  make(map[gpu.FramebufferHandle]*framebuffer),
		programs:      make(map[gpu.ProgramHandle]*program),
		meshes:        make(map[gpu.MeshHandle]*mesh),
		pipelines:     make(map[pipelineKey]*wgpu.RenderPipeline),
		textureGroups: make(map[textureGroupKey]*wgpu.BindGroup),
		arena:         newUniformArena(),
		state:         newFrameState(),
	}
	for _, option := range options {
		option(c)
	}

	c.instance = wgpu.CreateInstance(nil)
	c.surface = c.instance.CreateSurface(surfaceDescriptor)

	a, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallback,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		c.Release()
		return nil, errors.Wrap(err, "wgpu: request adapter")
	}
	c.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-passes device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		c.Release()
		return nil, errors.Wrap(err, "wgpu: request device")
	}
	c.device = d
	c.queue = d.GetQueue()

	if err := c.configureSurface(width, height); err != nil {
		c.Release()
		return nil, err
	}
	return c, nil
}

// configureSurface (re)configures the swapchain and the default framebuffer's depth texture.
// Caller must hold the mutex or be the constructor.
func (c *wgpuContext) configureSurface(width, height int) error {
	capabilities := c.surface.GetCapabilities(c.adapter)
	c.surfaceFormat = capabilities.Formats[0]
	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: c.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if c.depthView != nil {
		c.depthView.Release()
		c.depthTexture.Release()
		c.depthView, c.depthTexture = nil, nil
	}
	depth, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "surface depth",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return errors.Wrap(err, "wgpu: surface depth texture")
	}
	view, err := depth.CreateView(nil)
	if err != nil {
		depth.Release()
		return errors.Wrap(err, "wgpu: surface depth view")
	}
	c.depthTexture, c.depthView = depth, view
	c.width, c.height = width, height
	return nil
}

func (c *wgpuContext) handle() uint32 {
	c.next++
	return c.next
}

func (c *wgpuContext) ShadingLanguage() gpu.ShadingLanguage {
	return gpu.WGSL
}

func (c *wgpuContext) CreateTexture(desc gpu.TextureDescriptor) (gpu.TextureHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	format, err := textureFormat(desc.Format)
	if err != nil {
		return 0, err
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, errors.Errorf("wgpu: texture %s: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}

	t := &texture{desc: desc, format: format}
	t.tex, err = c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage: wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "wgpu: texture %s", desc.Label)
	}
	t.view, err = t.tex.CreateView(nil)
	if err != nil {
		t.release()
		return 0, errors.Wrapf(err, "wgpu: texture %s view", desc.Label)
	}
	if !desc.Format.IsDepth() {
		mode := addressMode(desc.AddressMode)
		t.sampler, err = c.device.CreateSampler(&wgpu.SamplerDescriptor{
			Label:         desc.Label + " sampler",
			AddressModeU:  mode,
			AddressModeV:  mode,
			AddressModeW:  mode,
			MagFilter:     filterMode(desc.MagFilter),
			MinFilter:     filterMode(desc.MinFilter),
			MipmapFilter:  wgpu.MipmapFilterModeNearest,
			LodMinClamp:   0,
			LodMaxClamp:   32,
			MaxAnisotropy: 1,
		})
		if err != nil {
			t.release()
			return 0, errors.Wrapf(err, "wgpu: texture %s sampler", desc.Label)
		}
	}

	h := gpu.TextureHandle(c.handle())
	c.textures[h] = t
	return h, nil
}

func (c *wgpuContext) DeleteTexture(tex gpu.TextureHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.textures[tex]
	if !ok {
		return
	}
	for key, bg := range c.textureGroups {
		if key.uses(tex) {
			bg.Release()
			delete(c.textureGroups, key)
		}
	}
	t.release()
	delete(c.textures, tex)
}

func (c *wgpuContext) CreateFramebuffer(label string) (gpu.FramebufferHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := gpu.FramebufferHandle(c.handle())
	c.framebuffers[h] = newFramebuffer(label)
	return h, nil
}

// lookup returns the off-screen framebuffer fb and the texture tex. Caller must hold the mutex.
func (c *wgpuContext) lookup(fb gpu.FramebufferHandle, tex gpu.TextureHandle) (*framebuffer, *texture, error) {
	f, ok := c.framebuffers[fb]
	if !ok {
		return nil, nil, errors.Wrapf(gpu.ErrUnknownHandle, "framebuffer %d", fb)
	}
	t, ok := c.textures[tex]
	if !ok {
		return nil, nil, errors.Wrapf(gpu.ErrUnknownHandle, "texture %d", tex)
	}
	return f, t, nil
}

func (c *wgpuContext) AttachColor(fb gpu.FramebufferHandle, index int, tex gpu.TextureHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, t, err := c.lookup(fb, tex)
	if err != nil {
		return err
	}
	if t.desc.Format.IsDepth() {
		return errors.Errorf("wgpu: %s: depth texture attached as color %d", f.label, index)
	}
	if index < 0 || index >= maxColorAttachments {
		return errors.Errorf("wgpu: %s: color attachment %d out of range", f.label, index)
	}
	f.color[index] = tex
	return nil
}

func (c *wgpuContext) AttachDepth(fb gpu.FramebufferHandle, tex gpu.TextureHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, t, err := c.lookup(fb, tex)
	if err != nil {
		return err
	}
	if !t.desc.Format.IsDepth() {
		return errors.Errorf("wgpu: %s: color texture attached as depth", f.label)
	}
	f.depth = tex
	return nil
}

func (c *wgpuContext) SetDrawBuffers(fb gpu.FramebufferHandle, buffers []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.framebuffers[fb]
	if !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "framebuffer %d", fb)
	}
	f.drawBuffers = append([]int{}, buffers...)
	return nil
}

func (c *wgpuContext) SetReadBuffer(fb gpu.FramebufferHandle, buffer int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.framebuffers[fb]
	if !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "framebuffer %d", fb)
	}
	f.readBuffer = buffer
	return nil
}

func (c *wgpuContext) CheckFramebuffer(fb gpu.FramebufferHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fb == gpu.DefaultFramebuffer {
		return nil
	}
	f, ok := c.framebuffers[fb]
	if !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "framebuffer %d", fb)
	}
	return checkComplete(f, c.textureSize)
}

// textureSize resolves a texture's size. Caller must hold the mutex.
func (c *wgpuContext) textureSize(tex gpu.TextureHandle) (int, int, bool) {
	t, ok := c.textures[tex]
	if !ok {
		return 0, 0, false
	}
	return t.desc.Width, t.desc.Height, true
}

func (c *wgpuContext) DeleteFramebuffer(fb gpu.FramebufferHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.framebuffers, fb)
}

func (c *wgpuContext) CreateProgram(desc gpu.ProgramDescriptor) (gpu.ProgramHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if desc.VertexSource == "" || (desc.FragmentEntry != "" && desc.FragmentSource == "") {
		return 0, errors.Wrapf(gpu.ErrShaderCompile, "%s: missing source", desc.Label)
	}
	for _, tb := range desc.Textures {
		if tb.Slot < 0 || tb.Slot >= maxTextureSlots {
			return 0, errors.Errorf("wgpu: %s: texture slot %d out of range", desc.Label, tb.Slot)
		}
	}

	p := &program{desc: desc}
	var err error
	p.vertex, err = c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.VertexSource,
		},
	})
	if err != nil {
		return 0, errors.Wrapf(gpu.ErrShaderCompile, "%s: %v", desc.Label, err)
	}
	p.fragment = p.vertex
	if desc.FragmentEntry != "" && desc.FragmentSource != desc.VertexSource {
		p.fragment, err = c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: desc.Label + " fragment",
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: desc.FragmentSource,
			},
		})
		if err != nil {
			p.fragment = nil
			p.release()
			return 0, errors.Wrapf(gpu.ErrShaderCompile, "%s fragment: %v", desc.Label, err)
		}
	}

	if err := c.createLayouts(p); err != nil {
		p.release()
		return 0, err
	}

	h := gpu.ProgramHandle(c.handle())
	c.programs[h] = p
	return h, nil
}

// createLayouts builds group 0 (uniform blocks at binding = slot, dynamic offsets) and group 1
// (texture slot s at binding 2s, its sampler at 2s+1 for filterable textures).
func (c *wgpuContext) createLayouts(p *program) error {
	p.uniformSlots = append([]gpu.UniformBlock{}, p.desc.UniformBlocks...)
	sort.Slice(p.uniformSlots, func(i, j int) bool {
		return p.uniformSlots[i].Slot < p.uniformSlots[j].Slot
	})

	uniformEntries := make([]wgpu.BindGroupLayoutEntry, 0, len(p.uniformSlots))
	for _, b := range p.uniformSlots {
		if b.Slot < 0 || b.Slot >= maxUniformSlots {
			return errors.Errorf("wgpu: %s: uniform slot %d out of range", p.desc.Label, b.Slot)
		}
		uniformEntries = append(uniformEntries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(b.Slot),
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   uint64(b.Size),
			},
		})
	}
	var err error
	p.uniformLayout, err = c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   p.desc.Label + " uniforms",
		Entries: uniformEntries,
	})
	if err != nil {
		return errors.Wrapf(err, "wgpu: %s: uniform layout", p.desc.Label)
	}
	layouts := []*wgpu.BindGroupLayout{p.uniformLayout}

	if len(p.desc.Textures) > 0 {
		var textureEntries []wgpu.BindGroupLayoutEntry
		for _, tb := range p.desc.Textures {
			textureEntries = append(textureEntries, wgpu.BindGroupLayoutEntry{
				Binding:    textureBinding(tb.Slot),
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    sampleType(tb.Kind),
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			})
			if tb.Kind == gpu.TextureFloat {
				textureEntries = append(textureEntries, wgpu.BindGroupLayoutEntry{
					Binding:    samplerBinding(tb.Slot),
					Visibility: wgpu.ShaderStageFragment,
					Sampler: wgpu.SamplerBindingLayout{
						Type: wgpu.SamplerBindingTypeFiltering,
					},
				})
			}
		}
		p.textureLayout, err = c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   p.desc.Label + " textures",
			Entries: textureEntries,
		})
		if err != nil {
			return errors.Wrapf(err, "wgpu: %s: texture layout", p.desc.Label)
		}
		layouts = append(layouts, p.textureLayout)
	}

	p.pipelineLayout, err = c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return errors.Wrapf(err, "wgpu: %s: pipeline layout", p.desc.Label)
	}
	return nil
}

func (c *wgpuContext) DeleteProgram(h gpu.ProgramHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.programs[h]
	if !ok {
		return
	}
	for key, rp := range c.pipelines {
		if key.program == h {
			rp.Release()
			delete(c.pipelines, key)
		}
	}
	for key, bg := range c.textureGroups {
		if key.program == h {
			bg.Release()
			delete(c.textureGroups, key)
		}
	}
	p.release()
	delete(c.programs, h)
}

func (c *wgpuContext) CreateMesh(desc gpu.MeshDescriptor) (gpu.MeshHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return 0, errors.Errorf("wgpu: mesh %s is empty", desc.Label)
	}
	vb, err := c.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    desc.Label + " vertices",
		Contents: wgpu.ToBytes(desc.Vertices),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "wgpu: mesh %s vertices", desc.Label)
	}
	ib, err := c.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    desc.Label + " indices",
		Contents: wgpu.ToBytes(desc.Indices),
		Usage:    wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return 0, errors.Wrapf(err, "wgpu: mesh %s indices", desc.Label)
	}

	h := gpu.MeshHandle(c.handle())
	c.meshes[h] = &mesh{vertices: vb, indices: ib, count: uint32(len(desc.Indices))}
	return h, nil
}

func (c *wgpuContext) DeleteMesh(h gpu.MeshHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.meshes[h]
	if !ok {
		return
	}
	m.indices.Release()
	m.vertices.Release()
	delete(c.meshes, h)
}

func (c *wgpuContext) ResizeSurface(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width <= 0 || height <= 0 || (width == c.width && height == c.height) {
		return
	}
	if err := c.configureSurface(width, height); err != nil {
		panic(err)
	}
}

func (c *wgpuContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ops, c.open = nil, nil
	for key, rp := range c.pipelines {
		rp.Release()
		delete(c.pipelines, key)
	}
	for key, bg := range c.textureGroups {
		bg.Release()
		delete(c.textureGroups, key)
	}
	for h, p := range c.programs {
		p.release()
		delete(c.programs, h)
	}
	for h, m := range c.meshes {
		m.indices.Release()
		m.vertices.Release()
		delete(c.meshes, h)
	}
	for h, t := range c.textures {
		t.release()
		delete(c.textures, h)
	}
	c.framebuffers = make(map[gpu.FramebufferHandle]*framebuffer)
	if c.uniforms != nil {
		c.uniforms.Release()
		c.uniforms = nil
	}
	if c.depthView != nil {
		c.depthView.Release()
		c.depthTexture.Release()
		c.depthView, c.depthTexture = nil, nil
	}
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
