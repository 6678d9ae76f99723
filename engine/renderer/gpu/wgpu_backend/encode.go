package wgpu_backend

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// frameState is the sticky bind state calls are recorded against.
type frameState struct {
	target     gpu.FramebufferHandle
	viewport   [4]int
	clearColor wgpu.Color
	cull       gpu.CullMode
	depthTest  bool
	program    gpu.ProgramHandle
	textures   [maxTextureSlots]gpu.TextureHandle
}

func newFrameState() frameState {
	return frameState{clearColor: wgpu.Color{A: 1}, depthTest: true}
}

// drawRecord is one draw with the state it was recorded under. A zero mesh is the full-screen triangle.
type drawRecord struct {
	program   gpu.ProgramHandle
	mesh      gpu.MeshHandle
	cull      gpu.CullMode
	depthTest bool
	offsets   [maxUniformSlots]uint32
	textures  [maxTextureSlots]gpu.TextureHandle
	viewport  [4]int
}

// passRecord is a run of draws into one target. Clear selects which attachments load as cleared.
type passRecord struct {
	target     gpu.FramebufferHandle
	clear      gpu.ClearMask
	clearColor wgpu.Color
	draws      []drawRecord
}

type copyRecord struct {
	src, dst      gpu.FramebufferHandle
	width, height int
	mask          gpu.ClearMask
}

// frameOp is either a render pass or a framebuffer copy, in submission order.
type frameOp struct {
	pass *passRecord
	blit *copyRecord
}

type pipelineKey struct {
	program    gpu.ProgramHandle
	colors     [maxColorAttachments]wgpu.TextureFormat
	colorCount int
	depth      wgpu.TextureFormat
	cull       gpu.CullMode
	depthTest  bool
}

type textureGroupKey struct {
	program  gpu.ProgramHandle
	textures [maxTextureSlots]gpu.TextureHandle
}

func (k textureGroupKey) uses(tex gpu.TextureHandle) bool {
	for _, t := range k.textures {
		if t == tex {
			return true
		}
	}
	return false
}

var blitOnce sync.Once

// closePass ends the open pass. Caller must hold the mutex.
func (c *wgpuContext) closePass() {
	if c.open != nil {
		c.ops = append(c.ops, frameOp{pass: c.open})
		c.open = nil
	}
}

// openPass returns the pass draws are appended to, starting one on the bound target if needed.
// Caller must hold the mutex.
func (c *wgpuContext) openPass() *passRecord {
	if c.open == nil {
		c.open = &passRecord{target: c.state.target, clearColor: c.state.clearColor}
	}
	return c.open
}

func (c *wgpuContext) BindTarget(fb gpu.FramebufferHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fb != c.state.target {
		c.closePass()
	}
	c.state.target = fb
}

func (c *wgpuContext) SetViewport(x, y, width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.viewport = [4]int{x, y, width, height}
}

func (c *wgpuContext) SetClearColor(r, g, b, a float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.clearColor = wgpu.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)}
}

// Clear becomes the load operation of a pass. Clearing after draws starts a new pass on the same target.
func (c *wgpuContext) Clear(mask gpu.ClearMask) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open != nil && len(c.open.draws) > 0 {
		c.closePass()
	}
	p := c.openPass()
	p.clear |= mask
	if mask.Has(gpu.ClearColor) {
		p.clearColor = c.state.clearColor
	}
}

func (c *wgpuContext) SetCullMode(mode gpu.CullMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.cull = mode
}

func (c *wgpuContext) SetDepthTest(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.depthTest = enabled
}

func (c *wgpuContext) BindTexture(slot int, tex gpu.TextureHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slot < 0 || slot >= maxTextureSlots {
		log.Printf("[wgpu] texture slot %d out of range", slot)
		return
	}
	c.state.textures[slot] = tex
}

func (c *wgpuContext) UseProgram(p gpu.ProgramHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.program = p
}

func (c *wgpuContext) SetUniformBlock(slot int, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slot < 0 || slot >= maxUniformSlots {
		log.Printf("[wgpu] uniform slot %d out of range", slot)
		return
	}
	c.arena.write(slot, data)
}

// record captures a draw under the current state. Caller must hold the mutex.
func (c *wgpuContext) record(m gpu.MeshHandle) {
	d := drawRecord{
		program:   c.state.program,
		mesh:      m,
		cull:      c.state.cull,
		depthTest: c.state.depthTest,
		textures:  c.state.textures,
		viewport:  c.state.viewport,
	}
	for slot := range d.offsets {
		d.offsets[slot] = c.arena.offset(slot)
	}
	p := c.openPass()
	p.draws = append(p.draws, d)
}

func (c *wgpuContext) DrawMesh(m gpu.MeshHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(m)
}

func (c *wgpuContext) DrawFullscreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(0)
}

func (c *wgpuContext) BlitFramebuffer(src, dst gpu.FramebufferHandle, width, height int, mask gpu.ClearMask) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closePass()
	c.ops = append(c.ops, frameOp{blit: &copyRecord{src: src, dst: dst, width: width, height: height, mask: mask}})
}

func (c *wgpuContext) Present() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closePass()
	ops := c.ops
	c.ops = nil
	defer c.arena.reset()

	if err := c.ensureUniformBuffer(); err != nil {
		return err
	}
	if len(c.arena.staging) > 0 {
		c.queue.WriteBuffer(c.uniforms, 0, c.arena.staging)
	}

	surfaceTexture, err := c.surface.GetCurrentTexture()
	if err != nil {
		return errors.Wrap(err, "wgpu: acquire surface texture")
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return errors.Wrap(err, "wgpu: surface view")
	}
	defer view.Release()

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return errors.Wrap(err, "wgpu: command encoder")
	}

	var firstErr error
	for _, op := range ops {
		var opErr error
		if op.pass != nil {
			opErr = c.encodePass(encoder, op.pass, view)
		} else {
			opErr = c.encodeCopy(encoder, op.blit)
		}
		if opErr != nil && firstErr == nil {
			firstErr = opErr
		}
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return errors.Wrap(err, "wgpu: finish frame")
	}
	c.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	c.surface.Present()
	return firstErr
}

// ensureUniformBuffer grows the arena buffer to fit this frame. Growing invalidates every uniform bind
// group. Caller must hold the mutex.
func (c *wgpuContext) ensureUniformBuffer() error {
	need := c.arena.required()
	if c.uniforms != nil && c.uniformsSize >= need {
		return nil
	}
	if c.uniforms != nil {
		c.uniforms.Release()
		c.uniforms = nil
	}
	for _, p := range c.programs {
		if p.uniformGroup != nil {
			p.uniformGroup.Release()
			p.uniformGroup = nil
		}
	}
	buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "uniform arena",
		Size:             uint64(need),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return errors.Wrap(err, "wgpu: uniform arena")
	}
	c.uniforms, c.uniformsSize = buf, need
	return nil
}

// attachments describes the views and formats a pass renders into.
type attachments struct {
	colors        []*wgpu.TextureView
	formats       []wgpu.TextureFormat
	depth         *wgpu.TextureView
	depthFormat   wgpu.TextureFormat
	width, height int
}

// resolveTarget maps a framebuffer handle to its attachments. Caller must hold the mutex.
func (c *wgpuContext) resolveTarget(fb gpu.FramebufferHandle, surfaceView *wgpu.TextureView) (attachments, error) {
	if fb == gpu.DefaultFramebuffer {
		return attachments{
			colors:      []*wgpu.TextureView{surfaceView},
			formats:     []wgpu.TextureFormat{c.surfaceFormat},
			depth:       c.depthView,
			depthFormat: wgpu.TextureFormatDepth24Plus,
			width:       c.width,
			height:      c.height,
		}, nil
	}
	f, ok := c.framebuffers[fb]
	if !ok {
		return attachments{}, errors.Wrapf(gpu.ErrUnknownHandle, "framebuffer %d", fb)
	}
	var a attachments
	for _, h := range f.colorOrder() {
		t, ok := c.textures[h]
		if !ok {
			return attachments{}, errors.Wrapf(gpu.ErrUnknownHandle, "%s: texture %d", f.label, h)
		}
		a.colors = append(a.colors, t.view)
		a.formats = append(a.formats, t.format)
		a.width, a.height = t.desc.Width, t.desc.Height
	}
	if f.depth != 0 {
		t, ok := c.textures[f.depth]
		if !ok {
			return attachments{}, errors.Wrapf(gpu.ErrUnknownHandle, "%s: depth texture %d", f.label, f.depth)
		}
		a.depth, a.depthFormat = t.view, t.format
		a.width, a.height = t.desc.Width, t.desc.Height
	}
	return a, nil
}

// encodePass encodes one recorded pass. Draws that cannot be encoded are skipped and the first
// error is returned after the pass ends. Caller must hold the mutex.
func (c *wgpuContext) encodePass(encoder *wgpu.CommandEncoder, p *passRecord, surfaceView *wgpu.TextureView) error {
	target, err := c.resolveTarget(p.target, surfaceView)
	if err != nil {
		return err
	}

	desc := &wgpu.RenderPassDescriptor{}
	for _, view := range target.colors {
		load := wgpu.LoadOpLoad
		if p.clear.Has(gpu.ClearColor) {
			load = wgpu.LoadOpClear
		}
		desc.ColorAttachments = append(desc.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: p.clearColor,
		})
	}
	if target.depth != nil {
		load := wgpu.LoadOpLoad
		if p.clear.Has(gpu.ClearDepth) {
			load = wgpu.LoadOpClear
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            target.depth,
			DepthLoadOp:     load,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}

	pass := encoder.BeginRenderPass(desc)
	var firstErr error
	for i := range p.draws {
		if err := c.encodeDraw(pass, &p.draws[i], target); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	pass.End()
	return firstErr
}

// encodeDraw sets pipeline, bind groups and viewport for d and issues it. Caller must hold the mutex.
func (c *wgpuContext) encodeDraw(pass *wgpu.RenderPassEncoder, d *drawRecord, target attachments) error {
	prog, ok := c.programs[d.program]
	if !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "program %d", d.program)
	}

	key := pipelineKey{
		program:    d.program,
		colorCount: len(target.formats),
		depth:      target.depthFormat,
		cull:       d.cull,
		depthTest:  d.depthTest,
	}
	copy(key.colors[:], target.formats)
	rp, err := c.pipeline(key, prog)
	if err != nil {
		return err
	}

	uniformGroup, err := c.uniformGroup(prog)
	if err != nil {
		return err
	}
	offsets := make([]uint32, len(prog.uniformSlots))
	for i, b := range prog.uniformSlots {
		offsets[i] = d.offsets[b.Slot]
	}

	var textureGroup *wgpu.BindGroup
	if prog.textureLayout != nil {
		textureGroup, err = c.textureGroup(d.program, prog, d.textures)
		if err != nil {
			return err
		}
	}

	var m *mesh
	if d.mesh != 0 {
		if m, ok = c.meshes[d.mesh]; !ok {
			return errors.Wrapf(gpu.ErrUnknownHandle, "mesh %d", d.mesh)
		}
	}

	rect := d.viewport
	if rect[2] == 0 || rect[3] == 0 {
		rect = [4]int{0, 0, target.width, target.height}
	}
	rect[1] = flipViewportY(rect[1], rect[3], target.height)
	vp, ok := clampViewport(rect, target.width, target.height)
	if !ok {
		return nil
	}

	pass.SetPipeline(rp)
	pass.SetBindGroup(0, uniformGroup, offsets)
	if textureGroup != nil {
		pass.SetBindGroup(1, textureGroup, nil)
	}
	pass.SetViewport(vp[0], vp[1], vp[2], vp[3], 0, 1)
	if m == nil {
		pass.Draw(3, 1, 0, 0)
		return nil
	}
	pass.SetVertexBuffer(0, m.vertices, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(m.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.count, 1, 0, 0, 0)
	return nil
}

// vertexLayout is the interleaved position, normal, uv layout of gpu.Vertex.
var vertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: gpu.VertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
	},
}

// pipeline returns the cached render pipeline for key, creating it on first use.
// Caller must hold the mutex.
func (c *wgpuContext) pipeline(key pipelineKey, prog *program) (*wgpu.RenderPipeline, error) {
	if rp, ok := c.pipelines[key]; ok {
		return rp, nil
	}

	vertex := wgpu.VertexState{
		Module:     prog.vertex,
		EntryPoint: prog.desc.VertexEntry,
	}
	if prog.desc.UsesVertices {
		vertex.Buffers = []wgpu.VertexBufferLayout{vertexLayout}
	}

	var fragment *wgpu.FragmentState
	if prog.desc.FragmentEntry != "" {
		fragment = &wgpu.FragmentState{
			Module:     prog.fragment,
			EntryPoint: prog.desc.FragmentEntry,
		}
		for _, format := range key.colors[:key.colorCount] {
			fragment.Targets = append(fragment.Targets, wgpu.ColorTargetState{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			})
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if key.depth != wgpu.TextureFormatUndefined {
		compare := wgpu.CompareFunctionLess
		if !key.depthTest {
			compare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            key.depth,
			DepthWriteEnabled: key.depthTest,
			DepthCompare:      compare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	rp, err := c.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:    prog.desc.Label,
		Layout:   prog.pipelineLayout,
		Vertex:   vertex,
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode(key.cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wgpu: %s: render pipeline", prog.desc.Label)
	}
	c.pipelines[key] = rp
	return rp, nil
}

// uniformGroup binds the arena buffer once per uniform block of prog. Caller must hold the mutex.
func (c *wgpuContext) uniformGroup(prog *program) (*wgpu.BindGroup, error) {
	if prog.uniformGroup != nil {
		return prog.uniformGroup, nil
	}
	entries := make([]wgpu.BindGroupEntry, 0, len(prog.uniformSlots))
	for _, b := range prog.uniformSlots {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(b.Slot),
			Buffer:  c.uniforms,
			Offset:  0,
			Size:    uint64(b.Size),
		})
	}
	bg, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   prog.desc.Label + " uniforms",
		Layout:  prog.uniformLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wgpu: %s: uniform bind group", prog.desc.Label)
	}
	prog.uniformGroup = bg
	return bg, nil
}

// textureGroup returns the cached bind group for the textures bound to prog's slots.
// Caller must hold the mutex.
func (c *wgpuContext) textureGroup(h gpu.ProgramHandle, prog *program, bound [maxTextureSlots]gpu.TextureHandle) (*wgpu.BindGroup, error) {
	key := textureGroupKey{program: h}
	for _, tb := range prog.desc.Textures {
		key.textures[tb.Slot] = bound[tb.Slot]
	}
	if bg, ok := c.textureGroups[key]; ok {
		return bg, nil
	}

	var entries []wgpu.BindGroupEntry
	for _, tb := range prog.desc.Textures {
		t, ok := c.textures[key.textures[tb.Slot]]
		if !ok {
			return nil, errors.Errorf("wgpu: %s: no texture bound for %s at slot %d", prog.desc.Label, tb.Name, tb.Slot)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     textureBinding(tb.Slot),
			TextureView: t.view,
		})
		if tb.Kind == gpu.TextureFloat {
			if t.sampler == nil {
				return nil, errors.Errorf("wgpu: %s: %s has no sampler", prog.desc.Label, tb.Name)
			}
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: samplerBinding(tb.Slot),
				Sampler: t.sampler,
			})
		}
	}
	bg, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   prog.desc.Label + " textures",
		Layout:  prog.textureLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wgpu: %s: texture bind group", prog.desc.Label)
	}
	c.textureGroups[key] = bg
	return bg, nil
}

// encodeCopy performs a blit as a texture copy. WebGPU copies cannot scale or convert formats and the
// surface cannot be a copy target, so those blits are skipped. Caller must hold the mutex.
func (c *wgpuContext) encodeCopy(encoder *wgpu.CommandEncoder, b *copyRecord) error {
	if b.src == gpu.DefaultFramebuffer || b.dst == gpu.DefaultFramebuffer {
		blitOnce.Do(func() {
			log.Printf("[wgpu] blits to or from the surface are not supported")
		})
		return nil
	}
	src, ok := c.framebuffers[b.src]
	if !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "framebuffer %d", b.src)
	}
	dst, ok := c.framebuffers[b.dst]
	if !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "framebuffer %d", b.dst)
	}

	if b.mask.Has(gpu.ClearDepth) {
		if err := c.copyTexture(encoder, src.depth, dst.depth, b.width, b.height, wgpu.TextureAspectDepthOnly); err != nil {
			return errors.Wrapf(err, "wgpu: blit depth %s -> %s", src.label, dst.label)
		}
	}
	if b.mask.Has(gpu.ClearColor) {
		var dstTex gpu.TextureHandle
		if order := dst.colorOrder(); len(order) > 0 {
			dstTex = order[0]
		}
		if err := c.copyTexture(encoder, src.color[src.readBuffer], dstTex, b.width, b.height, wgpu.TextureAspectAll); err != nil {
			return errors.Wrapf(err, "wgpu: blit color %s -> %s", src.label, dst.label)
		}
	}
	return nil
}

func (c *wgpuContext) copyTexture(encoder *wgpu.CommandEncoder, srcH, dstH gpu.TextureHandle, width, height int, aspect wgpu.TextureAspect) error {
	src, ok := c.textures[srcH]
	if !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "source texture %d", srcH)
	}
	dst, ok := c.textures[dstH]
	if !ok {
		return errors.Wrapf(gpu.ErrUnknownHandle, "destination texture %d", dstH)
	}
	if src.format != dst.format {
		return errors.Errorf("format %d does not match %d", src.format, dst.format)
	}
	w := min(width, src.desc.Width, dst.desc.Width)
	h := min(height, src.desc.Height, dst.desc.Height)
	if w <= 0 || h <= 0 {
		return nil
	}
	encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: src.tex, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: aspect},
		&wgpu.ImageCopyTexture{Texture: dst.tex, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: aspect},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	return nil
}
