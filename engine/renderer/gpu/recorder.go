package gpu

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// Op names a recorded Context call.
type Op int

const (
	OpCreateTexture Op = iota
	OpDeleteTexture
	OpCreateFramebuffer
	OpAttachColor
	OpAttachDepth
	OpSetDrawBuffers
	OpSetReadBuffer
	OpCheckFramebuffer
	OpDeleteFramebuffer
	OpCreateProgram
	OpDeleteProgram
	OpCreateMesh
	OpDeleteMesh
	OpBindTarget
	OpSetViewport
	OpSetClearColor
	OpClear
	OpSetCullMode
	OpSetDepthTest
	OpBindTexture
	OpUseProgram
	OpSetUniformBlock
	OpDrawMesh
	OpDrawFullscreen
	OpBlit
	OpResizeSurface
	OpPresent
	OpRelease
)

var opNames = [...]string{
	"CreateTexture", "DeleteTexture", "CreateFramebuffer", "AttachColor", "AttachDepth",
	"SetDrawBuffers", "SetReadBuffer", "CheckFramebuffer", "DeleteFramebuffer", "CreateProgram",
	"DeleteProgram", "CreateMesh", "DeleteMesh", "BindTarget", "SetViewport", "SetClearColor",
	"Clear", "SetCullMode", "SetDepthTest", "BindTexture", "UseProgram", "SetUniformBlock",
	"DrawMesh", "DrawFullscreen", "Blit", "ResizeSurface", "Present", "Release",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Command is one recorded call together with the bind state at the time it was made.
type Command struct {
	Op Op

	// Bind state when the call was recorded.
	Target    FramebufferHandle
	Program   ProgramHandle
	Cull      CullMode
	DepthTest bool

	// Call arguments; only the fields relevant to Op are set.
	Handle  uint32
	Slot    int
	Mask    ClearMask
	Buffers []int
	Data    []byte
	Rect    [4]int
	Src     FramebufferHandle
	Dst     FramebufferHandle
	Label   string
	Texture TextureDescriptor
}

// FramebufferState is the Recorder's view of a render target.
type FramebufferState struct {
	Label       string
	Color       map[int]TextureHandle
	Depth       TextureHandle
	DrawBuffers []int
	ReadBuffer  int
}

// Recorder is an in-memory Context that records every call and simulates bind state and
// framebuffer completeness. It allocates nothing on a GPU.
type Recorder struct {
	mu *sync.Mutex

	language ShadingLanguage
	next     uint32
	commands []Command

	textures     map[TextureHandle]TextureDescriptor
	framebuffers map[FramebufferHandle]*FramebufferState
	programs     map[ProgramHandle]ProgramDescriptor
	meshes       map[MeshHandle]MeshDescriptor

	target    FramebufferHandle
	program   ProgramHandle
	cull      CullMode
	depthTest bool
	bound     map[int]TextureHandle
	blocks    map[int][]byte

	failChecks      int
	failTextureAt   int
	textureCreates  int
	failProgramName string
}

var _ Context = &Recorder{}

// NewRecorder creates a Recorder reporting the given shading language.
//
// Parameters:
//   - language: the dialect CreateProgram pretends to compile
//
// Returns:
//   - *Recorder: the recorder
func NewRecorder(language ShadingLanguage) *Recorder {
	return &Recorder{
		mu:           &sync.Mutex{},
		language:     language,
		textures:     make(map[TextureHandle]TextureDescriptor),
		framebuffers: make(map[FramebufferHandle]*FramebufferState),
		programs:     make(map[ProgramHandle]ProgramDescriptor),
		meshes:       make(map[MeshHandle]MeshDescriptor),
		bound:        make(map[int]TextureHandle),
		blocks:       make(map[int][]byte),
	}
}

// FailFramebufferChecks makes the next n CheckFramebuffer calls report incompleteness.
func (r *Recorder) FailFramebufferChecks(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failChecks = n
}

// FailTextureCreate makes the n-th CreateTexture call from now (1-based) return an error.
func (r *Recorder) FailTextureCreate(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failTextureAt = r.textureCreates + n
}

// FailProgram makes CreateProgram fail for descriptors with the given label.
func (r *Recorder) FailProgram(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failProgramName = label
}

// Commands returns a copy of everything recorded so far.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// CommandsOf returns the recorded commands with the given op, in order.
func (r *Recorder) CommandsOf(op Op) []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Command
	for _, c := range r.commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many commands with the given op were recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCommands clears the command log but keeps resources and bind state.
func (r *Recorder) ResetCommands() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}

// Texture returns the descriptor of a live texture.
func (r *Recorder) Texture(h TextureHandle) (TextureDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.textures[h]
	return d, ok
}

// Framebuffer returns a copy of a live target's state.
func (r *Recorder) Framebuffer(h FramebufferHandle) (FramebufferState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb, ok := r.framebuffers[h]
	if !ok {
		return FramebufferState{}, false
	}
	out := *fb
	out.Color = make(map[int]TextureHandle, len(fb.Color))
	for k, v := range fb.Color {
		out.Color[k] = v
	}
	out.DrawBuffers = append([]int(nil), fb.DrawBuffers...)
	return out, true
}

// Program returns the descriptor of a live program.
func (r *Recorder) Program(h ProgramHandle) (ProgramDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.programs[h]
	return d, ok
}

// UniformBlock returns the last data written to a slot.
func (r *Recorder) UniformBlock(slot int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blocks[slot]
}

// LiveTextures returns the number of textures not yet deleted.
func (r *Recorder) LiveTextures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.textures)
}

// LiveFramebuffers returns the number of targets not yet deleted.
func (r *Recorder) LiveFramebuffers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.framebuffers)
}

// LivePrograms returns the number of programs not yet deleted.
func (r *Recorder) LivePrograms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.programs)
}

// LiveMeshes returns the number of meshes not yet deleted.
func (r *Recorder) LiveMeshes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.meshes)
}

// record appends a command stamped with the current bind state. Caller must hold the mutex.
func (r *Recorder) record(c Command) {
	c.Target = r.target
	c.Program = r.program
	c.Cull = r.cull
	c.DepthTest = r.depthTest
	r.commands = append(r.commands, c)
}

// handle returns the next unused handle value. Caller must hold the mutex.
func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) ShadingLanguage() ShadingLanguage {
	return r.language
}

func (r *Recorder) CreateTexture(desc TextureDescriptor) (TextureHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textureCreates++
	if r.failTextureAt > 0 && r.textureCreates == r.failTextureAt {
		return 0, errors.Errorf("recorder: texture %q allocation failed", desc.Label)
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, errors.Errorf("recorder: texture %q has size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	h := TextureHandle(r.handle())
	r.textures[h] = desc
	r.record(Command{Op: OpCreateTexture, Handle: uint32(h), Label: desc.Label, Texture: desc})
	return h, nil
}

func (r *Recorder) DeleteTexture(tex TextureHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.textures[tex]; !ok {
		return
	}
	delete(r.textures, tex)
	r.record(Command{Op: OpDeleteTexture, Handle: uint32(tex)})
}

func (r *Recorder) CreateFramebuffer(label string) (FramebufferHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := FramebufferHandle(r.handle())
	r.framebuffers[h] = &FramebufferState{
		Label:       label,
		Color:       make(map[int]TextureHandle),
		DrawBuffers: []int{0},
		ReadBuffer:  0,
	}
	r.record(Command{Op: OpCreateFramebuffer, Handle: uint32(h), Label: label})
	return h, nil
}

func (r *Recorder) AttachColor(fb FramebufferHandle, index int, tex TextureHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.framebuffers[fb]
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "framebuffer %d", fb)
	}
	desc, ok := r.textures[tex]
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "texture %d", tex)
	}
	if desc.Format.IsDepth() {
		return errors.Errorf("recorder: texture %d is a depth format attached as color", tex)
	}
	state.Color[index] = tex
	r.record(Command{Op: OpAttachColor, Handle: uint32(tex), Slot: index, Dst: fb})
	return nil
}

func (r *Recorder) AttachDepth(fb FramebufferHandle, tex TextureHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.framebuffers[fb]
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "framebuffer %d", fb)
	}
	desc, ok := r.textures[tex]
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "texture %d", tex)
	}
	if !desc.Format.IsDepth() {
		return errors.Errorf("recorder: texture %d is a color format attached as depth", tex)
	}
	state.Depth = tex
	r.record(Command{Op: OpAttachDepth, Handle: uint32(tex), Dst: fb})
	return nil
}

func (r *Recorder) SetDrawBuffers(fb FramebufferHandle, buffers []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.framebuffers[fb]
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "framebuffer %d", fb)
	}
	state.DrawBuffers = append([]int(nil), buffers...)
	r.record(Command{Op: OpSetDrawBuffers, Buffers: append([]int(nil), buffers...), Dst: fb})
	return nil
}

func (r *Recorder) SetReadBuffer(fb FramebufferHandle, buffer int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.framebuffers[fb]
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "framebuffer %d", fb)
	}
	state.ReadBuffer = buffer
	r.record(Command{Op: OpSetReadBuffer, Slot: buffer, Dst: fb})
	return nil
}

// CheckFramebuffer mirrors the GL completeness rules the passes rely on: at least one attachment,
// every declared draw buffer attached, and a read buffer that is NONE or attached.
func (r *Recorder) CheckFramebuffer(fb FramebufferHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpCheckFramebuffer, Dst: fb})

	state, ok := r.framebuffers[fb]
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "framebuffer %d", fb)
	}
	if r.failChecks > 0 {
		r.failChecks--
		return errors.Wrapf(ErrIncompleteFramebuffer, "framebuffer %d (%s): forced", fb, state.Label)
	}
	if len(state.Color) == 0 && state.Depth == 0 {
		return errors.Wrapf(ErrIncompleteFramebuffer, "framebuffer %d (%s): missing attachment", fb, state.Label)
	}
	for _, b := range state.DrawBuffers {
		if b == NoBuffer {
			continue
		}
		if _, ok := state.Color[b]; !ok {
			return errors.Wrapf(ErrIncompleteFramebuffer, "framebuffer %d (%s): draw buffer %d not attached", fb, state.Label, b)
		}
	}
	if state.ReadBuffer != NoBuffer {
		if _, ok := state.Color[state.ReadBuffer]; !ok {
			return errors.Wrapf(ErrIncompleteFramebuffer, "framebuffer %d (%s): read buffer %d not attached", fb, state.Label, state.ReadBuffer)
		}
	}
	return nil
}

func (r *Recorder) DeleteFramebuffer(fb FramebufferHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.framebuffers[fb]; !ok {
		return
	}
	delete(r.framebuffers, fb)
	if r.target == fb {
		r.target = DefaultFramebuffer
	}
	r.record(Command{Op: OpDeleteFramebuffer, Dst: fb})
}

func (r *Recorder) CreateProgram(desc ProgramDescriptor) (ProgramHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failProgramName != "" && desc.Label == r.failProgramName {
		return 0, errors.Wrapf(ErrShaderCompile, "program %q", desc.Label)
	}
	if desc.VertexSource == "" || (desc.FragmentEntry != "" && desc.FragmentSource == "") {
		return 0, errors.Wrapf(ErrShaderCompile, "program %q: empty source", desc.Label)
	}
	h := ProgramHandle(r.handle())
	r.programs[h] = desc
	r.record(Command{Op: OpCreateProgram, Handle: uint32(h), Label: desc.Label})
	return h, nil
}

func (r *Recorder) DeleteProgram(p ProgramHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[p]; !ok {
		return
	}
	delete(r.programs, p)
	if r.program == p {
		r.program = 0
	}
	r.record(Command{Op: OpDeleteProgram, Handle: uint32(p)})
}

func (r *Recorder) CreateMesh(desc MeshDescriptor) (MeshHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return 0, errors.Errorf("recorder: mesh %q is empty", desc.Label)
	}
	h := MeshHandle(r.handle())
	r.meshes[h] = desc
	r.record(Command{Op: OpCreateMesh, Handle: uint32(h), Label: desc.Label})
	return h, nil
}

func (r *Recorder) DeleteMesh(m MeshHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meshes[m]; !ok {
		return
	}
	delete(r.meshes, m)
	r.record(Command{Op: OpDeleteMesh, Handle: uint32(m)})
}

func (r *Recorder) BindTarget(fb FramebufferHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = fb
	r.record(Command{Op: OpBindTarget, Dst: fb})
}

func (r *Recorder) SetViewport(x, y, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpSetViewport, Rect: [4]int{x, y, width, height}})
}

func (r *Recorder) SetClearColor(cr, cg, cb, ca float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpSetClearColor})
}

func (r *Recorder) Clear(mask ClearMask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpClear, Mask: mask})
}

func (r *Recorder) SetCullMode(mode CullMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cull = mode
	r.record(Command{Op: OpSetCullMode})
}

func (r *Recorder) SetDepthTest(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depthTest = enabled
	r.record(Command{Op: OpSetDepthTest})
}

func (r *Recorder) BindTexture(slot int, tex TextureHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound[slot] = tex
	r.record(Command{Op: OpBindTexture, Slot: slot, Handle: uint32(tex)})
}

func (r *Recorder) UseProgram(p ProgramHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
	r.record(Command{Op: OpUseProgram, Handle: uint32(p)})
}

func (r *Recorder) SetUniformBlock(slot int, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	captured := append([]byte(nil), data...)
	r.blocks[slot] = captured
	r.record(Command{Op: OpSetUniformBlock, Slot: slot, Data: captured})
}

func (r *Recorder) DrawMesh(m MeshHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpDrawMesh, Handle: uint32(m)})
}

func (r *Recorder) DrawFullscreen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpDrawFullscreen})
}

func (r *Recorder) BlitFramebuffer(src, dst FramebufferHandle, width, height int, mask ClearMask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpBlit, Src: src, Dst: dst, Rect: [4]int{0, 0, width, height}, Mask: mask})
}

func (r *Recorder) ResizeSurface(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpResizeSurface, Rect: [4]int{0, 0, width, height}})
}

func (r *Recorder) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(Command{Op: OpPresent})
	return nil
}

func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textures = make(map[TextureHandle]TextureDescriptor)
	r.framebuffers = make(map[FramebufferHandle]*FramebufferState)
	r.programs = make(map[ProgramHandle]ProgramDescriptor)
	r.meshes = make(map[MeshHandle]MeshDescriptor)
	r.record(Command{Op: OpRelease})
}
