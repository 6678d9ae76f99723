package pass

import (
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/model"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/target"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var (
	// ErrNilFrame is returned by RenderFrame when called without a frame.
	ErrNilFrame = errors.New("pass: nil frame")
	// ErrReleased is returned by RenderFrame after Release.
	ErrReleased = errors.New("pass: sequencer released")
)

// Mode selects the fixed pass order.
type Mode int

const (
	// ModeForward: shadow, forward lit, post, present.
	ModeForward Mode = iota
	// ModeDeferred: shadow, geometry, lighting, depth blit, light orbs, post, present.
	ModeDeferred
)

func (m Mode) String() string {
	if m == ModeDeferred {
		return "deferred"
	}
	return "forward"
}

// Pass names reported in PassTiming.
const (
	PassShadow   = "shadow"
	PassGeometry = "geometry"
	PassLighting = "lighting"
	PassPost     = "post"
	PassPresent  = "present"
)

// OrbScale is the uniform scale of the sphere drawn at each point light.
const OrbScale = 0.2

// PassTiming is the CPU time spent recording one pass of the last frame.
type PassTiming struct {
	Pass     string
	Duration time.Duration
}

type sequencer struct {
	mu *sync.Mutex

	ctx     gpu.Context
	targets target.Manager

	mode             Mode
	shadows          bool
	shadowResolution int
	shadowFormat     gpu.TextureFormat
	viewport         common.Viewport
	clearColor       mgl32.Vec4

	programs  programSet
	orb       model.Model
	shadowMap *target.Target
	gbuffer   *target.Target
	composite *target.Target

	timings         []PassTiming
	truncatedLogged bool
	released        bool
}

// Sequencer records the passes of one frame, in a fixed order, against a gpu.Context.
type Sequencer interface {
	// RenderFrame records and presents one frame.
	//
	// Parameters:
	//   - frame: the per-frame state; not retained
	//
	// Returns:
	//   - error: ErrNilFrame, ErrReleased, a wrapped model.ErrNotUploaded for an instance without a
	//     mesh, or the Present error. Validation happens before any command is issued.
	RenderFrame(frame *Frame) error

	// Resize changes the viewport used by later frames and resizes the presentation surface.
	// Off-screen targets keep their original size. Non-positive sizes are ignored.
	Resize(width, height int)

	// Viewport returns the current viewport size.
	Viewport() common.Viewport

	// Mode returns the pass order.
	Mode() Mode

	// ShadowsEnabled reports whether the shadow pass runs.
	ShadowsEnabled() bool

	// ShadowTarget returns the shadow map target.
	ShadowTarget() *target.Target

	// GBuffer returns the geometry target, or nil in forward mode.
	GBuffer() *target.Target

	// Composite returns the lighting target the post pass reads.
	Composite() *target.Target

	// Timings returns the per-pass timings of the last frame.
	Timings() []PassTiming

	// Release deletes the sequencer's programs, targets and orb mesh. Calling it twice is a no-op.
	Release()
}

var _ Sequencer = &sequencer{}

// NewSequencer creates the programs and off-screen targets for a mode.
//
// Parameters:
//   - ctx: the GPU context to record into
//   - targets: the manager that owns the off-screen targets
//   - options: functional options to configure the sequencer
//
// Returns:
//   - Sequencer: the ready sequencer
//   - error: a program or target creation error; everything created so far is released
func NewSequencer(ctx gpu.Context, targets target.Manager, options ...SequencerBuilderOption) (Sequencer, error) {
	s := &sequencer{
		mu:               &sync.Mutex{},
		ctx:              ctx,
		targets:          targets,
		mode:             ModeForward,
		shadows:          true,
		shadowResolution: light.ShadowMapResolution,
		shadowFormat:     gpu.FormatDepth16,
		viewport:         common.Viewport{Width: 1080, Height: 720},
		clearColor:       mgl32.Vec4{0.6, 0.8, 0.92, 1},
	}
	for _, option := range options {
		option(s)
	}
	if s.viewport.Empty() {
		return nil, errors.Wrapf(target.ErrInvalidSize, "pass: viewport %dx%d", s.viewport.Width, s.viewport.Height)
	}

	if err := s.create(); err != nil {
		s.releaseLocked()
		return nil, err
	}
	return s, nil
}

func (s *sequencer) create() error {
	ids := []ProgramID{ProgramShadow, ProgramForward, ProgramLightOrb, ProgramPost}
	if s.mode == ModeDeferred {
		ids = []ProgramID{ProgramShadow, ProgramGeometry, ProgramDeferredLighting, ProgramLightOrb, ProgramPost}
	}
	programs, err := createPrograms(s.ctx, ids)
	if err != nil {
		return err
	}
	s.programs = programs

	s.orb = model.NewModel(model.WithName("light_orb"), model.WithMeshData(model.Sphere(1, 8)))
	if err := s.orb.Upload(s.ctx); err != nil {
		return errors.Wrap(err, "pass: light orb")
	}

	if s.shadowMap, err = s.targets.CreateShadowTarget(s.shadowResolution, s.shadowFormat); err != nil {
		return err
	}
	if s.mode == ModeDeferred {
		if s.gbuffer, err = s.targets.CreateGBuffer(s.viewport.Width, s.viewport.Height); err != nil {
			return err
		}
	}
	if s.composite, err = s.targets.CreateComposite(s.viewport.Width, s.viewport.Height); err != nil {
		return err
	}
	return nil
}

func validateFrame(f *Frame) error {
	if f == nil {
		return ErrNilFrame
	}
	for i, inst := range f.Instances {
		if inst.Drawable == nil || inst.Drawable.Mesh() == 0 {
			name := "<nil>"
			if inst.Drawable != nil {
				name = inst.Drawable.Name()
			}
			return errors.Wrapf(model.ErrNotUploaded, "pass: instance %d (%s)", i, name)
		}
	}
	return nil
}

func (s *sequencer) RenderFrame(frame *Frame) error {
	if err := validateFrame(frame); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}

	s.timings = s.timings[:0]
	timed := func(name string, fn func()) {
		start := time.Now()
		fn()
		s.timings = append(s.timings, PassTiming{Pass: name, Duration: time.Since(start)})
	}

	lightVP := frame.LightViewProjection()
	if s.shadows {
		timed(PassShadow, func() { s.shadowPass(frame, lightVP) })
	}

	lighting, dropped := NewLightingBlock(frame, s.shadows)
	if dropped > 0 && !s.truncatedLogged {
		log.Printf("[pass] %d point lights exceed the limit of %d; extra lights are ignored", len(frame.PointLights), light.MaxPointLights)
		s.truncatedLogged = true
	}
	camera := FrameBlock{ViewProjection: frame.ViewProjection, LightViewProjection: lightVP, EyePosition: frame.EyePosition}

	if s.mode == ModeDeferred {
		timed(PassGeometry, func() { s.geometryPass(frame, &camera) })
		timed(PassLighting, func() { s.deferredLightingPass(frame, &camera, &lighting) })
	} else {
		timed(PassLighting, func() { s.forwardPass(frame, &camera, &lighting) })
	}
	timed(PassPost, func() { s.postPass(frame) })

	var err error
	timed(PassPresent, func() { err = s.ctx.Present() })
	if err != nil {
		return errors.Wrap(err, "pass: present")
	}
	return nil
}

// drawInstances uploads an object block and draws each instance accepted by keep.
func (s *sequencer) drawInstances(instances []Instance, keep func(Instance) bool) {
	for _, inst := range instances {
		if keep != nil && !keep(inst) {
			continue
		}
		obj := ObjectBlock{Model: inst.Model, Albedo: inst.Albedo}
		s.ctx.SetUniformBlock(SlotObject, obj.Marshal())
		s.ctx.DrawMesh(inst.Drawable.Mesh())
	}
}

func (s *sequencer) shadowPass(f *Frame, lightVP mgl32.Mat4) {
	s.ctx.BindTarget(s.shadowMap.Framebuffer)
	s.ctx.SetViewport(0, 0, s.shadowMap.Width, s.shadowMap.Height)
	s.ctx.Clear(gpu.ClearDepth)
	s.ctx.SetCullMode(gpu.CullFront)
	s.ctx.SetDepthTest(true)
	s.ctx.UseProgram(s.programs[ProgramShadow])

	block := FrameBlock{ViewProjection: lightVP, LightViewProjection: lightVP, EyePosition: f.EyePosition}
	s.ctx.SetUniformBlock(SlotFrame, block.Marshal())
	s.drawInstances(f.Instances, func(inst Instance) bool { return inst.CastsShadow })
}

func (s *sequencer) geometryPass(f *Frame, camera *FrameBlock) {
	s.ctx.BindTarget(s.gbuffer.Framebuffer)
	s.ctx.SetViewport(0, 0, s.viewport.Width, s.viewport.Height)
	s.ctx.SetClearColor(0, 0, 0, 0)
	s.ctx.Clear(gpu.ClearColor | gpu.ClearDepth)
	s.ctx.SetCullMode(gpu.CullBack)
	s.ctx.SetDepthTest(true)
	s.ctx.UseProgram(s.programs[ProgramGeometry])
	s.ctx.SetUniformBlock(SlotFrame, camera.Marshal())
	s.drawInstances(f.Instances, nil)
}

func (s *sequencer) bindComposite() {
	s.ctx.BindTarget(s.composite.Framebuffer)
	s.ctx.SetViewport(0, 0, s.viewport.Width, s.viewport.Height)
	s.ctx.SetClearColor(s.clearColor[0], s.clearColor[1], s.clearColor[2], s.clearColor[3])
	s.ctx.Clear(gpu.ClearColor | gpu.ClearDepth)
}

func (s *sequencer) deferredLightingPass(f *Frame, camera *FrameBlock, lighting *LightingBlock) {
	s.bindComposite()
	s.ctx.SetCullMode(gpu.CullNone)
	s.ctx.SetDepthTest(false)
	s.ctx.UseProgram(s.programs[ProgramDeferredLighting])
	for i, tex := range s.gbuffer.Color {
		s.ctx.BindTexture(i, tex)
	}
	s.ctx.BindTexture(len(s.gbuffer.Color), s.shadowMap.Depth)
	s.ctx.SetUniformBlock(SlotFrame, camera.Marshal())
	s.ctx.SetUniformBlock(SlotLighting, lighting.Marshal())
	s.ctx.DrawFullscreen()

	// orbs depth-test against the scene geometry
	s.ctx.BlitFramebuffer(s.gbuffer.Framebuffer, s.composite.Framebuffer, s.gbuffer.Width, s.gbuffer.Height, gpu.ClearDepth)
	s.orbPass(f)
}

func (s *sequencer) forwardPass(f *Frame, camera *FrameBlock, lighting *LightingBlock) {
	s.bindComposite()
	s.ctx.SetCullMode(gpu.CullBack)
	s.ctx.SetDepthTest(true)
	s.ctx.UseProgram(s.programs[ProgramForward])
	s.ctx.BindTexture(0, s.shadowMap.Depth)
	s.ctx.SetUniformBlock(SlotFrame, camera.Marshal())
	s.ctx.SetUniformBlock(SlotLighting, lighting.Marshal())
	s.drawInstances(f.Instances, nil)
	s.orbPass(f)
}

func (s *sequencer) orbPass(f *Frame) {
	if !f.ShowLightOrbs || len(f.PointLights) == 0 {
		return
	}
	lights := f.PointLights
	if len(lights) > light.MaxPointLights {
		lights = lights[:light.MaxPointLights]
	}
	s.ctx.SetCullMode(gpu.CullBack)
	s.ctx.SetDepthTest(true)
	s.ctx.UseProgram(s.programs[ProgramLightOrb])
	for _, p := range lights {
		obj := ObjectBlock{
			Model:  mgl32.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(mgl32.Scale3D(OrbScale, OrbScale, OrbScale)),
			Albedo: p.Color,
		}
		s.ctx.SetUniformBlock(SlotObject, obj.Marshal())
		s.ctx.DrawMesh(s.orb.Mesh())
	}
}

func (s *sequencer) postPass(f *Frame) {
	s.ctx.BindTarget(gpu.DefaultFramebuffer)
	s.ctx.SetViewport(0, 0, s.viewport.Width, s.viewport.Height)
	s.ctx.SetClearColor(0, 0, 0, 1)
	s.ctx.Clear(gpu.ClearColor | gpu.ClearDepth)
	s.ctx.SetCullMode(gpu.CullNone)
	s.ctx.SetDepthTest(false)
	s.ctx.UseProgram(s.programs[ProgramPost])
	s.ctx.BindTexture(0, s.composite.Color[0])
	block := f.Aberration.GPU()
	s.ctx.SetUniformBlock(SlotPost, block.Marshal())
	s.ctx.DrawFullscreen()
}

func (s *sequencer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = common.Viewport{Width: width, Height: height}
	s.ctx.ResizeSurface(width, height)
}

func (s *sequencer) Viewport() common.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

func (s *sequencer) Mode() Mode {
	return s.mode
}

func (s *sequencer) ShadowsEnabled() bool {
	return s.shadows
}

func (s *sequencer) ShadowTarget() *target.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shadowMap
}

func (s *sequencer) GBuffer() *target.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gbuffer
}

func (s *sequencer) Composite() *target.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composite
}

func (s *sequencer) Timings() []PassTiming {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PassTiming, len(s.timings))
	copy(out, s.timings)
	return out
}

func (s *sequencer) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
}

// releaseLocked frees everything create allocated, newest first. Caller must hold the mutex or own s exclusively.
func (s *sequencer) releaseLocked() {
	if s.released {
		return
	}
	s.targets.Destroy(s.composite)
	s.targets.Destroy(s.gbuffer)
	s.targets.Destroy(s.shadowMap)
	if s.orb != nil {
		s.orb.Release(s.ctx)
	}
	s.programs.release(s.ctx)
	s.released = true
}
