package pass

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/model"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/postfx"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/target"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rec *gpu.Recorder
	seq Sequencer
	mdl model.Model
}

func newFixture(t *testing.T, options ...SequencerBuilderOption) *fixture {
	t.Helper()
	rec := gpu.NewRecorder(gpu.GLSL)
	seq, err := NewSequencer(rec, target.NewManager(rec), options...)
	require.NoError(t, err)

	mdl := model.NewModel(model.WithName("cube"), model.WithMeshData(model.Cube(1)))
	require.NoError(t, mdl.Upload(rec))
	rec.ResetCommands()
	return &fixture{rec: rec, seq: seq, mdl: mdl}
}

func (fx *fixture) frame(instances, lights int) *Frame {
	f := &Frame{
		ViewProjection:  mgl32.Perspective(mgl32.DegToRad(60), 1.5, 0.1, 100),
		EyePosition:     mgl32.Vec3{0, 0, 5},
		LightView:       mgl32.Ident4(),
		LightProjection: mgl32.Ident4(),
		Light:           light.NewDirectional(),
		Shadow:          light.NewShadow(),
		Material:        material.NewMaterial(),
		Aberration:      postfx.NewChromaticAberration(),
	}
	for i := 0; i < instances; i++ {
		f.Instances = append(f.Instances, Instance{
			Drawable:    fx.mdl,
			Model:       mgl32.Translate3D(float32(i), 0, 0),
			Albedo:      mgl32.Vec4{1, 1, 1, 1},
			CastsShadow: i%2 == 0,
		})
	}
	f.PointLights = light.NewPointGrid(light.WithGridSize(lights, 1))
	return f
}

func indexOf(cmds []gpu.Command, match func(gpu.Command) bool) int {
	for i, c := range cmds {
		if match(c) {
			return i
		}
	}
	return -1
}

func filter(cmds []gpu.Command, match func(gpu.Command) bool) []gpu.Command {
	var out []gpu.Command
	for _, c := range cmds {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

func TestShadowPassClearsDepthOnlyAndCullsFront(t *testing.T) {
	fx := newFixture(t)
	shadowFB := fx.seq.ShadowTarget().Framebuffer
	require.NoError(t, fx.seq.RenderFrame(fx.frame(5, 0)))

	cmds := fx.rec.Commands()
	inShadow := func(op gpu.Op) func(gpu.Command) bool {
		return func(c gpu.Command) bool { return c.Op == op && c.Target == shadowFB }
	}

	clears := filter(cmds, inShadow(gpu.OpClear))
	require.Len(t, clears, 1)
	assert.Equal(t, gpu.ClearDepth, clears[0].Mask)

	draws := filter(cmds, inShadow(gpu.OpDrawMesh))
	assert.Len(t, draws, 3, "only shadow casters")
	for _, d := range draws {
		assert.Equal(t, gpu.CullFront, d.Cull)
		assert.True(t, d.DepthTest)
	}

	viewports := filter(cmds, inShadow(gpu.OpSetViewport))
	require.NotEmpty(t, viewports)
	assert.Equal(t, [4]int{0, 0, 2048, 2048}, viewports[0].Rect)
}

func TestForwardDrawsEachInstanceOnceIntoComposite(t *testing.T) {
	fx := newFixture(t)
	composite := fx.seq.Composite()
	require.NoError(t, fx.seq.RenderFrame(fx.frame(7, 4)))

	draws := filter(fx.rec.Commands(), func(c gpu.Command) bool {
		return c.Op == gpu.OpDrawMesh && c.Target == composite.Framebuffer
	})
	assert.Len(t, draws, 7)
	for _, d := range draws {
		assert.Equal(t, gpu.CullBack, d.Cull)
	}
	assert.Nil(t, fx.seq.GBuffer())
	assert.Equal(t, 1, fx.rec.Count(gpu.OpDrawFullscreen), "post only")
}

func TestDeferredLightingIsOneFullscreenDraw(t *testing.T) {
	fx := newFixture(t, WithMode(ModeDeferred))
	g, composite := fx.seq.GBuffer(), fx.seq.Composite()
	require.NotNil(t, g)

	for _, lights := range []int{0, 10, 64} {
		fx.rec.ResetCommands()
		require.NoError(t, fx.seq.RenderFrame(fx.frame(4, lights)))

		cmds := fx.rec.Commands()
		lighting := filter(cmds, func(c gpu.Command) bool {
			return c.Op == gpu.OpDrawFullscreen && c.Target == composite.Framebuffer
		})
		assert.Len(t, lighting, 1, "lights=%d", lights)

		geometry := filter(cmds, func(c gpu.Command) bool {
			return c.Op == gpu.OpDrawMesh && c.Target == g.Framebuffer
		})
		assert.Len(t, geometry, 4)

		count := binary.LittleEndian.Uint32(fx.rec.UniformBlock(SlotLighting)[48:])
		assert.Equal(t, uint32(lights), count)
	}
}

func TestDeferredBindsGBufferAndShadowSlots(t *testing.T) {
	fx := newFixture(t, WithMode(ModeDeferred))
	g, shadow := fx.seq.GBuffer(), fx.seq.ShadowTarget()
	require.NoError(t, fx.seq.RenderFrame(fx.frame(1, 1)))

	binds := filter(fx.rec.Commands(), func(c gpu.Command) bool {
		return c.Op == gpu.OpBindTexture && c.Target == fx.seq.Composite().Framebuffer
	})
	require.Len(t, binds, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, binds[i].Slot)
		assert.Equal(t, uint32(g.Color[i]), binds[i].Handle)
	}
	assert.Equal(t, 3, binds[3].Slot)
	assert.Equal(t, uint32(shadow.Depth), binds[3].Handle)
}

func TestDepthBlitFollowsLightingAndPrecedesOrbs(t *testing.T) {
	fx := newFixture(t, WithMode(ModeDeferred))
	g, composite := fx.seq.GBuffer(), fx.seq.Composite()
	f := fx.frame(2, 5)
	f.ShowLightOrbs = true
	require.NoError(t, fx.seq.RenderFrame(f))

	cmds := fx.rec.Commands()
	lighting := indexOf(cmds, func(c gpu.Command) bool {
		return c.Op == gpu.OpDrawFullscreen && c.Target == composite.Framebuffer
	})
	blit := indexOf(cmds, func(c gpu.Command) bool { return c.Op == gpu.OpBlit })
	require.NotEqual(t, -1, lighting)
	require.NotEqual(t, -1, blit)
	assert.Greater(t, blit, lighting)

	b := cmds[blit]
	assert.Equal(t, g.Framebuffer, b.Src)
	assert.Equal(t, composite.Framebuffer, b.Dst)
	assert.Equal(t, gpu.ClearDepth, b.Mask)

	orbs := filter(cmds[blit:], func(c gpu.Command) bool {
		return c.Op == gpu.OpDrawMesh && c.Target == composite.Framebuffer
	})
	assert.Len(t, orbs, 5)
	for _, o := range orbs {
		assert.True(t, o.DepthTest)
	}
}

func TestPointLightsAreTruncated(t *testing.T) {
	fx := newFixture(t, WithMode(ModeDeferred))
	f := fx.frame(1, 100)
	f.ShowLightOrbs = true
	require.NoError(t, fx.seq.RenderFrame(f))

	count := binary.LittleEndian.Uint32(fx.rec.UniformBlock(SlotLighting)[48:])
	assert.Equal(t, uint32(light.MaxPointLights), count)

	blit := indexOf(fx.rec.Commands(), func(c gpu.Command) bool { return c.Op == gpu.OpBlit })
	orbs := filter(fx.rec.Commands()[blit:], func(c gpu.Command) bool { return c.Op == gpu.OpDrawMesh })
	assert.Len(t, orbs, light.MaxPointLights)
}

func TestPostAlwaysDrawsAndPresentIsLast(t *testing.T) {
	for _, mode := range []Mode{ModeForward, ModeDeferred} {
		fx := newFixture(t, WithMode(mode))
		f := fx.frame(1, 0)
		require.NoError(t, fx.seq.RenderFrame(f))

		cmds := fx.rec.Commands()
		require.NotEmpty(t, cmds)
		assert.Equal(t, gpu.OpPresent, cmds[len(cmds)-1].Op, mode.String())

		post := filter(cmds, func(c gpu.Command) bool {
			return c.Op == gpu.OpDrawFullscreen && c.Target == gpu.DefaultFramebuffer
		})
		assert.Len(t, post, 1, mode.String())
		assert.Equal(t, int32(0), int32(binary.LittleEndian.Uint32(fx.rec.UniformBlock(SlotPost)[12:])))

		bind := filter(cmds, func(c gpu.Command) bool {
			return c.Op == gpu.OpBindTexture && c.Target == gpu.DefaultFramebuffer
		})
		require.Len(t, bind, 1)
		assert.Equal(t, uint32(fx.seq.Composite().Color[0]), bind[0].Handle)

		f.Aberration.Toggle()
		require.NoError(t, fx.seq.RenderFrame(f))
		assert.Equal(t, int32(1), int32(binary.LittleEndian.Uint32(fx.rec.UniformBlock(SlotPost)[12:])))
	}
}

func TestShadowsDisabledSkipsShadowPass(t *testing.T) {
	fx := newFixture(t, WithShadows(false))
	shadowFB := fx.seq.ShadowTarget().Framebuffer
	require.NoError(t, fx.seq.RenderFrame(fx.frame(3, 0)))

	touched := filter(fx.rec.Commands(), func(c gpu.Command) bool { return c.Target == shadowFB })
	assert.Empty(t, touched)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(fx.rec.UniformBlock(SlotLighting)[52:]))

	var names []string
	for _, timing := range fx.seq.Timings() {
		names = append(names, timing.Pass)
	}
	assert.Equal(t, []string{PassLighting, PassPost, PassPresent}, names)
}

func TestDeferredTimingsFollowPassOrder(t *testing.T) {
	fx := newFixture(t, WithMode(ModeDeferred))
	require.NoError(t, fx.seq.RenderFrame(fx.frame(1, 1)))

	var names []string
	for _, timing := range fx.seq.Timings() {
		names = append(names, timing.Pass)
	}
	assert.Equal(t, []string{PassShadow, PassGeometry, PassLighting, PassPost, PassPresent}, names)
}

func TestResizeKeepsTargets(t *testing.T) {
	fx := newFixture(t, WithMode(ModeDeferred), WithViewport(1080, 720))
	composite := fx.seq.Composite()

	fx.seq.Resize(640, 480)
	fx.seq.Resize(0, 100)
	assert.Equal(t, 640, fx.seq.Viewport().Width)
	assert.Equal(t, 480, fx.seq.Viewport().Height)

	require.NoError(t, fx.seq.RenderFrame(fx.frame(1, 0)))
	assert.Zero(t, fx.rec.Count(gpu.OpCreateTexture))
	assert.Zero(t, fx.rec.Count(gpu.OpCreateFramebuffer))
	assert.Same(t, composite, fx.seq.Composite())
	assert.Equal(t, 1080, composite.Width)

	vps := filter(fx.rec.Commands(), func(c gpu.Command) bool {
		return c.Op == gpu.OpSetViewport && c.Target == composite.Framebuffer
	})
	require.NotEmpty(t, vps)
	assert.Equal(t, [4]int{0, 0, 640, 480}, vps[0].Rect)
}

func TestInvalidFrameIssuesNoCommands(t *testing.T) {
	fx := newFixture(t)

	err := fx.seq.RenderFrame(nil)
	assert.True(t, errors.Is(err, ErrNilFrame))

	f := fx.frame(1, 0)
	f.Instances = append(f.Instances, Instance{Drawable: model.NewModel(model.WithName("pending"), model.WithMeshData(model.Cube(1)))})
	err = fx.seq.RenderFrame(f)
	assert.True(t, errors.Is(err, model.ErrNotUploaded), "got %v", err)

	assert.Empty(t, fx.rec.Commands())
}

func TestReleaseFreesEverythingOnce(t *testing.T) {
	fx := newFixture(t, WithMode(ModeDeferred))
	fx.seq.Release()
	fx.seq.Release()
	fx.mdl.Release(fx.rec)

	assert.Zero(t, fx.rec.LivePrograms())
	assert.Zero(t, fx.rec.LiveTextures())
	assert.Zero(t, fx.rec.LiveFramebuffers())
	assert.Zero(t, fx.rec.LiveMeshes())

	assert.True(t, errors.Is(fx.seq.RenderFrame(&Frame{}), ErrReleased))
}

func TestProgramFailureReleasesPartialState(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	rec.FailProgram(ProgramDeferredLighting.String())

	seq, err := NewSequencer(rec, target.NewManager(rec), WithMode(ModeDeferred))
	assert.Nil(t, seq)
	assert.True(t, errors.Is(err, gpu.ErrShaderCompile), "got %v", err)
	assert.Zero(t, rec.LivePrograms())
	assert.Zero(t, rec.LiveTextures())
}

func TestTargetFailureReleasesPrograms(t *testing.T) {
	rec := gpu.NewRecorder(gpu.WGSL)
	rec.FailFramebufferChecks(1)

	_, err := NewSequencer(rec, target.NewManager(rec))
	assert.True(t, errors.Is(err, target.ErrIncompleteFramebuffer), "got %v", err)
	assert.Zero(t, rec.LivePrograms())
	assert.Zero(t, rec.LiveMeshes())
	assert.Zero(t, rec.LiveFramebuffers())
}
