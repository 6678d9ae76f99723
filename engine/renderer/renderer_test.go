package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/postfx"
	"github.com/Carmen-Shannon/oxy-passes/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackendType(t *testing.T) {
	for name, want := range map[string]RendererBackendType{
		"opengl": BackendTypeOpenGL,
		"GL":     BackendTypeOpenGL,
		"wgpu":   BackendTypeWGPU,
		"WebGPU": BackendTypeWGPU,
	} {
		got, err := ParseBackendType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseBackendType("vulkan")
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestBackendTypeRequirements(t *testing.T) {
	assert.Equal(t, gpu.GLSL, BackendTypeOpenGL.ShadingLanguage())
	assert.Equal(t, gpu.WGSL, BackendTypeWGPU.ShadingLanguage())
	assert.Equal(t, window.APIOpenGL, BackendTypeOpenGL.ClientAPI())
	assert.Equal(t, window.APINone, BackendTypeWGPU.ClientAPI())
	assert.Equal(t, "wgpu", BackendTypeWGPU.String())
}

func TestRendererSizesTargetsToViewport(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	r, err := newRendererWithContext(rec, BackendTypeOpenGL, 640, 480, WithPassOptions(pass.WithMode(pass.ModeDeferred)))
	require.NoError(t, err)

	assert.Equal(t, 640, r.Viewport().Width)
	require.NotNil(t, r.Sequencer().GBuffer())
	assert.Equal(t, 480, r.Sequencer().GBuffer().Height)
	assert.Equal(t, 640, r.Sequencer().Composite().Width)
	assert.Len(t, r.Targets().Targets(), 3)
}

func TestRendererRenderAndRelease(t *testing.T) {
	rec := gpu.NewRecorder(gpu.WGSL)
	r, err := newRendererWithContext(rec, BackendTypeWGPU, 320, 240)
	require.NoError(t, err)

	frame := &pass.Frame{
		ViewProjection:  mgl32.Ident4(),
		LightView:       mgl32.Ident4(),
		LightProjection: mgl32.Ident4(),
		Aberration:      postfx.NewChromaticAberration(),
	}
	require.NoError(t, r.RenderFrame(frame))
	assert.Equal(t, 1, rec.Count(gpu.OpPresent))
	assert.NotEmpty(t, r.Timings())

	r.Release()
	r.Release()
	assert.Equal(t, 0, rec.LiveTextures())
	assert.Equal(t, 0, rec.LiveFramebuffers())
	assert.Equal(t, 0, rec.LivePrograms())
	assert.Equal(t, 1, rec.Count(gpu.OpRelease))
	assert.True(t, errors.Is(r.RenderFrame(frame), pass.ErrReleased))
}

func TestRendererFailedSequencerReleasesTargets(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	rec.FailFramebufferChecks(1)
	_, err := newRendererWithContext(rec, BackendTypeOpenGL, 320, 240)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gpu.ErrIncompleteFramebuffer))
	assert.Equal(t, 0, rec.LiveTextures())
	assert.Equal(t, 0, rec.LiveFramebuffers())
}
