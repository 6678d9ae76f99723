package gpu

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderStampsBindState(t *testing.T) {
	r := NewRecorder(GLSL)
	fb, err := r.CreateFramebuffer("fb")
	require.NoError(t, err)

	r.BindTarget(fb)
	r.SetCullMode(CullFront)
	r.SetDepthTest(true)
	r.UseProgram(7)
	r.DrawFullscreen()

	draws := r.CommandsOf(OpDrawFullscreen)
	require.Len(t, draws, 1)
	assert.Equal(t, fb, draws[0].Target)
	assert.Equal(t, ProgramHandle(7), draws[0].Program)
	assert.Equal(t, CullFront, draws[0].Cull)
	assert.True(t, draws[0].DepthTest)
}

func TestRecorderCompletenessRules(t *testing.T) {
	r := NewRecorder(GLSL)
	fb, _ := r.CreateFramebuffer("empty")
	assert.True(t, errors.Is(r.CheckFramebuffer(fb), ErrIncompleteFramebuffer))

	depth, err := r.CreateTexture(TextureDescriptor{Width: 4, Height: 4, Format: FormatDepth16})
	require.NoError(t, err)
	require.NoError(t, r.AttachDepth(fb, depth))

	// default draw buffer 0 is not attached
	assert.True(t, errors.Is(r.CheckFramebuffer(fb), ErrIncompleteFramebuffer))

	require.NoError(t, r.SetDrawBuffers(fb, nil))
	require.NoError(t, r.SetReadBuffer(fb, NoBuffer))
	assert.NoError(t, r.CheckFramebuffer(fb))

	r.FailFramebufferChecks(1)
	assert.True(t, errors.Is(r.CheckFramebuffer(fb), ErrIncompleteFramebuffer))
	assert.NoError(t, r.CheckFramebuffer(fb))
}

func TestRecorderRejectsMismatchedAttachments(t *testing.T) {
	r := NewRecorder(WGSL)
	fb, _ := r.CreateFramebuffer("fb")
	color, _ := r.CreateTexture(TextureDescriptor{Width: 2, Height: 2, Format: FormatRGBA16})
	depth, _ := r.CreateTexture(TextureDescriptor{Width: 2, Height: 2, Format: FormatDepth16})

	assert.Error(t, r.AttachColor(fb, 0, depth))
	assert.Error(t, r.AttachDepth(fb, color))
	assert.True(t, errors.Is(r.AttachColor(99, 0, color), ErrUnknownHandle))
}

func TestRecorderCapturesUniformData(t *testing.T) {
	r := NewRecorder(GLSL)
	data := []byte{1, 2, 3}
	r.SetUniformBlock(2, data)
	data[0] = 9

	assert.Equal(t, []byte{1, 2, 3}, r.UniformBlock(2))
	assert.Equal(t, 1, r.Count(OpSetUniformBlock))
}

func TestRecorderForcedTextureFailure(t *testing.T) {
	r := NewRecorder(GLSL)
	r.FailTextureCreate(2)

	_, err := r.CreateTexture(TextureDescriptor{Width: 1, Height: 1, Format: FormatRGBA8})
	require.NoError(t, err)
	_, err = r.CreateTexture(TextureDescriptor{Width: 1, Height: 1, Format: FormatRGBA8})
	assert.Error(t, err)
	assert.Equal(t, 1, r.LiveTextures())
}

func TestFormatPredicates(t *testing.T) {
	assert.True(t, FormatDepth16.IsDepth())
	assert.True(t, FormatDepth32F.IsDepth())
	assert.False(t, FormatRGB32F.IsDepth())
	assert.True(t, FormatRGB16F.IsFloat())
	assert.False(t, FormatRGBA16.IsFloat())
	assert.Equal(t, "depth16", FormatDepth16.String())
	assert.True(t, (ClearColor | ClearDepth).Has(ClearDepth))
	assert.False(t, ClearDepth.Has(ClearColor))
}
