package target

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTargetDeclaresDrawBuffersInFormatOrder(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)

	formats := []gpu.TextureFormat{gpu.FormatRGB32F, gpu.FormatRGB16F, gpu.FormatRGB16F}
	tg, err := m.CreateTarget(1080, 720, formats, gpu.FormatDepth16)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, tg.DrawBuffers)
	require.Len(t, tg.Color, 3)

	fb, ok := rec.Framebuffer(tg.Framebuffer)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2}, fb.DrawBuffers)
	for i, tex := range tg.Color {
		assert.Equal(t, tex, fb.Color[i])
		desc, ok := rec.Texture(tex)
		require.True(t, ok)
		assert.Equal(t, formats[i], desc.Format)
		assert.Equal(t, 1080, desc.Width)
		assert.Equal(t, 720, desc.Height)
	}
	assert.Equal(t, tg.Depth, fb.Depth)

	sets := rec.CommandsOf(gpu.OpSetDrawBuffers)
	require.Len(t, sets, 1)
	assert.Equal(t, []int{0, 1, 2}, sets[0].Buffers)
}

func TestDepthOnlyTargetHasNoColorBuffers(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)

	tg, err := m.CreateTarget(256, 256, nil, gpu.FormatDepth16)
	require.NoError(t, err)

	assert.Empty(t, tg.DrawBuffers)
	assert.Equal(t, gpu.NoBuffer, tg.ReadBuffer)

	fb, _ := rec.Framebuffer(tg.Framebuffer)
	assert.Empty(t, fb.DrawBuffers)
	assert.Equal(t, gpu.NoBuffer, fb.ReadBuffer)
	assert.Empty(t, fb.Color)
}

func TestShadowTargetClampsToWhiteBorder(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)

	tg, err := m.CreateShadowTarget(2048, gpu.FormatDepth16)
	require.NoError(t, err)

	desc, ok := rec.Texture(tg.Depth)
	require.True(t, ok)
	assert.Equal(t, gpu.AddressClampToBorder, desc.AddressMode)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, desc.BorderColor)
	assert.Equal(t, gpu.FilterNearest, desc.MinFilter)
	assert.Equal(t, 2048, desc.Width)
	assert.Equal(t, 2048, desc.Height)
	assert.Equal(t, "shadow", tg.Label)
}

func TestCompositeAndGBufferFormats(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec, WithLabelPrefix("deferred."))

	g, err := m.CreateGBuffer(640, 480)
	require.NoError(t, err)
	assert.Equal(t, []gpu.TextureFormat{gpu.FormatRGB32F, gpu.FormatRGB16F, gpu.FormatRGB16F}, g.ColorFormats)
	assert.Equal(t, gpu.FormatDepth16, g.DepthFormat)
	assert.Equal(t, "deferred.gbuffer", g.Label)

	c, err := m.CreateComposite(640, 480)
	require.NoError(t, err)
	assert.Equal(t, []gpu.TextureFormat{gpu.FormatRGBA16}, c.ColorFormats)
	desc, _ := rec.Texture(c.Color[0])
	assert.Equal(t, gpu.FilterLinear, desc.MagFilter)

	assert.Len(t, m.Targets(), 2)
}

func TestIncompleteTargetReleasesEverything(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)
	rec.FailFramebufferChecks(1)

	tg, err := m.CreateGBuffer(100, 100)
	assert.Nil(t, tg)
	assert.True(t, errors.Is(err, ErrIncompleteFramebuffer), "got %v", err)

	assert.Equal(t, 0, rec.LiveTextures())
	assert.Equal(t, 0, rec.LiveFramebuffers())
	assert.Empty(t, m.Targets())
}

func TestAllocationFailureReleasesEarlierAttachments(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)
	rec.FailTextureCreate(3)

	_, err := m.CreateGBuffer(100, 100)
	require.Error(t, err)

	assert.Equal(t, 0, rec.LiveTextures())
	assert.Equal(t, 0, rec.LiveFramebuffers())
}

func TestInvalidSizeAllocatesNothing(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)

	_, err := m.CreateTarget(0, 720, []gpu.TextureFormat{gpu.FormatRGBA16}, gpu.FormatDepth16)
	assert.True(t, errors.Is(err, ErrInvalidSize))
	_, err = m.CreateShadowTarget(-1, gpu.FormatDepth16)
	assert.True(t, errors.Is(err, ErrInvalidSize))

	assert.Empty(t, rec.Commands())
}

func TestRejectsMissingOrMisplacedFormats(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)

	_, err := m.CreateTarget(8, 8, nil, gpu.FormatNone)
	assert.True(t, errors.Is(err, ErrNoAttachments))

	_, err = m.CreateTarget(8, 8, []gpu.TextureFormat{gpu.FormatDepth16}, gpu.FormatNone)
	assert.Error(t, err)

	_, err = m.CreateTarget(8, 8, nil, gpu.FormatRGBA8)
	assert.Error(t, err)
	assert.Equal(t, 0, rec.LiveFramebuffers())
}

func TestDestroyIsReverseOrderAndIdempotent(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)

	tg, err := m.CreateTarget(4, 4, []gpu.TextureFormat{gpu.FormatRGBA8, gpu.FormatRGBA16F}, gpu.FormatDepth24)
	require.NoError(t, err)
	color0, color1, depth, fb := tg.Color[0], tg.Color[1], tg.Depth, tg.Framebuffer
	rec.ResetCommands()

	m.Destroy(tg)
	m.Destroy(tg)

	cmds := rec.Commands()
	require.Len(t, cmds, 4)
	assert.Equal(t, uint32(depth), cmds[0].Handle)
	assert.Equal(t, uint32(color1), cmds[1].Handle)
	assert.Equal(t, uint32(color0), cmds[2].Handle)
	assert.Equal(t, gpu.OpDeleteFramebuffer, cmds[3].Op)
	assert.Equal(t, fb, cmds[3].Dst)
	assert.True(t, tg.Destroyed())
	assert.Empty(t, m.Targets())
}

func TestDestroyAllReleasesNewestFirst(t *testing.T) {
	rec := gpu.NewRecorder(gpu.GLSL)
	m := NewManager(rec)

	first, err := m.CreateShadowTarget(16, gpu.FormatDepth16)
	require.NoError(t, err)
	second, err := m.CreateComposite(16, 16)
	require.NoError(t, err)
	firstFB, secondFB := first.Framebuffer, second.Framebuffer
	rec.ResetCommands()

	m.DestroyAll()

	deletes := rec.CommandsOf(gpu.OpDeleteFramebuffer)
	require.Len(t, deletes, 2)
	assert.Equal(t, secondFB, deletes[0].Dst)
	assert.Equal(t, firstFB, deletes[1].Dst)
	assert.Equal(t, gpu.DefaultFramebuffer, second.Framebuffer)
	assert.True(t, first.Destroyed())
	assert.True(t, second.Destroyed())
	assert.Equal(t, 0, rec.LiveTextures())
	assert.Equal(t, 0, rec.LiveFramebuffers())
}
