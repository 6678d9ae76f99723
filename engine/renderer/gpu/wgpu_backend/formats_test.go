package wgpu_backend

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureFormatMapping(t *testing.T) {
	cases := map[gpu.TextureFormat]wgpu.TextureFormat{
		gpu.FormatRGBA8:    wgpu.TextureFormatRGBA8Unorm,
		gpu.FormatRGBA16:   wgpu.TextureFormatRGBA16Float,
		gpu.FormatRGB16F:   wgpu.TextureFormatRGBA16Float,
		gpu.FormatRGB32F:   wgpu.TextureFormatRGBA32Float,
		gpu.FormatDepth16:  wgpu.TextureFormatDepth16Unorm,
		gpu.FormatDepth24:  wgpu.TextureFormatDepth24Plus,
		gpu.FormatDepth32F: wgpu.TextureFormatDepth32Float,
	}
	for in, want := range cases {
		got, err := textureFormat(in)
		require.NoError(t, err, in.String())
		assert.Equal(t, want, got, in.String())
	}

	_, err := textureFormat(gpu.FormatNone)
	assert.Error(t, err)
}

func TestSamplingModes(t *testing.T) {
	assert.Equal(t, wgpu.AddressModeClampToEdge, addressMode(gpu.AddressClampToBorder))
	assert.Equal(t, wgpu.AddressModeRepeat, addressMode(gpu.AddressRepeat))
	assert.Equal(t, wgpu.FilterModeLinear, filterMode(gpu.FilterLinear))
	assert.Equal(t, wgpu.CullModeFront, cullMode(gpu.CullFront))
	assert.Equal(t, wgpu.TextureSampleTypeDepth, sampleType(gpu.TextureDepth))
	assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, sampleType(gpu.TextureUnfilterable))
}

func TestClampViewport(t *testing.T) {
	out, ok := clampViewport([4]int{0, 0, 1080, 720}, 640, 480)
	require.True(t, ok)
	assert.Equal(t, [4]float32{0, 0, 640, 480}, out)

	_, ok = clampViewport([4]int{700, 0, 100, 100}, 640, 480)
	assert.False(t, ok)

	assert.Equal(t, 380, flipViewportY(0, 100, 480))
}

func TestBindingLayout(t *testing.T) {
	assert.Equal(t, uint32(6), textureBinding(3))
	assert.Equal(t, uint32(1), samplerBinding(0))
}
