package pass

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestBlockSizes(t *testing.T) {
	assert.Equal(t, 2112, LightingBlockSize)

	fb := FrameBlock{ViewProjection: mgl32.Ident4(), LightViewProjection: mgl32.Ident4(), EyePosition: mgl32.Vec3{1, 2, 3}}
	buf := fb.Marshal()
	require.Len(t, buf, FrameBlockSize)
	assert.Equal(t, float32(1), floatAt(buf, 0))
	assert.Equal(t, float32(1), floatAt(buf, 64))
	assert.Equal(t, float32(3), floatAt(buf, 136))
	assert.Equal(t, float32(1), floatAt(buf, 140))

	ob := ObjectBlock{Model: mgl32.Translate3D(4, 5, 6), Albedo: mgl32.Vec4{0.5, 0.25, 1, 1}}
	buf = ob.Marshal()
	require.Len(t, buf, ObjectBlockSize)
	assert.Equal(t, float32(4), floatAt(buf, 48))
	assert.Equal(t, float32(0.25), floatAt(buf, 68))
}

func TestLightingBlockLayout(t *testing.T) {
	f := &Frame{
		Light:    light.NewDirectional(light.WithDirection(0, -1, 0)),
		Shadow:   light.NewShadow(light.WithBias(0.01, 0.2)),
		Material: material.NewMaterial(material.WithShininess(64)),
		PointLights: []light.PointLight{
			{Position: mgl32.Vec3{1, 2, 3}, Radius: 5, Color: mgl32.Vec4{1, 0, 0, 1}},
		},
	}
	b, dropped := NewLightingBlock(f, true)
	assert.Zero(t, dropped)

	buf := b.Marshal()
	require.Len(t, buf, LightingBlockSize)
	assert.Equal(t, float32(-1), floatAt(buf, 4))
	assert.InDelta(t, 0.01, floatAt(buf, 12), 1e-7)
	assert.InDelta(t, 0.2, floatAt(buf, 28), 1e-7)
	assert.Equal(t, float32(64), floatAt(buf, 44))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[48:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[52:]))
	assert.Equal(t, float32(2), floatAt(buf, 68))
	assert.Equal(t, float32(5), floatAt(buf, 76))
	assert.Equal(t, float32(1), floatAt(buf, 80))
	// second slot is zero
	assert.Equal(t, float32(0), floatAt(buf, 96+12))
}

func TestProgramDescriptorsLoadForBothLanguages(t *testing.T) {
	for id := ProgramShadow; id < programCount; id++ {
		glsl, err := ProgramDescriptor(id, gpu.GLSL)
		require.NoError(t, err, id.String())
		assert.True(t, strings.HasPrefix(glsl.VertexSource, "#version 430 core"))
		assert.True(t, strings.HasPrefix(glsl.FragmentSource, "#version 430 core"))
		assert.Equal(t, "main", glsl.FragmentEntry)

		wgsl, err := ProgramDescriptor(id, gpu.WGSL)
		require.NoError(t, err, id.String())
		assert.Contains(t, wgsl.VertexSource, "fn "+wgsl.VertexEntry+"(")
		if wgsl.FragmentEntry != "" {
			assert.Contains(t, wgsl.FragmentSource, "fn "+wgsl.FragmentEntry+"(")
		}
		assert.Equal(t, glsl.UniformBlocks, wgsl.UniformBlocks)
		for _, src := range []string{glsl.VertexSource, glsl.FragmentSource, wgsl.VertexSource} {
			assert.NotContains(t, src, "@oxy:")
		}
		assert.Contains(t, wgsl.VertexSource, "struct FrameBlock")
	}

	shadow, _ := ProgramDescriptor(ProgramShadow, gpu.WGSL)
	assert.Empty(t, shadow.FragmentEntry)

	deferred, _ := ProgramDescriptor(ProgramDeferredLighting, gpu.GLSL)
	assert.Contains(t, deferred.FragmentSource, "LightingBlock")
	assert.NotContains(t, deferred.VertexSource, "LightingBlock")
	assert.False(t, deferred.UsesVertices)
	assert.Len(t, deferred.Textures, 4)

	_, err := ProgramDescriptor(programCount, gpu.GLSL)
	assert.Error(t, err)
}
