package pass

import (
	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/postfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform block slots shared by every program.
const (
	SlotFrame    = 0
	SlotObject   = 1
	SlotLighting = 2
	SlotPost     = 3
)

// Block sizes in bytes, std140.
const (
	FrameBlockSize    = 144
	ObjectBlockSize   = 80
	LightingBlockSize = light.GPUDirectionalSize + 16 + 16 + light.MaxPointLights*light.GPUPointLightSize
	PostBlockSize     = postfx.GPUAberrationSize
)

// FrameBlock holds the per-pass camera data.
//
// Layout:
//
//	mat4 viewProjection      (offset   0)
//	mat4 lightViewProjection (offset  64)
//	vec4 eyePosition         (offset 128)
type FrameBlock struct {
	ViewProjection      mgl32.Mat4
	LightViewProjection mgl32.Mat4
	EyePosition         mgl32.Vec3
}

// Marshal serializes the block for SetUniformBlock.
//
// Returns:
//   - []byte: FrameBlockSize bytes
func (b *FrameBlock) Marshal() []byte {
	buf := make([]byte, FrameBlockSize)
	off := common.PutFloats(buf, 0, b.ViewProjection[:]...)
	off = common.PutFloats(buf, off, b.LightViewProjection[:]...)
	common.PutFloats(buf, off, b.EyePosition[0], b.EyePosition[1], b.EyePosition[2], 1)
	return buf
}

// ObjectBlock holds the per-draw model matrix and color.
//
// Layout:
//
//	mat4 model  (offset  0)
//	vec4 albedo (offset 64)
type ObjectBlock struct {
	Model  mgl32.Mat4
	Albedo mgl32.Vec4
}

// Marshal serializes the block for SetUniformBlock.
//
// Returns:
//   - []byte: ObjectBlockSize bytes
func (b *ObjectBlock) Marshal() []byte {
	buf := make([]byte, ObjectBlockSize)
	off := common.PutFloats(buf, 0, b.Model[:]...)
	common.PutFloats(buf, off, b.Albedo[:]...)
	return buf
}

// LightingBlock is the batched lighting upload: one directional light with its shadow bias, the
// material, and up to MaxPointLights point lights.
//
// Layout:
//
//	DirectionalLight light  (offset  0, 32 bytes)
//	Material material       (offset 32, 16 bytes)
//	int pointLightCount     (offset 48)
//	int shadowsEnabled      (offset 52)
//	PointLight lights[64]   (offset 64, 32 bytes each)
type LightingBlock struct {
	Directional    light.GPUDirectional
	Material       material.GPUMaterial
	PointLights    []light.GPUPointLight
	ShadowsEnabled bool
}

// NewLightingBlock packs a frame's lights. Point lights beyond MaxPointLights are dropped.
//
// Parameters:
//   - f: the frame to read lights and material from
//   - shadows: whether the shadow map holds this frame's depth
//
// Returns:
//   - LightingBlock: the block
//   - int: how many point lights were dropped
func NewLightingBlock(f *Frame, shadows bool) (LightingBlock, int) {
	lights := f.PointLights
	dropped := 0
	if len(lights) > light.MaxPointLights {
		dropped = len(lights) - light.MaxPointLights
		lights = lights[:light.MaxPointLights]
	}
	b := LightingBlock{
		Directional:    light.NewGPUDirectional(f.Light, f.Shadow),
		Material:       f.Material.GPU(),
		PointLights:    make([]light.GPUPointLight, len(lights)),
		ShadowsEnabled: shadows,
	}
	for i, p := range lights {
		b.PointLights[i] = p.GPU()
	}
	return b, dropped
}

// Marshal serializes the block for SetUniformBlock. Unused light slots are zero.
//
// Returns:
//   - []byte: LightingBlockSize bytes
func (b *LightingBlock) Marshal() []byte {
	buf := make([]byte, LightingBlockSize)
	off := b.Directional.MarshalInto(buf, 0)
	off = b.Material.MarshalInto(buf, off)
	shadows := int32(0)
	if b.ShadowsEnabled {
		shadows = 1
	}
	off = common.PutInt32s(buf, off, int32(len(b.PointLights)), shadows, 0, 0)
	for i := range b.PointLights {
		off = b.PointLights[i].MarshalInto(buf, off)
	}
	return buf
}
