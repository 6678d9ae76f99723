package light

import (
	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUDirectionalSize is the std140 size of GPUDirectional.
const GPUDirectionalSize = 32

// GPUPointLightSize is the std140 size of GPUPointLight.
const GPUPointLightSize = 32

// GPUDirectional packs the directional light with the shadow bias into two vec4 slots.
//
// Layout:
//
//	vec3  direction (offset  0)
//	float minBias   (offset 12)
//	vec3  color     (offset 16)
//	float maxBias   (offset 28)
type GPUDirectional struct {
	Direction mgl32.Vec3
	MinBias   float32
	Color     mgl32.Vec3
	MaxBias   float32
}

// NewGPUDirectional combines a light and its shadow parameters.
func NewGPUDirectional(d Directional, s Shadow) GPUDirectional {
	return GPUDirectional{
		Direction: d.Direction,
		MinBias:   s.MinBias,
		Color:     d.Color,
		MaxBias:   s.MaxBias,
	}
}

// MarshalInto writes the block at buf[off:off+32].
//
// Returns:
//   - int: the offset just past the written data
func (g *GPUDirectional) MarshalInto(buf []byte, off int) int {
	return common.PutFloats(buf, off,
		g.Direction[0], g.Direction[1], g.Direction[2], g.MinBias,
		g.Color[0], g.Color[1], g.Color[2], g.MaxBias,
	)
}

// GPUPointLight is the std140 layout of one point light.
//
// Layout:
//
//	vec3  position (offset  0)
//	float radius   (offset 12)
//	vec4  color    (offset 16)
type GPUPointLight struct {
	Position mgl32.Vec3
	Radius   float32
	Color    mgl32.Vec4
}

// MarshalInto writes the light at buf[off:off+32].
//
// Returns:
//   - int: the offset just past the written data
func (g *GPUPointLight) MarshalInto(buf []byte, off int) int {
	return common.PutFloats(buf, off,
		g.Position[0], g.Position[1], g.Position[2], g.Radius,
		g.Color[0], g.Color[1], g.Color[2], g.Color[3],
	)
}
