package light

import (
	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxPointLights is the number of point lights the lighting block holds. Extra lights are dropped.
const MaxPointLights = 64

// DirectionRange bounds each component of the directional light's direction.
var DirectionRange = common.Range{Min: -1, Max: 1}

// ColorRange bounds each channel of the directional light's color.
var ColorRange = common.Range{Min: 0, Max: 1}

// Directional is a light with no position that shines along Direction.
// Direction need not be normalized; the shaders normalize it.
type Directional struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
}

// NewDirectional creates a white light pointing straight down.
//
// Parameters:
//   - options: functional options overriding direction and color
//
// Returns:
//   - Directional: the configured light
func NewDirectional(options ...DirectionalBuilderOption) Directional {
	d := Directional{
		Direction: mgl32.Vec3{0, -1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
	}
	for _, option := range options {
		option(&d)
	}
	return d
}

// NormalizedDirection returns the unit direction, or straight down for a zero vector.
func (d Directional) NormalizedDirection() mgl32.Vec3 {
	return common.NormalizeOr(d.Direction, mgl32.Vec3{0, -1, 0})
}

// PointLight is a colored light with a finite radius of influence.
type PointLight struct {
	Position mgl32.Vec3
	Radius   float32
	Color    mgl32.Vec4
}

// GPU converts the light to its uniform layout.
func (p PointLight) GPU() GPUPointLight {
	return GPUPointLight{Position: p.Position, Radius: p.Radius, Color: p.Color}
}
