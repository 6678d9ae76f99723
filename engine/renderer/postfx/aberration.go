// package postfx holds the parameters of the full-screen post-process effect.
package postfx

import (
	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// OffsetRange bounds each per-channel sample offset.
var OffsetRange = common.Range{Min: 0, Max: 1}

// ChromaticAberration splits the composite image into red, green and blue samples taken at slightly
// different radial offsets. With EffectOn false the post pass copies the composite through unchanged.
type ChromaticAberration struct {
	Offsets  mgl32.Vec3
	EffectOn bool
}

// NewChromaticAberration creates the effect with offsets (0.5, 0.5, 0.5), switched off.
//
// Parameters:
//   - options: functional options overriding the defaults
//
// Returns:
//   - ChromaticAberration: the configured effect parameters
func NewChromaticAberration(options ...AberrationBuilderOption) ChromaticAberration {
	c := ChromaticAberration{
		Offsets: mgl32.Vec3{0.5, 0.5, 0.5},
	}
	for _, option := range options {
		option(&c)
	}
	return c
}

// Toggle flips EffectOn.
func (c *ChromaticAberration) Toggle() {
	c.EffectOn = !c.EffectOn
}

// GPU converts the parameters to their uniform layout.
func (c ChromaticAberration) GPU() GPUAberration {
	g := GPUAberration{Offsets: c.Offsets}
	if c.EffectOn {
		g.EffectOn = 1
	}
	return g
}
