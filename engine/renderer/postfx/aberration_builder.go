package postfx

import "github.com/go-gl/mathgl/mgl32"

// AberrationBuilderOption is a functional option for configuring ChromaticAberration.
type AberrationBuilderOption func(*ChromaticAberration)

// WithOffsets sets the red, green and blue sample offsets.
//
// Parameters:
//   - r, g, b: per-channel offsets in [0, 1]
//
// Returns:
//   - AberrationBuilderOption: a function that applies the offsets
func WithOffsets(r, g, b float32) AberrationBuilderOption {
	return func(c *ChromaticAberration) {
		c.Offsets = mgl32.Vec3{r, g, b}
	}
}

// WithEffect switches the effect on or off.
func WithEffect(on bool) AberrationBuilderOption {
	return func(c *ChromaticAberration) {
		c.EffectOn = on
	}
}
