package light

import "github.com/go-gl/mathgl/mgl32"

// DirectionalBuilderOption is a functional option for configuring a Directional light.
type DirectionalBuilderOption func(*Directional)

// WithDirection sets the direction the light travels.
//
// Parameters:
//   - x, y, z: direction components, each in [-1, 1]
//
// Returns:
//   - DirectionalBuilderOption: a function that applies the direction option
func WithDirection(x, y, z float32) DirectionalBuilderOption {
	return func(d *Directional) {
		d.Direction = mgl32.Vec3{x, y, z}
	}
}

// WithColor sets the light color.
//
// Parameters:
//   - r, g, b: color channels
//
// Returns:
//   - DirectionalBuilderOption: a function that applies the color option
func WithColor(r, g, b float32) DirectionalBuilderOption {
	return func(d *Directional) {
		d.Color = mgl32.Vec3{r, g, b}
	}
}
