// package common contains small shared types and helpers used throughout the engine. They are plain structs and
// functions, not interface-wrapped types.
package common

// Viewport is the pixel size of a render surface.
type Viewport struct {
	Width  int
	Height int
}

// Aspect returns width/height, or 1 when the viewport has no height yet (minimized window).
//
// Returns:
//   - float32: the aspect ratio
func (v Viewport) Aspect() float32 {
	if v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Empty reports whether either dimension is zero or negative.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Range is an inclusive [Min, Max] interval for a tunable parameter.
type Range struct {
	Min float32
	Max float32
}

// Clamp limits v to the range.
func (r Range) Clamp(v float32) float32 {
	return Clamp(v, r.Min, r.Max)
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float32) bool {
	return v >= r.Min && v <= r.Max
}

// Span returns Max - Min.
func (r Range) Span() float32 {
	return r.Max - r.Min
}
