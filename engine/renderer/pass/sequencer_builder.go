package pass

import (
	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// SequencerBuilderOption is a functional option for configuring a Sequencer.
type SequencerBuilderOption func(*sequencer)

// WithMode selects forward or deferred pass order.
//
// Parameters:
//   - mode: the pass order
//
// Returns:
//   - SequencerBuilderOption: a function that sets the mode
func WithMode(mode Mode) SequencerBuilderOption {
	return func(s *sequencer) {
		s.mode = mode
	}
}

// WithShadows enables or disables the shadow pass. With shadows off the lighting shaders treat
// every fragment as lit.
func WithShadows(enabled bool) SequencerBuilderOption {
	return func(s *sequencer) {
		s.shadows = enabled
	}
}

// WithShadowResolution sets the square shadow map size in texels.
//
// Parameters:
//   - size: edge length, default 2048
//
// Returns:
//   - SequencerBuilderOption: a function that sets the resolution
func WithShadowResolution(size int) SequencerBuilderOption {
	return func(s *sequencer) {
		s.shadowResolution = size
	}
}

// WithShadowFormat sets the shadow map depth format.
func WithShadowFormat(format gpu.TextureFormat) SequencerBuilderOption {
	return func(s *sequencer) {
		s.shadowFormat = format
	}
}

// WithViewport sets the initial viewport and the size of the G-buffer and composite targets.
//
// Parameters:
//   - width, height: size in pixels
//
// Returns:
//   - SequencerBuilderOption: a function that sets the viewport
func WithViewport(width, height int) SequencerBuilderOption {
	return func(s *sequencer) {
		s.viewport = common.Viewport{Width: width, Height: height}
	}
}

// WithClearColor sets the background color of the composite target.
func WithClearColor(r, g, b, a float32) SequencerBuilderOption {
	return func(s *sequencer) {
		s.clearColor = mgl32.Vec4{r, g, b, a}
	}
}
