package light

import (
	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMapResolution is the default width and height in texels of the shadow depth texture.
const ShadowMapResolution = 2048

// BiasRange bounds the minimum and maximum shadow bias.
var BiasRange = common.Range{Min: 0, Max: 1}

// Shadow holds the depth-comparison bias used when sampling the shadow map.
//
// The lighting shaders use a slope-scaled bias: max(MaxBias * (1 - dot(N, L)), MinBias), so surfaces
// facing the light get MinBias and grazing surfaces approach MaxBias.
type Shadow struct {
	MinBias float32
	MaxBias float32
}

// NewShadow creates shadow parameters with bias 0.007 / 0.2.
func NewShadow(options ...ShadowBuilderOption) Shadow {
	s := Shadow{
		MinBias: 0.007,
		MaxBias: 0.2,
	}
	for _, option := range options {
		option(&s)
	}
	return s
}

// Bias evaluates the slope-scaled bias for a surface normal and the direction toward the light.
//
// Parameters:
//   - normal: unit surface normal
//   - toLight: unit vector from the surface toward the light
//
// Returns:
//   - float32: the depth bias the shaders subtract before comparing
func (s Shadow) Bias(normal, toLight mgl32.Vec3) float32 {
	slope := s.MaxBias * (1 - normal.Dot(toLight))
	if slope < s.MinBias {
		return s.MinBias
	}
	return slope
}

// ShadowBuilderOption is a functional option for configuring Shadow parameters.
type ShadowBuilderOption func(*Shadow)

// WithBias sets the minimum and maximum bias.
//
// Parameters:
//   - minBias: bias for surfaces facing the light
//   - maxBias: bias at grazing angles
//
// Returns:
//   - ShadowBuilderOption: a function that applies the bias option
func WithBias(minBias, maxBias float32) ShadowBuilderOption {
	return func(s *Shadow) {
		s.MinBias = minBias
		s.MaxBias = maxBias
	}
}
