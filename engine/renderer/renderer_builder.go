package renderer

import (
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/pass"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// The OpenGL backend takes its swap interval from the window instead.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithPassOptions forwards options to the pass sequencer, e.g. pass.WithMode or pass.WithShadows.
//
// Parameters:
//   - options: the sequencer options, applied after the window-sized viewport
//
// Returns:
//   - RendererBuilderOption: a function that appends the options
func WithPassOptions(options ...pass.SequencerBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.passOptions = append(r.passOptions, options...)
	}
}
