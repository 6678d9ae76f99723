package wgpu_backend

import "github.com/cogentcore/webgpu/wgpu"

// ContextBuilderOption is a functional option for configuring a WebGPU context during construction.
type ContextBuilderOption func(*wgpuContext)

// WithPresentMode sets how frames are delivered to the display.
//
// Parameters:
//   - mode: the wgpu present mode, e.g. wgpu.PresentModeFifo for vsync
//
// Returns:
//   - ContextBuilderOption: a function that sets the present mode
func WithPresentMode(mode wgpu.PresentMode) ContextBuilderOption {
	return func(c *wgpuContext) {
		c.presentMode = mode
	}
}

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) ContextBuilderOption {
	return func(c *wgpuContext) {
		c.forceFallback = force
	}
}
