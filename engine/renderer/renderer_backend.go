package renderer

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-passes/engine/window"
	"github.com/pkg/errors"
)

// ErrUnknownBackend is returned by ParseBackendType for an unrecognized name.
var ErrUnknownBackend = errors.New("renderer: unknown backend")

// RendererBackendType identifies the gpu.Context implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeOpenGL selects the OpenGL 4.3 core backend.
	BackendTypeOpenGL RendererBackendType = iota

	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU
)

func (b RendererBackendType) String() string {
	if b == BackendTypeWGPU {
		return "wgpu"
	}
	return "opengl"
}

// ShadingLanguage returns the shader dialect the backend compiles.
func (b RendererBackendType) ShadingLanguage() gpu.ShadingLanguage {
	if b == BackendTypeWGPU {
		return gpu.WGSL
	}
	return gpu.GLSL
}

// ClientAPI returns the window client API the backend needs.
func (b RendererBackendType) ClientAPI() window.ClientAPI {
	if b == BackendTypeWGPU {
		return window.APINone
	}
	return window.APIOpenGL
}

// ParseBackendType maps a configuration name to a backend type. Matching is case-insensitive and
// accepts "opengl", "gl", "wgpu" and "webgpu".
//
// Parameters:
//   - name: the configured backend name
//
// Returns:
//   - RendererBackendType: the matching backend
//   - error: ErrUnknownBackend wrapped with the name
func ParseBackendType(name string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "opengl", "gl":
		return BackendTypeOpenGL, nil
	case "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	}
	return BackendTypeOpenGL, errors.Wrapf(ErrUnknownBackend, "%q", name)
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)
