package light

import "github.com/go-gl/mathgl/mgl32"

// LightCameraBuilderOption is a functional option for configuring a LightCamera.
type LightCameraBuilderOption func(*lightCamera)

// WithTarget sets the point the light camera looks at.
//
// Parameters:
//   - x, y, z: world-space target
//
// Returns:
//   - LightCameraBuilderOption: a function that applies the target option
func WithTarget(x, y, z float32) LightCameraBuilderOption {
	return func(lc *lightCamera) {
		lc.target = mgl32.Vec3{x, y, z}
	}
}

// WithOrthoHeight sets the vertical extent of the orthographic volume.
func WithOrthoHeight(height float32) LightCameraBuilderOption {
	return func(lc *lightCamera) {
		lc.orthoHeight = height
	}
}

// WithClipPlanes sets the near and far plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - LightCameraBuilderOption: a function that applies the clip plane option
func WithClipPlanes(near, far float32) LightCameraBuilderOption {
	return func(lc *lightCamera) {
		lc.near = near
		lc.far = far
	}
}

// WithDistance sets how far behind the target the camera sits along the light direction.
func WithDistance(distance float32) LightCameraBuilderOption {
	return func(lc *lightCamera) {
		lc.distance = distance
	}
}

// WithAspect sets the width/height ratio of the orthographic volume.
func WithAspect(aspect float32) LightCameraBuilderOption {
	return func(lc *lightCamera) {
		lc.aspect = aspect
	}
}
