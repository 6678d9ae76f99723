package scene

import (
	"github.com/Carmen-Shannon/oxy-passes/engine/camera"
	"github.com/Carmen-Shannon/oxy-passes/engine/game_object"
	"github.com/Carmen-Shannon/oxy-passes/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the identifier used in logs
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithDemo records which demo configuration the scene belongs to.
func WithDemo(demo Demo) SceneBuilderOption {
	return func(s *scene) {
		s.demo = demo
	}
}

// WithCamera sets the main camera.
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.camera = cam
	}
}

// WithLightCamera sets the camera the shadow pass renders from.
func WithLightCamera(lc light.LightCamera) SceneBuilderOption {
	return func(s *scene) {
		s.lightCamera = lc
	}
}

// WithParameters replaces the starting lighting, material and post-process values.
//
// Parameters:
//   - params: the starting values
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithParameters(params Parameters) SceneBuilderOption {
	return func(s *scene) {
		s.params = params
	}
}

// WithPointLights sets the initial point lights.
func WithPointLights(lights []light.PointLight) SceneBuilderOption {
	return func(s *scene) {
		s.pointLights = append([]light.PointLight(nil), lights...)
	}
}

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs. Objects without a model are skipped.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj == nil || obj.Model() == nil {
				continue
			}
			s.addLocked(obj)
		}
	}
}
