package game_object

import (
	"github.com/Carmen-Shannon/oxy-passes/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject.
type GameObjectBuilderOption func(*gameObject)

// WithModel sets the mesh the object draws.
//
// Parameters:
//   - m: the model
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the model option
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mdl = m
	}
}

// WithPosition sets the initial world-space translation.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the position option
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.position = mgl32.Vec3{x, y, z}
	}
}

// WithUniformScale sets the same scale on every axis.
func WithUniformScale(s float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.scale = mgl32.Vec3{s, s, s}
	}
}

// WithScale sets the per-axis scale.
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithRotation sets the initial orientation. The quaternion is normalized.
func WithRotation(q mgl32.Quat) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotation = q.Normalize()
	}
}

// WithAlbedo sets the base color.
//
// Parameters:
//   - r, g, b, a: color channels
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the albedo option
func WithAlbedo(r, gr, b, a float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.albedo = mgl32.Vec4{r, gr, b, a}
	}
}

// WithCastsShadow includes or excludes the object from the shadow pass.
func WithCastsShadow(casts bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.castsShadow = casts
	}
}

// WithEnabled sets whether the object is drawn.
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}
