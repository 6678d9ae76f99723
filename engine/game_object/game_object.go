package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-passes/engine/animator"
	"github.com/Carmen-Shannon/oxy-passes/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	mu *sync.Mutex

	id          uint64
	enabled     atomic.Bool
	mdl         model.Model
	position    mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3
	albedo      mgl32.Vec4
	castsShadow bool
}

// GameObject is a placed instance of a Model: a TRS transform, an albedo color, and whether it
// renders into the shadow map.
type GameObject interface {
	// ID returns the object's identifier, assigned by the scene.
	ID() uint64

	// SetID sets the object's identifier.
	SetID(id uint64)

	// Enabled returns whether the object is drawn.
	Enabled() bool

	// SetEnabled shows or hides the object.
	SetEnabled(enabled bool)

	// Model returns the mesh this object draws.
	Model() model.Model

	// SetModel replaces the mesh.
	SetModel(m model.Model)

	// Position returns the world-space translation.
	Position() mgl32.Vec3

	// SetPosition sets the world-space translation.
	SetPosition(p mgl32.Vec3)

	// Rotation returns the orientation.
	Rotation() mgl32.Quat

	// SetRotation sets the orientation. The quaternion is normalized.
	SetRotation(q mgl32.Quat)

	// Scale returns the per-axis scale.
	Scale() mgl32.Vec3

	// SetScale sets the per-axis scale.
	SetScale(s mgl32.Vec3)

	// Albedo returns the base color the geometry pass writes.
	Albedo() mgl32.Vec4

	// SetAlbedo sets the base color.
	SetAlbedo(c mgl32.Vec4)

	// CastsShadow reports whether the shadow pass draws this object.
	CastsShadow() bool

	// SetCastsShadow includes or excludes the object from the shadow pass.
	SetCastsShadow(casts bool)

	// Transform composes translate * rotate * scale.
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	Transform() mgl32.Mat4
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled, shadow-casting, white object at the origin.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		mu:          &sync.Mutex{},
		rotation:    mgl32.QuatIdent(),
		scale:       mgl32.Vec3{1, 1, 1},
		albedo:      mgl32.Vec4{1, 1, 1, 1},
		castsShadow: true,
	}
	g.enabled.Store(true)
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *gameObject) ID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mdl
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = p
}

func (g *gameObject) Rotation() mgl32.Quat {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) SetRotation(q mgl32.Quat) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = q.Normalize()
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) SetScale(s mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = s
}

func (g *gameObject) Albedo() mgl32.Vec4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.albedo
}

func (g *gameObject) SetAlbedo(c mgl32.Vec4) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.albedo = c
}

func (g *gameObject) CastsShadow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.castsShadow
}

func (g *gameObject) SetCastsShadow(casts bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.castsShadow = casts
}

func (g *gameObject) Transform() mgl32.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return animator.Compose(g.position, g.rotation, g.scale)
}
