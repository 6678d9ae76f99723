package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// lightCamera is the implementation of the LightCamera interface.
type lightCamera struct {
	mu *sync.Mutex

	target      mgl32.Vec3
	position    mgl32.Vec3
	distance    float32
	orthoHeight float32
	aspect      float32
	near, far   float32
}

// LightCamera is the orthographic camera the shadow pass renders from. It sits at a fixed distance
// behind a target point, looking along the directional light.
type LightCamera interface {
	// Follow repositions the camera at target - direction*distance. The direction is used as given,
	// so shorter vectors bring the camera closer.
	//
	// Parameters:
	//   - direction: the light direction
	Follow(direction mgl32.Vec3)

	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// SetTarget moves the look-at point. Takes effect on the next Follow.
	SetTarget(target mgl32.Vec3)

	// View returns the world-to-light view matrix.
	View() mgl32.Mat4

	// Projection returns the orthographic projection.
	Projection() mgl32.Mat4

	// ViewProjection returns Projection() * View().
	ViewProjection() mgl32.Mat4
}

var _ LightCamera = &lightCamera{}

// NewLightCamera creates a light camera with the deferred-scene defaults: target (18, 0, 18), ortho
// height 45, near 0.001, far 45, aspect 1, distance 10, positioned for a straight-down light.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - LightCamera: the newly created light camera
func NewLightCamera(options ...LightCameraBuilderOption) LightCamera {
	lc := &lightCamera{
		mu:          &sync.Mutex{},
		target:      mgl32.Vec3{18, 0, 18},
		distance:    10,
		orthoHeight: 45,
		aspect:      1,
		near:        0.001,
		far:         45,
	}
	for _, option := range options {
		option(lc)
	}
	lc.position = lc.target.Sub(mgl32.Vec3{0, -1, 0}.Mul(lc.distance))
	return lc
}

func (lc *lightCamera) Follow(direction mgl32.Vec3) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.position = lc.target.Sub(direction.Mul(lc.distance))
}

func (lc *lightCamera) Position() mgl32.Vec3 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.position
}

func (lc *lightCamera) Target() mgl32.Vec3 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.target
}

func (lc *lightCamera) SetTarget(target mgl32.Vec3) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.target = target
}

func (lc *lightCamera) View() mgl32.Mat4 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return common.LookAtSafe(lc.position, lc.target, mgl32.Vec3{0, 1, 0})
}

func (lc *lightCamera) Projection() mgl32.Mat4 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return common.OrthoFromHeight(lc.orthoHeight, lc.aspect, lc.near, lc.far)
}

func (lc *lightCamera) ViewProjection() mgl32.Mat4 {
	return lc.Projection().Mul4(lc.View())
}
