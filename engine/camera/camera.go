package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	homePosition mgl32.Vec3
	homeTarget   mgl32.Vec3

	fov         float32
	aspect      float32
	near        float32
	far         float32
	orthoHeight float32
	ortho       bool

	controller CameraController
}

// Camera is a look-at camera with either a perspective or an orthographic projection.
// Matrices are computed on demand from the current pose.
type Camera interface {
	// Position returns the eye position.
	Position() mgl32.Vec3

	// SetPosition moves the eye without changing the target.
	SetPosition(p mgl32.Vec3)

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// SetTarget sets the look-at point.
	SetTarget(t mgl32.Vec3)

	// Forward returns the unit vector from the eye toward the target, or -Z when they coincide.
	Forward() mgl32.Vec3

	// Fov returns the vertical field of view in degrees.
	Fov() float32

	// SetFov sets the vertical field of view in degrees.
	SetFov(degrees float32)

	// Aspect returns width / height.
	Aspect() float32

	// SetAspect sets width / height. Non-positive values are ignored.
	SetAspect(aspect float32)

	// Near returns the near clip distance.
	Near() float32

	// Far returns the far clip distance.
	Far() float32

	// Orthographic reports whether the projection is orthographic.
	Orthographic() bool

	// View returns the world-to-view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	View() mgl32.Mat4

	// Projection returns the view-to-clip matrix.
	//
	// Returns:
	//   - mgl32.Mat4: perspective or orthographic projection
	Projection() mgl32.Mat4

	// ViewProjection returns Projection() * View().
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4

	// Reset restores the pose the camera was built with and resets the attached controller.
	Reset()

	// Controller returns the attached controller, or nil.
	Controller() CameraController

	// SetController attaches a controller.
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera at (0, 0, 5) looking at the origin with a 60 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		position:    mgl32.Vec3{0, 0, 5},
		up:          mgl32.Vec3{0, 1, 0},
		fov:         60,
		aspect:      1,
		near:        0.1,
		far:         100,
		orthoHeight: 10,
	}
	for _, option := range options {
		option(c)
	}
	c.homePosition = c.position
	c.homeTarget = c.target
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetTarget(t mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.NormalizeOr(c.target.Sub(c.position), mgl32.Vec3{0, 0, -1})
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(degrees float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = degrees
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Orthographic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ortho
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.LookAtSafe(c.position, c.target, c.up)
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection()
}

// projection builds the projection matrix. Caller must hold the mutex.
func (c *cameraImpl) projection() mgl32.Mat4 {
	if c.ortho {
		return common.OrthoFromHeight(c.orthoHeight, c.aspect, c.near, c.far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection().Mul4(common.LookAtSafe(c.position, c.target, c.up))
}

func (c *cameraImpl) Reset() {
	c.mu.Lock()
	c.position = c.homePosition
	c.target = c.homeTarget
	ctrl := c.controller
	c.mu.Unlock()

	if ctrl != nil {
		ctrl.Reset()
	}
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}
