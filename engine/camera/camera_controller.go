package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Input is the polled device state a controller reads each frame.
type Input interface {
	// KeyDown reports whether a key from common/key_codes.go is held.
	KeyDown(key int) bool

	// MouseDown reports whether a mouse button is held.
	MouseDown(button int) bool

	// CursorPosition returns the cursor position in window pixels.
	CursorPosition() (x, y float64)
}

// CameraController moves a Camera from polled input.
type CameraController interface {
	// Move applies one frame of input to cam. Nothing moves unless the right mouse button is held.
	//
	// Parameters:
	//   - cam: the camera to move
	//   - in: current input state
	//   - dt: frame time in seconds
	Move(cam Camera, in Input, dt float32)

	// PanRight translates the camera and its target along the camera's right axis.
	PanRight(cam Camera, delta float32)

	// PanUp translates the camera and its target along world up.
	PanUp(cam Camera, delta float32)

	// PanForward translates the camera and its target along the view direction.
	PanForward(cam Camera, delta float32)

	// Look adds yaw and pitch in degrees and re-aims the camera. Pitch is clamped to +-89.
	Look(cam Camera, dYaw, dPitch float32)

	// Yaw returns the heading in degrees; 0 looks down -Z.
	Yaw() float32

	// Pitch returns the elevation in degrees.
	Pitch() float32

	// Reset zeroes yaw and pitch and forgets the last cursor position.
	Reset()
}

// flyController is a free-look controller: WASD/QE translation and right-mouse-drag yaw/pitch,
// with shift for the sprint speed.
type flyController struct {
	mu *sync.Mutex

	yaw   float32
	pitch float32

	moveSpeed        float32
	sprintSpeed      float32
	mouseSensitivity float32
	maxPitch         float32

	looking bool
	lastX   float64
	lastY   float64
}

var _ CameraController = &flyController{}

// NewCameraController creates a fly controller.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	fc := &flyController{
		mu:               &sync.Mutex{},
		moveSpeed:        5,
		sprintSpeed:      10,
		mouseSensitivity: 0.1,
		maxPitch:         89,
	}
	for _, option := range options {
		option(fc)
	}
	return fc
}

// forward converts yaw and pitch to a unit direction. Caller must hold the mutex.
func (fc *flyController) forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(fc.yaw))
	pitch := float64(mgl32.DegToRad(fc.pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}
}

func (fc *flyController) Move(cam Camera, in Input, dt float32) {
	if !in.MouseDown(common.MouseRight) {
		fc.mu.Lock()
		fc.looking = false
		fc.mu.Unlock()
		return
	}

	x, y := in.CursorPosition()
	fc.mu.Lock()
	if !fc.looking {
		fc.looking = true
		fc.lastX, fc.lastY = x, y
	}
	dx := float32(x-fc.lastX) * fc.mouseSensitivity
	dy := float32(y-fc.lastY) * fc.mouseSensitivity
	fc.lastX, fc.lastY = x, y
	speed := fc.moveSpeed
	if in.KeyDown(common.KeyLeftShift) || in.KeyDown(common.KeyRightShift) {
		speed = fc.sprintSpeed
	}
	fc.mu.Unlock()

	fc.Look(cam, dx, -dy)

	step := speed * dt
	axis := func(pos, neg int) float32 {
		var v float32
		if in.KeyDown(pos) {
			v++
		}
		if in.KeyDown(neg) {
			v--
		}
		return v
	}
	if v := axis(common.KeyW, common.KeyS); v != 0 {
		fc.PanForward(cam, v*step)
	}
	if v := axis(common.KeyD, common.KeyA); v != 0 {
		fc.PanRight(cam, v*step)
	}
	if v := axis(common.KeyE, common.KeyQ); v != 0 {
		fc.PanUp(cam, v*step)
	}
}

func (fc *flyController) pan(cam Camera, offset mgl32.Vec3) {
	cam.SetPosition(cam.Position().Add(offset))
	cam.SetTarget(cam.Target().Add(offset))
}

func (fc *flyController) PanRight(cam Camera, delta float32) {
	fc.mu.Lock()
	right := common.NormalizeOr(fc.forward().Cross(mgl32.Vec3{0, 1, 0}), mgl32.Vec3{1, 0, 0})
	fc.mu.Unlock()
	fc.pan(cam, right.Mul(delta))
}

func (fc *flyController) PanUp(cam Camera, delta float32) {
	fc.pan(cam, mgl32.Vec3{0, delta, 0})
}

func (fc *flyController) PanForward(cam Camera, delta float32) {
	fc.mu.Lock()
	f := fc.forward()
	fc.mu.Unlock()
	fc.pan(cam, f.Mul(delta))
}

func (fc *flyController) Look(cam Camera, dYaw, dPitch float32) {
	fc.mu.Lock()
	fc.yaw += dYaw
	fc.pitch = common.Clamp(fc.pitch+dPitch, -fc.maxPitch, fc.maxPitch)
	f := fc.forward()
	fc.mu.Unlock()
	cam.SetTarget(cam.Position().Add(f))
}

func (fc *flyController) Yaw() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.yaw
}

func (fc *flyController) Pitch() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.pitch
}

func (fc *flyController) Reset() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.yaw = 0
	fc.pitch = 0
	fc.looking = false
}
