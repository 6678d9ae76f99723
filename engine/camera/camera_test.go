package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type fakeInput struct {
	keys   map[int]bool
	mouse  map[int]bool
	cx, cy float64
}

func (f *fakeInput) KeyDown(key int) bool      { return f.keys[key] }
func (f *fakeInput) MouseDown(button int) bool { return f.mouse[button] }
func (f *fakeInput) CursorPosition() (float64, float64) {
	return f.cx, f.cy
}

func TestDefaultCameraLooksDownNegativeZ(t *testing.T) {
	c := NewCamera(WithAspect(1080.0 / 720.0))
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, c.Position())
	assert.Equal(t, float32(60), c.Fov())
	assert.True(t, c.Forward().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6))

	// origin lands in the middle of clip space
	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-6)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-6)
}

func TestOrthographicProjection(t *testing.T) {
	c := NewCamera(WithOrthographic(4), WithClipPlanes(0.01, 20))
	assert.True(t, c.Orthographic())
	p := c.Projection().Mul4x1(mgl32.Vec4{0, 2, -1, 1})
	assert.InDelta(t, 1, p.Y(), 1e-5)
}

func TestResetRestoresStartPose(t *testing.T) {
	ctrl := NewCameraController()
	c := NewCamera(WithController(ctrl))

	ctrl.Look(c, 30, 20)
	ctrl.PanForward(c, 2)
	assert.NotEqual(t, mgl32.Vec3{0, 0, 5}, c.Position())

	c.Reset()
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, c.Position())
	assert.Equal(t, mgl32.Vec3{}, c.Target())
	assert.Zero(t, ctrl.Yaw())
	assert.Zero(t, ctrl.Pitch())
}

func TestMoveRequiresRightMouse(t *testing.T) {
	ctrl := NewCameraController()
	c := NewCamera()
	in := &fakeInput{keys: map[int]bool{common.KeyW: true}, mouse: map[int]bool{}}

	ctrl.Move(c, in, 1)
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, c.Position())

	in.mouse[common.MouseRight] = true
	ctrl.Move(c, in, 1)
	assert.True(t, c.Position().ApproxEqualThreshold(mgl32.Vec3{0, 0, 0}, 1e-5))
}

func TestShiftSprints(t *testing.T) {
	ctrl := NewCameraController()
	c := NewCamera()
	in := &fakeInput{
		keys:  map[int]bool{common.KeyD: true, common.KeyLeftShift: true},
		mouse: map[int]bool{common.MouseRight: true},
	}
	ctrl.Move(c, in, 0.5)
	assert.True(t, c.Position().ApproxEqualThreshold(mgl32.Vec3{5, 0, 5}, 1e-5))
}

func TestMouseLookClampsPitch(t *testing.T) {
	ctrl := NewCameraController()
	c := NewCamera()
	in := &fakeInput{mouse: map[int]bool{common.MouseRight: true}, cx: 100, cy: 100}

	// first frame only records the cursor
	ctrl.Move(c, in, 0)
	assert.Zero(t, ctrl.Yaw())

	in.cx, in.cy = 200, -10000
	ctrl.Move(c, in, 0)
	assert.InDelta(t, 10, ctrl.Yaw(), 1e-4)
	assert.InDelta(t, 89, ctrl.Pitch(), 1e-4)
}
