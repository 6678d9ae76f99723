package animator

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unit = mgl32.Vec3{1, 1, 1}

func threeKeyClip(t *testing.T) Clip {
	t.Helper()
	c, err := NewClip(
		WithKeyframe(0, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), unit),
		WithKeyframe(0.2, mgl32.Vec3{2, 0, 0}, mgl32.QuatIdent(), unit),
		WithKeyframe(0.4, mgl32.Vec3{4, 0, 0}, mgl32.QuatIdent(), unit),
	)
	require.NoError(t, err)
	return c
}

func translation(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}

func TestSlerpStaysUnitLength(t *testing.T) {
	q1 := mgl32.QuatIdent()
	q2 := mgl32.QuatRotate(mgl32.DegToRad(120), mgl32.Vec3{0, 1, 0})
	for i := 0; i <= 10; i++ {
		q := Slerp(q1, q2, float32(i)/10)
		assert.InDelta(t, 1.0, q.Len(), 1e-5, "t=%d/10", i)
	}
}

func TestSlerpEndpoints(t *testing.T) {
	q1 := mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{1, 0, 0})
	q2 := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})

	assert.True(t, Slerp(q1, q2, 0).ApproxEqualThreshold(q1, 1e-5))
	assert.True(t, Slerp(q1, q2, 1).ApproxEqualThreshold(q2, 1e-5))
}

func TestSlerpHalfway(t *testing.T) {
	q1 := mgl32.QuatIdent()
	q2 := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	want := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})

	assert.True(t, Slerp(q1, q2, 0.5).ApproxEqualThreshold(want, 1e-5))
}

func TestSlerpDegenerateAngleReturnsFirst(t *testing.T) {
	q := mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0})

	assert.True(t, Slerp(q, q, 0.5).ApproxEqualThreshold(q, 1e-6))

	neg := mgl32.Quat{W: -q.W, V: q.V.Mul(-1)}
	assert.Equal(t, q, Slerp(q, neg, 0.25))
}

func TestSlerpSmallArcReachesSecond(t *testing.T) {
	q1 := mgl32.QuatIdent()
	q2 := mgl32.QuatRotate(mgl32.DegToRad(0.15), mgl32.Vec3{0, 1, 0})
	half := mgl32.QuatRotate(mgl32.DegToRad(0.075), mgl32.Vec3{0, 1, 0})

	assert.True(t, Slerp(q1, q2, 1).ApproxEqualThreshold(q2, 1e-5), "got %v", Slerp(q1, q2, 1))
	mid := Slerp(q1, q2, 0.5)
	assert.True(t, mid.ApproxEqualThreshold(half, 1e-5), "got %v", mid)
	assert.NotEqual(t, q1, mid)
	assert.InDelta(t, 1.0, mid.Len(), 1e-6)
}

func TestLerpAndInvLerp(t *testing.T) {
	a := mgl32.Vec3{0, 2, -4}
	b := mgl32.Vec3{10, 4, 4}

	assert.Equal(t, a, Lerp(a, b, 0))
	assert.Equal(t, b, Lerp(a, b, 1))
	assert.True(t, Lerp(a, b, 0.5).ApproxEqualThreshold(mgl32.Vec3{5, 3, 0}, 1e-6))

	assert.InDelta(t, 0.5, InvLerp(0, 0.2, 0.1), 1e-6)
	assert.InDelta(t, 0.0, InvLerp(1, 1, 1), 1e-6)
}

func TestComposeOrder(t *testing.T) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	m := Compose(mgl32.Vec3{1, 2, 3}, rot, mgl32.Vec3{2, 2, 2})

	// scale, then rotate +x onto +y, then translate
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{1, 4, 3}, 1e-5), "got %v", p)
}

func TestEvaluateInterpolatesBetweenSurroundingKeys(t *testing.T) {
	c := threeKeyClip(t)

	c.Evaluate(0.05)
	m := c.Evaluate(0.05)

	assert.InDelta(t, 0.1, c.LocalTime(), 1e-6)
	assert.True(t, translation(m).ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-4), "got %v", translation(m))
}

func TestEvaluateWrapsPastDuration(t *testing.T) {
	c := threeKeyClip(t)

	c.Evaluate(0.3)
	m := c.Evaluate(0.2)

	assert.Equal(t, float32(0), c.LocalTime())
	assert.True(t, translation(m).ApproxEqualThreshold(mgl32.Vec3{}, 1e-6))
}

func TestEvaluateNegativeStepWrapsToDuration(t *testing.T) {
	c := threeKeyClip(t)

	m := c.Evaluate(-0.1)

	assert.Equal(t, c.Duration(), c.LocalTime())
	assert.True(t, translation(m).ApproxEqualThreshold(mgl32.Vec3{4, 0, 0}, 1e-6))

	m = c.Evaluate(-0.1)
	assert.InDelta(t, 0.3, c.LocalTime(), 1e-6)
	assert.True(t, translation(m).ApproxEqualThreshold(mgl32.Vec3{3, 0, 0}, 1e-4), "got %v", translation(m))
}

func TestSamplePastLastKeyHoldsLast(t *testing.T) {
	c := threeKeyClip(t)

	p := c.Sample(5)
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, p.Position)
	assert.Equal(t, float32(0), c.LocalTime())
}

func TestEvaluateHoldsLastKeyAtDuration(t *testing.T) {
	c := threeKeyClip(t)

	m := c.Evaluate(0.4)

	assert.Equal(t, float32(0.4), c.LocalTime())
	assert.True(t, translation(m).ApproxEqualThreshold(mgl32.Vec3{4, 0, 0}, 1e-6))
}

func TestSampleBeforeFirstKeyHoldsFirst(t *testing.T) {
	c, err := NewClip(
		WithKeyframe(0.5, mgl32.Vec3{3, 0, 0}, mgl32.QuatIdent(), unit),
		WithKeyframe(1.0, mgl32.Vec3{6, 0, 0}, mgl32.QuatIdent(), unit),
	)
	require.NoError(t, err)

	p := c.Sample(0.1)
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, p.Position)
}

func TestStaticClipDoesNotAdvance(t *testing.T) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{1, 0, 0})
	c, err := NewClip(WithKeyframe(0, mgl32.Vec3{0, 1.3, 0}, rot, mgl32.Vec3{0.5, 0.5, 0.5}))
	require.NoError(t, err)
	require.True(t, c.IsStatic())

	want := Compose(mgl32.Vec3{0, 1.3, 0}, rot, mgl32.Vec3{0.5, 0.5, 0.5})
	for i := 0; i < 5; i++ {
		assert.True(t, c.Evaluate(0.7).ApproxEqualThreshold(want, 1e-6))
	}
	assert.Equal(t, float32(0), c.LocalTime())
}

func TestEmptyClipEvaluatesToIdentity(t *testing.T) {
	c, err := NewClip()
	require.NoError(t, err)

	assert.Equal(t, mgl32.Ident4(), c.Evaluate(1))
	assert.Equal(t, 0, c.Len())
}

func TestNewClipRejectsBadTimes(t *testing.T) {
	_, err := NewClip(
		WithKeyframe(0, mgl32.Vec3{}, mgl32.QuatIdent(), unit),
		WithKeyframe(0.5, mgl32.Vec3{}, mgl32.QuatIdent(), unit),
		WithKeyframe(0.5, mgl32.Vec3{}, mgl32.QuatIdent(), unit),
	)
	assert.True(t, errors.Is(err, ErrNonIncreasingTime), "got %v", err)

	_, err = NewClip(WithKeyframe(-1, mgl32.Vec3{}, mgl32.QuatIdent(), unit))
	assert.True(t, errors.Is(err, ErrNegativeTime), "got %v", err)

	_, err = NewClip(WithKeyframe(float32(math.NaN()), mgl32.Vec3{}, mgl32.QuatIdent(), unit))
	assert.True(t, errors.Is(err, ErrInvalidTime), "got %v", err)

	_, err = NewClip(WithKeyframe(0, mgl32.Vec3{}, mgl32.Quat{}, unit))
	assert.True(t, errors.Is(err, ErrZeroRotation), "got %v", err)
}

func TestAddKeyframeNormalizesRotationAndTracksDuration(t *testing.T) {
	c, err := NewClip()
	require.NoError(t, err)

	require.NoError(t, c.AddKeyframe(Keyframe{Rotation: mgl32.Quat{W: 2}, Scale: unit, Time: 0}))
	require.NoError(t, c.AddKeyframe(Keyframe{Rotation: mgl32.Quat{W: -1}, Scale: unit, Time: 0.8}))

	keys := c.Keyframes()
	require.Len(t, keys, 2)
	assert.InDelta(t, 1.0, keys[0].Rotation.W, 1e-6)
	assert.Equal(t, float32(0.8), c.Duration())

	keys[0].Time = 99
	assert.Equal(t, float32(0), c.Keyframes()[0].Time)
}

func TestSpeedScalesAdvance(t *testing.T) {
	c, err := NewClip(
		WithSpeed(2),
		WithKeyframe(0, mgl32.Vec3{}, mgl32.QuatIdent(), unit),
		WithKeyframe(1, mgl32.Vec3{10, 0, 0}, mgl32.QuatIdent(), unit),
	)
	require.NoError(t, err)

	c.Evaluate(0.25)
	assert.InDelta(t, 0.5, c.LocalTime(), 1e-6)
	assert.True(t, c.Current().Position.ApproxEqualThreshold(mgl32.Vec3{5, 0, 0}, 1e-5))

	c.Reset()
	assert.Equal(t, float32(0), c.LocalTime())
}

func TestMustClipPanicsOnInvalidKeys(t *testing.T) {
	assert.Panics(t, func() {
		MustClip(
			WithKeyframe(1, mgl32.Vec3{}, mgl32.QuatIdent(), unit),
			WithKeyframe(0.5, mgl32.Vec3{}, mgl32.QuatIdent(), unit),
		)
	})
}
