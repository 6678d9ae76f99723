package animator

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// slerpEpsilon is how close dot(q1, q2) must be to 1 (or -1) for Slerp to leave the slerp formula.
const slerpEpsilon = 1e-6

// Keyframe is one TRS sample of a clip at a point in clip-local time (seconds).
type Keyframe struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Time     float32
}

// Pose is an evaluated translation/rotation/scale triple.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// IdentityPose is the pose at the origin with no rotation and unit scale.
func IdentityPose() Pose {
	return Pose{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Pose returns the keyframe's TRS without its time.
func (k Keyframe) Pose() Pose {
	return Pose{Position: k.Position, Rotation: k.Rotation, Scale: k.Scale}
}

// Matrix composes the pose as translate * rotate * scale.
func (p Pose) Matrix() mgl32.Mat4 {
	return Compose(p.Position, p.Rotation, p.Scale)
}

// Compose builds the local transform translate(pos) * rotate(rot) * scale(scale).
//
// Parameters:
//   - pos: translation
//   - rot: rotation, expected to be unit length
//   - scale: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed column-major matrix
func Compose(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// InvLerp returns where x sits between a and b as a fraction, 0 at a and 1 at b.
// A zero-width interval returns 0.
func InvLerp(a, b, x float32) float32 {
	if b == a {
		return 0
	}
	return (x - a) / (b - a)
}

// Lerp linearly interpolates between two vectors.
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Slerp spherically interpolates between two unit quaternions along the arc they span.
// No shortest-path flip is applied, so q and -q interpolate the long way around.
// When the angle between them is 0 or pi the arc is undefined and q1 is returned. Arcs too small
// for the slerp weights to be stable are blended with a normalized lerp instead.
//
// Parameters:
//   - q1: rotation at t = 0
//   - q2: rotation at t = 1
//   - t: interpolation factor in [0, 1]
//
// Returns:
//   - mgl32.Quat: the interpolated unit quaternion
func Slerp(q1, q2 mgl32.Quat, t float32) mgl32.Quat {
	dot := float64(mgl32.Clamp(q1.Dot(q2), -1, 1))
	switch {
	case math.Abs(dot) == 1, dot < -1+slerpEpsilon:
		return q1
	case dot > 1-slerpEpsilon:
		return q1.Scale(1 - t).Add(q2.Scale(t)).Normalize()
	}
	angle := math.Acos(dot)
	s := math.Sin(angle)
	w1 := float32(math.Sin((1-float64(t))*angle) / s)
	w2 := float32(math.Sin(float64(t)*angle) / s)
	return q1.Scale(w1).Add(q2.Scale(w2)).Normalize()
}

// interpolate blends two keyframes at factor t.
func interpolate(a, b Keyframe, t float32) Pose {
	return Pose{
		Position: Lerp(a.Position, b.Position, t),
		Rotation: Slerp(a.Rotation, b.Rotation, t),
		Scale:    Lerp(a.Scale, b.Scale, t),
	}
}
