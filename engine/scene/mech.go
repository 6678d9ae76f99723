package scene

import (
	"github.com/Carmen-Shannon/oxy-passes/engine/animator"
	"github.com/Carmen-Shannon/oxy-passes/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// quat builds a quaternion from (w, x, y, z).
func quat(w, x, y, z float32) mgl32.Quat {
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

func uniform(s float32) mgl32.Vec3 {
	return mgl32.Vec3{s, s, s}
}

// mechKey is one keyframe of a mech clip.
type mechKey struct {
	time float32
	pos  mgl32.Vec3
	rot  mgl32.Quat
	s    float32
}

func mechClip(keys ...mechKey) (animator.Clip, error) {
	options := make([]animator.ClipBuilderOption, 0, len(keys))
	for _, k := range keys {
		options = append(options, animator.WithKeyframe(k.time, k.pos, k.rot, uniform(k.s)))
	}
	return animator.NewClip(options...)
}

// mechPart is a static child of the arm base.
type mechPart struct {
	pos mgl32.Vec3
	rot mgl32.Quat
}

// BuildMechRig adds the mech hierarchy to r and returns its root (the torso):
//
//	torso
//	├── arms base (spins)
//	│   └── 3 parts per side
//	├── left hip (swings) ── knee ── ankle (swings)
//	└── right hip (swings) ── knee ── ankle (swings)
//
// Each ankle clip keys at 0, 0.5 and 1.0 seconds.
//
// Parameters:
//   - r: the rig to add the nodes to
//
// Returns:
//   - rig.NodeID: the torso node
//   - error: a clip or rig error
func BuildMechRig(r rig.Rig) (rig.NodeID, error) {
	identity := quat(1, 0, 0, 0)
	flipped := quat(-1, 0, 0, 0)
	turned := quat(0, 0, 1, 0)

	torsoClip, err := mechClip(mechKey{0, mgl32.Vec3{}, identity, 1})
	if err != nil {
		return rig.NoNode, errors.Wrap(err, "mech torso")
	}
	torso, err := r.AddNode(rig.NoNode, torsoClip)
	if err != nil {
		return rig.NoNode, err
	}

	armsPos := mgl32.Vec3{0, 1.3, 0}
	armsClip, err := mechClip(
		mechKey{0, armsPos, flipped, 0.5},
		mechKey{0.2, armsPos, turned, 0.5},
		mechKey{0.4, armsPos, identity, 0.5},
	)
	if err != nil {
		return rig.NoNode, errors.Wrap(err, "mech arms")
	}
	armsBase, err := r.AddNode(torso, armsClip)
	if err != nil {
		return rig.NoNode, err
	}
	for _, p := range []mechPart{
		{mgl32.Vec3{2, 1, 0}, turned},
		{mgl32.Vec3{3, 2, 0}, turned},
		{mgl32.Vec3{4, 3, 0}, turned},
		{mgl32.Vec3{-2, 1, 0}, identity},
		{mgl32.Vec3{-3, 2, 0}, identity},
		{mgl32.Vec3{-4, 3, 0}, identity},
	} {
		pose := animator.Pose{Position: p.pos, Rotation: p.rot, Scale: uniform(0.5)}
		if _, err := r.AddStaticNode(armsBase, pose); err != nil {
			return rig.NoNode, err
		}
	}

	for _, side := range []struct {
		name        string
		x           float32
		first, last mgl32.Quat
	}{
		{"left", 0.8, identity, flipped},
		{"right", -0.8, flipped, identity},
	} {
		hipPos := mgl32.Vec3{side.x, -0.8, 0.5}
		hipClip, err := mechClip(
			mechKey{0, hipPos, side.first, 0.5},
			mechKey{0.4, hipPos, turned, 0.5},
			mechKey{0.8, hipPos, side.last, 0.5},
		)
		if err != nil {
			return rig.NoNode, errors.Wrapf(err, "mech %s hip", side.name)
		}
		hip, err := r.AddNode(torso, hipClip)
		if err != nil {
			return rig.NoNode, err
		}

		knee, err := r.AddStaticNode(hip, animator.Pose{Position: mgl32.Vec3{0, -0.8, 0.5}, Rotation: side.last, Scale: uniform(0.5)})
		if err != nil {
			return rig.NoNode, err
		}

		anklePos := mgl32.Vec3{0, -1.3, 0.5}
		ankleClip, err := mechClip(
			mechKey{0, anklePos, side.first, 1},
			mechKey{0.5, anklePos, turned, 1},
			mechKey{1.0, anklePos, side.last, 1},
		)
		if err != nil {
			return rig.NoNode, errors.Wrapf(err, "mech %s ankle", side.name)
		}
		if _, err := r.AddNode(knee, ankleClip); err != nil {
			return rig.NoNode, err
		}
	}
	return torso, nil
}
