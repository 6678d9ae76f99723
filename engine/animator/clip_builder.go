package animator

import "github.com/go-gl/mathgl/mgl32"

// ClipBuilderOption is a functional option for configuring a Clip during construction.
type ClipBuilderOption func(*clip)

// WithKeyframe queues a keyframe for validation and insertion by NewClip.
//
// Parameters:
//   - time: clip-local time in seconds
//   - pos: translation
//   - rot: rotation; normalized on insertion
//   - scale: per-axis scale
//
// Returns:
//   - ClipBuilderOption: a function that queues the keyframe
func WithKeyframe(time float32, pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) ClipBuilderOption {
	return func(c *clip) {
		c.pending = append(c.pending, Keyframe{Position: pos, Rotation: rot, Scale: scale, Time: time})
	}
}

// WithKeyframes queues several keyframes in order.
//
// Parameters:
//   - keyframes: keyframes to queue
//
// Returns:
//   - ClipBuilderOption: a function that queues the keyframes
func WithKeyframes(keyframes ...Keyframe) ClipBuilderOption {
	return func(c *clip) {
		c.pending = append(c.pending, keyframes...)
	}
}

// WithStaticPose makes a single-keyframe clip at time 0.
func WithStaticPose(p Pose) ClipBuilderOption {
	return WithKeyframe(0, p.Position, p.Rotation, p.Scale)
}

// WithSpeed sets the playback speed multiplier (default 1).
//
// Parameters:
//   - speed: multiplier applied to dt in Evaluate
//
// Returns:
//   - ClipBuilderOption: a function that sets the speed
func WithSpeed(speed float32) ClipBuilderOption {
	return func(c *clip) {
		c.speed = speed
	}
}
