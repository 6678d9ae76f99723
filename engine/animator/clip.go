package animator

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var (
	// ErrNonIncreasingTime is returned when a keyframe's time is not greater than the previous keyframe's.
	ErrNonIncreasingTime = errors.New("animator: keyframe times must be strictly increasing")
	// ErrNegativeTime is returned for keyframe times below zero.
	ErrNegativeTime = errors.New("animator: keyframe time is negative")
	// ErrInvalidTime is returned for NaN or infinite keyframe times.
	ErrInvalidTime = errors.New("animator: keyframe time is not finite")
	// ErrZeroRotation is returned when a keyframe rotation has zero length and cannot be normalized.
	ErrZeroRotation = errors.New("animator: keyframe rotation has zero length")
)

// clip is the implementation of the Clip interface.
type clip struct {
	mu *sync.Mutex

	keyframes []Keyframe
	pending   []Keyframe
	duration  float32
	localTime float32
	speed     float32
}

// Clip is an ordered list of TRS keyframes with a looping playback cursor.
//
// A clip with exactly one keyframe is static: evaluating it always yields that keyframe and never
// advances the cursor. A clip with two or more keyframes advances by dt*speed per Evaluate and
// restarts from zero once the cursor passes the last keyframe time.
type Clip interface {
	// AddKeyframe appends a keyframe. Its time must be finite, non-negative and greater than every
	// time already in the clip. Rotations are normalized on insertion.
	//
	// Parameters:
	//   - k: the keyframe to append
	//
	// Returns:
	//   - error: ErrNonIncreasingTime, ErrNegativeTime, ErrInvalidTime or ErrZeroRotation, wrapped
	AddKeyframe(k Keyframe) error

	// Evaluate advances the cursor by dt (scaled by the clip speed) and returns the local transform at
	// the new cursor position as translate * rotate * scale. Passing the duration wraps the cursor to 0;
	// a negative step that passes 0 wraps it to the duration.
	//
	// Parameters:
	//   - dt: elapsed seconds since the previous call
	//
	// Returns:
	//   - mgl32.Mat4: the local transform, or identity for an empty clip
	Evaluate(dt float32) mgl32.Mat4

	// Sample returns the pose at the given clip-local time without moving the cursor.
	// Times before the first keyframe hold the first keyframe; times at or past the last hold the last
	// rather than falling back to the identity pose, so a clip never snaps to the origin at its end.
	//
	// Parameters:
	//   - localTime: clip-local time in seconds
	//
	// Returns:
	//   - Pose: the interpolated pose
	Sample(localTime float32) Pose

	// Current returns the pose at the cursor without advancing it.
	Current() Pose

	// Reset moves the cursor back to zero.
	Reset()

	// IsStatic reports whether the clip holds exactly one keyframe.
	IsStatic() bool

	// Len returns the number of keyframes.
	Len() int

	// Keyframes returns a copy of the keyframes in insertion order.
	Keyframes() []Keyframe

	// Duration returns the largest keyframe time seen.
	Duration() float32

	// LocalTime returns the playback cursor in seconds.
	LocalTime() float32

	// SetLocalTime moves the cursor. Values outside [0, Duration] are clamped.
	SetLocalTime(t float32)

	// Speed returns the playback speed multiplier.
	Speed() float32

	// SetSpeed sets the playback speed multiplier. 1 is real time, 0 freezes the clip.
	SetSpeed(speed float32)
}

var _ Clip = &clip{}

// NewClip creates a Clip from the supplied options. Keyframes added through options are validated in
// the order given; the first invalid one aborts construction.
//
// Parameters:
//   - options: functional options such as WithKeyframe and WithSpeed
//
// Returns:
//   - Clip: the constructed clip
//   - error: the first keyframe validation error, if any
func NewClip(options ...ClipBuilderOption) (Clip, error) {
	c := &clip{
		mu:    &sync.Mutex{},
		speed: 1,
	}
	for _, option := range options {
		option(c)
	}

	pending := c.pending
	c.pending = nil
	for i, k := range pending {
		if err := c.AddKeyframe(k); err != nil {
			return nil, errors.Wrapf(err, "keyframe %d", i)
		}
	}
	return c, nil
}

// MustClip is NewClip that panics on a validation error. Intended for hard-coded rigs.
func MustClip(options ...ClipBuilderOption) Clip {
	c, err := NewClip(options...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *clip) AddKeyframe(k Keyframe) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := float64(k.Time)
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return errors.Wrapf(ErrInvalidTime, "time %v", k.Time)
	}
	if k.Time < 0 {
		return errors.Wrapf(ErrNegativeTime, "time %.4f", k.Time)
	}
	if n := len(c.keyframes); n > 0 && k.Time <= c.keyframes[n-1].Time {
		return errors.Wrapf(ErrNonIncreasingTime, "time %.4f after %.4f", k.Time, c.keyframes[n-1].Time)
	}
	if k.Rotation.Len() == 0 {
		return ErrZeroRotation
	}

	k.Rotation = k.Rotation.Normalize()
	c.keyframes = append(c.keyframes, k)
	if k.Time > c.duration {
		c.duration = k.Time
	}
	return nil
}

func (c *clip) Evaluate(dt float32) mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch len(c.keyframes) {
	case 0:
		return mgl32.Ident4()
	case 1:
		return c.keyframes[0].Pose().Matrix()
	}

	c.localTime += dt * c.speed
	if c.localTime > c.duration {
		c.localTime = 0
	} else if c.localTime < 0 {
		c.localTime = c.duration
	}
	return c.sample(c.localTime).Matrix()
}

func (c *clip) Sample(localTime float32) Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sample(localTime)
}

func (c *clip) Current() Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sample(c.localTime)
}

// sample finds the first keyframe strictly after localTime and interpolates from its predecessor.
// Caller must hold the mutex.
func (c *clip) sample(localTime float32) Pose {
	n := len(c.keyframes)
	if n == 0 {
		return IdentityPose()
	}

	next := -1
	for i, k := range c.keyframes {
		if k.Time > localTime {
			next = i
			break
		}
	}

	switch next {
	case -1:
		return c.keyframes[n-1].Pose()
	case 0:
		return c.keyframes[0].Pose()
	}

	prev := c.keyframes[next-1]
	cur := c.keyframes[next]
	return interpolate(prev, cur, InvLerp(prev.Time, cur.Time, localTime))
}

func (c *clip) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localTime = 0
}

func (c *clip) IsStatic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keyframes) == 1
}

func (c *clip) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keyframes)
}

func (c *clip) Keyframes() []Keyframe {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Keyframe, len(c.keyframes))
	copy(out, c.keyframes)
	return out
}

func (c *clip) Duration() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *clip) LocalTime() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localTime
}

func (c *clip) SetLocalTime(t float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localTime = mgl32.Clamp(t, 0, c.duration)
}

func (c *clip) Speed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

func (c *clip) SetSpeed(speed float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
}
