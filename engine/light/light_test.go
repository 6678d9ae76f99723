package light

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointGridLayout(t *testing.T) {
	lights := NewPointGrid()
	require.Len(t, lights, 64)

	assert.Equal(t, mgl32.Vec3{1, -0.5, 1}, lights[0].Position)
	// y is the inner loop, so index 1 is one step along z
	assert.Equal(t, mgl32.Vec3{1, -0.5, 6}, lights[1].Position)
	assert.Equal(t, mgl32.Vec3{36, -0.5, 36}, lights[63].Position)

	for _, l := range lights {
		assert.Equal(t, float32(5), l.Radius)
		assert.Equal(t, float32(1), l.Color[3])
		for c := 0; c < 3; c++ {
			v := l.Color[c]
			assert.True(t, v == 0 || v == 1 || v == 2 || v == 3, "channel %v", v)
		}
	}
}

func TestPointGridSeedIsDeterministic(t *testing.T) {
	a := NewPointGrid(WithSeed(42))
	b := NewPointGrid(WithSeed(42))
	assert.Equal(t, a, b)

	small := NewPointGrid(WithGridSize(2, 3), WithSpacing(1), WithOffset(mgl32.Vec3{}), WithRadius(2))
	require.Len(t, small, 6)
	assert.Equal(t, mgl32.Vec3{1, 0, 2}, small[5].Position)
	assert.Equal(t, float32(2), small[5].Radius)

	assert.Empty(t, NewPointGrid(WithGridSize(0, 8)))
}

func TestShadowBiasIsSlopeScaled(t *testing.T) {
	s := NewShadow()
	up := mgl32.Vec3{0, 1, 0}

	assert.InDelta(t, 0.007, s.Bias(up, up), 1e-6)
	assert.InDelta(t, 0.2, s.Bias(up, mgl32.Vec3{1, 0, 0}), 1e-6)
	assert.InDelta(t, 0.4, s.Bias(up, mgl32.Vec3{0, -1, 0}), 1e-6)

	custom := NewShadow(WithBias(0.05, 0.01))
	assert.InDelta(t, 0.05, custom.Bias(up, mgl32.Vec3{1, 0, 0}), 1e-6)
}

func TestLightCameraFollowsDirection(t *testing.T) {
	lc := NewLightCamera()
	assert.True(t, lc.Position().ApproxEqualThreshold(mgl32.Vec3{18, 10, 18}, 1e-6))

	lc.Follow(mgl32.Vec3{0.5, -1, 0})
	assert.True(t, lc.Position().ApproxEqualThreshold(mgl32.Vec3{13, 10, 18}, 1e-5))

	// target projects to the center of light clip space
	clip := lc.ViewProjection().Mul4x1(lc.Target().Vec4(1))
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-5)
	assert.InDelta(t, 0, clip[1]/clip[3], 1e-5)
}

func TestLightCameraStraightDownIsWellFormed(t *testing.T) {
	lc := NewLightCamera(WithTarget(0, 0, 0), WithOrthoHeight(5), WithClipPlanes(0.01, 20), WithDistance(5))
	lc.Follow(mgl32.Vec3{0, -1, 0})

	vp := lc.ViewProjection()
	for i := 0; i < 16; i++ {
		assert.False(t, math.IsNaN(float64(vp[i])), "NaN at %d", i)
	}

	// a point 5 units below the camera lands at the middle of the depth range
	p := vp.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, (5-0.01)/(20-0.01)*2-1, p[2], 1e-4)
	assert.InDelta(t, 1.0/2.5, abs(p[0])+abs(p[1]), 1e-4)
}

func TestDirectionalDefaults(t *testing.T) {
	d := NewDirectional()
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, d.Direction)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, d.Color)

	zero := NewDirectional(WithDirection(0, 0, 0))
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, zero.NormalizedDirection())
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
