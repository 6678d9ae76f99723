package game_object

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	g := NewGameObject()
	assert.True(t, g.Enabled())
	assert.True(t, g.CastsShadow())
	assert.Equal(t, mgl32.Ident4(), g.Transform())
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, g.Albedo())
}

func TestTransformComposesTRS(t *testing.T) {
	g := NewGameObject(
		WithPosition(5, -1, 10),
		WithUniformScale(0.2),
		WithCastsShadow(false),
		WithEnabled(false),
	)

	p := g.Transform().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{5.2, -1, 10}, 1e-5))
	assert.False(t, g.CastsShadow())
	assert.False(t, g.Enabled())

	g.SetRotation(mgl32.Quat{W: 2})
	assert.InDelta(t, 1.0, g.Rotation().Len(), 1e-6)
}
