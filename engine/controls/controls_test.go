package controls

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/Carmen-Shannon/oxy-passes/engine/light"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/postfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mat    material.Material
	dir    light.Directional
	shadow light.Shadow
	ab     postfx.ChromaticAberration
	orbs   bool
	resets int
}

func newFixture() (*fixture, Controls) {
	fx := &fixture{
		mat:    material.NewMaterial(),
		dir:    light.NewDirectional(),
		shadow: light.NewShadow(),
		ab:     postfx.NewChromaticAberration(),
		orbs:   true,
	}
	c := NewControls(Targets{
		Material:      &fx.mat,
		Light:         &fx.dir,
		Shadow:        &fx.shadow,
		Aberration:    &fx.ab,
		ShowLightOrbs: &fx.orbs,
		ResetCamera:   func() { fx.resets++ },
	}, WithStepFraction(0.1))
	return fx, c
}

func TestTabCyclesParameters(t *testing.T) {
	_, c := newFixture()
	names := c.Names()
	require.Len(t, names, 15)
	assert.Equal(t, "material.ambient", c.Selected())

	assert.True(t, c.HandleKey(common.KeyTab))
	assert.Equal(t, "material.diffuse", c.Selected())

	c.SetShift(true)
	c.HandleKey(common.KeyTab)
	c.HandleKey(common.KeyTab)
	assert.Equal(t, names[len(names)-1], c.Selected())
}

func TestNudgeClampsToRange(t *testing.T) {
	fx, c := newFixture()

	// ambient starts at its maximum
	c.HandleKey(common.KeyUp)
	assert.Equal(t, float32(1), fx.mat.Ambient)

	c.HandleKey(common.KeyDown)
	assert.InDelta(t, 0.9, fx.mat.Ambient, 1e-6)

	for i := 0; i < 3; i++ {
		c.HandleKey(common.KeyTab)
	}
	require.Equal(t, "material.shininess", c.Selected())
	c.HandleKey(common.KeyUp)
	assert.InDelta(t, 128+102.2, fx.mat.Shininess, 1e-3)

	c.SetShift(true)
	c.HandleKey(common.KeyUp)
	assert.Equal(t, float32(1024), fx.mat.Shininess)
	c.HandleKey(common.KeyDown)
	c.HandleKey(common.KeyDown)
	assert.Equal(t, float32(2), fx.mat.Shininess)
}

func TestNudgeLightDirection(t *testing.T) {
	fx, c := newFixture()
	for c.Selected() != "light.direction.y" {
		c.HandleKey(common.KeyTab)
	}
	c.HandleKey(common.KeyUp)
	assert.InDelta(t, -0.8, fx.dir.Direction[1], 1e-6)
	v, ok := c.Value("light.direction.y")
	assert.True(t, ok)
	assert.InDelta(t, -0.8, v, 1e-6)
}

func TestToggles(t *testing.T) {
	fx, c := newFixture()

	assert.True(t, c.HandleKey(common.KeyX))
	assert.True(t, fx.ab.EffectOn)
	c.HandleKey(common.KeyX)
	assert.False(t, fx.ab.EffectOn)

	c.HandleKey(common.KeyO)
	assert.False(t, fx.orbs)

	c.HandleKey(common.KeyR)
	assert.Equal(t, 1, fx.resets)

	assert.False(t, c.HandleKey(common.KeyW))
}

func TestMissingTargetsAreUnbound(t *testing.T) {
	c := NewControls(Targets{})
	assert.Empty(t, c.Names())
	assert.Equal(t, "", c.Selected())
	assert.True(t, c.HandleKey(common.KeyTab))
	assert.True(t, c.HandleKey(common.KeyUp))
	assert.False(t, c.HandleKey(common.KeyX))
	assert.False(t, c.HandleKey(common.KeyO))
	assert.False(t, c.HandleKey(common.KeyR))
	_, ok := c.Value("material.ambient")
	assert.False(t, ok)
}
