package postfx

import (
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDefaultsAreOff(t *testing.T) {
	c := NewChromaticAberration()
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, c.Offsets)
	assert.False(t, c.EffectOn)

	buf := (&GPUAberration{}).Marshal()
	assert.Len(t, buf, GPUAberrationSize)
}

func TestToggleSetsEffectFlag(t *testing.T) {
	c := NewChromaticAberration(WithOffsets(0.1, 0.2, 0.3))
	c.Toggle()

	g := c.GPU()
	buf := g.Marshal()
	assert.Equal(t, int32(1), g.EffectOn)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[12:16]))

	c.Toggle()
	assert.Equal(t, int32(0), c.GPU().EffectOn)
}
