package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, Material{Ambient: 1, Diffuse: 0.5, Specular: 0.5, Shininess: 128}, m)

	m = NewMaterial(WithShininess(16), WithAmbient(0.2))
	assert.Equal(t, float32(16), m.Shininess)
	assert.Equal(t, float32(0.2), m.Ambient)
}

func TestClampedRespectsWidgetRanges(t *testing.T) {
	m := Material{Ambient: -1, Diffuse: 2, Specular: 0.3, Shininess: 1}.Clamped()
	assert.Equal(t, Material{Ambient: 0, Diffuse: 1, Specular: 0.3, Shininess: 2}, m)

	m = Material{Shininess: 5000}.Clamped()
	assert.Equal(t, float32(1024), m.Shininess)
}

func TestGPUMaterialLayout(t *testing.T) {
	g := NewMaterial().GPU()
	buf := g.Marshal()

	assert.Equal(t, 16, g.Size())
	assert.Equal(t, float32(128), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])))
}
