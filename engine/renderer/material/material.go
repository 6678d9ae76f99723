package material

import "github.com/Carmen-Shannon/oxy-passes/common"

var (
	// CoefficientRange bounds the ambient, diffuse and specular coefficients.
	CoefficientRange = common.Range{Min: 0, Max: 1}
	// ShininessRange bounds the specular exponent.
	ShininessRange = common.Range{Min: 2, Max: 1024}
)

// Material holds the Blinn-Phong surface coefficients shared by every object in a scene.
// Values are not clamped here; the controls clamp to the ranges above when adjusting.
type Material struct {
	Ambient   float32
	Diffuse   float32
	Specular  float32
	Shininess float32
}

// NewMaterial creates a Material starting from the default coefficients.
//
// Parameters:
//   - options: functional options overriding individual coefficients
//
// Returns:
//   - Material: the configured material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := Material{
		Ambient:   1.0,
		Diffuse:   0.5,
		Specular:  0.5,
		Shininess: 128,
	}
	for _, option := range options {
		option(&m)
	}
	return m
}

// Clamped returns a copy with every coefficient inside its range.
func (m Material) Clamped() Material {
	return Material{
		Ambient:   CoefficientRange.Clamp(m.Ambient),
		Diffuse:   CoefficientRange.Clamp(m.Diffuse),
		Specular:  CoefficientRange.Clamp(m.Specular),
		Shininess: ShininessRange.Clamp(m.Shininess),
	}
}

// GPU converts the material to its uniform layout.
func (m Material) GPU() GPUMaterial {
	return GPUMaterial{
		Ambient:   m.Ambient,
		Diffuse:   m.Diffuse,
		Specular:  m.Specular,
		Shininess: m.Shininess,
	}
}
