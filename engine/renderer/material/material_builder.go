package material

// MaterialBuilderOption is a functional option for configuring a Material.
type MaterialBuilderOption func(*Material)

// WithAmbient sets the ambient coefficient.
//
// Parameters:
//   - ambient: ambient light contribution in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the ambient option
func WithAmbient(ambient float32) MaterialBuilderOption {
	return func(m *Material) {
		m.Ambient = ambient
	}
}

// WithDiffuse sets the diffuse coefficient.
//
// Parameters:
//   - diffuse: Lambert term weight in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse option
func WithDiffuse(diffuse float32) MaterialBuilderOption {
	return func(m *Material) {
		m.Diffuse = diffuse
	}
}

// WithSpecular sets the specular coefficient.
//
// Parameters:
//   - specular: highlight weight in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular option
func WithSpecular(specular float32) MaterialBuilderOption {
	return func(m *Material) {
		m.Specular = specular
	}
}

// WithShininess sets the specular exponent.
//
// Parameters:
//   - shininess: exponent in [2, 1024]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shininess option
func WithShininess(shininess float32) MaterialBuilderOption {
	return func(m *Material) {
		m.Shininess = shininess
	}
}
