package model

import "github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMesh is an option builder that sets the vertex and index data of the Model.
//
// Parameters:
//   - vertices: interleaved vertices
//   - indices: triangle list indices into vertices
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option to a model
func WithMesh(vertices []gpu.Vertex, indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.vertices = vertices
		m.indices = indices
	}
}

// WithMeshData is WithMesh for a MeshData value.
func WithMeshData(data MeshData) ModelBuilderOption {
	return WithMesh(data.Vertices, data.Indices)
}
