package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrNotUploaded is returned by operations that need the mesh on the GPU.
var ErrNotUploaded = errors.New("model: mesh not uploaded")

// Drawable is anything a pass can issue an indexed draw for.
type Drawable interface {
	// Name identifies the drawable in logs.
	Name() string

	// Mesh returns the uploaded mesh handle, or zero before Upload.
	Mesh() gpu.MeshHandle
}

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name           string
	vertices       []gpu.Vertex
	indices        []uint32
	boundingRadius float32
	mesh           gpu.MeshHandle
}

// Model is a CPU-side triangle mesh that can be uploaded to a gpu.Context once and then drawn by handle.
type Model interface {
	Drawable

	// Vertices returns the interleaved vertex data.
	Vertices() []gpu.Vertex

	// Indices returns the triangle list indices.
	Indices() []uint32

	// IndexCount returns len(Indices()).
	IndexCount() int

	// BoundingRadius returns the distance from the origin to the farthest vertex.
	BoundingRadius() float32

	// Upload creates the GPU mesh. Uploading twice is a no-op.
	//
	// Parameters:
	//   - ctx: the context to upload to
	//
	// Returns:
	//   - error: the wrapped CreateMesh error
	Upload(ctx gpu.Context) error

	// Release deletes the GPU mesh, if any.
	Release(ctx gpu.Context)
}

var _ Model = &model{}

// NewModel creates a Model from the supplied options.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the newly created Model instance
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu:   &sync.Mutex{},
		name: "model",
	}
	for _, option := range options {
		option(m)
	}
	m.boundingRadius = boundingRadius(m.vertices)
	return m
}

func boundingRadius(vertices []gpu.Vertex) float32 {
	var r float32
	for _, v := range vertices {
		if l := mgl32.Vec3(v.Position).Len(); l > r {
			r = l
		}
	}
	return r
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Mesh() gpu.MeshHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mesh
}

func (m *model) Vertices() []gpu.Vertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) Upload(ctx gpu.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mesh != 0 {
		return nil
	}
	h, err := ctx.CreateMesh(gpu.MeshDescriptor{Label: m.name, Vertices: m.vertices, Indices: m.indices})
	if err != nil {
		return errors.Wrapf(err, "model: upload %s", m.name)
	}
	m.mesh = h
	return nil
}

func (m *model) Release(ctx gpu.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mesh == 0 {
		return
	}
	ctx.DeleteMesh(m.mesh)
	m.mesh = 0
}
