package gpu

// TextureDescriptor describes a 2D texture with a single mip level.
type TextureDescriptor struct {
	Label       string
	Width       int
	Height      int
	Format      TextureFormat
	MinFilter   FilterMode
	MagFilter   FilterMode
	AddressMode AddressMode
	BorderColor [4]float32
}

// UniformBlock binds a named std140 block in a program to a slot shared by every program.
type UniformBlock struct {
	Name string
	Slot int
	Size int
}

// TextureBinding binds a named sampler in a program to a texture slot.
type TextureBinding struct {
	Name string
	Slot int
	Kind TextureKind
}

// ProgramDescriptor describes a vertex+fragment program in the Context's ShadingLanguage.
//
// Full-screen programs set UsesVertices to false and generate a covering triangle from the vertex index.
// A program with an empty FragmentEntry writes depth only.
type ProgramDescriptor struct {
	Label          string
	VertexSource   string
	FragmentSource string
	VertexEntry    string
	FragmentEntry  string
	UniformBlocks  []UniformBlock
	Textures       []TextureBinding
	UsesVertices   bool
}

// Vertex is the interleaved layout every mesh uses: position, normal, uv.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// VertexStride is the byte size of Vertex.
const VertexStride = 32

// MeshDescriptor describes an indexed triangle list.
type MeshDescriptor struct {
	Label    string
	Vertices []Vertex
	Indices  []uint32
}
