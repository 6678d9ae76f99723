package material

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-passes/common"
)

// GPUMaterial is the std140 layout of the material coefficients inside the lighting block.
// Size: 16 bytes (one vec4).
type GPUMaterial struct {
	Ambient   float32 // offset  0
	Diffuse   float32 // offset  4
	Specular  float32 // offset  8
	Shininess float32 // offset 12
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalInto writes the material at buf[off:off+16].
//
// Returns:
//   - int: the offset just past the written data
func (g *GPUMaterial) MarshalInto(buf []byte, off int) int {
	return common.PutFloats(buf, off, g.Ambient, g.Diffuse, g.Specular, g.Shininess)
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 16)
	g.MarshalInto(buf, 0)
	return buf
}
