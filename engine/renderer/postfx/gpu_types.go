package postfx

import (
	"github.com/Carmen-Shannon/oxy-passes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUAberrationSize is the std140 size of the post block.
const GPUAberrationSize = 16

// GPUAberration is the std140 layout of the post-process block.
// Size: 16 bytes (vec3 offsets + int effect flag).
type GPUAberration struct {
	Offsets  mgl32.Vec3 // offset  0
	EffectOn int32      // offset 12
}

// Marshal serializes the block for upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUAberration) Marshal() []byte {
	buf := make([]byte, GPUAberrationSize)
	off := common.PutFloats(buf, 0, g.Offsets[0], g.Offsets[1], g.Offsets[2])
	common.PutInt32s(buf, off, g.EffectOn)
	return buf
}
