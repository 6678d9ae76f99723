package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// parallelThreshold is the |dot(forward, up)| above which LookAtSafe swaps the up vector.
const parallelThreshold = 0.999

// PutFloats writes vals as little-endian float32s into buf starting at byte offset off.
//
// Parameters:
//   - buf: destination buffer, must have room for len(vals)*4 bytes after off
//   - off: starting byte offset
//   - vals: values to write
//
// Returns:
//   - int: the offset just past the last written value
func PutFloats(buf []byte, off int, vals ...float32) int {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	return off
}

// PutInt32s writes vals little-endian at buf[off:] and returns the offset past the last value.
func PutInt32s(buf []byte, off int, vals ...int32) int {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
		off += 4
	}
	return off
}

// OrthoFromHeight builds a symmetric orthographic projection whose vertical extent is height
// and whose horizontal extent is height*aspect, centered on the view axis.
//
// Parameters:
//   - height: full vertical size of the view volume
//   - aspect: width / height ratio
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix (OpenGL clip conventions)
func OrthoFromHeight(height, aspect, near, far float32) mgl32.Mat4 {
	halfH := height * 0.5
	halfW := halfH * aspect
	return mgl32.Ortho(-halfW, halfW, -halfH, halfH, near, far)
}

// LookAtSafe is mgl32.LookAtV with a fallback up vector for views that look straight along up.
// A straight-down directional light (the default light direction) would otherwise produce a
// degenerate basis.
//
// Parameters:
//   - eye: camera position
//   - center: point being looked at
//   - up: preferred up vector
//
// Returns:
//   - mgl32.Mat4: the view matrix
func LookAtSafe(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	forward := center.Sub(eye)
	if forward.Len() == 0 {
		return mgl32.Ident4()
	}
	forward = forward.Normalize()
	if abs32(forward.Dot(up.Normalize())) > parallelThreshold {
		up = mgl32.Vec3{0, 0, -1}
		if abs32(forward.Dot(up)) > parallelThreshold {
			up = mgl32.Vec3{1, 0, 0}
		}
	}
	return mgl32.LookAtV(eye, center, up)
}

// NormalizeOr returns v normalized, or fallback when v has zero length.
func NormalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(float64(l)) {
		return fallback
	}
	return v.Mul(1 / l)
}

// Clamp limits v to [low, high].
func Clamp[T ~float32 | ~float64 | ~int | ~int32](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
