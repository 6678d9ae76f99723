package model

import (
	"math"

	"github.com/Carmen-Shannon/oxy-passes/engine/renderer/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// degenerateArea is the doubled triangle area below which a generated triangle is dropped.
const degenerateArea = 1e-9

// MeshData is an unuploaded triangle mesh.
type MeshData struct {
	Vertices []gpu.Vertex
	Indices  []uint32
}

// addTriangle appends triangle (a, b, c), flipping it when its face normal points toward center so
// that every convex primitive winds counter-clockwise seen from outside. Degenerate triangles at the
// poles of a sphere are skipped.
func (d *MeshData) addTriangle(a, b, c uint32, center mgl32.Vec3) {
	pa := mgl32.Vec3(d.Vertices[a].Position)
	pb := mgl32.Vec3(d.Vertices[b].Position)
	pc := mgl32.Vec3(d.Vertices[c].Position)

	n := pb.Sub(pa).Cross(pc.Sub(pa))
	if n.Len() < degenerateArea {
		return
	}
	centroid := pa.Add(pb).Add(pc).Mul(1.0 / 3.0)
	if n.Dot(centroid.Sub(center)) < 0 {
		b, c = c, b
	}
	d.Indices = append(d.Indices, a, b, c)
}

// Append merges other into d after transforming its positions by m and its normals by m's rotation.
//
// Parameters:
//   - other: the mesh to merge
//   - m: a translate/rotate/uniform-scale transform
func (d *MeshData) Append(other MeshData, m mgl32.Mat4) {
	base := uint32(len(d.Vertices))
	normalM := m.Mat3()
	for _, v := range other.Vertices {
		p := m.Mul4x1(mgl32.Vec3(v.Position).Vec4(1)).Vec3()
		n := normalM.Mul3x1(mgl32.Vec3(v.Normal)).Normalize()
		d.Vertices = append(d.Vertices, gpu.Vertex{Position: p, Normal: n, UV: v.UV})
	}
	for _, i := range other.Indices {
		d.Indices = append(d.Indices, base+i)
	}
}

// Plane builds a width x depth grid in the XZ plane facing +Y, centered on the origin.
//
// Parameters:
//   - width: extent along X
//   - depth: extent along Z
//   - subdivisions: quads per side, at least 1
//
// Returns:
//   - MeshData: (subdivisions+1)^2 vertices and 6*subdivisions^2 indices
func Plane(width, depth float32, subdivisions int) MeshData {
	if subdivisions < 1 {
		subdivisions = 1
	}
	columns := subdivisions + 1
	var d MeshData
	for row := 0; row <= subdivisions; row++ {
		for col := 0; col <= subdivisions; col++ {
			u := float32(col) / float32(subdivisions)
			v := float32(row) / float32(subdivisions)
			d.Vertices = append(d.Vertices, gpu.Vertex{
				Position: [3]float32{-width/2 + width*u, 0, depth/2 - depth*v},
				Normal:   [3]float32{0, 1, 0},
				UV:       [2]float32{u, v},
			})
		}
	}
	for row := 0; row < subdivisions; row++ {
		for col := 0; col < subdivisions; col++ {
			start := uint32(row*columns + col)
			next := start + uint32(columns)
			d.Indices = append(d.Indices,
				start, start+1, next+1,
				next+1, next, start,
			)
		}
	}
	return d
}

// Sphere builds a UV sphere centered on the origin.
//
// Parameters:
//   - radius: sphere radius
//   - segments: divisions around and from pole to pole, at least 3
//
// Returns:
//   - MeshData: the sphere mesh with outward normals
func Sphere(radius float32, segments int) MeshData {
	if segments < 3 {
		segments = 3
	}
	var d MeshData
	for row := 0; row <= segments; row++ {
		phi := math.Pi * float64(row) / float64(segments)
		for col := 0; col <= segments; col++ {
			theta := 2 * math.Pi * float64(col) / float64(segments)
			n := mgl32.Vec3{
				float32(math.Cos(theta) * math.Sin(phi)),
				float32(math.Cos(phi)),
				float32(math.Sin(theta) * math.Sin(phi)),
			}
			d.Vertices = append(d.Vertices, gpu.Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       [2]float32{float32(col) / float32(segments), float32(row) / float32(segments)},
			})
		}
	}
	columns := uint32(segments + 1)
	for row := uint32(0); row < uint32(segments); row++ {
		for col := uint32(0); col < uint32(segments); col++ {
			a := row*columns + col
			b := a + 1
			c := a + columns
			e := c + 1
			d.addTriangle(a, c, e, mgl32.Vec3{})
			d.addTriangle(a, e, b, mgl32.Vec3{})
		}
	}
	return d
}

// Cube builds an axis-aligned cube with per-face normals, centered on the origin.
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - MeshData: 24 vertices and 36 indices
func Cube(size float32) MeshData {
	h := size / 2
	faces := []struct {
		normal, right, up mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	var d MeshData
	for _, f := range faces {
		base := uint32(len(d.Vertices))
		for _, c := range corners {
			p := f.normal.Add(f.right.Mul(c[0])).Add(f.up.Mul(c[1])).Mul(h)
			d.Vertices = append(d.Vertices, gpu.Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       [2]float32{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
		d.addTriangle(base, base+1, base+2, mgl32.Vec3{})
		d.addTriangle(base+2, base+3, base, mgl32.Vec3{})
	}
	return d
}

// Monkey builds the stand-in for the demo's head model: a unit head sphere with two ears and a muzzle.
func Monkey() MeshData {
	var d MeshData
	d.Append(Sphere(1, 24), mgl32.Ident4())
	ear := Sphere(0.35, 12)
	d.Append(ear, mgl32.Translate3D(-1.0, 0.35, 0))
	d.Append(ear, mgl32.Translate3D(1.0, 0.35, 0))
	d.Append(Sphere(0.45, 12), mgl32.Translate3D(0, -0.3, 0.75))
	return d
}
