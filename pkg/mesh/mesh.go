package mesh

import (
	"fmt"
	"math"
)

// Mesh is a triangulated solid: vertices plus index triples, with the
// bounding box computed once at construction. A Mesh is read-only after New
// returns; the section pipeline relies on that for lock-free sharing across
// workers.
type Mesh struct {
	verts  []Vec3
	tris   [][3]int
	bounds Box
}

// New builds a Mesh from vertices and triangle index triples. Indices must
// reference valid vertices and coordinates must be finite. A mesh with zero
// triangles is valid (IsEmpty reports true); slicing one yields nothing.
func New(vertices []Vec3, triangles [][3]int) (*Mesh, error) {
	for i, v := range vertices {
		if !finite(v) {
			return nil, fmt.Errorf("mesh: vertex %d is not finite: %v", i, v)
		}
	}
	for i, t := range triangles {
		for _, idx := range t {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("mesh: triangle %d references vertex %d of %d", i, idx, len(vertices))
			}
		}
	}
	m := &Mesh{verts: vertices, tris: triangles}
	if len(vertices) > 0 {
		b := Box{Min: vertices[0], Max: vertices[0]}
		for _, v := range vertices[1:] {
			b = b.Extend(v)
		}
		m.bounds = b
	}
	return m, nil
}

// FromArrays builds a Mesh from the flat layout mesh-producing libraries
// emit: three floats per vertex, three indices per triangle.
func FromArrays(vertices []float32, indices []uint32) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh: vertex array length %d is not a multiple of 3", len(vertices))
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: index array length %d is not a multiple of 3", len(indices))
	}
	verts := make([]Vec3, len(vertices)/3)
	for i := range verts {
		verts[i] = Vec3{
			X: float64(vertices[i*3]),
			Y: float64(vertices[i*3+1]),
			Z: float64(vertices[i*3+2]),
		}
	}
	tris := make([][3]int, len(indices)/3)
	for i := range tris {
		tris[i] = [3]int{int(indices[i*3]), int(indices[i*3+1]), int(indices[i*3+2])}
	}
	return New(verts, tris)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.verts)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.tris)
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.tris) == 0
}

// Bounds returns the cached axis-aligned bounding box.
func (m *Mesh) Bounds() Box {
	return m.bounds
}

// Triangle returns the corner positions of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c Vec3) {
	t := m.tris[i]
	return m.verts[t[0]], m.verts[t[1]], m.verts[t[2]]
}

// Translated returns a copy of m moved by d.
func (m *Mesh) Translated(d Vec3) *Mesh {
	verts := make([]Vec3, len(m.verts))
	for i, v := range m.verts {
		verts[i] = v.Add(d)
	}
	out, _ := New(verts, m.tris)
	return out
}

func finite(v Vec3) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
