package mesh

import "math"

// BoxMesh returns the exact 12-triangle mesh of the axis-aligned box
// [min, max], wound outward. Used for rectangular building elements and as
// a test solid with known cross-sections.
func BoxMesh(min, max Vec3) *Mesh {
	verts := []Vec3{
		{min.X, min.Y, min.Z},
		{max.X, min.Y, min.Z},
		{max.X, max.Y, min.Z},
		{min.X, max.Y, min.Z},
		{min.X, min.Y, max.Z},
		{max.X, min.Y, max.Z},
		{max.X, max.Y, max.Z},
		{min.X, max.Y, max.Z},
	}
	tris := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // front
		{2, 3, 7}, {2, 7, 6}, // back
		{3, 0, 4}, {3, 4, 7}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	}
	m, _ := New(verts, tris)
	return m
}

// CylinderMesh returns a closed prism approximating a vertical cylinder:
// center is the solid's midpoint, segments the number of rim subdivisions
// (minimum 3). The cross-section area converges to pi*r^2 as segments grow.
func CylinderMesh(center Vec3, radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	n := segments
	verts := make([]Vec3, 0, 2*n+2)
	zLo := center.Z - height/2
	zHi := center.Z + height/2
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x := center.X + radius*math.Cos(a)
		y := center.Y + radius*math.Sin(a)
		verts = append(verts, Vec3{x, y, zLo})
	}
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x := center.X + radius*math.Cos(a)
		y := center.Y + radius*math.Sin(a)
		verts = append(verts, Vec3{x, y, zHi})
	}
	bottomC := len(verts)
	verts = append(verts, Vec3{center.X, center.Y, zLo})
	topC := len(verts)
	verts = append(verts, Vec3{center.X, center.Y, zHi})

	tris := make([][3]int, 0, 4*n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		tris = append(tris, [3]int{i, j, n + j})
		tris = append(tris, [3]int{i, n + j, n + i})
		tris = append(tris, [3]int{bottomC, j, i})
		tris = append(tris, [3]int{topC, n + i, n + j})
	}
	m, _ := New(verts, tris)
	return m
}
