package mesh_test

import (
	"math"
	"testing"

	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestNewValidatesIndices(t *testing.T) {
	verts := []mesh.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if _, err := mesh.New(verts, [][3]int{{0, 1, 3}}); err == nil {
		t.Error("out-of-range index accepted")
	}
	if _, err := mesh.New(verts, [][3]int{{0, 1, -1}}); err == nil {
		t.Error("negative index accepted")
	}
	if _, err := mesh.New([]mesh.Vec3{{math.NaN(), 0, 0}}, nil); err == nil {
		t.Error("NaN vertex accepted")
	}
	m, err := mesh.New(verts, [][3]int{{0, 1, 2}})
	if err != nil {
		t.Fatalf("valid mesh rejected: %v", err)
	}
	if m.TriangleCount() != 1 || m.VertexCount() != 3 {
		t.Errorf("counts = %d tris, %d verts", m.TriangleCount(), m.VertexCount())
	}
}

func TestBoundsExact(t *testing.T) {
	m := mesh.BoxMesh(mesh.Vec3{-1, -2, -3}, mesh.Vec3{4, 5, 6})
	b := m.Bounds()
	if b.Min != (mesh.Vec3{-1, -2, -3}) || b.Max != (mesh.Vec3{4, 5, 6}) {
		t.Errorf("bounds = %+v", b)
	}
	lo, hi := b.ZRange()
	if lo != -3 || hi != 6 {
		t.Errorf("ZRange = %v, %v", lo, hi)
	}
}

func TestFromArrays(t *testing.T) {
	m, err := mesh.FromArrays(
		[]float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		[]uint32{0, 1, 2},
	)
	if err != nil {
		t.Fatalf("FromArrays: %v", err)
	}
	a, b, c := m.Triangle(0)
	if a != (mesh.Vec3{0, 0, 0}) || b != (mesh.Vec3{1, 0, 0}) || c != (mesh.Vec3{0, 1, 0}) {
		t.Errorf("triangle = %v %v %v", a, b, c)
	}
	if _, err := mesh.FromArrays([]float32{0, 0}, nil); err == nil {
		t.Error("ragged vertex array accepted")
	}
}

func TestBoxMeshShape(t *testing.T) {
	m := mesh.BoxMesh(mesh.Vec3{0, 0, 0}, mesh.Vec3{2, 2, 2})
	if m.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", m.TriangleCount())
	}
	if m.VertexCount() != 8 {
		t.Errorf("VertexCount = %d, want 8", m.VertexCount())
	}
	if m.IsEmpty() {
		t.Error("box mesh reported empty")
	}
}

func TestCylinderMeshShape(t *testing.T) {
	const n = 16
	m := mesh.CylinderMesh(mesh.Vec3{0, 0, 1.5}, 1, 3, n)
	if m.TriangleCount() != 4*n {
		t.Errorf("TriangleCount = %d, want %d", m.TriangleCount(), 4*n)
	}
	b := m.Bounds()
	if abs(b.Min.Z-0) > 1e-12 || abs(b.Max.Z-3) > 1e-12 {
		t.Errorf("z bounds = [%v, %v], want [0, 3]", b.Min.Z, b.Max.Z)
	}
	if abs(b.Max.X-1) > 1e-12 {
		t.Errorf("radius bound = %v, want 1", b.Max.X)
	}
}

func TestTranslated(t *testing.T) {
	m := mesh.BoxMesh(mesh.Vec3{0, 0, 0}, mesh.Vec3{1, 1, 1})
	moved := m.Translated(mesh.Vec3{10, 0, -5})
	b := moved.Bounds()
	if b.Min != (mesh.Vec3{10, 0, -5}) || b.Max != (mesh.Vec3{11, 1, -4}) {
		t.Errorf("translated bounds = %+v", b)
	}
	if m.Bounds().Min != (mesh.Vec3{0, 0, 0}) {
		t.Error("Translated mutated the receiver")
	}
}

func TestPlane(t *testing.T) {
	if _, err := mesh.NewPlane(mesh.Vec3{}, mesh.Vec3{}); err == nil {
		t.Error("zero normal accepted")
	}
	p, err := mesh.NewPlane(mesh.Vec3{0, 0, 1}, mesh.Vec3{0, 0, 10})
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	if abs(p.Normal().Length()-1) > 1e-12 {
		t.Errorf("normal not unit: %v", p.Normal())
	}
	if d := p.SignedDistance(mesh.Vec3{5, 5, 3}); abs(d-2) > 1e-12 {
		t.Errorf("SignedDistance = %v, want 2", d)
	}
	if d := p.SignedDistance(mesh.Vec3{5, 5, -1}); abs(d+2) > 1e-12 {
		t.Errorf("SignedDistance = %v, want -2", d)
	}
}

func TestHorizontalProjectionKeepsWorldXY(t *testing.T) {
	p := mesh.Horizontal(2.5)
	pt := p.Project(mesh.Vec3{3, -4, 2.5})
	if abs(pt.X-3) > 1e-12 || abs(pt.Y+4) > 1e-12 {
		t.Errorf("Project = %+v, want (3,-4)", pt)
	}
}

func TestTiltedProjectionIsIsometric(t *testing.T) {
	p, err := mesh.NewPlane(mesh.Vec3{1, 1, 1}, mesh.Vec3{1, 1, 1})
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	u, w := p.Basis()
	if abs(u.Dot(w)) > 1e-12 {
		t.Errorf("basis not orthogonal: u.w = %v", u.Dot(w))
	}
	if abs(u.Dot(p.Normal())) > 1e-12 || abs(w.Dot(p.Normal())) > 1e-12 {
		t.Error("basis not in plane")
	}
	// Distances between in-plane points survive projection.
	a := mesh.Vec3{1, 1, 1}.Add(u.Scale(2)).Add(w.Scale(1))
	b := mesh.Vec3{1, 1, 1}.Add(u.Scale(-1)).Add(w.Scale(3))
	d3 := a.Sub(b).Length()
	d2 := p.Project(a).Dist(p.Project(b))
	if abs(d3-d2) > 1e-9 {
		t.Errorf("projection distorted distance: %v vs %v", d3, d2)
	}
}
