package geo_test

import (
	"math"
	"testing"

	"github.com/datarefinerylab/BatchPlan/pkg/geo"
)

const tol = 1e-9

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func square(cx, cy, half float64) geo.Ring {
	return geo.Ring{
		{X: cx - half, Y: cy - half},
		{X: cx + half, Y: cy - half},
		{X: cx + half, Y: cy + half},
		{X: cx - half, Y: cy + half},
	}
}

func TestRingArea(t *testing.T) {
	tests := []struct {
		name string
		ring geo.Ring
		want float64
	}{
		{"unit square ccw", square(0.5, 0.5, 0.5), 1.0},
		{"2x2 square ccw", square(1, 1, 1), 4.0},
		{"triangle", geo.Ring{{0, 0}, {4, 0}, {0, 3}}, 6.0},
		{"degenerate two points", geo.Ring{{0, 0}, {1, 1}}, 0.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ring.Area(); abs(got-tc.want) > tol {
				t.Errorf("Area() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRingAreaWindingIndependence(t *testing.T) {
	rings := []geo.Ring{
		square(0, 0, 1),
		{{0, 0}, {5, 0}, {5, 2}, {3, 4}, {0, 2}},
	}
	for _, r := range rings {
		fwd := r.Area()
		rev := r.Reversed().Area()
		if abs(fwd+rev) > tol {
			t.Errorf("reversed area %v is not the negation of %v", rev, fwd)
		}
		if abs(abs(fwd)-abs(rev)) > tol {
			t.Errorf("winding changed area magnitude: %v vs %v", abs(fwd), abs(rev))
		}
	}
}

func TestRingClean(t *testing.T) {
	r := geo.Ring{
		{0, 0}, {0, 0}, {1, 0}, {1, 1e-12}, {1, 1}, {0, 1}, {0, 0},
	}
	got := r.Clean(1e-9)
	if len(got) != 4 {
		t.Fatalf("Clean() kept %d points, want 4: %v", len(got), got)
	}
	if abs(got.Area()-1.0) > tol {
		t.Errorf("cleaned ring area = %v, want 1.0", got.Area())
	}
}

func TestRingContains(t *testing.T) {
	r := square(0, 0, 1)
	tests := []struct {
		name string
		p    geo.Point
		want bool
	}{
		{"center", geo.Point{0, 0}, true},
		{"inside corner region", geo.Point{0.9, -0.9}, true},
		{"outside right", geo.Point{1.5, 0}, false},
		{"outside above", geo.Point{0, 2}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.p); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestRingContainsRing(t *testing.T) {
	outer := square(0, 0, 2)
	inner := square(0, 0, 1)
	if !outer.ContainsRing(inner, tol) {
		t.Error("outer should contain inner")
	}
	if inner.ContainsRing(outer, tol) {
		t.Error("inner must not contain outer")
	}
	disjoint := square(10, 10, 1)
	if outer.ContainsRing(disjoint, tol) {
		t.Error("disjoint ring reported as contained")
	}
}

func TestRingSimple(t *testing.T) {
	if !square(0, 0, 1).Simple(tol) {
		t.Error("square reported self-intersecting")
	}
	bowtie := geo.Ring{{0, 0}, {2, 2}, {2, 0}, {0, 2}}
	if bowtie.Simple(tol) {
		t.Error("bowtie reported simple")
	}
	concave := geo.Ring{{0, 0}, {4, 0}, {4, 4}, {2, 1}, {0, 4}}
	if !concave.Simple(tol) {
		t.Error("concave ring reported self-intersecting")
	}
}

func TestRingCentroid(t *testing.T) {
	c := square(3, -2, 1.5).Centroid()
	if abs(c.X-3) > 1e-9 || abs(c.Y+2) > 1e-9 {
		t.Errorf("centroid = %v, want (3,-2)", c)
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 geo.Point
		want           bool
	}{
		{"crossing", geo.Point{0, 0}, geo.Point{2, 2}, geo.Point{0, 2}, geo.Point{2, 0}, true},
		{"parallel", geo.Point{0, 0}, geo.Point{2, 0}, geo.Point{0, 1}, geo.Point{2, 1}, false},
		{"shared endpoint", geo.Point{0, 0}, geo.Point{1, 1}, geo.Point{1, 1}, geo.Point{2, 0}, false},
		{"collinear overlap", geo.Point{0, 0}, geo.Point{2, 0}, geo.Point{1, 0}, geo.Point{3, 0}, true},
		{"collinear apart", geo.Point{0, 0}, geo.Point{1, 0}, geo.Point{2, 0}, geo.Point{3, 0}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := geo.SegmentsIntersect(tc.a1, tc.a2, tc.b1, tc.b2, tol)
			if got != tc.want {
				t.Errorf("SegmentsIntersect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRectOps(t *testing.T) {
	a := geo.RectOf([]geo.Point{{0, 0}, {2, 3}})
	b := geo.RectOf([]geo.Point{{1, 1}, {4, 4}})
	if !a.Intersects(b, 0) {
		t.Error("overlapping rects reported disjoint")
	}
	far := geo.RectOf([]geo.Point{{10, 10}, {11, 11}})
	if a.Intersects(far, 0) {
		t.Error("distant rects reported overlapping")
	}
	u := a.Union(b)
	if u.Min != (geo.Point{0, 0}) || u.Max != (geo.Point{4, 4}) {
		t.Errorf("Union = %+v", u)
	}
	if !u.ContainsRect(a, 0) || !u.ContainsRect(b, 0) {
		t.Error("union does not contain its inputs")
	}
}

func TestPolygonAreaWithHoles(t *testing.T) {
	p := geo.Polygon{
		Exterior: square(0, 0, 2),
		Holes:    []geo.Ring{square(0, 0, 1)},
	}
	want := 16.0 - 4.0
	if got := p.Area(); abs(got-want) > tol {
		t.Errorf("Area() = %v, want %v", got, want)
	}
	// Hole winding must not change the magnitude.
	p.Holes[0] = p.Holes[0].Reversed()
	if got := p.Area(); abs(got-want) > tol {
		t.Errorf("Area() after hole reversal = %v, want %v", got, want)
	}
}

func TestPolygonNormalized(t *testing.T) {
	p := geo.Polygon{
		Exterior: square(0, 0, 2).Reversed(), // clockwise
		Holes:    []geo.Ring{square(0, 0, 1)},
	}
	n := p.Normalized()
	if n.Exterior.Area() <= 0 {
		t.Error("normalized exterior is not counter-clockwise")
	}
	if n.Holes[0].Area() >= 0 {
		t.Error("normalized hole is not clockwise")
	}
	if abs(n.Area()-p.Area()) > tol {
		t.Errorf("normalization changed area: %v vs %v", n.Area(), p.Area())
	}
}

func TestPolygonContains(t *testing.T) {
	p := geo.Polygon{
		Exterior: square(0, 0, 2),
		Holes:    []geo.Ring{square(0, 0, 0.5)},
	}
	if !p.Contains(geo.Point{1.2, 1.2}) {
		t.Error("point in solid region reported outside")
	}
	if p.Contains(geo.Point{0, 0}) {
		t.Error("point in hole reported inside")
	}
	if p.Contains(geo.Point{3, 3}) {
		t.Error("point beyond exterior reported inside")
	}
	if math.IsNaN(p.Area()) {
		t.Error("area is NaN")
	}
}
