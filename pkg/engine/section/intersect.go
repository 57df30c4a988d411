// Package section implements engine.Engine with an in-process pipeline:
// per-triangle plane intersection, contour assembly, polygon repair with
// hole nesting, and union-based merging. Construct one with New; the
// zero value is not usable.
package section

import (
	"math"

	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// seg3 is one triangle's plane crossing, still in 3D.
type seg3 struct {
	a mesh.Vec3
	b mesh.Vec3
}

// slicePlane intersects every triangle with the plane and returns the
// surviving segments. Coplanar triangles contribute nothing; an edge lying
// exactly on the plane is emitted once even though the neighbouring triangle
// on the far side produces the same edge.
func slicePlane(m *mesh.Mesh, pl mesh.Plane, tol engine.Tolerances) ([]seg3, engine.SectionStats) {
	var stats engine.SectionStats
	stats.Triangles = m.TriangleCount()

	eps := tol.Point
	segs := make([]seg3, 0, 32)
	seen := make(map[[6]int64]struct{})

	emit := func(a, b mesh.Vec3) {
		if a.Sub(b).Length() <= tol.Segment {
			return
		}
		key := segKey(a, b, eps)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		segs = append(segs, seg3{a, b})
	}

	for i := 0; i < m.TriangleCount(); i++ {
		va, vb, vc := m.Triangle(i)
		da := pl.SignedDistance(va)
		db := pl.SignedDistance(vb)
		dc := pl.SignedDistance(vc)

		verts := [3]mesh.Vec3{va, vb, vc}
		dist := [3]float64{da, db, dc}

		var pos, neg, zero int
		for _, d := range dist {
			switch {
			case d > eps:
				pos++
			case d < -eps:
				neg++
			default:
				zero++
			}
		}

		if pos == 0 && neg == 0 {
			continue // coplanar triangle, excluded entirely
		}
		if pos == 0 || neg == 0 {
			// Tangent contact. Only a full edge on the plane yields a
			// segment; a single touching vertex does not.
			if zero == 2 {
				var onPlane []mesh.Vec3
				for k, d := range dist {
					if math.Abs(d) <= eps {
						onPlane = append(onPlane, verts[k])
					}
				}
				emit(onPlane[0], onPlane[1])
			}
			continue
		}

		// A genuine crossing: gather the two points where the triangle
		// boundary meets the plane.
		stats.Crossings++
		var pts []mesh.Vec3
		for k := 0; k < 3; k++ {
			if math.Abs(dist[k]) <= eps {
				pts = appendUnique(pts, verts[k], eps)
			}
			j := (k + 1) % 3
			if (dist[k] > eps && dist[j] < -eps) || (dist[k] < -eps && dist[j] > eps) {
				t := dist[k] / (dist[k] - dist[j])
				if t < 0 {
					t = 0
				} else if t > 1 {
					t = 1
				}
				p := verts[k].Add(verts[j].Sub(verts[k]).Scale(t))
				pts = appendUnique(pts, p, eps)
			}
		}
		if len(pts) >= 2 {
			emit(pts[0], pts[1])
		}
	}

	stats.Segments = len(segs)
	return segs, stats
}

func appendUnique(pts []mesh.Vec3, p mesh.Vec3, eps float64) []mesh.Vec3 {
	for _, q := range pts {
		if p.Sub(q).Length() <= eps {
			return pts
		}
	}
	return append(pts, p)
}

// segKey is an order-independent quantized key for segment dedup.
func segKey(a, b mesh.Vec3, eps float64) [6]int64 {
	if eps <= 0 {
		eps = 1e-12
	}
	qa := [3]int64{quantize(a.X, eps), quantize(a.Y, eps), quantize(a.Z, eps)}
	qb := [3]int64{quantize(b.X, eps), quantize(b.Y, eps), quantize(b.Z, eps)}
	if less(qb, qa) {
		qa, qb = qb, qa
	}
	return [6]int64{qa[0], qa[1], qa[2], qb[0], qb[1], qb[2]}
}

func quantize(v, eps float64) int64 {
	return int64(math.Round(v / eps))
}

func less(a, b [3]int64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
