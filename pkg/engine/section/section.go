package section

import (
	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/geo"
	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// Compile-time interface check.
var _ engine.Engine = (*Engine)(nil)

// Engine runs the section pipeline: slice, assemble, repair, merge.
type Engine struct {
	tol engine.Tolerances
}

// New returns an Engine using the given tolerances.
func New(tol engine.Tolerances) *Engine {
	return &Engine{tol: tol}
}

// Tolerances returns the engine's configured tolerances.
func (e *Engine) Tolerances() engine.Tolerances {
	return e.tol
}

// CreatePolygon validates points into a simple polygon. Self-intersecting
// input is repaired; when the repair splits the input, the largest piece is
// returned.
func (e *Engine) CreatePolygon(points []geo.Point) (geo.Polygon, error) {
	r := geo.Ring(points).Clean(e.tol.Point)
	if len(r) < 3 {
		return geo.Polygon{}, engine.Errorf(engine.KindRingUnrepairable,
			"section.CreatePolygon", "need at least 3 distinct points, got %d", len(r))
	}
	polys, _ := repairRings([]geo.Ring{r}, e.tol)
	if len(polys) == 0 {
		return geo.Polygon{}, engine.Errorf(engine.KindRingUnrepairable,
			"section.CreatePolygon", "ring of %d points has no valid area", len(r))
	}
	best := polys[0]
	for _, p := range polys[1:] {
		if p.Area() > best.Area() {
			best = p
		}
	}
	return best, nil
}

// IntersectWithPlane slices m with pl. A plane missing the mesh bounds is
// an ordinary empty result; a mesh without triangles is MeshDegenerate.
func (e *Engine) IntersectWithPlane(m *mesh.Mesh, pl mesh.Plane) (engine.SectionResult, error) {
	if m == nil || m.IsEmpty() {
		return engine.SectionResult{}, engine.Errorf(engine.KindMeshDegenerate,
			"section.IntersectWithPlane", "mesh has no triangles")
	}
	if missesBounds(m.Bounds(), pl, e.tol.Point) {
		return engine.SectionResult{}, nil
	}

	segs, stats := slicePlane(m, pl, e.tol)
	rings, open := assemble(segs, pl, e.tol)
	stats.Rings = len(rings)
	stats.OpenChains = open

	polys, rstats := repairRings(rings, e.tol)
	stats.Add(rstats)

	polys = mergePolygons(polys, e.tol)
	return engine.SectionResult{Polygons: polys, Stats: stats}, nil
}

// PolygonArea returns the enclosed area with holes subtracted.
func (e *Engine) PolygonArea(p geo.Polygon) float64 {
	return p.Area()
}

// Merge unions an arbitrary polygon set, with the same fallback contract as
// the in-pipeline merge. Used for optional cross-element level outlines.
func (e *Engine) Merge(polys []geo.Polygon) []geo.Polygon {
	return mergePolygons(polys, e.tol)
}

// missesBounds reports whether every corner of b sits strictly on one side
// of the plane.
func missesBounds(b mesh.Box, pl mesh.Plane, eps float64) bool {
	var pos, neg int
	for _, x := range []float64{b.Min.X, b.Max.X} {
		for _, y := range []float64{b.Min.Y, b.Max.Y} {
			for _, z := range []float64{b.Min.Z, b.Max.Z} {
				d := pl.SignedDistance(mesh.Vec3{X: x, Y: y, Z: z})
				switch {
				case d > eps:
					pos++
				case d < -eps:
					neg++
				default:
					return false
				}
			}
		}
	}
	return pos == 0 || neg == 0
}
