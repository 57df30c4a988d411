package section

import (
	"fmt"

	ctgeom "github.com/ctessum/geom"

	"github.com/datarefinerylab/BatchPlan/pkg/geo"
)

// toClipRing converts a ring for the clipping library.
func toClipRing(r geo.Ring) []ctgeom.Point {
	out := make([]ctgeom.Point, len(r))
	for i, p := range r {
		out[i] = ctgeom.Point{X: p.X, Y: p.Y}
	}
	return out
}

// toClipPolygon converts a polygon with canonical winding so the library
// sees exterior and holes the way the repairer emitted them.
func toClipPolygon(p geo.Polygon) ctgeom.Polygon {
	n := p.Normalized()
	out := make(ctgeom.Polygon, 0, 1+len(n.Holes))
	out = append(out, toClipRing(n.Exterior))
	for _, h := range n.Holes {
		out = append(out, toClipRing(h))
	}
	return out
}

// fromClipPolygon extracts the raw rings of a clip result. Nesting is not
// trusted from the library; callers re-nest with nestRings.
func fromClipPolygon(cp ctgeom.Polygon, eps float64) []geo.Ring {
	var rings []geo.Ring
	for _, cr := range cp {
		r := make(geo.Ring, len(cr))
		for i, p := range cr {
			r[i] = geo.Point{X: p.X, Y: p.Y}
		}
		r = r.Clean(eps)
		if len(r) >= 3 {
			rings = append(rings, r)
		}
	}
	return rings
}

// clipSelfUnion resolves a self-intersecting ring into simple rings by
// unioning the ring with itself. The clipping library can panic on
// degenerate input; that surfaces as an error, not a crash.
func clipSelfUnion(r geo.Ring, eps float64) (rings []geo.Ring, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rings = nil
			err = fmt.Errorf("clip self-union: %v", rec)
		}
	}()
	gp := ctgeom.Polygon{toClipRing(r)}
	u := gp.Union(gp)
	out := fromClipPolygon(u, eps)
	if len(out) == 0 {
		return nil, fmt.Errorf("clip self-union: empty result")
	}
	return out, nil
}

// clipUnion folds the polygons into one union result and returns its raw
// rings. Panics and empty results surface as errors so the merger can fall
// back to the unmerged inputs.
func clipUnion(polys []geo.Polygon, eps float64) (rings []geo.Ring, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rings = nil
			err = fmt.Errorf("clip union: %v", rec)
		}
	}()
	acc := toClipPolygon(polys[0])
	for _, p := range polys[1:] {
		acc = acc.Union(toClipPolygon(p))
	}
	out := fromClipPolygon(acc, eps)
	if len(out) == 0 {
		return nil, fmt.Errorf("clip union: empty result")
	}
	return out, nil
}
