package section

import (
	"math"

	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/geo"
	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// seg2 is a segment projected into the plane's 2D frame.
type seg2 struct {
	a geo.Point
	b geo.Point
}

// assemble chains unordered segments into closed rings. Chains that fail to
// close are rebuilt once with the relaxed tolerance; whatever still cannot
// close is dropped and counted, never escalated.
func assemble(segs []seg3, pl mesh.Plane, tol engine.Tolerances) (rings []geo.Ring, openChains int) {
	flat := make([]seg2, len(segs))
	for i, s := range segs {
		flat[i] = seg2{a: pl.Project(s.a), b: pl.Project(s.b)}
	}

	rings, leftover, _ := chain(flat, tol.Point)
	if len(leftover) > 0 {
		more, _, stillOpen := chain(leftover, tol.Relaxed().Point)
		rings = append(rings, more...)
		openChains = stillOpen
	}
	return rings, openChains
}

// chain performs one greedy pass: walk unvisited segments endpoint to
// endpoint, closing rings where head meets tail within eps. Returns the
// rings, the segments belonging to chains that stayed open, and how many
// such chains there were.
func chain(segs []seg2, eps float64) ([]geo.Ring, []seg2, int) {
	grid := newEndpointGrid(segs, eps)
	visited := make([]bool, len(segs))

	var rings []geo.Ring
	var leftover []seg2
	open := 0

	for start := range segs {
		if visited[start] {
			continue
		}
		visited[start] = true
		chainSegs := []int{start}
		pts := []geo.Point{segs[start].a, segs[start].b}

		// Grow at the tail, then at the head once the tail is stuck.
		for {
			next, nextPt, ok := grid.take(pts[len(pts)-1], visited, eps)
			if !ok {
				break
			}
			visited[next] = true
			chainSegs = append(chainSegs, next)
			pts = append(pts, nextPt)
		}
		for {
			next, nextPt, ok := grid.take(pts[0], visited, eps)
			if !ok {
				break
			}
			visited[next] = true
			chainSegs = append(chainSegs, next)
			pts = append([]geo.Point{nextPt}, pts...)
		}

		if len(pts) >= 4 && pts[0].Near(pts[len(pts)-1], eps) {
			ring := geo.Ring(pts[:len(pts)-1]).Clean(eps)
			if len(ring) >= 3 {
				rings = append(rings, ring)
				continue
			}
		}
		open++
		for _, si := range chainSegs {
			leftover = append(leftover, segs[si])
		}
	}
	return rings, leftover, open
}

// endpointGrid buckets segment endpoints by quantized cell so matching an
// endpoint is a 3x3 neighbourhood scan instead of a linear search.
type endpointGrid struct {
	cell float64
	segs []seg2
	m    map[[2]int64][]gridEntry
}

type gridEntry struct {
	seg int
	end int // 0 = a, 1 = b
}

func newEndpointGrid(segs []seg2, eps float64) *endpointGrid {
	cell := eps
	if cell <= 0 {
		cell = 1e-12
	}
	g := &endpointGrid{cell: cell, segs: segs, m: make(map[[2]int64][]gridEntry, len(segs)*2)}
	for i, s := range segs {
		g.add(s.a, gridEntry{seg: i, end: 0})
		g.add(s.b, gridEntry{seg: i, end: 1})
	}
	return g
}

func (g *endpointGrid) add(p geo.Point, e gridEntry) {
	k := g.key(p)
	g.m[k] = append(g.m[k], e)
}

func (g *endpointGrid) key(p geo.Point) [2]int64 {
	return [2]int64{int64(math.Floor(p.X / g.cell)), int64(math.Floor(p.Y / g.cell))}
}

// take finds an unvisited segment with an endpoint within eps of p, marks
// nothing, and returns the segment index plus its far endpoint.
func (g *endpointGrid) take(p geo.Point, visited []bool, eps float64) (int, geo.Point, bool) {
	base := g.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, e := range g.m[[2]int64{base[0] + dx, base[1] + dy}] {
				if visited[e.seg] {
					continue
				}
				s := g.segPoint(e)
				if s.pt.Near(p, eps) {
					return e.seg, s.far, true
				}
			}
		}
	}
	return 0, geo.Point{}, false
}

// segPoint resolves a grid entry to its own endpoint and the opposite one.
type segEnds struct {
	pt  geo.Point
	far geo.Point
}

func (g *endpointGrid) segPoint(e gridEntry) segEnds {
	s := g.segs[e.seg]
	if e.end == 0 {
		return segEnds{pt: s.a, far: s.b}
	}
	return segEnds{pt: s.b, far: s.a}
}
