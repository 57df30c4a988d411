package section

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/geo"
)

// repairRings validates rings into simple polygons with holes attached.
// Slivers and unrepairable rings are dropped and counted; they never fail
// the pass.
func repairRings(rings []geo.Ring, tol engine.Tolerances) ([]geo.Polygon, engine.SectionStats) {
	var stats engine.SectionStats

	valid := make([]geo.Ring, 0, len(rings))
	for _, r := range rings {
		r = r.Clean(tol.Point)
		if len(r) < 3 || math.Abs(r.Area()) < tol.Area {
			stats.Dropped++
			continue
		}
		if r.Simple(tol.Point) {
			valid = append(valid, r)
			continue
		}
		fixed, err := clipSelfUnion(r, tol.Point)
		if err != nil {
			stats.Dropped++
			continue
		}
		stats.Repaired++
		kept := 0
		for _, f := range fixed {
			if math.Abs(f.Area()) < tol.Area || !f.Simple(tol.Point) {
				continue
			}
			valid = append(valid, f)
			kept++
		}
		if kept == 0 {
			stats.Dropped++
		}
	}

	polys := nestRings(valid, tol)

	// Hole-dominated polygons can end up below the area floor.
	out := polys[:0]
	for _, p := range polys {
		if p.Area() < tol.Area {
			stats.Dropped++
			continue
		}
		out = append(out, p)
	}
	return out, stats
}

// nestRings resolves containment among simple rings: a ring contained by an
// odd number of others is a hole of its smallest container, the rest are
// exteriors. Windings are normalized afterwards, so the input winding of
// each ring does not matter.
func nestRings(rings []geo.Ring, tol engine.Tolerances) []geo.Polygon {
	switch len(rings) {
	case 0:
		return nil
	case 1:
		return []geo.Polygon{{Exterior: rings[0]}.Normalized()}
	}

	// Largest first so a ring's container always precedes it.
	order := make([]int, len(rings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(rings[order[a]].Area()) > math.Abs(rings[order[b]].Area())
	})

	tree := rtreego.NewTree(2, 4, 8)
	items := make([]*ringItem, len(rings))
	for _, idx := range order {
		items[idx] = newRingItem(idx, rings[idx], tol.Point)
		tree.Insert(items[idx])
	}

	// container[i] is the smallest ring strictly containing ring i.
	container := make([]int, len(rings))
	depth := make([]int, len(rings))
	for i := range container {
		container[i] = -1
	}
	for _, i := range order {
		best := -1
		bestArea := math.Inf(1)
		for _, hit := range tree.SearchIntersect(items[i].rect) {
			j := hit.(*ringItem).idx
			if j == i {
				continue
			}
			aj := math.Abs(rings[j].Area())
			if aj <= math.Abs(rings[i].Area()) {
				continue
			}
			if !rings[j].ContainsRing(rings[i], tol.Point) {
				continue
			}
			if aj < bestArea {
				bestArea = aj
				best = j
			}
		}
		container[i] = best
	}
	for _, i := range order {
		d := 0
		for j := container[i]; j != -1; j = container[j] {
			d++
		}
		depth[i] = d
	}

	polyOf := make(map[int]*geo.Polygon)
	var exteriors []int
	for _, i := range order {
		if depth[i]%2 == 0 {
			p := &geo.Polygon{Exterior: rings[i]}
			polyOf[i] = p
			exteriors = append(exteriors, i)
		}
	}
	for _, i := range order {
		if depth[i]%2 == 1 {
			if p, ok := polyOf[container[i]]; ok {
				p.Holes = append(p.Holes, rings[i])
			}
		}
	}

	out := make([]geo.Polygon, 0, len(exteriors))
	for _, i := range exteriors {
		out = append(out, polyOf[i].Normalized())
	}
	return out
}

// ringItem adapts a ring's bounding box for the R-tree.
type ringItem struct {
	idx  int
	rect *rtreego.Rect
}

func newRingItem(idx int, r geo.Ring, eps float64) *ringItem {
	return &ringItem{idx: idx, rect: boundsRect(r.Bounds(), eps)}
}

// boundsRect converts a bounding rectangle, grown by eps on every side, into
// the R-tree's representation. Degenerate extents grow to at least eps.
func boundsRect(b geo.Rect, eps float64) *rtreego.Rect {
	if eps <= 0 {
		eps = 1e-12
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{b.Min.X - eps, b.Min.Y - eps},
		[]float64{b.Width() + 2*eps, b.Height() + 2*eps})
	if err != nil {
		rect, _ = rtreego.NewRect(rtreego.Point{0, 0}, []float64{1, 1})
	}
	return rect
}

func (r *ringItem) Bounds() *rtreego.Rect {
	return r.rect
}
