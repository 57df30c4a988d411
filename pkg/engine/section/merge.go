package section

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/geo"
)

// mergePolygons unions overlapping polygons into a minimal covering set.
// Polygons whose bounds never touch are grouped apart and kept as they are;
// each overlapping group is unioned. A failed or drifting union falls back
// to that group's original polygons unmerged.
func mergePolygons(polys []geo.Polygon, tol engine.Tolerances) []geo.Polygon {
	if len(polys) <= 1 {
		return polys
	}

	groups := overlapGroups(polys, tol)
	out := make([]geo.Polygon, 0, len(polys))
	for _, group := range groups {
		if len(group) == 1 {
			out = append(out, polys[group[0]])
			continue
		}
		members := make([]geo.Polygon, len(group))
		for i, idx := range group {
			members[i] = polys[idx]
		}
		out = append(out, unionGroup(members, tol)...)
	}
	return out
}

// unionGroup unions one connected set of polygons, re-nests the resulting
// rings, and checks the area stayed plausible. Any failure returns the
// members untouched.
func unionGroup(members []geo.Polygon, tol engine.Tolerances) []geo.Polygon {
	rings, err := clipUnion(members, tol.Point)
	if err != nil {
		return members
	}
	merged := nestRings(rings, tol)
	if len(merged) == 0 {
		return members
	}

	var sum, largest, got float64
	for _, p := range members {
		a := p.Area()
		sum += a
		if a > largest {
			largest = a
		}
	}
	for _, p := range merged {
		got += p.Area()
	}
	slack := tol.Area + 1e-9*math.Abs(sum)
	if got > sum+slack || got < largest-slack {
		return members
	}
	return merged
}

// overlapGroups partitions polygon indices into connected components of
// bounding-box overlap, via an R-tree and union-find.
func overlapGroups(polys []geo.Polygon, tol engine.Tolerances) [][]int {
	tree := rtreego.NewTree(2, 4, 8)
	items := make([]*polyItem, len(polys))
	for i, p := range polys {
		items[i] = newPolyItem(i, p, tol.Point)
		tree.Insert(items[i])
	}

	parent := make([]int, len(polys))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := range polys {
		for _, hit := range tree.SearchIntersect(items[i].rect) {
			j := hit.(*polyItem).idx
			if j > i {
				union(i, j)
			}
		}
	}

	byRoot := make(map[int][]int)
	for i := range polys {
		r := find(i)
		byRoot[r] = append(byRoot[r], i)
	}
	// Emit groups in first-member order so output order is stable.
	var groups [][]int
	seen := make(map[int]bool)
	for i := range polys {
		r := find(i)
		if !seen[r] {
			seen[r] = true
			groups = append(groups, byRoot[r])
		}
	}
	return groups
}

type polyItem struct {
	idx  int
	rect *rtreego.Rect
}

// newPolyItem indexes the polygon's bounds grown by eps so boxes that merely
// touch still land in one group.
func newPolyItem(idx int, p geo.Polygon, eps float64) *polyItem {
	return &polyItem{idx: idx, rect: boundsRect(p.Bounds(), eps)}
}

func (p *polyItem) Bounds() *rtreego.Rect {
	return p.rect
}
