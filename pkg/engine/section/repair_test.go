package section

import (
	"testing"

	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/geo"
)

func squareRing(x, y, side float64) geo.Ring {
	return geo.Ring{
		{x, y},
		{x + side, y},
		{x + side, y + side},
		{x, y + side},
	}
}

func TestRepairKeepsSimpleRing(t *testing.T) {
	tol := engine.DefaultTolerances()
	polys, stats := repairRings([]geo.Ring{squareRing(0, 0, 2)}, tol)
	if len(polys) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polys))
	}
	if abs(polys[0].Area()-4.0) > 1e-9 {
		t.Errorf("area = %v, want 4", polys[0].Area())
	}
	if stats.Dropped != 0 || stats.Repaired != 0 {
		t.Errorf("stats = %+v, clean input should pass untouched", stats)
	}
}

func TestRepairDropsSliver(t *testing.T) {
	sliver := geo.Ring{{0, 0}, {1, 0}, {1, 1e-8}}
	tol := engine.DefaultTolerances()

	polys, stats := repairRings([]geo.Ring{sliver}, tol)
	if len(polys) != 0 {
		t.Fatalf("sliver survived: %d polygons", len(polys))
	}
	if stats.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", stats.Dropped)
	}
}

func TestRepairDropsZeroAreaBowtie(t *testing.T) {
	// Equal lobes cancel to zero signed area, so this dies as a sliver
	// before any repair attempt.
	bowtie := geo.Ring{{0, 0}, {4, 0}, {0, 3}, {4, 3}}
	polys, stats := repairRings([]geo.Ring{bowtie}, engine.DefaultTolerances())
	if len(polys) != 0 {
		t.Fatalf("got %d polygons, want 0", len(polys))
	}
	if stats.Dropped != 1 || stats.Repaired != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRepairResolvesSelfIntersection(t *testing.T) {
	// Unequal lobes: net area is nonzero so the ring reaches the repair
	// path instead of the sliver filter.
	bowtie := geo.Ring{{0, 0}, {4, 0}, {0, 3}, {2, 3}}
	polys, stats := repairRings([]geo.Ring{bowtie}, engine.DefaultTolerances())
	if len(polys) == 0 {
		t.Fatal("repair produced nothing")
	}
	if stats.Repaired != 1 {
		t.Errorf("repaired = %d, want 1", stats.Repaired)
	}
	for i, p := range polys {
		if !p.Exterior.Simple(1e-9) {
			t.Errorf("polygon %d still self-intersects", i)
		}
		if p.Area() <= 0 {
			t.Errorf("polygon %d has area %v", i, p.Area())
		}
	}
}

func TestNestRingsAssignsHoles(t *testing.T) {
	rings := []geo.Ring{
		squareRing(2, 2, 2),    // island inside the hole
		squareRing(-5, -5, 20), // outer boundary
		squareRing(0, 0, 6),    // hole in the outer boundary
	}
	tol := engine.DefaultTolerances()

	polys := nestRings(rings, tol)
	if len(polys) != 2 {
		t.Fatalf("got %d polygons, want 2", len(polys))
	}
	// Descending area: the outer-with-hole polygon comes first.
	outer, island := polys[0], polys[1]
	if len(outer.Holes) != 1 {
		t.Fatalf("outer polygon has %d holes, want 1", len(outer.Holes))
	}
	if abs(outer.Area()-(400-36)) > 1e-9 {
		t.Errorf("outer area = %v, want 364", outer.Area())
	}
	if len(island.Holes) != 0 {
		t.Errorf("island has %d holes, want 0", len(island.Holes))
	}
	if abs(island.Area()-4) > 1e-9 {
		t.Errorf("island area = %v, want 4", island.Area())
	}
}

func TestNestRingsNormalizesWinding(t *testing.T) {
	outer := squareRing(0, 0, 4).Reversed() // clockwise in
	hole := squareRing(1, 1, 2)             // counter-clockwise in

	polys := nestRings([]geo.Ring{outer, hole}, engine.DefaultTolerances())
	if len(polys) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polys))
	}
	if polys[0].Exterior.Area() <= 0 {
		t.Error("exterior is not counter-clockwise")
	}
	if len(polys[0].Holes) != 1 {
		t.Fatalf("got %d holes, want 1", len(polys[0].Holes))
	}
	if polys[0].Holes[0].Area() >= 0 {
		t.Error("hole is not clockwise")
	}
}

func TestNestRingsDeepAlternation(t *testing.T) {
	// Four concentric squares alternate exterior, hole, exterior, hole.
	rings := []geo.Ring{
		squareRing(0, 0, 16),
		squareRing(2, 2, 12),
		squareRing(4, 4, 8),
		squareRing(6, 6, 4),
	}
	polys := nestRings(rings, engine.DefaultTolerances())
	if len(polys) != 2 {
		t.Fatalf("got %d polygons, want 2", len(polys))
	}
	if len(polys[0].Holes) != 1 || len(polys[1].Holes) != 1 {
		t.Errorf("hole counts = %d, %d; want 1, 1", len(polys[0].Holes), len(polys[1].Holes))
	}
	want0 := 16.0*16 - 12*12
	want1 := 8.0*8 - 4*4
	if abs(polys[0].Area()-want0) > 1e-9 {
		t.Errorf("outer shell area = %v, want %v", polys[0].Area(), want0)
	}
	if abs(polys[1].Area()-want1) > 1e-9 {
		t.Errorf("inner shell area = %v, want %v", polys[1].Area(), want1)
	}
}
