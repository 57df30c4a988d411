// Package engine defines the geometry capability abstraction the planner is
// built against. An Engine turns meshes and planes into validated 2D
// polygons; the planner never touches triangle geometry itself.
// Implementations live in subpackages and are injected at construction time;
// there is no process-wide default engine.
package engine

import (
	"github.com/datarefinerylab/BatchPlan/pkg/geo"
	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// Engine is the capability set the section pipeline exposes.
type Engine interface {
	// CreatePolygon validates points into a simple polygon: at least three
	// distinct points, self-intersections repaired, area above the
	// configured tolerance.
	CreatePolygon(points []geo.Point) (geo.Polygon, error)

	// IntersectWithPlane slices a mesh and returns the resulting polygons
	// with per-stage statistics. An empty result with a nil error is the
	// normal outcome for a plane that misses the mesh.
	IntersectWithPlane(m *mesh.Mesh, pl mesh.Plane) (SectionResult, error)

	// PolygonArea returns the enclosed area, holes subtracted.
	PolygonArea(p geo.Polygon) float64
}

// SectionResult is the outcome of one mesh/plane intersection: the polygons
// plus the counters the aggregator folds into level diagnostics.
type SectionResult struct {
	Polygons []geo.Polygon
	Stats    SectionStats
}

// SectionStats counts what happened inside one intersection pass.
type SectionStats struct {
	Triangles  int // triangles visited
	Crossings  int // triangles that straddled the plane
	Segments   int // segments kept after dedup and length filtering
	Rings      int // closed rings assembled
	OpenChains int // chains that never closed, counted after the relaxed retry
	Dropped    int // rings discarded as slivers or unrepairable
	Repaired   int // rings that needed the self-intersection clean
}

// Defects returns the number of ring-level problems in the pass.
func (s SectionStats) Defects() int {
	return s.OpenChains + s.Dropped
}

// Add folds other into s.
func (s *SectionStats) Add(other SectionStats) {
	s.Triangles += other.Triangles
	s.Crossings += other.Crossings
	s.Segments += other.Segments
	s.Rings += other.Rings
	s.OpenChains += other.OpenChains
	s.Dropped += other.Dropped
	s.Repaired += other.Repaired
}
