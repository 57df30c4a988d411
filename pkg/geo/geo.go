// Package geo provides the 2D geometric primitives used by the section
// pipeline: points, rectangles, rings and polygons, together with the
// predicates (orientation, containment, segment intersection) the contour
// and repair stages are built on. All types are plain values; none of the
// operations mutate their receivers unless documented.
package geo

import "math"

// Point is a position in the cutting plane's 2D frame.
type Point struct {
	X float64
	Y float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Near reports whether p and q coincide within eps.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Cross returns the z component of (a-o) x (b-o). Positive means the turn
// o->a->b is counter-clockwise.
func Cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// Rect is an axis-aligned bounding rectangle.
type Rect struct {
	Min Point
	Max Point
}

// RectOf returns the tight bounds of pts. The zero Rect is returned for an
// empty slice.
func RectOf(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Union returns the smallest Rect covering r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		Min: Point{math.Min(r.Min.X, s.Min.X), math.Min(r.Min.Y, s.Min.Y)},
		Max: Point{math.Max(r.Max.X, s.Max.X), math.Max(r.Max.Y, s.Max.Y)},
	}
}

// Intersects reports whether r and s overlap, with eps slack so rectangles
// that merely touch still count as overlapping.
func (r Rect) Intersects(s Rect, eps float64) bool {
	return r.Min.X <= s.Max.X+eps && s.Min.X <= r.Max.X+eps &&
		r.Min.Y <= s.Max.Y+eps && s.Min.Y <= r.Max.Y+eps
}

// ContainsRect reports whether r strictly contains s with eps margin.
func (r Rect) ContainsRect(s Rect, eps float64) bool {
	return s.Min.X >= r.Min.X-eps && s.Max.X <= r.Max.X+eps &&
		s.Min.Y >= r.Min.Y-eps && s.Max.Y <= r.Max.Y+eps
}

// ContainsPoint reports whether p lies inside or on r.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Expand returns r grown by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Point{r.Min.X - d, r.Min.Y - d},
		Max: Point{r.Max.X + d, r.Max.Y + d},
	}
}

// SegmentsIntersect reports whether segments a1-a2 and b1-b2 cross. Shared
// endpoints within eps do not count as a crossing; collinear segments count
// only if they overlap by more than eps.
func SegmentsIntersect(a1, a2, b1, b2 Point, eps float64) bool {
	// Shared endpoints are the normal case for consecutive ring edges.
	if a1.Near(b1, eps) || a1.Near(b2, eps) || a2.Near(b1, eps) || a2.Near(b2, eps) {
		return false
	}
	d1 := Cross(b1, b2, a1)
	d2 := Cross(b1, b2, a2)
	d3 := Cross(a1, a2, b1)
	d4 := Cross(a1, a2, b2)

	if ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps)) {
		return true
	}

	// Collinear cases: a crossing only when the projections overlap.
	if math.Abs(d1) <= eps && onSegment(b1, b2, a1, eps) {
		return true
	}
	if math.Abs(d2) <= eps && onSegment(b1, b2, a2, eps) {
		return true
	}
	if math.Abs(d3) <= eps && onSegment(a1, a2, b1, eps) {
		return true
	}
	if math.Abs(d4) <= eps && onSegment(a1, a2, b2, eps) {
		return true
	}
	return false
}

// onSegment reports whether p lies within the bounding box of segment a-b,
// assuming p is already known to be collinear with it.
func onSegment(a, b, p Point, eps float64) bool {
	return p.X >= math.Min(a.X, b.X)-eps && p.X <= math.Max(a.X, b.X)+eps &&
		p.Y >= math.Min(a.Y, b.Y)-eps && p.Y <= math.Max(a.Y, b.Y)+eps
}
