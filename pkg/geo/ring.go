package geo

import "math"

// Ring is a closed loop of points. The closing edge from the last point back
// to the first is implicit; constructors and cleaners strip an explicit
// duplicate of the first point.
type Ring []Point

// Area returns the signed area (shoelace). Counter-clockwise rings have
// positive area, clockwise rings negative.
func (r Ring) Area() float64 {
	if len(r) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range r {
		q := r[(i+1)%len(r)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Bounds returns the tight bounding rectangle.
func (r Ring) Bounds() Rect {
	return RectOf(r)
}

// Centroid returns the area-weighted centroid. Rings with vanishing area
// fall back to the vertex mean.
func (r Ring) Centroid() Point {
	a := r.Area()
	if math.Abs(a) < 1e-12 {
		var c Point
		for _, p := range r {
			c = c.Add(p)
		}
		if len(r) > 0 {
			c = c.Scale(1 / float64(len(r)))
		}
		return c
	}
	var c Point
	for i, p := range r {
		q := r[(i+1)%len(r)]
		w := p.X*q.Y - q.X*p.Y
		c.X += (p.X + q.X) * w
		c.Y += (p.Y + q.Y) * w
	}
	return c.Scale(1 / (6 * a))
}

// Reversed returns a copy of r with opposite winding.
func (r Ring) Reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// Clean returns r with consecutive near-duplicate points removed and any
// explicit closing point stripped. The receiver is not modified.
func (r Ring) Clean(eps float64) Ring {
	if len(r) == 0 {
		return nil
	}
	out := make(Ring, 0, len(r))
	for _, p := range r {
		if len(out) > 0 && p.Near(out[len(out)-1], eps) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1].Near(out[0], eps) {
		out = out[:len(out)-1]
	}
	return out
}

// Contains reports whether p lies inside r by even-odd ray casting. Points
// on the boundary are not reliably classified.
func (r Ring) Contains(p Point) bool {
	inside := false
	n := len(r)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// ContainsRing reports whether inner nests strictly inside r: its bounds sit
// within r's bounds and a representative interior point of inner lies in r.
func (r Ring) ContainsRing(inner Ring, eps float64) bool {
	if len(inner) == 0 {
		return false
	}
	if !r.Bounds().ContainsRect(inner.Bounds(), eps) {
		return false
	}
	if r.Contains(inner.Centroid()) {
		return true
	}
	return r.Contains(inner[0])
}

// Simple reports whether r has no self-intersections. Adjacent edges sharing
// a vertex do not count. Quadratic in edge count with a bounding-box
// prefilter; section contours are short enough for that.
func (r Ring) Simple(eps float64) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	type edge struct {
		a, b Point
		box  Rect
	}
	edges := make([]edge, n)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		edges[i] = edge{a, b, RectOf([]Point{a, b})}
	}
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // closing edge is adjacent to the first
			}
			if !edges[i].box.Intersects(edges[j].box, eps) {
				continue
			}
			if SegmentsIntersect(edges[i].a, edges[i].b, edges[j].a, edges[j].b, eps) {
				return false
			}
		}
	}
	return true
}
