package geo

import "math"

// Polygon is one exterior ring with zero or more hole rings. A normalized
// polygon winds its exterior counter-clockwise and its holes clockwise.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
}

// Area returns the enclosed area: the exterior's magnitude minus the
// magnitude of every hole. Winding direction does not affect the result.
func (p Polygon) Area() float64 {
	a := math.Abs(p.Exterior.Area())
	for _, h := range p.Holes {
		a -= math.Abs(h.Area())
	}
	return a
}

// Bounds returns the exterior ring's bounding rectangle.
func (p Polygon) Bounds() Rect {
	return p.Exterior.Bounds()
}

// Contains reports whether pt lies inside the polygon and outside its holes.
func (p Polygon) Contains(pt Point) bool {
	if !p.Exterior.Contains(pt) {
		return false
	}
	for _, h := range p.Holes {
		if h.Contains(pt) {
			return false
		}
	}
	return true
}

// Normalized returns p with canonical winding: exterior counter-clockwise,
// holes clockwise. Point order is reversed where needed; nothing else moves.
func (p Polygon) Normalized() Polygon {
	out := Polygon{Exterior: p.Exterior, Holes: p.Holes}
	if out.Exterior.Area() < 0 {
		out.Exterior = out.Exterior.Reversed()
	}
	if len(p.Holes) > 0 {
		out.Holes = make([]Ring, len(p.Holes))
		for i, h := range p.Holes {
			if h.Area() > 0 {
				out.Holes[i] = h.Reversed()
			} else {
				out.Holes[i] = h
			}
		}
	}
	return out
}

// Rings returns the exterior followed by the holes.
func (p Polygon) Rings() []Ring {
	out := make([]Ring, 0, 1+len(p.Holes))
	out = append(out, p.Exterior)
	out = append(out, p.Holes...)
	return out
}
