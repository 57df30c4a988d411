package mesh

import (
	"fmt"
	"math"

	"github.com/datarefinerylab/BatchPlan/pkg/geo"
)

// Plane is a cutting plane given by an origin and a unit normal. The normal
// is normalized by the constructor; a Plane is immutable.
type Plane struct {
	origin Vec3
	normal Vec3
}

// NewPlane builds a plane through origin with the given normal.
func NewPlane(origin, normal Vec3) (Plane, error) {
	if normal.Length() < 1e-12 {
		return Plane{}, fmt.Errorf("plane: normal %v too short to normalize", normal)
	}
	return Plane{origin: origin, normal: normal.Normalized()}, nil
}

// Horizontal returns the plane z = elevation with an upward normal. This is
// the plane every floor level cuts with.
func Horizontal(elevation float64) Plane {
	return Plane{
		origin: Vec3{Z: elevation},
		normal: Vec3{Z: 1},
	}
}

// Origin returns the plane's origin point.
func (p Plane) Origin() Vec3 { return p.origin }

// Normal returns the unit normal.
func (p Plane) Normal() Vec3 { return p.normal }

// SignedDistance returns (v - origin) . normal: positive on the normal side.
func (p Plane) SignedDistance(v Vec3) float64 {
	return v.Sub(p.origin).Dot(p.normal)
}

// Basis returns an orthonormal in-plane frame (u, w). For near-horizontal
// planes the frame is the world x/y axes, so projected floor plans keep the
// source model's orientation.
func (p Plane) Basis() (u, w Vec3) {
	n := p.normal
	if math.Abs(n.Z) > 0.99999 {
		return Vec3{X: 1}, Vec3{Y: 1}
	}
	// Pick the world axis least aligned with the normal.
	ref := Vec3{X: 1}
	if math.Abs(n.Y) < math.Abs(n.X) {
		ref = Vec3{Y: 1}
	}
	if math.Abs(n.Z) < math.Abs(n.X) && math.Abs(n.Z) < math.Abs(n.Y) {
		ref = Vec3{Z: 1}
	}
	u = n.Cross(ref).Normalized()
	w = n.Cross(u)
	return u, w
}

// Project maps a 3D point assumed to lie on the plane into its 2D frame.
func (p Plane) Project(v Vec3) geo.Point {
	u, w := p.Basis()
	d := v.Sub(p.origin)
	return geo.Point{X: d.Dot(u), Y: d.Dot(w)}
}
