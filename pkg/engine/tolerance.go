package engine

// Tolerances holds the numeric slack the pipeline works with. The defaults
// suit meshes measured in meters at building scale; callers working in other
// units supply their own values, nothing in the pipeline assumes these
// numbers.
type Tolerances struct {
	// Point is the coincidence tolerance: endpoints closer than this are
	// the same point when chaining contours.
	Point float64

	// Segment is the minimum surviving segment length; shorter ones are
	// dropped as numeric noise.
	Segment float64

	// Area is the minimum polygon area; rings under it are slivers.
	Area float64

	// ChainRelax multiplies Point for the second chain-closing attempt on
	// open contours.
	ChainRelax float64
}

// DefaultTolerances returns the standard building-scale tolerances.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Point:      1e-6,
		Segment:    1e-6,
		Area:       1e-6,
		ChainRelax: 100,
	}
}

// Relaxed returns a copy with Point widened by the relax factor.
func (t Tolerances) Relaxed() Tolerances {
	out := t
	out.Point *= t.ChainRelax
	return out
}
