// Package plan selects which elements participate at each floor elevation,
// runs the section engine over them on a bounded worker pool, and aggregates
// frozen per-level results in ascending elevation order.
package plan

import (
	"sort"

	"github.com/datarefinerylab/BatchPlan/pkg/model"
)

// Level is one cutting elevation. Members, when non-nil, restrict the level
// to the listed element IDs and bypass the elevation band test entirely: the
// storey decomposition is trusted as supplied.
type Level struct {
	Name      string
	Elevation float64
	Members   map[string]struct{}
}

// ExplicitLevel builds a band-selected level.
func ExplicitLevel(name string, elevation float64) Level {
	return Level{Name: name, Elevation: elevation}
}

// LevelsFromStoreys derives one level per storey, cutting at the midpoint
// between the storey's base and the next storey's base. The top storey,
// having no upper neighbour, reuses the spacing below it (or a nominal half
// storey when there is only one). Membership carries over from the storey.
func LevelsFromStoreys(storeys []model.Storey) []Level {
	if len(storeys) == 0 {
		return nil
	}
	sorted := make([]model.Storey, len(storeys))
	copy(sorted, storeys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Elevation < sorted[j].Elevation
	})

	levels := make([]Level, len(sorted))
	for i, st := range sorted {
		var cut float64
		switch {
		case i < len(sorted)-1:
			cut = (st.Elevation + sorted[i+1].Elevation) / 2
		case i > 0:
			cut = st.Elevation + (st.Elevation-sorted[i-1].Elevation)/2
		default:
			cut = st.Elevation + 1.5
		}
		lv := Level{Name: st.Name, Elevation: cut}
		if len(st.Members) > 0 {
			lv.Members = make(map[string]struct{}, len(st.Members))
			for _, id := range st.Members {
				lv.Members[id] = struct{}{}
			}
		}
		levels[i] = lv
	}
	return levels
}

// eligible reports whether the element participates at this level: by
// membership when the level carries one, otherwise by intersecting the
// element's vertical extent with the elevation band.
func (l Level) eligible(el model.Element, band float64) bool {
	if l.Members != nil {
		_, ok := l.Members[el.ID]
		return ok
	}
	if el.Mesh == nil || el.Mesh.IsEmpty() {
		return false
	}
	lo, hi := el.Mesh.Bounds().ZRange()
	return lo <= l.Elevation+band && hi >= l.Elevation-band
}
