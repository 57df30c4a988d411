package main

import (
	"log"

	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/plan"
)

// consoleObserver prints batch progress. All callbacks arrive from the
// planner's aggregation goroutine, so plain log calls need no locking.
type consoleObserver struct{}

var _ plan.Observer = consoleObserver{}

func (consoleObserver) LevelStarted(lv plan.Level, total, eligible int) {
	log.Printf("level %s (z=%.2f): %d of %d elements eligible", lv.Name, lv.Elevation, eligible, total)
}

func (consoleObserver) ElementDone(lv plan.Level, ref plan.ElementRef, out plan.Outcome) {
	if out.Err == nil || engine.KindOf(out.Err) == engine.KindIntersectionEmpty {
		return
	}
	log.Printf("level %s: element %s (%s): %v", lv.Name, ref.Name, ref.ID, out.Err)
}

func (consoleObserver) LevelDone(res *plan.LevelResult) {
	st := res.Stats
	rate := 0.0
	if st.Eligible > 0 {
		rate = 100 * float64(st.Intersected) / float64(st.Eligible)
	}
	log.Printf("level %s done: %d polygons from %d of %d elements (%.0f%% hit), %d failed, %d ring defects",
		res.Name, st.Polygons, st.Intersected, st.Eligible, rate, st.Failed, st.RingDefects)
	if res.Warning != nil {
		log.Printf("level %s: %v", res.Name, res.Warning)
	}
}
