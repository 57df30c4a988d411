package plan

import (
	"github.com/datarefinerylab/BatchPlan/pkg/geo"
)

// State tracks a level through its lifecycle. Levels only move forward.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateIntersecting
	StateAggregating
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateIntersecting:
		return "intersecting"
	case StateAggregating:
		return "aggregating"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Entry is one polygon of a finished level, labelled with the element it
// came from.
type Entry struct {
	TypeTag string
	Name    string
	Polygon geo.Polygon
}

// LevelStats counts what happened while building one level.
type LevelStats struct {
	Total       int // elements offered
	Eligible    int // passed band or membership selection
	Skipped     int // eligible but cut by the element limit
	Intersected int // produced at least one polygon
	Failed      int // errored or panicked, isolated per element
	Polygons    int // entries emitted
	RingDefects int // open chains and dropped rings across all elements
}

// LevelResult is the frozen outcome of one level. Nothing mutates it after
// the aggregator hands it over.
type LevelResult struct {
	RunID     string
	Name      string
	Elevation float64
	State     State
	Entries   []Entry
	Stats     LevelStats

	// Warning is set for non-error conditions worth surfacing, such as a
	// level that completed with zero polygons.
	Warning error
}

// Empty reports whether the level completed without a single polygon.
func (r *LevelResult) Empty() bool {
	return len(r.Entries) == 0
}

// ElementRef identifies an element in observer events without carrying its
// geometry along.
type ElementRef struct {
	ID      string
	TypeTag string
	Name    string
}

// Outcome is the per-element result delivered to the observer.
type Outcome struct {
	Polygons int
	Defects  int
	Err      error
}

// Observer receives progress events. All callbacks fire from the single
// aggregation goroutine, so implementations need no locking of their own.
type Observer interface {
	LevelStarted(level Level, total, eligible int)
	ElementDone(level Level, elem ElementRef, out Outcome)
	LevelDone(res *LevelResult)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) LevelStarted(Level, int, int)           {}
func (NopObserver) ElementDone(Level, ElementRef, Outcome) {}
func (NopObserver) LevelDone(*LevelResult)                 {}

var _ Observer = NopObserver{}
