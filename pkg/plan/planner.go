package plan

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/geo"
	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
	"github.com/datarefinerylab/BatchPlan/pkg/model"
)

// MergeFunc unions polygons across elements. The planner uses it only for
// the optional footprint outline, keeping the engine dependency at its three
// core methods.
type MergeFunc func([]geo.Polygon) []geo.Polygon

// Options configure a Planner. The zero value selects all defaults.
type Options struct {
	// Band is the half-height in meters of the eligibility window around a
	// level's elevation. Zero means DefaultBand.
	Band float64
	// MaxElements caps how many eligible elements a level processes; zero
	// means no cap. Truncation keeps input order.
	MaxElements int
	// Workers bounds the intersection pool. Zero or negative picks the
	// machine's core count, capped at maxWorkers.
	Workers int
	// Outline, when set, appends the union of each level's polygons as
	// footprint entries after the element entries.
	Outline MergeFunc
}

const (
	DefaultBand = 0.1
	maxWorkers  = 16
)

func DefaultOptions() Options {
	return Options{Band: DefaultBand}
}

func (o Options) band() float64 {
	if o.Band <= 0 {
		return DefaultBand
	}
	return o.Band
}

func (o Options) workers() int {
	w := o.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > maxWorkers {
		w = maxWorkers
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Planner cuts elements at level elevations and aggregates the results.
type Planner struct {
	eng   engine.Engine
	opts  Options
	obs   Observer
	runID string
}

func New(eng engine.Engine, opts Options, obs Observer) *Planner {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Planner{eng: eng, opts: opts, obs: obs, runID: uuid.NewString()}
}

// RunID identifies this planner's results across levels and logs.
func (p *Planner) RunID() string {
	return p.runID
}

type task struct {
	level     int
	slot      int
	elevation float64
	elem      model.Element
}

type taskResult struct {
	level   int
	slot    int
	ref     ElementRef
	out     Outcome
	entries []Entry
}

// levelAcc accumulates one level until all its tasks return. Only the
// aggregation loop touches it.
type levelAcc struct {
	res       *LevelResult
	level     Level
	slots     [][]Entry
	remaining int
}

// Run cuts every level out of the element set and hands frozen results to
// sink in ascending elevation order, regardless of completion order.
// Eligibility and aggregation are serialized; intersections fan out over the
// worker pool. Cancellation is honored between elements, never inside one.
func (p *Planner) Run(ctx context.Context, elements []model.Element, levels []Level, sink func(*LevelResult) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(levels) == 0 {
		return nil
	}
	if sink == nil {
		sink = func(*LevelResult) error { return nil }
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ordered := make([]Level, len(levels))
	copy(ordered, levels)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Elevation < ordered[j].Elevation
	})

	// Selection is cheap and pure: resolve every level's eligible set up
	// front so the observer sees the full batch shape immediately.
	accs := make([]*levelAcc, len(ordered))
	var tasks []task
	for li, lv := range ordered {
		acc := &levelAcc{
			level: lv,
			res: &LevelResult{
				RunID:     p.runID,
				Name:      lv.Name,
				Elevation: lv.Elevation,
				State:     StateSelecting,
				Stats:     LevelStats{Total: len(elements)},
			},
		}
		for _, el := range elements {
			if !lv.eligible(el, p.opts.band()) {
				continue
			}
			acc.res.Stats.Eligible++
			if p.opts.MaxElements > 0 && acc.remaining == p.opts.MaxElements {
				acc.res.Stats.Skipped++
				continue
			}
			tasks = append(tasks, task{level: li, slot: acc.remaining, elevation: lv.Elevation, elem: el})
			acc.remaining++
		}
		acc.slots = make([][]Entry, acc.remaining)
		accs[li] = acc
		p.obs.LevelStarted(lv, len(elements), acc.res.Stats.Eligible)
	}

	taskCh := make(chan task)
	resultCh := make(chan taskResult, p.opts.workers())

	go func() {
		defer close(taskCh)
		for _, t := range tasks {
			select {
			case taskCh <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < p.opts.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				if ctx.Err() != nil {
					return
				}
				r := p.cut(t)
				select {
				case resultCh <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Single-writer aggregation in this goroutine: results land in their
	// level slot, finished levels flush in ascending order.
	flushed := 0
	var sinkErr error
	flush := func() {
		for flushed < len(accs) && accs[flushed].res.State == StateComplete {
			if sinkErr == nil {
				if err := sink(accs[flushed].res); err != nil {
					sinkErr = err
					cancel()
				}
			}
			flushed++
		}
	}

	for _, acc := range accs {
		if acc.remaining == 0 {
			p.finalize(acc)
		} else {
			acc.res.State = StateIntersecting
		}
	}
	flush()

	for r := range resultCh {
		acc := accs[r.level]
		p.obs.ElementDone(acc.level, r.ref, r.out)

		st := &acc.res.Stats
		switch {
		case r.out.Err == nil:
			st.Intersected++
		case engine.KindOf(r.out.Err) == engine.KindIntersectionEmpty:
			// An empty cut is a healthy outcome, not a failure.
		default:
			st.Failed++
		}
		st.RingDefects += r.out.Defects
		acc.slots[r.slot] = r.entries
		acc.remaining--
		if acc.remaining == 0 {
			p.finalize(acc)
			flush()
		}
	}

	if sinkErr != nil {
		return sinkErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// finalize freezes one level: entries flattened in element order, optional
// outline appended, empty completion surfaced as a typed warning.
func (p *Planner) finalize(acc *levelAcc) {
	acc.res.State = StateAggregating

	var entries []Entry
	for _, slot := range acc.slots {
		entries = append(entries, slot...)
	}
	acc.res.Stats.Polygons = len(entries)

	if p.opts.Outline != nil && len(entries) > 0 {
		polys := make([]geo.Polygon, len(entries))
		for i, e := range entries {
			polys[i] = e.Polygon
		}
		for _, merged := range p.opts.Outline(polys) {
			entries = append(entries, Entry{
				TypeTag: model.TagOutline,
				Name:    acc.level.Name + " outline",
				Polygon: merged,
			})
		}
	}
	acc.res.Entries = entries

	if len(entries) == 0 {
		acc.res.Warning = engine.Errorf(engine.KindLevelEmpty, "plan",
			"level %q at z=%g produced no polygons", acc.level.Name, acc.level.Elevation)
	}
	acc.res.State = StateComplete
	p.obs.LevelDone(acc.res)
}

// cut sections one element. Panics are contained here so a bad mesh can
// never take down the batch.
func (p *Planner) cut(t task) (tr taskResult) {
	tr = taskResult{
		level: t.level,
		slot:  t.slot,
		ref:   ElementRef{ID: t.elem.ID, TypeTag: t.elem.TypeTag, Name: t.elem.Name},
	}
	defer func() {
		if r := recover(); r != nil {
			tr.entries = nil
			tr.out = Outcome{Err: engine.Errorf(engine.KindElementFailure, "plan",
				"element %s panicked: %v", t.elem.ID, r)}
		}
	}()

	res, err := p.eng.IntersectWithPlane(t.elem.Mesh, mesh.Horizontal(t.elevation))
	if err != nil {
		tr.out = Outcome{Err: err}
		return tr
	}
	for _, poly := range res.Polygons {
		tr.entries = append(tr.entries, Entry{TypeTag: t.elem.TypeTag, Name: t.elem.Name, Polygon: poly})
	}
	tr.out = Outcome{Polygons: len(tr.entries), Defects: res.Stats.Defects()}
	if len(tr.entries) == 0 {
		tr.out.Err = engine.Errorf(engine.KindIntersectionEmpty, "plan",
			"element %s: empty cut", t.elem.ID)
	}
	return tr
}
