package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/datarefinerylab/BatchPlan/pkg/engine"
	"github.com/datarefinerylab/BatchPlan/pkg/engine/section"
	"github.com/datarefinerylab/BatchPlan/pkg/filter"
	"github.com/datarefinerylab/BatchPlan/pkg/format"
	"github.com/datarefinerylab/BatchPlan/pkg/model"
	"github.com/datarefinerylab/BatchPlan/pkg/plan"
)

// options collects everything the command line configures.
type options struct {
	inputs      []string
	outputDir   string
	formatters  []string
	levelsCSV   string
	useStoreys  bool
	maxElements int
	band        float64
	tolerance   float64
	workers     int
	filterSrc   string
	style       string
	width       int
	height      int
	outline     bool
}

// App runs one batch: it wires sources, the element filter, the planner and
// the output formatters together and walks every input through them.
type App struct {
	opts   options
	eng    *section.Engine
	filter *filter.Filter
	levels []plan.Level
}

// NewApp validates the options into a ready-to-run App. The filter and the
// level list are compiled once here and shared across inputs.
func NewApp(opts options) (*App, error) {
	tol := engine.DefaultTolerances()
	if opts.tolerance > 0 {
		tol.Point = opts.tolerance
		tol.Segment = opts.tolerance
	}
	a := &App{opts: opts, eng: section.New(tol)}

	if opts.filterSrc != "" {
		f, err := filter.New(opts.filterSrc)
		if err != nil {
			return nil, err
		}
		a.filter = f
	}
	if opts.levelsCSV != "" {
		levels, err := loadLevels(opts.levelsCSV)
		if err != nil {
			return nil, err
		}
		a.levels = levels
	}
	if _, err := buildFormatters(opts, ""); err != nil {
		return nil, err
	}
	return a, nil
}

// Run processes every input in order. A failed input is logged and skipped
// so the rest of the batch still completes; the count of failures comes
// back to the caller. Cancellation aborts the batch between inputs.
func (a *App) Run(ctx context.Context) (failed int, err error) {
	for _, in := range a.opts.inputs {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if err := a.runInput(ctx, in); err != nil {
			if ctx.Err() != nil {
				return failed, ctx.Err()
			}
			log.Printf("input %s failed: %v", in, err)
			failed++
		}
	}
	log.Printf("batch done: %d of %d inputs succeeded", len(a.opts.inputs)-failed, len(a.opts.inputs))
	return failed, nil
}

func (a *App) runInput(ctx context.Context, path string) error {
	src, err := sourceFor(path)
	if err != nil {
		return err
	}

	// Step 1: load the model. Load failures are fatal for this input only.
	input, err := src.Load(ctx)
	if err != nil {
		return engine.Errorf(engine.KindInputLoad, "app.load", "%s: %w", path, err)
	}

	// Step 2: narrow the element set with the lisp filter, if given.
	elements := input.Elements
	if a.filter != nil {
		elements, err = a.filter.Keep(elements)
		if err != nil {
			return err
		}
		log.Printf("%s: filter kept %d of %d elements", input.Name, len(elements), len(input.Elements))
	}

	// Step 3: decide the cut elevations for this input.
	levels, err := a.levelsFor(input, path)
	if err != nil {
		return err
	}

	// Step 4: run the planner and fan each finished level out to the
	// formatters.
	dir := filepath.Join(a.opts.outputDir, inputStem(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	fmts, err := buildFormatters(a.opts, dir)
	if err != nil {
		return err
	}

	planOpts := plan.Options{
		Band:        a.opts.band,
		MaxElements: a.opts.maxElements,
		Workers:     a.opts.workers,
	}
	if a.opts.outline {
		planOpts.Outline = a.eng.Merge
	}
	p := plan.New(a.eng, planOpts, consoleObserver{})
	log.Printf("run %s: %s: %d elements, %d levels", p.RunID(), input.Name, len(elements), len(levels))

	return p.Run(ctx, elements, levels, func(res *plan.LevelResult) error {
		for _, f := range fmts {
			if err := f.Format(res); err != nil {
				return err
			}
		}
		return nil
	})
}

// levelsFor resolves the cut elevations: an explicit -levels file wins,
// then a CSV sitting beside the input and named after it, then the model's
// own storeys. An input with none of these cannot be planned.
func (a *App) levelsFor(input *model.Input, path string) ([]plan.Level, error) {
	if a.levels != nil {
		return a.levels, nil
	}
	if !a.opts.useStoreys {
		if sib := siblingLevels(path); sib != "" {
			levels, err := loadLevels(sib)
			if err != nil {
				return nil, err
			}
			log.Printf("%s: levels from %s", input.Name, sib)
			return levels, nil
		}
	}
	if len(input.Storeys) > 0 {
		return plan.LevelsFromStoreys(input.Storeys), nil
	}
	if a.opts.useStoreys {
		return nil, fmt.Errorf("%s: -use-storeys set but the model has no storeys", input.Name)
	}
	return nil, fmt.Errorf("%s: no storeys in the model and no level file; pass -levels with cut heights", input.Name)
}

// siblingLevels returns the conventional per-input level file when it
// exists: <stem>.csv in the input's directory.
func siblingLevels(path string) string {
	if filepath.Ext(path) == "" {
		return ""
	}
	p := filepath.Join(filepath.Dir(path), inputStem(path)+".csv")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// sourceFor picks a loader from the input's extension. The literal name
// "synthetic" yields the built-in demo building.
func sourceFor(path string) (model.Source, error) {
	if path == "synthetic" {
		return model.NewSyntheticSource(), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return model.NewStlSource(path), nil
	case ".3mf":
		return model.NewThreemfSource(path), nil
	}
	return nil, fmt.Errorf("unsupported input %s (want .stl, .3mf or the synthetic demo)", path)
}

func inputStem(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" {
		base = "input"
	}
	return base
}

// loadLevels reads a name,elevation CSV. A first line whose elevation does
// not parse is taken as a header and skipped.
func loadLevels(path string) ([]plan.Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("levels %s: %w", path, err)
	}

	var levels []plan.Level
	for i, rec := range recs {
		name := strings.TrimSpace(rec[0])
		elev, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("levels %s line %d: %w", path, i+1, err)
		}
		levels = append(levels, plan.ExplicitLevel(name, elev))
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("levels %s: no cut heights", path)
	}
	return levels, nil
}

// buildFormatters turns the -formatters list into writers rooted at dir.
func buildFormatters(opts options, dir string) ([]format.Formatter, error) {
	ropts := format.DefaultRenderOptions()
	if opts.style != "" {
		ropts.Palette = opts.style
	}
	if opts.width > 0 {
		ropts.Width = opts.width
	}
	if opts.height > 0 {
		ropts.Height = opts.height
	}
	if _, err := format.PaletteByName(ropts.Palette); err != nil {
		return nil, err
	}

	var out []format.Formatter
	for _, name := range opts.formatters {
		switch strings.TrimSpace(name) {
		case "wkt":
			out = append(out, format.NewWkt(dir))
		case "svg":
			out = append(out, format.NewSvg(dir, ropts))
		case "dxf":
			out = append(out, format.NewDxf(dir))
		case "png":
			out = append(out, format.NewPng(dir, ropts))
		case "":
		default:
			return nil, fmt.Errorf("unknown formatter %q (have wkt, svg, dxf, png)", name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no formatters selected")
	}
	return out, nil
}
