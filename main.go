package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/datarefinerylab/BatchPlan/pkg/format"
	"github.com/datarefinerylab/BatchPlan/pkg/plan"
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: batchplan [flags] input.stl [input.3mf ...]\n\n")
	fmt.Fprintf(out, "Cuts horizontal sections through 3D building models and writes one\n")
	fmt.Fprintf(out, "floor plan per level. Pass the literal name \"synthetic\" as an input\n")
	fmt.Fprintf(out, "to run against the built-in demo building.\n\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	var (
		output      = flag.String("output", "plans", "directory for generated plans, one subdirectory per input")
		formatters  = flag.String("formatters", "wkt,svg", "comma separated outputs: wkt, svg, dxf, png")
		levelsCSV   = flag.String("levels", "", "CSV file of name,elevation cut heights shared by all inputs")
		useStoreys  = flag.Bool("use-storeys", false, "require storey midpoints from each model")
		maxElements = flag.Int("max-elements", 0, "cap eligible elements per level, 0 for no cap")
		band        = flag.Float64("band", plan.DefaultBand, "eligibility half-window around each level in meters")
		tolerance   = flag.Float64("tolerance", 0, "geometric tolerance override in meters, 0 for the default")
		workers     = flag.Int("workers", 0, "intersection workers, 0 for the core count")
		filterSrc   = flag.String("filter", "", `lisp element filter, e.g. (or (== (tag) "Wall") (== (tag) "Column"))`)
		style       = flag.String("style", format.PaletteProfessional, "drawing style: professional, minimal, colorful, technical")
		size        = flag.String("size", "", "canvas size for svg and png as WIDTHxHEIGHT pixels")
		outline     = flag.Bool("outline", false, "append the merged footprint outline to every level")
	)
	flag.Usage = usage
	flag.Parse()

	inputs := expandInputs(flag.Args())
	if len(inputs) == 0 {
		usage()
		os.Exit(2)
	}
	if *levelsCSV != "" && *useStoreys {
		fmt.Fprintln(os.Stderr, "batchplan: -levels and -use-storeys are mutually exclusive")
		os.Exit(2)
	}
	width, height, err := parseSize(*size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "batchplan: %v\n", err)
		os.Exit(2)
	}

	app, err := NewApp(options{
		inputs:      inputs,
		outputDir:   *output,
		formatters:  strings.Split(*formatters, ","),
		levelsCSV:   *levelsCSV,
		useStoreys:  *useStoreys,
		maxElements: *maxElements,
		band:        *band,
		tolerance:   *tolerance,
		workers:     *workers,
		filterSrc:   *filterSrc,
		style:       *style,
		width:       width,
		height:      height,
		outline:     *outline,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "batchplan: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := app.Run(ctx)
	if err != nil {
		log.Printf("aborted: %v", err)
		os.Exit(1)
	}
	if failed > 0 {
		log.Printf("%d of %d inputs failed", failed, len(inputs))
		os.Exit(1)
	}
}

// expandInputs globs each positional argument for shells that do not. An
// argument matching nothing stays as a literal path, so its load failure is
// reported against the name the user typed.
func expandInputs(args []string) []string {
	var out []string
	for _, a := range args {
		matches, err := filepath.Glob(a)
		if err != nil || len(matches) == 0 {
			out = append(out, a)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

// parseSize reads "WIDTHxHEIGHT". Empty input keeps the render defaults.
func parseSize(s string) (w, h int, err error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad -size %q, want WIDTHxHEIGHT", s)
	}
	w, err = strconv.Atoi(parts[0])
	if err == nil {
		h, err = strconv.Atoi(parts[1])
	}
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("bad -size %q, want WIDTHxHEIGHT", s)
	}
	return w, h, nil
}
