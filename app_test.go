package main

import (
	"context"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// writeCubeSTL writes a binary STL of an axis-aligned cube so the end to end
// tests run against a real file on disk, the same path the CLI takes.
func writeCubeSTL(t *testing.T, path string, min, max mesh.Vec3) {
	t.Helper()
	m := mesh.BoxMesh(min, max)

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var header [80]byte
	copy(header[:], "binary cube fixture")
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		rec := struct {
			Normal   [3]float32
			Vertices [3][3]float32
			Attr     uint16
		}{}
		for j, v := range []mesh.Vec3{a, b, c} {
			rec.Vertices[j] = [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
		}
		if err := binary.Write(f, binary.LittleEndian, rec); err != nil {
			t.Fatal(err)
		}
	}
}

func writeLevelsCSV(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// readPlanCSV parses one generated WKT file into records minus the header.
func readPlanCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) == 0 {
		t.Fatalf("%s: empty file", path)
	}
	return recs[1:]
}

// TestE2EStlToPlan exercises the full pipeline: STL file → elements → planner
// → WKT output. This is the same path the CLI takes, without the flag layer.
func TestE2EStlToPlan(t *testing.T) {
	dir := t.TempDir()
	stl := filepath.Join(dir, "wall_panel.stl")
	writeCubeSTL(t, stl, mesh.Vec3{}, mesh.Vec3{X: 2, Y: 2, Z: 2})
	levels := filepath.Join(dir, "levels.csv")
	writeLevelsCSV(t, levels, "name,elevation\nGround,1.0\nSky,10.0\n")

	app, err := NewApp(options{
		inputs:     []string{stl},
		outputDir:  filepath.Join(dir, "plans"),
		formatters: []string{"wkt"},
		levelsCSV:  levels,
	})
	if err != nil {
		t.Fatal(err)
	}
	failed, err := app.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if failed != 0 {
		t.Fatalf("%d inputs failed", failed)
	}

	ground := readPlanCSV(t, filepath.Join(dir, "plans", "wall_panel", "Ground_floor_plan.csv"))
	if len(ground) != 1 {
		t.Fatalf("ground level: got %d polygons, want 1", len(ground))
	}
	if ground[0][0] != "Wall" {
		t.Errorf("tag = %q, want Wall from the file name", ground[0][0])
	}
	area, err := strconv.ParseFloat(ground[0][3], 64)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(area-4.0) > 0.1 {
		t.Errorf("cut area = %g, want 4.0", area)
	}

	sky := readPlanCSV(t, filepath.Join(dir, "plans", "wall_panel", "Sky_floor_plan.csv"))
	if len(sky) != 0 {
		t.Errorf("sky level: got %d polygons, want none", len(sky))
	}
}

// TestE2EBatchIsolation ensures one broken input does not stop the rest of
// the batch.
func TestE2EBatchIsolation(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "slab.stl")
	writeCubeSTL(t, good, mesh.Vec3{}, mesh.Vec3{X: 4, Y: 4, Z: 0.3})
	levels := filepath.Join(dir, "levels.csv")
	writeLevelsCSV(t, levels, "Deck,0.15\n")

	app, err := NewApp(options{
		inputs:     []string{filepath.Join(dir, "missing.stl"), good},
		outputDir:  filepath.Join(dir, "plans"),
		formatters: []string{"wkt"},
		levelsCSV:  levels,
	})
	if err != nil {
		t.Fatal(err)
	}
	failed, err := app.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}

	recs := readPlanCSV(t, filepath.Join(dir, "plans", "slab", "Deck_floor_plan.csv"))
	if len(recs) != 1 {
		t.Fatalf("slab level: got %d polygons, want 1", len(recs))
	}
}

// TestE2EFilterExcludesInput ensures a lisp filter that matches nothing
// still yields a complete, empty plan.
func TestE2EFilterExcludesInput(t *testing.T) {
	dir := t.TempDir()
	stl := filepath.Join(dir, "wall.stl")
	writeCubeSTL(t, stl, mesh.Vec3{}, mesh.Vec3{X: 1, Y: 1, Z: 3})
	levels := filepath.Join(dir, "levels.csv")
	writeLevelsCSV(t, levels, "L1,1.5\n")

	app, err := NewApp(options{
		inputs:     []string{stl},
		outputDir:  filepath.Join(dir, "plans"),
		formatters: []string{"wkt"},
		levelsCSV:  levels,
		filterSrc:  `(== (tag) "Column")`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if failed, err := app.Run(context.Background()); err != nil || failed != 0 {
		t.Fatalf("run: failed=%d err=%v", failed, err)
	}
	recs := readPlanCSV(t, filepath.Join(dir, "plans", "wall", "L1_floor_plan.csv"))
	if len(recs) != 0 {
		t.Fatalf("filtered run wrote %d polygons, want none", len(recs))
	}
}

// TestE2ESiblingLevelFile checks the convention of a level CSV named after
// the input in the same directory, used when -levels is absent.
func TestE2ESiblingLevelFile(t *testing.T) {
	dir := t.TempDir()
	stl := filepath.Join(dir, "tower.stl")
	writeCubeSTL(t, stl, mesh.Vec3{}, mesh.Vec3{X: 1, Y: 1, Z: 6})
	writeLevelsCSV(t, filepath.Join(dir, "tower.csv"), "L1,1.5\nL2,4.5\n")

	app, err := NewApp(options{
		inputs:     []string{stl},
		outputDir:  filepath.Join(dir, "plans"),
		formatters: []string{"wkt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if failed, err := app.Run(context.Background()); err != nil || failed != 0 {
		t.Fatalf("run: failed=%d err=%v", failed, err)
	}
	for _, level := range []string{"L1", "L2"} {
		recs := readPlanCSV(t, filepath.Join(dir, "plans", "tower", level+"_floor_plan.csv"))
		if len(recs) != 1 {
			t.Errorf("%s: got %d polygons, want 1", level, len(recs))
		}
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.stl", "b.stl", "c.3mf"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := expandInputs([]string{filepath.Join(dir, "*.stl")})
	if len(got) != 2 {
		t.Fatalf("glob matched %d files, want 2", len(got))
	}

	got = expandInputs([]string{"no_such_file.stl"})
	if len(got) != 1 || got[0] != "no_such_file.stl" {
		t.Fatalf("unmatched pattern should stay literal, got %v", got)
	}
}

func TestNewAppRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		opts options
	}{
		{"unknown formatter", options{formatters: []string{"pdf"}}},
		{"no formatters", options{formatters: nil}},
		{"bad filter", options{formatters: []string{"wkt"}, filterSrc: "(= (tag)"}},
		{"bad style", options{formatters: []string{"svg"}, style: "sepia"}},
		{"missing levels file", options{formatters: []string{"wkt"}, levelsCSV: "no_such.csv"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewApp(c.opts); err == nil {
				t.Fatal("want configuration error")
			}
		})
	}
}

func TestLoadLevels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "levels.csv")
	writeLevelsCSV(t, path, "name,elevation\nGround, 1.2\nUpper,4.2\n")

	levels, err := loadLevels(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(levels) != 2 {
		t.Fatalf("got %d levels, want 2 after the header", len(levels))
	}
	if levels[0].Name != "Ground" || levels[0].Elevation != 1.2 {
		t.Errorf("first level = %s @ %g", levels[0].Name, levels[0].Elevation)
	}

	writeLevelsCSV(t, path, "Ground,1.2\nUpper,oops\n")
	if _, err := loadLevels(path); err == nil {
		t.Fatal("bad elevation past the first line should fail")
	}
}

func TestSourceFor(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"model.stl", "*model.StlSource"},
		{"Building.3MF", "*model.ThreemfSource"},
		{"synthetic", "*model.SyntheticSource"},
	}
	for _, c := range cases {
		src, err := sourceFor(c.path)
		if err != nil {
			t.Fatalf("%s: %v", c.path, err)
		}
		if got := fmt.Sprintf("%T", src); got != c.want {
			t.Errorf("%s picked %s, want %s", c.path, got, c.want)
		}
	}
	if _, err := sourceFor("plan.obj"); err == nil {
		t.Fatal("unsupported extension should be rejected")
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("800x600")
	if err != nil || w != 800 || h != 600 {
		t.Fatalf("parseSize(800x600) = %d, %d, %v", w, h, err)
	}
	if _, _, err := parseSize(""); err != nil {
		t.Errorf("empty size should keep defaults: %v", err)
	}
	for _, bad := range []string{"800", "x600", "800x", "0x100", "-5x100", "axb"} {
		if _, _, err := parseSize(bad); err == nil {
			t.Errorf("parseSize(%q) should fail", bad)
		}
	}
}
