// Package format renders frozen level results into files: WKT/CSV tables,
// SVG and PNG drawings, and layered DXF exports. Styling decisions (colors,
// line weights, draw order) live here, keyed by the canonical type tags the
// model sources emit; the planner knows nothing about presentation.
package format

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/datarefinerylab/BatchPlan/pkg/geo"
	"github.com/datarefinerylab/BatchPlan/pkg/plan"
)

// Formatter writes one finished level. Implementations receive frozen
// results and must not mutate them.
type Formatter interface {
	Format(res *plan.LevelResult) error
}

// RenderOptions configure the drawing formatters. The zero value is not
// useful; start from DefaultRenderOptions.
type RenderOptions struct {
	Width   int     // canvas width in pixels
	Height  int     // canvas height in pixels
	Margin  float64 // blank border as a fraction of the canvas
	Palette string  // one of the palette names in style.go
	Legend  bool
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Width: 1600, Height: 1200, Margin: 0.06, Palette: PaletteProfessional, Legend: true}
}

// FileName builds the per-level output name: the sanitized level name plus
// a fixed suffix, e.g. "Level_1_floor_plan.svg".
func FileName(level, ext string) string {
	var b strings.Builder
	for _, r := range level {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "level"
	}
	return fmt.Sprintf("%s_floor_plan.%s", name, ext)
}

// resultBounds is the world-space box around every ring of the level.
func resultBounds(res *plan.LevelResult) (geo.Rect, bool) {
	first := true
	var b geo.Rect
	for _, e := range res.Entries {
		for _, r := range e.Polygon.Rings() {
			if len(r) == 0 {
				continue
			}
			rb := r.Bounds()
			if first {
				b = rb
				first = false
			} else {
				b = b.Union(rb)
			}
		}
	}
	return b, !first
}

// orderedEntries returns the entries sorted back to front for drawing:
// palette draw order first, input order within a tag.
func orderedEntries(res *plan.LevelResult, p *Palette) []plan.Entry {
	out := make([]plan.Entry, len(res.Entries))
	copy(out, res.Entries)
	sort.SliceStable(out, func(i, j int) bool {
		return p.drawIndex(out[i].TypeTag) < p.drawIndex(out[j].TypeTag)
	})
	return out
}

// viewport maps world space into canvas pixels, flipping Y so north stays
// up.
type viewport struct {
	scale  float64
	x0, y0 float64
}

func fitViewport(b geo.Rect, width, height int, margin float64) viewport {
	w := b.Width()
	h := b.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	innerW := float64(width) * (1 - 2*margin)
	innerH := float64(height) * (1 - 2*margin)
	scale := math.Min(innerW/w, innerH/h)

	// Center the plan inside the margins.
	cx := b.Min.X + b.Width()/2
	cy := b.Min.Y + b.Height()/2
	return viewport{
		scale: scale,
		x0:    float64(width)/2 - cx*scale,
		y0:    float64(height)/2 + cy*scale,
	}
}

func (v viewport) point(p geo.Point) (float64, float64) {
	return v.x0 + p.X*v.scale, v.y0 - p.Y*v.scale
}

// niceLength picks a round world distance (1, 2 or 5 times a power of ten)
// close to the given target, for the scale bar.
func niceLength(target float64) float64 {
	if target <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(target)))
	for _, m := range []float64{5, 2, 1} {
		if m*mag <= target {
			return m * mag
		}
	}
	return mag
}
