package format

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/datarefinerylab/BatchPlan/pkg/geo"
	"github.com/datarefinerylab/BatchPlan/pkg/plan"
)

// SvgFormatter draws one vector floor plan per level.
type SvgFormatter struct {
	Dir  string
	Opts RenderOptions
}

func NewSvg(dir string, opts RenderOptions) *SvgFormatter {
	return &SvgFormatter{Dir: dir, Opts: opts}
}

var _ Formatter = (*SvgFormatter)(nil)

func (f *SvgFormatter) Format(res *plan.LevelResult) error {
	pal, err := PaletteByName(f.Opts.Palette)
	if err != nil {
		return fmt.Errorf("svg: %w", err)
	}
	path := filepath.Join(f.Dir, FileName(res.Name, "svg"))
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("svg: %w", err)
	}
	defer out.Close()

	w, h := f.Opts.Width, f.Opts.Height
	canvas := svg.New(out)
	canvas.Start(w, h)
	canvas.Rect(0, 0, w, h, "fill:"+hexColor(pal.Background))

	title := fmt.Sprintf("%s (z = %.2f m)", res.Name, res.Elevation)
	canvas.Text(16, 28, title, "font-family:sans-serif;font-size:18px;fill:"+hexColor(textColor(pal.Background)))

	bounds, ok := resultBounds(res)
	if !ok {
		canvas.Text(16, 52, "no geometry at this level",
			"font-family:sans-serif;font-size:13px;fill:"+hexColor(textColor(pal.Background)))
		canvas.End()
		return nil
	}
	vp := fitViewport(bounds, w, h, f.Opts.Margin)

	for _, e := range orderedEntries(res, pal) {
		st := pal.StyleFor(e.TypeTag)
		canvas.Path(pathData(e.Polygon, vp), pathStyle(st))
	}

	if f.Opts.Legend {
		f.legend(canvas, res, pal)
	}
	f.scaleBar(canvas, bounds, vp, pal)
	canvas.End()
	return nil
}

func pathData(p geo.Polygon, vp viewport) string {
	var b strings.Builder
	for _, ring := range p.Rings() {
		for i, pt := range ring {
			x, y := vp.point(pt)
			if i == 0 {
				fmt.Fprintf(&b, "M %.2f %.2f ", x, y)
			} else {
				fmt.Fprintf(&b, "L %.2f %.2f ", x, y)
			}
		}
		b.WriteString("Z ")
	}
	return strings.TrimSpace(b.String())
}

func pathStyle(st Style) string {
	var b strings.Builder
	if st.Fill.A == 0 {
		b.WriteString("fill:none")
	} else {
		fmt.Fprintf(&b, "fill:%s", hexColor(st.Fill))
		if st.Fill.A < 255 {
			fmt.Fprintf(&b, ";fill-opacity:%.2f", float64(st.Fill.A)/255)
		}
	}
	fmt.Fprintf(&b, ";fill-rule:evenodd;stroke:%s;stroke-width:%.1f", hexColor(st.Stroke), st.Weight)
	return b.String()
}

// legend lists the tags present at this level, in draw order.
func (f *SvgFormatter) legend(canvas *svg.SVG, res *plan.LevelResult, pal *Palette) {
	seen := map[string]bool{}
	var tags []string
	for _, e := range orderedEntries(res, pal) {
		if !seen[e.TypeTag] {
			seen[e.TypeTag] = true
			tags = append(tags, e.TypeTag)
		}
	}
	x := f.Opts.Width - 170
	y := 24
	txt := hexColor(textColor(pal.Background))
	for _, tag := range tags {
		st := pal.StyleFor(tag)
		canvas.Rect(x, y, 16, 16, pathStyle(st))
		canvas.Text(x+24, y+13, tag, "font-family:sans-serif;font-size:13px;fill:"+txt)
		y += 24
	}
}

// scaleBar draws a round-length bar in the bottom-left corner.
func (f *SvgFormatter) scaleBar(canvas *svg.SVG, bounds geo.Rect, vp viewport, pal *Palette) {
	length := niceLength(bounds.Width() / 4)
	px := int(length * vp.scale)
	if px < 10 {
		return
	}
	x := 20
	y := f.Opts.Height - 24
	stroke := "stroke:" + hexColor(textColor(pal.Background)) + ";stroke-width:2"
	canvas.Line(x, y, x+px, y, stroke)
	canvas.Line(x, y-5, x, y+5, stroke)
	canvas.Line(x+px, y-5, x+px, y+5, stroke)
	canvas.Text(x+px/2-10, y-10, fmt.Sprintf("%g m", length),
		"font-family:sans-serif;font-size:12px;fill:"+hexColor(textColor(pal.Background)))
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// textColor picks dark or light annotation ink against the background.
func textColor(bg color.RGBA) color.RGBA {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum > 140 {
		return color.RGBA{R: 40, G: 40, B: 46, A: 255}
	}
	return color.RGBA{R: 235, G: 240, B: 245, A: 255}
}
