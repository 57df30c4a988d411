package format

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/datarefinerylab/BatchPlan/pkg/geo"
	"github.com/datarefinerylab/BatchPlan/pkg/plan"
)

// PngFormatter rasterizes one floor plan image per level.
type PngFormatter struct {
	Dir  string
	Opts RenderOptions
}

func NewPng(dir string, opts RenderOptions) *PngFormatter {
	return &PngFormatter{Dir: dir, Opts: opts}
}

var _ Formatter = (*PngFormatter)(nil)

func (f *PngFormatter) Format(res *plan.LevelResult) error {
	pal, err := PaletteByName(f.Opts.Palette)
	if err != nil {
		return fmt.Errorf("png: %w", err)
	}
	w, h := f.Opts.Width, f.Opts.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gc := draw2dimg.NewGraphicContext(img)

	gc.SetFillColor(pal.Background)
	gc.MoveTo(0, 0)
	gc.LineTo(float64(w), 0)
	gc.LineTo(float64(w), float64(h))
	gc.LineTo(0, float64(h))
	gc.Close()
	gc.Fill()

	if bounds, ok := resultBounds(res); ok {
		vp := fitViewport(bounds, w, h, f.Opts.Margin)
		gc.SetFillRule(draw2d.FillRuleEvenOdd)
		for _, e := range orderedEntries(res, pal) {
			st := pal.StyleFor(e.TypeTag)
			tracePolygon(gc, e.Polygon, vp)
			gc.SetStrokeColor(st.Stroke)
			gc.SetLineWidth(st.Weight)
			if st.Fill.A == 0 {
				gc.Stroke()
				continue
			}
			gc.SetFillColor(st.Fill)
			gc.FillStroke()
		}
	}

	path := filepath.Join(f.Dir, FileName(res.Name, "png"))
	if err := draw2dimg.SaveToPngFile(path, img); err != nil {
		return fmt.Errorf("png: %w", err)
	}
	return nil
}

func tracePolygon(gc *draw2dimg.GraphicContext, p geo.Polygon, vp viewport) {
	for _, ring := range p.Rings() {
		for i, pt := range ring {
			x, y := vp.point(pt)
			if i == 0 {
				gc.MoveTo(x, y)
			} else {
				gc.LineTo(x, y)
			}
		}
		gc.Close()
	}
}
