package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/datarefinerylab/BatchPlan/pkg/model"
	"github.com/datarefinerylab/BatchPlan/pkg/plan"
)

// DxfFormatter writes one CAD drawing per level. Geometry stays in world
// coordinates and every element lands on a layer named after its tag, so
// downstream CAD tools can toggle categories independently.
type DxfFormatter struct {
	Dir string
}

func NewDxf(dir string) *DxfFormatter { return &DxfFormatter{Dir: dir} }

var _ Formatter = (*DxfFormatter)(nil)

// layerColors maps element tags to AutoCAD color indices.
var layerColors = map[string]color.ColorNumber{
	model.TagWall:    color.White,
	model.TagSlab:    color.Cyan,
	model.TagColumn:  color.Red,
	model.TagBeam:    color.Magenta,
	model.TagDoor:    color.Green,
	model.TagWindow:  color.Blue,
	model.TagStair:   color.Yellow,
	model.TagOutline: color.White,
}

func (f *DxfFormatter) Format(res *plan.LevelResult) error {
	d := dxf.NewDrawing()
	made := map[string]bool{}
	for _, e := range res.Entries {
		layer := strings.ToUpper(e.TypeTag)
		if made[layer] {
			if err := d.ChangeLayer(layer); err != nil {
				return fmt.Errorf("dxf: layer %s: %w", layer, err)
			}
		} else {
			cl, ok := layerColors[e.TypeTag]
			if !ok {
				cl = color.White
			}
			if _, err := d.AddLayer(layer, cl, dxf.DefaultLineType, true); err != nil {
				return fmt.Errorf("dxf: layer %s: %w", layer, err)
			}
			made[layer] = true
		}
		for _, ring := range e.Polygon.Rings() {
			verts := make([][]float64, len(ring))
			for i, pt := range ring {
				verts[i] = []float64{pt.X, pt.Y, 0}
			}
			if _, err := d.LwPolyline(true, verts...); err != nil {
				return fmt.Errorf("dxf: polyline: %w", err)
			}
		}
	}
	path := filepath.Join(f.Dir, FileName(res.Name, "dxf"))
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	return nil
}
