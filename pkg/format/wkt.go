package format

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/datarefinerylab/BatchPlan/pkg/geo"
	"github.com/datarefinerylab/BatchPlan/pkg/plan"
)

// WktFormatter writes one CSV per level with a WKT geometry column, the
// interchange form downstream GIS and spreadsheet tooling reads directly.
type WktFormatter struct {
	Dir string
}

func NewWkt(dir string) *WktFormatter {
	return &WktFormatter{Dir: dir}
}

var _ Formatter = (*WktFormatter)(nil)

func (f *WktFormatter) Format(res *plan.LevelResult) error {
	path := filepath.Join(f.Dir, FileName(res.Name, "csv"))
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wkt: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"type", "name", "geometry", "area"}); err != nil {
		return fmt.Errorf("wkt: %w", err)
	}
	for _, e := range res.Entries {
		rec := []string{
			e.TypeTag,
			e.Name,
			wktPolygon(e.Polygon),
			strconv.FormatFloat(e.Polygon.Area(), 'f', 4, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("wkt: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("wkt: %w", err)
	}
	return nil
}

// wktPolygon serializes exterior and holes, closing each ring by repeating
// its first point as WKT requires.
func wktPolygon(p geo.Polygon) string {
	var b strings.Builder
	b.WriteString("POLYGON (")
	for i, ring := range p.Rings() {
		if i > 0 {
			b.WriteString(", ")
		}
		writeWktRing(&b, ring)
	}
	b.WriteString(")")
	return b.String()
}

func writeWktRing(b *strings.Builder, r geo.Ring) {
	b.WriteByte('(')
	for i, pt := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		writeWktPoint(b, pt)
	}
	if len(r) > 0 {
		b.WriteString(", ")
		writeWktPoint(b, r[0])
	}
	b.WriteByte(')')
}

func writeWktPoint(b *strings.Builder, pt geo.Point) {
	b.WriteString(strconv.FormatFloat(pt.X, 'f', 4, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(pt.Y, 'f', 4, 64))
}
