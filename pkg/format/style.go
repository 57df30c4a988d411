package format

import (
	"fmt"
	"image/color"

	"github.com/datarefinerylab/BatchPlan/pkg/model"
)

// Style is how one type tag is drawn.
type Style struct {
	Fill   color.RGBA
	Stroke color.RGBA
	Weight float64 // stroke width in pixels
}

// Palette is a complete drawing theme: background, per-tag styles, a
// fallback for unknown tags, and the back-to-front draw order.
type Palette struct {
	Name       string
	Background color.RGBA
	Default    Style
	ByTag      map[string]Style
	order      map[string]int
}

// Palette names accepted by RenderOptions and the -style flag.
const (
	PaletteProfessional = "professional"
	PaletteMinimal      = "minimal"
	PaletteColorful     = "colorful"
	PaletteTechnical    = "technical"
)

// drawOrder lists tags back to front: large background surfaces first so
// walls, structure and openings stay visible above them.
var drawOrder = []string{
	model.TagOutline,
	model.TagSlab,
	model.TagRoof,
	model.TagStair,
	model.TagWall,
	model.TagBeam,
	model.TagColumn,
	model.TagDoor,
	model.TagWindow,
	model.TagElement,
}

func rgb(r, g, b uint8) color.RGBA     { return color.RGBA{R: r, G: g, B: b, A: 255} }
func rgba(r, g, b, a uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: a} }

func newPalette(name string, bg color.RGBA, def Style, byTag map[string]Style) *Palette {
	order := make(map[string]int, len(drawOrder))
	for i, tag := range drawOrder {
		order[tag] = i
	}
	return &Palette{Name: name, Background: bg, Default: def, ByTag: byTag, order: order}
}

func (p *Palette) drawIndex(tag string) int {
	if i, ok := p.order[tag]; ok {
		return i
	}
	return len(drawOrder)
}

// StyleFor resolves a tag to its style, falling back to the default.
func (p *Palette) StyleFor(tag string) Style {
	if s, ok := p.ByTag[tag]; ok {
		return s
	}
	return p.Default
}

var palettes = map[string]*Palette{
	PaletteProfessional: newPalette(PaletteProfessional,
		rgb(255, 255, 255),
		Style{Fill: rgb(205, 205, 210), Stroke: rgb(60, 60, 70), Weight: 1},
		map[string]Style{
			model.TagWall:    {Fill: rgb(70, 70, 80), Stroke: rgb(35, 35, 42), Weight: 1.5},
			model.TagSlab:    {Fill: rgb(235, 235, 238), Stroke: rgb(150, 150, 158), Weight: 0.8},
			model.TagColumn:  {Fill: rgb(45, 45, 52), Stroke: rgb(20, 20, 26), Weight: 1.5},
			model.TagBeam:    {Fill: rgb(120, 120, 130), Stroke: rgb(70, 70, 80), Weight: 1},
			model.TagDoor:    {Fill: rgb(186, 140, 99), Stroke: rgb(120, 85, 55), Weight: 1},
			model.TagWindow:  {Fill: rgba(160, 200, 230, 190), Stroke: rgb(90, 130, 170), Weight: 1},
			model.TagStair:   {Fill: rgb(215, 215, 220), Stroke: rgb(120, 120, 130), Weight: 1},
			model.TagRoof:    {Fill: rgb(225, 220, 210), Stroke: rgb(150, 140, 120), Weight: 0.8},
			model.TagOutline: {Fill: rgba(0, 0, 0, 0), Stroke: rgb(90, 90, 100), Weight: 2.5},
		}),
	PaletteMinimal: newPalette(PaletteMinimal,
		rgb(255, 255, 255),
		Style{Fill: rgb(255, 255, 255), Stroke: rgb(0, 0, 0), Weight: 1},
		map[string]Style{
			model.TagWall:    {Fill: rgb(0, 0, 0), Stroke: rgb(0, 0, 0), Weight: 1},
			model.TagColumn:  {Fill: rgb(0, 0, 0), Stroke: rgb(0, 0, 0), Weight: 1},
			model.TagSlab:    {Fill: rgb(255, 255, 255), Stroke: rgb(120, 120, 120), Weight: 0.6},
			model.TagOutline: {Fill: rgba(0, 0, 0, 0), Stroke: rgb(0, 0, 0), Weight: 2},
		}),
	PaletteColorful: newPalette(PaletteColorful,
		rgb(252, 252, 248),
		Style{Fill: rgb(189, 195, 199), Stroke: rgb(87, 96, 105), Weight: 1},
		map[string]Style{
			model.TagWall:    {Fill: rgb(211, 84, 0), Stroke: rgb(150, 58, 0), Weight: 1.5},
			model.TagSlab:    {Fill: rgb(244, 208, 63), Stroke: rgb(180, 150, 40), Weight: 0.8},
			model.TagColumn:  {Fill: rgb(142, 68, 173), Stroke: rgb(100, 45, 125), Weight: 1.5},
			model.TagBeam:    {Fill: rgb(230, 126, 34), Stroke: rgb(160, 85, 20), Weight: 1},
			model.TagDoor:    {Fill: rgb(39, 174, 96), Stroke: rgb(25, 120, 65), Weight: 1},
			model.TagWindow:  {Fill: rgba(52, 152, 219, 190), Stroke: rgb(35, 105, 155), Weight: 1},
			model.TagStair:   {Fill: rgb(233, 30, 99), Stroke: rgb(160, 20, 70), Weight: 1},
			model.TagRoof:    {Fill: rgb(149, 165, 166), Stroke: rgb(100, 112, 113), Weight: 0.8},
			model.TagOutline: {Fill: rgba(0, 0, 0, 0), Stroke: rgb(44, 62, 80), Weight: 2.5},
		}),
	PaletteTechnical: newPalette(PaletteTechnical,
		rgb(16, 42, 67),
		Style{Fill: rgba(220, 235, 250, 40), Stroke: rgb(160, 200, 235), Weight: 0.8},
		map[string]Style{
			model.TagWall:    {Fill: rgba(220, 235, 250, 90), Stroke: rgb(220, 240, 255), Weight: 1.2},
			model.TagSlab:    {Fill: rgba(220, 235, 250, 25), Stroke: rgb(120, 160, 200), Weight: 0.6},
			model.TagColumn:  {Fill: rgba(220, 235, 250, 120), Stroke: rgb(235, 245, 255), Weight: 1.2},
			model.TagDoor:    {Fill: rgba(130, 220, 180, 80), Stroke: rgb(130, 220, 180), Weight: 1},
			model.TagWindow:  {Fill: rgba(140, 200, 250, 60), Stroke: rgb(140, 200, 250), Weight: 1},
			model.TagOutline: {Fill: rgba(0, 0, 0, 0), Stroke: rgb(250, 250, 250), Weight: 2},
		}),
}

// PaletteByName resolves a palette. Unknown names are an error.
func PaletteByName(name string) (*Palette, error) {
	if p, ok := palettes[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown style %q (have professional, minimal, colorful, technical)", name)
}
