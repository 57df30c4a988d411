package model

import (
	"context"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// SyntheticSource generates a small two-storey demo building from signed
// distance primitives: slabs, perimeter walls with door and window openings,
// an interior partition and a column grid. It lets the tool run end to end
// without input files and doubles as an integration fixture. Cells is the
// marching-cubes resolution along the longest axis of each element.
type SyntheticSource struct {
	Cells int
}

func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{Cells: 200}
}

// Building dimensions in meters.
const (
	synLength      = 12.0
	synWidth       = 8.0
	synStoreyH     = 3.0
	synWallThick   = 0.25
	synSlabThick   = 0.3
	synColumnR     = 0.18
	synDoorWidth   = 1.2
	synDoorHeight  = 2.1
	synWindowWidth = 1.5
	synWindowH     = 1.2
	synWindowSill  = 0.9
)

func (s *SyntheticSource) Load(ctx context.Context) (*Input, error) {
	cells := s.Cells
	if cells <= 0 {
		cells = 200
	}

	type part struct {
		id   string
		tag  string
		name string
		sdf  func() (sdf.SDF3, error)
	}
	parts := []part{
		{"syn-slab-g", TagSlab, "Ground Slab", func() (sdf.SDF3, error) { return slab(0) }},
		{"syn-wall-s", TagWall, "South Wall", func() (sdf.SDF3, error) { return southWall(0) }},
		{"syn-wall-n", TagWall, "North Wall", func() (sdf.SDF3, error) { return northWall(0) }},
		{"syn-wall-w", TagWall, "West Wall", func() (sdf.SDF3, error) { return sideWall(0, 0) }},
		{"syn-wall-e", TagWall, "East Wall", func() (sdf.SDF3, error) { return sideWall(0, synLength-synWallThick) }},
		{"syn-part-1", TagWall, "Partition Wall", partition},
		{"syn-col-a1", TagColumn, "Column A1", column(3, 2)},
		{"syn-col-a2", TagColumn, "Column A2", column(3, 6)},
		{"syn-col-b1", TagColumn, "Column B1", column(9, 2)},
		{"syn-col-b2", TagColumn, "Column B2", column(9, 6)},
		{"syn-slab-1", TagSlab, "Level 1 Slab", func() (sdf.SDF3, error) { return slab(synStoreyH) }},
		{"syn-wall-s1", TagWall, "South Wall L1", func() (sdf.SDF3, error) { return southWall(synStoreyH) }},
		{"syn-wall-n1", TagWall, "North Wall L1", func() (sdf.SDF3, error) { return northWall(synStoreyH) }},
		{"syn-wall-w1", TagWall, "West Wall L1", func() (sdf.SDF3, error) { return sideWall(synStoreyH, 0) }},
		{"syn-wall-e1", TagWall, "East Wall L1", func() (sdf.SDF3, error) { return sideWall(synStoreyH, synLength-synWallThick) }},
	}

	in := &Input{Name: "synthetic"}
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sd, err := p.sdf()
		if err != nil {
			return nil, fmt.Errorf("synthetic %s: %w", p.id, err)
		}
		m, err := toMesh(sd, cells)
		if err != nil {
			return nil, fmt.Errorf("synthetic %s: %w", p.id, err)
		}
		in.Elements = append(in.Elements, Element{ID: p.id, TypeTag: p.tag, Name: p.name, Mesh: m})
	}

	in.Storeys = []Storey{
		{Name: "Ground", Elevation: 0, Members: []string{
			"syn-slab-g", "syn-wall-s", "syn-wall-n", "syn-wall-w", "syn-wall-e",
			"syn-part-1", "syn-col-a1", "syn-col-a2", "syn-col-b1", "syn-col-b2",
		}},
		{Name: "Level 1", Elevation: synStoreyH, Members: []string{
			"syn-slab-1", "syn-wall-s1", "syn-wall-n1", "syn-wall-w1", "syn-wall-e1",
		}},
	}
	return in, nil
}

func box(w, d, h float64) (sdf.SDF3, error) {
	return sdf.Box3D(v3.Vec{X: w, Y: d, Z: h}, 0)
}

func at(s sdf.SDF3, x, y, z float64) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

func slab(base float64) (sdf.SDF3, error) {
	b, err := box(synLength+0.5, synWidth+0.5, synSlabThick)
	if err != nil {
		return nil, err
	}
	return at(b, synLength/2, synWidth/2, base-synSlabThick/2), nil
}

func southWall(base float64) (sdf.SDF3, error) {
	wall, err := box(synLength, synWallThick, synStoreyH)
	if err != nil {
		return nil, err
	}
	wall = at(wall, synLength/2, synWallThick/2, base+synStoreyH/2)
	door, err := box(synDoorWidth, synWallThick+0.2, synDoorHeight)
	if err != nil {
		return nil, err
	}
	door = at(door, synLength/2, synWallThick/2, base+synDoorHeight/2)
	return sdf.Difference3D(wall, door), nil
}

func northWall(base float64) (sdf.SDF3, error) {
	wall, err := box(synLength, synWallThick, synStoreyH)
	if err != nil {
		return nil, err
	}
	y := synWidth - synWallThick/2
	wall = at(wall, synLength/2, y, base+synStoreyH/2)
	var cuts []sdf.SDF3
	for _, x := range []float64{3, 9} {
		win, err := box(synWindowWidth, synWallThick+0.2, synWindowH)
		if err != nil {
			return nil, err
		}
		cuts = append(cuts, at(win, x, y, base+synWindowSill+synWindowH/2))
	}
	return sdf.Difference3D(wall, unionAll(cuts)), nil
}

func sideWall(base, x float64) (sdf.SDF3, error) {
	wall, err := box(synWallThick, synWidth, synStoreyH)
	if err != nil {
		return nil, err
	}
	return at(wall, x+synWallThick/2, synWidth/2, base+synStoreyH/2), nil
}

func partition() (sdf.SDF3, error) {
	wall, err := box(synWallThick, synWidth, synStoreyH)
	if err != nil {
		return nil, err
	}
	wall = at(wall, 7, synWidth/2, synStoreyH/2)
	door, err := box(synWallThick+0.2, synDoorWidth, synDoorHeight)
	if err != nil {
		return nil, err
	}
	door = at(door, 7, 2, synDoorHeight/2)
	return sdf.Difference3D(wall, door), nil
}

func column(x, y float64) func() (sdf.SDF3, error) {
	return func() (sdf.SDF3, error) {
		c, err := sdf.Cylinder3D(synStoreyH, synColumnR, 0)
		if err != nil {
			return nil, err
		}
		return at(c, x, y, synStoreyH/2), nil
	}
}

func unionAll(parts []sdf.SDF3) sdf.SDF3 {
	if len(parts) == 1 {
		return parts[0]
	}
	return sdf.Union3D(parts...)
}

// toMesh polygonizes a signed distance field with uniform marching cubes and
// flattens the triangle soup into a mesh.
func toMesh(s sdf.SDF3, cells int) (*mesh.Mesh, error) {
	r := render.NewMarchingCubesUniform(cells)
	tris := render.ToTriangles(s, r)
	if len(tris) == 0 {
		return nil, fmt.Errorf("marching cubes produced no triangles")
	}
	verts := make([]mesh.Vec3, 0, len(tris)*3)
	idx := make([][3]int, 0, len(tris))
	for _, tri := range tris {
		base := len(verts)
		for j := 0; j < 3; j++ {
			verts = append(verts, mesh.Vec3{X: tri[j].X, Y: tri[j].Y, Z: tri[j].Z})
		}
		idx = append(idx, [3]int{base, base + 1, base + 2})
	}
	return mesh.New(verts, idx)
}
