package model

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hpinc/go3mf"

	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// ThreemfSource loads the build items of a 3MF package. Each mesh-bearing
// item becomes one element, transformed into world space and scaled from the
// package unit into meters. Items referencing component assemblies are
// skipped: resolving those needs the production-extension path machinery and
// building exporters emit flat mesh items.
type ThreemfSource struct {
	Path string
}

func NewThreemfSource(path string) *ThreemfSource {
	return &ThreemfSource{Path: path}
}

func (s *ThreemfSource) Load(ctx context.Context) (*Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := go3mf.OpenReader(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open 3mf: %w", err)
	}
	defer r.Close()

	var doc go3mf.Model
	if err := r.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode 3mf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path))
	in := &Input{Name: name}
	scale := unitScale(doc.Units)

	skipped := 0
	for i, item := range doc.Build.Items {
		obj, ok := doc.FindObject(item.ObjectPath(), item.ObjectID)
		if !ok || obj.Mesh == nil {
			skipped++
			continue
		}
		m, err := itemMesh(obj.Mesh, item.Transform, scale)
		if err != nil {
			return nil, fmt.Errorf("item %d (object %d): %w", i, item.ObjectID, err)
		}
		objName := obj.Name
		if objName == "" {
			objName = fmt.Sprintf("object-%d", item.ObjectID)
		}
		in.Elements = append(in.Elements, Element{
			ID:      fmt.Sprintf("obj-%d-item-%d", item.ObjectID, i),
			TypeTag: ClassifyName(objName),
			Name:    objName,
			Mesh:    m,
		})
	}
	if len(in.Elements) == 0 {
		return nil, fmt.Errorf("3mf %s: no mesh build items (%d items skipped)", name, skipped)
	}
	return in, nil
}

func itemMesh(src *go3mf.Mesh, t go3mf.Matrix, scale float64) (*mesh.Mesh, error) {
	t = orIdentity(t)
	verts := make([]mesh.Vec3, len(src.Vertices.Vertex))
	for i, v := range src.Vertices.Vertex {
		x, y, z := apply(t, float64(v.X()), float64(v.Y()), float64(v.Z()))
		verts[i] = mesh.Vec3{X: x * scale, Y: y * scale, Z: z * scale}
	}
	tris := make([][3]int, len(src.Triangles.Triangle))
	for i, tr := range src.Triangles.Triangle {
		tris[i] = [3]int{int(tr.V1), int(tr.V2), int(tr.V3)}
	}
	return mesh.New(verts, tris)
}

// orIdentity treats the zero matrix of an absent transform attribute as
// identity.
func orIdentity(t go3mf.Matrix) go3mf.Matrix {
	if t == (go3mf.Matrix{}) {
		return go3mf.Matrix{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	}
	return t
}

// apply multiplies a point by the column-major 3MF matrix; translation sits
// in slots 12..14.
func apply(t go3mf.Matrix, x, y, z float64) (float64, float64, float64) {
	return float64(t[0])*x + float64(t[4])*y + float64(t[8])*z + float64(t[12]),
		float64(t[1])*x + float64(t[5])*y + float64(t[9])*z + float64(t[13]),
		float64(t[2])*x + float64(t[6])*y + float64(t[10])*z + float64(t[14])
}

// unitScale converts package units to meters. 3MF defaults to millimeters.
func unitScale(u go3mf.Units) float64 {
	switch u {
	case go3mf.UnitMeter:
		return 1
	case go3mf.UnitFoot:
		return 0.3048
	case go3mf.UnitInch:
		return 0.0254
	case go3mf.UnitCentimeter:
		return 0.01
	case go3mf.UnitMillimeter:
		return 0.001
	case go3mf.UnitMicrometer:
		return 1e-6
	default:
		return 0.001
	}
}
