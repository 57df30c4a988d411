// Package model defines the building elements the planner consumes and the
// sources that load them: 3MF assemblies, raw STL solids, and a parametric
// synthetic building for demos and integration tests.
package model

import (
	"context"
	"strings"

	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// Element is one building component: an opaque type tag, a display name and
// the triangulated solid. The planner treats TypeTag as a label only.
type Element struct {
	ID      string
	TypeTag string
	Name    string
	Mesh    *mesh.Mesh
}

// Storey is a named floor with its base elevation in meters and the IDs of
// the elements it contains. Membership comes from the source's decomposition
// and is trusted downstream.
type Storey struct {
	Name      string
	Elevation float64
	Members   []string
}

// Input is everything one source yields.
type Input struct {
	Name     string
	Elements []Element
	Storeys  []Storey
}

// Source loads a model. A failed Load is fatal for that input: the caller
// gets no partial elements.
type Source interface {
	Load(ctx context.Context) (*Input, error)
}

// Canonical type tags emitted by the sources. Consumers treat unknown tags
// as TagElement.
const (
	TagWall    = "Wall"
	TagSlab    = "Slab"
	TagColumn  = "Column"
	TagBeam    = "Beam"
	TagDoor    = "Door"
	TagWindow  = "Window"
	TagStair   = "Stair"
	TagRoof    = "Roof"
	TagOutline = "Outline"
	TagElement = "Element"
)

var tagKeywords = []struct {
	tag      string
	keywords []string
}{
	{TagWall, []string{"wall", "partition"}},
	{TagSlab, []string{"slab", "floor", "deck"}},
	{TagColumn, []string{"column", "pillar", "post"}},
	{TagBeam, []string{"beam", "girder", "joist"}},
	{TagDoor, []string{"door"}},
	{TagWindow, []string{"window", "glazing"}},
	{TagStair, []string{"stair", "step"}},
	{TagRoof, []string{"roof"}},
}

// ClassifyName maps a free-form object name to a canonical type tag by
// keyword. Names that match nothing become TagElement.
func ClassifyName(name string) string {
	lower := strings.ToLower(name)
	for _, tk := range tagKeywords {
		for _, kw := range tk.keywords {
			if strings.Contains(lower, kw) {
				return tk.tag
			}
		}
	}
	return TagElement
}
