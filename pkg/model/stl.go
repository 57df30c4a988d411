package model

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/datarefinerylab/BatchPlan/pkg/mesh"
)

// StlSource loads one solid from an STL file, binary or ASCII. STL carries
// no names or assembly structure, so the file yields a single element tagged
// from its filename. Scale converts source units to meters (1 for files
// already in meters, 0.001 for millimeter exports).
type StlSource struct {
	Path  string
	Scale float64
}

func NewStlSource(path string) *StlSource {
	return &StlSource{Path: path, Scale: 1}
}

func (s *StlSource) Load(ctx context.Context) (*Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	m, err := s.parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse stl %s: %w", filepath.Base(s.Path), err)
	}
	name := strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path))
	return &Input{
		Name: name,
		Elements: []Element{{
			ID:      uuid.NewString(),
			TypeTag: ClassifyName(name),
			Name:    name,
			Mesh:    m,
		}},
	}, nil
}

func (s *StlSource) parse(data []byte) (*mesh.Mesh, error) {
	if looksASCII(data) {
		return s.parseASCII(data)
	}
	return s.parseBinary(data)
}

// looksASCII distinguishes the two encodings. The "solid" prefix alone is
// not enough: binary exporters write it into the 80-byte header too, so the
// body must actually contain facet records.
func looksASCII(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return false
	}
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.Contains(probe, []byte("facet"))
}

// stlTriangle is the 50-byte binary record: normal, three vertices, and an
// attribute word nobody uses.
type stlTriangle struct {
	Normal [3]float32
	Verts  [3][3]float32
	Attr   uint16
}

func (s *StlSource) parseBinary(data []byte) (*mesh.Mesh, error) {
	if len(data) < 84 {
		return nil, fmt.Errorf("binary header truncated: %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	want := 84 + int64(count)*50
	if int64(len(data)) < want {
		return nil, fmt.Errorf("binary body truncated: have %d bytes, want %d for %d triangles", len(data), want, count)
	}

	r := bytes.NewReader(data[84:])
	verts := make([]float32, 0, count*9)
	indices := make([]uint32, 0, count*3)
	var tri stlTriangle
	for i := uint32(0); i < count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &tri); err != nil {
			return nil, fmt.Errorf("triangle %d: %w", i, err)
		}
		for _, v := range tri.Verts {
			indices = append(indices, uint32(len(verts)/3))
			verts = append(verts, v[0], v[1], v[2])
		}
	}
	return s.build(verts, indices)
}

func (s *StlSource) parseASCII(data []byte) (*mesh.Mesh, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var verts []float32
	var indices []uint32
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: malformed vertex", line)
		}
		for _, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			verts = append(verts, float32(x))
		}
		if len(verts)%9 == 0 {
			base := uint32(len(verts)/3 - 3)
			indices = append(indices, base, base+1, base+2)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(verts)%9 != 0 {
		return nil, fmt.Errorf("facet with %d vertices", (len(verts)/3)%3)
	}
	return s.build(verts, indices)
}

func (s *StlSource) build(verts []float32, indices []uint32) (*mesh.Mesh, error) {
	if s.Scale != 0 && s.Scale != 1 {
		for i := range verts {
			verts[i] *= float32(s.Scale)
		}
	}
	m, err := mesh.FromArrays(verts, indices)
	if err != nil {
		return nil, err
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("no triangles")
	}
	return m, nil
}
