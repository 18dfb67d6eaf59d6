package assets

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lidarview/pkg/stl"
)

// Geometry is a non-indexed triangle list ready for upload.
type Geometry struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	Min, Max  mgl32.Vec3
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Material is a flat surface color.
type Material struct {
	Name  string
	Color mgl32.Vec3
}

// Model is a decoded auxiliary mesh shared by every placement of its URL.
type Model struct {
	URL       string
	Geometry  Geometry
	Materials []Material
}

// Decoder turns fetched bytes into a model.
type Decoder func(data []byte) (*Model, error)

// DecodeSTL builds a model from ASCII or binary STL data.
func DecodeSTL(data []byte) (*Model, error) {
	mesh, err := stl.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding STL: %w", err)
	}

	n := len(mesh.Triangles) * 9
	g := Geometry{
		Positions: make([]float32, 0, n),
		Normals:   make([]float32, 0, n),
	}
	for _, t := range mesh.Triangles {
		for _, v := range t.V {
			g.Positions = append(g.Positions, v[0], v[1], v[2])
			g.Normals = append(g.Normals, t.Normal[0], t.Normal[1], t.Normal[2])
		}
	}
	g.Min, g.Max = mesh.Bounds()

	name := mesh.Name
	if name == "" {
		name = "default"
	}
	return &Model{
		Geometry:  g,
		Materials: []Material{{Name: name, Color: mgl32.Vec3{0.8, 0.8, 0.8}}},
	}, nil
}

// whiten forces every material to white so models read clearly over colored points.
func (m *Model) whiten() {
	for i := range m.Materials {
		m.Materials[i].Color = mgl32.Vec3{1, 1, 1}
	}
}
