package stl

import (
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
)

// Model is an unindexed triangle soup as stored in an STL file
type Model struct {
	Name      string
	Triangles []geometry.Triangle
}

// NewModel creates a new STL model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Triangles: make([]geometry.Triangle, 0),
	}
}

// AddTriangle adds a triangle to the model
func (m *Model) AddTriangle(triangle geometry.Triangle) {
	m.Triangles = append(m.Triangles, triangle)
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// BoundingBox calculates the bounding box of the entire model
func (m *Model) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, triangle := range m.Triangles {
		bbox.Extend(triangle.V1)
		bbox.Extend(triangle.V2)
		bbox.Extend(triangle.V3)
	}
	return bbox
}

// SurfaceArea calculates the total surface area of the model
func (m *Model) SurfaceArea() float64 {
	totalArea := 0.0
	for _, triangle := range m.Triangles {
		totalArea += triangle.Area()
	}
	return totalArea
}

// ToMesh converts the model into an indexed mesh with a single submesh.
// Vertices with identical positions are shared; normals and UVs are left
// empty so consumers fall back to face normals.
func (m *Model) ToMesh() *mesh.Mesh {
	out := mesh.New(m.Name)
	out.Submeshes = [][]int{make([]int, 0, len(m.Triangles)*3)}
	index := make(map[geometry.Vector3]int, len(m.Triangles))

	vertex := func(p geometry.Vector3) int {
		if i, ok := index[p]; ok {
			return i
		}
		out.Positions = append(out.Positions, p)
		index[p] = len(out.Positions) - 1
		return index[p]
	}

	for _, t := range m.Triangles {
		out.Submeshes[0] = append(out.Submeshes[0], vertex(t.V1), vertex(t.V2), vertex(t.V3))
	}
	return out
}

// FromMesh flattens a submesh (or all submeshes for a negative index) into a
// model, mapping positions through transform. Triangles of mirrored
// transforms are reversed so the file stays outward facing.
func FromMesh(src *mesh.Mesh, submesh int, transform geometry.Transform) *Model {
	model := NewModel(src.Name)
	mirrored := transform.IsMirrored()
	for s := range src.Submeshes {
		if submesh >= 0 && s != submesh {
			continue
		}
		for _, t := range src.Triangles(s) {
			tri := geometry.Triangle{
				V1: transform.TransformPoint(t.V1),
				V2: transform.TransformPoint(t.V2),
				V3: transform.TransformPoint(t.V3),
			}
			if mirrored {
				tri = tri.Flipped()
			}
			tri.Normal = tri.CalculateNormal()
			model.AddTriangle(tri)
		}
	}
	return model
}
