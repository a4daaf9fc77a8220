// Package mesh holds the indexed triangle mesh exchanged between the slicer
// and its collaborators (file I/O, rendering, physics).
package mesh

import (
	"fmt"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// Mesh is an indexed triangle mesh. Positions, Normals and UVs are parallel
// arrays indexed by vertex; each submesh is a triangle index list rendered
// with its own material.
type Mesh struct {
	Name      string
	Positions []geometry.Vector3
	Normals   []geometry.Vector3
	UVs       []geometry.Vector2
	Submeshes [][]int

	// Readable is false when the geometry is access protected and must not be read
	Readable bool
}

// New creates an empty, readable mesh
func New(name string) *Mesh {
	return &Mesh{Name: name, Readable: true}
}

// VertexCount returns the number of vertices
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles over all submeshes
func (m *Mesh) TriangleCount() int {
	count := 0
	for _, sub := range m.Submeshes {
		count += len(sub) / 3
	}
	return count
}

// IsEmpty returns true if the mesh has no triangles
func (m *Mesh) IsEmpty() bool {
	return m.TriangleCount() == 0
}

// AddVertex appends a vertex and returns its index
func (m *Mesh) AddVertex(position, normal geometry.Vector3, uv geometry.Vector2) int {
	m.Positions = append(m.Positions, position)
	m.Normals = append(m.Normals, normal)
	m.UVs = append(m.UVs, uv)
	return len(m.Positions) - 1
}

// AddTriangle appends a triangle to the given submesh, creating it if needed
func (m *Mesh) AddTriangle(submesh, a, b, c int) {
	for len(m.Submeshes) <= submesh {
		m.Submeshes = append(m.Submeshes, nil)
	}
	m.Submeshes[submesh] = append(m.Submeshes[submesh], a, b, c)
}

// Triangle returns the i-th triangle of a submesh as a geometry triangle
func (m *Mesh) Triangle(submesh, i int) geometry.Triangle {
	idx := m.Submeshes[submesh]
	v1 := m.Positions[idx[i*3]]
	v2 := m.Positions[idx[i*3+1]]
	v3 := m.Positions[idx[i*3+2]]
	tri := geometry.Triangle{V1: v1, V2: v2, V3: v3}
	tri.Normal = tri.CalculateNormal()
	return tri
}

// Triangles returns all triangles of a submesh
func (m *Mesh) Triangles(submesh int) []geometry.Triangle {
	if submesh >= len(m.Submeshes) {
		return nil
	}
	count := len(m.Submeshes[submesh]) / 3
	triangles := make([]geometry.Triangle, 0, count)
	for i := 0; i < count; i++ {
		triangles = append(triangles, m.Triangle(submesh, i))
	}
	return triangles
}

// BoundingBox calculates the bounding box of all referenced vertices
func (m *Mesh) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, sub := range m.Submeshes {
		for _, i := range sub {
			bbox.Extend(m.Positions[i])
		}
	}
	return bbox
}

// SurfaceArea calculates the total area of a submesh, or of all submeshes for a negative index
func (m *Mesh) SurfaceArea(submesh int) float64 {
	total := 0.0
	for s := range m.Submeshes {
		if submesh >= 0 && s != submesh {
			continue
		}
		for _, tri := range m.Triangles(s) {
			total += tri.Area()
		}
	}
	return total
}

// Validate checks that the index lists are well formed
func (m *Mesh) Validate() error {
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("mesh %q: %d normals for %d positions", m.Name, len(m.Normals), len(m.Positions))
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("mesh %q: %d uvs for %d positions", m.Name, len(m.UVs), len(m.Positions))
	}
	for s, sub := range m.Submeshes {
		if len(sub)%3 != 0 {
			return fmt.Errorf("mesh %q: submesh %d has %d indices, not a multiple of 3", m.Name, s, len(sub))
		}
		for _, i := range sub {
			if i < 0 || i >= len(m.Positions) {
				return fmt.Errorf("mesh %q: submesh %d references vertex %d of %d", m.Name, s, i, len(m.Positions))
			}
		}
	}
	return nil
}
