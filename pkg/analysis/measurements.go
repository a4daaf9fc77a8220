// Package analysis measures meshes and slice results.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
)

// weldQuantum is the grid positions are snapped to when matching edges
const weldQuantum = 1e-6

// EdgeInfo contains information about an edge in the mesh
type EdgeInfo struct {
	Start      geometry.Vector3
	End        geometry.Vector3
	Length     float64
	TriangleID int
}

// MeshReport contains various measurements of a mesh
type MeshReport struct {
	Name          string
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Volume        float64
	SurfaceArea   float64
	TriangleCount int
	VertexCount   int
	EdgeCount     int
	BoundaryEdges int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
	AllEdges      []EdgeInfo
	Collider      slicer.Collider
}

// Closed reports whether every edge is shared by exactly one opposing edge
func (r *MeshReport) Closed() bool {
	return r.BoundaryEdges == 0
}

// AnalyzeMesh performs a comprehensive analysis of a mesh
func AnalyzeMesh(m *mesh.Mesh) *MeshReport {
	result := &MeshReport{
		Name:          m.Name,
		BoundingBox:   m.BoundingBox(),
		SurfaceArea:   m.SurfaceArea(-1),
		TriangleCount: m.TriangleCount(),
		VertexCount:   m.VertexCount(),
		AllEdges:      make([]EdgeInfo, 0, m.TriangleCount()*3),
	}
	result.Dimensions = result.BoundingBox.Size()
	result.Volume = EnclosedVolume(m)
	result.BoundaryEdges = BoundaryEdges(m)
	result.Collider = slicer.ChooseCollider(result.BoundingBox)

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	id := 0
	for s := range m.Submeshes {
		for _, triangle := range m.Triangles(s) {
			for _, edge := range [3][2]geometry.Vector3{
				{triangle.V1, triangle.V2},
				{triangle.V2, triangle.V3},
				{triangle.V3, triangle.V1},
			} {
				length := edge[0].Distance(edge[1])
				result.AllEdges = append(result.AllEdges, EdgeInfo{
					Start:      edge[0],
					End:        edge[1],
					Length:     length,
					TriangleID: id,
				})
				totalLength += length
				minLength = math.Min(minLength, length)
				maxLength = math.Max(maxLength, length)
			}
			id++
		}
	}

	result.EdgeCount = len(result.AllEdges)
	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}
	return result
}

// EnclosedVolume returns the signed volume of a closed mesh with outward winding
func EnclosedVolume(m *mesh.Mesh) float64 {
	volume := 0.0
	for s := range m.Submeshes {
		for _, t := range m.Triangles(s) {
			volume += t.V1.Dot(t.V2.Cross(t.V3)) / 6
		}
	}
	return volume
}

type gridKey [3]int64

func snap(p geometry.Vector3) gridKey {
	return gridKey{
		int64(math.Round(p.X / weldQuantum)),
		int64(math.Round(p.Y / weldQuantum)),
		int64(math.Round(p.Z / weldQuantum)),
	}
}

// BoundaryEdges counts directed edges without a matching opposite edge.
// Positions are compared on a fine grid so that vertices split by normals
// or UVs still match.
func BoundaryEdges(m *mesh.Mesh) int {
	counts := make(map[[2]gridKey]int)
	for _, sub := range m.Submeshes {
		for i := 0; i+2 < len(sub); i += 3 {
			for k := 0; k < 3; k++ {
				a := snap(m.Positions[sub[i+k]])
				b := snap(m.Positions[sub[i+(k+1)%3]])
				if a == b {
					continue
				}
				counts[[2]gridKey{a, b}]++
			}
		}
	}

	open := 0
	for e, n := range counts {
		reverse := counts[[2]gridKey{e[1], e[0]}]
		if n > reverse {
			open += n - reverse
		}
	}
	return open
}

// FindEdgesByLength finds all edges within a length range
func FindEdgesByLength(result *MeshReport, minLength, maxLength float64) []EdgeInfo {
	var edges []EdgeInfo
	for _, edge := range result.AllEdges {
		if edge.Length >= minLength && edge.Length <= maxLength {
			edges = append(edges, edge)
		}
	}
	return edges
}

func sortedEdges(result *MeshReport, count int, less func(a, b float64) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)
	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i].Length, edges[j].Length)
	})
	if count > len(edges) {
		count = len(edges)
	}
	return edges[:count]
}

// FindLongestEdges returns the N longest edges in the mesh
func FindLongestEdges(result *MeshReport, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b float64) bool { return a > b })
}

// FindShortestEdges returns the N shortest edges in the mesh
func FindShortestEdges(result *MeshReport, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b float64) bool { return a < b })
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
