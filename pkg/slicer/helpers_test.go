package slicer

import (
	"math"
	"testing"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
)

// unitCube builds an axis aligned cube of edge length size centered at center,
// with outward winding and no normals or UVs
func unitCube(name string, center geometry.Vector3, size float64) *mesh.Mesh {
	m := mesh.New(name)
	appendCube(m, center, size)
	return m
}

func appendCube(m *mesh.Mesh, center geometry.Vector3, size float64) {
	base := len(m.Positions)
	for i := 0; i < 8; i++ {
		p := geometry.NewVector3(
			float64(i&1)-0.5,
			float64(i>>1&1)-0.5,
			float64(i>>2&1)-0.5,
		)
		m.Positions = append(m.Positions, center.Add(p.Mul(size)))
	}
	quads := [6][4]int{
		{0, 4, 6, 2}, // -X
		{1, 3, 7, 5}, // +X
		{0, 1, 5, 4}, // -Y
		{2, 6, 7, 3}, // +Y
		{0, 2, 3, 1}, // -Z
		{4, 5, 7, 6}, // +Z
	}
	for _, q := range quads {
		m.AddTriangle(0, base+q[0], base+q[1], base+q[2])
		m.AddTriangle(0, base+q[0], base+q[2], base+q[3])
	}
}

// torus builds a torus around the Y axis with outward winding
func torus(major, minor float64, rings, sides int) *mesh.Mesh {
	m := mesh.New("torus")
	for i := 0; i < rings; i++ {
		theta := 2 * math.Pi * float64(i) / float64(rings)
		for j := 0; j < sides; j++ {
			phi := 2 * math.Pi * float64(j) / float64(sides)
			ring := major + minor*math.Cos(phi)
			p := geometry.NewVector3(ring*math.Cos(theta), minor*math.Sin(phi), ring*math.Sin(theta))
			n := geometry.NewVector3(math.Cos(phi)*math.Cos(theta), math.Sin(phi), math.Cos(phi)*math.Sin(theta))
			uv := geometry.NewVector2(float64(i)/float64(rings), float64(j)/float64(sides))
			m.AddVertex(p, n, uv)
		}
	}
	idx := func(i, j int) int { return (i%rings)*sides + j%sides }
	for i := 0; i < rings; i++ {
		for j := 0; j < sides; j++ {
			a, b, c, d := idx(i, j), idx(i, j+1), idx(i+1, j+1), idx(i+1, j)
			m.AddTriangle(0, a, b, c)
			m.AddTriangle(0, a, c, d)
		}
	}
	return m
}

func mustPlane(t *testing.T, normal, point geometry.Vector3) geometry.Plane {
	t.Helper()
	p, err := geometry.NewPlane(normal, point)
	if err != nil {
		t.Fatalf("NewPlane failed: %v", err)
	}
	return p
}

func quietSlicer() *Slicer {
	return New(Options{Epsilon: DefaultEpsilon, Logger: discardLogger()})
}

type directedEdge struct {
	from, to geometry.Vector3
}

// pieceEdges returns every directed triangle edge of a piece in world space
func pieceEdges(p *Piece) []directedEdge {
	var edges []directedEdge
	for _, sub := range p.Mesh.Submeshes {
		for i := 0; i+2 < len(sub); i += 3 {
			v := [3]geometry.Vector3{
				p.Transform.TransformPoint(p.Mesh.Positions[sub[i]]),
				p.Transform.TransformPoint(p.Mesh.Positions[sub[i+1]]),
				p.Transform.TransformPoint(p.Mesh.Positions[sub[i+2]]),
			}
			for k := 0; k < 3; k++ {
				edges = append(edges, directedEdge{from: v[k], to: v[(k+1)%3]})
			}
		}
	}
	return edges
}

// unpairedEdges counts directed edges whose reverse does not occur equally often,
// which is zero for a closed, consistently wound surface
func unpairedEdges(p *Piece, tol float64) int {
	edges := pieceEdges(p)
	unpaired := 0
	for _, e := range edges {
		same, reverse := 0, 0
		for _, o := range edges {
			if o.from.ApproxEqual(e.from, tol) && o.to.ApproxEqual(e.to, tol) {
				same++
			}
			if o.from.ApproxEqual(e.to, tol) && o.to.ApproxEqual(e.from, tol) {
				reverse++
			}
		}
		if same != reverse {
			unpaired++
		}
	}
	return unpaired
}

// localFaces returns the face normal and centroid of every triangle of a
// submesh, computed from the stored index order
func localFaces(p *Piece, submesh int) (normals, centers []geometry.Vector3) {
	for _, tri := range p.Mesh.Triangles(submesh) {
		normals = append(normals, tri.CalculateNormal())
		centers = append(centers, tri.Center())
	}
	return normals, centers
}

// vertexMean is strictly inside a convex piece
func vertexMean(p *Piece) geometry.Vector3 {
	var sum geometry.Vector3
	for _, pos := range p.Mesh.Positions {
		sum = sum.Add(pos)
	}
	return sum.Mul(1 / float64(len(p.Mesh.Positions)))
}
