package analysis

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
)

func cube() *mesh.Mesh {
	m := mesh.New("cube")
	for i := 0; i < 8; i++ {
		m.Positions = append(m.Positions, geometry.NewVector3(float64(i&1)-0.5, float64(i>>1&1)-0.5, float64(i>>2&1)-0.5))
	}
	for _, q := range [6][4]int{{0, 4, 6, 2}, {1, 3, 7, 5}, {0, 1, 5, 4}, {2, 6, 7, 3}, {0, 2, 3, 1}, {4, 5, 7, 6}} {
		m.AddTriangle(0, q[0], q[1], q[2])
		m.AddTriangle(0, q[0], q[2], q[3])
	}
	return m
}

func TestAnalyzeMesh(t *testing.T) {
	r := AnalyzeMesh(cube())

	assert.Equal(t, 12, r.TriangleCount)
	assert.Equal(t, 8, r.VertexCount)
	assert.Equal(t, 36, r.EdgeCount)
	assert.InDelta(t, 6.0, r.SurfaceArea, 1e-12)
	assert.InDelta(t, 1.0, r.Volume, 1e-12)
	assert.InDelta(t, 1.0, r.MinEdgeLength, 1e-12)
	assert.InDelta(t, 1.4142135, r.MaxEdgeLength, 1e-6)
	assert.True(t, r.Closed())
	assert.Equal(t, slicer.ColliderSphere, r.Collider.Shape)

	longest := FindLongestEdges(r, 3)
	require.Len(t, longest, 3)
	assert.InDelta(t, r.MaxEdgeLength, longest[0].Length, 1e-12)
	assert.Len(t, FindShortestEdges(r, 100), 36)
	assert.Len(t, FindEdgesByLength(r, 1.4, 1.5), 12)
}

func TestBoundaryEdgesOpenMesh(t *testing.T) {
	m := cube()
	m.Submeshes[0] = m.Submeshes[0][:len(m.Submeshes[0])-6]

	assert.Equal(t, 4, BoundaryEdges(m))
	assert.False(t, AnalyzeMesh(m).Closed())
}

func TestAnalyzeSlice(t *testing.T) {
	source := cube()
	s := slicer.New(slicer.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	plane, err := geometry.NewPlane(geometry.NewVector3(0, 1, 0), geometry.NewVector3(0, 0, 0))
	require.NoError(t, err)

	res, err := s.Slice(&slicer.Object{Name: "cube", Mesh: source}, plane)
	require.NoError(t, err)

	report := AnalyzeSlice(source, res)
	assert.True(t, report.Conserved(1e-9))
	assert.True(t, report.Watertight())
	assert.Equal(t, []int{8}, report.Loops)
	require.Len(t, report.Pieces, 2)
	for _, p := range report.Pieces {
		assert.InDelta(t, 0.5, p.Volume, 1e-12)
		assert.InDelta(t, 1.0, p.CapArea, 1e-12)
		assert.Equal(t, 8, p.CapTriangles)
	}

	var out bytes.Buffer
	report.Print(&out)
	assert.Contains(t, out.String(), "cube_Slice_A")
	assert.Contains(t, out.String(), "Open edges:    0")
}
