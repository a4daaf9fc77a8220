package slicer

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	origin = geometry.NewVector3(0, 0, 0)
	up     = geometry.NewVector3(0, 1, 0)
)

func TestSliceUnitCube(t *testing.T) {
	obj := &Object{Name: "cube", Mesh: unitCube("cube", origin, 1)}
	res, err := quietSlicer().Slice(obj, mustPlane(t, up, origin))
	require.NoError(t, err)
	require.True(t, res.Cut())

	assert.Equal(t, 8, res.Segments)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Loops, 1)
	assert.Equal(t, 8, res.Loops[0].Len())
	assert.True(t, res.Loops[0].Centroid().ApproxEqual(origin, 1e-12))
	assert.InDelta(t, 4.0, res.Loops[0].Perimeter(), 1e-9)

	for _, p := range res.Pieces() {
		assert.InDelta(t, 3.0, p.Mesh.SurfaceArea(SurfaceSubmesh), 1e-9, p.Name)
		assert.InDelta(t, 1.0, p.Mesh.SurfaceArea(CapSubmesh), 1e-9, p.Name)
		assert.Equal(t, 8, len(p.Mesh.Submeshes[CapSubmesh])/3)
	}
	assert.Equal(t, "cube_Slice_A", res.A.Name)
	assert.Equal(t, "cube_Slice_B", res.B.Name)

	bboxA := res.A.Mesh.BoundingBox()
	assert.InDelta(t, 0.0, bboxA.Min.Y, 1e-12)
	assert.InDelta(t, 0.5, bboxA.Max.Y, 1e-12)
	bboxB := res.B.Mesh.BoundingBox()
	assert.InDelta(t, -0.5, bboxB.Min.Y, 1e-12)
	assert.InDelta(t, 0.0, bboxB.Max.Y, 1e-12)
}

func TestSliceConservesSurfaceArea(t *testing.T) {
	tests := []struct {
		name   string
		mesh   *mesh.Mesh
		normal geometry.Vector3
		point  geometry.Vector3
	}{
		{"cube oblique", unitCube("cube", origin, 1), geometry.NewVector3(1, 2, 3), geometry.NewVector3(0.1, 0.05, -0.02)},
		{"cube diagonal", unitCube("cube", origin, 2), geometry.NewVector3(1, 1, 1), origin},
		{"torus", torus(1, 0.3, 32, 16), geometry.NewVector3(0.3, 1, 0.1), geometry.NewVector3(0, 0.0123, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.mesh.SurfaceArea(-1)
			res, err := quietSlicer().Slice(&Object{Name: tt.name, Mesh: tt.mesh}, mustPlane(t, tt.normal, tt.point))
			require.NoError(t, err)
			require.True(t, res.Cut())

			total := res.A.Mesh.SurfaceArea(SurfaceSubmesh) + res.B.Mesh.SurfaceArea(SurfaceSubmesh)
			assert.InDelta(t, original, total, 1e-9*original)
		})
	}
}

func TestSliceIsWatertight(t *testing.T) {
	tests := []struct {
		name  string
		mesh  *mesh.Mesh
		plane geometry.Plane
	}{
		{"cube", unitCube("cube", origin, 1), geometry.Plane{Normal: up, Point: origin}},
		{"cube oblique", unitCube("cube", origin, 1), geometry.Plane{Normal: geometry.NewVector3(1, 2, 3).Normalize(), Point: geometry.NewVector3(0.1, 0.05, -0.02)}},
		{"torus across tube", torus(1, 0.3, 24, 12), geometry.Plane{Normal: geometry.NewVector3(1, 0, 0), Point: geometry.NewVector3(0.0123, 0, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := quietSlicer().Slice(&Object{Name: tt.name, Mesh: tt.mesh}, tt.plane)
			require.NoError(t, err)
			require.True(t, res.Cut())
			for _, p := range res.Pieces() {
				assert.Zero(t, unpairedEdges(p, 1e-9), p.Name)
			}
		})
	}
}

func TestSliceTwoDisjointLoops(t *testing.T) {
	m := unitCube("pair", geometry.NewVector3(-2, 0, 0), 1)
	appendCube(m, geometry.NewVector3(2, 0, 0), 1)

	res, err := quietSlicer().Slice(&Object{Name: "pair", Mesh: m}, mustPlane(t, up, origin))
	require.NoError(t, err)
	require.Len(t, res.Loops, 2)
	for _, loop := range res.Loops {
		assert.Equal(t, 8, loop.Len())
	}
	for _, p := range res.Pieces() {
		assert.Equal(t, 16, len(p.Mesh.Submeshes[CapSubmesh])/3)
		assert.InDelta(t, 2.0, p.Mesh.SurfaceArea(CapSubmesh), 1e-9)
	}
}

func TestSliceTorusTube(t *testing.T) {
	plane := mustPlane(t, geometry.NewVector3(1, 0, 0), geometry.NewVector3(0.0123, 0, 0))
	res, err := quietSlicer().Slice(&Object{Name: "torus", Mesh: torus(1, 0.3, 24, 12)}, plane)
	require.NoError(t, err)
	require.Len(t, res.Loops, 2)
	assert.Empty(t, res.Warnings)

	z0, z1 := res.Loops[0].Centroid().Z, res.Loops[1].Centroid().Z
	assert.Less(t, z0*z1, 0.0, "loops should sit on opposite sides of the ring")
	assert.InDelta(t, 1.0, math.Abs(z0), 0.2)
	assert.InDelta(t, 1.0, math.Abs(z1), 0.2)
	for _, loop := range res.Loops {
		assert.GreaterOrEqual(t, loop.Len(), 3)
		for _, p := range loop.Points {
			assert.InDelta(t, 0, plane.Distance(p), 1e-9)
		}
	}
}

func TestSliceKeepsWindingOutward(t *testing.T) {
	tests := []struct {
		name      string
		transform geometry.Transform
	}{
		{"identity", geometry.IdentityTransform()},
		{"rotated", geometry.NewTransform(geometry.NewVector3(1, 2, 3), geometry.NewVector3(30, 45, 10), geometry.NewVector3(1, 1, 1))},
		{"mirrored", geometry.NewTransform(origin, origin, geometry.NewVector3(-1, 1, 1))},
		{"mirrored scaled", geometry.NewTransform(geometry.NewVector3(0, 0.2, 0), geometry.NewVector3(0, 20, 0), geometry.NewVector3(2, -1, 1.5))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := &Object{Name: "cube", Mesh: unitCube("cube", origin, 1), Transform: tt.transform}
			plane := mustPlane(t, geometry.NewVector3(0.2, 1, 0.1), tt.transform.Position)

			res, err := quietSlicer().Slice(obj, plane)
			require.NoError(t, err)
			require.True(t, res.Cut())

			// pieces keep the source convention: outward in local space
			for _, p := range res.Pieces() {
				center := vertexMean(p)
				for _, sub := range []int{SurfaceSubmesh, CapSubmesh} {
					normals, centers := localFaces(p, sub)
					for i := range normals {
						assert.Greater(t, normals[i].Dot(centers[i].Sub(center)), 0.0,
							"%s submesh %d triangle %d faces inward", p.Name, sub, i)
					}
				}
			}
		})
	}
}

func TestSliceCapNormals(t *testing.T) {
	res, err := quietSlicer().Slice(&Object{Name: "cube", Mesh: unitCube("cube", origin, 1)}, mustPlane(t, up, origin))
	require.NoError(t, err)

	for _, idx := range res.A.Mesh.Submeshes[CapSubmesh] {
		assert.True(t, res.A.Mesh.Normals[idx].ApproxEqual(up.Negate(), 1e-12))
		uv := res.A.Mesh.UVs[idx]
		assert.True(t, uv.X >= 0 && uv.X <= 1 && uv.Y >= 0 && uv.Y <= 1, "uv %v out of range", uv)
	}
	for _, idx := range res.B.Mesh.Submeshes[CapSubmesh] {
		assert.True(t, res.B.Mesh.Normals[idx].ApproxEqual(up, 1e-12))
	}
	assert.True(t, res.A.Impulse.ApproxEqual(up, 1e-12))
	assert.True(t, res.B.Impulse.ApproxEqual(up.Negate(), 1e-12))
}

func TestSlicedTrianglesStayOnTheirSide(t *testing.T) {
	plane := mustPlane(t, geometry.NewVector3(1, 2, 3), geometry.NewVector3(0.1, 0.05, -0.02))
	res, err := quietSlicer().Slice(&Object{Name: "cube", Mesh: unitCube("cube", origin, 1)}, plane)
	require.NoError(t, err)

	for _, tri := range res.A.Mesh.Triangles(SurfaceSubmesh) {
		cl := Classify(plane, tri.V1, tri.V2, tri.V3, DefaultEpsilon)
		assert.False(t, cl.Split)
		assert.Equal(t, SideA, cl.Side)
	}
	for _, tri := range res.B.Mesh.Triangles(SurfaceSubmesh) {
		cl := Classify(plane, tri.V1, tri.V2, tri.V3, DefaultEpsilon)
		assert.False(t, cl.Split)
		assert.Equal(t, SideB, cl.Side)
	}
}

func TestSlicePlaneMissesMesh(t *testing.T) {
	m := unitCube("cube", origin, 1)
	res, err := quietSlicer().Slice(&Object{Name: "cube", Mesh: m}, mustPlane(t, up, geometry.NewVector3(0, 5, 0)))
	require.NoError(t, err)

	assert.False(t, res.Cut())
	assert.Nil(t, res.A)
	require.NotNil(t, res.B)
	assert.Zero(t, res.Segments)
	assert.Empty(t, res.Loops)
	assert.Equal(t, 12, len(res.B.Mesh.Submeshes[SurfaceSubmesh])/3)
	assert.Empty(t, res.B.Mesh.Submeshes[CapSubmesh])
	assert.InDelta(t, m.SurfaceArea(-1), res.B.Mesh.SurfaceArea(-1), 1e-12)
}

func TestSliceSingleTriangleAbovePlane(t *testing.T) {
	m := mesh.New("tri")
	a := m.AddVertex(geometry.NewVector3(0, 1, 0), up, geometry.NewVector2(0, 0))
	b := m.AddVertex(geometry.NewVector3(1, 1, 0), up, geometry.NewVector2(1, 0))
	c := m.AddVertex(geometry.NewVector3(0, 2, 1), up, geometry.NewVector2(0, 1))
	m.AddTriangle(0, a, b, c)

	res, err := quietSlicer().Slice(&Object{Name: "tri", Mesh: m}, mustPlane(t, up, origin))
	require.NoError(t, err)
	require.NotNil(t, res.A)
	assert.Nil(t, res.B)
	assert.Equal(t, 1, res.A.Mesh.TriangleCount())
	assert.Empty(t, res.Loops)
}

func TestSliceOpenSurfaceWarns(t *testing.T) {
	m := mesh.New("sheet")
	a := m.AddVertex(geometry.NewVector3(0, -1, 0), geometry.Vector3{}, geometry.NewVector2(0, 0))
	b := m.AddVertex(geometry.NewVector3(1, -1, 0), geometry.Vector3{}, geometry.NewVector2(1, 0))
	c := m.AddVertex(geometry.NewVector3(0, 1, 0), geometry.Vector3{}, geometry.NewVector2(0, 1))
	m.AddTriangle(0, a, b, c)

	res, err := quietSlicer().Slice(&Object{Name: "sheet", Mesh: m}, mustPlane(t, up, origin))
	require.NoError(t, err)
	require.True(t, res.Cut())

	assert.Equal(t, 1, res.Segments)
	assert.Empty(t, res.Loops)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], ErrOpenCutTopology)
	assert.Equal(t, 1, res.A.Mesh.TriangleCount())
	assert.Equal(t, 2, res.B.Mesh.TriangleCount())

	// the cut vertex sits halfway up the left edge
	found := false
	for i, p := range res.A.Mesh.Positions {
		if p.ApproxEqual(geometry.NewVector3(0, 0, 0), 1e-12) {
			found = true
			assert.InDelta(t, 0.5, res.A.Mesh.UVs[i].Y, 1e-12)
			assert.InDelta(t, 0, res.A.Mesh.UVs[i].X, 1e-12)
		}
	}
	assert.True(t, found)
}

func TestSliceDegenerateTriangle(t *testing.T) {
	m := mesh.New("degenerate")
	a := m.AddVertex(geometry.NewVector3(0, 0, 0), geometry.Vector3{}, geometry.Vector2{})
	b := m.AddVertex(geometry.NewVector3(1, 2, 0), geometry.Vector3{}, geometry.Vector2{})
	c := m.AddVertex(geometry.NewVector3(1, -1, 1), geometry.Vector3{}, geometry.Vector2{})
	m.AddTriangle(0, a, b, c)

	res, err := quietSlicer().Slice(&Object{Name: "degenerate", Mesh: m}, mustPlane(t, up, origin))
	require.NoError(t, err)
	assert.Equal(t, 1, res.DegenerateTriangles)
	assert.Zero(t, res.Segments)
	require.NotNil(t, res.A)
	assert.Nil(t, res.B)
}

func TestSliceErrors(t *testing.T) {
	unreadable := unitCube("locked", origin, 1)
	unreadable.Readable = false

	broken := unitCube("broken", origin, 1)
	broken.Submeshes[0][4] = 99

	tests := []struct {
		name  string
		obj   *Object
		plane geometry.Plane
		want  error
	}{
		{"unreadable", &Object{Name: "locked", Mesh: unreadable}, geometry.Plane{Normal: up}, ErrUnreadableMesh},
		{"index out of range", &Object{Name: "broken", Mesh: broken}, geometry.Plane{Normal: up}, ErrInvalidMesh},
		{"no mesh", &Object{Name: "empty"}, geometry.Plane{Normal: up}, ErrInvalidMesh},
		{"zero normal", &Object{Name: "cube", Mesh: unitCube("cube", origin, 1)}, geometry.Plane{}, ErrInvalidPlane},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := quietSlicer().Slice(tt.obj, tt.plane)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSliceDoesNotMutateSource(t *testing.T) {
	m := torus(1, 0.3, 16, 8)
	before := *m
	before.Positions = append([]geometry.Vector3(nil), m.Positions...)
	before.Submeshes = [][]int{append([]int(nil), m.Submeshes[0]...)}

	_, err := quietSlicer().Slice(&Object{Name: "torus", Mesh: m}, mustPlane(t, up, origin))
	require.NoError(t, err)
	assert.Equal(t, before.Positions, m.Positions)
	assert.Equal(t, before.Submeshes, m.Submeshes)
}

func TestSliceMaterials(t *testing.T) {
	skin := mesh.BasicMaterial{Name: "skin", Color: mesh.RGB(0.2, 0.6, 0.1)}
	obj := &Object{Name: "lime", Mesh: unitCube("lime", origin, 1), Material: skin}

	res, err := quietSlicer().Slice(obj, mustPlane(t, up, origin))
	require.NoError(t, err)
	assert.Equal(t, skin, res.A.Materials[SurfaceSubmesh])
	capMat, ok := res.A.Materials[CapSubmesh].(mesh.CapMaterial)
	require.True(t, ok)
	assert.Equal(t, skin.Color, capMat.Color)
	assert.True(t, capMat.Unlit)
	assert.True(t, capMat.DoubleSided)

	override := mesh.RGB(1, 0, 0)
	s := New(Options{CapColor: &override, Logger: discardLogger()})
	res, err = s.Slice(obj, mustPlane(t, up, origin))
	require.NoError(t, err)
	assert.Equal(t, override, res.B.Materials[CapSubmesh].(mesh.CapMaterial).Color)
}

func TestSliceGroup(t *testing.T) {
	parent := &Object{
		Name: "bunch",
		Children: []*Object{
			{Name: "left", Mesh: unitCube("left", geometry.NewVector3(-2, 0, 0), 1)},
			{Name: "right", Mesh: unitCube("right", geometry.NewVector3(2, 0, 0), 1)},
			{Name: "stem", Mesh: unitCube("stem", geometry.NewVector3(0, 3, 0), 1)},
		},
	}

	group, err := quietSlicer().SliceGroup(parent, mustPlane(t, up, origin))
	require.NoError(t, err)
	assert.Len(t, group.Results, 3)
	assert.Len(t, group.A, 3)
	assert.Len(t, group.B, 2)

	group, err = quietSlicer().SliceGroup(parent, mustPlane(t, up, geometry.NewVector3(0, 10, 0)))
	require.NoError(t, err)
	assert.Nil(t, group.A)
	assert.Len(t, group.B, 3)

	locked := unitCube("locked", origin, 1)
	locked.Readable = false
	parent.Children = append(parent.Children, &Object{Name: "locked", Mesh: locked})
	_, err = quietSlicer().SliceGroup(parent, mustPlane(t, up, origin))
	assert.ErrorIs(t, err, ErrUnreadableMesh)
}

func TestIsSlice(t *testing.T) {
	assert.True(t, IsSlice("apple_Slice_A"))
	assert.True(t, IsSlice(PieceName("apple_Slice_A", SideB)))
	assert.False(t, IsSlice("apple"))
	assert.False(t, IsSlice("Slice_A_apple"))
}
