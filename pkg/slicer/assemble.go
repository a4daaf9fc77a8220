package slicer

import (
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
)

const (
	// SurfaceSubmesh indexes the triangles carried over from the source mesh
	SurfaceSubmesh = 0
	// CapSubmesh indexes the synthesized triangles closing the cut
	CapSubmesh = 1
)

// meshBuilder collects world-space triangles into a local-space indexed mesh
type meshBuilder struct {
	mesh      *mesh.Mesh
	transform geometry.Transform
	mirrored  bool
	indices   map[Vertex]int
}

func newMeshBuilder(name string, transform geometry.Transform) *meshBuilder {
	m := mesh.New(name)
	m.Submeshes = [][]int{nil, nil}
	return &meshBuilder{
		mesh:      m,
		transform: transform,
		mirrored:  transform.IsMirrored(),
		indices:   make(map[Vertex]int),
	}
}

func (b *meshBuilder) vertex(v Vertex) int {
	if idx, ok := b.indices[v]; ok {
		return idx
	}
	idx := b.mesh.AddVertex(
		b.transform.InverseTransformPoint(v.Position),
		b.transform.InverseTransformNormal(v.Normal).Normalize(),
		v.UV,
	)
	b.indices[v] = idx
	return idx
}

func (b *meshBuilder) add(submesh int, triangles []Triangle) {
	for _, t := range triangles {
		ia, ib, ic := b.vertex(t.A), b.vertex(t.B), b.vertex(t.C)
		if b.mirrored {
			// the mirrored transform flips winding again when rendering
			ib, ic = ic, ib
		}
		b.mesh.AddTriangle(submesh, ia, ib, ic)
	}
}

// assemble builds the output mesh of one side. It returns nil when the side
// received no triangles at all.
func assemble(name string, transform geometry.Transform, surface, caps []Triangle) *mesh.Mesh {
	if len(surface) == 0 && len(caps) == 0 {
		return nil
	}
	b := newMeshBuilder(name, transform)
	b.add(SurfaceSubmesh, surface)
	b.add(CapSubmesh, caps)
	return b.mesh
}

// worldTriangles converts the source mesh into world-space triangles with a
// consistent outward winding. Missing normals fall back to the face normal,
// missing UVs to zero.
func worldTriangles(m *mesh.Mesh, transform geometry.Transform) [][3]Vertex {
	mirrored := transform.IsMirrored()
	hasNormals := len(m.Normals) == len(m.Positions)
	hasUVs := len(m.UVs) == len(m.Positions)

	out := make([][3]Vertex, 0, m.TriangleCount())
	for _, sub := range m.Submeshes {
		for i := 0; i+2 < len(sub); i += 3 {
			idx := [3]int{sub[i], sub[i+1], sub[i+2]}
			if mirrored {
				idx[1], idx[2] = idx[2], idx[1]
			}

			var tri [3]Vertex
			for k, vi := range idx {
				tri[k].Position = transform.TransformPoint(m.Positions[vi])
				if hasUVs {
					tri[k].UV = m.UVs[vi]
				}
			}

			face := tri[1].Position.Sub(tri[0].Position).Cross(tri[2].Position.Sub(tri[0].Position)).Normalize()
			for k, vi := range idx {
				if hasNormals && m.Normals[vi].LengthSquared() > 0 {
					tri[k].Normal = transform.TransformNormal(m.Normals[vi]).Normalize()
				} else {
					tri[k].Normal = face
				}
			}
			out = append(out, tri)
		}
	}
	return out
}
