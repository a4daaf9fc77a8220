package slicer

import "github.com/philipparndt/goslice/pkg/geometry"

// Vertex is a world-space vertex with its interpolated attributes
type Vertex struct {
	Position geometry.Vector3
	Normal   geometry.Vector3
	UV       geometry.Vector2
}

// Lerp interpolates towards other: position and UV linearly, normal spherically
func (v Vertex) Lerp(other Vertex, t float64) Vertex {
	return Vertex{
		Position: v.Position.Lerp(other.Position, t),
		Normal:   v.Normal.Slerp(other.Normal, t),
		UV:       v.UV.Lerp(other.UV, t),
	}
}

// Triangle is an ordered vertex triple. Reference is the normal the winding
// was aligned with when the triangle was emitted.
type Triangle struct {
	A, B, C   Vertex
	Reference geometry.Vector3
}

// FaceNormal returns the normalized cross product of the edge vectors
func (t Triangle) FaceNormal() geometry.Vector3 {
	return t.B.Position.Sub(t.A.Position).Cross(t.C.Position.Sub(t.A.Position)).Normalize()
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	return t.Geometry().Area()
}

// Geometry returns the positions as a plain geometry triangle
func (t Triangle) Geometry() geometry.Triangle {
	return geometry.Triangle{Normal: t.Reference, V1: t.A.Position, V2: t.B.Position, V3: t.C.Position}
}

// Flipped returns the triangle with reversed winding
func (t Triangle) Flipped() Triangle {
	return Triangle{A: t.A, B: t.C, C: t.B, Reference: t.Reference}
}

// Segment is the edge along which one source triangle crosses the cutting plane
type Segment struct {
	P0, P1 geometry.Vector3
}
