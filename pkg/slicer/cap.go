package slicer

import (
	"math"
	"sort"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// Cap holds the fan triangles closing one loop, for both sides of the cut
type Cap struct {
	Centroid geometry.Vector3
	A        []Triangle
	B        []Triangle
}

// Centroid returns the arithmetic mean of the loop points
func (l Loop) Centroid() geometry.Vector3 {
	var sum geometry.Vector3
	for _, p := range l.Points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(l.Points)))
}

// TriangulateCap fans the loop around its centroid. Points are ordered by
// angle in the plane basis, which is only correct for loops that are star
// shaped with respect to the centroid.
//
// Both caps face away from their piece: side A's cap faces against the plane
// normal and side B's cap faces along it.
func TriangulateCap(plane geometry.Plane, loop Loop) Cap {
	u, v := plane.Basis()
	centroid := loop.Centroid()
	origin := plane.Project2D(centroid, u, v)

	type polar struct {
		point geometry.Vector3
		local geometry.Vector2
		angle float64
	}
	points := make([]polar, len(loop.Points))
	radius := 0.0
	for i, p := range loop.Points {
		local := plane.Project2D(p, u, v).Sub(origin)
		points[i] = polar{point: p, local: local, angle: local.Angle()}
		radius = math.Max(radius, local.Length())
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].angle < points[j].angle
	})

	uvOf := func(local geometry.Vector2) geometry.Vector2 {
		if radius == 0 {
			return geometry.NewVector2(0.5, 0.5)
		}
		return geometry.NewVector2(0.5+local.X/(2*radius), 0.5+local.Y/(2*radius))
	}

	up := plane.Normal
	down := plane.Normal.Negate()
	vertex := func(p geometry.Vector3, local geometry.Vector2, n geometry.Vector3) Vertex {
		return Vertex{Position: p, Normal: n, UV: uvOf(local)}
	}

	c := Cap{Centroid: centroid}
	n := len(points)
	for i := 0; i < n; i++ {
		p0, p1 := points[i], points[(i+1)%n]

		// counter-clockwise around the plane normal
		c.B = append(c.B, Triangle{
			A:         vertex(centroid, geometry.Vector2{}, up),
			B:         vertex(p0.point, p0.local, up),
			C:         vertex(p1.point, p1.local, up),
			Reference: up,
		})
		c.A = append(c.A, Triangle{
			A:         vertex(centroid, geometry.Vector2{}, down),
			B:         vertex(p1.point, p1.local, down),
			C:         vertex(p0.point, p0.local, down),
			Reference: down,
		})
	}
	return c
}
