package geometry

import "errors"

// ErrZeroNormal is returned when a plane is built from a zero-length normal
var ErrZeroNormal = errors.New("plane normal has zero length")

// Plane is an infinite plane given by a unit normal and a point on the plane
type Plane struct {
	Normal Vector3
	Point  Vector3
}

// NewPlane creates a plane, normalizing the given normal
func NewPlane(normal, point Vector3) (Plane, error) {
	if normal.LengthSquared() < 1e-18 {
		return Plane{}, ErrZeroNormal
	}
	return Plane{Normal: normal.Normalize(), Point: point}, nil
}

// Distance returns the signed distance of p to the plane.
// Points on the side the normal points to have positive distance.
func (p Plane) Distance(point Vector3) float64 {
	return p.Normal.Dot(point.Sub(p.Point))
}

// Flipped returns the same plane with the normal reversed
func (p Plane) Flipped() Plane {
	return Plane{Normal: p.Normal.Negate(), Point: p.Point}
}

// Basis returns two orthonormal vectors spanning the plane.
// The pair is right handed: U.Cross(V) equals the plane normal.
func (p Plane) Basis() (u, v Vector3) {
	u = p.Normal.Cross(NewVector3(0, 1, 0))
	if u.LengthSquared() < 1e-6 {
		u = p.Normal.Cross(NewVector3(1, 0, 0))
	}
	u = u.Normalize()
	v = p.Normal.Cross(u)
	return u, v
}

// Project2D expresses a point in the plane's 2D basis, relative to the plane point
func (p Plane) Project2D(point Vector3, u, v Vector3) Vector2 {
	d := point.Sub(p.Point)
	return Vector2{X: d.Dot(u), Y: d.Dot(v)}
}
