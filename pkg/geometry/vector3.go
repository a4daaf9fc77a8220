package geometry

import "math"

// Vector3 represents a 3D point or vector
type Vector3 struct {
	X, Y, Z float64
}

// NewVector3 creates a new 3D vector
func NewVector3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Mul multiplies the vector by a scalar
func (v Vector3) Mul(scalar float64) Vector3 {
	return Vector3{
		X: v.X * scalar,
		Y: v.Y * scalar,
		Z: v.Z * scalar,
	}
}

// Dot returns the dot product of two vectors
func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude of the vector
func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the distance between two points
func (v Vector3) Distance(other Vector3) float64 {
	return v.Sub(other).Length()
}

// Normalize returns a unit vector in the same direction
func (v Vector3) Normalize() Vector3 {
	length := v.Length()
	if length == 0 {
		return Vector3{}
	}
	return v.Mul(1.0 / length)
}

// Min returns a vector with the minimum components of two vectors
func (v Vector3) Min(other Vector3) Vector3 {
	return Vector3{
		X: math.Min(v.X, other.X),
		Y: math.Min(v.Y, other.Y),
		Z: math.Min(v.Z, other.Z),
	}
}

// Max returns a vector with the maximum components of two vectors
func (v Vector3) Max(other Vector3) Vector3 {
	return Vector3{
		X: math.Max(v.X, other.X),
		Y: math.Max(v.Y, other.Y),
		Z: math.Max(v.Z, other.Z),
	}
}

// Negate returns the vector pointing in the opposite direction
func (v Vector3) Negate() Vector3 {
	return Vector3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// LengthSquared returns the squared magnitude of the vector
func (v Vector3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Lerp linearly interpolates between v and other
func (v Vector3) Lerp(other Vector3, t float64) Vector3 {
	return Vector3{
		X: v.X + (other.X-v.X)*t,
		Y: v.Y + (other.Y-v.Y)*t,
		Z: v.Z + (other.Z-v.Z)*t,
	}
}

// Slerp spherically interpolates between two directions.
// The result is normalized; nearly parallel inputs fall back to Lerp.
func (v Vector3) Slerp(other Vector3, t float64) Vector3 {
	a := v.Normalize()
	b := other.Normalize()
	dot := math.Max(-1, math.Min(1, a.Dot(b)))

	if dot > 0.9995 {
		return a.Lerp(b, t).Normalize()
	}

	theta := math.Acos(dot) * t
	relative := b.Sub(a.Mul(dot)).Normalize()
	if relative.LengthSquared() == 0 {
		// Antiparallel: any perpendicular axis is as good as another
		relative = a.AnyPerpendicular()
	}
	return a.Mul(math.Cos(theta)).Add(relative.Mul(math.Sin(theta))).Normalize()
}

// AnyPerpendicular returns a unit vector perpendicular to v
func (v Vector3) AnyPerpendicular() Vector3 {
	p := v.Cross(NewVector3(0, 1, 0))
	if p.LengthSquared() < 1e-12 {
		p = v.Cross(NewVector3(1, 0, 0))
	}
	return p.Normalize()
}

// ApproxEqual reports whether two vectors are within tolerance of each other
func (v Vector3) ApproxEqual(other Vector3, tolerance float64) bool {
	return v.Sub(other).LengthSquared() <= tolerance*tolerance
}
