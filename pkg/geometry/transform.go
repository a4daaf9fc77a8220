package geometry

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform places an object in the world: translation, rotation and
// (possibly non-uniform, possibly negative) scale, applied as T * R * S.
//
// The zero value is the identity transform: a zero quaternion is read as
// no rotation and an all-zero scale as unit scale.
type Transform struct {
	Position Vector3
	Rotation mgl64.Quat
	Scale    Vector3
}

// IdentityTransform returns a transform that leaves points unchanged
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    NewVector3(1, 1, 1),
	}
}

// NewTransform builds a transform from a position, Euler angles in degrees
// (applied X, then Y, then Z) and a scale.
func NewTransform(position, eulerDegrees, scale Vector3) Transform {
	rotation := mgl64.AnglesToQuat(
		mgl64.DegToRad(eulerDegrees.Z),
		mgl64.DegToRad(eulerDegrees.Y),
		mgl64.DegToRad(eulerDegrees.X),
		mgl64.ZYX,
	)
	return Transform{Position: position, Rotation: rotation.Normalize(), Scale: scale}
}

func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

func (t Transform) scale() Vector3 {
	if t.Scale == (Vector3{}) {
		return NewVector3(1, 1, 1)
	}
	return t.Scale
}

// Matrix returns the 4x4 model matrix T * R * S
func (t Transform) Matrix() mgl64.Mat4 {
	s := t.scale()
	return mgl64.Translate3D(t.Position.X, t.Position.Y, t.Position.Z).
		Mul4(t.rotation().Mat4()).
		Mul4(mgl64.Scale3D(s.X, s.Y, s.Z))
}

// Determinant returns the determinant of the linear part of the transform
func (t Transform) Determinant() float64 {
	return t.Matrix().Mat3().Det()
}

// IsMirrored reports whether the transform flips handedness (negative determinant)
func (t Transform) IsMirrored() bool {
	return t.Determinant() < 0
}

// TransformPoint maps a local-space point to world space
func (t Transform) TransformPoint(p Vector3) Vector3 {
	s := t.scale()
	r := t.rotation().Rotate(mgl64.Vec3{p.X * s.X, p.Y * s.Y, p.Z * s.Z})
	return NewVector3(r[0], r[1], r[2]).Add(t.Position)
}

// InverseTransformPoint maps a world-space point to local space
func (t Transform) InverseTransformPoint(p Vector3) Vector3 {
	d := p.Sub(t.Position)
	r := t.rotation().Inverse().Rotate(mgl64.Vec3{d.X, d.Y, d.Z})
	s := t.scale()
	return NewVector3(safeDiv(r[0], s.X), safeDiv(r[1], s.Y), safeDiv(r[2], s.Z))
}

// TransformNormal maps a local-space surface normal to world space using the
// inverse transpose of the linear part, so normals stay perpendicular to
// surfaces under non-uniform scale. The result is normalized.
func (t Transform) TransformNormal(n Vector3) Vector3 {
	s := t.scale()
	r := t.rotation().Rotate(mgl64.Vec3{safeDiv(n.X, s.X), safeDiv(n.Y, s.Y), safeDiv(n.Z, s.Z)})
	return NewVector3(r[0], r[1], r[2]).Normalize()
}

// InverseTransformNormal maps a world-space normal back to local space
func (t Transform) InverseTransformNormal(n Vector3) Vector3 {
	r := t.rotation().Inverse().Rotate(mgl64.Vec3{n.X, n.Y, n.Z})
	s := t.scale()
	return NewVector3(r[0]*s.X, r[1]*s.Y, r[2]*s.Z).Normalize()
}

// TransformDirection rotates a local-space direction into world space, ignoring scale
func (t Transform) TransformDirection(d Vector3) Vector3 {
	r := t.rotation().Rotate(mgl64.Vec3{d.X, d.Y, d.Z})
	return NewVector3(r[0], r[1], r[2])
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
