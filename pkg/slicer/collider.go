package slicer

import (
	"fmt"
	"math"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// ColliderShape is the primitive chosen to approximate a piece for physics
type ColliderShape int

const (
	ColliderBox ColliderShape = iota
	ColliderSphere
	ColliderCapsule
)

func (s ColliderShape) String() string {
	switch s {
	case ColliderSphere:
		return "sphere"
	case ColliderCapsule:
		return "capsule"
	default:
		return "box"
	}
}

// Collider describes a primitive collider in the piece's local space
type Collider struct {
	Shape  ColliderShape
	Center geometry.Vector3
	// Size is the box extent
	Size geometry.Vector3
	// Radius applies to spheres and capsules
	Radius float64
	// Height and Axis (0=X, 1=Y, 2=Z) apply to capsules
	Height float64
	Axis   int
}

func (c Collider) String() string {
	switch c.Shape {
	case ColliderSphere:
		return fmt.Sprintf("sphere r=%.4f", c.Radius)
	case ColliderCapsule:
		return fmt.Sprintf("capsule axis=%c h=%.4f r=%.4f", "XYZ"[c.Axis], c.Height, c.Radius)
	default:
		return fmt.Sprintf("box %.4f x %.4f x %.4f", c.Size.X, c.Size.Y, c.Size.Z)
	}
}

const (
	cubicTolerance   = 0.1
	elongationFactor = 1.5
)

// ChooseCollider picks a sphere for near-cubic bounds, a capsule for bounds
// elongated along one axis and a box otherwise
func ChooseCollider(bounds geometry.BoundingBox) Collider {
	if bounds.IsEmpty() {
		return Collider{Shape: ColliderBox}
	}
	size := bounds.Size()
	center := bounds.Center()
	extents := [3]float64{size.X, size.Y, size.Z}

	maxExtent := math.Max(extents[0], math.Max(extents[1], extents[2]))
	minExtent := math.Min(extents[0], math.Min(extents[1], extents[2]))

	if maxExtent-minExtent <= cubicTolerance*maxExtent {
		return Collider{Shape: ColliderSphere, Center: center, Size: size, Radius: maxExtent / 2}
	}

	for axis := 0; axis < 3; axis++ {
		a, b := extents[(axis+1)%3], extents[(axis+2)%3]
		if extents[axis] >= elongationFactor*a && extents[axis] >= elongationFactor*b {
			return Collider{
				Shape:  ColliderCapsule,
				Center: center,
				Size:   size,
				Radius: math.Max(a, b) / 2,
				Height: extents[axis],
				Axis:   axis,
			}
		}
	}

	return Collider{Shape: ColliderBox, Center: center, Size: size}
}
