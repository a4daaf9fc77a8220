package preview

import (
	"errors"
	"math"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// Camera is an orbiting perspective camera
type Camera struct {
	Position geometry.Vector3
	Target   geometry.Vector3
	Up       geometry.Vector3
	FOV      float64 // Field of view in radians
	Distance float64
	Pitch    float64 // elevation above the target, radians
	Yaw      float64 // rotation around the up axis, radians
}

// NewCamera creates a camera that frames the bounding box
func NewCamera(bbox geometry.BoundingBox) *Camera {
	center := bbox.Center()
	size := bbox.Size()
	distance := math.Max(size.X, math.Max(size.Y, size.Z)) * 2.0
	if distance <= 0 {
		distance = 1
	}

	c := &Camera{
		Target:   center,
		Up:       geometry.NewVector3(0, 1, 0),
		FOV:      math.Pi / 4,
		Distance: distance,
		Pitch:    0.45,
		Yaw:      0.6,
	}
	c.updatePosition()
	return c
}

func (c *Camera) updatePosition() {
	x := c.Distance * math.Cos(c.Pitch) * math.Sin(c.Yaw)
	y := c.Distance * math.Sin(c.Pitch)
	z := c.Distance * math.Cos(c.Pitch) * math.Cos(c.Yaw)
	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Orbit rotates the camera around its target
func (c *Camera) Orbit(deltaPitch, deltaYaw float64) {
	c.Pitch += deltaPitch
	c.Yaw += deltaYaw

	maxAngle := math.Pi/2 - 0.1
	c.Pitch = math.Max(-maxAngle, math.Min(maxAngle, c.Pitch))
	c.updatePosition()
}

// Zoom scales the camera distance by (1 + delta)
func (c *Camera) Zoom(delta float64) {
	c.Distance = math.Max(0.1, c.Distance*(1.0+delta))
	c.updatePosition()
}

func (c *Camera) axes() (forward, right, up geometry.Vector3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// Project maps a world point to screen coordinates and its view depth
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward, right, up := c.axes()

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := math.Max(relative.Dot(forward), 0.01)

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)
	return screenX, screenY, z
}

// Unproject returns the world-space ray through a screen position
func (c *Camera) Unproject(screenX, screenY, width, height float64) (origin, direction geometry.Vector3) {
	ndcX := (2.0 * screenX / width) - 1.0
	ndcY := 1.0 - (2.0 * screenY / height)

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)
	forward, right, up := c.axes()

	dir := forward.Add(right.Mul(ndcX * fovScale * aspect)).Add(up.Mul(ndcY * fovScale))
	return c.Position, dir.Normalize()
}

// ErrShortStroke is returned when a stroke is too short to define a plane
var ErrShortStroke = errors.New("stroke too short")

// StrokePlane returns the plane swept by the view rays under a screen-space
// stroke, as if a blade were drawn across the picture. The plane passes
// through the camera target's depth along the middle of the stroke.
func (c *Camera) StrokePlane(x1, y1, x2, y2, width, height float64) (geometry.Plane, error) {
	if math.Hypot(x2-x1, y2-y1) < 2 {
		return geometry.Plane{}, ErrShortStroke
	}
	origin, d1 := c.Unproject(x1, y1, width, height)
	_, d2 := c.Unproject(x2, y2, width, height)

	normal := d1.Cross(d2)
	_, mid := c.Unproject((x1+x2)/2, (y1+y2)/2, width, height)
	point := origin.Add(mid.Mul(c.Distance))
	return geometry.NewPlane(normal, point)
}
