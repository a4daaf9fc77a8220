// Package blade turns the motion of a tracked blade into cutting planes.
package blade

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/slicer"
)

const (
	// SampleCount is the number of velocity samples averaged by a tracker
	SampleCount = 10
	// DefaultMinSpeed is the blade speed a cut has to exceed
	DefaultMinSpeed = 2.0

	minFrameTime = 1e-4
	// squared length of the normalized cross product below which the blade
	// is moving along its own edge
	minNormalLengthSquared = 0.1
)

var (
	// ErrTooSlow is returned when the blade moves slower than the minimum speed
	ErrTooSlow = errors.New("blade too slow")
	// ErrNotSliceable is returned for objects that are already slice pieces
	ErrNotSliceable = errors.New("object is not sliceable")
)

// Tracker follows a blade pose frame by frame and keeps a ring buffer of
// its instantaneous velocities
type Tracker struct {
	MinSpeed float64

	pose    geometry.Transform
	last    geometry.Vector3
	started bool
	samples [SampleCount]geometry.Vector3
	next    int
	logger  *slog.Logger
}

// NewTracker creates a tracker with the given minimum speed; non-positive
// values select DefaultMinSpeed
func NewTracker(minSpeed float64, logger *slog.Logger) *Tracker {
	if minSpeed <= 0 {
		minSpeed = DefaultMinSpeed
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{MinSpeed: minSpeed, pose: geometry.IdentityTransform(), logger: logger}
}

// Update records the blade pose after dt seconds
func (t *Tracker) Update(pose geometry.Transform, dt float64) {
	var v geometry.Vector3
	if t.started && dt >= minFrameTime {
		v = pose.Position.Sub(t.last).Mul(1 / dt)
	}
	t.samples[t.next] = v
	t.next = (t.next + 1) % SampleCount
	t.last = pose.Position
	t.pose = pose
	t.started = true
}

// Reset clears the velocity history
func (t *Tracker) Reset() {
	t.samples = [SampleCount]geometry.Vector3{}
	t.next = 0
	t.started = false
}

// Pose returns the last recorded blade pose
func (t *Tracker) Pose() geometry.Transform {
	return t.pose
}

// Velocity returns the average of the non-zero velocity samples
func (t *Tracker) Velocity() geometry.Vector3 {
	var sum geometry.Vector3
	count := 0
	for _, s := range t.samples {
		if s != (geometry.Vector3{}) {
			sum = sum.Add(s)
			count++
		}
	}
	if count == 0 {
		return geometry.Vector3{}
	}
	return sum.Mul(1 / float64(count))
}

// Speed returns the length of the average velocity
func (t *Tracker) Speed() float64 {
	return t.Velocity().Length()
}

// Fast reports whether the blade is moving fast enough to cut
func (t *Tracker) Fast() bool {
	return t.Speed() > t.MinSpeed
}

// Forward returns the direction the blade edge points along
func (t *Tracker) Forward() geometry.Vector3 {
	return t.pose.TransformDirection(geometry.NewVector3(0, 0, 1)).Normalize()
}

// Right returns the flat side of the blade
func (t *Tracker) Right() geometry.Vector3 {
	return t.pose.TransformDirection(geometry.NewVector3(1, 0, 0)).Normalize()
}

// Normal returns the cutting plane normal, perpendicular to both the motion
// and the blade. When the blade moves along its own edge the blade's right
// side is used instead.
func (t *Tracker) Normal() geometry.Vector3 {
	n := t.Velocity().Normalize().Cross(t.Forward()).Normalize()
	if n.LengthSquared() < minNormalLengthSquared {
		return t.Right()
	}
	return n
}

// SlicePoint returns the point of bounds closest to the blade
func (t *Tracker) SlicePoint(bounds geometry.BoundingBox) geometry.Vector3 {
	if bounds.IsEmpty() {
		return t.pose.Position
	}
	return bounds.ClosestPoint(t.pose.Position)
}

// Plane returns the cutting plane through the object bounds
func (t *Tracker) Plane(bounds geometry.BoundingBox) (geometry.Plane, error) {
	return geometry.NewPlane(t.Normal(), t.SlicePoint(bounds))
}

// Sliceable reports whether an object may be cut; slice pieces are not cut again
func Sliceable(obj *slicer.Object) bool {
	return obj != nil && obj.Mesh != nil && !slicer.IsSlice(obj.Name)
}

// WorldBounds returns the world-space bounds of an object's mesh
func WorldBounds(obj *slicer.Object) geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	if obj.Mesh == nil {
		return bbox
	}
	for _, sub := range obj.Mesh.Submeshes {
		for _, i := range sub {
			bbox.Extend(obj.Transform.TransformPoint(obj.Mesh.Positions[i]))
		}
	}
	return bbox
}

// Cut slices obj if the blade is fast enough
func (t *Tracker) Cut(s *slicer.Slicer, obj *slicer.Object) (*slicer.Result, error) {
	if !Sliceable(obj) {
		return nil, ErrNotSliceable
	}
	speed := t.Speed()
	if speed <= t.MinSpeed {
		t.logger.Debug("blade too slow", "object", obj.Name, "speed", speed, "min", t.MinSpeed)
		return nil, fmt.Errorf("%w: %.2f <= %.2f", ErrTooSlow, speed, t.MinSpeed)
	}

	plane, err := t.Plane(WorldBounds(obj))
	if err != nil {
		return nil, fmt.Errorf("cutting plane for %s: %w", obj.Name, err)
	}
	res, err := s.Slice(obj, plane)
	if err != nil {
		return nil, err
	}
	t.logger.Info("sliced", "object", obj.Name, "speed", speed, "loops", len(res.Loops))
	return res, nil
}
