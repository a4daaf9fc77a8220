package blade

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(x, y, z float64) geometry.Transform {
	return geometry.Transform{Position: geometry.NewVector3(x, y, z)}
}

// swing moves the blade along +X at the given speed for n frames of 1/60 s
func swing(tr *Tracker, speed float64, n int) {
	dt := 1.0 / 60
	for i := 0; i <= n; i++ {
		tr.Update(at(float64(i)*speed*dt, 0, 0), dt)
	}
}

func TestTrackerVelocity(t *testing.T) {
	tr := NewTracker(0, quietLogger())
	assert.Equal(t, DefaultMinSpeed, tr.MinSpeed)
	assert.Zero(t, tr.Speed())

	swing(tr, 6, 4)
	assert.InDelta(t, 6, tr.Speed(), 1e-9)
	assert.True(t, tr.Fast())

	// older samples fall out of the ring buffer
	swing(tr, 1, SampleCount+1)
	assert.InDelta(t, 1, tr.Speed(), 1e-9)
	assert.False(t, tr.Fast())
}

func TestTrackerIgnoresTinyFrames(t *testing.T) {
	tr := NewTracker(2, quietLogger())
	tr.Update(at(0, 0, 0), 1.0/60)
	tr.Update(at(1, 0, 0), 1e-6)
	assert.Zero(t, tr.Speed())
}

func TestTrackerNormal(t *testing.T) {
	tr := NewTracker(2, quietLogger())
	swing(tr, 10, 3)

	// moving along +X with the edge along +Z cuts horizontally
	n := tr.Normal()
	assert.True(t, n.ApproxEqual(geometry.NewVector3(0, -1, 0), 1e-9), "normal %v", n)

	// moving along the edge falls back to the blade's right side
	tr.Reset()
	for i := 0; i <= 3; i++ {
		tr.Update(at(0, 0, float64(i)), 1.0/60)
	}
	assert.True(t, tr.Normal().ApproxEqual(geometry.NewVector3(1, 0, 0), 1e-9))
}

func TestSlicePoint(t *testing.T) {
	tr := NewTracker(2, quietLogger())
	tr.Update(at(3, 0.2, 0), 1.0/60)

	bounds := geometry.NewBoundingBox()
	bounds.Extend(geometry.NewVector3(-1, -1, -1))
	bounds.Extend(geometry.NewVector3(1, 1, 1))
	assert.Equal(t, geometry.NewVector3(1, 0.2, 0), tr.SlicePoint(bounds))
	assert.Equal(t, geometry.NewVector3(3, 0.2, 0), tr.SlicePoint(geometry.NewBoundingBox()))
}

func cube(name string) *slicer.Object {
	m := mesh.New(name)
	for i := 0; i < 8; i++ {
		m.Positions = append(m.Positions, geometry.NewVector3(float64(i&1)-0.5, float64(i>>1&1)-0.5, float64(i>>2&1)-0.5))
	}
	for _, q := range [6][4]int{{0, 4, 6, 2}, {1, 3, 7, 5}, {0, 1, 5, 4}, {2, 6, 7, 3}, {0, 2, 3, 1}, {4, 5, 7, 6}} {
		m.AddTriangle(0, q[0], q[1], q[2])
		m.AddTriangle(0, q[0], q[2], q[3])
	}
	return &slicer.Object{Name: name, Mesh: m}
}

func TestCut(t *testing.T) {
	s := slicer.New(slicer.Options{Logger: quietLogger()})
	tr := NewTracker(2, quietLogger())

	_, err := tr.Cut(s, cube("apple"))
	assert.ErrorIs(t, err, ErrTooSlow)

	dt := 1.0 / 60
	for i := 0; i <= 4; i++ {
		tr.Update(at(-1+float64(i)*0.1, 0.1, 0), dt)
	}
	res, err := tr.Cut(s, cube("apple"))
	require.NoError(t, err)
	require.True(t, res.Cut())
	assert.InDelta(t, 0.1, res.Plane.Point.Y, 1e-12)

	_, err = tr.Cut(s, &slicer.Object{Name: res.A.Name, Mesh: res.A.Mesh})
	assert.ErrorIs(t, err, ErrNotSliceable)
}

func TestSliceable(t *testing.T) {
	assert.True(t, Sliceable(cube("apple")))
	assert.True(t, Sliceable(cube("SliceOfLife")), "only piece suffixes mark a piece")
	assert.False(t, Sliceable(cube(slicer.PieceName("apple", slicer.SideA))))
	assert.False(t, Sliceable(cube(slicer.PieceName("apple", slicer.SideB))))
	assert.False(t, Sliceable(&slicer.Object{Name: "empty"}))
	assert.False(t, Sliceable(nil))
}
