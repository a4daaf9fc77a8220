package slicer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/pkg/geometry"
)

func squareSegments(cx, cz, size float64) []Segment {
	h := size / 2
	c := []geometry.Vector3{
		geometry.NewVector3(cx-h, 0, cz-h),
		geometry.NewVector3(cx+h, 0, cz-h),
		geometry.NewVector3(cx+h, 0, cz+h),
		geometry.NewVector3(cx-h, 0, cz+h),
	}
	var segs []Segment
	for i := range c {
		segs = append(segs, Segment{P0: c[i], P1: c[(i+1)%len(c)]})
	}
	return segs
}

func TestBuildLoopsEmpty(t *testing.T) {
	loops, warnings := BuildLoops(geometry.Plane{Normal: up}, nil)
	assert.Empty(t, loops)
	assert.Empty(t, warnings)
}

func TestBuildLoopsWeldsNearbyPoints(t *testing.T) {
	segs := squareSegments(0, 0, 2)
	// jitter every shared endpoint well below the weld tolerance
	for i := range segs {
		segs[i].P1 = segs[i].P1.Add(geometry.NewVector3(1e-6, 0, -1e-6))
	}

	loops, warnings := BuildLoops(geometry.Plane{Normal: up}, segs)
	assert.Empty(t, warnings)
	require.Len(t, loops, 1)
	assert.Equal(t, 4, loops[0].Len())
}

func TestBuildLoopsDisjoint(t *testing.T) {
	segs := append(squareSegments(-3, 0, 1), squareSegments(3, 0, 1)...)

	loops, warnings := BuildLoops(geometry.Plane{Normal: up}, segs)
	assert.Empty(t, warnings)
	require.Len(t, loops, 2)
	assert.InDelta(t, -3, loops[0].Centroid().X, 1e-12)
	assert.InDelta(t, 3, loops[1].Centroid().X, 1e-12)
}

func TestBuildLoopsSegmentOrderDoesNotMatter(t *testing.T) {
	segs := squareSegments(0, 0, 1)
	reversed := []Segment{
		{P0: segs[2].P1, P1: segs[2].P0},
		{P0: segs[0].P1, P1: segs[0].P0},
		{P0: segs[3].P1, P1: segs[3].P0},
		{P0: segs[1].P1, P1: segs[1].P0},
	}

	a, _ := BuildLoops(geometry.Plane{Normal: up}, segs)
	b, _ := BuildLoops(geometry.Plane{Normal: up}, reversed)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.InDelta(t, a[0].Perimeter(), b[0].Perimeter(), 1e-12)
}

func TestBuildLoopsSharedVertexIsDeterministic(t *testing.T) {
	// two squares touching at the origin
	segs := append(squareSegments(0.5, 0.5, 1), squareSegments(-0.5, -0.5, 1)...)
	plane := geometry.Plane{Normal: up}

	loops, warnings := BuildLoops(plane, segs)
	for i := 0; i < 5; i++ {
		again, againWarnings := BuildLoops(plane, segs)
		assert.Equal(t, loops, again)
		assert.Equal(t, warnings, againWarnings)
	}

	// the shared node is consumed by the first loop, so neither walk
	// through the second square can close
	require.Len(t, loops, 1)
	assert.Equal(t, 4, loops[0].Len())
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.ErrorIs(t, w, ErrOpenCutTopology)
	}
}

func TestBuildLoopsPrefersStraightContinuation(t *testing.T) {
	// a square with a spur hanging off its bottom edge; the spur end gets a
	// lower index than the next corner, so only the straightest choice
	// keeps the walk on the square
	v := geometry.NewVector3
	segs := []Segment{
		{P0: v(0, 0, 0), P1: v(1, 0, 0)},
		{P0: v(1, 0, 0), P1: v(1, 0, -1)},
		{P0: v(1, 0, 0), P1: v(2, 0, 0)},
		{P0: v(2, 0, 0), P1: v(2, 0, 2)},
		{P0: v(2, 0, 2), P1: v(0, 0, 2)},
		{P0: v(0, 0, 2), P1: v(0, 0, 0)},
	}

	loops, warnings := BuildLoops(geometry.Plane{Normal: up}, segs)
	require.Len(t, loops, 1)
	assert.Equal(t, 5, loops[0].Len())
	assert.InDelta(t, 8.0, loops[0].Perimeter(), 1e-12)
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], ErrOpenCutTopology)
}

func TestBuildLoopsSpurAtStartKeepsLoop(t *testing.T) {
	// the spur is listed first, so its end gets the lowest index after the
	// corner and becomes the corner's first neighbour
	v := geometry.NewVector3
	segs := []Segment{
		{P0: v(0, 0, 0), P1: v(-1, 0, -1)},
		{P0: v(0, 0, 0), P1: v(1, 0, 0)},
		{P0: v(1, 0, 0), P1: v(1, 0, 1)},
		{P0: v(1, 0, 1), P1: v(0, 0, 1)},
		{P0: v(0, 0, 1), P1: v(0, 0, 0)},
	}

	loops, warnings := BuildLoops(geometry.Plane{Normal: up}, segs)
	require.Len(t, loops, 1)
	assert.Equal(t, 4, loops[0].Len())
	assert.InDelta(t, 4.0, loops[0].Perimeter(), 1e-12)
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], ErrOpenCutTopology)
}

func TestBuildLoopsOpenChainWarnsOnce(t *testing.T) {
	v := geometry.NewVector3
	segs := []Segment{
		{P0: v(0, 0, 0), P1: v(1, 0, 0)},
		{P0: v(1, 0, 0), P1: v(2, 0, 1)},
		{P0: v(2, 0, 1), P1: v(3, 0, 1)},
	}

	loops, warnings := BuildLoops(geometry.Plane{Normal: up}, segs)
	assert.Empty(t, loops)
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], ErrOpenCutTopology)
}

func TestWeldTolerance(t *testing.T) {
	plane := geometry.Plane{Normal: up}
	small := []Segment{{P0: geometry.NewVector3(0.01, 0, 0), P1: geometry.NewVector3(0, 0, 0.01)}}
	assert.InDelta(t, 1e-4, WeldTolerance(plane, small), 1e-15)

	large := []Segment{{P0: geometry.NewVector3(10, 0, 0), P1: geometry.NewVector3(0, 0, 2)}}
	assert.InDelta(t, 5e-3, WeldTolerance(plane, large), 1e-15)
}
