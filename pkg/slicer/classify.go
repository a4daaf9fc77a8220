package slicer

import (
	"math"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// Side identifies one half-space of the cutting plane
type Side int

const (
	// SideA is the half-space the plane normal points into (d >= 0)
	SideA Side = iota
	// SideB is the opposite half-space (d <= 0)
	SideB
)

func (s Side) String() string {
	if s == SideB {
		return "B"
	}
	return "A"
}

// Classification describes how a triangle relates to the cutting plane
type Classification struct {
	// Side is the side receiving the whole triangle when Split is false
	Side Side
	// Split is true for a clean 2-1 or 1-2 straddle
	Split bool
	// Degenerate is true when a vertex lies on the plane while the other
	// two are on opposite sides; the triangle is kept whole
	Degenerate bool
	Distances  [3]float64
	Signs      [3]int
}

func signWithEpsilon(d, eps float64) int {
	if d > eps {
		return 1
	}
	if d < -eps {
		return -1
	}
	return 0
}

// Classify computes the plane side of a triangle's vertices with tolerance eps.
// A triangle with one vertex on the plane and the other two on opposite sides
// is degenerate and goes whole to the side of its farthest vertex, A on ties,
// rather than to A unconditionally.
func Classify(plane geometry.Plane, a, b, c geometry.Vector3, eps float64) Classification {
	var cl Classification
	for i, p := range [3]geometry.Vector3{a, b, c} {
		cl.Distances[i] = plane.Distance(p)
		cl.Signs[i] = signWithEpsilon(cl.Distances[i], eps)
	}
	s0, s1, s2 := cl.Signs[0], cl.Signs[1], cl.Signs[2]

	switch {
	case s0 >= 0 && s1 >= 0 && s2 >= 0:
		cl.Side = SideA
	case s0 <= 0 && s1 <= 0 && s2 <= 0:
		cl.Side = SideB
	case s0 != 0 && s1 != 0 && s2 != 0:
		cl.Split = true
	default:
		// One vertex on the plane, the other two on opposite sides.
		cl.Degenerate = true
		cl.Side = dominantSide(cl.Distances)
	}
	return cl
}

// dominantSide picks the side of the vertex farthest from the plane, A on ties
func dominantSide(d [3]float64) Side {
	best := 0
	for i := 1; i < 3; i++ {
		if math.Abs(d[i]) > math.Abs(d[best]) {
			best = i
		}
	}
	if d[best] < 0 && math.Abs(d[best]) > maxPositive(d) {
		return SideB
	}
	return SideA
}

func maxPositive(d [3]float64) float64 {
	m := 0.0
	for _, v := range d {
		if v > m {
			m = v
		}
	}
	return m
}

// splitter accumulates the per-side triangles and cut segments of one slice call
type splitter struct {
	plane      geometry.Plane
	eps        float64
	sideA      []Triangle
	sideB      []Triangle
	segments   []Segment
	degenerate int
}

// addAligned appends t to dst, reversing its winding if it disagrees with reference
func addAligned(dst []Triangle, t Triangle, reference geometry.Vector3) []Triangle {
	t.Reference = reference
	if t.FaceNormal().Dot(reference) < 0 {
		t = t.Flipped()
	}
	return append(dst, t)
}

func (s *splitter) add(side Side, t Triangle, reference geometry.Vector3) {
	if side == SideA {
		s.sideA = addAligned(s.sideA, t, reference)
	} else {
		s.sideB = addAligned(s.sideB, t, reference)
	}
}

// lerpEdge returns the vertex where the edge from start to end crosses the plane
func lerpEdge(start, end Vertex, dStart, dEnd float64) Vertex {
	t := dStart / (dStart - dEnd)
	return start.Lerp(end, t)
}

// splitTriangle classifies one world-space triangle and emits its pieces
func (s *splitter) splitTriangle(v0, v1, v2 Vertex) {
	original := Triangle{A: v0, B: v1, C: v2}
	reference := original.FaceNormal()
	cl := Classify(s.plane, v0.Position, v1.Position, v2.Position, s.eps)

	if !cl.Split {
		if cl.Degenerate {
			s.degenerate++
		}
		s.add(cl.Side, original, reference)
		return
	}

	verts := [3]Vertex{v0, v1, v2}
	var pos, neg []int
	for i, sign := range cl.Signs {
		if sign > 0 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}

	// majority pair (va, vb) and the lone vertex vc on the other side
	var majority, minority Side
	var ia, ib, ic int
	if len(pos) == 2 {
		majority, minority = SideA, SideB
		ia, ib, ic = pos[0], pos[1], neg[0]
	} else {
		majority, minority = SideB, SideA
		ia, ib, ic = neg[0], neg[1], pos[0]
	}

	va, vb, vc := verts[ia], verts[ib], verts[ic]
	da, db, dc := cl.Distances[ia], cl.Distances[ib], cl.Distances[ic]

	i1 := lerpEdge(vc, va, dc, da)
	i2 := lerpEdge(vc, vb, dc, db)

	s.add(majority, Triangle{A: va, B: vb, C: i2}, reference)
	s.add(majority, Triangle{A: va, B: i2, C: i1}, reference)
	s.add(minority, Triangle{A: vc, B: i1, C: i2}, reference)

	s.segments = append(s.segments, Segment{P0: i1.Position, P1: i2.Position})
}
