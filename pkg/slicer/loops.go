package slicer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// ErrOpenCutTopology is reported when a cut loop cannot be closed
var ErrOpenCutTopology = errors.New("open cut topology")

// Loop is a closed, ordered cycle of welded points on the cutting plane.
// The last point connects back to the first.
type Loop struct {
	Points []geometry.Vector3
}

// Len returns the number of points in the loop
func (l Loop) Len() int {
	return len(l.Points)
}

// Perimeter returns the closed length of the loop
func (l Loop) Perimeter() float64 {
	total := 0.0
	for i, p := range l.Points {
		total += p.Distance(l.Points[(i+1)%len(l.Points)])
	}
	return total
}

// WeldTolerance returns the distance under which cut points are merged,
// scaled by the largest distance of any segment point to the plane point
func WeldTolerance(plane geometry.Plane, segments []Segment) float64 {
	extent := 0.0
	for _, s := range segments {
		extent = math.Max(extent, s.P0.Distance(plane.Point))
		extent = math.Max(extent, s.P1.Distance(plane.Point))
	}
	return math.Max(1e-4, 5e-4*extent)
}

type cellKey struct {
	X, Y int64
}

// cutGraph is the welded, undirected adjacency graph of the cut segments
type cutGraph struct {
	points    []geometry.Vector3
	projected []geometry.Vector2
	adjacency [][]int
	cells     map[cellKey][]int
	tol       float64
	u, v      geometry.Vector3
	plane     geometry.Plane
}

func newCutGraph(plane geometry.Plane, tol float64) *cutGraph {
	u, v := plane.Basis()
	return &cutGraph{
		cells: make(map[cellKey][]int),
		tol:   tol,
		u:     u,
		v:     v,
		plane: plane,
	}
}

func (g *cutGraph) cellOf(p geometry.Vector2) cellKey {
	size := 2 * g.tol
	return cellKey{X: int64(math.Floor(p.X / size)), Y: int64(math.Floor(p.Y / size))}
}

// weld returns the index of an existing point within tolerance, or adds a new one
func (g *cutGraph) weld(p geometry.Vector3) int {
	q := g.plane.Project2D(p, g.u, g.v)
	key := g.cellOf(q)

	best, bestDist := -1, g.tol
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, idx := range g.cells[cellKey{X: key.X + dx, Y: key.Y + dy}] {
				if d := g.points[idx].Distance(p); d <= bestDist {
					if best == -1 || d < bestDist || idx < best {
						best, bestDist = idx, d
					}
				}
			}
		}
	}
	if best >= 0 {
		return best
	}

	g.points = append(g.points, p)
	g.projected = append(g.projected, q)
	g.adjacency = append(g.adjacency, nil)
	idx := len(g.points) - 1
	g.cells[key] = append(g.cells[key], idx)
	return idx
}

func (g *cutGraph) connect(a, b int) {
	if a == b {
		return
	}
	g.adjacency[a] = insertSorted(g.adjacency[a], b)
	g.adjacency[b] = insertSorted(g.adjacency[b], a)
}

func insertSorted(list []int, value int) []int {
	i := sort.SearchInts(list, value)
	if i < len(list) && list[i] == value {
		return list
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = value
	return list
}

// BuildLoops welds the cut segments and walks the resulting graph into closed loops.
// Each start point tries its neighbours in index order as the first step until
// a walk closes. Walks that dead-end are dropped and reported in the returned
// warnings, so a spur never costs the loop it hangs off.
func BuildLoops(plane geometry.Plane, segments []Segment) ([]Loop, []error) {
	if len(segments) == 0 {
		return nil, nil
	}

	g := newCutGraph(plane, WeldTolerance(plane, segments))
	for _, s := range segments {
		g.connect(g.weld(s.P0), g.weld(s.P1))
	}

	var loops []Loop
	var warnings []error
	visited := make([]bool, len(g.points))
	openWalk := func(start int, path []int) {
		warnings = append(warnings, fmt.Errorf("walk from cut point %d stopped after %d points: %w", start, len(path), ErrOpenCutTopology))
	}

	for start := range g.points {
		if visited[start] || len(g.adjacency[start]) == 0 {
			continue
		}

		var failed [][]int
		for _, first := range g.adjacency[start] {
			if visited[first] {
				continue
			}
			path, closed := g.walk(start, first, visited)
			if closed {
				loop := Loop{Points: make([]geometry.Vector3, len(path))}
				for i, idx := range path {
					loop.Points[i] = g.points[idx]
				}
				loops = append(loops, loop)
				break
			}
			// release the walk so the next first step may cross it
			for _, idx := range path {
				visited[idx] = false
			}
			failed = append(failed, path)
		}

		if len(failed) == 0 && !visited[start] {
			failed = append(failed, []int{start})
		}
		for _, path := range failed {
			openWalk(start, path)
			for _, idx := range path {
				visited[idx] = true
			}
		}
	}
	return loops, warnings
}

// walk follows the straightest continuation from start through first until
// it returns to start
func (g *cutGraph) walk(start, first int, visited []bool) ([]int, bool) {
	path := []int{start, first}
	visited[start], visited[first] = true, true
	prev, current := start, first

	for {
		incoming := g.projected[current].Sub(g.projected[prev]).Normalize()
		bestCos := math.Inf(-1)
		next := -1
		for _, n := range g.adjacency[current] {
			if n == prev {
				continue
			}
			if visited[n] && !(n == start && len(path) >= 3) {
				continue
			}
			dir := g.projected[n].Sub(g.projected[current]).Normalize()
			if c := incoming.Dot(dir); c > bestCos {
				bestCos, next = c, n
			}
		}

		if next == -1 {
			return path, false
		}
		if next == start {
			return path, true
		}
		visited[next] = true
		path = append(path, next)
		prev, current = current, next
	}
}
