// Package slicer cuts a triangle mesh along a plane into two capped pieces.
//
// A slice classifies every triangle against the plane, splits the ones that
// straddle it, welds the resulting cut segments into closed loops, fans each
// loop into a cap and assembles one local-space mesh per side.
package slicer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
)

var (
	// ErrUnreadableMesh is returned when the source geometry is access protected
	ErrUnreadableMesh = errors.New("mesh is not readable")
	// ErrInvalidMesh is returned for malformed index buffers or missing geometry
	ErrInvalidMesh = errors.New("invalid mesh")
	// ErrInvalidPlane is returned for a plane with a zero-length normal
	ErrInvalidPlane = errors.New("invalid cutting plane")
)

// DefaultEpsilon is the on-plane tolerance used when none is configured
const DefaultEpsilon = 1e-5

const (
	suffixA = "_Slice_A"
	suffixB = "_Slice_B"
)

// Options configure a Slicer
type Options struct {
	// Epsilon is the distance under which a vertex counts as on the plane
	Epsilon float64
	// CapColor overrides the cap color heuristic when set
	CapColor *mesh.Color
	Logger   *slog.Logger
}

// DefaultOptions returns options with the default epsilon and the default logger
func DefaultOptions() Options {
	return Options{Epsilon: DefaultEpsilon}
}

// Object is a sliceable scene object. An object without a mesh may group
// children; their transforms are world transforms.
type Object struct {
	Name      string
	Mesh      *mesh.Mesh
	Transform geometry.Transform
	Material  mesh.Material
	Children  []*Object
}

// Piece is one severed half of a sliced object, ready to be handed to
// rendering and physics
type Piece struct {
	Name      string
	Side      Side
	Mesh      *mesh.Mesh
	Transform geometry.Transform
	// Materials holds the surface material and the cap material, in submesh order
	Materials [2]mesh.Material
	Collider  Collider
	// Impulse is the unit direction the piece should be pushed away in
	Impulse geometry.Vector3
}

// Object turns the piece back into a sliceable object. Earlier caps become
// part of the surface and take the surface material.
func (p *Piece) Object() *Object {
	return &Object{
		Name:      p.Name,
		Mesh:      p.Mesh,
		Transform: p.Transform,
		Material:  p.Materials[0],
	}
}

// Result is the outcome of slicing one object
type Result struct {
	Plane geometry.Plane
	// A is the piece on the side the plane normal points to, B the other one.
	// Either may be nil when the plane does not cross the mesh.
	A, B *Piece

	Segments            int
	DegenerateTriangles int
	Loops               []Loop
	// Warnings lists non-fatal topology problems such as open cut loops
	Warnings []error
}

// Pieces returns the non-nil pieces, A first
func (r *Result) Pieces() []*Piece {
	var pieces []*Piece
	for _, p := range []*Piece{r.A, r.B} {
		if p != nil {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Cut reports whether the plane split the mesh into two pieces
func (r *Result) Cut() bool {
	return r.A != nil && r.B != nil
}

// Slicer cuts objects along planes. It holds only immutable options and is
// safe for concurrent use.
type Slicer struct {
	eps      float64
	capColor *mesh.Color
	logger   *slog.Logger
}

// New creates a slicer
func New(opts Options) *Slicer {
	s := &Slicer{eps: opts.Epsilon, logger: opts.Logger}
	if s.eps <= 0 {
		s.eps = DefaultEpsilon
	}
	if opts.CapColor != nil {
		c := *opts.CapColor
		s.capColor = &c
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// IsSlice reports whether name belongs to a piece produced by a slice
func IsSlice(name string) bool {
	return strings.HasSuffix(name, suffixA) || strings.HasSuffix(name, suffixB)
}

// PieceName returns the name of the piece of the given side
func PieceName(name string, side Side) string {
	if side == SideB {
		return name + suffixB
	}
	return name + suffixA
}

func normalizePlane(plane geometry.Plane) (geometry.Plane, error) {
	p, err := geometry.NewPlane(plane.Normal, plane.Point)
	if err != nil {
		return geometry.Plane{}, fmt.Errorf("%w: %v", ErrInvalidPlane, err)
	}
	return p, nil
}

// Slice cuts obj along plane. The source object is never modified; on error
// no pieces are produced.
func (s *Slicer) Slice(obj *Object, plane geometry.Plane) (*Result, error) {
	plane, err := normalizePlane(plane)
	if err != nil {
		return nil, err
	}
	if obj == nil || obj.Mesh == nil {
		return nil, fmt.Errorf("%w: object has no mesh", ErrInvalidMesh)
	}
	return s.slice(obj, plane, CapColor(s.capColor, obj.Material, obj.Name))
}

func (s *Slicer) slice(obj *Object, plane geometry.Plane, capColor mesh.Color) (*Result, error) {
	m := obj.Mesh
	if !m.Readable {
		return nil, fmt.Errorf("%s: %w", obj.Name, ErrUnreadableMesh)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}

	sp := &splitter{plane: plane, eps: s.eps}
	for _, tri := range worldTriangles(m, obj.Transform) {
		sp.splitTriangle(tri[0], tri[1], tri[2])
	}

	result := &Result{
		Plane:               plane,
		Segments:            len(sp.segments),
		DegenerateTriangles: sp.degenerate,
	}
	if sp.degenerate > 0 {
		s.logger.Debug("kept degenerate triangles whole", "object", obj.Name, "count", sp.degenerate)
	}

	result.Loops, result.Warnings = BuildLoops(plane, sp.segments)
	for _, w := range result.Warnings {
		s.logger.Warn("cut loop dropped", "object", obj.Name, "error", w)
	}

	var capsA, capsB []Triangle
	for _, loop := range result.Loops {
		c := TriangulateCap(plane, loop)
		capsA = append(capsA, c.A...)
		capsB = append(capsB, c.B...)
	}

	capMaterial := mesh.NewCapMaterial(capColor)
	result.A = s.piece(obj, SideA, sp.sideA, capsA, capMaterial, plane.Normal)
	result.B = s.piece(obj, SideB, sp.sideB, capsB, capMaterial, plane.Normal.Negate())

	s.logger.Debug("sliced",
		"object", obj.Name,
		"segments", result.Segments,
		"loops", len(result.Loops),
		"side_a", len(sp.sideA),
		"side_b", len(sp.sideB))
	return result, nil
}

func (s *Slicer) piece(obj *Object, side Side, surface, caps []Triangle, capMaterial mesh.Material, impulse geometry.Vector3) *Piece {
	name := PieceName(obj.Name, side)
	m := assemble(name, obj.Transform, surface, caps)
	if m == nil {
		return nil
	}
	return &Piece{
		Name:      name,
		Side:      side,
		Mesh:      m,
		Transform: obj.Transform,
		Materials: [2]mesh.Material{obj.Material, capMaterial},
		Collider:  ChooseCollider(m.BoundingBox()),
		Impulse:   impulse,
	}
}

// GroupResult collects the pieces of every child of a grouped object
type GroupResult struct {
	// A and B hold the pieces of each side; a group without pieces is nil
	A, B    []*Piece
	Results []*Result
}

// SliceGroup slices obj and, recursively, all of its children. Each child
// resolves its own cap color. Any child failure aborts the whole call.
func (s *Slicer) SliceGroup(obj *Object, plane geometry.Plane) (*GroupResult, error) {
	plane, err := normalizePlane(plane)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: nil object", ErrInvalidMesh)
	}

	group := &GroupResult{}
	if err := s.sliceInto(group, obj, plane); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Slicer) sliceInto(group *GroupResult, obj *Object, plane geometry.Plane) error {
	if obj.Mesh != nil {
		r, err := s.slice(obj, plane, CapColor(s.capColor, obj.Material, obj.Name))
		if err != nil {
			return err
		}
		group.Results = append(group.Results, r)
		if r.A != nil {
			group.A = append(group.A, r.A)
		}
		if r.B != nil {
			group.B = append(group.B, r.B)
		}
	}
	for _, child := range obj.Children {
		if err := s.sliceInto(group, child, plane); err != nil {
			return err
		}
	}
	return nil
}
