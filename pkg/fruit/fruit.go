// Package fruit builds procedural fruit meshes from signed distance fields.
package fruit

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
)

// DefaultCells is the marching cubes resolution along the longest axis
const DefaultCells = 40

// Kind describes one fruit of the catalogue
type Kind struct {
	Name string
	Skin mesh.Color
	// Shape builds the distance field in fruit units (about one unit across)
	Shape func() (sdf.SDF3, error)
}

var catalogue = map[string]Kind{
	"apple":      {"apple", mesh.RGB(0.75, 0.1, 0.1), apple},
	"redapple":   {"redapple", mesh.RGB(0.8, 0.05, 0.1), apple},
	"greenapple": {"greenapple", mesh.RGB(0.45, 0.8, 0.2), apple},
	"banana":     {"banana", mesh.RGB(0.95, 0.85, 0.2), banana},
	"coconut":    {"coconut", mesh.RGB(0.4, 0.25, 0.1), coconut},
	"orange":     {"orange", mesh.RGB(1.0, 0.55, 0.0), sphere(0.5)},
	"pear":       {"pear", mesh.RGB(0.7, 0.8, 0.25), pear},
	"tomato":     {"tomato", mesh.RGB(0.9, 0.15, 0.1), ellipsoid(0.5, 0.4, 0.5)},
	"watermelon": {"watermelon", mesh.RGB(0.15, 0.5, 0.15), ellipsoid(0.8, 0.55, 0.55)},
	"donut":      {"donut", mesh.RGB(0.8, 0.55, 0.3), torus(0.4, 0.18)},
}

// Kinds returns the catalogue names in alphabetical order
func Kinds() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a catalogue entry by name, ignoring case
func Lookup(name string) (Kind, error) {
	k, ok := catalogue[strings.ToLower(name)]
	if !ok {
		return Kind{}, fmt.Errorf("unknown fruit %q (available: %s)", name, strings.Join(Kinds(), ", "))
	}
	return k, nil
}

func sphere(r float64) func() (sdf.SDF3, error) {
	return func() (sdf.SDF3, error) {
		return sdf.Sphere3D(r)
	}
}

func ellipsoid(rx, ry, rz float64) func() (sdf.SDF3, error) {
	return func() (sdf.SDF3, error) {
		s, err := sdf.Sphere3D(1)
		if err != nil {
			return nil, err
		}
		return sdf.Transform3D(s, sdf.Scale3d(v3.Vec{X: rx, Y: ry, Z: rz})), nil
	}
}

func apple() (sdf.SDF3, error) {
	body, err := ellipsoid(0.5, 0.45, 0.5)()
	if err != nil {
		return nil, err
	}
	stem, err := sdf.Cylinder3D(0.25, 0.03, 0)
	if err != nil {
		return nil, err
	}
	// cylinders run along Z
	stem = sdf.Transform3D(stem, sdf.Translate3d(v3.Vec{Y: 0.5}).Mul(sdf.RotateX(math.Pi/2)))
	return sdf.Union3D(body, stem), nil
}

func pear() (sdf.SDF3, error) {
	bottom, err := sdf.Sphere3D(0.45)
	if err != nil {
		return nil, err
	}
	top, err := sdf.Sphere3D(0.28)
	if err != nil {
		return nil, err
	}
	top = sdf.Transform3D(top, sdf.Translate3d(v3.Vec{Y: 0.5}))
	u := sdf.Union3D(bottom, top)
	u.(*sdf.UnionSDF3).SetMin(sdf.PolyMin(0.15))
	return u, nil
}

func banana() (sdf.SDF3, error) {
	body, err := sdf.Cylinder3D(1.4, 0.18, 0.17)
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(body, sdf.RotateY(math.Pi/2)), nil
}

func coconut() (sdf.SDF3, error) {
	return ellipsoid(0.5, 0.55, 0.5)()
}

func torus(major, minor float64) func() (sdf.SDF3, error) {
	return func() (sdf.SDF3, error) {
		tube, err := sdf.Circle2D(minor)
		if err != nil {
			return nil, err
		}
		tube = sdf.Transform2D(tube, sdf.Translate2d(v2.Vec{X: major}))
		ring, err := sdf.Revolve3D(tube)
		if err != nil {
			return nil, err
		}
		// Revolve3D spins around Z, fruit stand upright on Y
		return sdf.Transform3D(ring, sdf.RotateX(math.Pi/2)), nil
	}
}

// Options control mesh generation
type Options struct {
	// Cells is the marching cubes resolution; DefaultCells when zero
	Cells int
	Scale float64
}

// Generate builds a sliceable object for the named fruit
func Generate(name string, opts Options) (*slicer.Object, error) {
	kind, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	shape, err := kind.Shape()
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", kind.Name, err)
	}
	if opts.Scale > 0 && opts.Scale != 1 {
		shape = sdf.Transform3D(shape, sdf.Scale3d(v3.Vec{X: opts.Scale, Y: opts.Scale, Z: opts.Scale}))
	}
	cells := opts.Cells
	if cells <= 0 {
		cells = DefaultCells
	}

	m := Polygonize(kind.Name, shape, cells)
	if m.IsEmpty() {
		return nil, fmt.Errorf("%s produced no triangles at %d cells", kind.Name, cells)
	}
	return &slicer.Object{
		Name:      kind.Name,
		Mesh:      m,
		Transform: geometry.IdentityTransform(),
		Material: mesh.TexturedMaterial{
			Name:    kind.Name + " skin",
			Texture: kind.Name + ".png",
			Tint:    mesh.White,
		},
	}, nil
}

func toVector(v v3.Vec) geometry.Vector3 {
	return geometry.NewVector3(v.X, v.Y, v.Z)
}

// gradient estimates the outward surface normal of s at p by central differences
func gradient(s sdf.SDF3, p v3.Vec, h float64) geometry.Vector3 {
	dx := s.Evaluate(v3.Vec{X: p.X + h, Y: p.Y, Z: p.Z}) - s.Evaluate(v3.Vec{X: p.X - h, Y: p.Y, Z: p.Z})
	dy := s.Evaluate(v3.Vec{X: p.X, Y: p.Y + h, Z: p.Z}) - s.Evaluate(v3.Vec{X: p.X, Y: p.Y - h, Z: p.Z})
	dz := s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z + h}) - s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z - h})
	return geometry.NewVector3(dx, dy, dz).Normalize()
}

// Polygonize runs marching cubes over s and returns an indexed mesh with
// smooth normals from the field gradient and spherical UVs
func Polygonize(name string, s sdf.SDF3, cells int) *mesh.Mesh {
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	bb := s.BoundingBox()
	center := toVector(bb.Center())
	size := bb.Size()
	h := math.Max(size.X, math.Max(size.Y, size.Z)) / float64(cells) / 10

	m := mesh.New(name)
	m.Submeshes = [][]int{nil}
	index := make(map[v3.Vec]int)

	vertex := func(p v3.Vec) int {
		if i, ok := index[p]; ok {
			return i
		}
		pos := toVector(p)
		i := m.AddVertex(pos, gradient(s, p, h), sphericalUV(pos.Sub(center)))
		index[p] = i
		return i
	}

	for _, tri := range triangles {
		a, b, c := toVector(tri[0]), toVector(tri[1]), toVector(tri[2])
		face := b.Sub(a).Cross(c.Sub(a))
		if face.LengthSquared() < 1e-24 {
			continue
		}
		ia, ib, ic := vertex(tri[0]), vertex(tri[1]), vertex(tri[2])
		if ia == ib || ib == ic || ia == ic {
			continue
		}
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		out := gradient(s, v3.Vec{X: centroid.X, Y: centroid.Y, Z: centroid.Z}, h)
		if face.Dot(out) < 0 {
			ib, ic = ic, ib
		}
		m.AddTriangle(0, ia, ib, ic)
	}
	return m
}

func sphericalUV(d geometry.Vector3) geometry.Vector2 {
	r := d.Length()
	if r == 0 {
		return geometry.Vector2{}
	}
	u := 0.5 + math.Atan2(d.Z, d.X)/(2*math.Pi)
	v := 0.5 + math.Asin(d.Y/r)/math.Pi
	return geometry.NewVector2(u, v)
}
