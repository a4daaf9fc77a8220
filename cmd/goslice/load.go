package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/philipparndt/goslice/pkg/fruit"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/openscad"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/philipparndt/goslice/pkg/stl"
)

const fruitPrefix = "fruit:"

// objectName derives an object name from a mesh path, dropping directory,
// compression suffix and format extension
func objectName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, stl.CompressionFor(name).Extension())
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// loadObject reads an STL (optionally compressed) or OpenSCAD file.
// STL carries no material, so the object gets a plain white one named
// after the file; the cap color then follows the fruit palette for
// names like apple.stl.
func loadObject(ctx context.Context, path string, transform geometry.Transform) (*slicer.Object, error) {
	source := path
	if openscad.IsSource(path) {
		compiler := openscad.NewCompiler(filepath.Dir(path), logger)
		tmp, err := compiler.CompileTemp(ctx, path)
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp)
		source = tmp
	}

	model, err := stl.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	name := objectName(path)
	m := model.ToMesh()
	m.Name = name
	logger.Debug("loaded mesh", "path", path, "triangles", m.TriangleCount(), "vertices", m.VertexCount())

	return &slicer.Object{
		Name:      name,
		Mesh:      m,
		Transform: transform,
		Material:  mesh.BasicMaterial{Name: name, Color: mesh.White},
	}, nil
}

// loadFruit generates a catalogue fruit placed with transform
func loadFruit(kind string, cells int, transform geometry.Transform) (*slicer.Object, mesh.Color, error) {
	k, err := fruit.Lookup(kind)
	if err != nil {
		return nil, mesh.Color{}, err
	}
	obj, err := fruit.Generate(k.Name, fruit.Options{Cells: cells})
	if err != nil {
		return nil, mesh.Color{}, err
	}
	obj.Transform = transform
	logger.Debug("generated fruit", "kind", k.Name, "triangles", obj.Mesh.TriangleCount())
	return obj, k.Skin, nil
}

func cutFruitPrefix(source string) (string, bool) {
	return strings.CutPrefix(source, fruitPrefix)
}

// loadSource accepts a mesh path or fruit:<kind>
func loadSource(ctx context.Context, source string, transform geometry.Transform) (*slicer.Object, mesh.Color, error) {
	if kind, ok := cutFruitPrefix(source); ok {
		return loadFruit(kind, fruit.DefaultCells, transform)
	}
	obj, err := loadObject(ctx, source, transform)
	return obj, mesh.RGB(0.7, 0.7, 0.75), err
}

// parseVec3 parses "x,y,z"
func parseVec3(s string) (geometry.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geometry.Vector3{}, fmt.Errorf("invalid vector %q: expected x,y,z", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Vector3{}, fmt.Errorf("invalid vector %q: %w", s, err)
		}
		v[i] = f
	}
	return geometry.NewVector3(v[0], v[1], v[2]), nil
}
