// Package config loads slice plans: which mesh to cut, where it sits in the
// world, which planes to cut it with and where to write the pieces.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/philipparndt/goslice/pkg/stl"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPlan wraps every validation failure
var ErrInvalidPlan = errors.New("invalid plan")

// Vec3 is written as a three element list, e.g. [0, 1, 0]
type Vec3 [3]float64

// Vector converts to a geometry vector
func (v Vec3) Vector() geometry.Vector3 {
	return geometry.NewVector3(v[0], v[1], v[2])
}

// Transform places the input mesh in the world before cutting
type Transform struct {
	Position Vec3  `yaml:"position" toml:"position"`
	Rotation Vec3  `yaml:"rotation" toml:"rotation"` // Euler degrees, X then Y then Z
	Scale    *Vec3 `yaml:"scale" toml:"scale"`
}

// Cut is one cutting plane
type Cut struct {
	Name   string `yaml:"name" toml:"name"`
	Normal Vec3   `yaml:"normal" toml:"normal"`
	Point  Vec3   `yaml:"point" toml:"point"`
}

// Plane builds the geometric plane of the cut
func (c Cut) Plane() (geometry.Plane, error) {
	return geometry.NewPlane(c.Normal.Vector(), c.Point.Vector())
}

// Plan describes a batch slicing job
type Plan struct {
	Input     string    `yaml:"input" toml:"input"`
	Fruit     string    `yaml:"fruit" toml:"fruit"`
	Output    string    `yaml:"output" toml:"output"`
	Epsilon   float64   `yaml:"epsilon" toml:"epsilon"`
	CapColor  string    `yaml:"cap_color" toml:"cap_color"`
	Compress  string    `yaml:"compress" toml:"compress"`
	ASCII     bool      `yaml:"ascii" toml:"ascii"`
	LogLevel  string    `yaml:"log_level" toml:"log_level"`
	Transform Transform `yaml:"transform" toml:"transform"`
	Cuts      []Cut     `yaml:"cuts" toml:"cuts"`

	// dir is the directory of the plan file; relative paths resolve against it
	dir string
}

// Load reads a plan from a .yaml, .yml or .toml file
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	plan, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan path: %w", err)
	}
	plan.dir = filepath.Dir(abs)
	return plan, nil
}

// Parse decodes and validates a plan. The extension selects the syntax.
func Parse(data []byte, ext string) (*Plan, error) {
	var plan Plan
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse plan: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &plan); err != nil {
			return nil, fmt.Errorf("failed to parse plan: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan format %q (want .yaml, .yml or .toml)", ext)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks the plan and fills in defaults
func (p *Plan) Validate() error {
	switch {
	case p.Input == "" && p.Fruit == "":
		return fmt.Errorf("%w: one of input or fruit is required", ErrInvalidPlan)
	case p.Input != "" && p.Fruit != "":
		return fmt.Errorf("%w: input and fruit are mutually exclusive", ErrInvalidPlan)
	}
	if p.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon must not be negative, got %g", ErrInvalidPlan, p.Epsilon)
	}
	if p.Epsilon == 0 {
		p.Epsilon = slicer.DefaultEpsilon
	}
	if p.Output == "" {
		p.Output = "."
	}
	if p.CapColor != "" {
		if _, err := mesh.ParseHexColor(p.CapColor); err != nil {
			return fmt.Errorf("%w: cap_color: %v", ErrInvalidPlan, err)
		}
	}
	if _, err := stl.ParseCompression(p.Compress); err != nil {
		return fmt.Errorf("%w: compress: %v", ErrInvalidPlan, err)
	}
	if _, err := ParseLevel(p.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidPlan, err)
	}
	if s := p.Transform.Scale; s != nil && (s[0] == 0 || s[1] == 0 || s[2] == 0) {
		return fmt.Errorf("%w: transform scale must not have zero components", ErrInvalidPlan)
	}
	if len(p.Cuts) == 0 {
		return fmt.Errorf("%w: at least one cut is required", ErrInvalidPlan)
	}
	for i := range p.Cuts {
		cut := &p.Cuts[i]
		if cut.Name == "" {
			cut.Name = fmt.Sprintf("cut%d", i+1)
		}
		if _, err := cut.Plane(); err != nil {
			return fmt.Errorf("%w: cut %q: %v", ErrInvalidPlan, cut.Name, err)
		}
	}
	return nil
}

func (p *Plan) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || p.dir == "" {
		return path
	}
	return filepath.Join(p.dir, path)
}

// InputPath returns the input mesh path relative to the plan file
func (p *Plan) InputPath() string {
	return p.resolve(p.Input)
}

// OutputDir returns the output directory relative to the plan file
func (p *Plan) OutputDir() string {
	return p.resolve(p.Output)
}

// ObjectTransform returns the world transform for the input mesh
func (p *Plan) ObjectTransform() geometry.Transform {
	scale := geometry.NewVector3(1, 1, 1)
	if p.Transform.Scale != nil {
		scale = p.Transform.Scale.Vector()
	}
	return geometry.NewTransform(p.Transform.Position.Vector(), p.Transform.Rotation.Vector(), scale)
}

// CapColorOverride returns the configured cap color or nil
func (p *Plan) CapColorOverride() *mesh.Color {
	if p.CapColor == "" {
		return nil
	}
	c, err := mesh.ParseHexColor(p.CapColor)
	if err != nil {
		return nil
	}
	return &c
}

// Compression returns the codec for written pieces
func (p *Plan) Compression() stl.Compression {
	c, _ := stl.ParseCompression(p.Compress)
	return c
}

// Format returns the STL encoding for written pieces
func (p *Plan) Format() stl.Format {
	if p.ASCII {
		return stl.FormatASCII
	}
	return stl.FormatBinary
}

// SlicerOptions builds slicer options from the plan
func (p *Plan) SlicerOptions() slicer.Options {
	opts := slicer.DefaultOptions()
	opts.Epsilon = p.Epsilon
	opts.CapColor = p.CapColorOverride()
	return opts
}
