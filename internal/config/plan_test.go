package config

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/slicer"
	"github.com/philipparndt/goslice/pkg/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlPlan = `
input: meshes/cube.stl
output: out
cap_color: "#ff8000"
compress: zstd
log_level: debug
transform:
  position: [0, 2, 0]
  rotation: [0, 90, 0]
  scale: [2, 2, 2]
cuts:
  - name: horizontal
    normal: [0, 1, 0]
    point: [0, 2, 0]
  - normal: [1, 0, 0]
    point: [0, 0, 0]
`

const tomlPlan = `
fruit = "watermelon"
ascii = true

[[cuts]]
name = "diagonal"
normal = [1, 1, 0]
point = [0, 0, 0]
`

func TestParseYAML(t *testing.T) {
	plan, err := Parse([]byte(yamlPlan), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, "meshes/cube.stl", plan.Input)
	assert.Equal(t, slicer.DefaultEpsilon, plan.Epsilon)
	assert.Equal(t, stl.CompressionZstd, plan.Compression())
	assert.Equal(t, stl.FormatBinary, plan.Format())
	require.Len(t, plan.Cuts, 2)
	assert.Equal(t, "horizontal", plan.Cuts[0].Name)
	assert.Equal(t, "cut2", plan.Cuts[1].Name)

	c := plan.CapColorOverride()
	require.NotNil(t, c)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 128.0/255, c.G, 1e-9)

	opts := plan.SlicerOptions()
	assert.Equal(t, plan.Epsilon, opts.Epsilon)
	assert.Equal(t, c, opts.CapColor)

	tr := plan.ObjectTransform()
	p := tr.TransformPoint(geometry.NewVector3(1, 0, 0))
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 2, p.Y, 1e-9)
	assert.InDelta(t, 2, math.Abs(p.Z), 1e-9)
}

func TestParseTOML(t *testing.T) {
	plan, err := Parse([]byte(tomlPlan), ".toml")
	require.NoError(t, err)

	assert.Equal(t, "watermelon", plan.Fruit)
	assert.Equal(t, stl.FormatASCII, plan.Format())
	assert.Equal(t, stl.CompressionNone, plan.Compression())
	assert.Nil(t, plan.CapColorOverride())
	assert.Equal(t, ".", plan.Output)

	plane, err := plan.Cuts[0].Plane()
	require.NoError(t, err)
	assert.InDelta(t, 1, plane.Normal.Length(), 1e-9)

	tr := plan.ObjectTransform()
	assert.False(t, tr.IsMirrored())
	assert.True(t, tr.TransformPoint(geometry.NewVector3(1, 2, 3)).ApproxEqual(geometry.NewVector3(1, 2, 3), 1e-9))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		plan string
	}{
		{"no source", "cuts:\n  - normal: [0, 1, 0]\n"},
		{"both sources", "input: a.stl\nfruit: apple\ncuts:\n  - normal: [0, 1, 0]\n"},
		{"negative epsilon", "input: a.stl\nepsilon: -1\ncuts:\n  - normal: [0, 1, 0]\n"},
		{"bad color", "input: a.stl\ncap_color: orange\ncuts:\n  - normal: [0, 1, 0]\n"},
		{"bad compression", "input: a.stl\ncompress: gzip\ncuts:\n  - normal: [0, 1, 0]\n"},
		{"bad log level", "input: a.stl\nlog_level: loud\ncuts:\n  - normal: [0, 1, 0]\n"},
		{"zero scale", "input: a.stl\ntransform:\n  scale: [1, 0, 1]\ncuts:\n  - normal: [0, 1, 0]\n"},
		{"no cuts", "input: a.stl\n"},
		{"zero normal", "input: a.stl\ncuts:\n  - normal: [0, 0, 0]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.plan), ".yml")
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestParseUnsupported(t *testing.T) {
	_, err := Parse([]byte("{}"), ".json")
	assert.Error(t, err)

	_, err = Parse([]byte("cuts: [oops"), ".yaml")
	assert.Error(t, err)
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlPlan), 0o644))

	plan, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "meshes", "cube.stl"), plan.InputPath())
	assert.Equal(t, filepath.Join(dir, "out"), plan.OutputDir())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "piece", "cube (A)")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger(&buf, "verbose")
	assert.Error(t, err)

	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}
