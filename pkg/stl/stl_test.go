package stl

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/mesh"
)

const asciiTetra = `solid tetra
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 0 1 0
      vertex 1 0 0
    endloop
  endfacet
  facet normal 0 -1 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 0 1
    endloop
  endfacet
  facet normal -1 0 0
    outer loop
      vertex 0 0 0
      vertex 0 0 1
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0.577 0.577 0.577
    outer loop
      vertex 1 0 0
      vertex 0 1 0
      vertex 0 0 1
    endloop
  endfacet
endsolid tetra
`

func TestParseASCII(t *testing.T) {
	model, err := ParseReader(strings.NewReader(asciiTetra))
	require.NoError(t, err)

	assert.Equal(t, "tetra", model.Name)
	assert.Equal(t, 4, model.TriangleCount())
	assert.Equal(t, geometry.NewVector3(0, 0, -1), model.Triangles[0].Normal)

	m := model.ToMesh()
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 4, m.TriangleCount())
	assert.NoError(t, m.Validate())
}

func TestParseASCIIErrors(t *testing.T) {
	_, err := ParseReader(strings.NewReader("solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 zero\n"))
	assert.ErrorContains(t, err, "line 4")

	_, err = ParseReader(strings.NewReader("solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nendloop\nendfacet\n"))
	assert.ErrorContains(t, err, "1 vertices")
}

func TestParseBinaryWithSolidHeader(t *testing.T) {
	model := NewModel("solid exporter header")
	model.AddTriangle(geometry.NewTriangle(
		geometry.NewVector3(0, 0, 1),
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(0, 1, 0),
	))

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, model))
	assert.Equal(t, headerSize+4+recordSize, buf.Len())

	parsed, err := ParseReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "solid exporter header", parsed.Name)
	require.Equal(t, 1, parsed.TriangleCount())
	assert.Equal(t, model.Triangles[0], parsed.Triangles[0])
}

func TestParseBinaryTruncated(t *testing.T) {
	data := make([]byte, headerSize+4+recordSize)
	binary.LittleEndian.PutUint32(data[headerSize:], 3)

	_, err := ParseReader(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = ParseReader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestSaveCompressed(t *testing.T) {
	model, err := ParseReader(strings.NewReader(asciiTetra))
	require.NoError(t, err)
	dir := t.TempDir()

	tests := []struct {
		file   string
		format Format
	}{
		{"tetra.stl.zst", FormatBinary},
		{"tetra.stl.sz", FormatASCII},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, Save(path, model, tt.format))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.False(t, bytes.HasPrefix(raw, []byte("solid")), "file is not compressed")

			parsed, err := Parse(path)
			require.NoError(t, err)
			assert.Equal(t, model.TriangleCount(), parsed.TriangleCount())
			assert.InDelta(t, model.SurfaceArea(), parsed.SurfaceArea(), 1e-6)
		})
	}
}

func TestCompressionFor(t *testing.T) {
	assert.Equal(t, CompressionZstd, CompressionFor("a.STL.ZST"))
	assert.Equal(t, CompressionSnappy, CompressionFor("a.stl.sz"))
	assert.Equal(t, CompressionNone, CompressionFor("a.stl"))

	c, err := ParseCompression("zstd")
	require.NoError(t, err)
	assert.Equal(t, ".zst", c.Extension())
	_, err = ParseCompression("gzip")
	assert.Error(t, err)
}

func TestFromMeshMirrored(t *testing.T) {
	m := mesh.New("tri")
	a := m.AddVertex(geometry.NewVector3(0, 0, 0), geometry.Vector3{}, geometry.Vector2{})
	b := m.AddVertex(geometry.NewVector3(1, 0, 0), geometry.Vector3{}, geometry.Vector2{})
	c := m.AddVertex(geometry.NewVector3(0, 1, 0), geometry.Vector3{}, geometry.Vector2{})
	m.AddTriangle(0, a, b, c)

	plain := FromMesh(m, -1, geometry.IdentityTransform())
	assert.Equal(t, geometry.NewVector3(0, 0, 1), plain.Triangles[0].Normal)

	mirror := geometry.NewTransform(geometry.Vector3{}, geometry.Vector3{}, geometry.NewVector3(1, 1, -1))
	flipped := FromMesh(m, -1, mirror)
	// the mirror maps +Z to -Z, reversing the triangle keeps it facing the mirrored side
	assert.Equal(t, geometry.NewVector3(0, 0, -1), flipped.Triangles[0].Normal)
}
