package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/goslice/pkg/geometry"
)

const (
	headerSize = 80
	recordSize = 50
)

// ErrTruncated is returned when a binary STL ends before its declared triangle count
var ErrTruncated = errors.New("truncated binary STL")

// record is the on-disk layout of one binary facet
type record struct {
	Normal    [3]float32
	Vertices  [3][3]float32
	Attribute uint16
}

// Parse reads an STL file and returns a Model. ASCII and binary files are
// detected automatically; .zst and .sz files are decompressed first.
func Parse(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	r, err := newReader(file, CompressionFor(filename))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ParseReader(r)
}

// ParseReader reads an uncompressed STL stream
func ParseReader(reader io.Reader) (*Model, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL: %w", err)
	}
	if isBinary(data) {
		return parseBinary(data)
	}
	return parseASCII(bytes.NewReader(data))
}

// isBinary checks the declared triangle count against the data size, since
// many binary exporters also start their header with "solid"
func isBinary(data []byte) bool {
	if len(data) >= headerSize+4 {
		count := binary.LittleEndian.Uint32(data[headerSize : headerSize+4])
		if uint64(len(data)) == headerSize+4+uint64(count)*recordSize {
			return true
		}
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func parseVector(fields []string, line int) (geometry.Vector3, error) {
	var v [3]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geometry.Vector3{}, fmt.Errorf("line %d: invalid number %q: %w", line, fields[i], err)
		}
		v[i] = f
	}
	return geometry.NewVector3(v[0], v[1], v[2]), nil
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := parseVector(fields[2:5], line)
				if err != nil {
					return nil, err
				}
				currentNormal = n
			}

		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs three coordinates", line)
			}
			v, err := parseVector(fields[1:4], line)
			if err != nil {
				return nil, err
			}
			vertices = append(vertices, v)

		case "endfacet":
			if len(vertices) != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, expected 3", line, len(vertices))
			}
			model.AddTriangle(geometry.NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return model, nil
}

func vec(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
}

// parseBinary parses a binary STL file
func parseBinary(data []byte) (*Model, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	model := NewModel(strings.TrimSpace(string(bytes.TrimRight(data[:headerSize], "\x00"))))
	count := binary.LittleEndian.Uint32(data[headerSize : headerSize+4])
	body := data[headerSize+4:]
	if uint64(len(body)) < uint64(count)*recordSize {
		return nil, fmt.Errorf("%w: header declares %d triangles, found %d", ErrTruncated, count, len(body)/recordSize)
	}

	reader := bytes.NewReader(body)
	model.Triangles = make([]geometry.Triangle, 0, count)
	for i := uint32(0); i < count; i++ {
		var rec record
		if err := binary.Read(reader, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}
		model.AddTriangle(geometry.NewTriangle(vec(rec.Normal), vec(rec.Vertices[0]), vec(rec.Vertices[1]), vec(rec.Vertices[2])))
	}

	return model, nil
}
