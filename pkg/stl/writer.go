package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// Format selects the STL encoding
type Format int

const (
	FormatBinary Format = iota
	FormatASCII
)

func f32(v geometry.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// WriteBinary encodes the model as binary STL
func WriteBinary(w io.Writer, model *Model) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], model.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(model.Triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}
	for i, t := range model.Triangles {
		rec := record{
			Normal:   f32(t.Normal),
			Vertices: [3][3]float32{f32(t.V1), f32(t.V2), f32(t.V3)},
		}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteASCII encodes the model as ASCII STL
func WriteASCII(w io.Writer, model *Model) error {
	bw := bufio.NewWriter(w)
	name := model.Name
	if name == "" {
		name = "goslice"
	}

	fmt.Fprintf(bw, "solid %s\n", name)
	for _, t := range model.Triangles {
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		fmt.Fprintf(bw, "    outer loop\n")
		for _, v := range []geometry.Vector3{t.V1, t.V2, t.V3} {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// Write encodes the model in the given format
func Write(w io.Writer, model *Model, format Format) error {
	if format == FormatASCII {
		return WriteASCII(w, model)
	}
	return WriteBinary(w, model)
}

// Save writes the model to filename, compressing it when the name ends in
// .zst or .sz
func Save(filename string, model *Model, format Format) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	w, err := newWriter(file, CompressionFor(filename))
	if err != nil {
		return err
	}
	if err := Write(w, model, format); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", filename, err)
	}
	return nil
}
