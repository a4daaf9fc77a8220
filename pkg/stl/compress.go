package stl

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the stream codec wrapped around an STL file
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionSnappy
)

// CompressionFor picks the codec from the file extension (.zst or .sz)
func CompressionFor(filename string) Compression {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".zst"):
		return CompressionZstd
	case strings.HasSuffix(lower, ".sz"):
		return CompressionSnappy
	default:
		return CompressionNone
	}
}

// Extension returns the file suffix of the codec, including the dot
func (c Compression) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionSnappy:
		return ".sz"
	default:
		return ""
	}
}

// ParseCompression parses a codec name as used on the command line
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "snappy", "sz":
		return CompressionSnappy, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q (want none, zstd or snappy)", name)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionZstd:
		return "zstd"
	case CompressionSnappy:
		return "snappy"
	default:
		return "none"
	}
}

type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func newReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zstdReadCloser{dec}, nil
	case CompressionSnappy:
		return nopReadCloser{snappy.NewReader(r)}, nil
	default:
		return nopReadCloser{r}, nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return enc, nil
	case CompressionSnappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}
