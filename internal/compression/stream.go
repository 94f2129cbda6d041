// Package compression wraps dataset stores in gzip or xz streams chosen by
// file extension and unpacks icon archives.
package compression

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Format identifies a stream compression format.
type Format int

const (
	// None leaves the stream uncompressed.
	None Format = iota
	// Gzip is RFC 1952 gzip.
	Gzip
	// Xz is the xz container format.
	Xz
)

// String returns the conventional file extension for the format.
func (f Format) String() string {
	switch f {
	case Gzip:
		return ".gz"
	case Xz:
		return ".xz"
	default:
		return ""
	}
}

// FormatFromPath picks a format from the path's extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".xz", ".txz":
		return Xz
	default:
		return None
	}
}

// NewReader wraps r to decompress the given format.
func NewReader(r io.Reader, f Format) (io.Reader, error) {
	switch f {
	case Gzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzr, nil
	case Xz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzr, nil
	default:
		return r, nil
	}
}

// NewWriter wraps w to compress in the given format. The returned writer
// must be closed to flush the compressed trailer; closing it does not
// close w.
func NewWriter(w io.Writer, f Format) (io.WriteCloser, error) {
	switch f {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Xz:
		xzw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzw, nil
	default:
		return nopCloser{w}, nil
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// file couples a compression stream with the underlying file.
type file struct {
	io.Reader
	io.Writer
	stream io.Closer
	buf    *bufio.Writer
	f      *os.File
}

func (c *file) Close() error {
	var firstErr error
	if c.stream != nil {
		if err := c.stream.Close(); err != nil {
			firstErr = err
		}
	}
	if c.buf != nil {
		if err := c.buf.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := c.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Open opens path for reading, decompressing by extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified dataset path
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r, err := NewReader(bufio.NewReader(f), FormatFromPath(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	c := &file{Reader: r, f: f}
	if rc, ok := r.(io.Closer); ok {
		c.stream = rc
	}
	return c, nil
}

// Create creates or truncates path for writing, compressing by extension.
// Parent directories are created as needed.
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path) // #nosec G304 - User-specified dataset path
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	buf := bufio.NewWriter(f)
	w, err := NewWriter(buf, FormatFromPath(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &file{Writer: w, stream: w, buf: buf, f: f}, nil
}
