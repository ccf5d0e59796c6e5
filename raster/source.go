package raster

import (
	"fmt"
	"os"
	"path/filepath"
)

// Source is a PDF document given either as a file path or as an in-memory
// byte buffer. The zero value is not usable; construct one with FromPath or
// FromBytes.
type Source struct {
	path string
	data []byte
}

// FromPath wraps a file-system path to a PDF.
func FromPath(path string) Source { return Source{path: path} }

// FromBytes wraps an in-memory PDF. The buffer is not copied.
func FromBytes(data []byte) Source { return Source{data: data} }

// Name returns the base filename for path sources and "buffer" otherwise.
func (s Source) Name() string {
	if s.path != "" {
		return filepath.Base(s.path)
	}
	return "buffer"
}

func (s Source) fromBytes() bool { return s.path == "" }

func (s Source) sizeMB() float64 {
	if s.fromBytes() {
		return float64(len(s.data)) / (1 << 20)
	}
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return float64(fi.Size()) / (1 << 20)
}

// tempFile materializes a byte-buffer source on disk for tools that cannot
// read from stdin. The caller must invoke cleanup.
func (s Source) tempFile() (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "banglaocr-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("raster: stage buffer: %w", err)
	}
	if _, err := f.Write(s.data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("raster: stage buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("raster: stage buffer: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
