// Package source provides the byte sources a split can read from.
package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

// Bytes is an in-memory source.
type Bytes struct {
	*bytes.Reader
	name string
}

// NewBytes wraps data. data must not be modified while the source is in use.
func NewBytes(name string, data []byte) *Bytes {
	return &Bytes{Reader: bytes.NewReader(data), name: name}
}

func (b *Bytes) Name() string {
	return b.name
}

// File is a source backed by a file on disk.
type File struct {
	file *os.File
	name string
	size int64
}

// OpenFile opens path for reading. The source is named after the base name.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%q is a directory", path)
	}

	return &File{file: f, name: filepath.Base(path), size: info.Size()}, nil
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Size() int64 {
	return f.size
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.file.Close()
}

// Compile-time interface checks
var (
	_ types.Source = (*Bytes)(nil)
	_ types.Source = (*File)(nil)
)
