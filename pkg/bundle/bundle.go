// Package bundle writes split output to disk: one zip archive holding every
// chunk, or one file per chunk in a directory.
package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

// DefaultArchiveName is the archive file name used when none is given.
const DefaultArchiveName = "sliced_files.zip"

// WriteZip writes one archive entry per chunk, named after the chunk, in index order.
func WriteZip(w io.Writer, chunks []types.Chunk) error {
	zw := zip.NewWriter(w)
	for _, c := range chunks {
		fw, err := zw.Create(c.Name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("failed to add %s to archive: %w", c.Name, err)
		}
		if _, err := fw.Write(c.Content); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write %s to archive: %w", c.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// WriteZipFile writes the archive to dir/name and returns its path.
// An empty name means DefaultArchiveName.
func WriteZipFile(dir, name string, chunks []types.Chunk) (string, error) {
	if name == "" {
		name = DefaultArchiveName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %q: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	if err := WriteZip(f, chunks); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive: %w", err)
	}
	return path, nil
}

// WriteDir writes each chunk to dir/<chunk name> and returns the paths written.
func WriteDir(dir string, chunks []types.Chunk) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %q: %w", dir, err)
	}

	paths := make([]string, 0, len(chunks))
	for _, c := range chunks {
		path := filepath.Join(dir, filepath.Base(c.Name))
		if err := os.WriteFile(path, c.Content, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", c.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
