package slicer

import (
	"fmt"
	"io"
	"sync"

	"github.com/BryceDouglasJames/fileslicer/pkg/handle"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

// Result is the ordered chunk list of one successful split. The caller owns
// it and must call Release once the chunks' handles are no longer needed.
type Result struct {
	Source string
	Mode   types.Mode
	Budget uint64
	Chunks []types.Chunk

	// TrailingTerminator is true in line mode when the source ended with '\n'.
	TrailingTerminator bool

	handles     *handle.Registry
	releaseOnce sync.Once
}

// Release revokes every chunk handle. It is safe to call more than once.
func (r *Result) Release() {
	r.releaseOnce.Do(func() {
		if r.handles == nil {
			return
		}
		for _, c := range r.Chunks {
			r.handles.Release(c.Handle)
		}
	})
}

// TotalSize is the sum of all chunk sizes.
func (r *Result) TotalSize() uint64 {
	var total uint64
	for _, c := range r.Chunks {
		total += c.Size
	}
	return total
}

// Reassemble writes the original source bytes to w.
// In line mode one terminator goes back between consecutive chunks, and after
// the last one when the source ended with a terminator.
func (r *Result) Reassemble(w io.Writer) error {
	for i, c := range r.Chunks {
		if r.Mode == types.ModeLines && i > 0 {
			if _, err := w.Write([]byte{'\n'}); err != nil {
				return fmt.Errorf("failed to write terminator: %w", err)
			}
		}
		if _, err := w.Write(c.Content); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.Name, err)
		}
	}
	if r.Mode == types.ModeLines && r.TrailingTerminator {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("failed to write terminator: %w", err)
		}
	}
	return nil
}
