package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Range is a half-open byte range [Start, End) of a source.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes in the range.
func (r Range) Len() int64 {
	return r.End - r.Start
}

// Chunker slices a byte source into contiguous fixed-size ranges.
// It never looks at the content.
type Chunker struct {
	chunkSize int64
}

func NewChunker(chunkSize int64) *Chunker {
	return &Chunker{chunkSize: chunkSize}
}

// Ranges partitions [0, size) into ceil(size/chunkSize) ranges.
// Every range but the last is exactly chunkSize bytes.
func (c *Chunker) Ranges(size int64) []Range {
	if size <= 0 {
		return nil
	}

	if c.chunkSize <= 0 {
		return []Range{{Start: 0, End: size}}
	}

	chunkCount := (size + c.chunkSize - 1) / c.chunkSize

	ranges := make([]Range, chunkCount)

	for i := range ranges {
		start := min(int64(i)*c.chunkSize, size)
		end := min(start+c.chunkSize, size)
		ranges[i] = Range{Start: start, End: end}
	}
	return ranges
}

// Stream reads each range from r in order and hands its content to emit.
// Each emitted buffer is freshly allocated and owned by the callee.
// Reading stops at the first error from r, emit, or ctx.
func (c *Chunker) Stream(ctx context.Context, r io.ReaderAt, size int64, emit func(Range, []byte) error) error {
	for _, rng := range c.Ranges(size) {
		if err := ctx.Err(); err != nil {
			return err
		}

		buf := make([]byte, rng.Len())
		n, err := r.ReadAt(buf, rng.Start)
		if int64(n) < rng.Len() {
			if err == nil || errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("failed to read bytes %d-%d: %w", rng.Start, rng.End, err)
		}

		if err := emit(rng, buf); err != nil {
			return err
		}
	}
	return nil
}
