package binary

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

// streamAll collects every range Stream emits for data.
func streamAll(t *testing.T, c *Chunker, data []byte) [][]byte {
	t.Helper()
	var chunks [][]byte
	err := c.Stream(context.Background(), bytes.NewReader(data), int64(len(data)), func(_ Range, b []byte) error {
		chunks = append(chunks, b)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return chunks
}

func TestChunker_EmptyData(t *testing.T) {
	c := NewChunker(4)
	if ranges := c.Ranges(0); ranges != nil {
		t.Fatalf("expected nil ranges for empty data, got %v", ranges)
	}
	if chunks := streamAll(t, c, nil); chunks != nil {
		t.Fatalf("expected no chunks for empty data, got %v", chunks)
	}
}

func TestChunker_NonPositiveChunkSize(t *testing.T) {
	data := []byte("abcdef")
	c := NewChunker(0)

	chunks := streamAll(t, c, data)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !bytes.Equal(chunks[0], data) {
		t.Fatalf("expected chunk to equal original data, got %q", string(chunks[0]))
	}
}

func TestChunker_ExactDivision(t *testing.T) {
	data := []byte("abcdefghijkl")
	c := NewChunker(3)

	chunks := streamAll(t, c, data)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	expected := [][]byte{
		[]byte("abc"),
		[]byte("def"),
		[]byte("ghi"),
		[]byte("jkl"),
	}

	for i := range expected {
		if !bytes.Equal(chunks[i], expected[i]) {
			t.Fatalf("chunk %d: expected %q, got %q", i, expected[i], chunks[i])
		}
	}
}

func TestChunker_WithRemainder(t *testing.T) {
	data := []byte("abcdefg")
	c := NewChunker(3)

	chunks := streamAll(t, c, data)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	expected := [][]byte{
		[]byte("abc"),
		[]byte("def"),
		[]byte("g"),
	}

	for i := range expected {
		if !bytes.Equal(chunks[i], expected[i]) {
			t.Fatalf("chunk %d: expected %q, got %q", i, expected[i], chunks[i])
		}
	}
}

// Ranges must partition [0, size) with no gap or overlap for every budget.
func TestChunker_RangesPartition(t *testing.T) {
	for size := int64(1); size <= 64; size++ {
		for budget := int64(1); budget <= size; budget++ {
			ranges := NewChunker(budget).Ranges(size)

			want := (size + budget - 1) / budget
			if int64(len(ranges)) != want {
				t.Fatalf("size=%d budget=%d: expected %d ranges, got %d", size, budget, want, len(ranges))
			}

			var next, total int64
			for i, r := range ranges {
				if r.Start != next {
					t.Fatalf("size=%d budget=%d: range %d starts at %d, expected %d", size, budget, i, r.Start, next)
				}
				if i < len(ranges)-1 && r.Len() != budget {
					t.Fatalf("size=%d budget=%d: range %d has %d bytes", size, budget, i, r.Len())
				}
				next = r.End
				total += r.Len()
			}
			if next != size || total != size {
				t.Fatalf("size=%d budget=%d: ranges end at %d covering %d bytes", size, budget, next, total)
			}
		}
	}
}

func TestChunker_Stream(t *testing.T) {
	data := make([]byte, 25)
	for i := range data {
		data[i] = byte(i * 7)
	}

	var sizes []int64
	var joined []byte
	err := NewChunker(10).Stream(context.Background(), bytes.NewReader(data), int64(len(data)), func(r Range, b []byte) error {
		sizes = append(sizes, int64(len(b)))
		joined = append(joined, b...)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sizes) != 3 || sizes[0] != 10 || sizes[1] != 10 || sizes[2] != 5 {
		t.Fatalf("expected sizes [10 10 5], got %v", sizes)
	}
	if !bytes.Equal(joined, data) {
		t.Fatalf("stream did not reproduce the source")
	}
}

func TestChunker_StreamShortSource(t *testing.T) {
	err := NewChunker(4).Stream(context.Background(), bytes.NewReader([]byte("abcdef")), 10, func(Range, []byte) error {
		return nil
	})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
}

func TestChunker_StreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := NewChunker(2).Stream(ctx, bytes.NewReader([]byte("abcdef")), 6, func(Range, []byte) error {
		calls++
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 emitted range before cancellation, got %d", calls)
	}
}
