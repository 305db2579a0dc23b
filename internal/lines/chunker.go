// Package lines groups whole lines of a byte source into chunks bounded by a
// byte budget. A line is never divided between two chunks.
package lines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultWindowSize is the read window used when none is configured.
const DefaultWindowSize = 64 * 1024

// ErrLineTooLong reports a line whose encoded length exceeds the budget.
var ErrLineTooLong = errors.New("line exceeds budget")

// LineTooLongError locates the first line that cannot fit in any chunk.
type LineTooLongError struct {
	// Line is the 1-based line number.
	Line int64

	// Offset is the byte offset where the line starts.
	Offset int64

	// Length is the encoded length of the line, or the number of bytes seen
	// before the scan gave up on an unterminated run already over budget.
	Length int64

	Budget int64
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("line %d at offset %d is %d bytes, budget is %d", e.Line, e.Offset, e.Length, e.Budget)
}

func (e *LineTooLongError) Unwrap() error {
	return ErrLineTooLong
}

// Chunker accumulates whole lines into chunks of at most budget encoded bytes.
//
// A line's encoded length is its content plus one byte for the '\n'
// terminator; a final unterminated line counts only its content. Emitted chunk
// content holds the chunk's lines joined by '\n', without the terminator of the
// chunk's last line.
type Chunker struct {
	budget int64
	window int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithWindowSize sets the read window. Non-positive values keep the default.
func WithWindowSize(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.window = n
		}
	}
}

func NewChunker(budget int64, opts ...Option) *Chunker {
	c := &Chunker{budget: budget, window: DefaultWindowSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// scanner is the per-call state. Nothing here is shared between calls.
type scanner struct {
	budget int64
	emit   func([]byte) error

	// in-progress chunk
	buf       []byte
	bufBytes  int64
	bufLines  int
	lineNo    int64
	lineStart int64

	// partial line carried across read windows
	pending []byte
}

// Stream reads r in windows and calls emit with each completed chunk in order.
// Ownership of each emitted buffer passes to emit.
//
// It returns trailing=true when the source ends with a line terminator, which
// callers need to reproduce the source from the chunks. On a line over budget
// it stops and returns a *LineTooLongError; chunks already emitted are the
// caller's to discard.
func (c *Chunker) Stream(ctx context.Context, r io.ReaderAt, size int64, emit func([]byte) error) (trailing bool, err error) {
	if size <= 0 {
		return false, nil
	}

	s := &scanner{budget: c.budget, emit: emit, lineNo: 1}
	// never buffer more than the source holds
	window := make([]byte, min(int64(c.window), size))

	for off := int64(0); off < size; {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		n := int(min(int64(len(window)), size-off))
		got, err := r.ReadAt(window[:n], off)
		if got < n {
			if err == nil || errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return false, fmt.Errorf("failed to read bytes %d-%d: %w", off, off+int64(n), err)
		}

		if err := s.scan(window[:n], off); err != nil {
			return false, err
		}
		off += int64(n)
	}

	if len(s.pending) > 0 {
		if err := s.line(s.pending, int64(len(s.pending))); err != nil {
			return false, err
		}
		s.pending = nil
	} else {
		trailing = size > 0
	}

	if err := s.flush(); err != nil {
		return false, err
	}
	return trailing, nil
}

// scan consumes one read window starting at source offset base.
func (s *scanner) scan(data []byte, base int64) error {
	pos := base
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			s.pending = append(s.pending, data...)
			if int64(len(s.pending)) > s.budget {
				return s.reject(int64(len(s.pending)))
			}
			return nil
		}

		content := data[:i]
		if len(s.pending) > 0 {
			s.pending = append(s.pending, content...)
			content = s.pending
		}
		if err := s.line(content, int64(len(content))+1); err != nil {
			return err
		}
		s.pending = s.pending[:0]

		data = data[i+1:]
		pos += int64(i) + 1
		s.lineNo++
		s.lineStart = pos
	}
	return nil
}

// line applies the per-line decision: reject, append, or close and start anew.
// content is copied; callers may reuse it.
func (s *scanner) line(content []byte, encoded int64) error {
	if encoded > s.budget {
		return s.reject(encoded)
	}

	if s.bufBytes+encoded > s.budget {
		if err := s.flush(); err != nil {
			return err
		}
	}

	if s.bufLines > 0 {
		s.buf = append(s.buf, '\n')
	}
	s.buf = append(s.buf, content...)
	s.bufBytes += encoded
	s.bufLines++
	return nil
}

func (s *scanner) flush() error {
	if s.bufLines == 0 {
		return nil
	}
	chunk := s.buf
	if chunk == nil {
		chunk = []byte{}
	}
	s.buf = nil
	s.bufBytes = 0
	s.bufLines = 0
	return s.emit(chunk)
}

func (s *scanner) reject(length int64) error {
	s.buf = nil
	s.pending = nil
	return &LineTooLongError{
		Line:   s.lineNo,
		Offset: s.lineStart,
		Length: length,
		Budget: s.budget,
	}
}
